// Copyright (c) 2026 The OpenZipkin Authors
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"time"
)

// Kind is the role a span played in an RPC, mirroring the wire-level
// span kind of the tracing model.
type Kind string

const (
	Client   Kind = "CLIENT"
	Server   Kind = "SERVER"
	Producer Kind = "PRODUCER"
	Consumer Kind = "CONSUMER"
)

// Endpoint identifies a network participant by service name. Address
// fields are omitted: the harness only reasons about service identity.
type Endpoint struct {
	ServiceName string
}

// Span is the unit of test data written to storage backends. Timestamps
// and durations are epoch microseconds, matching the storage schema.
type Span struct {
	TraceID   string
	ID        string
	ParentID  string
	Kind      Kind
	Name      string
	Timestamp int64
	Duration  int64
	Local     *Endpoint
	Remote    *Endpoint
	Tags      map[string]string
}

// LocalServiceName returns the service that recorded the span, or empty.
func (s *Span) LocalServiceName() string {
	if s.Local == nil {
		return ""
	}
	return s.Local.ServiceName
}

// RemoteServiceName returns the service on the other side of the call,
// or empty.
func (s *Span) RemoteServiceName() string {
	if s.Remote == nil {
		return ""
	}
	return s.Remote.ServiceName
}

// IsError reports whether the span carries an error tag.
func (s *Span) IsError() bool {
	_, ok := s.Tags["error"]
	return ok
}

const microsPerDay = int64(24*time.Hour) / int64(time.Microsecond)

// DayBucket converts an epoch-microsecond timestamp into a count of
// whole days since the Unix epoch.
func DayBucket(timestampMicros int64) int64 {
	return timestampMicros / microsPerDay
}
