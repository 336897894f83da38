// Copyright (c) 2026 The OpenZipkin Authors
// SPDX-License-Identifier: Apache-2.0

package cassandra

import (
	"github.com/gio-palagashvili/zipkin-dependencies/internal/inflight"
)

// TrackedSession decorates a Session so that every request it issues is
// counted on an in-flight gauge for the duration of the call. The gauge
// feeds the write-settlement barrier: tests that fire writes from
// goroutines can then wait until the backend has drained them.
type TrackedSession struct {
	delegate Session
	gauge    *inflight.Gauge
}

// NewTrackedSession wraps a session, registering it with the given
// registry under the node name (normally the contact point).
func NewTrackedSession(delegate Session, registry *inflight.Registry, node string) *TrackedSession {
	return &TrackedSession{
		delegate: delegate,
		gauge:    registry.Gauge(node),
	}
}

func (s *TrackedSession) Query(stmt string, values ...any) Query {
	return trackedQuery{
		Query: s.delegate.Query(stmt, values...),
		gauge: s.gauge,
	}
}

func (s *TrackedSession) Close() {
	s.delegate.Close()
}

type trackedQuery struct {
	Query
	gauge *inflight.Gauge
}

func (q trackedQuery) Exec() error {
	q.gauge.Inc()
	defer q.gauge.Dec()
	return q.Query.Exec()
}

func (q trackedQuery) Iter() Iterator {
	q.gauge.Inc()
	defer q.gauge.Dec()
	return q.Query.Iter()
}
