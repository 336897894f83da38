// Copyright (c) 2026 The OpenZipkin Authors
// SPDX-License-Identifier: Apache-2.0

package cassandra

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gio-palagashvili/zipkin-dependencies/internal/inflight"
)

type fakeSession struct {
	queries []string
	execErr error
	// observed lets a query report the gauge value seen mid-call.
	observe func()
	closed  bool
}

func (s *fakeSession) Query(stmt string, _ ...any) Query {
	s.queries = append(s.queries, stmt)
	return &fakeQuery{session: s, stmt: stmt}
}

func (s *fakeSession) Close() {
	s.closed = true
}

type fakeQuery struct {
	session *fakeSession
	stmt    string
}

func (q *fakeQuery) Exec() error {
	if q.session.observe != nil {
		q.session.observe()
	}
	return q.session.execErr
}

func (q *fakeQuery) String() string { return q.stmt }

func (q *fakeQuery) Iter() Iterator {
	if q.session.observe != nil {
		q.session.observe()
	}
	return &fakeIterator{}
}

type fakeIterator struct{}

func (*fakeIterator) Scan(...any) bool { return false }
func (*fakeIterator) Close() error     { return nil }

func TestTrackedSessionCountsDuringExec(t *testing.T) {
	registry := inflight.NewRegistry()
	fake := &fakeSession{}
	session := NewTrackedSession(fake, registry, "127.0.0.1:9042")

	var during int
	fake.observe = func() {
		during = registry.InFlight("127.0.0.1:9042")
	}

	require.NoError(t, session.Query("UPDATE t SET x = ?", 1).Exec())
	assert.Equal(t, 1, during, "gauge should count while the request is outstanding")
	assert.Equal(t, 0, registry.InFlight("127.0.0.1:9042"), "gauge drains after the call returns")
}

func TestTrackedSessionCountsDuringIter(t *testing.T) {
	registry := inflight.NewRegistry()
	fake := &fakeSession{}
	session := NewTrackedSession(fake, registry, "127.0.0.1:9042")

	var during int
	fake.observe = func() {
		during = registry.InFlight("127.0.0.1:9042")
	}

	iter := session.Query("SELECT x FROM t").Iter()
	require.NoError(t, iter.Close())
	assert.Equal(t, 1, during)
	assert.Equal(t, 0, registry.InFlight("127.0.0.1:9042"))
}

func TestTrackedSessionDrainsOnError(t *testing.T) {
	registry := inflight.NewRegistry()
	fake := &fakeSession{execErr: errors.New("write timeout")}
	session := NewTrackedSession(fake, registry, "127.0.0.1:9042")

	require.Error(t, session.Query("UPDATE t SET x = ?", 1).Exec())
	assert.Equal(t, 0, registry.InFlight("127.0.0.1:9042"))
}

func TestTrackedSessionRegistersNode(t *testing.T) {
	registry := inflight.NewRegistry()
	NewTrackedSession(&fakeSession{}, registry, "a:9042")
	assert.Equal(t, []string{"a:9042"}, registry.Nodes())
}

func TestTrackedSessionClose(t *testing.T) {
	fake := &fakeSession{}
	session := NewTrackedSession(fake, inflight.NewRegistry(), "a:9042")
	session.Close()
	assert.True(t, fake.closed)
}
