// Copyright (c) 2026 The OpenZipkin Authors
// SPDX-License-Identifier: Apache-2.0

package harness

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeMetrics replays a fixed sequence of sampling passes; the last
// pass repeats once the sequence is exhausted.
type fakeMetrics struct {
	passes  []map[string]int
	current int
	polled  bool
}

func (m *fakeMetrics) Nodes() []string {
	if m.polled && m.current < len(m.passes)-1 {
		m.current++
	}
	m.polled = true
	nodes := make([]string, 0, len(m.passes[m.current]))
	for node := range m.passes[m.current] {
		nodes = append(nodes, node)
	}
	return nodes
}

func (m *fakeMetrics) InFlight(node string) int {
	return m.passes[m.current][node]
}

func newTestBarrier(t *testing.T, metrics MetricSource) (*Barrier, *int) {
	sleeps := 0
	b := &Barrier{
		Metrics: metrics,
		Logger:  zaptest.NewLogger(t),
		sleep: func(context.Context, time.Duration) error {
			sleeps++
			return nil
		},
	}
	return b, &sleeps
}

func TestBarrierReturnsImmediatelyWhenIdle(t *testing.T) {
	metrics := &fakeMetrics{passes: []map[string]int{
		{"a": 0, "b": 0},
	}}
	b, sleeps := newTestBarrier(t, metrics)
	require.NoError(t, b.Await(context.Background()))
	assert.Equal(t, 0, *sleeps, "nothing was in flight, no grace needed")
}

func TestBarrierSleepsOncePlusGrace(t *testing.T) {
	metrics := &fakeMetrics{passes: []map[string]int{
		{"a": 3, "b": 1, "c": 0},
		{"a": 0, "b": 0, "c": 0},
	}}
	b, sleeps := newTestBarrier(t, metrics)
	require.NoError(t, b.Await(context.Background()))
	assert.Equal(t, 2, *sleeps, "one wait for the busy pass, one grace delay")
}

func TestBarrierWaitsUntilAllNodesQuiesce(t *testing.T) {
	metrics := &fakeMetrics{passes: []map[string]int{
		{"a": 5},
		{"a": 2},
		{"a": 1},
		{"a": 0},
	}}
	b, sleeps := newTestBarrier(t, metrics)
	require.NoError(t, b.Await(context.Background()))
	assert.Equal(t, 4, *sleeps, "three busy passes plus grace")
}

func TestBarrierAbortsOnCancelledContext(t *testing.T) {
	metrics := &fakeMetrics{passes: []map[string]int{
		{"a": 1},
	}}
	b := &Barrier{
		Metrics:  metrics,
		Interval: time.Millisecond,
		Logger:   zaptest.NewLogger(t),
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := b.Await(ctx)
	require.ErrorIs(t, err, ErrWaitAborted)
	require.ErrorIs(t, err, context.Canceled)
}

func TestBarrierGraceAbortsOnCancelledContext(t *testing.T) {
	// Work was observed, then drained, but the context dies during the
	// trailing grace delay.
	metrics := &fakeMetrics{passes: []map[string]int{
		{"a": 1},
		{"a": 0},
	}}
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	b := &Barrier{
		Metrics: metrics,
		Logger:  zaptest.NewLogger(t),
		sleep: func(ctx context.Context, _ time.Duration) error {
			calls++
			if calls == 2 { // the grace delay
				cancel()
				return sleepContext(ctx, time.Hour)
			}
			return nil
		},
	}
	err := b.Await(ctx)
	require.ErrorIs(t, err, ErrWaitAborted)
	assert.Equal(t, 2, calls)
}

func TestBarrierNoNodes(t *testing.T) {
	metrics := &fakeMetrics{passes: []map[string]int{{}}}
	b, sleeps := newTestBarrier(t, metrics)
	require.NoError(t, b.Await(context.Background()))
	assert.Equal(t, 0, *sleeps)
}
