// Copyright (c) 2026 The OpenZipkin Authors
// SPDX-License-Identifier: Apache-2.0

// Package inflight keeps per-node gauges of outstanding storage requests.
// The gocql driver does not expose the per-node IN_FLIGHT metric that
// server drivers report, so sessions are wrapped to count their own
// outstanding requests here (see the cassandra package's TrackedSession).
package inflight

import (
	"sort"
	"sync"
	"sync/atomic"
)

// Gauge is one node's count of requests issued but not yet completed.
type Gauge struct {
	n atomic.Int64
}

func (g *Gauge) Inc() {
	g.n.Add(1)
}

func (g *Gauge) Dec() {
	g.n.Add(-1)
}

// Value returns the current count, never negative.
func (g *Gauge) Value() int {
	v := g.n.Load()
	if v < 0 {
		return 0
	}
	return int(v)
}

// Registry enumerates the nodes a test talks to and their gauges.
// Readings are live: every call re-reads the underlying counter.
type Registry struct {
	mu    sync.RWMutex
	nodes map[string]*Gauge
}

func NewRegistry() *Registry {
	return &Registry{nodes: make(map[string]*Gauge)}
}

// Gauge returns the gauge for a node, registering it if needed.
func (r *Registry) Gauge(node string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := r.nodes[node]
	if g == nil {
		g = &Gauge{}
		r.nodes[node] = g
	}
	return g
}

// Nodes lists all registered nodes in stable order.
func (r *Registry) Nodes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.nodes))
	for node := range r.nodes {
		out = append(out, node)
	}
	sort.Strings(out)
	return out
}

// InFlight returns a node's current in-flight count. Unknown nodes
// report 0: absence of evidence of outstanding work is treated as
// completion, because any node that is actually busy reports itself.
func (r *Registry) InFlight(node string) int {
	r.mu.RLock()
	g := r.nodes[node]
	r.mu.RUnlock()
	if g == nil {
		return 0
	}
	return g.Value()
}
