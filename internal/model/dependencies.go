// Copyright (c) 2026 The OpenZipkin Authors
// SPDX-License-Identifier: Apache-2.0

package model

// DependencyLink is a directed caller->callee edge aggregated over a
// batch of spans.
type DependencyLink struct {
	Parent     string
	Child      string
	CallCount  uint64
	ErrorCount uint64
}

type linkKey struct {
	parent, child string
}

// AggregateLinks computes the dependency links implied by a batch of
// spans, grouped by the epoch-day bucket of each span's timestamp. It
// reproduces in memory what the per-day aggregation job computes from
// storage, so tests can learn which days a batch touches before running
// the job for each of them.
//
// An empty batch, or a batch whose spans carry no service identity,
// yields an empty map.
func AggregateLinks(spans []*Span) map[int64][]DependencyLink {
	byTrace := make(map[string]map[string]*Span)
	for _, span := range spans {
		trace := byTrace[span.TraceID]
		if trace == nil {
			trace = make(map[string]*Span)
			byTrace[span.TraceID] = trace
		}
		trace[span.ID] = span
	}

	counts := make(map[int64]map[linkKey]*DependencyLink)
	for _, trace := range byTrace {
		for _, span := range trace {
			parent, child := linkEndpoints(span, trace)
			if parent == "" || child == "" || parent == child {
				continue
			}
			day := DayBucket(span.Timestamp)
			links := counts[day]
			if links == nil {
				links = make(map[linkKey]*DependencyLink)
				counts[day] = links
			}
			key := linkKey{parent: parent, child: child}
			link := links[key]
			if link == nil {
				link = &DependencyLink{Parent: parent, Child: child}
				links[key] = link
			}
			link.CallCount++
			if span.IsError() {
				link.ErrorCount++
			}
		}
	}

	out := make(map[int64][]DependencyLink, len(counts))
	for day, links := range counts {
		flat := make([]DependencyLink, 0, len(links))
		for _, link := range links {
			flat = append(flat, *link)
		}
		out[day] = flat
	}
	return out
}

// linkEndpoints derives the caller and callee service for one span.
// A client span links its own service to the remote one; a server span
// links its parent's service (falling back to the remote endpoint for
// uninstrumented clients) to its own.
func linkEndpoints(span *Span, trace map[string]*Span) (parent, child string) {
	switch span.Kind {
	case Client, Producer:
		return span.LocalServiceName(), span.RemoteServiceName()
	case Server, Consumer:
		child = span.LocalServiceName()
		if p, ok := trace[span.ParentID]; ok && span.ParentID != span.ID {
			return p.LocalServiceName(), child
		}
		return span.RemoteServiceName(), child
	default:
		return "", ""
	}
}
