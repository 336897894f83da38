// Copyright (c) 2026 The OpenZipkin Authors
// SPDX-License-Identifier: Apache-2.0

// Package spanstore is the write path the harness drives: a minimal
// span consumer that inserts test spans and maintains the service/span
// name index the search queries depend on.
package spanstore

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/gio-palagashvili/zipkin-dependencies/internal/cassandra"
	"github.com/gio-palagashvili/zipkin-dependencies/internal/cassandra/schema"
	"github.com/gio-palagashvili/zipkin-dependencies/internal/model"
)

const (
	insertSpan = `INSERT INTO %s.` + schema.TableSpan +
		` (trace_id, id, parent_id, kind, span, ts, duration, l_service, r_service)` +
		` VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	insertServiceSpan = `INSERT INTO %s.` + schema.TableServiceSpans +
		` (service, span) VALUES (?, ?)`

	indexCacheSize = 100_000
)

// Writer inserts spans into the span table and deduplicates index
// writes with an in-process cache. Clearing that cache is part of a
// state reset: otherwise a truncated index table would never be
// repopulated for names seen before the reset.
type Writer struct {
	session  cassandra.Session
	keyspace string
	logger   *zap.Logger
	index    *lru.Cache[string, struct{}]
}

// NewWriter returns a Writer for the given keyspace.
func NewWriter(session cassandra.Session, keyspace string, logger *zap.Logger) (*Writer, error) {
	index, err := lru.New[string, struct{}](indexCacheSize)
	if err != nil {
		return nil, err
	}
	return &Writer{
		session:  session,
		keyspace: keyspace,
		logger:   logger,
		index:    index,
	}, nil
}

// WriteSpans inserts one chunk of spans. It satisfies the ingestor's
// write function signature; the caller is responsible for chunking and
// settling.
func (w *Writer) WriteSpans(ctx context.Context, spans []*model.Span) error {
	for _, span := range spans {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.writeSpan(span); err != nil {
			return err
		}
		if err := w.writeIndex(span); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeSpan(span *model.Span) error {
	q := w.session.Query(
		fmt.Sprintf(insertSpan, w.keyspace),
		span.TraceID,
		span.ID,
		span.ParentID,
		string(span.Kind),
		span.Name,
		span.Timestamp,
		span.Duration,
		span.LocalServiceName(),
		span.RemoteServiceName(),
	)
	if err := q.Exec(); err != nil {
		w.logger.Error("Failed to insert span",
			zap.String("trace_id", span.TraceID),
			zap.String("span_id", span.ID),
			zap.Error(err))
		return fmt.Errorf("insert span: %w", err)
	}
	return nil
}

func (w *Writer) writeIndex(span *model.Span) error {
	service := span.LocalServiceName()
	if service == "" {
		return nil
	}
	key := service + "|" + span.Name
	if _, ok := w.index.Get(key); ok {
		return nil
	}
	q := w.session.Query(fmt.Sprintf(insertServiceSpan, w.keyspace), service, span.Name)
	if err := q.Exec(); err != nil {
		return fmt.Errorf("index service span: %w", err)
	}
	w.index.Add(key, struct{}{})
	return nil
}

// ClearCache drops the index dedup cache. Called by state reset after
// truncating tables so subsequent writes repopulate the index.
func (w *Writer) ClearCache() {
	w.index.Purge()
}
