// Copyright (c) 2026 The OpenZipkin Authors
// SPDX-License-Identifier: Apache-2.0

package harness

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gio-palagashvili/zipkin-dependencies/internal/model"
)

// JobParams parameterizes one run of the per-day dependency
// aggregation job.
type JobParams struct {
	Keyspace      string
	LocalDC       string
	ContactPoints []string
	// StrictTraceID is always false in the harness: synthetic test IDs
	// would otherwise produce incidental mismatches.
	StrictTraceID bool
	// Day is the bucket being aggregated, in whole days since the Unix
	// epoch.
	Day int64
}

// JobRunner runs the dependency aggregation job for one day. The job's
// algorithm is opaque to the harness.
type JobRunner func(ctx context.Context, params JobParams) error

// Partitioner replays the aggregation job the way production batches
// run it: the batch's links are computed in memory only to learn which
// calendar days they fall into, then the job re-runs once per day.
// Per-day runs are independent and idempotent, so no ordering is
// imposed between them.
type Partitioner[T any] struct {
	// Aggregate derives day-bucketed dependency links from a batch of
	// records. Must be pure.
	Aggregate func(records []T) map[int64][]model.DependencyLink
	RunJob    JobRunner
	// Settle runs once after all day jobs complete.
	Settle func(ctx context.Context) error

	Keyspace      string
	LocalDC       string
	ContactPoints []string
	Logger        *zap.Logger
}

// Process runs the job for each day present in the batch, then settles.
// An empty batch runs zero jobs; the trailing settle still happens.
func (p *Partitioner[T]) Process(ctx context.Context, records []T) error {
	days := p.Aggregate(records)
	if p.Logger != nil {
		p.Logger.Info("Processing dependency days", zap.Int("days", len(days)))
	}
	for day := range days {
		params := JobParams{
			Keyspace:      p.Keyspace,
			LocalDC:       p.LocalDC,
			ContactPoints: p.ContactPoints,
			StrictTraceID: false,
			Day:           day,
		}
		if err := p.RunJob(ctx, params); err != nil {
			return fmt.Errorf("dependency job for day %d: %w", day, err)
		}
	}
	if err := p.Settle(ctx); err != nil {
		return fmt.Errorf("settle after dependency jobs: %w", err)
	}
	return nil
}
