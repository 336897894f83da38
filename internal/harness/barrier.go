// Copyright (c) 2026 The OpenZipkin Authors
// SPDX-License-Identifier: Apache-2.0

// Package harness implements the synchronization core of the storage
// integration tests: settling asynchronous writes before dependent
// reads, bounding batch concurrency, and replaying the per-day
// aggregation job the way production batches run it.
package harness

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultSettleInterval is the poll interval and the trailing grace
// delay of the barrier.
const DefaultSettleInterval = 100 * time.Millisecond

// ErrWaitAborted reports a wait interrupted by context cancellation.
// A partially settled barrier cannot be resumed, so callers treat this
// as fatal to the current test.
var ErrWaitAborted = errors.New("wait aborted")

// MetricSource exposes per-node in-flight request counts. Nodes are
// re-read on every poll; implementations must return live values.
type MetricSource interface {
	Nodes() []string
	InFlight(node string) int
}

// Barrier blocks until every node reports zero in-flight requests in a
// single sampling pass. If any work was observed while waiting, one
// extra interval elapses before returning: the in-flight counter can
// reach zero slightly before the write is visible to reads.
//
// There is no built-in timeout. With a background context a stalled
// backend hangs the test, which is the intended contract for a fixture
// that assumes a healthy backend; callers wanting a watchdog pass a
// context with a deadline.
type Barrier struct {
	Metrics  MetricSource
	Interval time.Duration // defaults to DefaultSettleInterval
	Logger   *zap.Logger

	sleep func(ctx context.Context, d time.Duration) error // test hook
}

// Await blocks until the cluster is quiescent, plus one grace interval
// if work was ever observed. Returns ErrWaitAborted if ctx is cancelled
// mid-wait.
func (b *Barrier) Await(ctx context.Context) error {
	interval := b.Interval
	if interval <= 0 {
		interval = DefaultSettleInterval
	}
	sleep := b.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	wasInFlight := false
	for {
		if !b.anyInFlight() {
			if !wasInFlight {
				return nil
			}
			// Grace period against the decrement/visibility race.
			if err := sleep(ctx, interval); err != nil {
				return err
			}
			return nil
		}
		wasInFlight = true
		if err := sleep(ctx, interval); err != nil {
			return err
		}
	}
}

func (b *Barrier) anyInFlight() bool {
	for _, node := range b.Metrics.Nodes() {
		if n := b.Metrics.InFlight(node); n > 0 {
			if b.Logger != nil {
				b.Logger.Debug("Requests still in flight",
					zap.String("node", node),
					zap.Int("in_flight", n))
			}
			return true
		}
	}
	return false
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrWaitAborted, ctx.Err())
	case <-timer.C:
		return nil
	}
}
