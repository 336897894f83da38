// Copyright (c) 2026 The OpenZipkin Authors
// SPDX-License-Identifier: Apache-2.0

package harness

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Reset returns a backend to a clean state between tests: it clears
// the in-process write-path cache, truncates a fixed set of tables,
// and settles so no stale in-flight write bleeds into the next test.
type Reset struct {
	// Tables is the closed set of truncation targets.
	Tables []string
	// Truncate issues one table truncation.
	Truncate func(ctx context.Context, table string) error
	// IsMissingTable reports whether an error means the table does not
	// exist yet, which a reset tolerates (schema not materialized).
	IsMissingTable func(err error) bool
	// ClearCache drops any write-side cache the system under test
	// holds. Nil when there is none.
	ClearCache func()
	// Settle runs after truncation.
	Settle func(ctx context.Context) error
	Logger *zap.Logger
}

// Run performs the reset. Missing tables are skipped; any other
// truncation failure aborts with the table named in the error.
func (r *Reset) Run(ctx context.Context) error {
	if r.ClearCache != nil {
		r.ClearCache()
	}
	for _, table := range r.Tables {
		err := r.Truncate(ctx, table)
		if err == nil {
			continue
		}
		if r.IsMissingTable != nil && r.IsMissingTable(err) {
			if r.Logger != nil {
				r.Logger.Debug("Table not present, skipping truncate",
					zap.String("table", table))
			}
			continue
		}
		return fmt.Errorf("truncate %s: %w", table, err)
	}
	if err := r.Settle(ctx); err != nil {
		return fmt.Errorf("settle after reset: %w", err)
	}
	return nil
}
