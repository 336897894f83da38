// Copyright (c) 2026 The OpenZipkin Authors
// SPDX-License-Identifier: Apache-2.0

package fixture

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/gio-palagashvili/zipkin-dependencies/internal/harness"
	"github.com/gio-palagashvili/zipkin-dependencies/internal/model"
)

func TestMySQLFixture(t *testing.T) {
	SkipUnlessEnv(t, "mysql")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	f := NewMySQLFixture(zaptest.NewLogger(t))
	RequireAvailable(t, f.Start(ctx))
	t.Cleanup(func() {
		require.NoError(t, f.Stop(context.Background()))
	})

	require.NoError(t, f.Clear(ctx), "fresh fixture must reset cleanly")

	spans := append(
		clientServerTrace("000000000000000a", 18000, "frontend", "backend"),
		clientServerTrace("000000000000000b", 18001, "frontend", "backend")...,
	)

	write := func(ctx context.Context, spans []*model.Span) error {
		for i, span := range spans {
			_, err := f.DB().ExecContext(ctx,
				"INSERT INTO zipkin_spans (trace_id, id, name, start_ts, duration) VALUES (?, ?, ?, ?, ?)",
				i+1, i+1, span.Name, span.Timestamp, span.Duration)
			if err != nil {
				return err
			}
		}
		return nil
	}

	var jobs []harness.JobParams
	err := f.ProcessDependencies(ctx, spans, write, func(_ context.Context, p harness.JobParams) error {
		jobs = append(jobs, p)
		return nil
	})
	require.NoError(t, err)

	days := make([]int64, 0, len(jobs))
	for _, p := range jobs {
		days = append(days, p.Day)
		assert.Equal(t, f.Config.Database, p.Keyspace)
		assert.Equal(t, []string{fmt.Sprintf("%s:%d", f.Config.Host, f.Config.Port)}, p.ContactPoints)
		assert.False(t, p.StrictTraceID)
	}
	assert.ElementsMatch(t, []int64{18000, 18001}, days)

	assert.Equal(t, len(spans), countMySQLRows(t, f, "zipkin_spans"))

	require.NoError(t, f.Clear(ctx))
	assert.Zero(t, countMySQLRows(t, f, "zipkin_spans"), "reset must leave the span table empty")
}

func countMySQLRows(t *testing.T, f *MySQLFixture, table string) int {
	t.Helper()
	var count int
	require.NoError(t, f.DB().QueryRow("SELECT COUNT(*) FROM "+table).Scan(&count))
	return count
}
