// Copyright (c) 2026 The OpenZipkin Authors
// SPDX-License-Identifier: Apache-2.0

package fixture

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"go.uber.org/zap"

	"github.com/gio-palagashvili/zipkin-dependencies/internal/cassandra"
	casConfig "github.com/gio-palagashvili/zipkin-dependencies/internal/cassandra/config"
	"github.com/gio-palagashvili/zipkin-dependencies/internal/cassandra/schema"
	"github.com/gio-palagashvili/zipkin-dependencies/internal/cassandra/spanstore"
	"github.com/gio-palagashvili/zipkin-dependencies/internal/harness"
	"github.com/gio-palagashvili/zipkin-dependencies/internal/inflight"
	"github.com/gio-palagashvili/zipkin-dependencies/internal/model"
)

// DefaultCassandraImage ships the tracing schema pre-installed.
const DefaultCassandraImage = "ghcr.io/openzipkin/zipkin-cassandra:3.4.0"

const cassandraPort = nat.Port("9042/tcp")

// CassandraFixture runs the column store under test and exposes the
// harness operations against it.
type CassandraFixture struct {
	Image  string
	Config casConfig.Configuration
	Logger *zap.Logger
	// External points the fixture at an already-running cluster
	// (Config.ContactPoints) instead of starting a container.
	External bool

	cli         *client.Client
	containerID string
	registry    *inflight.Registry
	session     cassandra.Session
	writer      *spanstore.Writer
	barrier     *harness.Barrier
}

// NewCassandraFixture returns a fixture with default image and
// configuration.
func NewCassandraFixture(logger *zap.Logger) *CassandraFixture {
	return &CassandraFixture{
		Image:    DefaultCassandraImage,
		Config:   casConfig.DefaultConfiguration(),
		Logger:   logger,
		registry: inflight.NewRegistry(),
	}
}

// Start brings up the container (unless External), opens the fixture's
// session, and probes connectivity. An unreachable backend returns
// ErrBackendUnavailable so callers can skip instead of fail.
func (f *CassandraFixture) Start(ctx context.Context) error {
	if !f.External {
		cli, err := newDockerClient()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
		}
		f.cli = cli
		id, hostPort, err := startContainer(ctx, cli, f.Logger, f.Image, cassandraPort)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
		}
		f.containerID = id
		f.Config.ContactPoints = []string{"127.0.0.1:" + hostPort}
	}
	f.Logger.Info("Using contact points", zap.Strings("contact_points", f.Config.ContactPoints))

	base, err := f.connect(ctx)
	if err != nil {
		f.teardownContainer(ctx)
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	tracked := cassandra.NewTrackedSession(base, f.registry, f.Config.ContactPoints[0])

	// Probe without touching the keyspace, so a missing schema is
	// still reachable-and-healthy.
	if err := tracked.Query("SELECT now() FROM system.local").Exec(); err != nil {
		tracked.Close()
		f.teardownContainer(ctx)
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	writer, err := spanstore.NewWriter(tracked, f.Config.Keyspace, f.Logger)
	if err != nil {
		tracked.Close()
		f.teardownContainer(ctx)
		return err
	}

	f.session = tracked
	f.writer = writer
	f.barrier = &harness.Barrier{Metrics: f.registry, Logger: f.Logger}
	return nil
}

// connect dials the cluster. A containerized backend may still be
// warming up after its healthcheck passes, so dialing retries; an
// external one gets a single attempt to keep skips fast.
func (f *CassandraFixture) connect(ctx context.Context) (cassandra.Session, error) {
	if f.External {
		return f.Config.NewSession()
	}
	return backoff.Retry(ctx, func() (cassandra.Session, error) {
		return f.Config.NewSession()
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(time.Second)),
		backoff.WithMaxElapsedTime(2*time.Minute),
	)
}

// Stop closes the session and removes the container.
func (f *CassandraFixture) Stop(ctx context.Context) error {
	if f.session != nil {
		f.session.Close()
		f.session = nil
	}
	f.teardownContainer(ctx)
	if f.cli != nil {
		err := f.cli.Close()
		f.cli = nil
		return err
	}
	return nil
}

func (f *CassandraFixture) teardownContainer(ctx context.Context) {
	if f.containerID == "" {
		return
	}
	removeContainer(context.WithoutCancel(ctx), f.cli, f.Logger, f.containerID)
	f.containerID = ""
}

// Session exposes the fixture's tracked session.
func (f *CassandraFixture) Session() cassandra.Session {
	return f.session
}

// Barrier exposes the write-settlement barrier over this fixture's
// in-flight metrics.
func (f *CassandraFixture) Barrier() *harness.Barrier {
	return f.barrier
}

// WriteSpans ingests a batch through the chunked ingestor, settling
// between chunks.
func (f *CassandraFixture) WriteSpans(ctx context.Context, spans []*model.Span) error {
	ingestor := &harness.Ingestor[*model.Span]{
		Write:  f.writer.WriteSpans,
		Settle: f.barrier.Await,
		Logger: f.Logger,
	}
	return ingestor.Ingest(ctx, spans)
}

// ProcessDependencies writes the batch, then re-runs the aggregation
// job for each day the batch touches, as if it were a production
// batch.
func (f *CassandraFixture) ProcessDependencies(ctx context.Context, spans []*model.Span, runJob harness.JobRunner) error {
	if err := f.WriteSpans(ctx, spans); err != nil {
		return err
	}
	partitioner := &harness.Partitioner[*model.Span]{
		Aggregate:     model.AggregateLinks,
		RunJob:        runJob,
		Settle:        f.barrier.Await,
		Keyspace:      f.Config.Keyspace,
		LocalDC:       f.Config.LocalDC,
		ContactPoints: f.Config.ContactPoints,
		Logger:        f.Logger,
	}
	return partitioner.Process(ctx, spans)
}

// Clear resets storage state between tests: write-path cache, the
// closed table set, then a settle.
func (f *CassandraFixture) Clear(ctx context.Context) error {
	reset := &harness.Reset{
		Tables: schema.TruncateTables(),
		Truncate: func(_ context.Context, table string) error {
			return f.session.Query("TRUNCATE " + f.Config.Keyspace + "." + table).Exec()
		},
		IsMissingTable: schema.IsUnconfiguredTable,
		ClearCache:     f.writer.ClearCache,
		Settle:         f.barrier.Await,
		Logger:         f.Logger,
	}
	return reset.Run(ctx)
}
