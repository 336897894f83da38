// Copyright (c) 2026 The OpenZipkin Authors
// SPDX-License-Identifier: Apache-2.0

package fixture

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"
	"go.uber.org/zap"

	"github.com/gio-palagashvili/zipkin-dependencies/internal/harness"
	"github.com/gio-palagashvili/zipkin-dependencies/internal/inflight"
	"github.com/gio-palagashvili/zipkin-dependencies/internal/model"
	"github.com/gio-palagashvili/zipkin-dependencies/internal/mysql"
)

// DefaultMySQLImage ships the relational tracing schema pre-installed.
const DefaultMySQLImage = "ghcr.io/openzipkin/zipkin-mysql:3.4.0"

const mysqlPort = nat.Port("3306/tcp")

// MySQLFixture runs the relational store under test. SQL writes are
// synchronous, so its barrier observes no in-flight nodes and settles
// immediately; it exists so both fixtures drive the same reset and
// dependency-processing flow.
type MySQLFixture struct {
	Image  string
	Config mysql.Configuration
	Logger *zap.Logger
	// External points the fixture at an already-running server instead
	// of starting a container.
	External bool

	cli         *client.Client
	containerID string
	registry    *inflight.Registry
	db          *sql.DB
	barrier     *harness.Barrier
}

// NewMySQLFixture returns a fixture with default image and credentials.
func NewMySQLFixture(logger *zap.Logger) *MySQLFixture {
	return &MySQLFixture{
		Image:    DefaultMySQLImage,
		Config:   mysql.DefaultConfiguration(),
		Logger:   logger,
		registry: inflight.NewRegistry(),
	}
}

// Start brings up the container (unless External), opens the pool and
// pings it. An unreachable backend returns ErrBackendUnavailable.
func (f *MySQLFixture) Start(ctx context.Context) error {
	if !f.External {
		cli, err := newDockerClient()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
		}
		f.cli = cli
		id, hostPort, err := startContainer(ctx, cli, f.Logger, f.Image, mysqlPort)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
		}
		f.containerID = id
		port, err := strconv.Atoi(hostPort)
		if err != nil {
			f.teardownContainer(ctx)
			return fmt.Errorf("bad mapped port %q: %w", hostPort, err)
		}
		f.Config.Host, f.Config.Port = "127.0.0.1", port
	}
	f.Logger.Info("Using host port", zap.String("host", f.Config.Host), zap.Int("port", f.Config.Port))

	db, err := f.Config.Open()
	if err != nil {
		f.teardownContainer(ctx)
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}
	if err := f.ping(ctx, db); err != nil {
		db.Close()
		f.teardownContainer(ctx)
		return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	f.db = db
	f.barrier = &harness.Barrier{Metrics: f.registry, Logger: f.Logger}
	return nil
}

func (f *MySQLFixture) ping(ctx context.Context, db *sql.DB) error {
	if f.External {
		return db.PingContext(ctx)
	}
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, db.PingContext(ctx)
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(time.Second)),
		backoff.WithMaxElapsedTime(2*time.Minute),
	)
	return err
}

// Stop closes the pool and removes the container.
func (f *MySQLFixture) Stop(ctx context.Context) error {
	if f.db != nil {
		f.db.Close()
		f.db = nil
	}
	f.teardownContainer(ctx)
	if f.cli != nil {
		err := f.cli.Close()
		f.cli = nil
		return err
	}
	return nil
}

func (f *MySQLFixture) teardownContainer(ctx context.Context) {
	if f.containerID == "" {
		return
	}
	removeContainer(context.WithoutCancel(ctx), f.cli, f.Logger, f.containerID)
	f.containerID = ""
}

// DB exposes the fixture's connection pool.
func (f *MySQLFixture) DB() *sql.DB {
	return f.db
}

// ProcessDependencies writes the batch through the injected writer and
// re-runs the aggregation job for each day the batch touches. Job
// parameters reuse the generic shape: the database name travels as the
// keyspace and host:port as the contact point.
func (f *MySQLFixture) ProcessDependencies(ctx context.Context, spans []*model.Span, write func(ctx context.Context, spans []*model.Span) error, runJob harness.JobRunner) error {
	if err := write(ctx, spans); err != nil {
		return fmt.Errorf("write spans: %w", err)
	}
	partitioner := &harness.Partitioner[*model.Span]{
		Aggregate:     model.AggregateLinks,
		RunJob:        runJob,
		Settle:        f.barrier.Await,
		Keyspace:      f.Config.Database,
		ContactPoints: []string{fmt.Sprintf("%s:%d", f.Config.Host, f.Config.Port)},
		Logger:        f.Logger,
	}
	return partitioner.Process(ctx, spans)
}

// Clear truncates the relational schema between tests. There is no
// write-path cache on this side.
func (f *MySQLFixture) Clear(ctx context.Context) error {
	reset := &harness.Reset{
		Tables: mysql.Tables,
		Truncate: func(ctx context.Context, table string) error {
			_, err := f.db.ExecContext(ctx, "TRUNCATE TABLE "+table)
			return err
		},
		IsMissingTable: mysql.IsMissingTable,
		Settle:         f.barrier.Await,
		Logger:         f.Logger,
	}
	return reset.Run(ctx)
}
