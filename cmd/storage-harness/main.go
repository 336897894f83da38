// Copyright (c) 2026 The OpenZipkin Authors
// SPDX-License-Identifier: Apache-2.0

// Command storage-harness offers the harness's backend operations as a
// CLI for local debugging: probing a cluster and resetting its state
// the same way the test fixtures do.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/gio-palagashvili/zipkin-dependencies/internal/cassandra"
	casConfig "github.com/gio-palagashvili/zipkin-dependencies/internal/cassandra/config"
	"github.com/gio-palagashvili/zipkin-dependencies/internal/cassandra/schema"
	"github.com/gio-palagashvili/zipkin-dependencies/internal/harness"
	"github.com/gio-palagashvili/zipkin-dependencies/internal/inflight"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	v := viper.New()
	cfg := casConfig.DefaultConfiguration()

	root := &cobra.Command{
		Use:          "storage-harness",
		Short:        "Operate the trace storage backends the integration harness drives",
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			cfg.InitFromViper(v)
		},
	}
	casConfig.AddFlags(root.PersistentFlags())
	v.BindPFlags(root.PersistentFlags())
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	root.AddCommand(newPingCommand(&cfg))
	root.AddCommand(newResetCommand(&cfg))
	return root
}

func newLogger() *zap.Logger {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	return logger
}

func newPingCommand(cfg *casConfig.Configuration) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Probe the cluster without touching the keyspace",
		RunE: func(*cobra.Command, []string) error {
			logger := newLogger()
			defer logger.Sync()

			session, err := cfg.NewSession()
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			defer session.Close()
			if err := session.Query("SELECT now() FROM system.local").Exec(); err != nil {
				return fmt.Errorf("probe: %w", err)
			}
			logger.Info("Backend reachable", zap.Strings("contact_points", cfg.ContactPoints))
			return nil
		},
	}
}

func newResetCommand(cfg *casConfig.Configuration) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Truncate the harness's table set and wait for writes to settle",
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := newLogger()
			defer logger.Sync()

			base, err := cfg.NewSession()
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}
			registry := inflight.NewRegistry()
			session := cassandra.NewTrackedSession(base, registry, cfg.ContactPoints[0])
			defer session.Close()

			barrier := &harness.Barrier{Metrics: registry, Logger: logger}
			reset := &harness.Reset{
				Tables: schema.TruncateTables(),
				Truncate: func(_ context.Context, table string) error {
					return session.Query("TRUNCATE " + cfg.Keyspace + "." + table).Exec()
				},
				IsMissingTable: schema.IsUnconfiguredTable,
				Settle:         barrier.Await,
				Logger:         logger,
			}
			if err := reset.Run(cmd.Context()); err != nil {
				return err
			}
			logger.Info("Reset complete", zap.String("keyspace", cfg.Keyspace))
			return nil
		},
	}
}
