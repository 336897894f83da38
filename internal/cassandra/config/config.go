// Copyright (c) 2026 The OpenZipkin Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"time"

	"github.com/gocql/gocql"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/gio-palagashvili/zipkin-dependencies/internal/cassandra"
	"github.com/gio-palagashvili/zipkin-dependencies/internal/cassandra/schema"
)

const (
	flagContactPoints = "cassandra.contact-points"
	flagKeyspace      = "cassandra.keyspace"
	flagLocalDC       = "cassandra.local-dc"
	flagTimeout       = "cassandra.timeout"
	flagMaxConns      = "cassandra.connections-per-host"
)

// Configuration describes how to connect to the Cassandra cluster under
// test. Connections per host defaults to 1: the harness intentionally
// runs on a minimal pool so that the chunked ingestor, not the driver,
// bounds concurrency.
type Configuration struct {
	ContactPoints      []string      `mapstructure:"contact_points"`
	Keyspace           string        `mapstructure:"keyspace"`
	LocalDC            string        `mapstructure:"local_dc"`
	Timeout            time.Duration `mapstructure:"timeout"`
	ConnectionsPerHost int           `mapstructure:"connections_per_host"`
}

// DefaultConfiguration returns a configuration for a local single-node
// cluster with the default keyspace.
func DefaultConfiguration() Configuration {
	return Configuration{
		ContactPoints:      []string{"127.0.0.1:9042"},
		Keyspace:           schema.DefaultKeyspace,
		Timeout:            10 * time.Second,
		ConnectionsPerHost: 1,
	}
}

// AddFlags registers CLI flags for this configuration.
func AddFlags(flagSet *pflag.FlagSet) {
	def := DefaultConfiguration()
	flagSet.StringSlice(flagContactPoints, def.ContactPoints, "Comma-separated host:port pairs of Cassandra contact points")
	flagSet.String(flagKeyspace, def.Keyspace, "Keyspace holding the tracing schema")
	flagSet.String(flagLocalDC, def.LocalDC, "Local datacenter hint for the dependency job")
	flagSet.Duration(flagTimeout, def.Timeout, "Query timeout")
	flagSet.Int(flagMaxConns, def.ConnectionsPerHost, "Connections opened to each host")
}

// InitFromViper populates the configuration from viper-bound flags and
// environment.
func (c *Configuration) InitFromViper(v *viper.Viper) {
	c.ContactPoints = v.GetStringSlice(flagContactPoints)
	c.Keyspace = v.GetString(flagKeyspace)
	c.LocalDC = v.GetString(flagLocalDC)
	c.Timeout = v.GetDuration(flagTimeout)
	c.ConnectionsPerHost = v.GetInt(flagMaxConns)
}

// NewCluster creates a gocql cluster config from the configuration.
func (c *Configuration) NewCluster() *gocql.ClusterConfig {
	cluster := gocql.NewCluster(c.ContactPoints...)
	cluster.Keyspace = c.Keyspace
	cluster.Consistency = gocql.LocalOne
	if c.Timeout > 0 {
		cluster.Timeout = c.Timeout
		cluster.ConnectTimeout = c.Timeout
	}
	if c.ConnectionsPerHost > 0 {
		cluster.NumConns = c.ConnectionsPerHost
	}
	cluster.PoolConfig.HostSelectionPolicy = gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy())
	return cluster
}

// NewSession creates a Cassandra session from the configuration.
func (c *Configuration) NewSession() (cassandra.Session, error) {
	session, err := c.NewCluster().CreateSession()
	if err != nil {
		return nil, err
	}
	return cassandra.WrapCQLSession(session), nil
}
