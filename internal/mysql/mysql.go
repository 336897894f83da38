// Copyright (c) 2026 The OpenZipkin Authors
// SPDX-License-Identifier: Apache-2.0

// Package mysql holds the relational-store side of the harness: DSN
// construction, the closed truncation set, and missing-table matching.
package mysql

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
)

const (
	// errNoSuchTable is ER_NO_SUCH_TABLE, raised by TRUNCATE against a
	// table that does not exist.
	errNoSuchTable = 1146

	DefaultUser     = "zipkin"
	DefaultPassword = "zipkin"
	DefaultDatabase = "zipkin"
)

// Tables is the closed set of truncation targets in the relational
// schema.
var Tables = []string{
	"zipkin_spans",
	"zipkin_annotations",
	"zipkin_dependencies",
}

// Configuration describes how to connect to the MySQL store under test.
type Configuration struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// DefaultConfiguration returns a configuration for the stock storage
// image's credentials, pointed at localhost.
func DefaultConfiguration() Configuration {
	return Configuration{
		Host:     "127.0.0.1",
		Port:     3306,
		User:     DefaultUser,
		Password: DefaultPassword,
		Database: DefaultDatabase,
	}
}

// DSN renders the driver connection string.
func (c *Configuration) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
	cfg.DBName = c.Database
	cfg.ParseTime = true
	cfg.Timeout = 10 * time.Second
	return cfg.FormatDSN()
}

// Open opens a connection pool; connectivity is not verified until the
// first use (callers ping explicitly to distinguish skip from failure).
func (c *Configuration) Open() (*sql.DB, error) {
	return sql.Open("mysql", c.DSN())
}

// IsMissingTable reports whether an error is the server telling us a
// truncation target does not exist yet.
func IsMissingTable(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == errNoSuchTable
}
