// Copyright (c) 2026 The OpenZipkin Authors
// SPDX-License-Identifier: Apache-2.0

// Package schema names the Cassandra tables the harness knows about.
// The truncation set is closed over this schema: tables outside it are
// never touched, tables inside it that do not exist yet are benign.
package schema

import (
	"strings"
)

// DefaultKeyspace is the keyspace the storage image materializes.
const DefaultKeyspace = "zipkin2"

const (
	TableSpan                        = "span"
	TableDependency                  = "dependency"
	TableAutocompleteTags            = "autocomplete_tags"
	TableServiceRemoteServices       = "remote_service_by_service"
	TableServiceSpans                = "span_by_service"
	TableTraceByServiceRemoteService = "trace_by_service_remote_service"
	TableTraceByServiceSpan          = "trace_by_service_span"
)

// SearchTables are the index tables queried by trace search.
var SearchTables = []string{
	TableAutocompleteTags,
	TableServiceRemoteServices,
	TableServiceSpans,
	TableTraceByServiceRemoteService,
	TableTraceByServiceSpan,
}

// TruncateTables returns every table a state reset clears: the search
// tables plus the span and dependency tables.
func TruncateTables() []string {
	tables := make([]string, 0, len(SearchTables)+2)
	tables = append(tables, SearchTables...)
	return append(tables, TableDependency, TableSpan)
}

// IsUnconfiguredTable matches the server error raised by a DDL/DML
// statement against a table that has not been created, e.g.
// "unconfigured table span". A reset treats it as schema-not-yet-
// materialized rather than a failure.
func IsUnconfiguredTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "unconfigured table")
}
