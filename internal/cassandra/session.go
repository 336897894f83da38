// Copyright (c) 2026 The OpenZipkin Authors
// SPDX-License-Identifier: Apache-2.0

package cassandra

// Session is an abstraction of gocql.Session. The indirection keeps the
// harness core testable without a live cluster.
type Session interface {
	Query(stmt string, values ...any) Query
	Close()
}

// Query is an abstraction of gocql.Query, reduced to what the harness
// issues: updates and single-statement reads.
type Query interface {
	Exec() error
	String() string
	Iter() Iterator
}

// Iterator is an abstraction of gocql.Iter
type Iterator interface {
	Scan(dest ...any) bool
	Close() error
}
