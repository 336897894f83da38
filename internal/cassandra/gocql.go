// Copyright (c) 2026 The OpenZipkin Authors
// SPDX-License-Identifier: Apache-2.0

package cassandra

import (
	"github.com/gocql/gocql"
)

// CQLSession is a wrapper around gocql.Session.
type CQLSession struct {
	session *gocql.Session
}

// WrapCQLSession creates a Session out of *gocql.Session.
func WrapCQLSession(session *gocql.Session) CQLSession {
	return CQLSession{session: session}
}

func (s CQLSession) Query(stmt string, values ...any) Query {
	return WrapCQLQuery(s.session.Query(stmt, values...))
}

func (s CQLSession) Close() {
	s.session.Close()
}

// CQLQuery is a wrapper around gocql.Query.
type CQLQuery struct {
	query *gocql.Query
}

// WrapCQLQuery creates a Query out of *gocql.Query.
func WrapCQLQuery(query *gocql.Query) CQLQuery {
	return CQLQuery{query: query}
}

func (q CQLQuery) Exec() error {
	return q.query.Exec()
}

func (q CQLQuery) String() string {
	return q.query.String()
}

func (q CQLQuery) Iter() Iterator {
	return WrapCQLIterator(q.query.Iter())
}

// CQLIterator is a wrapper around gocql.Iter.
type CQLIterator struct {
	iter *gocql.Iter
}

// WrapCQLIterator creates an Iterator out of *gocql.Iter.
func WrapCQLIterator(iter *gocql.Iter) CQLIterator {
	return CQLIterator{iter: iter}
}

func (i CQLIterator) Scan(dest ...any) bool {
	return i.iter.Scan(dest...)
}

func (i CQLIterator) Close() error {
	return i.iter.Close()
}
