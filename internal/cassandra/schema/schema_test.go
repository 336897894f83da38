// Copyright (c) 2026 The OpenZipkin Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateTablesIsClosedSet(t *testing.T) {
	tables := TruncateTables()
	assert.Equal(t, []string{
		TableAutocompleteTags,
		TableServiceRemoteServices,
		TableServiceSpans,
		TableTraceByServiceRemoteService,
		TableTraceByServiceSpan,
		TableDependency,
		TableSpan,
	}, tables)
}

func TestTruncateTablesReturnsFreshSlice(t *testing.T) {
	first := TruncateTables()
	first[0] = "mutated"
	assert.NotEqual(t, first[0], TruncateTables()[0])
}

func TestIsUnconfiguredTable(t *testing.T) {
	assert.True(t, IsUnconfiguredTable(errors.New("unconfigured table span_by_service")))
	assert.True(t, IsUnconfiguredTable(fmt.Errorf("exec: %w", errors.New("unconfigured table span"))))
	assert.False(t, IsUnconfiguredTable(errors.New("no hosts available")))
	assert.False(t, IsUnconfiguredTable(nil))
}
