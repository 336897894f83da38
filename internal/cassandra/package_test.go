// Copyright (c) 2026 The OpenZipkin Authors
// SPDX-License-Identifier: Apache-2.0

package cassandra

import (
	"testing"

	"github.com/gio-palagashvili/zipkin-dependencies/internal/testutils"
)

func TestMain(m *testing.M) {
	testutils.VerifyGoLeaks(m)
}
