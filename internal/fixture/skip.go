// Copyright (c) 2026 The OpenZipkin Authors
// SPDX-License-Identifier: Apache-2.0

package fixture

import (
	"errors"
	"os"
	"slices"
	"strings"
	"testing"
)

// SkipUnlessEnv skips the test unless the STORAGE environment variable
// names one of the given backends.
func SkipUnlessEnv(t *testing.T, storage ...string) {
	t.Helper()
	env := os.Getenv("STORAGE")
	if slices.Contains(storage, env) {
		return
	}
	t.Skipf("This test requires environment variable STORAGE=%s", strings.Join(storage, "|"))
}

// RequireAvailable distinguishes "no backend to test against" from a
// real failure: an unavailable backend skips, any other error fails.
func RequireAvailable(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		return
	}
	if errors.Is(err, ErrBackendUnavailable) {
		t.Skipf("storage backend unavailable: %v", err)
	}
	t.Fatalf("fixture setup failed: %v", err)
}
