// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package errutil

import (
	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
)

// TestingT is the subset of *testing.T the assertions use.
type TestingT interface {
	assert.TestingT
	Helper()
}

// AssertErrorCode asserts that err carries the oops code, anywhere in its chain.
func AssertErrorCode(t TestingT, err error, code string) bool {
	t.Helper()
	if !assert.Error(t, err) {
		return false
	}
	return assert.Equal(t, code, Code(err), "error: %v", err)
}

// AssertErrorContext asserts that err carries key with value in its oops context.
func AssertErrorContext(t TestingT, err error, key string, value any) bool {
	t.Helper()
	oopsErr, ok := oops.AsOops(err)
	if !assert.True(t, ok, "expected oops error, got %T", err) {
		return false
	}
	ctx := oopsErr.Context()
	if !assert.Contains(t, ctx, key) {
		return false
	}
	return assert.Equal(t, value, ctx[key])
}
