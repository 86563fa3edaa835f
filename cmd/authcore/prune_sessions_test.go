// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package main

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
)

func TestPruneSessions(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectExec(`DELETE FROM sessions WHERE expires_at <= \$1`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	out, err := execute(t, testDeps(pool, newFakeObsServer(), nil), "",
		"prune-sessions", "--database-url", "postgres://localhost/authcore")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "Pruned 3 expired sessions") {
		t.Errorf("output = %q", out)
	}
	if err := pool.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPruneSessions_StoreFailure(t *testing.T) {
	pool := newMockPool(t)
	pool.ExpectExec(`DELETE FROM sessions`).
		WithArgs(pgxmock.AnyArg()).
		WillReturnError(errors.New("connection refused"))

	_, err := execute(t, testDeps(pool, newFakeObsServer(), nil), "",
		"prune-sessions", "--database-url", "postgres://localhost/authcore")
	if err == nil || !strings.Contains(err.Error(), "failed to prune sessions") {
		t.Fatalf("error = %v, want prune failure", err)
	}
}

func TestPruneSessions_RequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	deps := &Deps{
		PoolFactory: func(context.Context, string) (Pool, error) {
			t.Fatal("pool factory must not be called")
			return nil, nil
		},
	}

	_, err := execute(t, deps, "", "prune-sessions")
	if err == nil || !strings.Contains(err.Error(), "database_url is required") {
		t.Fatalf("error = %v, want missing database url", err)
	}
}

func TestPruneSessions_ConnectFailure(t *testing.T) {
	deps := &Deps{
		PoolFactory: func(context.Context, string) (Pool, error) {
			return nil, errors.New("dial tcp: refused")
		},
	}

	_, err := execute(t, deps, "", "prune-sessions", "--database-url", "postgres://localhost/authcore")
	if err == nil || !strings.Contains(err.Error(), "failed to connect to database") {
		t.Fatalf("error = %v, want connect failure", err)
	}
}
