// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

// Package postgres provides PostgreSQL implementations of auth repositories.
package postgres

import (
	"context"
	_ "embed"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
)

// Schema creates the auth tables. Statements are idempotent.
//
//go:embed schema.sql
var Schema string

// DBTX is the subset of *pgxpool.Pool used by the repositories.
// pgxmock.PgxPoolIface satisfies it in tests.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ApplySchema runs Schema against db.
func ApplySchema(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return oops.Code("SCHEMA_APPLY_FAILED").Wrap(err)
	}
	return nil
}

// Repositories bundles every auth repository over one connection.
type Repositories struct {
	Users    *UserRepository
	Sessions *SessionRepository
	Resets   *PasswordResetRepository
	Recovery *RecoveryCodeRepository
}

// NewRepositories creates all repositories backed by db.
func NewRepositories(db DBTX) *Repositories {
	return &Repositories{
		Users:    NewUserRepository(db),
		Sessions: NewSessionRepository(db),
		Resets:   NewPasswordResetRepository(db),
		Recovery: NewRecoveryCodeRepository(db),
	}
}
