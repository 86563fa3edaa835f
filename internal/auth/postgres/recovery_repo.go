// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthCore Contributors

package postgres

import (
	"context"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/authcore/authcore/internal/auth"
)

// RecoveryCodeRepository implements auth.RecoveryCodeRepository using PostgreSQL.
type RecoveryCodeRepository struct {
	db DBTX
}

// NewRecoveryCodeRepository creates a new RecoveryCodeRepository.
func NewRecoveryCodeRepository(db DBTX) *RecoveryCodeRepository {
	return &RecoveryCodeRepository{db: db}
}

// Replace discards the user's codes and stores codeHashes in one transaction.
func (r *RecoveryCodeRepository) Replace(ctx context.Context, userID ulid.ULID, codeHashes []string) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return oops.Code("RECOVERY_TX_FAILED").
			With("operation", "begin transaction").
			Wrap(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM recovery_codes WHERE user_id = $1`, userID.String()); err != nil {
		return oops.Code("RECOVERY_DELETE_FAILED").
			With("operation", "delete recovery codes").
			With("user_id", userID.String()).
			Wrap(err)
	}

	if len(codeHashes) > 0 {
		_, err = tx.Exec(ctx, `
			INSERT INTO recovery_codes (code_hash, user_id)
			SELECT unnest($1::text[]), $2
		`, codeHashes, userID.String())
		if err != nil {
			return oops.Code("RECOVERY_INSERT_FAILED").
				With("operation", "insert recovery codes").
				With("user_id", userID.String()).
				Wrap(err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return oops.Code("RECOVERY_TX_FAILED").
			With("operation", "commit transaction").
			Wrap(err)
	}
	return nil
}

// Consume deletes the matching code and reports whether one existed.
func (r *RecoveryCodeRepository) Consume(ctx context.Context, userID ulid.ULID, codeHash string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM recovery_codes WHERE user_id = $1 AND code_hash = $2`,
		userID.String(), codeHash)
	if err != nil {
		return false, oops.Code("RECOVERY_CONSUME_FAILED").
			With("operation", "delete recovery code").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return tag.RowsAffected() == 1, nil
}

// Compile-time interface check.
var _ auth.RecoveryCodeRepository = (*RecoveryCodeRepository)(nil)
