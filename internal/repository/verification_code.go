// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"codeberg.org/oliverandrich/greengrocer/internal/models"
)

// UpsertVerificationCode stores the code for an email, replacing any previous one.
func (r *Repository) UpsertVerificationCode(ctx context.Context, code *models.VerificationCode) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO verification_codes (email, code_hash, issued_at, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (email) DO UPDATE SET
			code_hash = excluded.code_hash,
			issued_at = excluded.issued_at,
			expires_at = excluded.expires_at`,
		code.Email, code.CodeHash, code.IssuedAt.UTC(), code.ExpiresAt.UTC())
	return err
}

// DeleteExpiredVerificationCodes removes all codes that expired before now.
func (r *Repository) DeleteExpiredVerificationCodes(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM verification_codes WHERE expires_at < ?`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ConsumeVerificationCode loads the code for email inside a write transaction
// and passes it to decide. The row is deleted when decide returns true.
// decide receives nil when no code is stored. The connection opens write
// transactions immediately, so other writers wait for decide to return; keep
// it short.
func (r *Repository) ConsumeVerificationCode(ctx context.Context, email string, decide func(*models.VerificationCode) bool) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var row models.VerificationCode
	var code *models.VerificationCode
	err = tx.GetContext(ctx, &row, `SELECT * FROM verification_codes WHERE email = ?`, email)
	switch {
	case err == nil:
		code = &row
	case errors.Is(err, sql.ErrNoRows):
		err = nil
	default:
		return err
	}

	if decide(code) && code != nil {
		if _, err = tx.ExecContext(ctx, `DELETE FROM verification_codes WHERE email = ?`, email); err != nil {
			return err
		}
	}

	return tx.Commit()
}
