// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package otp

import (
	"context"
	"time"

	"codeberg.org/oliverandrich/greengrocer/internal/models"
	"codeberg.org/oliverandrich/greengrocer/internal/repository"
)

// SQLStore keeps codes in the verification_codes table.
type SQLStore struct {
	repo *repository.Repository
}

// NewSQLStore creates a store backed by the application database.
func NewSQLStore(repo *repository.Repository) *SQLStore {
	return &SQLStore{repo: repo}
}

func (s *SQLStore) Save(ctx context.Context, code *models.VerificationCode) error {
	return s.repo.UpsertVerificationCode(ctx, code)
}

func (s *SQLStore) Consume(ctx context.Context, email string, decide func(*models.VerificationCode) bool) error {
	return s.repo.ConsumeVerificationCode(ctx, email, decide)
}

func (s *SQLStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return s.repo.DeleteExpiredVerificationCodes(ctx, now)
}
