// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package otp issues and verifies one-time email verification codes.
package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/mail"
	"time"

	"codeberg.org/oliverandrich/greengrocer/internal/models"
	"codeberg.org/oliverandrich/greengrocer/internal/repository"
	"github.com/alexedwards/argon2id"
)

const (
	// CodeLength is the number of digits in a verification code.
	CodeLength = 6
	// DefaultTTL is how long a code stays valid.
	DefaultTTL = 10 * time.Minute
)

var (
	ErrInvalidEmail = errors.New("invalid email")
	ErrSendFailed   = errors.New("failed to send code")
)

// hashParams keep a verification cheap enough for interactive use. Codes are
// short-lived, so these are lighter than the argon2id defaults. The SQL store
// compares inside its write transaction, so this cost is also how long a
// verification holds the database write lock.
var hashParams = &argon2id.Params{
	Memory:      19 * 1024,
	Iterations:  2,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

// Outcome is the result of a verification attempt.
type Outcome int

const (
	// NotFoundOrMismatch covers both a missing code and a wrong code.
	NotFoundOrMismatch Outcome = iota
	Expired
	Verified
)

func (o Outcome) String() string {
	switch o {
	case Verified:
		return "verified"
	case Expired:
		return "expired"
	default:
		return "not_found_or_mismatch"
	}
}

// Store keeps at most one code per email. Implementations must make
// Consume atomic with respect to Save and other Consume calls for the same key.
type Store interface {
	// Save stores a code, replacing any previous code for the same email.
	Save(ctx context.Context, code *models.VerificationCode) error
	// Consume passes the stored code (or nil) to decide and deletes it
	// when decide returns true.
	Consume(ctx context.Context, email string, decide func(*models.VerificationCode) bool) error
	// DeleteExpired purges codes that expired before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Mailer delivers a code to its recipient.
type Mailer interface {
	SendVerificationCode(ctx context.Context, to, code string, ttl time.Duration) error
}

// Options configures a Service.
type Options struct {
	TTL time.Duration
}

// Service issues and verifies codes.
type Service struct {
	store    Store
	mailer   Mailer
	tickets  *Tickets
	ttl      time.Duration
	now      func() time.Time
	generate func() (string, error)
}

// NewService creates a Service. A TTL of zero or less falls back to DefaultTTL.
func NewService(store Store, mailer Mailer, tickets *Tickets, opts Options) *Service {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	return &Service{
		store:    store,
		mailer:   mailer,
		tickets:  tickets,
		ttl:      opts.TTL,
		now:      time.Now,
		generate: GenerateCode,
	}
}

// TTL returns the lifetime of issued codes.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Tickets returns the ticket signer used for verified emails.
func (s *Service) Tickets() *Tickets {
	return s.tickets
}

// Issue generates a code for email, mails it and stores it, replacing any
// code issued earlier. The code is only stored after the mail was handed off
// successfully. Resend pacing is left to the client.
func (s *Service) Issue(ctx context.Context, email string) error {
	email, err := normalize(email)
	if err != nil {
		return err
	}

	now := s.now()
	code, err := s.generate()
	if err != nil {
		return fmt.Errorf("generating code: %w", err)
	}
	hash, err := argon2id.CreateHash(code, hashParams)
	if err != nil {
		return fmt.Errorf("hashing code: %w", err)
	}

	if err := s.mailer.SendVerificationCode(ctx, email, code, s.ttl); err != nil {
		slog.Error("otp_send_failed", "email", email, "error", err)
		return fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	record := &models.VerificationCode{
		Email:     email,
		CodeHash:  hash,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.Save(ctx, record); err != nil {
		return fmt.Errorf("storing code: %w", err)
	}

	slog.Info("otp_issued", "email", email, "expires_at", record.ExpiresAt)
	return nil
}

// Verify checks code against the stored code for email. Verified and Expired
// codes are removed; a wrong guess leaves the stored code in place.
func (s *Service) Verify(ctx context.Context, email, code string) (Outcome, error) {
	email, err := normalize(email)
	if err != nil {
		return NotFoundOrMismatch, nil
	}

	now := s.now()
	outcome := NotFoundOrMismatch
	var hashErr error

	err = s.store.Consume(ctx, email, func(stored *models.VerificationCode) bool {
		hashErr = nil
		switch {
		case stored == nil:
			outcome = NotFoundOrMismatch
			return false
		case stored.Expired(now):
			outcome = Expired
			return true
		case !wellFormed(code):
			outcome = NotFoundOrMismatch
			return false
		}

		match, cmpErr := argon2id.ComparePasswordAndHash(code, stored.CodeHash)
		if cmpErr != nil {
			hashErr = cmpErr
			return false
		}
		if match {
			outcome = Verified
			return true
		}
		outcome = NotFoundOrMismatch
		return false
	})
	if err != nil {
		return NotFoundOrMismatch, fmt.Errorf("consuming code: %w", err)
	}
	if hashErr != nil {
		return NotFoundOrMismatch, fmt.Errorf("comparing code: %w", hashErr)
	}

	switch outcome {
	case Verified:
		slog.Info("otp_verified", "email", email)
	case Expired:
		slog.Info("otp_expired", "email", email)
	default:
		slog.Warn("otp_mismatch", "email", email)
	}
	return outcome, nil
}

// GenerateCode returns a uniformly random, zero-padded 6-digit code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", CodeLength, n.Int64()), nil
}

func normalize(email string) (string, error) {
	email = repository.NormalizeEmail(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func wellFormed(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
