// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package models

import "time"

// VerificationCode is the live one-time code for an email address.
// There is at most one row per email.
type VerificationCode struct { //nolint:govet // fieldalignment: readability over optimization
	Email     string    `db:"email" json:"email"`
	CodeHash  string    `db:"code_hash" json:"-"` // argon2id hash
	IssuedAt  time.Time `db:"issued_at" json:"issued_at"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
}

// Expired reports whether the code is past its expiry at now.
func (v *VerificationCode) Expired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}
