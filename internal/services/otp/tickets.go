// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package otp

import (
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// DefaultTicketTTL is how long a verified-email ticket is accepted.
	DefaultTicketTTL = 15 * time.Minute

	ticketIssuer   = "greengrocer"
	ticketAudience = "verified-email"
)

var ErrInvalidTicket = errors.New("invalid or expired verification ticket")

// Tickets signs and checks short-lived proofs that an email address passed
// code verification.
type Tickets struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTickets creates a ticket signer. An empty secret is replaced with a
// random one, which invalidates tickets on restart.
func NewTickets(secret string, ttl time.Duration) (*Tickets, error) {
	key := []byte(secret)
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generating ticket secret: %w", err)
		}
		slog.Warn("no auth token secret configured, using a random one")
	}
	if ttl <= 0 {
		ttl = DefaultTicketTTL
	}
	return &Tickets{secret: key, ttl: ttl, now: time.Now}, nil
}

// Issue returns a signed ticket for email.
func (t *Tickets) Issue(email string) (string, error) {
	now := t.now()
	claims := jwt.RegisteredClaims{
		Issuer:    ticketIssuer,
		Subject:   email,
		Audience:  jwt.ClaimStrings{ticketAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse validates a ticket and returns the email it was issued for.
func (t *Tickets) Parse(ticket string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(ticket, claims,
		func(*jwt.Token) (any, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(ticketIssuer),
		jwt.WithAudience(ticketAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil || claims.Subject == "" {
		return "", ErrInvalidTicket
	}
	return claims.Subject, nil
}
