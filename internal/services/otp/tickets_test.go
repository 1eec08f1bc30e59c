// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package otp

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTickets_RoundTrip(t *testing.T) {
	tickets, err := NewTickets("secret", time.Minute)
	require.NoError(t, err)

	ticket, err := tickets.Issue("a@x.com")
	require.NoError(t, err)

	email, err := tickets.Parse(ticket)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", email)
}

func TestTickets_Expired(t *testing.T) {
	tickets, err := NewTickets("secret", time.Minute)
	require.NoError(t, err)
	now := time.Now()
	tickets.now = func() time.Time { return now }

	ticket, err := tickets.Issue("a@x.com")
	require.NoError(t, err)

	tickets.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, err = tickets.Parse(ticket)
	assert.ErrorIs(t, err, ErrInvalidTicket)
}

func TestTickets_WrongSecret(t *testing.T) {
	issuer, err := NewTickets("secret-a", 0)
	require.NoError(t, err)
	verifier, err := NewTickets("secret-b", 0)
	require.NoError(t, err)

	ticket, err := issuer.Issue("a@x.com")
	require.NoError(t, err)

	_, err = verifier.Parse(ticket)
	assert.ErrorIs(t, err, ErrInvalidTicket)
}

func TestTickets_RejectsOtherAudience(t *testing.T) {
	tickets, err := NewTickets("secret", 0)
	require.NoError(t, err)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    ticketIssuer,
		Subject:   "a@x.com",
		Audience:  jwt.ClaimStrings{"session"},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = tickets.Parse(forged)
	assert.ErrorIs(t, err, ErrInvalidTicket)
}

func TestTickets_Garbage(t *testing.T) {
	tickets, err := NewTickets("", 0)
	require.NoError(t, err)

	_, err = tickets.Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidTicket)
}
