// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package otp

import (
	"context"
	"sync"
	"time"

	"codeberg.org/oliverandrich/greengrocer/internal/models"
)

// MemoryStore keeps codes in process memory. Codes do not survive a restart
// and are not shared between instances.
type MemoryStore struct {
	mu    sync.Mutex
	codes map[string]models.VerificationCode
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{codes: make(map[string]models.VerificationCode)}
}

func (m *MemoryStore) Save(_ context.Context, code *models.VerificationCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[code.Email] = *code
	return nil
}

func (m *MemoryStore) Consume(_ context.Context, email string, decide func(*models.VerificationCode) bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var current *models.VerificationCode
	if code, ok := m.codes[email]; ok {
		current = &code
	}
	if decide(current) && current != nil {
		delete(m.codes, email)
	}
	return nil
}

func (m *MemoryStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for email, code := range m.codes {
		if code.Expired(now) {
			delete(m.codes, email)
			n++
		}
	}
	return n, nil
}
