// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package otp

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"codeberg.org/oliverandrich/greengrocer/internal/models"
	"codeberg.org/oliverandrich/greengrocer/internal/testutil"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	mu    sync.Mutex
	codes map[string][]string
	err   error
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{codes: make(map[string][]string)}
}

func (f *fakeMailer) SendVerificationCode(_ context.Context, to, code string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.codes[to] = append(f.codes[to], code)
	return nil
}

func (f *fakeMailer) last(to string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	sent := f.codes[to]
	if len(sent) == 0 {
		return ""
	}
	return sent[len(sent)-1]
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newRedisTestStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb)
}

// stores returns every Store implementation, freshly initialized.
func stores(t *testing.T) map[string]func(t *testing.T) Store {
	return map[string]func(t *testing.T) Store{
		"memory": func(*testing.T) Store { return NewMemoryStore() },
		"sql": func(t *testing.T) Store {
			_, repo := testutil.NewTestDB(t)
			return NewSQLStore(repo)
		},
		"redis": func(t *testing.T) Store { return newRedisTestStore(t) },
	}
}

// storedCode reads the current record without consuming it.
func storedCode(t *testing.T, store Store, email string) *models.VerificationCode {
	t.Helper()
	var got *models.VerificationCode
	require.NoError(t, store.Consume(context.Background(), email, func(c *models.VerificationCode) bool {
		got = c
		return false
	}))
	return got
}

func newTestService(t *testing.T, store Store) (*Service, *fakeMailer, *clock) {
	t.Helper()
	mailer := newFakeMailer()
	tickets, err := NewTickets("test-secret", 0)
	require.NoError(t, err)

	clk := &clock{now: time.Now().UTC().Truncate(time.Second)}
	svc := NewService(store, mailer, tickets, Options{TTL: DefaultTTL})
	svc.now = clk.Now
	return svc, mailer, clk
}

func TestGenerateCode(t *testing.T) {
	for range 50 {
		code, err := GenerateCode()
		require.NoError(t, err)
		assert.Len(t, code, CodeLength)
		assert.True(t, wellFormed(code), code)
	}
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "verified", Verified.String())
	assert.Equal(t, "expired", Expired.String())
	assert.Equal(t, "not_found_or_mismatch", NotFoundOrMismatch.String())
}

func TestService(t *testing.T) {
	ctx := context.Background()

	for name, newStore := range stores(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("verify after issue succeeds once", func(t *testing.T) {
				svc, mailer, _ := newTestService(t, newStore(t))
				require.NoError(t, svc.Issue(ctx, "a@x.com"))
				code := mailer.last("a@x.com")
				require.Len(t, code, CodeLength)

				outcome, err := svc.Verify(ctx, "a@x.com", code)
				require.NoError(t, err)
				assert.Equal(t, Verified, outcome)

				outcome, err = svc.Verify(ctx, "a@x.com", code)
				require.NoError(t, err)
				assert.Equal(t, NotFoundOrMismatch, outcome)
			})

			t.Run("second issue overwrites the first", func(t *testing.T) {
				svc, mailer, _ := newTestService(t, newStore(t))
				codes := []string{"111111", "222222"}
				svc.generate = func() (string, error) {
					code := codes[0]
					codes = codes[1:]
					return code, nil
				}

				require.NoError(t, svc.Issue(ctx, "a@x.com"))
				require.NoError(t, svc.Issue(ctx, "a@x.com"))

				assert.Equal(t, []string{"111111", "222222"}, mailer.codes["a@x.com"])
				first, second := "111111", "222222"

				outcome, err := svc.Verify(ctx, "a@x.com", first)
				require.NoError(t, err)
				assert.Equal(t, NotFoundOrMismatch, outcome)

				outcome, err = svc.Verify(ctx, "a@x.com", second)
				require.NoError(t, err)
				assert.Equal(t, Verified, outcome)
			})

			t.Run("expired code is purged on touch", func(t *testing.T) {
				svc, mailer, clk := newTestService(t, newStore(t))
				require.NoError(t, svc.Issue(ctx, "a@x.com"))
				code := mailer.last("a@x.com")

				clk.Advance(DefaultTTL + time.Second)

				outcome, err := svc.Verify(ctx, "a@x.com", code)
				require.NoError(t, err)
				assert.Equal(t, Expired, outcome)

				outcome, err = svc.Verify(ctx, "a@x.com", code)
				require.NoError(t, err)
				assert.Equal(t, NotFoundOrMismatch, outcome)
			})

			t.Run("code is still valid at the expiry instant", func(t *testing.T) {
				svc, mailer, clk := newTestService(t, newStore(t))
				require.NoError(t, svc.Issue(ctx, "a@x.com"))

				clk.Advance(DefaultTTL)

				outcome, err := svc.Verify(ctx, "a@x.com", mailer.last("a@x.com"))
				require.NoError(t, err)
				assert.Equal(t, Verified, outcome)
			})

			t.Run("wrong guess keeps the stored code", func(t *testing.T) {
				svc, mailer, _ := newTestService(t, newStore(t))
				svc.generate = func() (string, error) { return "123456", nil }
				require.NoError(t, svc.Issue(ctx, "a@x.com"))

				for _, guess := range []string{"654321", "12345", "abcdef", ""} {
					outcome, err := svc.Verify(ctx, "a@x.com", guess)
					require.NoError(t, err)
					assert.Equal(t, NotFoundOrMismatch, outcome, guess)
				}

				outcome, err := svc.Verify(ctx, "a@x.com", mailer.last("a@x.com"))
				require.NoError(t, err)
				assert.Equal(t, Verified, outcome)
			})

			t.Run("codes are independent per email", func(t *testing.T) {
				svc, mailer, _ := newTestService(t, newStore(t))
				codes := []string{"111111", "222222"}
				svc.generate = func() (string, error) {
					c := codes[0]
					codes = codes[1:]
					return c, nil
				}
				require.NoError(t, svc.Issue(ctx, "a@x.com"))
				require.NoError(t, svc.Issue(ctx, "b@y.com"))

				outcome, err := svc.Verify(ctx, "a@x.com", mailer.last("b@y.com"))
				require.NoError(t, err)
				assert.Equal(t, NotFoundOrMismatch, outcome)

				outcome, err = svc.Verify(ctx, "b@y.com", mailer.last("b@y.com"))
				require.NoError(t, err)
				assert.Equal(t, Verified, outcome)
			})

			t.Run("emails are case-folded", func(t *testing.T) {
				svc, mailer, _ := newTestService(t, newStore(t))
				require.NoError(t, svc.Issue(ctx, " A@X.com "))

				outcome, err := svc.Verify(ctx, "a@x.COM", mailer.last("a@x.com"))
				require.NoError(t, err)
				assert.Equal(t, Verified, outcome)
			})

			t.Run("failed send stores nothing", func(t *testing.T) {
				store := newStore(t)
				svc, mailer, _ := newTestService(t, store)
				mailer.err = errors.New("smtp down")

				err := svc.Issue(ctx, "a@x.com")

				require.ErrorIs(t, err, ErrSendFailed)
				assert.Nil(t, storedCode(t, store, "a@x.com"))
			})

			t.Run("codes are stored hashed", func(t *testing.T) {
				store := newStore(t)
				svc, mailer, _ := newTestService(t, store)
				require.NoError(t, svc.Issue(ctx, "a@x.com"))

				stored := storedCode(t, store, "a@x.com")
				require.NotNil(t, stored)
				assert.NotContains(t, stored.CodeHash, mailer.last("a@x.com"))
				assert.Contains(t, stored.CodeHash, "$argon2id$")
			})

			t.Run("delete expired", func(t *testing.T) {
				store := newStore(t)
				svc, _, clk := newTestService(t, store)
				require.NoError(t, svc.Issue(ctx, "a@x.com"))

				n, err := store.DeleteExpired(ctx, clk.Now())
				require.NoError(t, err)
				assert.Zero(t, n)

				if name == "redis" {
					return
				}
				n, err = store.DeleteExpired(ctx, clk.Now().Add(DefaultTTL+time.Second))
				require.NoError(t, err)
				assert.Equal(t, int64(1), n)
			})
		})
	}
}

func TestService_InvalidEmail(t *testing.T) {
	svc, mailer, _ := newTestService(t, NewMemoryStore())

	for _, email := range []string{"", "not-an-email", "Asha <a@x.com>"} {
		err := svc.Issue(context.Background(), email)
		assert.ErrorIs(t, err, ErrInvalidEmail, email)
	}
	assert.Empty(t, mailer.codes)

	outcome, err := svc.Verify(context.Background(), "not-an-email", "123456")
	require.NoError(t, err)
	assert.Equal(t, NotFoundOrMismatch, outcome)
}

func TestService_ConcurrentVerifyConsumesOnce(t *testing.T) {
	svc, mailer, _ := newTestService(t, NewMemoryStore())
	require.NoError(t, svc.Issue(context.Background(), "a@x.com"))
	code := mailer.last("a@x.com")

	var wg sync.WaitGroup
	results := make(chan Outcome, 8)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := svc.Verify(context.Background(), "a@x.com", code)
			assert.NoError(t, err)
			results <- outcome
		}()
	}
	wg.Wait()
	close(results)

	verified := 0
	for outcome := range results {
		if outcome == Verified {
			verified++
		}
	}
	assert.Equal(t, 1, verified)
}

func TestNewService_Defaults(t *testing.T) {
	svc := NewService(NewMemoryStore(), newFakeMailer(), nil, Options{TTL: -1})

	assert.Equal(t, DefaultTTL, svc.TTL())
}
