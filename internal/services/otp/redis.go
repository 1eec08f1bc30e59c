// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"codeberg.org/oliverandrich/greengrocer/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "otp:"
	// redisGrace keeps expired codes around long enough to report Expired
	// instead of NotFoundOrMismatch. Redis drops them afterwards.
	redisGrace = 10 * time.Minute
	// redisMaxRetries bounds optimistic transaction retries on contention.
	redisMaxRetries = 5
)

// RedisStore keeps codes in Redis, one key per email.
type RedisStore struct {
	rdb *redis.Client
	now func() time.Time
}

// NewRedisStore wraps an existing client.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, now: time.Now}
}

// OpenRedisStore connects to the Redis server at url and pings it.
func OpenRedisStore(ctx context.Context, url string) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return NewRedisStore(rdb), nil
}

// Close closes the underlying client.
func (r *RedisStore) Close() error {
	return r.rdb.Close()
}

// stringGetter is satisfied by both *redis.Client and *redis.Tx.
type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

type redisRecord struct {
	CodeHash  string    `json:"code_hash"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (r *RedisStore) Save(ctx context.Context, code *models.VerificationCode) error {
	b, err := json.Marshal(redisRecord{
		CodeHash:  code.CodeHash,
		IssuedAt:  code.IssuedAt,
		ExpiresAt: code.ExpiresAt,
	})
	if err != nil {
		return err
	}
	ttl := code.ExpiresAt.Sub(r.now()) + redisGrace
	if ttl <= 0 {
		ttl = redisGrace
	}
	return r.rdb.Set(ctx, redisKeyPrefix+code.Email, b, ttl).Err()
}

func (r *RedisStore) Consume(ctx context.Context, email string, decide func(*models.VerificationCode) bool) error {
	key := redisKeyPrefix + email

	txf := func(tx *redis.Tx) error {
		code, err := r.get(ctx, tx, email)
		if err != nil {
			return err
		}
		if !decide(code) || code == nil {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		return err
	}

	for range redisMaxRetries {
		err := r.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("consuming %s: %w", key, redis.TxFailedErr)
}

// DeleteExpired is a no-op; Redis expires keys on its own.
func (r *RedisStore) DeleteExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (r *RedisStore) get(ctx context.Context, c stringGetter, email string) (*models.VerificationCode, error) {
	b, err := c.Get(ctx, redisKeyPrefix+email).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rec redisRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decoding stored code: %w", err)
	}
	return &models.VerificationCode{
		Email:     email,
		CodeHash:  rec.CodeHash,
		IssuedAt:  rec.IssuedAt,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}
