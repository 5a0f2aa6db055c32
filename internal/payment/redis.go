// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// AttemptTTL is how long attempts are kept in Valkey.
	AttemptTTL = 7 * 24 * time.Hour

	keyPrefix = "payment:"
)

// RedisStore keeps attempts in Valkey as JSON.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a RedisStore.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, ttl: AttemptTTL}
}

// Put stores a new attempt.
func (s *RedisStore) Put(ctx context.Context, a *Attempt) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("attempt marshal: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+a.Reference, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("attempt store: %w", err)
	}
	return nil
}

// Get loads an attempt by reference.
func (s *RedisStore) Get(ctx context.Context, ref string) (*Attempt, error) {
	payload, err := s.client.Get(ctx, keyPrefix+ref).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("attempt get: %w", err)
	}

	var a Attempt
	if err := json.Unmarshal(payload, &a); err != nil {
		return nil, fmt.Errorf("attempt unmarshal: %w", err)
	}
	return &a, nil
}

// Close claims the attempt's close marker with SETNX, so concurrent
// confirm and cancel calls cannot both succeed, then stores the final state.
func (s *RedisStore) Close(ctx context.Context, a *Attempt) (bool, error) {
	ok, err := s.client.SetNX(ctx, keyPrefix+a.Reference+":closed", string(a.Status), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("attempt close: %w", err)
	}
	if !ok {
		return false, nil
	}
	if err := s.Put(ctx, a); err != nil {
		return true, err
	}
	return true, nil
}
