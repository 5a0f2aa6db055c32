// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package draft keeps the last business profile a visitor entered so the
// form can be restored on their next visit. There is one slot per session.
package draft

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"termsng/internal/models"
)

const (
	// DefaultTTL is how long an untouched draft is kept.
	DefaultTTL = 30 * 24 * time.Hour

	keyPrefix = "draft:"
)

// Store persists drafts in Valkey as JSON.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore creates a draft store. A non-positive ttl selects DefaultTTL.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{client: client, ttl: ttl}
}

// Load returns the saved draft for key. A missing, unreadable or malformed
// draft yields the default profile.
func (s *Store) Load(ctx context.Context, key string) models.BusinessProfile {
	p := models.DefaultProfile()

	payload, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err == redis.Nil {
		return p
	}
	if err != nil {
		slog.Warn("draft load failed", "error", err)
		return p
	}

	if err := json.Unmarshal(payload, &p); err != nil {
		slog.Warn("draft is malformed, using defaults", "error", err)
		return models.DefaultProfile()
	}
	if !p.BusinessType.Valid() {
		p.BusinessType = models.BusinessTypeService
	}
	return p
}

// Save replaces the draft for key and resets its TTL.
func (s *Store) Save(ctx context.Context, key string, p models.BusinessProfile) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("draft marshal: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("draft save: %w", err)
	}
	return nil
}

// Delete removes the draft for key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("draft delete: %w", err)
	}
	return nil
}

// Move carries a draft over to a new key when a session is rotated.
// A missing draft is not an error.
func (s *Store) Move(ctx context.Context, oldKey, newKey string) error {
	n, err := s.client.Exists(ctx, keyPrefix+oldKey).Result()
	if err != nil {
		return fmt.Errorf("draft move: %w", err)
	}
	if n == 0 {
		return nil
	}

	err = s.client.Rename(ctx, keyPrefix+oldKey, keyPrefix+newKey).Err()
	// The draft can expire between the two calls.
	if err != nil && !strings.Contains(err.Error(), "no such key") {
		return fmt.Errorf("draft move: %w", err)
	}
	return nil
}
