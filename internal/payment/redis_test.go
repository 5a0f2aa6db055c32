// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package payment

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := os.Getenv("VALKEY_HOST")
	if host == "" {
		host = "localhost"
	}
	port := os.Getenv("VALKEY_PORT")
	if port == "" {
		port = "6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, keyPrefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})
	return client
}

func TestRedisStoreRoundTrip(t *testing.T) {
	s := NewRedisStore(testValkeyClient(t))
	ctx := context.Background()

	a := &Attempt{
		Reference:    "TOS-1-test",
		UserID:       uuid.New(),
		Email:        "payer@example.com",
		GenerationID: uuid.New(),
		Amount:       450000,
		Currency:     "NGN",
		Status:       StatusPending,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	if err := s.Put(ctx, a); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, a.Reference)
	if err != nil || got == nil {
		t.Fatalf("Get: %v, %v", got, err)
	}
	if got.GenerationID != a.GenerationID || got.Amount != a.Amount {
		t.Errorf("got %+v, want %+v", got, a)
	}

	missing, err := s.Get(ctx, "TOS-0-none")
	if err != nil || missing != nil {
		t.Errorf("missing: got %+v, %v", missing, err)
	}
}

func TestRedisStoreCloseOnce(t *testing.T) {
	s := NewRedisStore(testValkeyClient(t))
	ctx := context.Background()

	a := &Attempt{Reference: "TOS-2-test", Status: StatusPending}
	s.Put(ctx, a)

	a.Status = StatusSucceeded
	ok, err := s.Close(ctx, a)
	if err != nil || !ok {
		t.Fatalf("first Close: %v, %v", ok, err)
	}

	a.Status = StatusCancelled
	ok, err = s.Close(ctx, a)
	if err != nil || ok {
		t.Errorf("second Close should be refused: %v, %v", ok, err)
	}

	got, _ := s.Get(ctx, a.Reference)
	if got.Status != StatusSucceeded {
		t.Errorf("status: got %s, want succeeded", got.Status)
	}
}
