// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package payment

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/google/uuid"

	"termsng/internal/identity"
)

// memStore is an in-memory Store.
type memStore struct {
	mu       sync.Mutex
	attempts map[string]Attempt
	closed   map[string]bool
}

func newMemStore() *memStore {
	return &memStore{attempts: map[string]Attempt{}, closed: map[string]bool{}}
}

func (m *memStore) Put(_ context.Context, a *Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[a.Reference] = *a
	return nil
}

func (m *memStore) Get(_ context.Context, ref string) (*Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[ref]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *memStore) Close(_ context.Context, a *Attempt) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed[a.Reference] {
		return false, nil
	}
	m.closed[a.Reference] = true
	m.attempts[a.Reference] = *a
	return true, nil
}

type rejectVerifier struct{}

func (rejectVerifier) Verify(context.Context, *Attempt, string) error { return ErrNotPaid }

func payer() *identity.Identity {
	return &identity.Identity{UserID: uuid.New(), Email: "payer@example.com"}
}

func TestCheckout(t *testing.T) {
	svc := NewService(newMemStore(), nil, Config{PublicKey: "pk_test_123"})
	who := payer()
	gen := uuid.New()

	a, err := svc.Checkout(context.Background(), who, gen)
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}

	if !regexp.MustCompile(`^TOS-\d+-[0-9a-f]{8}$`).MatchString(a.Reference) {
		t.Errorf("reference format: %q", a.Reference)
	}
	if a.Amount != 450000 || a.Currency != "NGN" {
		t.Errorf("amount: got %d %s, want 450000 NGN", a.Amount, a.Currency)
	}
	if a.Email != who.Email || a.GenerationID != gen || a.Status != StatusPending {
		t.Errorf("unexpected attempt: %+v", a)
	}
	if svc.PublicKey() != "pk_test_123" {
		t.Errorf("public key: got %q", svc.PublicKey())
	}

	b, _ := svc.Checkout(context.Background(), who, gen)
	if a.Reference == b.Reference {
		t.Error("references should be unique")
	}
}

func TestConfirmClosesOnce(t *testing.T) {
	svc := NewService(newMemStore(), nil, Config{})
	who := payer()
	ctx := context.Background()

	a, _ := svc.Checkout(ctx, who, uuid.New())

	done, err := svc.Confirm(ctx, a.Reference, who, "pay_1")
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if done.Status != StatusSucceeded || done.ClosedAt == nil || done.ProviderRef != "pay_1" {
		t.Errorf("unexpected attempt: %+v", done)
	}

	if _, err := svc.Confirm(ctx, a.Reference, who, "pay_1"); !errors.Is(err, ErrAttemptClosed) {
		t.Errorf("second confirm: got %v", err)
	}
	if _, err := svc.Cancel(ctx, a.Reference, who); !errors.Is(err, ErrAttemptClosed) {
		t.Errorf("cancel after confirm: got %v", err)
	}
}

func TestCancel(t *testing.T) {
	svc := NewService(newMemStore(), nil, Config{})
	who := payer()
	ctx := context.Background()

	a, _ := svc.Checkout(ctx, who, uuid.New())
	got, err := svc.Cancel(ctx, a.Reference, who)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if got.Status != StatusCancelled {
		t.Errorf("status: got %s", got.Status)
	}
	if _, err := svc.Confirm(ctx, a.Reference, who, ""); !errors.Is(err, ErrAttemptClosed) {
		t.Errorf("confirm after cancel: got %v", err)
	}
}

func TestUnknownOrForeignReference(t *testing.T) {
	svc := NewService(newMemStore(), nil, Config{})
	ctx := context.Background()

	if _, err := svc.Confirm(ctx, "TOS-1-deadbeef", payer(), ""); !errors.Is(err, ErrUnknownReference) {
		t.Errorf("unknown reference: got %v", err)
	}

	a, _ := svc.Checkout(ctx, payer(), uuid.New())
	if _, err := svc.Cancel(ctx, a.Reference, payer()); !errors.Is(err, ErrUnknownReference) {
		t.Errorf("another user's reference: got %v", err)
	}
}

func TestConfirmRejectedByVerifier(t *testing.T) {
	svc := NewService(newMemStore(), rejectVerifier{}, Config{})
	who := payer()
	ctx := context.Background()

	a, _ := svc.Checkout(ctx, who, uuid.New())
	if _, err := svc.Confirm(ctx, a.Reference, who, "pi_x"); !errors.Is(err, ErrNotPaid) {
		t.Fatalf("got %v, want ErrNotPaid", err)
	}

	// A rejected confirmation leaves the attempt open.
	if _, err := svc.Cancel(ctx, a.Reference, who); err != nil {
		t.Errorf("cancel after rejection: %v", err)
	}
}

func TestNewServiceDefaults(t *testing.T) {
	svc := NewService(newMemStore(), nil, Config{Amount: 10, Currency: "usd"})
	a, _ := svc.Checkout(context.Background(), payer(), uuid.New())
	if a.Amount != 1000 || a.Currency != "USD" {
		t.Errorf("got %d %s", a.Amount, a.Currency)
	}
}
