// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package payment records unlock payments. A checkout opens an attempt
// with a unique reference; the browser widget then reports success or
// cancellation, which closes the attempt exactly once.
package payment

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"termsng/internal/access"
	"termsng/internal/identity"
)

// Status is the state of a payment attempt.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusCancelled Status = "cancelled"
)

const (
	// DefaultAmount is the unlock price in major currency units.
	DefaultAmount = 4500

	// DefaultCurrency is the currency of DefaultAmount.
	DefaultCurrency = "NGN"
)

var (
	ErrUnknownReference = errors.New("payment: unknown reference")
	ErrAttemptClosed    = errors.New("payment: attempt already closed")
	ErrNotPaid          = errors.New("payment: payment not completed")
)

// Attempt is one checkout. Amount is in minor units (kobo for NGN).
type Attempt struct {
	Reference    string     `json:"reference"`
	UserID       uuid.UUID  `json:"-"`
	Email        string     `json:"email"`
	GenerationID uuid.UUID  `json:"generationId"`
	Amount       int64      `json:"amount"`
	Currency     string     `json:"currency"`
	Status       Status     `json:"status"`
	ProviderRef  string     `json:"providerRef,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	ClosedAt     *time.Time `json:"closedAt,omitempty"`
}

// Store persists attempts.
type Store interface {
	Put(ctx context.Context, a *Attempt) error
	// Get returns nil, nil when the reference is unknown.
	Get(ctx context.Context, ref string) (*Attempt, error)
	// Close records the final state of a. It reports false if the
	// attempt had already been closed.
	Close(ctx context.Context, a *Attempt) (bool, error)
}

// Verifier checks with the payment provider that an attempt was paid.
type Verifier interface {
	Verify(ctx context.Context, a *Attempt, providerRef string) error
}

// TrustingVerifier accepts the browser's report of success as-is.
type TrustingVerifier struct{}

// Verify always succeeds.
func (TrustingVerifier) Verify(context.Context, *Attempt, string) error { return nil }

// Config holds checkout settings.
type Config struct {
	Amount    int64 // major units
	Currency  string
	PublicKey string
}

// Service opens and closes payment attempts.
type Service struct {
	store    Store
	verifier Verifier
	cfg      Config
	now      func() time.Time
}

// NewService creates a Service. A nil verifier trusts the client.
func NewService(store Store, verifier Verifier, cfg Config) *Service {
	if verifier == nil {
		verifier = TrustingVerifier{}
	}
	if cfg.Amount <= 0 {
		cfg.Amount = DefaultAmount
	}
	if cfg.Currency == "" {
		cfg.Currency = DefaultCurrency
	}
	cfg.Currency = strings.ToUpper(cfg.Currency)
	return &Service{store: store, verifier: verifier, cfg: cfg, now: time.Now}
}

// PublicKey returns the key the browser widget is initialised with.
func (s *Service) PublicKey() string { return s.cfg.PublicKey }

// Checkout opens an attempt for who to unlock the given generation.
func (s *Service) Checkout(ctx context.Context, who *identity.Identity, generationID uuid.UUID) (*Attempt, error) {
	if who == nil {
		return nil, access.ErrAuthRequired
	}
	ref, err := s.newReference()
	if err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}

	a := &Attempt{
		Reference:    ref,
		UserID:       who.UserID,
		Email:        who.Email,
		GenerationID: generationID,
		Amount:       s.cfg.Amount * 100,
		Currency:     s.cfg.Currency,
		Status:       StatusPending,
		CreatedAt:    s.now(),
	}
	if err := s.store.Put(ctx, a); err != nil {
		return nil, fmt.Errorf("checkout: %w", err)
	}

	slog.Info("payment attempt opened", "reference", ref, "user_id", who.UserID)
	return a, nil
}

// Confirm closes the attempt as paid after the verifier accepts it.
func (s *Service) Confirm(ctx context.Context, ref string, who *identity.Identity, providerRef string) (*Attempt, error) {
	a, err := s.open(ctx, ref, who)
	if err != nil {
		return nil, err
	}

	if err := s.verifier.Verify(ctx, a, providerRef); err != nil {
		slog.Warn("payment verification failed", "reference", ref, "error", err)
		return nil, err
	}

	a.ProviderRef = providerRef
	return s.close(ctx, a, StatusSucceeded)
}

// Cancel closes the attempt without payment. The document stays locked.
func (s *Service) Cancel(ctx context.Context, ref string, who *identity.Identity) (*Attempt, error) {
	a, err := s.open(ctx, ref, who)
	if err != nil {
		return nil, err
	}
	return s.close(ctx, a, StatusCancelled)
}

// open loads a pending attempt owned by who.
func (s *Service) open(ctx context.Context, ref string, who *identity.Identity) (*Attempt, error) {
	if who == nil {
		return nil, access.ErrAuthRequired
	}
	a, err := s.store.Get(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("load attempt: %w", err)
	}
	if a == nil || a.UserID != who.UserID {
		return nil, ErrUnknownReference
	}
	if a.Status != StatusPending {
		return nil, ErrAttemptClosed
	}
	return a, nil
}

func (s *Service) close(ctx context.Context, a *Attempt, status Status) (*Attempt, error) {
	now := s.now()
	a.Status = status
	a.ClosedAt = &now

	ok, err := s.store.Close(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("close attempt: %w", err)
	}
	if !ok {
		return nil, ErrAttemptClosed
	}

	slog.Info("payment attempt closed", "reference", a.Reference, "status", status)
	return a, nil
}

// newReference returns a reference of the form TOS-<unix ms>-<random>.
func (s *Service) newReference() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("TOS-%d-%s", s.now().UnixMilli(), hex.EncodeToString(b)), nil
}
