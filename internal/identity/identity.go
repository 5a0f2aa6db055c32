// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package identity defines who a caller is and how credentials are checked.
// Handlers and the document lifecycle depend only on the Provider interface,
// so the credential backend can be swapped without touching them.
package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"termsng/internal/models"
	"termsng/internal/validation"
)

var (
	ErrMissingFields      = errors.New("identity: missing email or password")
	ErrInvalidEmail       = errors.New("identity: invalid email")
	ErrWeakPassword       = errors.New("identity: password too short")
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
	ErrEmailTaken         = errors.New("identity: email already registered")
)

// messages holds the text shown to users for each credential error.
var messages = map[error]string{
	ErrMissingFields:      "Please fill in all fields.",
	ErrInvalidEmail:       "Please enter a valid email format.",
	ErrWeakPassword:       fmt.Sprintf("Password must be at least %d characters.", MinPasswordLen),
	ErrInvalidCredentials: "Invalid email or password.",
	ErrEmailTaken:         "An account with this email already exists.",
}

// Message returns the user-facing text for err and whether err is a
// credential error rather than an internal failure.
func Message(err error) (string, bool) {
	for target, msg := range messages {
		if errors.Is(err, target) {
			return msg, true
		}
	}
	return "", false
}

// MinPasswordLen is the shortest password accepted at registration.
const MinPasswordLen = 8

// Identity is an authenticated user as seen by the rest of the service.
type Identity struct {
	UserID      uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
}

// Provider registers and authenticates users.
type Provider interface {
	Register(email, password, displayName string) (*Identity, error)
	Authenticate(email, password string) (*Identity, error)
	Lookup(id uuid.UUID) (*Identity, error)
}

// UserRepository is the persistence needed by Service.
type UserRepository interface {
	FindByEmail(email string) (*models.User, error)
	FindByID(id uuid.UUID) (*models.User, error)
	Create(email, password, displayName string) (*models.User, error)
	CheckPassword(user *models.User, password string) bool
}

// ErrDuplicate is returned by a UserRepository when the email already exists.
var ErrDuplicate = errors.New("duplicate user")

// Service is the Provider backed by the users table.
type Service struct {
	users UserRepository
}

// NewService creates a Service over the given repository.
func NewService(users UserRepository) *Service {
	return &Service{users: users}
}

// Register creates an account. Emails are compared case-insensitively.
func (s *Service) Register(email, password, displayName string) (*Identity, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}
	if !validation.ValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if len(password) < MinPasswordLen {
		return nil, ErrWeakPassword
	}

	existing, err := s.users.FindByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	u, err := s.users.Create(email, password, strings.TrimSpace(displayName))
	if errors.Is(err, ErrDuplicate) {
		return nil, ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return fromUser(u), nil
}

// Authenticate checks an email and password pair.
func (s *Service) Authenticate(email, password string) (*Identity, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}

	u, err := s.users.FindByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("authenticate: %w", err)
	}
	if u == nil || !s.users.CheckPassword(u, password) {
		return nil, ErrInvalidCredentials
	}
	return fromUser(u), nil
}

// Lookup returns the identity for a user id, or nil if the user is gone.
func (s *Service) Lookup(id uuid.UUID) (*Identity, error) {
	u, err := s.users.FindByID(id)
	if err != nil {
		return nil, fmt.Errorf("lookup: %w", err)
	}
	if u == nil {
		return nil, nil
	}
	return fromUser(u), nil
}

func fromUser(u *models.User) *Identity {
	return &Identity{UserID: u.ID, Email: u.Email, DisplayName: u.Name()}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
