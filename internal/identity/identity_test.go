// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package identity

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"termsng/internal/models"
)

// memUsers is an in-memory UserRepository. Passwords are stored in clear
// since hashing is the real store's concern.
type memUsers struct {
	byEmail   map[string]*models.User
	passwords map[uuid.UUID]string
	failWith  error
}

func newMemUsers() *memUsers {
	return &memUsers{byEmail: map[string]*models.User{}, passwords: map[uuid.UUID]string{}}
}

func (m *memUsers) FindByEmail(email string) (*models.User, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	return m.byEmail[email], nil
}

func (m *memUsers) FindByID(id uuid.UUID) (*models.User, error) {
	for _, u := range m.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memUsers) Create(email, password, displayName string) (*models.User, error) {
	if _, ok := m.byEmail[email]; ok {
		return nil, fmt.Errorf("create user: %w", ErrDuplicate)
	}
	u := &models.User{ID: uuid.New(), Email: email, DisplayName: displayName, CreatedAt: time.Now()}
	m.byEmail[email] = u
	m.passwords[u.ID] = password
	return u, nil
}

func (m *memUsers) CheckPassword(u *models.User, password string) bool {
	return m.passwords[u.ID] == password
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := NewService(newMemUsers())

	id, err := svc.Register("  Ada@Example.com ", "correct-horse", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if id.Email != "ada@example.com" {
		t.Errorf("email should be normalised, got %q", id.Email)
	}
	if id.DisplayName != "ada" {
		t.Errorf("display name fallback: got %q", id.DisplayName)
	}

	got, err := svc.Authenticate("ADA@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.UserID != id.UserID {
		t.Errorf("user id: got %s, want %s", got.UserID, id.UserID)
	}

	looked, err := svc.Lookup(id.UserID)
	if err != nil || looked == nil || looked.Email != id.Email {
		t.Errorf("Lookup: got %+v, %v", looked, err)
	}
	missing, err := svc.Lookup(uuid.New())
	if err != nil || missing != nil {
		t.Errorf("Lookup unknown: got %+v, %v", missing, err)
	}
}

func TestRegisterErrors(t *testing.T) {
	svc := NewService(newMemUsers())
	if _, err := svc.Register("taken@example.com", "password1", ""); err != nil {
		t.Fatalf("seed: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
		want     error
		message  string
	}{
		{"missing email", "", "password1", ErrMissingFields, "Please fill in all fields."},
		{"missing password", "a@b.co", "", ErrMissingFields, "Please fill in all fields."},
		{"invalid email", "not-an-email", "password1", ErrInvalidEmail, "Please enter a valid email format."},
		{"short password", "a@b.co", "short", ErrWeakPassword, "Password must be at least 8 characters."},
		{"duplicate", "Taken@example.com", "password1", ErrEmailTaken, "An account with this email already exists."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(tt.email, tt.password, "")
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			msg, ok := Message(err)
			if !ok || msg != tt.message {
				t.Errorf("Message() = %q, %v; want %q", msg, ok, tt.message)
			}
		})
	}
}

func TestAuthenticateErrors(t *testing.T) {
	svc := NewService(newMemUsers())
	svc.Register("ada@example.com", "password1", "Ada")

	for _, tc := range []struct{ email, password string }{
		{"ada@example.com", "wrong-password"},
		{"nobody@example.com", "password1"},
	} {
		if _, err := svc.Authenticate(tc.email, tc.password); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Authenticate(%q): got %v, want ErrInvalidCredentials", tc.email, err)
		}
	}
}

func TestRepositoryFailureIsInternal(t *testing.T) {
	users := newMemUsers()
	users.failWith = errors.New("connection refused")
	svc := NewService(users)

	_, err := svc.Authenticate("ada@example.com", "password1")
	if err == nil {
		t.Fatal("expected error")
	}
	if _, ok := Message(err); ok {
		t.Error("repository failures must not map to a credential message")
	}
}
