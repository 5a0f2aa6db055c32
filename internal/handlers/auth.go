// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"termsng/internal/identity"
)

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	identities  identity.Provider
	sessions    SessionStore
	tokens      TokenIssuer
	controllers Controllers
	drafts      DraftStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(identities identity.Provider, sessions SessionStore, tokens TokenIssuer, controllers Controllers, drafts DraftStore) *Auth {
	return &Auth{
		identities:  identities,
		sessions:    sessions,
		tokens:      tokens,
		controllers: controllers,
		drafts:      drafts,
	}
}

type credentials struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

// SignUp registers an account and signs it in on the current session.
func (a *Auth) SignUp(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(w, r, &in); err != nil {
		badRequest(w, r, err)
		return
	}

	who, err := a.identities.Register(in.Email, in.Password, in.DisplayName)
	if err != nil {
		a.credentialError(w, err)
		return
	}

	slog.Info("user registered", "user_id", who.UserID)
	if !a.attach(w, r, who) {
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"user": who})
}

// SignIn authenticates and attaches the identity to the current session.
// The displayed document and draft are kept.
func (a *Auth) SignIn(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(w, r, &in); err != nil {
		badRequest(w, r, err)
		return
	}

	who, err := a.identities.Authenticate(in.Email, in.Password)
	if err != nil {
		a.credentialError(w, err)
		return
	}

	if !a.attach(w, r, who) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": who})
}

// SignOut detaches the identity and drops the displayed document. Bearer
// tokens are stateless, so for them only the document state is dropped.
func (a *Auth) SignOut(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	if p.Session == nil {
		a.controllers.Remove(p.Key)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	data := p.Session
	data.UserID = uuid.Nil
	data.Email = ""
	data.DisplayName = ""

	old, err := a.sessions.Rotate(r.Context(), w, data)
	if err != nil {
		slog.Error("session rotate failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "Could not sign out. Please try again.")
		return
	}
	a.controllers.Remove(old)
	if err := a.drafts.Move(r.Context(), old, data.ID); err != nil {
		slog.Warn("draft move failed", "error", err)
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in identity, or null.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"user": principal(r).Identity})
}

// Token exchanges credentials for a bearer token.
func (a *Auth) Token(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decodeJSON(w, r, &in); err != nil {
		badRequest(w, r, err)
		return
	}

	who, err := a.identities.Authenticate(in.Email, in.Password)
	if err != nil {
		a.credentialError(w, err)
		return
	}

	token, expiresAt, err := a.tokens.Issue(who)
	if err != nil {
		slog.Error("token issue failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token":     token,
		"tokenType": "Bearer",
		"expiresAt": expiresAt,
		"user":      who,
	})
}

// attach signs who in on the request's session, rotating the session id
// and carrying over the document state and draft. Bearer requests are
// already authenticated and need nothing.
func (a *Auth) attach(w http.ResponseWriter, r *http.Request, who *identity.Identity) bool {
	p := principal(r)
	if p.Session == nil {
		return true
	}

	data := p.Session
	data.UserID = who.UserID
	data.Email = who.Email
	data.DisplayName = who.DisplayName

	old, err := a.sessions.Rotate(r.Context(), w, data)
	if err != nil {
		slog.Error("session rotate failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "Could not sign you in. Please try again.")
		return false
	}
	a.controllers.Rekey(old, data.ID)
	if err := a.drafts.Move(r.Context(), old, data.ID); err != nil {
		slog.Warn("draft move failed", "error", err)
	}
	return true
}

// credentialError maps identity errors to responses.
func (a *Auth) credentialError(w http.ResponseWriter, err error) {
	msg, ok := identity.Message(err)
	if !ok {
		slog.Error("identity request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	status := http.StatusBadRequest
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, identity.ErrEmailTaken):
		status = http.StatusConflict
	}
	writeError(w, status, msg)
}
