// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"termsng/internal/auth"
	"termsng/internal/identity"
	"termsng/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// PrincipalKey is the context key for the request's Principal.
	PrincipalKey contextKey = "principal"

	// tokenKeyPrefix namespaces document state keyed by bearer token.
	tokenKeyPrefix = "jwt:"
)

// Principal is the caller of a request. Key identifies the client whose
// document state the request operates on: the session id for browsers,
// or the token id for bearer-token clients.
type Principal struct {
	Key      string
	Identity *identity.Identity
	Session  *session.Data
}

// Authenticated reports whether a user is signed in.
func (p *Principal) Authenticated() bool {
	return p != nil && p.Identity != nil
}

// SessionStore is the part of session.Store Identify needs.
type SessionStore interface {
	Get(ctx context.Context, r *http.Request) (*session.Data, error)
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
}

// TokenParser verifies bearer tokens.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// Identify resolves the caller and stores a Principal in the request
// context. A request with an Authorization header must carry a valid
// bearer token. Otherwise the session cookie is used, and a visitor
// without one is given a fresh anonymous session.
func Identify(sessions SessionStore, tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if header := r.Header.Get("Authorization"); header != "" {
				p, ok := fromToken(header, tokens)
				if !ok {
					writeError(w, http.StatusUnauthorized, "Invalid or expired token.")
					return
				}
				next.ServeHTTP(w, withPrincipal(r, p))
				return
			}

			data, err := sessions.Get(r.Context(), r)
			if err != nil {
				// Treat an unreadable session as absent and start over.
				slog.Warn("session load failed", "error", err)
				data = nil
			}

			if data == nil {
				data = &session.Data{}
				if _, err := sessions.Create(r.Context(), w, data); err != nil {
					slog.Error("session create failed", "error", err)
					writeError(w, http.StatusServiceUnavailable, "Session storage is unavailable. Please try again.")
					return
				}
			}

			p := &Principal{Key: data.ID, Session: data}
			if data.Authenticated() {
				p.Identity = &identity.Identity{
					UserID:      data.UserID,
					Email:       data.Email,
					DisplayName: data.DisplayName,
				}
			}
			next.ServeHTTP(w, withPrincipal(r, p))
		})
	}
}

func fromToken(header string, tokens TokenParser) (*Principal, bool) {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return nil, false
	}

	claims, err := tokens.Parse(strings.TrimSpace(token))
	if err != nil {
		return nil, false
	}
	who, err := claims.Identity()
	if err != nil {
		return nil, false
	}
	return &Principal{Key: tokenKeyPrefix + claims.ID, Identity: who}, true
}

func withPrincipal(r *http.Request, p *Principal) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), PrincipalKey, p))
}

// RequireAuth responds 401 to callers who are not signed in.
// Must be applied after Identify in the middleware chain.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !PrincipalFromCtx(r.Context()).Authenticated() {
			writeError(w, http.StatusUnauthorized, "Please sign in to continue.")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// PrincipalFromCtx extracts the Principal from the request context.
// Returns nil if Identify has not run.
func PrincipalFromCtx(ctx context.Context) *Principal {
	p, _ := ctx.Value(PrincipalKey).(*Principal)
	return p
}
