// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the JSON HTTP API: accounts, the draft
// form, document generation and export, saved documents and payments.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"termsng/internal/identity"
	"termsng/internal/lifecycle"
	"termsng/internal/middleware"
	"termsng/internal/models"
	"termsng/internal/session"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Controllers hands out the per-client document lifecycle.
type Controllers interface {
	Get(key string) *lifecycle.Controller
	Rekey(oldKey, newKey string)
	Remove(key string)
}

// SessionStore is the part of session.Store the handlers need.
type SessionStore interface {
	Rotate(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
}

// TokenIssuer issues bearer tokens.
type TokenIssuer interface {
	Issue(who *identity.Identity) (string, time.Time, error)
}

// DraftStore keeps the last-entered form per client.
type DraftStore interface {
	Load(ctx context.Context, key string) models.BusinessProfile
	Save(ctx context.Context, key string, p models.BusinessProfile) error
	Delete(ctx context.Context, key string) error
	Move(ctx context.Context, oldKey, newKey string) error
}

// writeJSON sends data as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError sends {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads a JSON body into v. An empty body leaves v unchanged.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// principal returns the caller resolved by middleware.Identify.
func principal(r *http.Request) *middleware.Principal {
	if p := middleware.PrincipalFromCtx(r.Context()); p != nil {
		return p
	}
	return &middleware.Principal{}
}

// badRequest logs a malformed request and answers 400.
func badRequest(w http.ResponseWriter, r *http.Request, err error) {
	slog.Warn("bad request", "path", r.URL.Path, "error", err)
	writeError(w, http.StatusBadRequest, "The request body is not valid JSON.")
}

// Health answers liveness probes.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
