// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"termsng/internal/lifecycle"
)

// Library manages a signed-in user's saved documents. All routes require
// authentication.
type Library struct {
	controllers Controllers
}

// NewLibrary creates a new Library handler group.
func NewLibrary(controllers Controllers) *Library {
	return &Library{controllers: controllers}
}

// List returns the saved documents in creation order.
func (l *Library) List(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	docs := l.controllers.Get(p.Key).List(p.Identity)
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// Save stores the displayed document under an optional name.
func (l *Library) Save(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		badRequest(w, r, err)
		return
	}

	p := principal(r)
	doc, err := l.controllers.Get(p.Key).Save(in.Name, p.Identity)
	if err != nil {
		l.lifecycleError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// Open displays a saved document in place of the current one.
func (l *Library) Open(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}

	p := principal(r)
	snap, err := l.controllers.Get(p.Key).View(id, p.Identity)
	if err != nil {
		l.lifecycleError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// Delete removes a saved document. Deleting an unknown id succeeds.
func (l *Library) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := documentID(w, r)
	if !ok {
		return
	}

	p := principal(r)
	if err := l.controllers.Get(p.Key).Delete(id, p.Identity); err != nil {
		l.lifecycleError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func documentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Document not found.")
		return uuid.Nil, false
	}
	return id, true
}

// lifecycleError maps lifecycle errors to responses.
func (l *Library) lifecycleError(w http.ResponseWriter, err error) {
	var pe *lifecycle.PersistenceError
	switch {
	case errors.Is(err, lifecycle.ErrNothingToSave):
		writeError(w, http.StatusConflict, "There is no document to save.")
	case errors.Is(err, lifecycle.ErrNotFound):
		writeError(w, http.StatusNotFound, "Document not found.")
	case errors.Is(err, lifecycle.ErrGenerationInProgress):
		writeError(w, http.StatusConflict, "A document is already being generated.")
	case errors.As(err, &pe):
		slog.Error("document storage failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "Your documents could not be updated. Please try again.")
	default:
		authOrInternal(w, err)
	}
}
