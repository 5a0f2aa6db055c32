// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"termsng/internal/access"
	"termsng/internal/export"
	"termsng/internal/generator"
	"termsng/internal/lifecycle"
	"termsng/internal/models"
	"termsng/internal/validation"
)

// Documents handles generation and the displayed document.
type Documents struct {
	controllers Controllers
	validator   *validation.Validator
	drafts      DraftStore
}

// NewDocuments creates a new Documents handler group.
func NewDocuments(controllers Controllers, validator *validation.Validator, drafts DraftStore) *Documents {
	return &Documents{controllers: controllers, validator: validator, drafts: drafts}
}

// Generate validates the submitted profile and generates a document. The
// profile is kept as the client's draft whether or not it is valid.
func (d *Documents) Generate(w http.ResponseWriter, r *http.Request) {
	p := principal(r)

	profile := models.DefaultProfile()
	if err := decodeJSON(w, r, &profile); err != nil {
		badRequest(w, r, err)
		return
	}

	if err := d.drafts.Save(r.Context(), p.Key, profile); err != nil {
		slog.Warn("draft save failed", "error", err)
	}

	if err := d.validator.Profile(profile); err != nil {
		var fields validation.Errors
		if errors.As(err, &fields) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":  "Please correct the highlighted fields.",
				"fields": fields,
			})
			return
		}
		slog.Error("profile validation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	snap, err := d.controllers.Get(p.Key).Submit(r.Context(), profile, p.Identity)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, snap)
	case errors.Is(err, lifecycle.ErrGenerationInProgress):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":    "A document is already being generated.",
			"document": snap,
		})
	case errors.Is(err, lifecycle.ErrDiscarded):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":    "The generation was cancelled.",
			"document": snap,
		})
	default:
		status := http.StatusServiceUnavailable
		if errors.Is(err, generator.ErrConfiguration) {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, map[string]any{
			"error":    snap.Error,
			"document": snap,
		})
	}
}

// Current returns the client's lifecycle snapshot.
func (d *Documents) Current(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	writeJSON(w, http.StatusOK, d.controllers.Get(p.Key).Snapshot(p.Identity))
}

// Clear discards the displayed document and the draft.
func (d *Documents) Clear(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	snap := d.controllers.Get(p.Key).Clear()
	if err := d.drafts.Delete(r.Context(), p.Key); err != nil {
		slog.Warn("draft delete failed", "error", err)
	}
	writeJSON(w, http.StatusOK, snap)
}

// View renders the displayed document as sanitised HTML. Locked documents
// can be viewed; the client obscures them.
func (d *Documents) View(w http.ResponseWriter, r *http.Request) {
	snap, ok := d.displayed(w, r, access.ActionView)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", export.FormatHTML.ContentType())
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(export.Sanitize(snap.Content)))
}

// Copy returns the displayed document for the clipboard. Plain text is
// the default; format=html copies the markup.
func (d *Documents) Copy(w http.ResponseWriter, r *http.Request) {
	format := export.FormatText
	var err error
	if q := r.URL.Query().Get("format"); q != "" {
		format, err = export.ParseFormat(q)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unsupported format.")
		return
	}

	snap, ok := d.displayed(w, r, access.ActionCopy)
	if !ok {
		return
	}

	content, err := export.Render(snap.Content, format)
	if err != nil {
		slog.Error("render document failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"format": string(format), "content": content})
}

// Download returns the displayed document as a file attachment.
func (d *Documents) Download(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Unsupported format.")
		return
	}

	snap, ok := d.displayed(w, r, access.ActionDownload)
	if !ok {
		return
	}

	content, err := export.Render(snap.Content, format)
	if err != nil {
		slog.Error("render document failed", "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.Filename()+`"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(content))
}

// displayed returns the displayed document if action is allowed on it,
// writing the error response otherwise.
func (d *Documents) displayed(w http.ResponseWriter, r *http.Request, action access.Action) (lifecycle.Snapshot, bool) {
	p := principal(r)
	snap := d.controllers.Get(p.Key).Snapshot(p.Identity)

	if snap.State != lifecycle.StateReady || snap.Content == "" {
		writeError(w, http.StatusNotFound, "There is no document to show.")
		return snap, false
	}

	switch err := access.Allow(action, p.Authenticated(), snap.Locked); {
	case errors.Is(err, access.ErrAuthRequired):
		writeError(w, http.StatusUnauthorized, "Please sign in to continue.")
		return snap, false
	case errors.Is(err, access.ErrLocked):
		writeError(w, http.StatusPaymentRequired, "Unlock this document to copy or download it.")
		return snap, false
	}
	return snap, true
}
