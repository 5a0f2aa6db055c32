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

	"termsng/internal/access"
	"termsng/internal/lifecycle"
	"termsng/internal/payment"
)

// Payments runs the unlock flow for the displayed document. All routes
// require authentication.
type Payments struct {
	controllers Controllers
	payments    *payment.Service
}

// NewPayments creates a new Payments handler group.
func NewPayments(controllers Controllers, payments *payment.Service) *Payments {
	return &Payments{controllers: controllers, payments: payments}
}

// Checkout opens a payment attempt for the displayed locked document.
func (h *Payments) Checkout(w http.ResponseWriter, r *http.Request) {
	var in struct {
		GenerationID string `json:"generationId"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		badRequest(w, r, err)
		return
	}

	p := principal(r)
	snap := h.controllers.Get(p.Key).Snapshot(p.Identity)
	if !snap.CanUnlock || in.GenerationID == "" || in.GenerationID != snap.GenerationID {
		writeError(w, http.StatusConflict, "There is no locked document to unlock.")
		return
	}

	attempt, err := h.payments.Checkout(r.Context(), p.Identity, uuid.MustParse(snap.GenerationID))
	if errors.Is(err, access.ErrAuthRequired) {
		authOrInternal(w, err)
		return
	}
	if err != nil {
		slog.Error("checkout failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "Payment could not be started. Please try again.")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"attempt":   attempt,
		"publicKey": h.payments.PublicKey(),
	})
}

// Confirm records a successful payment and unlocks the document.
func (h *Payments) Confirm(w http.ResponseWriter, r *http.Request) {
	var in struct {
		ProviderRef string `json:"providerRef"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		badRequest(w, r, err)
		return
	}

	p := principal(r)
	attempt, err := h.payments.Confirm(r.Context(), chi.URLParam(r, "ref"), p.Identity, in.ProviderRef)
	if err != nil {
		paymentError(w, err)
		return
	}

	snap, err := h.controllers.Get(p.Key).ConfirmPayment(attempt.GenerationID, p.Identity)
	if errors.Is(err, lifecycle.ErrGenerationMismatch) {
		slog.Warn("payment does not match displayed document",
			"reference", attempt.Reference,
			"generation_id", attempt.GenerationID,
		)
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":    "This payment does not match the displayed document.",
			"attempt":  attempt,
			"document": snap,
		})
		return
	}
	if err != nil {
		authOrInternal(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"attempt": attempt, "document": snap})
}

// Cancel closes the attempt unpaid. The document stays locked.
func (h *Payments) Cancel(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	attempt, err := h.payments.Cancel(r.Context(), chi.URLParam(r, "ref"), p.Identity)
	if err != nil {
		paymentError(w, err)
		return
	}

	snap := h.controllers.Get(p.Key).Snapshot(p.Identity)
	writeJSON(w, http.StatusOK, map[string]any{"attempt": attempt, "document": snap})
}

func paymentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, access.ErrAuthRequired):
		authOrInternal(w, err)
	case errors.Is(err, payment.ErrUnknownReference):
		writeError(w, http.StatusNotFound, "Unknown payment reference.")
	case errors.Is(err, payment.ErrAttemptClosed):
		writeError(w, http.StatusConflict, "This payment has already been completed or cancelled.")
	case errors.Is(err, payment.ErrNotPaid):
		writeError(w, http.StatusPaymentRequired, "Payment was not completed.")
	default:
		slog.Error("payment request failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "Payment could not be processed. Please try again.")
	}
}

// authOrInternal answers 401 for missing authentication and 500 otherwise.
func authOrInternal(w http.ResponseWriter, err error) {
	if errors.Is(err, access.ErrAuthRequired) {
		writeError(w, http.StatusUnauthorized, "Please sign in to continue.")
		return
	}
	slog.Error("request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
}
