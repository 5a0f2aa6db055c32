// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"termsng/internal/models"
)

// Drafts serves the form's saved state and its choices.
type Drafts struct {
	drafts   DraftStore
	price    int64
	currency string
}

// NewDrafts creates a new Drafts handler group. price is in major units.
func NewDrafts(drafts DraftStore, price int64, currency string) *Drafts {
	return &Drafts{drafts: drafts, price: price, currency: currency}
}

// Get returns the client's draft, or the default profile.
func (d *Drafts) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, d.drafts.Load(r.Context(), principal(r).Key))
}

// Put replaces the client's draft. Drafts are not validated.
func (d *Drafts) Put(w http.ResponseWriter, r *http.Request) {
	profile := models.DefaultProfile()
	if err := decodeJSON(w, r, &profile); err != nil {
		badRequest(w, r, err)
		return
	}
	if err := d.drafts.Save(r.Context(), principal(r).Key, profile); err != nil {
		slog.Warn("draft save failed", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete removes the client's draft.
func (d *Drafts) Delete(w http.ResponseWriter, r *http.Request) {
	if err := d.drafts.Delete(r.Context(), principal(r).Key); err != nil {
		slog.Warn("draft delete failed", "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Options lists the business types and the unlock price.
func (d *Drafts) Options(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"businessTypes": models.BusinessTypes,
		"defaults":      models.DefaultProfile(),
		"price": map[string]any{
			"amount":   d.price,
			"currency": d.currency,
		},
	})
}
