// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// SavedDocument is a named snapshot of a generated document owned by a
// single user. GenerationID ties the snapshot back to the generation cycle
// it came from so a later payment for that cycle can unlock it.
type SavedDocument struct {
	ID           uuid.UUID `json:"id"`
	OwnerID      uuid.UUID `json:"-"`
	GenerationID uuid.UUID `json:"generationId"`
	Name         string    `json:"name"`
	Content      string    `json:"content"`
	IsPro        bool      `json:"isPro"`
	IsUnlocked   bool      `json:"isUnlocked"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Locked reports whether the saved document is still held behind payment.
func (d *SavedDocument) Locked() bool {
	return d.IsPro && !d.IsUnlocked
}
