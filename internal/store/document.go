// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"termsng/internal/models"
)

// DocumentStore handles saved Terms of Service documents. Every query is
// scoped to an owner so users never see each other's documents.
type DocumentStore struct {
	db *sql.DB
}

// NewDocumentStore creates a new DocumentStore with the given database connection.
func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// ListByOwner returns the owner's documents in the order they were saved.
func (s *DocumentStore) ListByOwner(ownerID uuid.UUID) ([]models.SavedDocument, error) {
	rows, err := s.db.Query(`
		SELECT id, owner_id, generation_id, name, content, is_pro, is_unlocked, created_at
		FROM saved_documents WHERE owner_id = $1 ORDER BY seq ASC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := []models.SavedDocument{}
	for rows.Next() {
		var d models.SavedDocument
		if err := rows.Scan(
			&d.ID, &d.OwnerID, &d.GenerationID, &d.Name, &d.Content, &d.IsPro, &d.IsUnlocked, &d.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// FindByID retrieves one of the owner's documents. Returns nil if not found
// or owned by someone else.
func (s *DocumentStore) FindByID(ownerID, id uuid.UUID) (*models.SavedDocument, error) {
	d := &models.SavedDocument{}
	err := s.db.QueryRow(`
		SELECT id, owner_id, generation_id, name, content, is_pro, is_unlocked, created_at
		FROM saved_documents WHERE id = $1 AND owner_id = $2
	`, id, ownerID).Scan(
		&d.ID, &d.OwnerID, &d.GenerationID, &d.Name, &d.Content, &d.IsPro, &d.IsUnlocked, &d.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find document: %w", err)
	}
	return d, nil
}

// Create inserts a document, filling in its ID and CreatedAt.
func (s *DocumentStore) Create(d *models.SavedDocument) error {
	err := s.db.QueryRow(`
		INSERT INTO saved_documents (owner_id, generation_id, name, content, is_pro, is_unlocked)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, d.OwnerID, d.GenerationID, d.Name, d.Content, d.IsPro, d.IsUnlocked).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	return nil
}

// Delete removes one of the owner's documents. Deleting a missing id is not
// an error.
func (s *DocumentStore) Delete(ownerID, id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM saved_documents WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// MarkUnlocked flips every pro document the owner saved from the given
// generation to unlocked. It returns the number of documents changed.
func (s *DocumentStore) MarkUnlocked(ownerID, generationID uuid.UUID) (int64, error) {
	res, err := s.db.Exec(`
		UPDATE saved_documents SET is_unlocked = TRUE
		WHERE owner_id = $1 AND generation_id = $2 AND is_pro AND NOT is_unlocked
	`, ownerID, generationID)
	if err != nil {
		return 0, fmt.Errorf("unlock documents: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("unlock documents: %w", err)
	}
	return n, nil
}
