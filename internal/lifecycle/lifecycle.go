// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package lifecycle tracks the document a session is working on: the
// generation in flight, the displayed result and its lock state, and the
// saved copies belonging to the signed-in user.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"termsng/internal/access"
	"termsng/internal/generator"
	"termsng/internal/identity"
	"termsng/internal/models"
	"termsng/internal/prompt"
)

// State is the phase of a Controller.
type State string

const (
	StateIdle       State = "idle"
	StateGenerating State = "generating"
	StateReady      State = "ready"
	StateFailed     State = "failed"
)

var (
	ErrGenerationInProgress = errors.New("lifecycle: generation already in progress")
	ErrDiscarded            = errors.New("lifecycle: generation discarded")
	ErrGenerationMismatch   = errors.New("lifecycle: no locked document for this generation")
	ErrNothingToSave        = errors.New("lifecycle: nothing to save")
	ErrNotFound             = errors.New("lifecycle: document not found")
)

// PersistenceError wraps a storage failure on an explicit user action.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("lifecycle: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Generator produces a document from a business profile.
type Generator interface {
	Generate(ctx context.Context, p models.BusinessProfile) (string, error)
}

// DocumentStore persists saved documents per owner.
type DocumentStore interface {
	ListByOwner(ownerID uuid.UUID) ([]models.SavedDocument, error)
	FindByID(ownerID, id uuid.UUID) (*models.SavedDocument, error)
	Create(d *models.SavedDocument) error
	Delete(ownerID, id uuid.UUID) error
	MarkUnlocked(ownerID, generationID uuid.UUID) (int64, error)
}

// Snapshot is the externally visible state of a Controller.
type Snapshot struct {
	State        State  `json:"state"`
	GenerationID string `json:"generationId,omitempty"`
	Content      string `json:"content,omitempty"`
	Error        string `json:"error,omitempty"`
	IsPro        bool   `json:"isPro"`
	Locked       bool   `json:"locked"`
	CanUnlock    bool   `json:"canUnlock"`
	OfferSave    bool   `json:"offerSave"`
}

// Controller drives one session's document through its states.
// All transitions are serialised by mu. The lock is released while a
// generation request is outstanding so Clear and Snapshot stay responsive.
type Controller struct {
	mu   sync.Mutex
	gen  Generator
	docs DocumentStore
	now  func() time.Time

	state        State
	content      string
	errMsg       string
	isPro        bool
	locked       bool
	generationID uuid.UUID
	pending      *models.BusinessProfile

	// offerSave is set when a signed-in caller's generation completes and
	// cleared once the document is saved or replaced.
	offerSave bool

	// epoch changes whenever the displayed document is replaced, so a
	// generation that finishes after Clear can tell it is stale.
	epoch      uint64
	lastActive time.Time
}

// NewController creates an idle Controller.
func NewController(gen Generator, docs DocumentStore) *Controller {
	return &Controller{
		gen:        gen,
		docs:       docs,
		now:        time.Now,
		state:      StateIdle,
		lastActive: time.Now(),
	}
}

// Submit generates a document for p. It blocks until the generator
// returns, ctx is done, or the generation timeout elapses.
func (c *Controller) Submit(ctx context.Context, p models.BusinessProfile, who *identity.Identity) (Snapshot, error) {
	c.mu.Lock()
	if c.state == StateGenerating {
		snap := c.snapshot(who)
		c.mu.Unlock()
		return snap, ErrGenerationInProgress
	}

	premium := prompt.IsPremium(p)
	c.reset()
	c.state = StateGenerating
	if premium {
		pending := p
		c.pending = &pending
	}
	c.generationID = uuid.New()
	epoch := c.epoch
	c.touch()
	c.mu.Unlock()

	html, err := c.gen.Generate(ctx, p)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	if c.epoch != epoch {
		return c.snapshot(who), ErrDiscarded
	}

	if err != nil {
		c.state = StateFailed
		c.errMsg = userMessage(err)
		c.pending = nil
		return c.snapshot(who), err
	}

	c.state = StateReady
	c.content = html
	c.isPro = premium
	c.locked = premium
	c.offerSave = who != nil
	return c.snapshot(who), nil
}

// ConfirmPayment unlocks the displayed document and every saved copy of
// it owned by who. Confirming an already unlocked document is a no-op.
func (c *Controller) ConfirmPayment(generationID uuid.UUID, who *identity.Identity) (Snapshot, error) {
	if who == nil {
		return Snapshot{}, access.ErrAuthRequired
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	if c.state != StateReady || !c.isPro || generationID != c.generationID {
		return c.snapshot(who), ErrGenerationMismatch
	}
	if !c.locked {
		return c.snapshot(who), nil
	}

	n, err := c.docs.MarkUnlocked(who.UserID, generationID)
	if err != nil {
		slog.Error("unlock saved documents failed",
			"error", err,
			"user_id", who.UserID,
			"generation_id", generationID,
		)
	} else if n > 0 {
		slog.Info("saved documents unlocked", "user_id", who.UserID, "count", n)
	}

	c.locked = false
	c.pending = nil
	return c.snapshot(who), nil
}

// Save stores a copy of the displayed document for who. A blank name is
// replaced with one based on today's date.
func (c *Controller) Save(name string, who *identity.Identity) (*models.SavedDocument, error) {
	if who == nil {
		return nil, access.ErrAuthRequired
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	if c.state != StateReady || c.content == "" {
		return nil, ErrNothingToSave
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName(c.now())
	}

	doc := &models.SavedDocument{
		OwnerID:      who.UserID,
		GenerationID: c.generationID,
		Name:         name,
		Content:      c.content,
		IsPro:        c.isPro,
		IsUnlocked:   !c.locked,
	}
	if err := c.docs.Create(doc); err != nil {
		return nil, &PersistenceError{Op: "save document", Err: err}
	}
	c.offerSave = false
	return doc, nil
}

// View displays a saved document without generating. A later payment for
// the displayed document unlocks that saved record.
func (c *Controller) View(id uuid.UUID, who *identity.Identity) (Snapshot, error) {
	if who == nil {
		return Snapshot{}, access.ErrAuthRequired
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.touch()

	if c.state == StateGenerating {
		return c.snapshot(who), ErrGenerationInProgress
	}

	doc, err := c.docs.FindByID(who.UserID, id)
	if err != nil {
		return c.snapshot(who), &PersistenceError{Op: "load document", Err: err}
	}
	if doc == nil {
		return c.snapshot(who), ErrNotFound
	}

	c.reset()
	c.state = StateReady
	c.content = doc.Content
	c.isPro = doc.IsPro
	c.locked = access.IsLocked(doc.IsPro, doc.IsUnlocked)
	c.generationID = doc.GenerationID
	return c.snapshot(who), nil
}

// Delete removes one of who's saved documents. Unknown ids are ignored.
func (c *Controller) Delete(id uuid.UUID, who *identity.Identity) error {
	if who == nil {
		return access.ErrAuthRequired
	}
	c.mu.Lock()
	c.touch()
	c.mu.Unlock()

	if err := c.docs.Delete(who.UserID, id); err != nil {
		return &PersistenceError{Op: "delete document", Err: err}
	}
	return nil
}

// List returns who's saved documents in creation order. Read failures are
// logged and yield an empty list.
func (c *Controller) List(who *identity.Identity) []models.SavedDocument {
	if who == nil {
		return []models.SavedDocument{}
	}
	docs, err := c.docs.ListByOwner(who.UserID)
	if err != nil {
		slog.Error("list saved documents failed", "error", err, "user_id", who.UserID)
		return []models.SavedDocument{}
	}
	if docs == nil {
		docs = []models.SavedDocument{}
	}
	return docs
}

// Clear returns to Idle and drops the displayed document. A generation
// still in flight is discarded when it completes.
func (c *Controller) Clear() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
	c.touch()
	return c.snapshot(nil)
}

// Snapshot returns the current state as seen by who.
func (c *Controller) Snapshot(who *identity.Identity) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot(who)
}

// reset clears the displayed document and bumps the epoch. Callers hold mu.
func (c *Controller) reset() {
	c.state = StateIdle
	c.content = ""
	c.errMsg = ""
	c.isPro = false
	c.locked = false
	c.generationID = uuid.Nil
	c.pending = nil
	c.offerSave = false
	c.epoch++
}

func (c *Controller) touch() {
	c.lastActive = c.now()
}

// idleSince reports when the controller was last used and whether it
// may be evicted.
func (c *Controller) idleSince() (time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive, c.state != StateGenerating
}

func (c *Controller) snapshot(who *identity.Identity) Snapshot {
	s := Snapshot{
		State:     c.state,
		Content:   c.content,
		Error:     c.errMsg,
		IsPro:     c.isPro,
		Locked:    c.locked,
		CanUnlock: access.CanOfferUnlock(c.isPro, c.locked),
		OfferSave: c.offerSave && who != nil,
	}
	if c.generationID != uuid.Nil {
		s.GenerationID = c.generationID.String()
	}
	return s
}

// DefaultName is the name given to a saved document when none is entered.
func DefaultName(t time.Time) string {
	return "TOS - " + t.Format("2 Jan 2006")
}

func userMessage(err error) string {
	var ge *generator.Error
	if errors.As(err, &ge) {
		return ge.Message
	}
	return generator.MsgUnavailable
}
