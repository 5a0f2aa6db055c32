// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test doubles for the handler tests.
// Every dependency is in memory, so these tests need no services.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"termsng/internal/auth"
	"termsng/internal/identity"
	"termsng/internal/lifecycle"
	"termsng/internal/middleware"
	"termsng/internal/models"
	"termsng/internal/payment"
	"termsng/internal/session"
	"termsng/internal/validation"
)

// stubGenerator returns a fixed document or error and counts its calls.
type stubGenerator struct {
	html  string
	err   error
	calls atomic.Int32
}

func (g *stubGenerator) Generate(context.Context, models.BusinessProfile) (string, error) {
	g.calls.Add(1)
	return g.html, g.err
}

// memDocs is an in-memory lifecycle.DocumentStore.
type memDocs struct {
	mu   sync.Mutex
	docs []models.SavedDocument
}

func (m *memDocs) ListByOwner(ownerID uuid.UUID) ([]models.SavedDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.SavedDocument{}
	for _, d := range m.docs {
		if d.OwnerID == ownerID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *memDocs) FindByID(ownerID, id uuid.UUID) (*models.SavedDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.docs {
		if d.ID == id && d.OwnerID == ownerID {
			found := d
			return &found, nil
		}
	}
	return nil, nil
}

func (m *memDocs) Create(d *models.SavedDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d.ID = uuid.New()
	d.CreatedAt = time.Now()
	m.docs = append(m.docs, *d)
	return nil
}

func (m *memDocs) Delete(ownerID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.docs[:0]
	for _, d := range m.docs {
		if !(d.ID == id && d.OwnerID == ownerID) {
			kept = append(kept, d)
		}
	}
	m.docs = kept
	return nil
}

func (m *memDocs) MarkUnlocked(ownerID, generationID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.docs {
		d := &m.docs[i]
		if d.OwnerID == ownerID && d.GenerationID == generationID && d.IsPro && !d.IsUnlocked {
			d.IsUnlocked = true
			n++
		}
	}
	return n, nil
}

// memDrafts is an in-memory DraftStore.
type memDrafts struct {
	mu     sync.Mutex
	drafts map[string]models.BusinessProfile
}

func newMemDrafts() *memDrafts {
	return &memDrafts{drafts: map[string]models.BusinessProfile{}}
}

func (m *memDrafts) Load(_ context.Context, key string) models.BusinessProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.drafts[key]; ok {
		return p
	}
	return models.DefaultProfile()
}

func (m *memDrafts) Save(_ context.Context, key string, p models.BusinessProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts[key] = p
	return nil
}

func (m *memDrafts) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, key)
	return nil
}

func (m *memDrafts) Move(_ context.Context, oldKey, newKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.drafts[oldKey]; ok {
		delete(m.drafts, oldKey)
		m.drafts[newKey] = p
	}
	return nil
}

// fakeSessions rotates sessions by assigning a new random id.
type fakeSessions struct{}

func (fakeSessions) Rotate(_ context.Context, w http.ResponseWriter, d *session.Data) (string, error) {
	old := d.ID
	d.ID = uuid.NewString()
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: d.ID})
	return old, nil
}

// memUsers is an in-memory identity.UserRepository.
type memUsers struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func (m *memUsers) FindByEmail(email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[email], nil
}

func (m *memUsers) FindByID(id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memUsers) Create(email, password, displayName string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &models.User{ID: uuid.New(), Email: email, PasswordHash: password, DisplayName: displayName}
	m.users[email] = u
	return u, nil
}

func (m *memUsers) CheckPassword(u *models.User, password string) bool {
	return u.PasswordHash == password
}

// memAttempts is an in-memory payment.Store.
type memAttempts struct {
	mu       sync.Mutex
	attempts map[string]payment.Attempt
}

func (m *memAttempts) Put(_ context.Context, a *payment.Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts[a.Reference] = *a
	return nil
}

func (m *memAttempts) Get(_ context.Context, ref string) (*payment.Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[ref]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *memAttempts) Close(_ context.Context, a *payment.Attempt) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.attempts[a.Reference]; ok && cur.Status != payment.StatusPending {
		return false, nil
	}
	m.attempts[a.Reference] = *a
	return true, nil
}

// testEnv holds the handler groups and their in-memory dependencies.
type testEnv struct {
	Gen         *stubGenerator
	Docs        *memDocs
	Drafts      *memDrafts
	Users       *memUsers
	Controllers *lifecycle.Manager
	Tokens      *auth.Issuer
	Auth        *Auth
	Documents   *Documents
	Draft       *Drafts
	Library     *Library
	Payments    *Payments
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		Gen:    &stubGenerator{html: "<h1>Terms of Service</h1><p>Be nice.</p>"},
		Docs:   &memDocs{},
		Drafts: newMemDrafts(),
		Users:  &memUsers{users: map[string]*models.User{}},
		Tokens: auth.NewIssuer("test-secret", time.Hour),
	}
	env.Controllers = lifecycle.NewManager(env.Gen, env.Docs, time.Hour)
	t.Cleanup(env.Controllers.Stop)

	payments := payment.NewService(&memAttempts{attempts: map[string]payment.Attempt{}}, nil,
		payment.Config{Amount: 4500, Currency: "NGN", PublicKey: "pk_test"})

	env.Auth = NewAuth(identity.NewService(env.Users), fakeSessions{}, env.Tokens, env.Controllers, env.Drafts)
	env.Documents = NewDocuments(env.Controllers, validation.New(), env.Drafts)
	env.Draft = NewDrafts(env.Drafts, 4500, "NGN")
	env.Library = NewLibrary(env.Controllers)
	env.Payments = NewPayments(env.Controllers, payments)
	return env
}

// anonymous returns a principal for a visitor with a fresh session.
func anonymous() *middleware.Principal {
	key := uuid.NewString()
	return &middleware.Principal{Key: key, Session: &session.Data{ID: key}}
}

// signedIn returns a principal for a signed-in user with a session.
func signedIn() *middleware.Principal {
	p := anonymous()
	who := &identity.Identity{UserID: uuid.New(), Email: "ada@example.com", DisplayName: "Ada"}
	p.Identity = who
	p.Session.UserID = who.UserID
	p.Session.Email = who.Email
	return p
}

// newRequest builds a request carrying p, with body encoded as JSON.
func newRequest(t *testing.T, method, target string, body any, p *middleware.Principal) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if p != nil {
		req = req.WithContext(context.WithValue(req.Context(), middleware.PrincipalKey, p))
	}
	return req
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeBody decodes a JSON response body into a map.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(strings.NewReader(rec.Body.String())).Decode(&out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return out
}

// validProfile returns a profile that passes validation.
func validProfile() models.BusinessProfile {
	p := models.DefaultProfile()
	p.BusinessName = "Acme Ltd"
	p.ServicesDescription = "We sell widgets."
	p.ContactEmail = "hello@acme.ng"
	return p
}

// premiumProfile returns a valid profile with a premium clause.
func premiumProfile() models.BusinessProfile {
	p := validProfile()
	p.HasRefundPolicy = true
	p.RefundPolicyDescription = "Refunds within 7 days."
	return p
}

// generate submits profile for p and fails the test on a non-200 answer.
func generate(t *testing.T, env *testEnv, p *middleware.Principal, profile models.BusinessProfile) lifecycle.Snapshot {
	t.Helper()
	rec := httptest.NewRecorder()
	env.Documents.Generate(rec, newRequest(t, http.MethodPost, "/api/generate", profile, p))
	if rec.Code != http.StatusOK {
		t.Fatalf("generate: status %d, body %s", rec.Code, rec.Body.String())
	}
	var snap lifecycle.Snapshot
	json.NewDecoder(rec.Body).Decode(&snap)
	return snap
}
