package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// testValkeyClient returns a Redis client connected to the test Valkey.
// Skips the test if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests to isolate from dev data.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		// Clean up test keys.
		keys, _ := client.Keys(ctx, "session:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// sessionCookie returns the session cookie set on a recorded response.
func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	t.Fatal("expected session cookie to be set")
	return nil
}

func TestDataAuthenticated(t *testing.T) {
	var nilData *Data
	if nilData.Authenticated() {
		t.Error("nil session should not be authenticated")
	}
	if (&Data{}).Authenticated() {
		t.Error("anonymous session should not be authenticated")
	}
	if !(&Data{UserID: uuid.New()}).Authenticated() {
		t.Error("session with a user should be authenticated")
	}
}

func TestSessionCreateAndGet(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, false, 0)

	w := httptest.NewRecorder()
	ctx := context.Background()

	data := &Data{
		UserID:      uuid.New(),
		Email:       "test@session.local",
		DisplayName: "Test User",
	}

	sessionID, err := store.Create(ctx, w, data)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if sessionID == "" || data.ID != sessionID {
		t.Errorf("expected session ID to be set, got %q / %q", sessionID, data.ID)
	}

	cookie := sessionCookie(t, w)
	if !cookie.HttpOnly {
		t.Error("expected HttpOnly cookie")
	}
	if cookie.Secure {
		t.Error("expected Secure=false for non-secure store")
	}
	if cookie.MaxAge != int(DefaultTTL.Seconds()) {
		t.Errorf("MaxAge: got %d", cookie.MaxAge)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookie)

	retrieved, err := store.Get(ctx, req)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if retrieved == nil {
		t.Fatal("expected session data, got nil")
	}
	if retrieved.ID != sessionID {
		t.Errorf("ID: got %q, want %q", retrieved.ID, sessionID)
	}
	if retrieved.Email != "test@session.local" {
		t.Errorf("email: got %q, want %q", retrieved.Email, "test@session.local")
	}
	if retrieved.UserID != data.UserID {
		t.Errorf("userID: got %s, want %s", retrieved.UserID, data.UserID)
	}
}

func TestSessionAnonymous(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, false, time.Hour)

	w := httptest.NewRecorder()
	ctx := context.Background()

	if _, err := store.Create(ctx, w, &Data{}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(sessionCookie(t, w))

	retrieved, err := store.Get(ctx, req)
	if err != nil || retrieved == nil {
		t.Fatalf("Get: %v, %v", retrieved, err)
	}
	if retrieved.Authenticated() {
		t.Error("anonymous session should not be authenticated")
	}
}

func TestSessionGetNoCookie(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, false, 0)

	req := httptest.NewRequest("GET", "/", nil)
	data, err := store.Get(context.Background(), req)
	if err != nil {
		t.Fatalf("Get (no cookie): %v", err)
	}
	if data != nil {
		t.Error("expected nil for request without session cookie")
	}
}

func TestSessionGetExpired(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, false, 0)

	// Request with a cookie pointing to a nonexistent session.
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "nonexistent-session-id"})

	data, err := store.Get(context.Background(), req)
	if err != nil {
		t.Fatalf("Get (expired): %v", err)
	}
	if data != nil {
		t.Error("expected nil for expired/nonexistent session")
	}
}

func TestSessionRotate(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, false, 0)

	ctx := context.Background()
	w := httptest.NewRecorder()

	data := &Data{}
	oldID, _ := store.Create(ctx, w, data)
	oldCookie := sessionCookie(t, w)

	data.UserID = uuid.New()
	w2 := httptest.NewRecorder()
	prev, err := store.Rotate(ctx, w2, data)
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if prev != oldID {
		t.Errorf("previous ID: got %q, want %q", prev, oldID)
	}
	if data.ID == oldID {
		t.Error("expected a new session ID")
	}

	oldReq := httptest.NewRequest("GET", "/", nil)
	oldReq.AddCookie(oldCookie)
	if got, _ := store.Get(ctx, oldReq); got != nil {
		t.Error("old session should be gone after rotation")
	}

	newReq := httptest.NewRequest("GET", "/", nil)
	newReq.AddCookie(sessionCookie(t, w2))
	got, _ := store.Get(ctx, newReq)
	if got == nil || got.UserID != data.UserID {
		t.Errorf("rotated session: got %+v", got)
	}
}

func TestSessionDestroy(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, false, 0)

	w := httptest.NewRecorder()
	ctx := context.Background()

	store.Create(ctx, w, &Data{UserID: uuid.New(), Email: "destroy@session.local"})
	cookie := sessionCookie(t, w)

	w2 := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(cookie)

	if err := store.Destroy(ctx, w2, req); err != nil {
		t.Fatalf("Destroy: %v", err)
	}

	// Verify cookie is expired.
	for _, c := range w2.Result().Cookies() {
		if c.Name == CookieName && c.MaxAge != -1 {
			t.Error("expected MaxAge=-1 on destroyed cookie")
		}
	}

	// Verify session is gone from Valkey.
	retrieved, _ := store.Get(ctx, req)
	if retrieved != nil {
		t.Error("expected nil after destroy")
	}
}

func TestSessionDestroyNoCookie(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, false, 0)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)

	// Should not error even without a cookie.
	if err := store.Destroy(context.Background(), w, req); err != nil {
		t.Errorf("Destroy (no cookie): %v", err)
	}
}

func TestSessionSecureCookie(t *testing.T) {
	client := testValkeyClient(t)
	store := NewStore(client, true, 0)

	w := httptest.NewRecorder()
	store.Create(context.Background(), w, &Data{})

	if !sessionCookie(t, w).Secure {
		t.Error("expected Secure=true for secure store")
	}
}
