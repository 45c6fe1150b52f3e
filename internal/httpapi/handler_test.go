package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/cradleapp/user-sync-service/internal/auth"
	"github.com/cradleapp/user-sync-service/internal/user"
)

// newTestRouter wires the client API the way main does, with the noop
// verifier so a bearer token is treated as the clerk ID.
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	verifier, err := auth.NewVerifier(auth.Config{Mode: auth.ModeNoop})
	if err != nil {
		t.Fatalf("NewVerifier returned error: %v", err)
	}

	service := user.NewService(user.NewMemoryRepository())

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(auth.SessionMiddleware(verifier))
		RegisterRoutes(r, service, testLogger())
	})
	return r
}

func doJSON(t *testing.T, handler http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestSyncUser_CreatesAndUpdatesSameRecord(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/users/sync", "",
		`{"clerk_id":"user_1","email":"a@example.com","first_name":"A"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var first struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &first); err != nil || first.ID == "" {
		t.Fatalf("expected a record id, got %q (err=%v)", rec.Body.String(), err)
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/users/sync", "",
		`{"clerk_id":"user_1","email":"a2@example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var second struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &second); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("repeat sync must return the same record id")
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/users/user_1", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var record user.User
	if err := json.Unmarshal(rec.Body.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record.Email != "a2@example.com" || record.FirstName != nil {
		t.Fatalf("sync must overwrite, not merge: %+v", record)
	}
}

func TestSyncUser_DefaultsToSessionSubject(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/users/sync", "user_77",
		`{"email":"me@example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/users/user_77", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected the synced record to exist, got %d", rec.Code)
	}
}

func TestSyncUser_MissingClerkID(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/users/sync", "", `{"email":"x@example.com"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without clerk id or session, got %d", rec.Code)
	}
}

func TestGetCurrentUser_UnauthenticatedReturnsNull(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/v1/users/me", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unauthenticated /me must not error, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "null" {
		t.Fatalf("expected null body, got %q", got)
	}
}

func TestGetCurrentUser_ReturnsCallerRecord(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/users/sync", "user_9",
		`{"email":"nine@example.com"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("sync failed: %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/users/me", "user_9", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var record user.User
	if err := json.Unmarshal(rec.Body.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record.ClerkID != "user_9" || record.Email != "nine@example.com" {
		t.Fatalf("unexpected record: %+v", record)
	}
}

func TestGetCurrentUser_UnknownCallerReturnsNull(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/v1/users/me", "user_never_synced", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "null" {
		t.Fatalf("expected null body, got %q", got)
	}
}

func TestGetUserByClerkID_NotFound(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/v1/users/user_404", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	var envelope errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Code != "not_found" {
		t.Fatalf("expected not_found code, got %q", envelope.Code)
	}
}
