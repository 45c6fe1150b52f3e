package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSessionFromContext_DefaultsToUnknown(t *testing.T) {
	session := SessionFromContext(context.Background())
	if session.State != StateUnknown {
		t.Fatalf("expected unknown state before middleware runs, got %s", session.State)
	}
}

func TestSessionMiddleware_NoToken(t *testing.T) {
	verifier, err := NewVerifier(Config{Mode: ModeNoop})
	if err != nil {
		t.Fatalf("NewVerifier returned error: %v", err)
	}

	var session Session
	handler := SessionMiddleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session = SessionFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if session.State != StateUnauthenticated {
		t.Fatalf("expected unauthenticated, got %s", session.State)
	}
}

func TestSessionMiddleware_BearerToken(t *testing.T) {
	verifier, err := NewVerifier(Config{Mode: ModeNoop})
	if err != nil {
		t.Fatalf("NewVerifier returned error: %v", err)
	}

	var session Session
	handler := SessionMiddleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session = SessionFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer user_42")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if session.State != StateAuthenticated {
		t.Fatalf("expected authenticated, got %s", session.State)
	}
	if session.User.UserID != "user_42" {
		t.Fatalf("expected subject user_42, got %q", session.User.UserID)
	}
}

func TestSessionMiddleware_MalformedHeader(t *testing.T) {
	verifier, err := NewVerifier(Config{Mode: ModeNoop})
	if err != nil {
		t.Fatalf("NewVerifier returned error: %v", err)
	}

	var session Session
	handler := SessionMiddleware(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session = SessionFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if session.State != StateUnauthenticated {
		t.Fatalf("malformed headers must resolve to unauthenticated, got %s", session.State)
	}
}
