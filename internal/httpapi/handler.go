package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cradleapp/user-sync-service/internal/auth"
	"github.com/cradleapp/user-sync-service/internal/user"
)

const (
	serviceTimeout   = 8 * time.Second
	maxSyncBodyBytes = 64 * 1024 // 64KB of JSON is more than enough for a profile sync
)

// RegisterRoutes registers the client-facing user routes. Routes expect the
// auth session middleware to have resolved the caller's identity already.
func RegisterRoutes(r chi.Router, service user.Service, logger *slog.Logger) {
	r.Route("/v1/users", func(r chi.Router) {
		r.Use(middleware.Recoverer)

		r.Post("/sync", syncUser(service, logger))
		r.Get("/me", getCurrentUser(service, logger))
		r.Get("/{clerkID}", getUserByClerkID(service, logger))
	})
}

func syncUser(service user.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxSyncBodyBytes)
		defer r.Body.Close()

		var body struct {
			ClerkID   string  `json:"clerk_id"`
			Email     string  `json:"email"`
			FirstName *string `json:"first_name"`
			LastName  *string `json:"last_name"`
			ImageURL  *string `json:"image_url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, r, "bad_request", "invalid request body")
			return
		}

		clerkID := strings.TrimSpace(body.ClerkID)
		if clerkID == "" {
			// Authenticated callers may omit clerk_id; it defaults to the token subject.
			if session := auth.SessionFromContext(r.Context()); session.State == auth.StateAuthenticated {
				clerkID = session.User.UserID
			}
		}
		if clerkID == "" {
			writeError(w, r, "bad_request", "missing clerk id")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		recordID, err := service.SyncUser(ctx, user.UpsertInput{
			ClerkID:   clerkID,
			Email:     body.Email,
			FirstName: body.FirstName,
			LastName:  body.LastName,
			ImageURL:  body.ImageURL,
		})
		if err != nil {
			logRequestError(r.Context(), logger, "failed to sync user", err, clerkID)
			writeError(w, r, "internal", "failed to sync user")
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"id": recordID})
	}
}

func getCurrentUser(service user.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// An unauthenticated caller gets a null body, not an error.
		callerClerkID := ""
		if session := auth.SessionFromContext(r.Context()); session.State == auth.StateAuthenticated {
			callerClerkID = session.User.UserID
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		record, err := service.GetCurrentUser(ctx, callerClerkID)
		if err != nil {
			logRequestError(r.Context(), logger, "failed to load current user", err, callerClerkID)
			writeError(w, r, "internal", "failed to load current user")
			return
		}

		writeJSON(w, http.StatusOK, record)
	}
}

func getUserByClerkID(service user.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clerkID := strings.TrimSpace(chi.URLParam(r, "clerkID"))
		if clerkID == "" {
			writeError(w, r, "bad_request", "missing clerk id")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
		defer cancel()

		record, err := service.GetUserByClerkID(ctx, clerkID)
		if err != nil {
			logRequestError(r.Context(), logger, "failed to load user", err, clerkID)
			writeError(w, r, "internal", "failed to load user")
			return
		}
		if record == nil {
			writeError(w, r, "not_found", "user not found")
			return
		}

		writeJSON(w, http.StatusOK, record)
	}
}
