package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	svix "github.com/svix/svix-webhooks/go"

	"github.com/cradleapp/user-sync-service/internal/user"
)

const webhookMaxBodyBytes = 1 << 20 // Clerk user payloads are small; 1MB is a generous cap

// Clerk identity lifecycle event types delivered through svix.
const (
	eventUserCreated = "user.created"
	eventUserUpdated = "user.updated"
	eventUserDeleted = "user.deleted"
)

// clerkEvent is the subset of the Clerk webhook payload this service consumes.
type clerkEvent struct {
	Type string `json:"type"`
	Data struct {
		ID             string `json:"id"`
		EmailAddresses []struct {
			EmailAddress string `json:"email_address"`
		} `json:"email_addresses"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		ImageURL  *string `json:"image_url"`
	} `json:"data"`
}

// WebhookHandler ingests provider-signed Clerk callbacks and applies them to
// the user record store. Delivery is at-least-once; every dispatch path is
// idempotent and the provider redelivers on non-2xx responses.
type WebhookHandler struct {
	verifier *svix.Webhook
	service  user.Service
	logger   *slog.Logger
}

// NewWebhookHandler builds the webhook ingest handler. An empty secret is
// allowed at construction time; the handler then fails closed with 500 until
// the deployment is configured.
func NewWebhookHandler(secret string, service user.Service, logger *slog.Logger) (*WebhookHandler, error) {
	h := &WebhookHandler{service: service, logger: logger}

	if secret != "" {
		verifier, err := svix.NewWebhook(secret)
		if err != nil {
			return nil, fmt.Errorf("webhook verifier: %w", err)
		}
		h.verifier = verifier
	}

	return h, nil
}

func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("svix-id") == "" ||
		r.Header.Get("svix-timestamp") == "" ||
		r.Header.Get("svix-signature") == "" {
		http.Error(w, "Missing svix headers", http.StatusBadRequest)
		return
	}

	// Never process a payload we cannot verify.
	if h.verifier == nil {
		h.logger.Error("clerk webhook secret is not configured")
		http.Error(w, "Webhook secret not configured", http.StatusInternalServerError)
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, webhookMaxBodyBytes))
	if err != nil {
		http.Error(w, "Unable to read request body", http.StatusBadRequest)
		return
	}

	if err := h.verifier.Verify(payload, r.Header); err != nil {
		h.logger.Warn("webhook signature verification failed", slog.Any("error", err))
		http.Error(w, "Invalid signature", http.StatusBadRequest)
		return
	}

	var event clerkEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		h.logger.Warn("webhook payload is not valid JSON", slog.Any("error", err))
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), serviceTimeout)
	defer cancel()

	if err := h.dispatch(ctx, event); err != nil {
		h.logger.Error("failed to process webhook",
			slog.String("type", event.Type),
			slog.String("clerkId", event.Data.ID),
			slog.Any("error", err))
		http.Error(w, "Error processing webhook", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Webhook processed successfully"))
}

func (h *WebhookHandler) dispatch(ctx context.Context, event clerkEvent) error {
	switch event.Type {
	case eventUserCreated, eventUserUpdated:
		email := ""
		if len(event.Data.EmailAddresses) > 0 {
			email = event.Data.EmailAddresses[0].EmailAddress
		}

		_, err := h.service.SyncUser(ctx, user.UpsertInput{
			ClerkID:   event.Data.ID,
			Email:     email,
			FirstName: event.Data.FirstName,
			LastName:  event.Data.LastName,
			ImageURL:  event.Data.ImageURL,
		})
		return err

	case eventUserDeleted:
		if event.Data.ID == "" {
			return nil
		}
		return h.service.DeleteUserByClerkID(ctx, event.Data.ID)

	default:
		h.logger.Info("ignoring unhandled webhook event", slog.String("type", event.Type))
		return nil
	}
}
