package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/cradleapp/user-sync-service/internal/auth"
	"github.com/cradleapp/user-sync-service/internal/config"
	"github.com/cradleapp/user-sync-service/internal/httpapi"
	"github.com/cradleapp/user-sync-service/internal/logging"
	"github.com/cradleapp/user-sync-service/internal/server"
	"github.com/cradleapp/user-sync-service/internal/user"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Errorf("config error: %w", err))
	}

	logger := logging.NewLogger("user-sync-service")

	var repo user.Repository
	switch cfg.DataStore {
	case "memory":
		repo = user.NewMemoryRepository()
	default:
		client, err := firestore.NewClient(ctx, cfg.GCPProjectID)
		if err != nil {
			panic(fmt.Errorf("firestore client: %w", err))
		}
		defer client.Close()
		repo = user.NewFirestoreRepository(client)
	}

	userService := user.NewService(repo)

	verifier, err := auth.NewVerifier(auth.Config{
		Mode:     auth.Mode(cfg.Auth.Mode),
		JWKSURL:  cfg.Auth.JWKSURL,
		Audience: cfg.Auth.Audience,
		Issuer:   cfg.Auth.IssuerDomain,
	})
	if err != nil {
		panic(fmt.Errorf("auth verifier error: %w", err))
	}

	webhook, err := httpapi.NewWebhookHandler(cfg.ClerkWebhookSecret, userService, logger)
	if err != nil {
		panic(fmt.Errorf("webhook handler error: %w", err))
	}

	router := server.NewRouter("user-sync-service", func(r chi.Router) {
		// Provider callbacks authenticate via svix signatures, not bearer tokens.
		r.Method(http.MethodPost, "/clerk-webhook", webhook)

		r.Group(func(r chi.Router) {
			r.Use(auth.SessionMiddleware(verifier))
			httpapi.RegisterRoutes(r, userService, logger)
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	if err := server.Run(ctx, srv, logger); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
}
