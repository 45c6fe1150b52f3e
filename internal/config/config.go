package config

import (
	"strings"

	"github.com/cradleapp/user-sync-service/internal/envconfig"
)

type Config struct {
	Port         string `validate:"required"`
	GCPProjectID string `validate:"required"`
	DataStore    string `validate:"required,oneof=firestore memory"`

	// ClerkWebhookSecret may be empty at startup. The webhook handler fails
	// closed (500) until the secret is configured.
	ClerkWebhookSecret string

	Auth      AuthConfig
	Firestore FirestoreConfig
}

type AuthConfig struct {
	Mode string `validate:"required,oneof=clerk noop"`
	// IssuerDomain is the Clerk JWT issuer URL, e.g. https://your-app.clerk.accounts.dev.
	IssuerDomain string
	JWKSURL      string
	Audience     string
}

type FirestoreConfig struct {
	EmulatorHost string
}

func Load() (Config, error) {
	cfg := Config{
		Port:               envconfig.Get("PORT", "8080"),
		GCPProjectID:       envconfig.Get("GCP_PROJECT_ID", "cradle-dev"),
		DataStore:          envconfig.Get("DATASTORE", "firestore"),
		ClerkWebhookSecret: envconfig.Get("CLERK_WEBHOOK_SECRET", ""),
		Auth: AuthConfig{
			Mode:         envconfig.Get("AUTH_MODE", "clerk"),
			IssuerDomain: envconfig.Get("CLERK_JWT_ISSUER_DOMAIN", ""),
			JWKSURL:      envconfig.Get("CLERK_JWKS_URL", ""),
			Audience:     envconfig.Get("CLERK_AUDIENCE", ""),
		},
		Firestore: FirestoreConfig{
			EmulatorHost: envconfig.Get("FIRESTORE_EMULATOR_HOST", ""),
		},
	}

	// Clerk publishes its JWKS under the issuer domain.
	if cfg.Auth.JWKSURL == "" && cfg.Auth.IssuerDomain != "" {
		cfg.Auth.JWKSURL = strings.TrimRight(cfg.Auth.IssuerDomain, "/") + "/.well-known/jwks.json"
	}

	return cfg, envconfig.Validate(cfg)
}
