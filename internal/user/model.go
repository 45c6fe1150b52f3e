package user

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by lookups when no record matches. It marks normal
// absence, as opposed to a store failure, which is returned unwrapped.
var ErrNotFound = errors.New("user not found")

// User is one synchronized identity. The ID is store-assigned and opaque;
// ClerkID is the identity provider's stable subject identifier and is unique
// across all records.
type User struct {
	ID        string    `json:"id" firestore:"-"`
	ClerkID   string    `json:"clerk_id" firestore:"clerk_id"`
	Email     string    `json:"email" firestore:"email"`
	FirstName *string   `json:"first_name,omitempty" firestore:"first_name"`
	LastName  *string   `json:"last_name,omitempty" firestore:"last_name"`
	ImageURL  *string   `json:"image_url,omitempty" firestore:"image_url"`
	CreatedAt time.Time `json:"created_at" firestore:"created_at"`
}

// UpsertInput carries the provider-sourced profile fields for a sync. Nil
// optional fields are stored as unset; updates overwrite, they never merge.
type UpsertInput struct {
	ClerkID   string
	Email     string
	FirstName *string
	LastName  *string
	ImageURL  *string
}

// Repository defines the interface for user record access.
type Repository interface {
	// Upsert creates or overwrites the record for input.ClerkID and returns
	// its store-assigned ID. The ID is stable across repeated calls.
	Upsert(ctx context.Context, input UpsertInput) (string, error)
	// DeleteByClerkID removes the record if present. Missing records are a no-op.
	DeleteByClerkID(ctx context.Context, clerkID string) error
	// GetByClerkID returns the record or ErrNotFound.
	GetByClerkID(ctx context.Context, clerkID string) (*User, error)
}

// Service defines the user sync service interface.
type Service interface {
	SyncUser(ctx context.Context, input UpsertInput) (string, error)
	// GetCurrentUser resolves the caller's record. An empty caller ID or a
	// missing record yields (nil, nil), never an error.
	GetCurrentUser(ctx context.Context, callerClerkID string) (*User, error)
	// GetUserByClerkID returns (nil, nil) when no record exists.
	GetUserByClerkID(ctx context.Context, clerkID string) (*User, error)
	DeleteUserByClerkID(ctx context.Context, clerkID string) error
}
