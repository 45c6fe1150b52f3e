package user

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memoryRepository implements Repository using in-memory storage.
type memoryRepository struct {
	mu        sync.RWMutex
	byClerkID map[string]User
}

// NewMemoryRepository creates a new in-memory repository.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		byClerkID: make(map[string]User),
	}
}

func (r *memoryRepository) Upsert(ctx context.Context, input UpsertInput) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record := User{
		ClerkID:   input.ClerkID,
		Email:     input.Email,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		ImageURL:  input.ImageURL,
	}

	if existing, ok := r.byClerkID[input.ClerkID]; ok {
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	} else {
		record.ID = uuid.NewString()
		record.CreatedAt = time.Now().UTC()
	}

	r.byClerkID[input.ClerkID] = record
	return record.ID, nil
}

func (r *memoryRepository) DeleteByClerkID(ctx context.Context, clerkID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.byClerkID, clerkID)
	return nil
}

func (r *memoryRepository) GetByClerkID(ctx context.Context, clerkID string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.byClerkID[clerkID]
	if !ok {
		return nil, ErrNotFound
	}
	return &record, nil
}
