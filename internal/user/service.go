package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type service struct {
	repo Repository
}

// NewService creates a new user sync service.
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) SyncUser(ctx context.Context, input UpsertInput) (string, error) {
	if strings.TrimSpace(input.ClerkID) == "" {
		return "", fmt.Errorf("missing clerk id")
	}
	return s.repo.Upsert(ctx, input)
}

func (s *service) GetCurrentUser(ctx context.Context, callerClerkID string) (*User, error) {
	if callerClerkID == "" {
		return nil, nil
	}
	return s.GetUserByClerkID(ctx, callerClerkID)
}

func (s *service) GetUserByClerkID(ctx context.Context, clerkID string) (*User, error) {
	if clerkID == "" {
		return nil, nil
	}

	record, err := s.repo.GetByClerkID(ctx, clerkID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *service) DeleteUserByClerkID(ctx context.Context, clerkID string) error {
	if strings.TrimSpace(clerkID) == "" {
		return fmt.Errorf("missing clerk id")
	}
	return s.repo.DeleteByClerkID(ctx, clerkID)
}
