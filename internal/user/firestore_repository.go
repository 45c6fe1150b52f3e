package user

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

const usersCollection = "users"

type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository creates a new Firestore repository.
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

// Upsert runs the lookup-then-write as one transaction so concurrent syncs
// for the same clerk ID serialize on the store and never create duplicates.
func (r *firestoreRepository) Upsert(ctx context.Context, input UpsertInput) (string, error) {
	users := r.client.Collection(usersCollection)

	var recordID string
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		query := users.Where("clerk_id", "==", input.ClerkID).Limit(1)
		docs, err := tx.Documents(query).GetAll()
		if err != nil {
			return fmt.Errorf("lookup user by clerk id: %w", err)
		}

		record := User{
			ClerkID:   input.ClerkID,
			Email:     input.Email,
			FirstName: input.FirstName,
			LastName:  input.LastName,
			ImageURL:  input.ImageURL,
			CreatedAt: time.Now().UTC(),
		}

		if len(docs) > 0 {
			var existing User
			if err := docs[0].DataTo(&existing); err != nil {
				return fmt.Errorf("unmarshal user: %w", err)
			}
			record.CreatedAt = existing.CreatedAt
			recordID = docs[0].Ref.ID
			// Full overwrite: absent optional fields become unset, not merged.
			return tx.Set(docs[0].Ref, record)
		}

		ref := users.NewDoc()
		recordID = ref.ID
		return tx.Create(ref, record)
	})
	if err != nil {
		return "", err
	}

	return recordID, nil
}

func (r *firestoreRepository) DeleteByClerkID(ctx context.Context, clerkID string) error {
	users := r.client.Collection(usersCollection)

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		query := users.Where("clerk_id", "==", clerkID).Limit(1)
		docs, err := tx.Documents(query).GetAll()
		if err != nil {
			return fmt.Errorf("lookup user by clerk id: %w", err)
		}
		if len(docs) == 0 {
			// Already absent; deletes are idempotent.
			return nil
		}
		return tx.Delete(docs[0].Ref)
	})
}

func (r *firestoreRepository) GetByClerkID(ctx context.Context, clerkID string) (*User, error) {
	iter := r.client.Collection(usersCollection).
		Where("clerk_id", "==", clerkID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var record User
	if err := doc.DataTo(&record); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	record.ID = doc.Ref.ID
	return &record, nil
}
