package repository

import (
	"context"

	"user-registry/internal/domain"
)

// UserRepository defines persistence operations for User entities.
type UserRepository interface {
	Init(ctx context.Context) error
	Ping(ctx context.Context) error
	// Create inserts the user and returns the store-generated id.
	Create(ctx context.Context, user *domain.User) (int64, error)
	// List returns id and username of every user in store order.
	List(ctx context.Context) ([]domain.User, error)
}
