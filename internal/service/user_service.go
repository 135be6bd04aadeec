package service

import (
	"context"
	"fmt"

	"user-registry/internal/domain"
	"user-registry/internal/repository"
)

// UserService describes user registration and listing.
type UserService interface {
	CreateUser(ctx context.Context, input domain.NewUser) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	Ping(ctx context.Context) error
}

type userService struct {
	users  repository.UserRepository
	hasher PasswordHasher
}

func NewUserService(users repository.UserRepository, hasher PasswordHasher) UserService {
	if hasher == nil {
		hasher = PlainHasher{}
	}
	return &userService{
		users:  users,
		hasher: hasher,
	}
}

// CreateUser validates input in order (username, then password) and inserts
// one row. Nothing touches the store when validation fails.
func (s *userService) CreateUser(ctx context.Context, input domain.NewUser) (*domain.User, error) {
	if err := validateNewUser(input); err != nil {
		return nil, err
	}

	stored, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("prepare password: %w", err)
	}

	user := &domain.User{
		Username: input.Username,
		Password: stored,
		Email:    input.Email,
	}
	if _, err := s.users.Create(ctx, user); err != nil {
		return nil, &domain.StoreError{Op: "create user", Err: err}
	}

	return sanitizeUser(user), nil
}

func (s *userService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, &domain.StoreError{Op: "list users", Err: err}
	}
	return users, nil
}

func (s *userService) Ping(ctx context.Context) error {
	if err := s.users.Ping(ctx); err != nil {
		return &domain.StoreError{Op: "ping", Err: err}
	}
	return nil
}

func validateNewUser(input domain.NewUser) error {
	if input.Username == "" {
		return &domain.ValidationError{Message: domain.MsgUsernameRequired}
	}
	if input.Password == "" {
		return &domain.ValidationError{Message: domain.MsgPasswordRequired}
	}
	return nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}
