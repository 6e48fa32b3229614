// Package user persists registered accounts.
package user

import (
	"context"
	"errors"

	"github.com/someoxygen/chat-app/internal/domain"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrAlreadyExists = errors.New("user already exists")
)

type Repository interface {
	Create(ctx context.Context, u *domain.User) error
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	Update(ctx context.Context, u *domain.User) error
	// ListUsernames backs the contact list endpoint.
	ListUsernames(ctx context.Context) ([]string, error)
}
