package repository

import (
	"context"
	"errors"

	"linkvault/internal/model"
)

// ErrEmailTaken is returned by CreateUser when the email is already registered.
var ErrEmailTaken = errors.New("email already registered")

// UserRepository defines data access for identity provider accounts.
type UserRepository interface {
	// CreateUser inserts a new account. Returns ErrEmailTaken on a duplicate email.
	CreateUser(ctx context.Context, user *model.User) (*model.User, error)

	// FindByEmail returns the account for a (lower-cased) email.
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}
