package auth

import (
	"context"

	"github.com/briangreenhill/coachprompt/internal/model"
)

// IdentityProvider owns accounts and checks passwords.
type IdentityProvider interface {
	// Name identifies the provider in logs.
	Name() string

	// VerifyPassword returns the account for email when password matches.
	// Any rejection is ErrInvalidCredentials.
	VerifyPassword(ctx context.Context, email, password string) (model.User, error)

	// CreateUser registers a new account. A taken email is ErrDuplicateEmail.
	CreateUser(ctx context.Context, email, name, password string) (model.User, error)
}
