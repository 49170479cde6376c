package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taskboard/internal/model"
)

var (
	ErrMissingEmail      = errors.New("external profile has no email")
	ErrMissingExternalID = errors.New("external profile has no subject id")
	ErrUnverifiedEmail   = errors.New("external profile email is not verified")
)

// IdentityStore is the slice of the user repository the linker needs.
// Find methods return nil, nil when no user matches.
type IdentityStore interface {
	FindByExternalID(ctx context.Context, externalID string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
}

// IdentityLinker reconciles an external identity with a local user:
// match by subject id, then by email, otherwise create an OAuth-only user.
// The email steps only run for emails the provider has verified.
type IdentityLinker struct {
	users IdentityStore
}

func NewIdentityLinker(users IdentityStore) *IdentityLinker {
	return &IdentityLinker{users: users}
}

func (l *IdentityLinker) Link(ctx context.Context, externalID, email string, emailVerified bool) (*model.User, error) {
	externalID = strings.TrimSpace(externalID)
	email = NormalizeEmail(email)
	if externalID == "" {
		return nil, ErrMissingExternalID
	}
	if email == "" {
		return nil, ErrMissingEmail
	}

	user, err := l.users.FindByExternalID(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("find by external id: %w", err)
	}
	if user != nil {
		return user, nil
	}
	if !emailVerified {
		return nil, ErrUnverifiedEmail
	}

	user, err = l.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("find by email: %w", err)
	}
	if user != nil {
		user.ExternalID = &externalID
		if err := l.users.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("link external id: %w", err)
		}
		return user, nil
	}

	user = &model.User{
		Email:        email,
		PasswordHash: "",
		ExternalID:   &externalID,
	}
	if err := l.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create linked user: %w", err)
	}
	return user, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
