package ports

import (
	"context"

	"github.com/travelbooking/booking-api/internal/core/domain"
)

// CredentialStore persists user accounts and their password hashes.
type CredentialStore interface {
	// FindByEmail returns domain.ErrUserNotFound when no account matches.
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	// Create returns domain.ErrUserExists when the email is already taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	// UpdateRole returns domain.ErrUserNotFound when no account has id.
	UpdateRole(ctx context.Context, id string, role domain.Role) (*domain.User, error)
	// List returns a page of users ordered by creation time and the total count.
	List(ctx context.Context, limit, offset int) ([]*domain.User, int64, error)
	Count(ctx context.Context) (int64, error)
}

// ResetTokenStore keeps short-lived password reset tokens.
type ResetTokenStore interface {
	Save(ctx context.Context, token, userID string) error
	// Consume returns the user id bound to token and deletes it.
	// domain.ErrInvalidResetToken is returned for unknown or expired tokens.
	Consume(ctx context.Context, token string) (string, error)
}
