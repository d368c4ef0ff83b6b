package ports

import (
	"context"
	"time"

	"github.com/travelbooking/booking-api/internal/core/domain"
)

// PasswordHasher hashes and verifies plaintext passwords.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	// Verify reports false, not an error, when the password does not match.
	Verify(ctx context.Context, plaintext, hash string) (bool, error)
}

// TokenIssuer mints signed, time-limited tokens.
type TokenIssuer interface {
	Issue(identity domain.Identity, kind domain.TokenKind) (string, time.Time, error)
}

// TokenVerifier validates tokens and returns their claims.
type TokenVerifier interface {
	Verify(token string) (domain.Identity, error)
}
