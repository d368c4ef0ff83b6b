package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/travelbooking/booking-api/internal/core/domain"
)

const defaultResetTTL = 30 * time.Minute

// ResetTokenStore keeps single-use password reset tokens.
// Key format: reset:<token>
type ResetTokenStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewResetTokenStore creates a ResetTokenStore; ttl <= 0 uses 30m.
func NewResetTokenStore(client redis.Cmdable, ttl time.Duration) *ResetTokenStore {
	if ttl <= 0 {
		ttl = defaultResetTTL
	}
	return &ResetTokenStore{client: client, ttl: ttl}
}

func (s *ResetTokenStore) Save(ctx context.Context, token, userID string) error {
	if err := s.client.Set(ctx, s.key(token), userID, s.ttl).Err(); err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}
	return nil
}

// Consume reads and deletes the token in one round trip so it cannot be
// used twice.
func (s *ResetTokenStore) Consume(ctx context.Context, token string) (string, error) {
	userID, err := s.client.GetDel(ctx, s.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrInvalidResetToken
	}
	if err != nil {
		return "", fmt.Errorf("consume reset token: %w", err)
	}
	return userID, nil
}

func (s *ResetTokenStore) key(token string) string {
	return "reset:" + token
}
