package security

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/travelbooking/booking-api/internal/api/metrics"
	"github.com/travelbooking/booking-api/internal/core/domain"
)

// MaxPasswordBytes is the bcrypt input limit; longer inputs are rejected
// rather than silently truncated.
const MaxPasswordBytes = 72

// BcryptHasher implements ports.PasswordHasher. When a pool is attached all
// bcrypt work is executed on it.
type BcryptHasher struct {
	cost    int
	pool    *HashPool
	timeout time.Duration
}

// NewBcryptHasher returns a hasher using cost; an out-of-range cost falls
// back to bcrypt.DefaultCost. pool may be nil to hash on the caller's goroutine.
func NewBcryptHasher(cost int, pool *HashPool) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost, pool: pool}
}

// WithTimeout bounds how long a call may wait for a pool worker.
func (h *BcryptHasher) WithTimeout(d time.Duration) *BcryptHasher {
	h.timeout = d
	return h
}

func (h *BcryptHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		return "", domain.ErrInvalidInput
	}

	var (
		out []byte
		err error
	)
	runErr := h.run(ctx, "hash", func() {
		out, err = bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	})
	if runErr != nil {
		return "", runErr
	}
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (h *BcryptHasher) Verify(ctx context.Context, plaintext, hash string) (bool, error) {
	var err error
	runErr := h.run(ctx, "verify", func() {
		err = bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	})
	if runErr != nil {
		return false, runErr
	}
	// Mismatches and malformed stored hashes both read as "wrong password".
	return err == nil, nil
}

func (h *BcryptHasher) run(ctx context.Context, op string, fn func()) error {
	start := time.Now()
	defer func() {
		metrics.HashDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	if h.pool == nil {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn()
		return nil
	}
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	return h.pool.Submit(ctx, fn)
}
