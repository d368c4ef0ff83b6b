package ports

import (
	"context"

	"github.com/travelbooking/booking-api/internal/core/domain"
)

// ReservationRepository defines persistence operations for reservations.
type ReservationRepository interface {
	// Create returns domain.ErrReservationExists when the user already holds a
	// reservation made with the same idempotency key.
	Create(ctx context.Context, r *domain.Reservation) error
	FindByID(ctx context.Context, id string) (*domain.Reservation, error)
	FindByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Reservation, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Reservation, error)
	// MarkCancelled flips a non-cancelled reservation to cancelled and returns
	// it. domain.ErrReservationCancelled is returned when it already was.
	MarkCancelled(ctx context.Context, id string) (*domain.Reservation, error)
	Count(ctx context.Context) (int64, error)
}

// IdempotencyStore remembers which reservation a client-supplied key produced.
type IdempotencyStore interface {
	// Lookup returns the reservation id bound to key, or "" when unseen.
	Lookup(ctx context.Context, userID, key string) (string, error)
	Remember(ctx context.Context, userID, key, reservationID string) error
}
