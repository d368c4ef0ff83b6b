package ports

import (
	"context"

	"github.com/travelbooking/booking-api/internal/core/domain"
)

// ListTripsFilter carries all query parameters for listing trips.
type ListTripsFilter struct {
	City          string // optional: exact match, case-insensitive
	Country       string // optional: exact match, case-insensitive
	MaxPriceCents int64  // optional: 0 = no bound
	Search        string // optional: partial match on title
	Page          int    // 1-based
	Limit         int
}

// TripRepository defines persistence operations for the trip catalog.
type TripRepository interface {
	Create(ctx context.Context, t *domain.Trip) error
	FindByID(ctx context.Context, id string) (*domain.Trip, error)
	// Update applies the editable fields of t and moves the capacity to
	// t.Capacity, shifting seats_available by the same delta in one write so
	// concurrent bookings are kept. domain.ErrInvalidInput is returned when
	// the new capacity is below the seats already booked.
	Update(ctx context.Context, t *domain.Trip) (*domain.Trip, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListTripsFilter) ([]*domain.Trip, int64, error)
	// ReserveSeats atomically decrements seats_available by n.
	// domain.ErrNoSeatsAvailable is returned when fewer than n seats remain.
	ReserveSeats(ctx context.Context, id string, n int) error
	ReleaseSeats(ctx context.Context, id string, n int) error
	Count(ctx context.Context) (int64, error)
}
