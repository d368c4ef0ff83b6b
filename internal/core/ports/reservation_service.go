package ports

import (
	"context"

	"github.com/travelbooking/booking-api/internal/core/domain"
)

// CreateReservationInput carries everything needed to book seats on a trip.
type CreateReservationInput struct {
	TripID         string
	Travelers      int
	UserID         string
	IdempotencyKey string
}

// ReservationResult is returned after creating a reservation.
type ReservationResult struct {
	Reservation *domain.Reservation
	// AlreadyExisted is true when the Idempotency-Key matched an earlier reservation.
	AlreadyExisted bool
}

// ReservationService defines use-case operations for bookings.
type ReservationService interface {
	Create(ctx context.Context, input CreateReservationInput) (*ReservationResult, error)
	ListMine(ctx context.Context, userID string) ([]*domain.Reservation, error)
	Cancel(ctx context.Context, id string, caller domain.Identity) (*domain.Reservation, error)
}
