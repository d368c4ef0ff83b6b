package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/travelbooking/booking-api/internal/api/metrics"
	"github.com/travelbooking/booking-api/internal/core/domain"
	"github.com/travelbooking/booking-api/internal/core/ports"
)

const (
	maxTravelers         = 20
	maxIdempotencyKeyLen = 128
	maxCodeAttempts      = 3
)

type reservationService struct {
	reservations ports.ReservationRepository
	trips        ports.TripRepository
	idem         ports.IdempotencyStore
	log          zerolog.Logger
}

// NewReservationService returns a ReservationService implementation.
func NewReservationService(
	reservations ports.ReservationRepository,
	trips ports.TripRepository,
	idem ports.IdempotencyStore,
	log zerolog.Logger,
) ports.ReservationService {
	return &reservationService{
		reservations: reservations,
		trips:        trips,
		idem:         idem,
		log:          log,
	}
}

// Create books seats on a trip. A repeated idempotency key from the same user
// returns the reservation produced by the first request.
func (s *reservationService) Create(ctx context.Context, in ports.CreateReservationInput) (*ports.ReservationResult, error) {
	key := strings.TrimSpace(in.IdempotencyKey)
	if in.UserID == "" || strings.TrimSpace(in.TripID) == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Travelers < 1 || in.Travelers > maxTravelers || len(key) > maxIdempotencyKeyLen {
		return nil, domain.ErrInvalidInput
	}

	// 1. Idempotency check: Redis first, Mongo when Redis is unavailable.
	if key != "" {
		existing, err := s.findReplay(ctx, in.UserID, key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			metrics.ReservationsTotal.WithLabelValues("replayed").Inc()
			return &ports.ReservationResult{Reservation: existing, AlreadyExisted: true}, nil
		}
	}

	// 2. Reserve seats atomically before writing the reservation.
	trip, err := s.trips.FindByID(ctx, in.TripID)
	if err != nil {
		return nil, err
	}
	if err := s.trips.ReserveSeats(ctx, trip.ID, in.Travelers); err != nil {
		if errors.Is(err, domain.ErrNoSeatsAvailable) {
			metrics.ReservationsTotal.WithLabelValues("no_seats").Inc()
		}
		return nil, err
	}

	total, err := totalPrice(trip.PriceCents, in.Travelers)
	if err != nil {
		s.releaseSeats(ctx, trip.ID, in.Travelers)
		return nil, err
	}

	now := time.Now().UTC()
	r := &domain.Reservation{
		Code:            newReservationCode(),
		TripID:          trip.ID,
		UserID:          in.UserID,
		Travelers:       in.Travelers,
		TotalPriceCents: total,
		Currency:        trip.Currency,
		Status:          domain.ReservationPending,
		IdempotencyKey:  key,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	// 3. Persist; give the seats back on any failure.
	if err := s.insert(ctx, r); err != nil {
		s.releaseSeats(ctx, trip.ID, in.Travelers)
		if errors.Is(err, domain.ErrReservationExists) && key != "" {
			existing, findErr := s.reservations.FindByIdempotencyKey(ctx, in.UserID, key)
			if findErr != nil {
				return nil, fmt.Errorf("load concurrent reservation: %w", findErr)
			}
			metrics.ReservationsTotal.WithLabelValues("replayed").Inc()
			return &ports.ReservationResult{Reservation: existing, AlreadyExisted: true}, nil
		}
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	// 4. Remember the key; Mongo's unique index still guards replays if this fails.
	if key != "" {
		if err := s.idem.Remember(ctx, in.UserID, key, r.ID); err != nil {
			s.log.Warn().Err(err).Str("reservation_id", r.ID).Msg("idempotency remember failed")
		}
	}

	metrics.ReservationsTotal.WithLabelValues("created").Inc()
	s.log.Info().
		Str("reservation_id", r.ID).
		Str("code", r.Code).
		Str("trip_id", r.TripID).
		Int("travelers", r.Travelers).
		Msg("reservation created")

	return &ports.ReservationResult{Reservation: r}, nil
}

func (s *reservationService) ListMine(ctx context.Context, userID string) ([]*domain.Reservation, error) {
	if userID == "" {
		return nil, domain.ErrUnauthenticated
	}
	return s.reservations.ListByUser(ctx, userID)
}

// Cancel cancels a reservation owned by caller, or any reservation when the
// caller is an admin, and releases its seats.
func (s *reservationService) Cancel(ctx context.Context, id string, caller domain.Identity) (*domain.Reservation, error) {
	r, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Another user's reservation is reported as missing.
	if r.UserID != caller.SubjectID && caller.Role != domain.RoleAdmin {
		return nil, domain.ErrReservationNotFound
	}

	cancelled, err := s.reservations.MarkCancelled(ctx, id)
	if err != nil {
		return nil, err
	}
	s.releaseSeats(ctx, cancelled.TripID, cancelled.Travelers)

	metrics.ReservationsTotal.WithLabelValues("cancelled").Inc()
	s.log.Info().
		Str("reservation_id", id).
		Str("cancelled_by", caller.SubjectID).
		Msg("reservation cancelled")
	return cancelled, nil
}

// insert writes r, drawing a fresh code when the current one is taken.
func (s *reservationService) insert(ctx context.Context, r *domain.Reservation) error {
	var err error
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		err = s.reservations.Create(ctx, r)
		if !errors.Is(err, domain.ErrReservationCodeTaken) {
			return err
		}
		s.log.Warn().Str("code", r.Code).Msg("reservation code collision, regenerating")
		r.Code = newReservationCode()
	}
	return err
}

func (s *reservationService) findReplay(ctx context.Context, userID, key string) (*domain.Reservation, error) {
	id, err := s.idem.Lookup(ctx, userID, key)
	if err != nil {
		s.log.Warn().Err(err).Msg("idempotency lookup failed, falling back to store")
		existing, findErr := s.reservations.FindByIdempotencyKey(ctx, userID, key)
		if errors.Is(findErr, domain.ErrReservationNotFound) {
			return nil, nil
		}
		return existing, findErr
	}
	if id == "" {
		return nil, nil
	}

	existing, err := s.reservations.FindByID(ctx, id)
	if errors.Is(err, domain.ErrReservationNotFound) {
		return nil, nil
	}
	return existing, err
}

func (s *reservationService) releaseSeats(ctx context.Context, tripID string, n int) {
	if err := s.trips.ReleaseSeats(context.WithoutCancel(ctx), tripID, n); err != nil {
		s.log.Error().Err(err).Str("trip_id", tripID).Int("seats", n).Msg("release seats failed")
	}
}

// totalPrice multiplies the seat price by the traveler count, rejecting
// results that do not fit in int64.
func totalPrice(priceCents int64, travelers int) (int64, error) {
	if priceCents < 0 || travelers < 1 {
		return 0, domain.ErrInvalidInput
	}
	if priceCents > math.MaxInt64/int64(travelers) {
		return 0, domain.ErrInvalidInput
	}
	return priceCents * int64(travelers), nil
}

// newReservationCode returns a short human-friendly code, e.g. BK-7A8B9C2D.
func newReservationCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "BK-" + strings.ToUpper(raw[:8])
}
