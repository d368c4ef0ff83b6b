package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/travelbooking/booking-api/internal/core/domain"
	"github.com/travelbooking/booking-api/internal/core/ports"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
	defaultCurrency  = "EUR"

	// maxPriceCents bounds a single seat price so the reservation total
	// (price x travelers) stays far from int64 overflow.
	maxPriceCents int64 = 100_000_000_000
)

type tripService struct {
	repo ports.TripRepository
	log  zerolog.Logger
}

// NewTripService returns a TripService implementation.
func NewTripService(repo ports.TripRepository, log zerolog.Logger) ports.TripService {
	return &tripService{repo: repo, log: log}
}

func (s *tripService) List(ctx context.Context, filter ports.ListTripsFilter) (*ports.ListTripsResult, error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)
	filter.City = strings.TrimSpace(filter.City)
	filter.Country = strings.TrimSpace(filter.Country)
	filter.Search = strings.TrimSpace(filter.Search)
	if filter.MaxPriceCents < 0 {
		return nil, domain.ErrInvalidInput
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &ports.ListTripsResult{
		Items:      items,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: totalPages(total, filter.Limit),
	}, nil
}

func (s *tripService) Get(ctx context.Context, id string) (*domain.Trip, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrTripNotFound
	}
	return s.repo.FindByID(ctx, id)
}

func (s *tripService) Create(ctx context.Context, createdBy string, in ports.TripInput) (*domain.Trip, error) {
	trip, err := buildTrip(in)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	trip.SeatsAvailable = trip.Capacity
	trip.CreatedBy = createdBy
	trip.CreatedAt = now
	trip.UpdatedAt = now

	if err := s.repo.Create(ctx, trip); err != nil {
		return nil, err
	}

	s.log.Info().Str("trip_id", trip.ID).Str("created_by", createdBy).Msg("trip created")
	return trip, nil
}

// Update replaces the editable fields of a trip. Seats already booked are
// preserved: a capacity below the booked count is rejected.
func (s *tripService) Update(ctx context.Context, id string, in ports.TripInput) (*domain.Trip, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrTripNotFound
	}

	changes, err := buildTrip(in)
	if err != nil {
		return nil, err
	}
	changes.ID = id
	changes.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.Update(ctx, changes)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("trip_id", id).Int("capacity", updated.Capacity).Msg("trip updated")
	return updated, nil
}

func (s *tripService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("trip_id", id).Msg("trip deleted")
	return nil
}

func buildTrip(in ports.TripInput) (*domain.Trip, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" || strings.TrimSpace(in.City) == "" || strings.TrimSpace(in.Country) == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Capacity < 1 || in.StartDate.IsZero() || !in.EndDate.After(in.StartDate) {
		return nil, domain.ErrInvalidInput
	}
	if in.HotelStars < 0 || in.HotelStars > 5 {
		return nil, domain.ErrInvalidInput
	}

	cents, err := ParsePriceCents(in.Price)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	images := in.Images
	if images == nil {
		images = []string{}
	}

	return &domain.Trip{
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Destination: domain.Destination{City: strings.TrimSpace(in.City), Country: strings.TrimSpace(in.Country)},
		Hotel:       domain.Hotel{Name: strings.TrimSpace(in.HotelName), Stars: in.HotelStars},
		PriceCents:  cents,
		Currency:    currency,
		StartDate:   in.StartDate.UTC(),
		EndDate:     in.EndDate.UTC(),
		Capacity:    in.Capacity,
		Images:      images,
	}, nil
}

// ParsePriceCents converts a decimal price string ("1299.90", "15") into
// integer cents. At most two fractional digits are accepted.
func ParsePriceCents(price string) (int64, error) {
	price = strings.TrimSpace(price)
	if price == "" {
		return 0, domain.ErrInvalidInput
	}

	whole, frac, hasFrac := strings.Cut(price, ".")
	if whole == "" || (hasFrac && (frac == "" || len(frac) > 2)) {
		return 0, domain.ErrInvalidInput
	}
	for len(frac) < 2 {
		frac += "0"
	}

	units, err := strconv.ParseUint(whole, 10, 64)
	if err != nil || units > uint64(maxPriceCents/100) {
		return 0, domain.ErrInvalidInput
	}
	cents, err := strconv.ParseUint(frac, 10, 64)
	if err != nil {
		return 0, domain.ErrInvalidInput
	}
	total := int64(units*100 + cents)
	if total > maxPriceCents {
		return 0, domain.ErrInvalidInput
	}
	return total, nil
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func totalPages(total int64, limit int) int {
	if limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
