package ports

import (
	"context"
	"time"

	"github.com/travelbooking/booking-api/internal/core/domain"
)

// TripInput is the DTO passed from the transport layer to TripService.
// Price arrives as a decimal string ("1299.90") and is coerced to cents.
type TripInput struct {
	Title       string
	Description string
	City        string
	Country     string
	HotelName   string
	HotelStars  int
	Price       string
	Currency    string
	StartDate   time.Time
	EndDate     time.Time
	Capacity    int
	Images      []string
}

// ListTripsResult is returned by TripService.List.
type ListTripsResult struct {
	Items      []*domain.Trip
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// TripService defines use-case operations for the catalog.
type TripService interface {
	List(ctx context.Context, filter ListTripsFilter) (*ListTripsResult, error)
	Get(ctx context.Context, id string) (*domain.Trip, error)
	Create(ctx context.Context, createdBy string, input TripInput) (*domain.Trip, error)
	Update(ctx context.Context, id string, input TripInput) (*domain.Trip, error)
	Delete(ctx context.Context, id string) error
}
