package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/travelbooking/booking-api/internal/core/domain"
	"github.com/travelbooking/booking-api/internal/core/ports"
)

type stubTripRepo struct {
	trips      map[string]*domain.Trip
	nextID     int
	lastFilter ports.ListTripsFilter
	// beforeUpdate runs inside Update before the write is applied.
	beforeUpdate func()
}

func newStubTripRepo() *stubTripRepo {
	return &stubTripRepo{trips: make(map[string]*domain.Trip)}
}

func cloneTrip(t *domain.Trip) *domain.Trip {
	clone := *t
	return &clone
}

func (r *stubTripRepo) Create(_ context.Context, t *domain.Trip) error {
	r.nextID++
	t.ID = fmt.Sprintf("t-%d", r.nextID)
	r.trips[t.ID] = cloneTrip(t)
	return nil
}

func (r *stubTripRepo) FindByID(_ context.Context, id string) (*domain.Trip, error) {
	t, ok := r.trips[id]
	if !ok {
		return nil, domain.ErrTripNotFound
	}
	return cloneTrip(t), nil
}

func (r *stubTripRepo) Update(_ context.Context, t *domain.Trip) (*domain.Trip, error) {
	if r.beforeUpdate != nil {
		r.beforeUpdate()
	}
	cur, ok := r.trips[t.ID]
	if !ok {
		return nil, domain.ErrTripNotFound
	}
	delta := t.Capacity - cur.Capacity
	if cur.SeatsAvailable+delta < 0 {
		return nil, domain.ErrInvalidInput
	}

	next := cloneTrip(t)
	next.Capacity = cur.Capacity + delta
	next.SeatsAvailable = cur.SeatsAvailable + delta
	next.CreatedBy = cur.CreatedBy
	next.CreatedAt = cur.CreatedAt
	r.trips[t.ID] = next
	return cloneTrip(next), nil
}

func (r *stubTripRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.trips[id]; !ok {
		return domain.ErrTripNotFound
	}
	delete(r.trips, id)
	return nil
}

func (r *stubTripRepo) List(_ context.Context, f ports.ListTripsFilter) ([]*domain.Trip, int64, error) {
	r.lastFilter = f
	out := make([]*domain.Trip, 0, len(r.trips))
	for _, t := range r.trips {
		out = append(out, cloneTrip(t))
	}
	return out, int64(len(out)), nil
}

func (r *stubTripRepo) ReserveSeats(_ context.Context, id string, n int) error {
	t, ok := r.trips[id]
	if !ok {
		return domain.ErrTripNotFound
	}
	if t.SeatsAvailable < n {
		return domain.ErrNoSeatsAvailable
	}
	t.SeatsAvailable -= n
	return nil
}

func (r *stubTripRepo) ReleaseSeats(_ context.Context, id string, n int) error {
	t, ok := r.trips[id]
	if !ok {
		return domain.ErrTripNotFound
	}
	t.SeatsAvailable += n
	return nil
}

func (r *stubTripRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.trips)), nil
}

func validTripInput() ports.TripInput {
	start := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	return ports.TripInput{
		Title:      "Lisbon long weekend",
		City:       "Lisbon",
		Country:    "Portugal",
		HotelName:  "Alfama Inn",
		HotelStars: 4,
		Price:      "1299.90",
		StartDate:  start,
		EndDate:    start.Add(72 * time.Hour),
		Capacity:   10,
	}
}

func TestParsePriceCents(t *testing.T) {
	cases := map[string]int64{
		"1299.90": 129990,
		"15":      1500,
		"0.5":     50,
		"7.05":    705,
		" 42.00 ": 4200,
	}
	for in, want := range cases {
		got, err := ParsePriceCents(in)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", in, err)
		}
		if got != want {
			t.Fatalf("%q: expected %d, got %d", in, want, got)
		}
	}

	if got, err := ParsePriceCents("1000000000.00"); err != nil || got != maxPriceCents {
		t.Fatalf("expected the upper bound to be accepted, got %d %v", got, err)
	}

	for _, bad := range []string{"", "-1", "+3", "abc", "1.234", "1.", ".5", "1,50", "1000000000.01", "92233720368547758.07"} {
		if _, err := ParsePriceCents(bad); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("%q: expected ErrInvalidInput, got %v", bad, err)
		}
	}
}

func TestTripService_Create(t *testing.T) {
	repo := newStubTripRepo()
	svc := NewTripService(repo, zerolog.Nop())

	trip, err := svc.Create(context.Background(), "admin-1", validTripInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if trip.ID == "" {
		t.Fatalf("expected id to be assigned")
	}
	if trip.PriceCents != 129990 {
		t.Fatalf("expected 129990 cents, got %d", trip.PriceCents)
	}
	if trip.SeatsAvailable != trip.Capacity {
		t.Fatalf("expected all seats available, got %d/%d", trip.SeatsAvailable, trip.Capacity)
	}
	if trip.Currency != defaultCurrency || trip.CreatedBy != "admin-1" {
		t.Fatalf("unexpected trip: %+v", trip)
	}
}

func TestTripService_Create_Validation(t *testing.T) {
	svc := NewTripService(newStubTripRepo(), zerolog.Nop())

	mutate := []func(*ports.TripInput){
		func(in *ports.TripInput) { in.Title = " " },
		func(in *ports.TripInput) { in.Capacity = 0 },
		func(in *ports.TripInput) { in.EndDate = in.StartDate },
		func(in *ports.TripInput) { in.Price = "free" },
		func(in *ports.TripInput) { in.HotelStars = 6 },
		func(in *ports.TripInput) { in.City = "" },
	}
	for i, m := range mutate {
		in := validTripInput()
		m(&in)
		if _, err := svc.Create(context.Background(), "admin-1", in); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestTripService_Update_PreservesBookedSeats(t *testing.T) {
	repo := newStubTripRepo()
	svc := NewTripService(repo, zerolog.Nop())

	trip, _ := svc.Create(context.Background(), "admin-1", validTripInput())
	_ = repo.ReserveSeats(context.Background(), trip.ID, 4)

	in := validTripInput()
	in.Capacity = 12
	updated, err := svc.Update(context.Background(), trip.ID, in)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.SeatsAvailable != 8 {
		t.Fatalf("expected 8 seats available, got %d", updated.SeatsAvailable)
	}
	if updated.CreatedBy != "admin-1" {
		t.Fatalf("expected creator to be preserved, got %q", updated.CreatedBy)
	}

	in.Capacity = 3
	if _, err := svc.Update(context.Background(), trip.ID, in); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput when shrinking below bookings, got %v", err)
	}
}

func TestTripService_Update_KeepsBookingMadeDuringUpdate(t *testing.T) {
	repo := newStubTripRepo()
	svc := NewTripService(repo, zerolog.Nop())

	trip, _ := svc.Create(context.Background(), "admin-1", validTripInput())
	_ = repo.ReserveSeats(context.Background(), trip.ID, 2)

	repo.beforeUpdate = func() {
		if err := repo.ReserveSeats(context.Background(), trip.ID, 3); err != nil {
			t.Fatalf("concurrent booking: %v", err)
		}
	}

	in := validTripInput()
	in.Title = "Lisbon and Sintra"
	in.Capacity = 12
	updated, err := svc.Update(context.Background(), trip.ID, in)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	// 12 capacity, 2 + 3 booked.
	if updated.SeatsAvailable != 7 || updated.Capacity != 12 {
		t.Fatalf("expected 7 of 12 seats available, got %d of %d", updated.SeatsAvailable, updated.Capacity)
	}
	if updated.Title != "Lisbon and Sintra" {
		t.Fatalf("expected title to be updated, got %q", updated.Title)
	}
}

func TestTripService_Update_NotFound(t *testing.T) {
	svc := NewTripService(newStubTripRepo(), zerolog.Nop())

	if _, err := svc.Update(context.Background(), "missing", validTripInput()); !errors.Is(err, domain.ErrTripNotFound) {
		t.Fatalf("expected ErrTripNotFound, got %v", err)
	}
}

func TestTripService_List_NormalizesPagination(t *testing.T) {
	repo := newStubTripRepo()
	svc := NewTripService(repo, zerolog.Nop())
	for i := 0; i < 3; i++ {
		_, _ = svc.Create(context.Background(), "admin-1", validTripInput())
	}

	res, err := svc.List(context.Background(), ports.ListTripsFilter{Page: 0, Limit: 500, City: "  Lisbon "})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if repo.lastFilter.Page != 1 || repo.lastFilter.Limit != maxPageLimit {
		t.Fatalf("unexpected normalized filter: %+v", repo.lastFilter)
	}
	if repo.lastFilter.City != "Lisbon" {
		t.Fatalf("expected trimmed city, got %q", repo.lastFilter.City)
	}
	if res.Total != 3 || res.TotalPages != 1 {
		t.Fatalf("unexpected result: total=%d pages=%d", res.Total, res.TotalPages)
	}

	if _, err := svc.List(context.Background(), ports.ListTripsFilter{}); err != nil {
		t.Fatalf("List defaults: %v", err)
	}
	if repo.lastFilter.Limit != defaultPageLimit {
		t.Fatalf("expected default limit %d, got %d", defaultPageLimit, repo.lastFilter.Limit)
	}
}

func TestTripService_Delete(t *testing.T) {
	repo := newStubTripRepo()
	svc := NewTripService(repo, zerolog.Nop())
	trip, _ := svc.Create(context.Background(), "admin-1", validTripInput())

	if err := svc.Delete(context.Background(), trip.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), trip.ID); !errors.Is(err, domain.ErrTripNotFound) {
		t.Fatalf("expected ErrTripNotFound after delete, got %v", err)
	}
}
