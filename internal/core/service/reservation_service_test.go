package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/travelbooking/booking-api/internal/core/domain"
	"github.com/travelbooking/booking-api/internal/core/ports"
)

type stubReservationRepo struct {
	items     map[string]*domain.Reservation
	nextID    int
	createErr error
	// createErrs are returned by successive Create calls before createErr.
	createErrs []error
	codes      []string
}

func newStubReservationRepo() *stubReservationRepo {
	return &stubReservationRepo{items: make(map[string]*domain.Reservation)}
}

func cloneReservation(r *domain.Reservation) *domain.Reservation {
	clone := *r
	return &clone
}

func (s *stubReservationRepo) Create(_ context.Context, r *domain.Reservation) error {
	s.codes = append(s.codes, r.Code)
	if len(s.createErrs) > 0 {
		err := s.createErrs[0]
		s.createErrs = s.createErrs[1:]
		return err
	}
	if s.createErr != nil {
		return s.createErr
	}
	if r.IdempotencyKey != "" {
		for _, existing := range s.items {
			if existing.UserID == r.UserID && existing.IdempotencyKey == r.IdempotencyKey {
				return domain.ErrReservationExists
			}
		}
	}
	s.nextID++
	r.ID = fmt.Sprintf("r-%d", s.nextID)
	s.items[r.ID] = cloneReservation(r)
	return nil
}

func (s *stubReservationRepo) FindByID(_ context.Context, id string) (*domain.Reservation, error) {
	r, ok := s.items[id]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	return cloneReservation(r), nil
}

func (s *stubReservationRepo) FindByIdempotencyKey(_ context.Context, userID, key string) (*domain.Reservation, error) {
	for _, r := range s.items {
		if r.UserID == userID && r.IdempotencyKey == key {
			return cloneReservation(r), nil
		}
	}
	return nil, domain.ErrReservationNotFound
}

func (s *stubReservationRepo) ListByUser(_ context.Context, userID string) ([]*domain.Reservation, error) {
	out := []*domain.Reservation{}
	for _, r := range s.items {
		if r.UserID == userID {
			out = append(out, cloneReservation(r))
		}
	}
	return out, nil
}

func (s *stubReservationRepo) MarkCancelled(_ context.Context, id string) (*domain.Reservation, error) {
	r, ok := s.items[id]
	if !ok {
		return nil, domain.ErrReservationNotFound
	}
	if r.Status == domain.ReservationCancelled {
		return nil, domain.ErrReservationCancelled
	}
	r.Status = domain.ReservationCancelled
	return cloneReservation(r), nil
}

func (s *stubReservationRepo) Count(_ context.Context) (int64, error) {
	return int64(len(s.items)), nil
}

type stubIdempotencyStore struct {
	keys      map[string]string
	lookupErr error
}

func newStubIdempotencyStore() *stubIdempotencyStore {
	return &stubIdempotencyStore{keys: make(map[string]string)}
}

func (s *stubIdempotencyStore) Lookup(_ context.Context, userID, key string) (string, error) {
	if s.lookupErr != nil {
		return "", s.lookupErr
	}
	return s.keys[userID+":"+key], nil
}

func (s *stubIdempotencyStore) Remember(_ context.Context, userID, key, id string) error {
	s.keys[userID+":"+key] = id
	return nil
}

type reservationFixture struct {
	svc          ports.ReservationService
	trips        *stubTripRepo
	reservations *stubReservationRepo
	idem         *stubIdempotencyStore
	trip         *domain.Trip
}

func newReservationFixture(t *testing.T, seats int) *reservationFixture {
	t.Helper()
	f := &reservationFixture{
		trips:        newStubTripRepo(),
		reservations: newStubReservationRepo(),
		idem:         newStubIdempotencyStore(),
	}
	f.trip = &domain.Trip{Title: "Rome", PriceCents: 50000, Currency: "EUR", Capacity: seats, SeatsAvailable: seats}
	if err := f.trips.Create(context.Background(), f.trip); err != nil {
		t.Fatalf("seed trip: %v", err)
	}
	f.svc = NewReservationService(f.reservations, f.trips, f.idem, zerolog.Nop())
	return f
}

func (f *reservationFixture) seats(t *testing.T) int {
	t.Helper()
	trip, err := f.trips.FindByID(context.Background(), f.trip.ID)
	if err != nil {
		t.Fatalf("find trip: %v", err)
	}
	return trip.SeatsAvailable
}

func TestReservationService_Create(t *testing.T) {
	f := newReservationFixture(t, 5)

	res, err := f.svc.Create(context.Background(), ports.CreateReservationInput{
		TripID: f.trip.ID, Travelers: 2, UserID: "u-1",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	r := res.Reservation
	if res.AlreadyExisted {
		t.Fatalf("expected new reservation")
	}
	if r.Status != domain.ReservationPending {
		t.Fatalf("expected pending status, got %s", r.Status)
	}
	if r.TotalPriceCents != 100000 || r.Currency != "EUR" {
		t.Fatalf("unexpected total: %d %s", r.TotalPriceCents, r.Currency)
	}
	if !strings.HasPrefix(r.Code, "BK-") || len(r.Code) != 11 {
		t.Fatalf("unexpected code format: %q", r.Code)
	}
	if got := f.seats(t); got != 3 {
		t.Fatalf("expected 3 seats left, got %d", got)
	}
}

func TestReservationService_Create_NoSeats(t *testing.T) {
	f := newReservationFixture(t, 1)

	_, err := f.svc.Create(context.Background(), ports.CreateReservationInput{
		TripID: f.trip.ID, Travelers: 2, UserID: "u-1",
	})
	if !errors.Is(err, domain.ErrNoSeatsAvailable) {
		t.Fatalf("expected ErrNoSeatsAvailable, got %v", err)
	}
	if got := f.seats(t); got != 1 {
		t.Fatalf("seats must be untouched, got %d", got)
	}
}

func TestReservationService_Create_Validation(t *testing.T) {
	f := newReservationFixture(t, 5)

	cases := []ports.CreateReservationInput{
		{TripID: f.trip.ID, Travelers: 0, UserID: "u-1"},
		{TripID: f.trip.ID, Travelers: maxTravelers + 1, UserID: "u-1"},
		{TripID: "", Travelers: 1, UserID: "u-1"},
		{TripID: f.trip.ID, Travelers: 1, UserID: ""},
		{TripID: f.trip.ID, Travelers: 1, UserID: "u-1", IdempotencyKey: strings.Repeat("k", maxIdempotencyKeyLen+1)},
	}
	for i, in := range cases {
		if _, err := f.svc.Create(context.Background(), in); !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}

func TestReservationService_Create_UnknownTrip(t *testing.T) {
	f := newReservationFixture(t, 5)

	_, err := f.svc.Create(context.Background(), ports.CreateReservationInput{TripID: "nope", Travelers: 1, UserID: "u-1"})
	if !errors.Is(err, domain.ErrTripNotFound) {
		t.Fatalf("expected ErrTripNotFound, got %v", err)
	}
}

func TestReservationService_Create_IdempotencyKeyReplays(t *testing.T) {
	f := newReservationFixture(t, 5)
	in := ports.CreateReservationInput{TripID: f.trip.ID, Travelers: 2, UserID: "u-1", IdempotencyKey: "key-1"}

	first, err := f.svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}
	second, err := f.svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if !second.AlreadyExisted || second.Reservation.ID != first.Reservation.ID {
		t.Fatalf("expected replay of %s, got %+v", first.Reservation.ID, second)
	}
	if got := f.seats(t); got != 3 {
		t.Fatalf("replay must not take seats again, got %d left", got)
	}

	in.UserID = "u-2"
	other, err := f.svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("other user Create: %v", err)
	}
	if other.AlreadyExisted {
		t.Fatalf("keys are scoped per user")
	}
}

func TestReservationService_Create_IdempotencyFallsBackToStore(t *testing.T) {
	f := newReservationFixture(t, 5)
	in := ports.CreateReservationInput{TripID: f.trip.ID, Travelers: 1, UserID: "u-1", IdempotencyKey: "key-1"}

	first, err := f.svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}

	f.idem.lookupErr = errors.New("redis down")
	second, err := f.svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if !second.AlreadyExisted || second.Reservation.ID != first.Reservation.ID {
		t.Fatalf("expected replay from store, got %+v", second)
	}
}

func TestReservationService_Create_ConcurrentDuplicateReleasesSeats(t *testing.T) {
	f := newReservationFixture(t, 5)
	in := ports.CreateReservationInput{TripID: f.trip.ID, Travelers: 2, UserID: "u-1", IdempotencyKey: "key-1"}

	first, err := f.svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("first Create: %v", err)
	}
	// Simulate a racing request that missed the Redis key.
	f.idem.keys = make(map[string]string)

	second, err := f.svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if second.Reservation.ID != first.Reservation.ID {
		t.Fatalf("expected the original reservation")
	}
	if got := f.seats(t); got != 3 {
		t.Fatalf("expected seats to be released, got %d left", got)
	}
}

func TestReservationService_Create_StoreFailureReleasesSeats(t *testing.T) {
	f := newReservationFixture(t, 5)
	f.reservations.createErr = errors.New("write failed")

	if _, err := f.svc.Create(context.Background(), ports.CreateReservationInput{TripID: f.trip.ID, Travelers: 2, UserID: "u-1"}); err == nil {
		t.Fatalf("expected error")
	}
	if got := f.seats(t); got != 5 {
		t.Fatalf("expected all seats back, got %d", got)
	}
}

func TestReservationService_Create_RegeneratesTakenCode(t *testing.T) {
	f := newReservationFixture(t, 5)
	f.reservations.createErrs = []error{domain.ErrReservationCodeTaken}

	res, err := f.svc.Create(context.Background(), ports.CreateReservationInput{TripID: f.trip.ID, Travelers: 2, UserID: "u-1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(f.reservations.codes) != 2 || f.reservations.codes[0] == f.reservations.codes[1] {
		t.Fatalf("expected a second attempt with a new code, got %v", f.reservations.codes)
	}
	if res.AlreadyExisted || res.Reservation.Code != f.reservations.codes[1] {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got := f.seats(t); got != 3 {
		t.Fatalf("expected 3 seats left, got %d", got)
	}
}

func TestReservationService_Create_CodeCollisionsExhausted(t *testing.T) {
	f := newReservationFixture(t, 5)
	f.reservations.createErr = domain.ErrReservationCodeTaken

	_, err := f.svc.Create(context.Background(), ports.CreateReservationInput{TripID: f.trip.ID, Travelers: 2, UserID: "u-1"})
	if err == nil || errors.Is(err, domain.ErrReservationNotFound) {
		t.Fatalf("expected a server error, got %v", err)
	}
	if len(f.reservations.codes) != maxCodeAttempts {
		t.Fatalf("expected %d attempts, got %d", maxCodeAttempts, len(f.reservations.codes))
	}
	if got := f.seats(t); got != 5 {
		t.Fatalf("expected all seats back, got %d", got)
	}
}

func TestReservationService_Create_DuplicateWithoutKeyIsNotNotFound(t *testing.T) {
	f := newReservationFixture(t, 5)
	f.reservations.createErr = domain.ErrReservationExists

	_, err := f.svc.Create(context.Background(), ports.CreateReservationInput{TripID: f.trip.ID, Travelers: 1, UserID: "u-1"})
	if err == nil {
		t.Fatalf("expected error")
	}
	if errors.Is(err, domain.ErrReservationNotFound) {
		t.Fatalf("a keyless duplicate must not surface as not found: %v", err)
	}
	if got := f.seats(t); got != 5 {
		t.Fatalf("expected all seats back, got %d", got)
	}
}

func TestReservationService_Create_RejectsOverflowingTotal(t *testing.T) {
	f := newReservationFixture(t, 5)
	f.trips.trips[f.trip.ID].PriceCents = math.MaxInt64 / 2

	_, err := f.svc.Create(context.Background(), ports.CreateReservationInput{TripID: f.trip.ID, Travelers: 3, UserID: "u-1"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if got := f.seats(t); got != 5 {
		t.Fatalf("expected all seats back, got %d", got)
	}
}

func TestReservationService_ListMine(t *testing.T) {
	f := newReservationFixture(t, 10)
	for _, user := range []string{"u-1", "u-1", "u-2"} {
		if _, err := f.svc.Create(context.Background(), ports.CreateReservationInput{TripID: f.trip.ID, Travelers: 1, UserID: user}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	mine, err := f.svc.ListMine(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 reservations, got %d", len(mine))
	}
	for _, r := range mine {
		if r.UserID != "u-1" {
			t.Fatalf("leaked reservation of %s", r.UserID)
		}
	}
}

func TestReservationService_Cancel(t *testing.T) {
	f := newReservationFixture(t, 5)
	res, _ := f.svc.Create(context.Background(), ports.CreateReservationInput{TripID: f.trip.ID, Travelers: 2, UserID: "u-1"})
	id := res.Reservation.ID

	stranger := domain.Identity{SubjectID: "u-2", Role: domain.RoleUser}
	if _, err := f.svc.Cancel(context.Background(), id, stranger); !errors.Is(err, domain.ErrReservationNotFound) {
		t.Fatalf("expected ErrReservationNotFound for stranger, got %v", err)
	}
	vendeur := domain.Identity{SubjectID: "v-1", Role: domain.RoleVendeur}
	if _, err := f.svc.Cancel(context.Background(), id, vendeur); !errors.Is(err, domain.ErrReservationNotFound) {
		t.Fatalf("expected ErrReservationNotFound for vendeur, got %v", err)
	}
	if got := f.seats(t); got != 3 {
		t.Fatalf("rejected cancel must not release seats, got %d", got)
	}

	owner := domain.Identity{SubjectID: "u-1", Role: domain.RoleUser}
	cancelled, err := f.svc.Cancel(context.Background(), id, owner)
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if cancelled.Status != domain.ReservationCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
	if got := f.seats(t); got != 5 {
		t.Fatalf("expected seats released, got %d", got)
	}

	if _, err := f.svc.Cancel(context.Background(), id, owner); !errors.Is(err, domain.ErrReservationCancelled) {
		t.Fatalf("expected ErrReservationCancelled, got %v", err)
	}
	if got := f.seats(t); got != 5 {
		t.Fatalf("double cancel must not release twice, got %d", got)
	}
}

func TestReservationService_Cancel_ByAdmin(t *testing.T) {
	f := newReservationFixture(t, 5)
	res, _ := f.svc.Create(context.Background(), ports.CreateReservationInput{TripID: f.trip.ID, Travelers: 1, UserID: "u-1"})

	admin := domain.Identity{SubjectID: "admin-1", Role: domain.RoleAdmin}
	if _, err := f.svc.Cancel(context.Background(), res.Reservation.ID, admin); err != nil {
		t.Fatalf("admin Cancel: %v", err)
	}
}
