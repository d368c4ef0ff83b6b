package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/travelbooking/booking-api/internal/core/domain"
	"github.com/travelbooking/booking-api/internal/core/ports"
)

func TestReservationHandler_Create(t *testing.T) {
	cases := []struct {
		name     string
		existed  bool
		wantCode int
	}{
		{"new booking", false, http.StatusCreated},
		{"replayed key", true, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEcho()
			stub := &stubReservationService{
				createFn: func(ctx context.Context, in ports.CreateReservationInput) (*ports.ReservationResult, error) {
					if in.UserID != "user-1" || in.TripID != "t-1" || in.Travelers != 2 || in.IdempotencyKey != "key-123" {
						t.Fatalf("unexpected input: %+v", in)
					}
					return &ports.ReservationResult{
						Reservation: &domain.Reservation{
							ID:              "r-1",
							Code:            "BK-ABCDEFGH",
							TripID:          in.TripID,
							Travelers:       in.Travelers,
							TotalPriceCents: 259980,
							Currency:        "EUR",
							Status:          domain.ReservationConfirmed,
						},
						AlreadyExisted: tc.existed,
					}, nil
				},
			}
			h := NewReservationHandler(stub)

			c, rec := newJSONContext(e, http.MethodPost, "/v1/reservations", `{"trip_id":"t-1","travelers":2}`)
			c.Request().Header.Set("Idempotency-Key", "key-123")
			if err := h.Create(withIdentity(c, domain.RoleUser)); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != tc.wantCode {
				t.Fatalf("expected %d, got %d", tc.wantCode, rec.Code)
			}

			var resp reservationResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
			if resp.Code != "BK-ABCDEFGH" || resp.Status != "confirmed" {
				t.Fatalf("unexpected reservation: %+v", resp)
			}
		})
	}
}

func TestReservationHandler_Create_NoSeats(t *testing.T) {
	e := newTestEcho()
	stub := &stubReservationService{
		createFn: func(ctx context.Context, in ports.CreateReservationInput) (*ports.ReservationResult, error) {
			return nil, domain.ErrNoSeatsAvailable
		},
	}
	h := NewReservationHandler(stub)

	c, _ := newJSONContext(e, http.MethodPost, "/v1/reservations", `{"trip_id":"t-1","travelers":3}`)
	if err := h.Create(withIdentity(c, domain.RoleUser)); !errors.Is(err, domain.ErrNoSeatsAvailable) {
		t.Fatalf("expected ErrNoSeatsAvailable, got %v", err)
	}
}

func TestReservationHandler_Create_Validation(t *testing.T) {
	e := newTestEcho()
	stub := &stubReservationService{
		createFn: func(ctx context.Context, in ports.CreateReservationInput) (*ports.ReservationResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewReservationHandler(stub)

	c, _ := newJSONContext(e, http.MethodPost, "/v1/reservations", `{"trip_id":"t-1","travelers":0}`)
	if code := httpCode(h.Create(withIdentity(c, domain.RoleUser))); code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", code)
	}
}

func TestReservationHandler_ListMine(t *testing.T) {
	e := newTestEcho()
	stub := &stubReservationService{
		listMineFn: func(ctx context.Context, userID string) ([]*domain.Reservation, error) {
			if userID != "user-1" {
				t.Fatalf("expected caller's id, got %q", userID)
			}
			return nil, nil
		},
	}
	h := NewReservationHandler(stub)

	c, rec := newJSONContext(e, http.MethodGet, "/v1/reservations", "")
	if err := h.ListMine(withIdentity(c, domain.RoleUser)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if body := rec.Body.String(); body != "{\"data\":[]}\n" {
		t.Fatalf("expected empty data array, got %q", body)
	}
}

func TestReservationHandler_Cancel_PassesCaller(t *testing.T) {
	e := newTestEcho()
	stub := &stubReservationService{
		cancelFn: func(ctx context.Context, id string, caller domain.Identity) (*domain.Reservation, error) {
			if id != "r-1" || caller.Role != domain.RoleUser || caller.SubjectID != "user-1" {
				t.Fatalf("unexpected args: %s %+v", id, caller)
			}
			return nil, domain.ErrReservationNotFound
		},
	}
	h := NewReservationHandler(stub)

	c, _ := newJSONContext(e, http.MethodDelete, "/v1/reservations/r-1", "")
	c.SetParamNames("id")
	c.SetParamValues("r-1")

	if err := h.Cancel(withIdentity(c, domain.RoleUser)); !errors.Is(err, domain.ErrReservationNotFound) {
		t.Fatalf("expected ErrReservationNotFound, got %v", err)
	}
}
