package domain

import (
	"errors"
	"time"
)

// ReservationStatus represents the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
)

var ErrReservationNotFound = errors.New("reservation not found")
var ErrReservationCancelled = errors.New("reservation already cancelled")
var ErrReservationExists = errors.New("reservation already exists for idempotency key")
var ErrReservationCodeTaken = errors.New("reservation code already in use")

// Reservation books a number of seats on a trip for one user.
type Reservation struct {
	ID              string            `json:"id" bson:"_id,omitempty"`
	Code            string            `json:"code" bson:"code"`
	TripID          string            `json:"trip_id" bson:"trip_id"`
	UserID          string            `json:"user_id" bson:"user_id"`
	Travelers       int               `json:"travelers" bson:"travelers"`
	TotalPriceCents int64             `json:"total_price_cents" bson:"total_price_cents"`
	Currency        string            `json:"currency" bson:"currency"`
	Status          ReservationStatus `json:"status" bson:"status"`
	IdempotencyKey  string            `json:"-" bson:"idempotency_key,omitempty"`
	CreatedAt       time.Time         `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" bson:"updated_at"`
}
