package domain

import (
	"errors"
	"time"
)

var ErrTripNotFound = errors.New("trip not found")
var ErrNoSeatsAvailable = errors.New("not enough seats available")

// Destination is where a trip takes place.
type Destination struct {
	City    string `json:"city" bson:"city"`
	Country string `json:"country" bson:"country"`
}

// Hotel is the accommodation bundled with a trip.
type Hotel struct {
	Name  string `json:"name" bson:"name"`
	Stars int    `json:"stars" bson:"stars"`
}

// Trip is a bookable package in the catalog.
type Trip struct {
	ID             string      `json:"id" bson:"_id,omitempty"`
	Title          string      `json:"title" bson:"title"`
	Description    string      `json:"description" bson:"description"`
	Destination    Destination `json:"destination" bson:"destination"`
	Hotel          Hotel       `json:"hotel" bson:"hotel"`
	PriceCents     int64       `json:"price_cents" bson:"price_cents"`
	Currency       string      `json:"currency" bson:"currency"`
	StartDate      time.Time   `json:"start_date" bson:"start_date"`
	EndDate        time.Time   `json:"end_date" bson:"end_date"`
	Capacity       int         `json:"capacity" bson:"capacity"`
	SeatsAvailable int         `json:"seats_available" bson:"seats_available"`
	Images         []string    `json:"images" bson:"images"`
	CreatedBy      string      `json:"created_by" bson:"created_by"`
	CreatedAt      time.Time   `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at" bson:"updated_at"`
}
