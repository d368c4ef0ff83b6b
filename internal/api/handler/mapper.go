package handler

import (
	"github.com/travelbooking/booking-api/internal/core/domain"
	"github.com/travelbooking/booking-api/internal/core/ports"
)

// --- Request → Service input ---

func toTripInput(req tripRequest) ports.TripInput {
	return ports.TripInput{
		Title:       req.Title,
		Description: req.Description,
		City:        req.City,
		Country:     req.Country,
		HotelName:   req.HotelName,
		HotelStars:  req.HotelStars,
		Price:       req.Price,
		Currency:    req.Currency,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Capacity:    req.Capacity,
		Images:      req.Images,
	}
}

// --- Domain → HTTP response ---

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.UTC(),
	}
}

func toTripResponse(t *domain.Trip) tripResponse {
	images := t.Images
	if images == nil {
		images = []string{}
	}
	return tripResponse{
		ID:             t.ID,
		Title:          t.Title,
		Description:    t.Description,
		City:           t.Destination.City,
		Country:        t.Destination.Country,
		HotelName:      t.Hotel.Name,
		HotelStars:     t.Hotel.Stars,
		PriceCents:     t.PriceCents,
		Currency:       t.Currency,
		StartDate:      t.StartDate.UTC(),
		EndDate:        t.EndDate.UTC(),
		Capacity:       t.Capacity,
		SeatsAvailable: t.SeatsAvailable,
		Images:         images,
	}
}

func toReservationResponse(r *domain.Reservation) reservationResponse {
	return reservationResponse{
		ID:              r.ID,
		Code:            r.Code,
		TripID:          r.TripID,
		Travelers:       r.Travelers,
		TotalPriceCents: r.TotalPriceCents,
		Currency:        r.Currency,
		Status:          string(r.Status),
		CreatedAt:       r.CreatedAt.UTC(),
	}
}

func toPagination(page, limit, totalPages int, total int64) paginationMeta {
	return paginationMeta{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}
