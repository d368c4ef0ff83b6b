package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required,max=120"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"    validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type registerResponse struct {
	User userResponse `json:"user"`
}

type loginResponse struct {
	User      userResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type identityResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// --- Trips ---

type tripRequest struct {
	Title       string    `json:"title"       validate:"required,max=200"`
	Description string    `json:"description" validate:"max=5000"`
	City        string    `json:"city"        validate:"required"`
	Country     string    `json:"country"     validate:"required"`
	HotelName   string    `json:"hotel_name"`
	HotelStars  int       `json:"hotel_stars" validate:"min=0,max=5"`
	Price       string    `json:"price"       validate:"required,numeric_price"`
	Currency    string    `json:"currency"    validate:"omitempty,len=3"`
	StartDate   time.Time `json:"start_date"  validate:"required"`
	EndDate     time.Time `json:"end_date"    validate:"required,gtfield=StartDate"`
	Capacity    int       `json:"capacity"    validate:"required,min=1"`
	Images      []string  `json:"images"      validate:"omitempty,dive,url"`
}

type listTripsQuery struct {
	City     string `query:"city"`
	Country  string `query:"country"`
	MaxPrice string `query:"max_price"`
	Search   string `query:"q"`
	Page     int    `query:"page"`
	Limit    int    `query:"limit"`
}

type paginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type tripResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	City           string    `json:"city"`
	Country        string    `json:"country"`
	HotelName      string    `json:"hotel_name"`
	HotelStars     int       `json:"hotel_stars"`
	PriceCents     int64     `json:"price_cents"`
	Currency       string    `json:"currency"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	Capacity       int       `json:"capacity"`
	SeatsAvailable int       `json:"seats_available"`
	Images         []string  `json:"images"`
}

type listTripsResponse struct {
	Data       []tripResponse `json:"data"`
	Pagination paginationMeta `json:"pagination"`
}

// --- Reservations ---

type createReservationRequest struct {
	TripID    string `json:"trip_id"   validate:"required"`
	Travelers int    `json:"travelers" validate:"required,min=1,max=20"`
}

type reservationResponse struct {
	ID              string    `json:"id"`
	Code            string    `json:"code"`
	TripID          string    `json:"trip_id"`
	Travelers       int       `json:"travelers"`
	TotalPriceCents int64     `json:"total_price_cents"`
	Currency        string    `json:"currency"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
}

type listReservationsResponse struct {
	Data []reservationResponse `json:"data"`
}

// --- Admin ---

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin vendeur"`
}

type listUsersResponse struct {
	Data       []userResponse `json:"data"`
	Pagination paginationMeta `json:"pagination"`
}
