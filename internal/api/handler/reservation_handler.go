package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/travelbooking/booking-api/internal/core/ports"
)

const headerIdempotencyKey = "Idempotency-Key"

// ReservationHandler handles HTTP requests for bookings.
type ReservationHandler struct {
	service ports.ReservationService
}

func NewReservationHandler(service ports.ReservationService) *ReservationHandler {
	return &ReservationHandler{service: service}
}

// Create handles POST /v1/reservations.
// A repeated Idempotency-Key returns the original reservation with 200.
//
// @Summary      Book a trip
// @Tags         reservations
// @Accept       json
// @Produce      json
// @Security     CookieAuth
// @Param        Idempotency-Key  header    string                    false  "Client-generated key for safe retries"
// @Param        body             body      createReservationRequest  true   "Reservation"
// @Success      201              {object}  reservationResponse
// @Success      200              {object}  reservationResponse
// @Failure      401              {object}  errorResponse
// @Failure      403              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Failure      422              {object}  errorResponse
// @Router       /v1/reservations [post]
func (h *ReservationHandler) Create(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	res, err := h.service.Create(c.Request().Context(), ports.CreateReservationInput{
		TripID:         req.TripID,
		Travelers:      req.Travelers,
		UserID:         id.SubjectID,
		IdempotencyKey: c.Request().Header.Get(headerIdempotencyKey),
	})
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if res.AlreadyExisted {
		status = http.StatusOK
	}
	return c.JSON(status, toReservationResponse(res.Reservation))
}

// ListMine handles GET /v1/reservations.
//
// @Summary      List my reservations
// @Tags         reservations
// @Produce      json
// @Security     CookieAuth
// @Success      200  {object}  listReservationsResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/reservations [get]
func (h *ReservationHandler) ListMine(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	items, err := h.service.ListMine(c.Request().Context(), id.SubjectID)
	if err != nil {
		return err
	}

	data := make([]reservationResponse, 0, len(items))
	for _, r := range items {
		data = append(data, toReservationResponse(r))
	}
	return c.JSON(http.StatusOK, listReservationsResponse{Data: data})
}

// Cancel handles DELETE /v1/reservations/:id.
//
// @Summary      Cancel a reservation
// @Tags         reservations
// @Produce      json
// @Security     CookieAuth
// @Param        id   path      string  true  "Reservation ID"
// @Success      200  {object}  reservationResponse
// @Failure      401  {object}  errorResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Failure      409  {object}  errorResponse
// @Router       /v1/reservations/{id} [delete]
func (h *ReservationHandler) Cancel(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	r, err := h.service.Cancel(c.Request().Context(), c.Param("id"), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}
