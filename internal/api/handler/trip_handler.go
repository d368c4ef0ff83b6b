package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/travelbooking/booking-api/internal/core/ports"
	"github.com/travelbooking/booking-api/internal/core/service"
)

// TripHandler serves the public catalog and the admin trip management routes.
type TripHandler struct {
	service ports.TripService
}

func NewTripHandler(service ports.TripService) *TripHandler {
	return &TripHandler{service: service}
}

// List handles GET /v1/trips.
//
// @Summary      List trips
// @Tags         trips
// @Produce      json
// @Param        city       query     string  false  "Destination city"
// @Param        country    query     string  false  "Destination country"
// @Param        max_price  query     string  false  "Maximum price, e.g. 1500.00"
// @Param        q          query     string  false  "Search in title"
// @Param        page       query     int     false  "Page number (default: 1)"
// @Param        limit      query     int     false  "Items per page (default: 20, max: 100)"
// @Success      200        {object}  listTripsResponse
// @Failure      400        {object}  errorResponse
// @Router       /v1/trips [get]
func (h *TripHandler) List(c echo.Context) error {
	var q listTripsQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid query parameters")
	}

	var maxPrice int64
	if strings.TrimSpace(q.MaxPrice) != "" {
		cents, err := service.ParsePriceCents(q.MaxPrice)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "max_price must be a decimal amount")
		}
		maxPrice = cents
	}

	res, err := h.service.List(c.Request().Context(), ports.ListTripsFilter{
		City:          q.City,
		Country:       q.Country,
		MaxPriceCents: maxPrice,
		Search:        q.Search,
		Page:          q.Page,
		Limit:         q.Limit,
	})
	if err != nil {
		return err
	}

	data := make([]tripResponse, 0, len(res.Items))
	for _, t := range res.Items {
		data = append(data, toTripResponse(t))
	}
	return c.JSON(http.StatusOK, listTripsResponse{
		Data:       data,
		Pagination: toPagination(res.Page, res.Limit, res.TotalPages, res.Total),
	})
}

// Get handles GET /v1/trips/:id.
//
// @Summary      Get a trip
// @Tags         trips
// @Produce      json
// @Param        id   path      string  true  "Trip ID"
// @Success      200  {object}  tripResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/trips/{id} [get]
func (h *TripHandler) Get(c echo.Context) error {
	trip, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTripResponse(trip))
}

// Create handles POST /admin/trips.
//
// @Summary      Create a trip
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     AdminCookieAuth
// @Param        body  body      tripRequest  true  "Trip"
// @Success      201   {object}  tripResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /admin/trips [post]
func (h *TripHandler) Create(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req tripRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	trip, err := h.service.Create(c.Request().Context(), id.SubjectID, toTripInput(req))
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderLocation, "/v1/trips/"+trip.ID)
	return c.JSON(http.StatusCreated, toTripResponse(trip))
}

// Update handles PUT /admin/trips/:id.
//
// @Summary      Update a trip
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     AdminCookieAuth
// @Param        id    path      string       true  "Trip ID"
// @Param        body  body      tripRequest  true  "Trip"
// @Success      200   {object}  tripResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /admin/trips/{id} [put]
func (h *TripHandler) Update(c echo.Context) error {
	var req tripRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	trip, err := h.service.Update(c.Request().Context(), c.Param("id"), toTripInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTripResponse(trip))
}

// Delete handles DELETE /admin/trips/:id.
//
// @Summary      Delete a trip
// @Tags         admin
// @Security     AdminCookieAuth
// @Param        id   path  string  true  "Trip ID"
// @Success      204
// @Failure      404  {object}  errorResponse
// @Router       /admin/trips/{id} [delete]
func (h *TripHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
