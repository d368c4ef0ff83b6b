package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/travelbooking/booking-api/internal/api/middleware"
	"github.com/travelbooking/booking-api/internal/core/domain"
)

// ctxIdentity returns the identity attached by the access guard. Handlers on
// public routes never call it; a missing identity on a protected route means
// the guard did not run, which is reported as unauthenticated.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.Identity{}, domain.ErrUnauthenticated
	}
	return id, nil
}
