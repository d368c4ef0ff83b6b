package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/travelbooking/booking-api/internal/api/metrics"
	"github.com/travelbooking/booking-api/internal/core/domain"
)

// RBAC enforces the role set recorded for the matched route. It must run
// after Auth.
func RBAC(routes *RouteTable) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			policy := routes.forContext(c)
			if policy.Public {
				return next(c)
			}

			identity, ok := IdentityFrom(c)
			if !ok {
				metrics.GuardDenialsTotal.WithLabelValues("role", "no_identity").Inc()
				return domain.ErrUnauthenticated
			}
			if !policy.allows(identity.Role) {
				metrics.GuardDenialsTotal.WithLabelValues("role", "role").Inc()
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
