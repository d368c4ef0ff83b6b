package middleware

import (
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/travelbooking/booking-api/internal/api/metrics"
	"github.com/travelbooking/booking-api/internal/api/session"
	"github.com/travelbooking/booking-api/internal/core/domain"
	"github.com/travelbooking/booking-api/internal/core/ports"
)

const identityKey = "identity"

// Auth is the access guard. Public routes pass untouched; every other route
// needs a valid token from the session cookies, whose identity is attached
// to the context for the role guard and handlers.
func Auth(routes *RouteTable, verifier ports.TokenVerifier, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			policy := routes.forContext(c)
			if policy.Public {
				return next(c)
			}

			token := extractToken(c, policy)
			if token == "" {
				metrics.GuardDenialsTotal.WithLabelValues("access", "missing_token").Inc()
				return domain.ErrUnauthenticated
			}

			identity, err := verifier.Verify(token)
			if err != nil {
				metrics.GuardDenialsTotal.WithLabelValues("access", "invalid_token").Inc()
				log.Debug().Err(err).Str("path", c.Path()).Msg("token rejected")
				return errors.Join(domain.ErrUnauthenticated, err)
			}

			SetIdentity(c, identity)
			return next(c)
		}
	}
}

// extractToken reads the user cookie, falling back to the admin cookie.
// Admin-session routes only ever read the admin cookie.
func extractToken(c echo.Context, policy Policy) string {
	if policy.AdminSession {
		return session.Token(c, session.AdminCookie)
	}
	if tok := session.Token(c, session.UserCookie); tok != "" {
		return tok
	}
	return session.Token(c, session.AdminCookie)
}

// SetIdentity attaches a verified identity to the request context.
func SetIdentity(c echo.Context, id domain.Identity) {
	c.Set(identityKey, id)
}

// IdentityFrom returns the identity attached by Auth, if any.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	id, ok := c.Get(identityKey).(domain.Identity)
	return id, ok && id.SubjectID != ""
}
