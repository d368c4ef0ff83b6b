package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/travelbooking/booking-api/docs"
	"github.com/travelbooking/booking-api/internal/api/handler"
	"github.com/travelbooking/booking-api/internal/api/middleware"
	"github.com/travelbooking/booking-api/internal/api/session"
	"github.com/travelbooking/booking-api/internal/core/domain"
	"github.com/travelbooking/booking-api/internal/core/ports"
)

// Dependencies are the services and collaborators the HTTP layer needs.
type Dependencies struct {
	Auth         ports.AuthService
	Trips        ports.TripService
	Reservations ports.ReservationService
	Admin        ports.AdminService
	Tokens       ports.TokenVerifier
	Cookies      session.Writer
	// Readiness checks run by GET /health/ready, keyed by dependency name.
	Readiness    map[string]handler.DependencyCheck
	// Registerer receives the HTTP metrics; nil means the default registry.
	Registerer   prometheus.Registerer
	Log          zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
// Every route is recorded in a RouteTable together with its access policy,
// which both guards read for the matched route.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	routes := middleware.NewRouteTable()

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "booking",
		Registerer: deps.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))
	// The request logger renders errors itself, so the metrics middleware
	// above sees the final status code.
	e.Use(requestLogger(deps.Log))
	e.Use(middleware.Auth(routes, deps.Tokens, deps.Log))
	e.Use(middleware.RBAC(routes))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth, deps.Cookies)
	tripHandler := handler.NewTripHandler(deps.Trips)
	reservationHandler := handler.NewReservationHandler(deps.Reservations)
	adminHandler := handler.NewAdminHandler(deps.Admin)
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Readiness)

	public := middleware.PublicPolicy

	// --- Operational endpoints (no auth required) ---
	routes.Register(e, http.MethodGet, "/health", public, healthHandler.Liveness)
	routes.Register(e, http.MethodGet, "/health/ready", public, readinessHandler.Readiness)
	routes.Register(e, http.MethodGet, "/metrics", public, echoprometheus.NewHandler())
	routes.Register(e, http.MethodGet, "/swagger/*", public, echoSwagger.WrapHandler)

	// --- Auth ---
	auth := e.Group("/auth")
	routes.Register(auth, http.MethodPost, "/register", public, authHandler.Register)
	routes.Register(auth, http.MethodPost, "/login", public, authHandler.Login)
	routes.Register(auth, http.MethodPost, "/admin/login", public, authHandler.AdminLogin)
	routes.Register(auth, http.MethodPost, "/forgot-password", public, authHandler.ForgotPassword)
	routes.Register(auth, http.MethodPost, "/reset-password", public, authHandler.ResetPassword)
	routes.Register(auth, http.MethodPost, "/logout", public, authHandler.Logout)
	routes.Register(auth, http.MethodGet, "/me", middleware.AuthenticatedPolicy, authHandler.Me)

	// --- Customer API ---
	v1 := e.Group("/v1")
	routes.Register(v1, http.MethodGet, "/trips", public, tripHandler.List)
	routes.Register(v1, http.MethodGet, "/trips/:id", public, tripHandler.Get)
	routes.Register(v1, http.MethodPost, "/reservations",
		middleware.RequireRoles(domain.RoleUser, domain.RoleAdmin), reservationHandler.Create)
	routes.Register(v1, http.MethodGet, "/reservations", middleware.AuthenticatedPolicy, reservationHandler.ListMine)
	routes.Register(v1, http.MethodDelete, "/reservations/:id", middleware.AuthenticatedPolicy, reservationHandler.Cancel)

	// --- Back office ---
	adminOnly := middleware.AdminPolicy(domain.RoleAdmin)
	staff := middleware.AdminPolicy(domain.RoleAdmin, domain.RoleVendeur)

	admin := e.Group("/admin")
	routes.Register(admin, http.MethodGet, "/dashboard", adminOnly, adminHandler.Dashboard)
	routes.Register(admin, http.MethodGet, "/users", adminOnly, adminHandler.ListUsers)
	routes.Register(admin, http.MethodPatch, "/users/:id/role", adminOnly, adminHandler.UpdateUserRole)
	routes.Register(admin, http.MethodPost, "/trips", staff, tripHandler.Create)
	routes.Register(admin, http.MethodPut, "/trips/:id", staff, tripHandler.Update)
	routes.Register(admin, http.MethodDelete, "/trips/:id", adminOnly, tripHandler.Delete)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURIPath:   true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("path", v.URIPath).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
