package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/travelbooking/booking-api/internal/api/middleware"
	"github.com/travelbooking/booking-api/internal/core/domain"
	"github.com/travelbooking/booking-api/internal/core/ports"
)

type stubAuthService struct {
	registerFn   func(ctx context.Context, input ports.RegisterInput) (*domain.User, error)
	loginFn      func(ctx context.Context, email, password string) (*domain.Session, error)
	adminLoginFn func(ctx context.Context, email, password string) (*domain.Session, error)
	forgotFn     func(ctx context.Context, email string) error
	resetFn      func(ctx context.Context, token, newPassword string) error
}

func (s *stubAuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, input)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) AdminLogin(ctx context.Context, email, password string) (*domain.Session, error) {
	return s.adminLoginFn(ctx, email, password)
}

func (s *stubAuthService) ForgotPassword(ctx context.Context, email string) error {
	return s.forgotFn(ctx, email)
}

func (s *stubAuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	return s.resetFn(ctx, token, newPassword)
}

type stubTripService struct {
	listFn   func(ctx context.Context, filter ports.ListTripsFilter) (*ports.ListTripsResult, error)
	getFn    func(ctx context.Context, id string) (*domain.Trip, error)
	createFn func(ctx context.Context, createdBy string, input ports.TripInput) (*domain.Trip, error)
	updateFn func(ctx context.Context, id string, input ports.TripInput) (*domain.Trip, error)
	deleteFn func(ctx context.Context, id string) error
}

func (s *stubTripService) List(ctx context.Context, filter ports.ListTripsFilter) (*ports.ListTripsResult, error) {
	return s.listFn(ctx, filter)
}

func (s *stubTripService) Get(ctx context.Context, id string) (*domain.Trip, error) {
	return s.getFn(ctx, id)
}

func (s *stubTripService) Create(ctx context.Context, createdBy string, input ports.TripInput) (*domain.Trip, error) {
	return s.createFn(ctx, createdBy, input)
}

func (s *stubTripService) Update(ctx context.Context, id string, input ports.TripInput) (*domain.Trip, error) {
	return s.updateFn(ctx, id, input)
}

func (s *stubTripService) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

type stubReservationService struct {
	createFn   func(ctx context.Context, input ports.CreateReservationInput) (*ports.ReservationResult, error)
	listMineFn func(ctx context.Context, userID string) ([]*domain.Reservation, error)
	cancelFn   func(ctx context.Context, id string, caller domain.Identity) (*domain.Reservation, error)
}

func (s *stubReservationService) Create(ctx context.Context, input ports.CreateReservationInput) (*ports.ReservationResult, error) {
	return s.createFn(ctx, input)
}

func (s *stubReservationService) ListMine(ctx context.Context, userID string) ([]*domain.Reservation, error) {
	return s.listMineFn(ctx, userID)
}

func (s *stubReservationService) Cancel(ctx context.Context, id string, caller domain.Identity) (*domain.Reservation, error) {
	return s.cancelFn(ctx, id, caller)
}

type stubAdminService struct {
	dashboardFn  func(ctx context.Context) (*ports.DashboardStats, error)
	listUsersFn  func(ctx context.Context, page, limit int) (*ports.ListUsersResult, error)
	updateRoleFn func(ctx context.Context, actor domain.Identity, id, role string) (*domain.User, error)
}

func (s *stubAdminService) Dashboard(ctx context.Context) (*ports.DashboardStats, error) {
	return s.dashboardFn(ctx)
}

func (s *stubAdminService) ListUsers(ctx context.Context, page, limit int) (*ports.ListUsersResult, error) {
	return s.listUsersFn(ctx, page, limit)
}

func (s *stubAdminService) UpdateUserRole(ctx context.Context, actor domain.Identity, id, role string) (*domain.User, error) {
	return s.updateRoleFn(ctx, actor, id, role)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// newJSONContext builds a context for method/target with a JSON body.
// An empty body sends no payload.
func newJSONContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withIdentity(c echo.Context, role domain.Role) echo.Context {
	middleware.SetIdentity(c, domain.Identity{SubjectID: "user-1", Email: "alice@example.com", Role: role})
	return c
}

func httpCode(err error) int {
	if he, ok := err.(*echo.HTTPError); ok {
		return he.Code
	}
	return 0
}
