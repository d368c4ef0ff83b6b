package ports

import (
	"context"

	"github.com/travelbooking/booking-api/internal/core/domain"
)

// DashboardStats summarises catalog and account volumes for administrators.
type DashboardStats struct {
	Users        int64 `json:"users"`
	Trips        int64 `json:"trips"`
	Reservations int64 `json:"reservations"`
}

// ListUsersResult is a page of accounts.
type ListUsersResult struct {
	Items      []*domain.User
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

type AdminService interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)
	ListUsers(ctx context.Context, page, limit int) (*ListUsersResult, error)
	// UpdateUserRole assigns role to the account id on behalf of actor.
	UpdateUserRole(ctx context.Context, actor domain.Identity, id, role string) (*domain.User, error)
}
