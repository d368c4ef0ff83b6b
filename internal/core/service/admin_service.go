package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/travelbooking/booking-api/internal/core/domain"
	"github.com/travelbooking/booking-api/internal/core/ports"
)

type adminService struct {
	users        ports.CredentialStore
	trips        ports.TripRepository
	reservations ports.ReservationRepository
	log          zerolog.Logger
}

// NewAdminService returns an AdminService implementation.
func NewAdminService(
	users ports.CredentialStore,
	trips ports.TripRepository,
	reservations ports.ReservationRepository,
	log zerolog.Logger,
) ports.AdminService {
	return &adminService{users: users, trips: trips, reservations: reservations, log: log}
}

func (s *adminService) Dashboard(ctx context.Context) (*ports.DashboardStats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	trips, err := s.trips.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count trips: %w", err)
	}
	reservations, err := s.reservations.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count reservations: %w", err)
	}
	return &ports.DashboardStats{Users: users, Trips: trips, Reservations: reservations}, nil
}

func (s *adminService) ListUsers(ctx context.Context, page, limit int) (*ports.ListUsersResult, error) {
	page, limit = normalizePage(page, limit)

	items, total, err := s.users.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	return &ports.ListUsersResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}

// UpdateUserRole promotes or demotes an account. An admin cannot remove their
// own admin role.
func (s *adminService) UpdateUserRole(ctx context.Context, actor domain.Identity, id, role string) (*domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrUserNotFound
	}
	r, err := domain.ParseRole(role)
	if err != nil {
		return nil, domain.ErrInvalidInput
	}
	if id == actor.SubjectID && r != domain.RoleAdmin {
		return nil, domain.ErrInvalidInput
	}

	updated, err := s.users.UpdateRole(ctx, id, r)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user_id", updated.ID).
		Str("role", string(updated.Role)).
		Str("changed_by", actor.SubjectID).
		Msg("user role updated")
	return updated, nil
}
