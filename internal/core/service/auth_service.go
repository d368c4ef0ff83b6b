package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/travelbooking/booking-api/internal/api/metrics"
	"github.com/travelbooking/booking-api/internal/core/domain"
	"github.com/travelbooking/booking-api/internal/core/ports"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 72
)

// AuthService implements registration, login and password reset.
type AuthService struct {
	users  ports.CredentialStore
	hasher ports.PasswordHasher
	tokens ports.TokenIssuer
	resets ports.ResetTokenStore
	log    zerolog.Logger

	dummyMu   sync.Mutex
	dummyHash string
}

func NewAuthService(
	users ports.CredentialStore,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	resets ports.ResetTokenStore,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		resets: resets,
		log:    log,
	}
}

func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput) (*domain.User, error) {
	name := strings.TrimSpace(input.Name)
	email := domain.NormalizeEmail(input.Email)
	if name == "" || email == "" || !validPassword(input.Password) {
		return nil, domain.ErrInvalidInput
	}

	hash, err := s.hasher.Hash(ctx, input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Msg("user registered")
	return created, nil
}

// Login authenticates a customer and issues a standard token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	session, err := s.login(ctx, email, password, domain.TokenStandard)
	recordLogin(domain.TokenStandard, err)
	return session, err
}

// AdminLogin authenticates an admin or vendeur and issues an admin token.
// Valid credentials for any other role yield domain.ErrForbidden.
func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (*domain.Session, error) {
	session, err := s.login(ctx, email, password, domain.TokenAdmin)
	recordLogin(domain.TokenAdmin, err)
	return session, err
}

func (s *AuthService) login(ctx context.Context, email, password string, kind domain.TokenKind) (*domain.Session, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		// Burn the same bcrypt time as a real compare so response latency
		// does not reveal whether the account exists.
		_, _ = s.hasher.Verify(ctx, password, s.dummy(ctx))
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		s.log.Debug().Str("user_id", user.ID).Str("kind", kind.String()).Msg("password mismatch")
		return nil, domain.ErrInvalidCredentials
	}

	if kind == domain.TokenAdmin && !user.Role.CanOpenAdminSession() {
		s.log.Warn().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("admin login refused")
		return nil, domain.ErrForbidden
	}

	token, expiresAt, err := s.tokens.Issue(user.Identity(), kind)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Str("kind", kind.String()).Msg("login succeeded")
	return &domain.Session{User: user, Token: token, Kind: kind, ExpiresAt: expiresAt}, nil
}

// ForgotPassword stores a single-use reset token when the email is known.
// Unknown emails succeed silently.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return domain.ErrInvalidInput
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	token := uuid.NewString()
	if err := s.resets.Save(ctx, token, user.ID); err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}

	// Delivery is out of band; the token is logged for operators.
	s.log.Info().Str("user_id", user.ID).Str("reset_token", token).Msg("password reset requested")
	return nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if strings.TrimSpace(token) == "" {
		return domain.ErrInvalidResetToken
	}
	if !validPassword(newPassword) {
		return domain.ErrInvalidInput
	}

	userID, err := s.resets.Consume(ctx, token)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(ctx, newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	s.log.Info().Str("user_id", userID).Msg("password reset")
	return nil
}

// EnsureAdmin makes sure an admin account exists for email. A missing account
// is created with password; an existing one keeps its password and is
// promoted to admin when needed. Calling it again is a no-op.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, email, password string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	name = strings.TrimSpace(name)
	if email == "" || !validPassword(password) {
		return nil, domain.ErrInvalidInput
	}
	if name == "" {
		name = "Administrator"
	}

	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return s.promote(ctx, existing)
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	}

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, domain.ErrUserExists) {
		// Another instance seeded the same account first.
		existing, err := s.users.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		return s.promote(ctx, existing)
	}
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", created.ID).Msg("admin account created")
	return created, nil
}

func (s *AuthService) promote(ctx context.Context, u *domain.User) (*domain.User, error) {
	if u.Role == domain.RoleAdmin {
		return u, nil
	}
	updated, err := s.users.UpdateRole(ctx, u.ID, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", u.ID).Str("previous_role", string(u.Role)).Msg("account promoted to admin")
	return updated, nil
}

// dummy returns a real bcrypt hash produced by the configured hasher. A failed
// attempt is not cached: the next unknown-email login tries again.
func (s *AuthService) dummy(ctx context.Context) string {
	s.dummyMu.Lock()
	defer s.dummyMu.Unlock()

	if s.dummyHash == "" {
		h, err := s.hasher.Hash(context.WithoutCancel(ctx), "dummy-password-for-timing")
		if err != nil {
			s.log.Warn().Err(err).Msg("dummy hash unavailable")
			return ""
		}
		s.dummyHash = h
	}
	return s.dummyHash
}

func validPassword(p string) bool {
	return len(p) >= minPasswordLength && len(p) <= maxPasswordLength
}

func recordLogin(kind domain.TokenKind, err error) {
	result := "success"
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInvalidCredentials):
		result = "invalid_credentials"
	case errors.Is(err, domain.ErrForbidden):
		result = "forbidden"
	default:
		result = "error"
	}
	metrics.LoginAttemptsTotal.WithLabelValues(kind.String(), result).Inc()
}
