package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/travelbooking/booking-api/internal/core/domain"
)

const (
	DefaultStandardTTL = 24 * time.Hour
	DefaultAdminTTL    = 12 * time.Hour

	minSecretLength = 32
)

// ErrWeakSecret is returned when the signing secret is empty or too short.
var ErrWeakSecret = fmt.Errorf("jwt secret must be at least %d bytes", minSecretLength)

// Claims is the JWT payload carried by both standard and admin tokens.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 tokens. It implements both
// ports.TokenIssuer and ports.TokenVerifier.
type TokenManager struct {
	secret      []byte
	standardTTL time.Duration
	adminTTL    time.Duration
	now         func() time.Time
	parser      *jwt.Parser
}

// TokenOption customises a TokenManager.
type TokenOption func(*TokenManager)

// WithTTLs overrides the standard and admin token lifetimes. Zero keeps the default.
func WithTTLs(standard, admin time.Duration) TokenOption {
	return func(m *TokenManager) {
		if standard > 0 {
			m.standardTTL = standard
		}
		if admin > 0 {
			m.adminTTL = admin
		}
	}
}

// WithClock replaces time.Now, used by tests to pin expiry.
func WithClock(now func() time.Time) TokenOption {
	return func(m *TokenManager) { m.now = now }
}

// NewTokenManager returns a TokenManager signing with secret.
func NewTokenManager(secret string, opts ...TokenOption) (*TokenManager, error) {
	if len(secret) < minSecretLength {
		return nil, ErrWeakSecret
	}

	m := &TokenManager{
		secret:      []byte(secret),
		standardTTL: DefaultStandardTTL,
		adminTTL:    DefaultAdminTTL,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(m.now),
	)
	return m, nil
}

// TTL returns the lifetime applied to tokens of kind.
func (m *TokenManager) TTL(kind domain.TokenKind) time.Duration {
	if kind == domain.TokenAdmin {
		return m.adminTTL
	}
	return m.standardTTL
}

// Issue signs a token for identity. The expiry is returned alongside so
// callers can align cookie lifetimes.
func (m *TokenManager) Issue(identity domain.Identity, kind domain.TokenKind) (string, time.Time, error) {
	if identity.SubjectID == "" || identity.Role == "" {
		return "", time.Time{}, domain.ErrInvalidInput
	}

	now := m.now().UTC()
	expiresAt := now.Add(m.TTL(kind))
	claims := Claims{
		Email: identity.Email,
		Role:  string(identity.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.SubjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Verify checks signature, algorithm and expiry and returns the identity the
// token was issued for. Every failure collapses to domain.ErrInvalidToken.
func (m *TokenManager) Verify(token string) (domain.Identity, error) {
	if token == "" {
		return domain.Identity{}, domain.ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := m.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return domain.Identity{}, errors.Join(domain.ErrInvalidToken, err)
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil || claims.Subject == "" {
		return domain.Identity{}, domain.ErrInvalidToken
	}

	return domain.Identity{
		SubjectID: claims.Subject,
		Email:     claims.Email,
		Role:      role,
	}, nil
}
