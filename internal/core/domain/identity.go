package domain

import (
	"errors"
	"time"
)

// Auth errors surfaced to the transport layer.
var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

// Identity is the verified set of claims extracted from a token.
type Identity struct {
	SubjectID string `json:"sub"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
}

// TokenKind selects the expiry profile used when issuing a token.
type TokenKind int

const (
	TokenStandard TokenKind = iota
	TokenAdmin
)

func (k TokenKind) String() string {
	if k == TokenAdmin {
		return "admin"
	}
	return "standard"
}

// Session is the result of a successful login.
type Session struct {
	User      *User
	Token     string
	Kind      TokenKind
	ExpiresAt time.Time
}
