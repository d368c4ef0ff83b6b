package domain

import (
	"errors"
	"strings"
	"time"
)

// Role determines which operations a caller may perform.
type Role string

const (
	RoleUser    Role = "user"
	RoleAdmin   Role = "admin"
	RoleVendeur Role = "vendeur"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidInput = errors.New("invalid input")

// ParseRole converts a stored or claimed role string into a Role.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleUser, RoleAdmin, RoleVendeur:
		return r, nil
	}
	return "", errors.New("unknown role: " + s)
}

// CanOpenAdminSession reports whether the role may hold an admin session cookie.
func (r Role) CanOpenAdminSession() bool {
	return r == RoleAdmin || r == RoleVendeur
}

// User is the persisted credential record of an account.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity returns the claims subset that is embedded into tokens.
func (u *User) Identity() Identity {
	return Identity{SubjectID: u.ID, Email: u.Email, Role: u.Role}
}

// NormalizeEmail lower-cases and trims an email address so lookups are stable.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
