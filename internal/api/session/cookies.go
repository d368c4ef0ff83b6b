// Package session owns the auth cookies shared by the guards and the auth
// handlers.
package session

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/travelbooking/booking-api/internal/core/domain"
)

const (
	UserCookie  = "auth_token"
	AdminCookie = "admin_auth_token"

	// MaxAge is the cookie lifetime in seconds for both session kinds.
	MaxAge = 24 * 60 * 60
)

// CookieName returns the cookie that carries tokens of kind.
func CookieName(kind domain.TokenKind) string {
	if kind == domain.TokenAdmin {
		return AdminCookie
	}
	return UserCookie
}

// Writer sets and clears session cookies. Secure is enabled in production.
type Writer struct {
	Secure bool
}

// Set writes the session cookie for kind.
func (w Writer) Set(c echo.Context, kind domain.TokenKind, token string) {
	c.SetCookie(w.cookie(CookieName(kind), token, MaxAge))
}

// Clear expires both session cookies.
func (w Writer) Clear(c echo.Context) {
	c.SetCookie(w.cookie(UserCookie, "", -1))
	c.SetCookie(w.cookie(AdminCookie, "", -1))
}

func (w Writer) cookie(name, value string, maxAge int) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   w.Secure,
		SameSite: http.SameSiteStrictMode,
	}
	if maxAge < 0 {
		ck.Expires = time.Unix(0, 0)
	}
	return ck
}

// Token returns the value of the named cookie, or "" when absent.
func Token(c echo.Context, name string) string {
	ck, err := c.Cookie(name)
	if err != nil {
		return ""
	}
	return ck.Value
}
