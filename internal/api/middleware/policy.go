package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/travelbooking/booking-api/internal/core/domain"
)

// Policy is the access metadata of one route.
type Policy struct {
	// Public routes skip both guards.
	Public bool
	// AdminSession routes only accept the admin session cookie.
	AdminSession bool
	// Roles restricts access to the listed roles; empty means any role.
	Roles []domain.Role
}

// Common policies.
var (
	PublicPolicy        = Policy{Public: true}
	AuthenticatedPolicy = Policy{}
)

// RequireRoles returns an authenticated policy limited to roles.
func RequireRoles(roles ...domain.Role) Policy {
	return Policy{Roles: roles}
}

// AdminPolicy returns a policy that needs the admin cookie and one of roles.
func AdminPolicy(roles ...domain.Role) Policy {
	return Policy{AdminSession: true, Roles: roles}
}

// RouteTable maps "METHOD /path" route identifiers to their Policy.
// Routes without an entry get the authenticated, any-role default.
// It is populated during router construction and read-only afterwards.
type RouteTable struct {
	routes map[string]Policy
}

func NewRouteTable() *RouteTable {
	return &RouteTable{routes: make(map[string]Policy)}
}

// RouteKey builds the identifier for method and an echo path pattern.
func RouteKey(method, path string) string {
	return method + " " + path
}

func (t *RouteTable) Set(method, path string, p Policy) {
	t.routes[RouteKey(method, path)] = p
}

func (t *RouteTable) Lookup(method, path string) Policy {
	if p, ok := t.routes[RouteKey(method, path)]; ok {
		return p
	}
	return AuthenticatedPolicy
}

// Router is satisfied by both *echo.Echo and *echo.Group.
type Router interface {
	Add(method, path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// Register adds a route to r and records its policy under the full path.
func (t *RouteTable) Register(r Router, method, path string, p Policy, h echo.HandlerFunc) {
	route := r.Add(method, path, h)
	t.Set(method, route.Path, p)
}

// forContext returns the policy of the route matched for c.
func (t *RouteTable) forContext(c echo.Context) Policy {
	return t.Lookup(c.Request().Method, c.Path())
}

func (p Policy) allows(role domain.Role) bool {
	if len(p.Roles) == 0 {
		return true
	}
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}
