// Package middleware provides shared request processing: staff identity
// extraction, role gating and rate limiting.
package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/elgransazon/pos-backend/internal/scope"
)

// Header names set by the gateway in front of this service. Authentication
// itself happens upstream; this service trusts the asserted identity.
const (
	HeaderStaffName = "X-Staff-Name"
	HeaderStaffRole = "X-Staff-Role"
)

// Identity reads the staff name and role from the request headers and stores
// them in the Echo context under "staff" and "role". Requests without a valid
// identity are rejected with 401.
func Identity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			name := c.Request().Header.Get(HeaderStaffName)
			role := scope.Role(c.Request().Header.Get(HeaderStaffRole))
			if name == "" || !role.Valid() {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing or invalid staff identity"})
			}
			c.Set("staff", name)
			c.Set("role", role)
			return next(c)
		}
	}
}

// Staff returns the staff name stored by Identity, or "unknown".
func Staff(c echo.Context) string {
	if v, ok := c.Get("staff").(string); ok && v != "" {
		return v
	}
	return "unknown"
}

// CurrentRole returns the role stored by Identity.
func CurrentRole(c echo.Context) scope.Role {
	if v, ok := c.Get("role").(scope.Role); ok {
		return v
	}
	return ""
}

// Require gates a route behind capabilities from the scope matrix. Holding
// any one of them is enough.
func Require(caps ...scope.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := CurrentRole(c)
			for _, cap := range caps {
				if scope.Allows(role, cap) {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
	}
}
