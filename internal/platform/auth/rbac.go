package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Roles known to the API. Admin passes every role check.
const (
	RoleAdmin         = "admin"
	RoleEstablishment = "establishment"
	RoleDoctor        = "doctor"
	RolePatient       = "patient"
	RoleInsurer       = "insurer"
)

// RequireRole returns middleware that admits users holding at least one of
// the given roles. Admins always pass.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := RoleFromContext(c.Request().Context())
			if role == RoleAdmin {
				return next(c)
			}
			for _, required := range roles {
				if role == required {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}
