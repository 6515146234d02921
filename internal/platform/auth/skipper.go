package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths lists URL paths that bypass authentication: infrastructure
// endpoints and the login/registration surface.
var publicPaths = map[string]bool{
	"/health":               true,
	"/health/db":            true,
	"/api/v1/auth/login":    true,
	"/api/v1/auth/register": true,
}

// AuthSkipper returns true for requests whose path should skip authentication.
func AuthSkipper(c echo.Context) bool {
	return publicPaths[c.Path()]
}
