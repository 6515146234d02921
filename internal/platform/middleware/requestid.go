// Package middleware holds the HTTP middleware chain: request IDs, request
// logging, panic recovery, rate limiting, body limits, timeouts, and security
// headers.
package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestIDHeader is the header used to propagate request IDs.
const RequestIDHeader = "X-Request-ID"

// RequestID assigns each request an ID, reusing the X-Request-ID header when
// the client supplies one. The ID is stored under "request_id" on the echo
// context and echoed back in the response.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(RequestIDHeader)
			if rid == "" {
				rid = uuid.New().String()
			}
			c.Set("request_id", rid)
			c.Response().Header().Set(RequestIDHeader, rid)
			return next(c)
		}
	}
}
