package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// AuthMiddleware creates an Echo middleware that validates the master key
// on the routes it wraps. If masterKey is empty, no authentication is
// required.
func AuthMiddleware(masterKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// If no master key is configured, allow all requests
			if masterKey == "" {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, map[string]any{
					"detail": "missing authorization header",
				})
			}

			const prefix = "Bearer "
			if !strings.HasPrefix(authHeader, prefix) {
				return c.JSON(http.StatusUnauthorized, map[string]any{
					"detail": "invalid authorization header format, expected 'Bearer <token>'",
				})
			}

			token := strings.TrimPrefix(authHeader, prefix)
			if token != masterKey {
				return c.JSON(http.StatusUnauthorized, map[string]any{
					"detail": "invalid master key",
				})
			}

			return next(c)
		}
	}
}
