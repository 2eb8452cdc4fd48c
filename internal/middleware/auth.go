package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
)

const apiKeyHeader = "X-API-Key"

// RequireAPIKey returns a middleware that checks the pre-shared API key on
// every mutating commerce endpoint. A server without a configured key
// refuses the request outright rather than running open.
func RequireAPIKey(expected string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if expected == "" {
				return echo.NewHTTPError(http.StatusInternalServerError, "API_KEY not configured")
			}

			provided := c.Request().Header.Get(apiKeyHeader)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or missing API key")
			}

			return next(c)
		}
	}
}
