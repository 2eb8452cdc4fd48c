package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// JSONErrorHandler renders every error as a JSON body of the shape
// {"detail": "..."}, matching what API clients expect from the rest of the
// surface.
func JSONErrorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	detail := "Internal server error"

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		code = httpErr.Code
		if msg, ok := httpErr.Message.(string); ok && msg != "" {
			detail = msg
		} else {
			detail = http.StatusText(code)
		}
	}

	c.Logger().Error(err)

	if c.Response().Committed {
		return
	}
	if writeErr := c.JSON(code, map[string]string{"detail": detail}); writeErr != nil {
		c.Logger().Error(writeErr)
	}
}
