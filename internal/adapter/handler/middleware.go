package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// UserIdentity resolves the calling user from the X-User-ID header set by
// the authenticating edge proxy and stores it on the request context.
// This service trusts the header; it is never exposed directly.
func UserIdentity() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := c.Request().Header.Get("X-User-ID")
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"error":   "unauthorized",
					"message": "missing X-User-ID header",
				})
			}
			userID, err := uuid.Parse(raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"error":   "unauthorized",
					"message": "X-User-ID must be a valid UUID",
				})
			}
			c.Set("user_id", userID)
			return next(c)
		}
	}
}
