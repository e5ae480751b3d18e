package echoapi

import (
	"github.com/labstack/echo/v4"
)

// adminMiddleware restricts a route to admin users.
func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if contextIsAdmin(ctx) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}
