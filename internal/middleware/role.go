package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chills-dance/camp-api/internal/httpx"
)

// RequireRole aborts with 403 unless the authenticated caller holds one of
// the given roles. Assumes JWTAuth ran earlier in the chain.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get(CtxRole).(string)
			if !ok || !allowed[role] {
				return httpx.Fail(c, http.StatusForbidden, "Insufficient role", "FORBIDDEN")
			}
			return next(c)
		}
	}
}
