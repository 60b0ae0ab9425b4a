package middleware // middleware provides shared request processing for handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/chills-dance/camp-api/internal/auth"
	"github.com/chills-dance/camp-api/internal/httpx"
)

// Context keys set by JWTAuth for downstream handlers.
const (
	CtxUserID = "user_id"
	CtxEmail  = "email"
	CtxRole   = "role"
)

// JWTAuth validates a Bearer access token and injects the caller's identity
// into the request context. Invalid and expired tokens get distinct messages
// so clients can silently refresh on expiry but re-login on anything else.
func JWTAuth(issuer *auth.Issuer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return httpx.Fail(c, http.StatusUnauthorized, "Missing bearer token", "UNAUTHORIZED")
			}
			claims, err := issuer.VerifyAccess(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					return httpx.Fail(c, http.StatusUnauthorized, "Token expired", "TOKEN_EXPIRED")
				}
				return httpx.Fail(c, http.StatusUnauthorized, "Invalid token", "INVALID_TOKEN")
			}
			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxEmail, claims.Email)
			c.Set(CtxRole, claims.Role)
			return next(c)
		}
	}
}
