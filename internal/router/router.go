// Package router wires routes to handlers and applies group middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/chills-dance/camp-api/internal/auth"
	"github.com/chills-dance/camp-api/internal/handler"
	"github.com/chills-dance/camp-api/internal/middleware"
	"github.com/chills-dance/camp-api/internal/realtime"
)

// Register mounts every route. The auth group carries the rate limiter; the
// protected group carries bearer-token auth. The WebSocket endpoint does its
// own handshake authentication.
func Register(
	e *echo.Echo,
	issuer *auth.Issuer,
	authH *handler.AuthHandler,
	classH *handler.ClassHandler,
	teacherH *handler.TeacherHandler,
	ws *realtime.Handler,
	limiter echo.MiddlewareFunc,
) {
	e.GET("/healthz", handler.Health)

	// Public auth endpoints, rate-limited per client IP.
	authGroup := e.Group("/api/auth", limiter)
	authGroup.POST("/register", authH.Register)
	authGroup.POST("/login", authH.Login)
	authGroup.POST("/refresh", authH.Refresh)

	// Auth endpoints that need an access token.
	authed := e.Group("/api/auth", middleware.JWTAuth(issuer))
	authed.POST("/logout", authH.Logout)
	authed.POST("/change-password", authH.ChangePassword)
	authed.GET("/me", authH.Me)

	// Public camp data.
	e.GET("/api/classes", classH.List)
	e.GET("/api/classes/:id", classH.Get)
	e.GET("/api/teachers", teacherH.List)

	// Member actions.
	member := e.Group("/api", middleware.JWTAuth(issuer))
	member.POST("/classes/:id/rsvp", classH.RSVP)
	member.GET("/rsvps", classH.MyRSVPs)

	// Realtime gateway; the token travels as a query parameter.
	e.GET("/ws", ws.Serve)
}
