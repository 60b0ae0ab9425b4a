package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/chills-dance/camp-api/internal/auth"
	"github.com/chills-dance/camp-api/internal/httpx"
	"github.com/chills-dance/camp-api/internal/middleware"
)

const refreshCookieName = "refreshToken"

// AuthHandler adapts HTTP requests to the session manager. The refresh token
// travels as an HTTP-only, SameSite=Strict cookie (Secure in prod); the
// access token is returned in the body.
type AuthHandler struct {
	Svc        *auth.Service
	RefreshTTL time.Duration
	SecureCook bool
}

func NewAuthHandler(svc *auth.Service, refreshTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{Svc: svc, RefreshTTL: refreshTTL, SecureCook: secureCookies}
}

type registerReq struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordReq struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(c, http.StatusBadRequest, "Invalid request body", "VALIDATION_ERROR")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Svc.Register(ctx, auth.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	})
	if err != nil {
		return httpx.FailErr(c, err)
	}
	h.setRefreshCookie(c, res.RefreshToken)
	return httpx.OK(c, http.StatusCreated, echo.Map{
		"user":        res.User,
		"accessToken": res.AccessToken,
	}, "User registered successfully")
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(c, http.StatusBadRequest, "Invalid request body", "VALIDATION_ERROR")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Svc.Login(ctx, req.Email, req.Password, c.RealIP())
	if err != nil {
		return httpx.FailErr(c, err)
	}
	h.setRefreshCookie(c, res.RefreshToken)
	return httpx.OK(c, http.StatusOK, echo.Map{
		"user":        res.User,
		"accessToken": res.AccessToken,
	}, "Login successful")
}

// Refresh handles POST /api/auth/refresh. The refresh token arrives via
// cookie or, as a fallback for non-browser clients, the request body.
func (h *AuthHandler) Refresh(c echo.Context) error {
	token := ""
	if cookie, err := c.Cookie(refreshCookieName); err == nil {
		token = cookie.Value
	}
	if token == "" {
		var req refreshReq
		_ = c.Bind(&req)
		token = req.RefreshToken
	}
	if token == "" {
		return httpx.Fail(c, http.StatusUnauthorized, "Refresh token not provided", "UNAUTHORIZED")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	pair, err := h.Svc.Refresh(ctx, token)
	if err != nil {
		return httpx.FailErr(c, err)
	}
	h.setRefreshCookie(c, pair.RefreshToken)
	return httpx.OK(c, http.StatusOK, echo.Map{"accessToken": pair.AccessToken}, "Token refreshed")
}

// Logout handles POST /api/auth/logout (authenticated). Revokes every
// session for the user, not just the presenting device.
func (h *AuthHandler) Logout(c echo.Context) error {
	userID, _ := c.Get(middleware.CtxUserID).(string)
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Svc.Logout(ctx, userID, c.RealIP()); err != nil {
		return httpx.FailErr(c, err)
	}
	h.clearRefreshCookie(c)
	return httpx.OK(c, http.StatusOK, nil, "Logged out successfully")
}

// ChangePassword handles POST /api/auth/change-password (authenticated).
// All refresh tokens are revoked; the client must log in again.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(c, http.StatusBadRequest, "Invalid request body", "VALIDATION_ERROR")
	}
	userID, _ := c.Get(middleware.CtxUserID).(string)
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Svc.ChangePassword(ctx, userID, req.CurrentPassword, req.NewPassword, c.RealIP()); err != nil {
		return httpx.FailErr(c, err)
	}
	h.clearRefreshCookie(c)
	return httpx.OK(c, http.StatusOK, nil, "Password changed successfully, please log in again")
}

// Me handles GET /api/auth/me (authenticated).
func (h *AuthHandler) Me(c echo.Context) error {
	return httpx.OK(c, http.StatusOK, echo.Map{
		"userId": c.Get(middleware.CtxUserID),
		"email":  c.Get(middleware.CtxEmail),
		"role":   c.Get(middleware.CtxRole),
	}, "")
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/api/auth",
		MaxAge:   int(h.RefreshTTL / time.Second),
		HttpOnly: true,
		Secure:   h.SecureCook,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/api/auth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCook,
		SameSite: http.SameSiteStrictMode,
	})
}

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}
