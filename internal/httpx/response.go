// Package httpx provides the uniform response envelope shared by every
// endpoint and the mapping from domain errors to HTTP responses.
package httpx

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/chills-dance/camp-api/internal/auth"
)

// Response is the envelope carried by every endpoint. Errors additionally
// carry a machine-readable code.
type Response struct {
	Success   bool   `json:"success"`
	Data      any    `json:"data,omitempty"`
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	Code      string `json:"code,omitempty"`
	Timestamp string `json:"timestamp"`
}

// OK writes a success envelope.
func OK(c echo.Context, status int, data any, message string) error {
	return c.JSON(status, Response{
		Success:   true,
		Data:      data,
		Message:   message,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Fail writes an error envelope.
func Fail(c echo.Context, status int, msg, code string) error {
	return c.JSON(status, Response{
		Success:   false,
		Error:     msg,
		Code:      code,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// FailErr maps a domain error to its HTTP status and code. Unclassified
// errors become 500 with a generic message so store details never leak.
func FailErr(c echo.Context, err error) error {
	var (
		ve *auth.ValidationError
		ce *auth.ConflictError
		ue *auth.UnauthorizedError
		fe *auth.ForbiddenError
	)
	switch {
	case errors.As(err, &ve):
		return Fail(c, http.StatusBadRequest, ve.Message, "VALIDATION_ERROR")
	case errors.As(err, &ce):
		return Fail(c, http.StatusConflict, ce.Message, "CONFLICT")
	case errors.As(err, &ue):
		return Fail(c, http.StatusUnauthorized, ue.Message, "UNAUTHORIZED")
	case errors.As(err, &fe):
		return Fail(c, http.StatusForbidden, fe.Message, "FORBIDDEN")
	default:
		return Fail(c, http.StatusInternalServerError, "Internal server error", "INTERNAL_ERROR")
	}
}
