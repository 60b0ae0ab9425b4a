package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/chills-dance/camp-api/internal/httpx"
	"github.com/chills-dance/camp-api/internal/middleware"
	"github.com/chills-dance/camp-api/internal/model"
	"github.com/chills-dance/camp-api/internal/realtime"
	"github.com/chills-dance/camp-api/internal/repository"
)

// ClassHandler serves the schedule and RSVP endpoints. RSVP changes are
// relayed through the realtime hub so connected dashboards update live.
type ClassHandler struct {
	Classes *repository.ClassRepo
	RSVPs   *repository.RSVPRepo
	Hub     *realtime.Hub
}

func NewClassHandler(classes *repository.ClassRepo, rsvps *repository.RSVPRepo, hub *realtime.Hub) *ClassHandler {
	return &ClassHandler{Classes: classes, RSVPs: rsvps, Hub: hub}
}

// List handles GET /api/classes.
func (h *ClassHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	classes, err := h.Classes.ListActive(ctx)
	if err != nil {
		return httpx.FailErr(c, err)
	}
	if classes == nil {
		classes = []model.Class{}
	}
	return httpx.OK(c, http.StatusOK, classes, "")
}

// Get handles GET /api/classes/:id.
func (h *ClassHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	class, err := h.Classes.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return httpx.Fail(c, http.StatusNotFound, "Class not found", "RESOURCE_NOT_FOUND")
		}
		return httpx.FailErr(c, err)
	}
	return httpx.OK(c, http.StatusOK, class, "")
}

type rsvpReq struct {
	Status string `json:"status"`
}

// RSVP handles POST /api/classes/:id/rsvp (authenticated). Capacity and
// waitlist rules are not enforced here; the status is stored as given.
func (h *ClassHandler) RSVP(c echo.Context) error {
	var req rsvpReq
	if err := c.Bind(&req); err != nil {
		return httpx.Fail(c, http.StatusBadRequest, "Invalid request body", "VALIDATION_ERROR")
	}
	status := strings.ToUpper(strings.TrimSpace(req.Status))
	switch status {
	case model.RSVPConfirmed, model.RSVPWaitlist, model.RSVPCancelled:
	default:
		return httpx.Fail(c, http.StatusBadRequest, "Invalid RSVP status", "VALIDATION_ERROR")
	}
	userID, _ := c.Get(middleware.CtxUserID).(string)
	classID := c.Param("id")

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Classes.GetByID(ctx, classID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return httpx.Fail(c, http.StatusNotFound, "Class not found", "RESOURCE_NOT_FOUND")
		}
		return httpx.FailErr(c, err)
	}
	rsvp, err := h.RSVPs.Upsert(ctx, userID, classID, status)
	if err != nil {
		return httpx.FailErr(c, err)
	}
	count, err := h.RSVPs.CountConfirmed(ctx, classID)
	if err != nil {
		return httpx.FailErr(c, err)
	}

	h.Hub.Broadcast(realtime.Message{Event: realtime.EventRSVPUpdate, Data: echo.Map{
		"classId":      classID,
		"userId":       userID,
		"status":       status,
		"currentCount": count,
	}})

	return httpx.OK(c, http.StatusOK, echo.Map{"rsvp": rsvp, "currentCount": count}, "RSVP updated")
}

// MyRSVPs handles GET /api/rsvps (authenticated).
func (h *ClassHandler) MyRSVPs(c echo.Context) error {
	userID, _ := c.Get(middleware.CtxUserID).(string)
	ctx, cancel := reqCtx(c)
	defer cancel()

	rsvps, err := h.RSVPs.ListForUser(ctx, userID)
	if err != nil {
		return httpx.FailErr(c, err)
	}
	if rsvps == nil {
		rsvps = []model.RSVP{}
	}
	return httpx.OK(c, http.StatusOK, rsvps, "")
}
