package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chills-dance/camp-api/internal/httpx"
	"github.com/chills-dance/camp-api/internal/model"
	"github.com/chills-dance/camp-api/internal/repository"
)

// TeacherHandler serves public instructor listings.
type TeacherHandler struct {
	Teachers *repository.TeacherRepo
}

func NewTeacherHandler(teachers *repository.TeacherRepo) *TeacherHandler {
	return &TeacherHandler{Teachers: teachers}
}

// List handles GET /api/teachers, returning verified profiles only.
func (h *TeacherHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	profiles, err := h.Teachers.ListVerified(ctx)
	if err != nil {
		return httpx.FailErr(c, err)
	}
	if profiles == nil {
		profiles = []model.TeacherProfile{}
	}
	return httpx.OK(c, http.StatusOK, profiles, "")
}
