package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/collegeportal/admission-api/internal/service"
	appErrors "github.com/collegeportal/admission-api/pkg/errors"
	"github.com/collegeportal/admission-api/pkg/response"
)

// StatusHandler serves the public application status lookup.
type StatusHandler struct {
	service *service.AdmissionService
}

// NewStatusHandler creates a new handler.
func NewStatusHandler(svc *service.AdmissionService) *StatusHandler {
	return &StatusHandler{service: svc}
}

// Lookup godoc
// @Summary Check an application's status by ID
// @Description Public status check, no account required. The application ID and applicant email must both match.
// @Tags Status
// @Produce json
// @Param id path string true "Application ID"
// @Param email query string true "Applicant email"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /status/{id} [get]
func (h *StatusHandler) Lookup(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "email is required"))
		return
	}
	res, err := h.service.Lookup(c.Request.Context(), c.Param("id"), email)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}
