package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/collegeportal/admission-api/internal/service"
	"github.com/collegeportal/admission-api/pkg/response"
)

// CourseHandler serves the public catalog, announcements and calendar.
type CourseHandler struct {
	service *service.CourseService
}

// NewCourseHandler creates a new handler.
func NewCourseHandler(svc *service.CourseService) *CourseHandler {
	return &CourseHandler{service: svc}
}

// List godoc
// @Summary List courses
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /courses [get]
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// Get godoc
// @Summary Get a course
// @Tags Courses
// @Produce json
// @Param id path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /courses/{id} [get]
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, course, nil)
}

// Announcements godoc
// @Summary List portal announcements
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /announcements [get]
func (h *CourseHandler) Announcements(c *gin.Context) {
	announcements, err := h.service.Announcements(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, announcements, nil)
}

// ImportantDates godoc
// @Summary List the admission calendar
// @Tags Courses
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /important-dates [get]
func (h *CourseHandler) ImportantDates(c *gin.Context) {
	dates, err := h.service.ImportantDates(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dates, nil)
}
