package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/collegeportal/admission-api/internal/dto"
	"github.com/collegeportal/admission-api/internal/service"
	appErrors "github.com/collegeportal/admission-api/pkg/errors"
	"github.com/collegeportal/admission-api/pkg/response"
)

// AdmissionHandler exposes the admission wizard endpoints.
type AdmissionHandler struct {
	service *service.AdmissionService
}

// NewAdmissionHandler creates a new handler.
func NewAdmissionHandler(svc *service.AdmissionService) *AdmissionHandler {
	return &AdmissionHandler{service: svc}
}

// respondDraft sends a wizard response. Step validation failures carry both
// the error and the draft with its field errors, so the client can render
// inline messages without a second round trip.
func respondDraft(c *gin.Context, draft *dto.DraftResponse, err error) {
	if err == nil {
		response.JSON(c, http.StatusOK, draft, nil)
		return
	}
	appErr := appErrors.FromError(err)
	if draft == nil {
		response.Error(c, appErr)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(appErr.Status, response.Envelope{Data: draft, Error: appErr})
}

// Draft godoc
// @Summary Start or resume the admission wizard
// @Description Return the caller's draft, creating a fresh one when none exists
// @Tags Admission
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admission/draft [get]
func (h *AdmissionHandler) Draft(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	draft, err := h.service.StartOrResume(c.Request.Context(), claims.UserID)
	respondDraft(c, draft, err)
}

// SubmitPersonal godoc
// @Summary Submit personal details (step 1)
// @Tags Admission
// @Accept json
// @Produce json
// @Param payload body dto.PersonalDetailsRequest true "Personal details"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /admission/steps/personal [put]
func (h *AdmissionHandler) SubmitPersonal(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.PersonalDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid personal details payload"))
		return
	}
	draft, err := h.service.SubmitPersonal(c.Request.Context(), claims.UserID, req)
	respondDraft(c, draft, err)
}

// SubmitEducational godoc
// @Summary Submit educational details (step 2)
// @Tags Admission
// @Accept json
// @Produce json
// @Param payload body dto.EducationalDetailsRequest true "Educational details"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /admission/steps/educational [put]
func (h *AdmissionHandler) SubmitEducational(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.EducationalDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid educational details payload"))
		return
	}
	draft, err := h.service.SubmitEducational(c.Request.Context(), claims.UserID, req)
	respondDraft(c, draft, err)
}

// SubmitCourse godoc
// @Summary Submit course selection (step 3)
// @Tags Admission
// @Accept json
// @Produce json
// @Param payload body dto.CourseSelectionRequest true "Course selection"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /admission/steps/course [put]
func (h *AdmissionHandler) SubmitCourse(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.CourseSelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid course selection payload"))
		return
	}
	draft, err := h.service.SubmitCourse(c.Request.Context(), claims.UserID, req)
	respondDraft(c, draft, err)
}

// SubmitDocuments godoc
// @Summary Confirm uploaded documents (step 4)
// @Description Validate the uploaded documents against the policy and advance to review
// @Tags Admission
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /admission/steps/documents [post]
func (h *AdmissionHandler) SubmitDocuments(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	draft, err := h.service.SubmitDocuments(c.Request.Context(), claims.UserID)
	respondDraft(c, draft, err)
}

// Back godoc
// @Summary Step back in the wizard
// @Tags Admission
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admission/back [post]
func (h *AdmissionHandler) Back(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	draft, err := h.service.Back(c.Request.Context(), claims.UserID)
	respondDraft(c, draft, err)
}

// EditStep godoc
// @Summary Jump back to a data-entry step
// @Tags Admission
// @Accept json
// @Produce json
// @Param payload body dto.EditStepRequest true "Target step"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admission/edit [post]
func (h *AdmissionHandler) EditStep(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.EditStepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid edit payload"))
		return
	}
	draft, err := h.service.EditStep(c.Request.Context(), claims.UserID, req.Step)
	respondDraft(c, draft, err)
}

// ConfirmReview godoc
// @Summary Confirm the review step and submit the application
// @Tags Admission
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /admission/review/confirm [post]
func (h *AdmissionHandler) ConfirmReview(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	res, err := h.service.ConfirmReview(c.Request.Context(), claims.UserID, c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Pay godoc
// @Summary Charge the application fee (step 6)
// @Tags Admission
// @Accept json
// @Produce json
// @Param payload body dto.PaymentRequest true "Payment mode"
// @Success 200 {object} response.Envelope
// @Failure 402 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /admission/payment [post]
func (h *AdmissionHandler) Pay(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payment payload"))
		return
	}
	res, err := h.service.Pay(c.Request.Context(), claims.UserID, req, c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		appErr := appErrors.FromError(err)
		if res != nil {
			// A decline still reports the failed attempt's details.
			c.Header("Cache-Control", "no-store")
			c.JSON(appErr.Status, response.Envelope{Data: res, Error: appErr})
			return
		}
		response.Error(c, appErr)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// MyApplications godoc
// @Summary List the caller's submitted applications
// @Tags Admission
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /admission/applications [get]
func (h *AdmissionHandler) MyApplications(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	apps, err := h.service.MyApplications(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, apps, nil)
}
