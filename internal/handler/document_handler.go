package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/collegeportal/admission-api/internal/models"
	"github.com/collegeportal/admission-api/internal/service"
	appErrors "github.com/collegeportal/admission-api/pkg/errors"
	"github.com/collegeportal/admission-api/pkg/response"
)

// maxUploadBytes caps multipart uploads before slot rules apply.
const maxUploadBytes = 10 << 20

// DocumentHandler serves wizard document uploads and downloads.
type DocumentHandler struct {
	service *service.DocumentService
}

// NewDocumentHandler creates a new handler.
func NewDocumentHandler(svc *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: svc}
}

// Upload godoc
// @Summary Upload a document into a wizard slot
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param slot path string true "Document slot"
// @Param file formData file true "Document file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /admission/documents/{slot} [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "a file field is required"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to read upload"))
		return
	}
	defer file.Close()

	slot := models.DocumentSlot(c.Param("slot"))
	res, err := h.service.Upload(c.Request.Context(), claims.UserID, slot,
		fileHeader.Filename, fileHeader.Size, fileHeader.Header.Get("Content-Type"), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, res)
}

// Remove godoc
// @Summary Remove an uploaded document
// @Tags Documents
// @Produce json
// @Param slot path string true "Document slot"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admission/documents/{slot} [delete]
func (h *DocumentHandler) Remove(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	draft, err := h.service.Remove(c.Request.Context(), claims.UserID, models.DocumentSlot(c.Param("slot")))
	respondDraft(c, draft, err)
}

// Download godoc
// @Summary Download a document via a signed link
// @Tags Documents
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /documents/download/{token} [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	privileged := claims.Role == models.RoleAdmin
	rc, name, err := h.service.Open(c.Request.Context(), c.Param("token"), claims.UserID, privileged)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer rc.Close()

	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.DataFromReader(http.StatusOK, -1, "application/octet-stream", rc, nil)
}
