package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegeportal/admission-api/internal/middleware"
	"github.com/collegeportal/admission-api/internal/models"
	"github.com/collegeportal/admission-api/internal/repository"
	"github.com/collegeportal/admission-api/internal/service"
	"github.com/collegeportal/admission-api/pkg/response"
)

type stubAppRepo struct {
	created  []*models.Application
	payments map[string]*models.PaymentDetails
}

func newStubAppRepo() *stubAppRepo {
	return &stubAppRepo{payments: make(map[string]*models.PaymentDetails)}
}

func (s *stubAppRepo) Create(ctx context.Context, app *models.Application) error {
	s.created = append(s.created, app)
	return nil
}

func (s *stubAppRepo) FindByID(ctx context.Context, id string) (*models.Application, error) {
	for _, app := range s.created {
		if app.ID == id {
			return app, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *stubAppRepo) FindByUser(ctx context.Context, userID string) ([]models.Application, error) {
	var out []models.Application
	for _, app := range s.created {
		if app.UserID == userID {
			out = append(out, *app)
		}
	}
	return out, nil
}

func (s *stubAppRepo) UpdatePayment(ctx context.Context, id string, payment *models.PaymentDetails, ts time.Time) error {
	s.payments[id] = payment
	return nil
}

type stubAuditRepo struct{}

func (stubAuditRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error { return nil }

type stubCharger struct{}

func (stubCharger) Process(ctx context.Context, app models.Application, mode models.PaymentMode, amount decimal.Decimal) (*models.PaymentDetails, error) {
	now := time.Now().UTC()
	return &models.PaymentDetails{
		Mode: mode, Amount: amount, TransactionID: "TXN1234567",
		Status: models.PaymentCompleted, Date: &now,
	}, nil
}

func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: userID, Role: models.RoleStudent})
		c.Next()
	}
}

func wizardRouter(t *testing.T) (*gin.Engine, *stubAppRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	apps := newStubAppRepo()
	svc := service.NewAdmissionService(
		repository.NewMemoryDraftRepository(time.Hour),
		apps,
		repository.NewCourseRepository(),
		stubAuditRepo{},
		stubCharger{},
		nil, nil,
		service.AdmissionConfig{ApplicationFee: 1000, AcademicYear: "2026-27"},
	)
	h := NewAdmissionHandler(svc)

	r := gin.New()
	group := r.Group("/admission", asUser("u1"))
	group.GET("/draft", h.Draft)
	group.PUT("/steps/personal", h.SubmitPersonal)
	group.PUT("/steps/educational", h.SubmitEducational)
	group.PUT("/steps/course", h.SubmitCourse)
	group.POST("/steps/documents", h.SubmitDocuments)
	group.POST("/back", h.Back)
	group.POST("/edit", h.EditStep)
	group.POST("/review/confirm", h.ConfirmReview)
	group.POST("/payment", h.Pay)
	return r, apps
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func personalPayload() map[string]string {
	return map[string]string{
		"fullName":              "Priya Sharma",
		"dateOfBirth":           "2006-04-18",
		"gender":                "Female",
		"caste":                 "General",
		"religion":              "Hindu",
		"aadhaarNumber":         "1234-5678-9012",
		"mobileNumber":          "9876543210",
		"email":                 "priya@example.com",
		"permanentAddress":      "12 MG Road, Pune",
		"correspondenceAddress": "12 MG Road, Pune",
	}
}

func TestAdmissionHandlerDraftCreates(t *testing.T) {
	r, _ := wizardRouter(t)

	w := doJSON(t, r, http.MethodGet, "/admission/draft", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Data)
	data := env.Data.(map[string]interface{})
	assert.Equal(t, float64(1), data["currentStep"])
}

func TestAdmissionHandlerStepValidationCarriesFieldErrors(t *testing.T) {
	r, _ := wizardRouter(t)
	doJSON(t, r, http.MethodGet, "/admission/draft", nil)

	payload := personalPayload()
	payload["mobileNumber"] = "12345"
	w := doJSON(t, r, http.MethodPut, "/admission/steps/personal", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	require.NotNil(t, env.Data)
	data := env.Data.(map[string]interface{})
	fieldErrors := data["fieldErrors"].(map[string]interface{})
	assert.Contains(t, fieldErrors, "mobileNumber")
}

func TestAdmissionHandlerOutOfSequence(t *testing.T) {
	r, _ := wizardRouter(t)
	doJSON(t, r, http.MethodGet, "/admission/draft", nil)

	w := doJSON(t, r, http.MethodPut, "/admission/steps/educational", map[string]string{
		"boardName": "Maharashtra State Board", "yearOfPassing": "2024",
		"percentage": "82.5", "seatNumber": "M123456",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Error)
	assert.Equal(t, "OUT_OF_SEQUENCE", env.Error.Code)
}

func TestAdmissionHandlerFullFlow(t *testing.T) {
	r, apps := wizardRouter(t)

	assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodGet, "/admission/draft", nil).Code)
	assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPut, "/admission/steps/personal", personalPayload()).Code)
	assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPut, "/admission/steps/educational", map[string]string{
		"boardName": "Maharashtra State Board", "yearOfPassing": "2024",
		"percentage": "82.5", "seatNumber": "M123456",
	}).Code)
	assert.Equal(t, http.StatusOK, doJSON(t, r, http.MethodPut, "/admission/steps/course", map[string]string{
		"courseId": "4", "specialization": "Computer Science",
	}).Code)

	// Documents bypass the HTTP upload here; the service call is covered in
	// the document handler tests.
	w := doJSON(t, r, http.MethodPost, "/admission/steps/documents", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w)
	assert.Equal(t, "MISSING_DOCUMENTS", env.Error.Code)

	// Review confirmation is out of reach until the documents clear.
	w = doJSON(t, r, http.MethodPost, "/admission/review/confirm", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	require.Empty(t, apps.created)
}

func TestAdmissionHandlerEditStepRejectsReview(t *testing.T) {
	r, _ := wizardRouter(t)
	doJSON(t, r, http.MethodGet, "/admission/draft", nil)

	w := doJSON(t, r, http.MethodPost, "/admission/edit", map[string]int{"step": 6})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
