package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/collegeportal/admission-api/internal/dto"
	"github.com/collegeportal/admission-api/internal/models"
	"github.com/collegeportal/admission-api/internal/repository"
	"github.com/collegeportal/admission-api/internal/transcript"
	"github.com/collegeportal/admission-api/internal/wizard"
	appErrors "github.com/collegeportal/admission-api/pkg/errors"
)

// passingYearWindow is how many years back a qualifying exam is accepted.
const passingYearWindow = 10

type admissionApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	FindByID(ctx context.Context, id string) (*models.Application, error)
	FindByUser(ctx context.Context, userID string) ([]models.Application, error)
	UpdatePayment(ctx context.Context, id string, payment *models.PaymentDetails, ts time.Time) error
}

type admissionCourseCatalog interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type admissionAuditor interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type paymentProcessor interface {
	Process(ctx context.Context, app models.Application, mode models.PaymentMode, amount decimal.Decimal) (*models.PaymentDetails, error)
}

type admissionMetrics interface {
	RecordSubmission()
	RecordPayment(success bool)
}

// AdmissionConfig tunes the wizard service.
type AdmissionConfig struct {
	ApplicationFee int64
	AcademicYear   string
}

// AdmissionService drives the admission wizard: drafts live in the draft
// store while in progress, confirmed applications are persisted, and the fee
// charge finalizes the flow.
type AdmissionService struct {
	drafts    repository.DraftRepository
	apps      admissionApplicationRepository
	courses   admissionCourseCatalog
	audit     admissionAuditor
	processor paymentProcessor
	validator *validator.Validate
	logger    *zap.Logger
	config    AdmissionConfig
	metrics   admissionMetrics
	now       func() time.Time
}

// AttachMetrics hooks domain counters in. Optional; nil-safe.
func (s *AdmissionService) AttachMetrics(metrics admissionMetrics) {
	s.metrics = metrics
}

// NewAdmissionService constructs an AdmissionService.
func NewAdmissionService(
	drafts repository.DraftRepository,
	apps admissionApplicationRepository,
	courses admissionCourseCatalog,
	audit admissionAuditor,
	processor paymentProcessor,
	validate *validator.Validate,
	logger *zap.Logger,
	config AdmissionConfig,
) *AdmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AdmissionService{
		drafts:    drafts,
		apps:      apps,
		courses:   courses,
		audit:     audit,
		processor: processor,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       time.Now,
	}
}

// StartOrResume returns the user's draft, creating a fresh one at step 1 if
// none exists.
func (s *AdmissionService) StartOrResume(ctx context.Context, userID string) (*dto.DraftResponse, error) {
	w, err := s.loadWizard(ctx, userID)
	if err == nil {
		return s.draftResponse(w, nil), nil
	}
	if appErrors.FromError(err).Code != appErrors.ErrNotFound.Code {
		return nil, err
	}

	w = wizard.New(userID)
	if err := s.saveWizard(ctx, userID, w); err != nil {
		return nil, err
	}
	s.logger.Info("admission draft started",
		zap.String("user_id", userID),
		zap.String("application_id", w.Draft().ID))
	return s.draftResponse(w, nil), nil
}

// GetDraft returns the current draft without mutating it.
func (s *AdmissionService) GetDraft(ctx context.Context, userID string) (*dto.DraftResponse, error) {
	w, err := s.loadWizard(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.draftResponse(w, nil), nil
}

// SubmitPersonal validates and merges the step 1 slice.
func (s *AdmissionService) SubmitPersonal(ctx context.Context, userID string, req dto.PersonalDetailsRequest) (*dto.DraftResponse, error) {
	w, err := s.loadWizard(ctx, userID)
	if err != nil {
		return nil, err
	}

	details := req.ToModel()
	if fieldErrors := wizard.ValidatePersonal(details); !fieldErrors.Empty() {
		return s.draftResponse(w, fieldErrors), appErrors.Clone(appErrors.ErrValidation, "personal details are invalid")
	}
	if err := w.SubmitPersonal(details); err != nil {
		return nil, err
	}
	if err := s.saveWizard(ctx, userID, w); err != nil {
		return nil, err
	}
	return s.draftResponse(w, nil), nil
}

// SubmitEducational validates and merges the step 2 slice.
func (s *AdmissionService) SubmitEducational(ctx context.Context, userID string, req dto.EducationalDetailsRequest) (*dto.DraftResponse, error) {
	w, err := s.loadWizard(ctx, userID)
	if err != nil {
		return nil, err
	}

	details := req.ToModel()
	maxYear := s.now().Year()
	if fieldErrors := wizard.ValidateEducational(details, maxYear-passingYearWindow, maxYear); !fieldErrors.Empty() {
		return s.draftResponse(w, fieldErrors), appErrors.Clone(appErrors.ErrValidation, "educational details are invalid")
	}
	if err := w.SubmitEducational(details); err != nil {
		return nil, err
	}
	if err := s.saveWizard(ctx, userID, w); err != nil {
		return nil, err
	}
	return s.draftResponse(w, nil), nil
}

// SubmitCourse validates and merges the step 3 slice against the catalog.
func (s *AdmissionService) SubmitCourse(ctx context.Context, userID string, req dto.CourseSelectionRequest) (*dto.DraftResponse, error) {
	w, err := s.loadWizard(ctx, userID)
	if err != nil {
		return nil, err
	}

	selection := req.ToModel()
	var course *models.Course
	if selection.CourseID != "" {
		course, err = s.courses.FindByID(ctx, selection.CourseID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
		}
	}
	if fieldErrors := wizard.ValidateCourse(selection, course); !fieldErrors.Empty() {
		return s.draftResponse(w, fieldErrors), appErrors.Clone(appErrors.ErrValidation, "course selection is invalid")
	}
	if err := w.SubmitCourse(selection); err != nil {
		return nil, err
	}
	if err := s.saveWizard(ctx, userID, w); err != nil {
		return nil, err
	}
	return s.draftResponse(w, nil), nil
}

// AttachDocument stores an upload reference in the draft's document slice.
// Valid only while the wizard sits on the documents step; replacing an
// existing slot is allowed.
func (s *AdmissionService) AttachDocument(ctx context.Context, userID string, ref models.DocumentRef) (*dto.DraftResponse, error) {
	w, err := s.loadWizard(ctx, userID)
	if err != nil {
		return nil, err
	}
	if w.CurrentStep() != wizard.StepDocuments {
		return nil, appErrors.Clone(appErrors.ErrOutOfSequence, "documents can only be attached at the document upload step")
	}

	draft := w.Draft()
	uploads := models.DocumentUploads{Documents: map[models.DocumentSlot]models.DocumentRef{}}
	if draft.DocumentUploads != nil {
		for slot, existing := range draft.DocumentUploads.Documents {
			uploads.Documents[slot] = existing
		}
	}
	uploads.Documents[ref.Slot] = ref

	draft.DocumentUploads = &uploads
	draft.UpdatedAt = s.now().UTC()
	w = wizard.Restore(draft, w.CurrentStep())
	if err := s.saveWizard(ctx, userID, w); err != nil {
		return nil, err
	}
	return s.draftResponse(w, nil), nil
}

// DetachDocument removes an upload from its slot.
func (s *AdmissionService) DetachDocument(ctx context.Context, userID string, slot models.DocumentSlot) (*dto.DraftResponse, *models.DocumentRef, error) {
	w, err := s.loadWizard(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if w.CurrentStep() != wizard.StepDocuments {
		return nil, nil, appErrors.Clone(appErrors.ErrOutOfSequence, "documents can only be removed at the document upload step")
	}

	draft := w.Draft()
	if draft.DocumentUploads == nil || !draft.DocumentUploads.Has(slot) {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "no document uploaded for this slot")
	}
	removed := draft.DocumentUploads.Documents[slot]

	uploads := models.DocumentUploads{Documents: map[models.DocumentSlot]models.DocumentRef{}}
	for key, existing := range draft.DocumentUploads.Documents {
		if key != slot {
			uploads.Documents[key] = existing
		}
	}
	draft.DocumentUploads = &uploads
	draft.UpdatedAt = s.now().UTC()
	w = wizard.Restore(draft, w.CurrentStep())
	if err := s.saveWizard(ctx, userID, w); err != nil {
		return nil, nil, err
	}
	return s.draftResponse(w, nil), &removed, nil
}

// SubmitDocuments validates the accumulated uploads against the document
// policy and advances to review.
func (s *AdmissionService) SubmitDocuments(ctx context.Context, userID string) (*dto.DraftResponse, error) {
	w, err := s.loadWizard(ctx, userID)
	if err != nil {
		return nil, err
	}

	draft := w.Draft()
	uploads := models.DocumentUploads{Documents: map[models.DocumentSlot]models.DocumentRef{}}
	if draft.DocumentUploads != nil {
		uploads = *draft.DocumentUploads
	}

	reqs := wizard.RequiredDocuments(draft.PersonalDetails)
	if fieldErrors := wizard.ValidateDocuments(uploads, reqs); !fieldErrors.Empty() {
		return s.draftResponse(w, fieldErrors), appErrors.Clone(appErrors.ErrMissingDocuments, "required documents are missing")
	}
	if err := w.SubmitDocuments(uploads); err != nil {
		return nil, err
	}
	if err := s.saveWizard(ctx, userID, w); err != nil {
		return nil, err
	}
	return s.draftResponse(w, nil), nil
}

// Back moves the wizard one step towards the start.
func (s *AdmissionService) Back(ctx context.Context, userID string) (*dto.DraftResponse, error) {
	w, err := s.loadWizard(ctx, userID)
	if err != nil {
		return nil, err
	}
	w.Back()
	if err := s.saveWizard(ctx, userID, w); err != nil {
		return nil, err
	}
	return s.draftResponse(w, nil), nil
}

// EditStep jumps to a data-entry step from the review screen.
func (s *AdmissionService) EditStep(ctx context.Context, userID string, step int) (*dto.DraftResponse, error) {
	w, err := s.loadWizard(ctx, userID)
	if err != nil {
		return nil, err
	}
	if w.Draft().Status != models.StatusDraft {
		return nil, appErrors.Clone(appErrors.ErrApplicationClosed, "the application has been submitted and can no longer be edited")
	}
	if err := w.EditStep(wizard.Step(step)); err != nil {
		return nil, err
	}
	if err := s.saveWizard(ctx, userID, w); err != nil {
		return nil, err
	}
	return s.draftResponse(w, nil), nil
}

// ConfirmReview performs the final aggregate check, persists the submitted
// application, and advances to payment. The draft stays in the store until
// the fee is paid.
func (s *AdmissionService) ConfirmReview(ctx context.Context, userID string, ip, userAgent string) (*dto.SubmissionResponse, error) {
	w, err := s.loadWizard(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := w.ConfirmReview(); err != nil {
		return nil, err
	}

	app := w.Draft()
	if err := s.apps.Create(ctx, &app); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist application")
	}
	if err := s.saveWizard(ctx, userID, w); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, userID, models.AuditActionSubmit, app.ID, map[string]string{"status": string(app.Status)}, ip, userAgent)
	if s.metrics != nil {
		s.metrics.RecordSubmission()
	}
	s.logger.Info("application submitted",
		zap.String("user_id", userID),
		zap.String("application_id", app.ID))

	return &dto.SubmissionResponse{
		ApplicationID: app.ID,
		Status:        app.Status,
		SubmittedAt:   app.UpdatedAt,
	}, nil
}

// Pay charges the application fee at step 6. The result is applied only if
// the draft has not changed while the gateway was processing; a stale result
// is discarded.
func (s *AdmissionService) Pay(ctx context.Context, userID string, req dto.PaymentRequest, ip, userAgent string) (*dto.PaymentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}

	w, err := s.loadWizard(ctx, userID)
	if err != nil {
		return nil, err
	}
	if w.CurrentStep() != wizard.StepPayment {
		return nil, appErrors.Clone(appErrors.ErrOutOfSequence, "payment is only available after review confirmation")
	}

	snapshot := w.Draft()
	amount := decimal.NewFromInt(s.config.ApplicationFee)

	details, err := s.processor.Process(ctx, snapshot, req.Mode, amount)
	if err != nil {
		appErr := appErrors.FromError(err)
		if appErr.Code == appErrors.ErrPaymentDeclined.Code && details != nil {
			if s.metrics != nil {
				s.metrics.RecordPayment(false)
			}
			return &dto.PaymentResponse{
				ApplicationID: snapshot.ID,
				Payment:       *details,
				AmountDisplay: transcript.FormatINR(details.Amount),
			}, appErr
		}
		return nil, appErr
	}

	// Stale-result guard: the draft must be exactly as it was when the
	// charge started.
	current, err := s.loadWizard(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !current.Draft().UpdatedAt.Equal(snapshot.UpdatedAt) {
		s.logger.Warn("discarding stale payment result",
			zap.String("application_id", snapshot.ID),
			zap.String("transaction_id", details.TransactionID))
		return nil, appErrors.Clone(appErrors.ErrConflict, "the application changed while the payment was processing")
	}

	if err := current.CompletePayment(*details); err != nil {
		return nil, err
	}
	if err := s.apps.UpdatePayment(ctx, snapshot.ID, details, s.now().UTC()); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment")
	}
	if err := s.drafts.Delete(ctx, userID); err != nil {
		s.logger.Warn("failed to delete draft after payment", zap.Error(err))
	}

	s.recordAudit(ctx, userID, models.AuditActionPayment, snapshot.ID,
		map[string]string{"transaction_id": details.TransactionID, "mode": string(details.Mode)}, ip, userAgent)
	if s.metrics != nil {
		s.metrics.RecordPayment(true)
	}

	return &dto.PaymentResponse{
		ApplicationID: snapshot.ID,
		Payment:       *details,
		AmountDisplay: transcript.FormatINR(details.Amount),
	}, nil
}

// MyApplications lists the user's submitted applications.
func (s *AdmissionService) MyApplications(ctx context.Context, userID string) ([]models.Application, error) {
	apps, err := s.apps.FindByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	return apps, nil
}

// Lookup resolves an application's public status. The display id and the
// applicant email must both match; a mismatch is indistinguishable from an
// unknown id.
func (s *AdmissionService) Lookup(ctx context.Context, applicationID, email string) (*models.StatusLookup, error) {
	app, err := s.apps.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no application found with this ID")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	if app.PersonalDetails == nil || !strings.EqualFold(app.PersonalDetails.Email, email) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no application found with this ID")
	}

	lookup := &models.StatusLookup{
		ID:          app.ID,
		Status:      app.Status,
		LastUpdated: app.UpdatedAt,
		Remarks:     app.Remarks,
	}
	if app.PersonalDetails != nil {
		lookup.ApplicantName = app.PersonalDetails.FullName
	}
	if app.CourseSelection != nil {
		if course, err := s.courses.FindByID(ctx, app.CourseSelection.CourseID); err == nil && course != nil {
			lookup.CourseName = course.Name
		}
	}
	return lookup, nil
}

func (s *AdmissionService) loadWizard(ctx context.Context, userID string) (*wizard.Wizard, error) {
	state, err := s.drafts.Find(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load draft")
	}
	if state == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no application draft in progress")
	}
	return wizard.Restore(state.Application, wizard.Step(state.Step)), nil
}

func (s *AdmissionService) saveWizard(ctx context.Context, userID string, w *wizard.Wizard) error {
	state := repository.DraftState{
		Application: w.Draft(),
		Step:        int(w.CurrentStep()),
	}
	if err := s.drafts.Save(ctx, userID, state); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save draft")
	}
	return nil
}

func (s *AdmissionService) draftResponse(w *wizard.Wizard, fieldErrors wizard.FieldErrors) *dto.DraftResponse {
	draft := w.Draft()
	step := w.CurrentStep()
	resp := &dto.DraftResponse{
		Application:       draft,
		CurrentStep:       int(step),
		StepName:          step.String(),
		RequiredDocuments: wizard.RequiredDocuments(draft.PersonalDetails).Slots(),
	}
	if !fieldErrors.Empty() {
		resp.FieldErrors = fieldErrors
	}
	return resp
}

func (s *AdmissionService) recordAudit(ctx context.Context, userID, action, resourceID string, values map[string]string, ip, userAgent string) {
	payload, err := json.Marshal(values)
	if err != nil {
		payload = nil
	}
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &userID,
		Action:     action,
		Resource:   "application",
		ResourceID: &resourceID,
		NewValues:  payload,
		IPAddress:  ip,
		UserAgent:  userAgent,
	}); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", action), zap.Error(err))
	}
}
