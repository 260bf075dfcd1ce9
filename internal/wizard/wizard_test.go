package wizard

import (
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegeportal/admission-api/internal/models"
	appErrors "github.com/collegeportal/admission-api/pkg/errors"
)

func validPersonal() models.PersonalDetails {
	return models.PersonalDetails{
		FullName:              "Rahul Sharma",
		DateOfBirth:           "2004-06-15",
		Gender:                "Male",
		Caste:                 "OBC",
		Religion:              "Hindu",
		AadhaarNumber:         "1234-5678-9012",
		MobileNumber:          "9876543210",
		Email:                 "rahul.sharma@example.com",
		PermanentAddress:      "12 MG Road, Pune",
		CorrespondenceAddress: "12 MG Road, Pune",
	}
}

func validEducational() models.EducationalDetails {
	return models.EducationalDetails{
		BoardName:     "Maharashtra State Board",
		YearOfPassing: "2022",
		Percentage:    "87.50",
		SeatNumber:    "M123456",
	}
}

func fullUploads() models.DocumentUploads {
	docs := make(map[models.DocumentSlot]models.DocumentRef)
	for _, slot := range models.AllDocumentSlots {
		docs[slot] = models.DocumentRef{
			Slot:       slot,
			FileName:   string(slot) + ".pdf",
			Size:       2048,
			StorageKey: "uploads/" + string(slot),
			UploadedAt: time.Now(),
		}
	}
	return models.DocumentUploads{Documents: docs}
}

// driveToStep submits clean slices until the wizard reaches the target step.
func driveToStep(t *testing.T, w *Wizard, target Step) {
	t.Helper()
	if w.CurrentStep() == StepPersonal && target > StepPersonal {
		require.NoError(t, w.SubmitPersonal(validPersonal()))
	}
	if w.CurrentStep() == StepEducational && target > StepEducational {
		require.NoError(t, w.SubmitEducational(validEducational()))
	}
	if w.CurrentStep() == StepCourse && target > StepCourse {
		require.NoError(t, w.SubmitCourse(models.CourseSelection{CourseID: "2"}))
	}
	if w.CurrentStep() == StepDocuments && target > StepDocuments {
		require.NoError(t, w.SubmitDocuments(fullUploads()))
	}
	if w.CurrentStep() == StepReview && target > StepReview {
		require.NoError(t, w.ConfirmReview())
	}
	require.Equal(t, target, w.CurrentStep())
}

func TestNewGeneratesApplicationID(t *testing.T) {
	w := New("user-1")
	assert.Regexp(t, regexp.MustCompile(`^APP\d{5}$`), w.Draft().ID)
	assert.Equal(t, StepPersonal, w.CurrentStep())
	assert.Equal(t, models.StatusDraft, w.Draft().Status)
}

func TestSequentialCompletion(t *testing.T) {
	w := New("user-1", WithApplicationID("APP10001"))

	require.NoError(t, w.SubmitPersonal(validPersonal()))
	assert.Equal(t, StepEducational, w.CurrentStep())

	require.NoError(t, w.SubmitEducational(validEducational()))
	assert.Equal(t, StepCourse, w.CurrentStep())

	require.NoError(t, w.SubmitCourse(models.CourseSelection{CourseID: "2"}))
	assert.Equal(t, StepDocuments, w.CurrentStep())

	require.NoError(t, w.SubmitDocuments(fullUploads()))
	assert.Equal(t, StepReview, w.CurrentStep())

	require.NoError(t, w.ConfirmReview())
	assert.Equal(t, StepPayment, w.CurrentStep())
	assert.Equal(t, models.StatusSubmitted, w.Draft().Status)

	draft := w.Draft()
	require.NotNil(t, draft.PersonalDetails)
	require.NotNil(t, draft.EducationalDetails)
	require.NotNil(t, draft.CourseSelection)
	require.NotNil(t, draft.DocumentUploads)
	assert.Equal(t, "APP10001", draft.ID)
}

func TestOutOfSequenceSubmitRejected(t *testing.T) {
	w := New("user-1")
	before := w.Draft()

	err := w.SubmitEducational(validEducational())
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrOutOfSequence.Code, appErr.Code)

	// The rejected submission must leave the wizard untouched.
	assert.Equal(t, StepPersonal, w.CurrentStep())
	assert.Equal(t, before, w.Draft())
}

func TestConfirmReviewOutOfSequence(t *testing.T) {
	w := New("user-1")
	err := w.ConfirmReview()
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrOutOfSequence.Code, appErrors.FromError(err).Code)
}

func TestBackPreservesData(t *testing.T) {
	w := New("user-1")
	driveToStep(t, w, StepCourse)

	w.Back()
	assert.Equal(t, StepEducational, w.CurrentStep())
	assert.NotNil(t, w.Draft().EducationalDetails)

	w.Back()
	w.Back() // already at step 1, must not underflow
	assert.Equal(t, StepPersonal, w.CurrentStep())
	assert.NotNil(t, w.Draft().PersonalDetails)
}

func TestEditStepThenResubmit(t *testing.T) {
	w := New("user-1")
	driveToStep(t, w, StepReview)

	require.NoError(t, w.EditStep(StepEducational))
	assert.Equal(t, StepEducational, w.CurrentStep())

	updated := validEducational()
	updated.Percentage = "91.25"
	require.NoError(t, w.SubmitEducational(updated))

	// Editing rewinds the pointer; resubmission advances to n+1, never back
	// to where the edit started.
	assert.Equal(t, StepCourse, w.CurrentStep())
	assert.Equal(t, "91.25", w.Draft().EducationalDetails.Percentage)
	assert.NotNil(t, w.Draft().DocumentUploads)
}

func TestEditStepRejectsPayment(t *testing.T) {
	w := New("user-1")
	driveToStep(t, w, StepPayment)

	err := w.EditStep(StepPayment)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrOutOfSequence.Code, appErrors.FromError(err).Code)
}

func TestConfirmReviewRequiresAllSlices(t *testing.T) {
	w := New("user-1")
	driveToStep(t, w, StepCourse)
	require.NoError(t, w.EditStep(StepReview))

	err := w.ConfirmReview()
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrIncomplete.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "Course Selection")
	assert.Contains(t, appErr.Message, "Document Upload")
	assert.Equal(t, models.StatusDraft, w.Draft().Status)
	assert.Equal(t, StepReview, w.CurrentStep())
}

func TestConfirmReviewReportsAllMissingDocuments(t *testing.T) {
	w := New("user-1")
	driveToStep(t, w, StepDocuments)

	uploads := fullUploads()
	delete(uploads.Documents, models.SlotCasteCertificate)
	delete(uploads.Documents, models.SlotDomicileCertificate)
	delete(uploads.Documents, models.SlotSignature)
	require.NoError(t, w.SubmitDocuments(uploads))

	err := w.ConfirmReview()
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrMissingDocuments.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "Caste Certificate")
	assert.Contains(t, appErr.Message, "Domicile/Residence Certificate")
	assert.Contains(t, appErr.Message, "Signature")
	assert.Equal(t, StepReview, w.CurrentStep())
}

func TestEditingCasteChangesDocumentPolicyAtReview(t *testing.T) {
	w := New("user-1")
	driveToStep(t, w, StepDocuments)

	uploads := fullUploads()
	delete(uploads.Documents, models.SlotCasteCertificate)
	require.NoError(t, w.SubmitDocuments(uploads))

	// OBC without a caste certificate cannot submit.
	require.Error(t, w.ConfirmReview())

	// Switching the category to General lifts the requirement; the policy is
	// re-derived from the final personal details at confirmation time.
	require.NoError(t, w.EditStep(StepPersonal))
	general := validPersonal()
	general.Caste = "General"
	require.NoError(t, w.SubmitPersonal(general))
	require.NoError(t, w.EditStep(StepReview))

	require.NoError(t, w.ConfirmReview())
	assert.Equal(t, models.StatusSubmitted, w.Draft().Status)
}

func TestCompletePayment(t *testing.T) {
	w := New("user-1")
	driveToStep(t, w, StepPayment)

	paid := time.Now().UTC()
	details := models.PaymentDetails{
		Mode:          models.PaymentModeUPI,
		Amount:        decimal.NewFromInt(1000),
		TransactionID: "TXN1234567",
		Status:        models.PaymentCompleted,
		Date:          &paid,
	}
	require.NoError(t, w.CompletePayment(details))

	draft := w.Draft()
	require.NotNil(t, draft.PaymentDetails)
	assert.Equal(t, "TXN1234567", draft.PaymentDetails.TransactionID)
	// Post-submission status changes belong to the admissions office.
	assert.Equal(t, models.StatusSubmitted, draft.Status)
	assert.True(t, w.Finished())
}

func TestCompletePaymentBeforeSubmission(t *testing.T) {
	w := New("user-1")
	err := w.CompletePayment(models.PaymentDetails{Mode: models.PaymentModeUPI})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrOutOfSequence.Code, appErrors.FromError(err).Code)
	assert.False(t, w.Finished())
}

func TestRestoreResumesPosition(t *testing.T) {
	w := New("user-1")
	driveToStep(t, w, StepCourse)

	resumed := Restore(w.Draft(), w.CurrentStep())
	assert.Equal(t, StepCourse, resumed.CurrentStep())
	assert.Equal(t, w.Draft(), resumed.Draft())

	// An invalid saved position falls back to the first step.
	fallback := Restore(w.Draft(), Step(42))
	assert.Equal(t, StepPersonal, fallback.CurrentStep())
}

func TestMergesDoNotAliasInput(t *testing.T) {
	w := New("user-1")
	driveToStep(t, w, StepDocuments)

	uploads := fullUploads()
	require.NoError(t, w.SubmitDocuments(uploads))

	// Mutating the caller's map after submission must not leak into the draft.
	delete(uploads.Documents, models.SlotPhoto)
	assert.True(t, w.Draft().DocumentUploads.Has(models.SlotPhoto))
}
