// Package wizard implements the admission application state machine: the
// step pointer, the merge rules that accumulate an Application draft, and the
// aggregate checks that gate submission.
package wizard

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/collegeportal/admission-api/internal/models"
	appErrors "github.com/collegeportal/admission-api/pkg/errors"
)

// Step identifies a wizard position. Steps advance 1..6.
type Step int

const (
	StepPersonal Step = iota + 1
	StepEducational
	StepCourse
	StepDocuments
	StepReview
	StepPayment
)

// String returns the display name of the step.
func (s Step) String() string {
	switch s {
	case StepPersonal:
		return "Personal Details"
	case StepEducational:
		return "Educational Details"
	case StepCourse:
		return "Course Selection"
	case StepDocuments:
		return "Document Upload"
	case StepReview:
		return "Review & Submit"
	case StepPayment:
		return "Payment"
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

// Valid reports whether s is within the wizard range.
func (s Step) Valid() bool {
	return s >= StepPersonal && s <= StepPayment
}

// Wizard owns one application draft and its step pointer. It is not safe for
// concurrent use; callers serialize access per application.
type Wizard struct {
	draft models.Application
	step  Step
	now   func() time.Time
}

// Option customises wizard construction.
type Option func(*Wizard)

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(w *Wizard) {
		if now != nil {
			w.now = now
		}
	}
}

// WithApplicationID fixes the generated application id (tests).
func WithApplicationID(id string) Option {
	return func(w *Wizard) {
		if id != "" {
			w.draft.ID = id
		}
	}
}

// New starts a fresh draft for the given user at step 1. The application id
// is generated once and never changes afterwards.
func New(userID string, opts ...Option) *Wizard {
	w := &Wizard{
		draft: models.Application{
			UserID: userID,
			Status: models.StatusDraft,
		},
		step: StepPersonal,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.draft.ID == "" {
		w.draft.ID = NewApplicationID()
	}
	created := w.now().UTC()
	w.draft.CreatedAt = created
	w.draft.UpdatedAt = created
	return w
}

// Restore rebuilds a wizard around a previously saved draft and position.
func Restore(draft models.Application, step Step, opts ...Option) *Wizard {
	if !step.Valid() {
		step = StepPersonal
	}
	w := &Wizard{draft: draft, step: step, now: time.Now}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// NewApplicationID produces the APPxxxxx display identifier.
func NewApplicationID() string {
	var buf [4]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return fmt.Sprintf("APP%05d", time.Now().UnixNano()%90000+10000)
	}
	n := binary.BigEndian.Uint32(buf[:])
	return fmt.Sprintf("APP%05d", n%90000+10000)
}

// Draft returns a copy of the accumulated application.
func (w *Wizard) Draft() models.Application {
	return w.draft
}

// CurrentStep returns the step pointer.
func (w *Wizard) CurrentStep() Step {
	return w.step
}

// guard rejects a step submission that does not match the pointer. These are
// contract violations, not user validation failures.
func (w *Wizard) guard(step Step) error {
	if step != w.step {
		return appErrors.Clone(appErrors.ErrOutOfSequence,
			fmt.Sprintf("expected step %d (%s), got step %d", int(w.step), w.step, int(step)))
	}
	return nil
}

func (w *Wizard) advance() {
	if w.step < StepPayment {
		w.step++
	}
}

// SubmitPersonal merges validated personal details and advances. The value
// must already be clean; field validation belongs to the step layer.
func (w *Wizard) SubmitPersonal(details models.PersonalDetails) error {
	if err := w.guard(StepPersonal); err != nil {
		return err
	}
	w.draft = mergePersonal(w.draft, details, w.now().UTC())
	w.advance()
	return nil
}

// SubmitEducational merges validated educational details and advances.
func (w *Wizard) SubmitEducational(details models.EducationalDetails) error {
	if err := w.guard(StepEducational); err != nil {
		return err
	}
	w.draft = mergeEducational(w.draft, details, w.now().UTC())
	w.advance()
	return nil
}

// SubmitCourse merges a validated course selection and advances.
func (w *Wizard) SubmitCourse(selection models.CourseSelection) error {
	if err := w.guard(StepCourse); err != nil {
		return err
	}
	w.draft = mergeCourse(w.draft, selection, w.now().UTC())
	w.advance()
	return nil
}

// SubmitDocuments merges validated uploads and advances.
func (w *Wizard) SubmitDocuments(uploads models.DocumentUploads) error {
	if err := w.guard(StepDocuments); err != nil {
		return err
	}
	w.draft = mergeDocuments(w.draft, uploads, w.now().UTC())
	w.advance()
	return nil
}

// Back moves one step towards the start, floored at step 1. Merged data is
// kept.
func (w *Wizard) Back() {
	if w.step > StepPersonal {
		w.step--
	}
}

// EditStep jumps directly to a data-entry step (1..5) without discarding any
// slice, supporting the review screen's edit links.
func (w *Wizard) EditStep(step Step) error {
	if step < StepPersonal || step > StepReview {
		return appErrors.Clone(appErrors.ErrOutOfSequence,
			fmt.Sprintf("cannot edit step %d", int(step)))
	}
	w.step = step
	return nil
}

// ConfirmReview runs the final aggregate validation and, on success, marks
// the draft submitted and advances to payment. The document policy is
// re-derived from the final personal details; earlier evaluations are never
// trusted.
func (w *Wizard) ConfirmReview() error {
	if err := w.guard(StepReview); err != nil {
		return err
	}

	if missing := missingSlices(w.draft); len(missing) > 0 {
		return appErrors.Clone(appErrors.ErrIncomplete,
			fmt.Sprintf("complete the following steps before submitting: %s", strings.Join(missing, ", ")))
	}

	reqs := RequiredDocuments(w.draft.PersonalDetails)
	if missing := reqs.Missing(*w.draft.DocumentUploads); len(missing) > 0 {
		return appErrors.Clone(appErrors.ErrMissingDocuments,
			fmt.Sprintf("required documents are missing: %s", joinSlotLabels(missing)))
	}

	w.draft.Status = models.StatusSubmitted
	w.draft.UpdatedAt = w.now().UTC()
	w.advance()
	return nil
}

// CompletePayment records the finalized payment details. Valid only at step
// 6 on a submitted application; the post-submission status lifecycle belongs
// to the admissions office, so the status stays "submitted" here.
func (w *Wizard) CompletePayment(details models.PaymentDetails) error {
	if err := w.guard(StepPayment); err != nil {
		return err
	}
	if w.draft.Status != models.StatusSubmitted {
		return appErrors.Clone(appErrors.ErrOutOfSequence, "payment requires a submitted application")
	}
	w.draft = mergePayment(w.draft, details, w.now().UTC())
	return nil
}

// Finished reports whether the wizard reached its terminal state.
func (w *Wizard) Finished() bool {
	return w.step == StepPayment &&
		w.draft.PaymentDetails != nil &&
		w.draft.PaymentDetails.Status == models.PaymentCompleted
}

// Merges are pure: they return a new application value and never mutate the
// input, so step handlers can work on snapshots.

func mergePersonal(app models.Application, details models.PersonalDetails, now time.Time) models.Application {
	app.PersonalDetails = &details
	app.UpdatedAt = now
	return app
}

func mergeEducational(app models.Application, details models.EducationalDetails, now time.Time) models.Application {
	app.EducationalDetails = &details
	app.UpdatedAt = now
	return app
}

func mergeCourse(app models.Application, selection models.CourseSelection, now time.Time) models.Application {
	app.CourseSelection = &selection
	app.UpdatedAt = now
	return app
}

func mergeDocuments(app models.Application, uploads models.DocumentUploads, now time.Time) models.Application {
	copied := models.DocumentUploads{Documents: make(map[models.DocumentSlot]models.DocumentRef, len(uploads.Documents))}
	for slot, ref := range uploads.Documents {
		copied.Documents[slot] = ref
	}
	app.DocumentUploads = &copied
	app.UpdatedAt = now
	return app
}

func mergePayment(app models.Application, details models.PaymentDetails, now time.Time) models.Application {
	app.PaymentDetails = &details
	app.UpdatedAt = now
	return app
}

func missingSlices(app models.Application) []string {
	var missing []string
	if app.PersonalDetails == nil {
		missing = append(missing, StepPersonal.String())
	}
	if app.EducationalDetails == nil {
		missing = append(missing, StepEducational.String())
	}
	if app.CourseSelection == nil {
		missing = append(missing, StepCourse.String())
	}
	if app.DocumentUploads == nil {
		missing = append(missing, StepDocuments.String())
	}
	return missing
}

func joinSlotLabels(slots []models.DocumentSlot) string {
	labels := make([]string, len(slots))
	for i, slot := range slots {
		labels[i] = models.SlotLabels[slot]
	}
	return strings.Join(labels, ", ")
}
