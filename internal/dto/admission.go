package dto

import (
	"time"

	"github.com/collegeportal/admission-api/internal/models"
)

// DraftResponse is the wizard snapshot returned after every mutation, so the
// client always knows the current step and what has been collected.
type DraftResponse struct {
	Application models.Application `json:"application"`
	CurrentStep int                `json:"currentStep"`
	StepName    string             `json:"stepName"`
	// RequiredDocuments reflects the policy for the draft's personal
	// details; the caste certificate entry flips with the declared category.
	RequiredDocuments []models.DocumentSlot `json:"requiredDocuments,omitempty"`
	FieldErrors       map[string]string     `json:"fieldErrors,omitempty"`
}

// PersonalDetailsRequest is the step 1 payload.
type PersonalDetailsRequest struct {
	FullName              string `json:"fullName"`
	DateOfBirth           string `json:"dateOfBirth"`
	Gender                string `json:"gender"`
	Caste                 string `json:"caste"`
	SubCaste              string `json:"subCaste"`
	Religion              string `json:"religion"`
	AadhaarNumber         string `json:"aadhaarNumber"`
	MobileNumber          string `json:"mobileNumber"`
	Email                 string `json:"email"`
	PermanentAddress      string `json:"permanentAddress"`
	CorrespondenceAddress string `json:"correspondenceAddress"`
}

// ToModel converts the request into the domain slice.
func (r PersonalDetailsRequest) ToModel() models.PersonalDetails {
	return models.PersonalDetails{
		FullName:              r.FullName,
		DateOfBirth:           r.DateOfBirth,
		Gender:                r.Gender,
		Caste:                 r.Caste,
		SubCaste:              r.SubCaste,
		Religion:              r.Religion,
		AadhaarNumber:         r.AadhaarNumber,
		MobileNumber:          r.MobileNumber,
		Email:                 r.Email,
		PermanentAddress:      r.PermanentAddress,
		CorrespondenceAddress: r.CorrespondenceAddress,
	}
}

// EducationalDetailsRequest is the step 2 payload.
type EducationalDetailsRequest struct {
	BoardName       string `json:"boardName"`
	YearOfPassing   string `json:"yearOfPassing"`
	Percentage      string `json:"percentage"`
	SeatNumber      string `json:"seatNumber"`
	PreviousCollege string `json:"previousCollege"`
}

// ToModel converts the request into the domain slice.
func (r EducationalDetailsRequest) ToModel() models.EducationalDetails {
	return models.EducationalDetails{
		BoardName:       r.BoardName,
		YearOfPassing:   r.YearOfPassing,
		Percentage:      r.Percentage,
		SeatNumber:      r.SeatNumber,
		PreviousCollege: r.PreviousCollege,
	}
}

// CourseSelectionRequest is the step 3 payload.
type CourseSelectionRequest struct {
	CourseID       string `json:"courseId"`
	Specialization string `json:"specialization"`
}

// ToModel converts the request into the domain slice.
func (r CourseSelectionRequest) ToModel() models.CourseSelection {
	return models.CourseSelection{
		CourseID:       r.CourseID,
		Specialization: r.Specialization,
	}
}

// EditStepRequest jumps the wizard back to a data-entry step.
type EditStepRequest struct {
	Step int `json:"step" validate:"required,min=1,max=5"`
}

// PaymentRequest starts the fee charge at step 6.
type PaymentRequest struct {
	Mode models.PaymentMode `json:"mode" validate:"required"`
}

// SubmissionResponse confirms a successful review confirmation.
type SubmissionResponse struct {
	ApplicationID string                   `json:"applicationId"`
	Status        models.ApplicationStatus `json:"status"`
	SubmittedAt   time.Time                `json:"submittedAt"`
}

// PaymentResponse reports the charge outcome.
type PaymentResponse struct {
	ApplicationID string                `json:"applicationId"`
	Payment       models.PaymentDetails `json:"payment"`
	AmountDisplay string                `json:"amountDisplay"`
}

// StatusUpdateRequest moves an application through the review lifecycle.
type StatusUpdateRequest struct {
	Status  models.ApplicationStatus `json:"status" validate:"required"`
	Remarks string                   `json:"remarks"`
}

// DashboardResponse summarises the register for the admissions office.
type DashboardResponse struct {
	Total        int                              `json:"total"`
	ByStatus     map[models.ApplicationStatus]int `json:"byStatus"`
	RecentCount  int                              `json:"recentCount"`
	GeneratedAt  time.Time                        `json:"generatedAt"`
	AcademicYear string                           `json:"academicYear"`
}

// TranscriptJobResponse reports transcript generation progress.
type TranscriptJobResponse struct {
	JobID       string                  `json:"jobId"`
	Status      models.TranscriptStatus `json:"status"`
	DownloadURL string                  `json:"downloadUrl,omitempty"`
	Error       string                  `json:"error,omitempty"`
}

// DocumentUploadResponse echoes a stored upload with its signed URL.
type DocumentUploadResponse struct {
	Document models.DocumentRef `json:"document"`
	URL      string             `json:"url,omitempty"`
}
