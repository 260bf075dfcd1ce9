package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplicationStatus tracks an application's lifecycle. The wizard only ever
// moves draft -> submitted; the remaining transitions belong to the
// admissions office.
type ApplicationStatus string

const (
	StatusDraft       ApplicationStatus = "draft"
	StatusSubmitted   ApplicationStatus = "submitted"
	StatusUnderReview ApplicationStatus = "under-review"
	StatusApproved    ApplicationStatus = "approved"
	StatusRejected    ApplicationStatus = "rejected"
)

// PersonalDetails is the slice collected at wizard step 1.
type PersonalDetails struct {
	FullName              string `json:"fullName"`
	DateOfBirth           string `json:"dateOfBirth"`
	Gender                string `json:"gender"`
	Caste                 string `json:"caste"`
	SubCaste              string `json:"subCaste,omitempty"`
	Religion              string `json:"religion"`
	AadhaarNumber         string `json:"aadhaarNumber"`
	MobileNumber          string `json:"mobileNumber"`
	Email                 string `json:"email"`
	PermanentAddress      string `json:"permanentAddress"`
	CorrespondenceAddress string `json:"correspondenceAddress"`
}

// EducationalDetails is the slice collected at wizard step 2.
type EducationalDetails struct {
	BoardName       string `json:"boardName"`
	YearOfPassing   string `json:"yearOfPassing"`
	Percentage      string `json:"percentage"`
	SeatNumber      string `json:"seatNumber"`
	PreviousCollege string `json:"previousCollege,omitempty"`
}

// CourseSelection is the slice collected at wizard step 3.
type CourseSelection struct {
	CourseID       string `json:"courseId"`
	Specialization string `json:"specialization,omitempty"`
}

// DocumentSlot names the fixed upload slots.
type DocumentSlot string

const (
	SlotPhoto               DocumentSlot = "photo"
	SlotMarksheet           DocumentSlot = "marksheet"
	SlotCasteCertificate    DocumentSlot = "casteCertificate"
	SlotDomicileCertificate DocumentSlot = "domicileCertificate"
	SlotAadhaarCard         DocumentSlot = "aadhaarCard"
	SlotSignature           DocumentSlot = "signature"
	SlotLeavingCertificate  DocumentSlot = "lcCertificate"
	SlotOtherCertificates   DocumentSlot = "otherCertificates"
)

// AllDocumentSlots lists slots in display order.
var AllDocumentSlots = []DocumentSlot{
	SlotPhoto,
	SlotSignature,
	SlotMarksheet,
	SlotCasteCertificate,
	SlotLeavingCertificate,
	SlotDomicileCertificate,
	SlotAadhaarCard,
	SlotOtherCertificates,
}

// SlotLabels maps slots to the labels used on forms and transcripts.
var SlotLabels = map[DocumentSlot]string{
	SlotPhoto:               "Passport Size Photo",
	SlotSignature:           "Signature",
	SlotMarksheet:           "10th/12th Marksheet",
	SlotCasteCertificate:    "Caste Certificate",
	SlotLeavingCertificate:  "Leaving Certificate (LC)",
	SlotDomicileCertificate: "Domicile/Residence Certificate",
	SlotAadhaarCard:         "Aadhaar Card",
	SlotOtherCertificates:   "Other Certificates",
}

// DocumentRef is the opaque handle to a stored upload.
type DocumentRef struct {
	Slot        DocumentSlot `json:"slot"`
	FileName    string       `json:"fileName"`
	Size        int64        `json:"size"`
	ContentType string       `json:"contentType"`
	StorageKey  string       `json:"storageKey"`
	UploadedAt  time.Time    `json:"uploadedAt"`
}

// DocumentUploads is the slice collected at wizard step 4. Slots map to a
// stored reference; absent keys are empty slots.
type DocumentUploads struct {
	Documents map[DocumentSlot]DocumentRef `json:"documents"`
}

// Get returns the reference stored for a slot, if any.
func (d DocumentUploads) Get(slot DocumentSlot) (DocumentRef, bool) {
	ref, ok := d.Documents[slot]
	return ref, ok
}

// Has reports whether a slot holds an upload.
func (d DocumentUploads) Has(slot DocumentSlot) bool {
	_, ok := d.Documents[slot]
	return ok
}

// PaymentMode enumerates accepted payment instruments.
type PaymentMode string

const (
	PaymentModeUPI        PaymentMode = "UPI"
	PaymentModeDebitCard  PaymentMode = "DebitCard"
	PaymentModeCreditCard PaymentMode = "CreditCard"
	PaymentModeNetBanking PaymentMode = "NetBanking"
)

// ValidPaymentMode reports whether the mode is one of the accepted instruments.
func ValidPaymentMode(mode PaymentMode) bool {
	switch mode {
	case PaymentModeUPI, PaymentModeDebitCard, PaymentModeCreditCard, PaymentModeNetBanking:
		return true
	}
	return false
}

// PaymentStatus tracks the payment sub-state machine's persisted outcome.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// PaymentDetails is the slice recorded at wizard step 6.
type PaymentDetails struct {
	Mode          PaymentMode     `json:"mode"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID string          `json:"transactionId,omitempty"`
	Status        PaymentStatus   `json:"status"`
	Date          *time.Time      `json:"date,omitempty"`
}

// Application is the aggregate root for one applicant's admission form.
// Slices are nil until the corresponding wizard step completes.
type Application struct {
	ID                 string              `json:"id"`
	UserID             string              `json:"userId"`
	Status             ApplicationStatus   `json:"status"`
	PersonalDetails    *PersonalDetails    `json:"personalDetails,omitempty"`
	EducationalDetails *EducationalDetails `json:"educationalDetails,omitempty"`
	CourseSelection    *CourseSelection    `json:"courseSelection,omitempty"`
	DocumentUploads    *DocumentUploads    `json:"documentUploads,omitempty"`
	PaymentDetails     *PaymentDetails     `json:"paymentDetails,omitempty"`
	Remarks            string              `json:"remarks,omitempty"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

// ApplicationFilter constrains admin register queries.
type ApplicationFilter struct {
	Status    ApplicationStatus
	CourseID  string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// StatusLookup is the public status-check result.
type StatusLookup struct {
	ID            string            `json:"id"`
	ApplicantName string            `json:"applicantName"`
	CourseName    string            `json:"courseName"`
	Status        ApplicationStatus `json:"status"`
	LastUpdated   time.Time         `json:"lastUpdated"`
	Remarks       string            `json:"remarks,omitempty"`
}
