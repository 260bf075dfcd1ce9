// Package transcript builds printable records of an application: the full
// application transcript and the payment receipt. Building the document
// model is pure; rendering to PDF is a separate concern.
package transcript

import (
	"time"

	"github.com/collegeportal/admission-api/internal/models"
)

// NotProvided is the placeholder printed for optional fields left blank.
const NotProvided = "Not provided"

// CollegeName appears in every transcript header.
const CollegeName = "Shri Vidya National College"

const declarationText = "I hereby declare that the information provided in this application is true and " +
	"correct to the best of my knowledge and belief. I understand that any false information may " +
	"result in the cancellation of my admission."

// Field is one labelled value on a transcript.
type Field struct {
	Label string
	Value string
}

// Section groups related fields under a heading.
type Section struct {
	Title  string
	Fields []Field
}

// Document is the renderer-independent transcript model.
type Document struct {
	Title         string
	ApplicationID string
	GeneratedAt   time.Time
	Sections      []Section
	Declaration   string
	SignatureLine bool
}

func orPlaceholder(value string) string {
	if value == "" {
		return NotProvided
	}
	return value
}

// BuildApplication assembles the full application transcript. Every slice the
// wizard collected gets a section; blank optional fields print the
// placeholder so the record shows they were left empty on purpose.
func BuildApplication(app models.Application, course *models.Course, generatedAt time.Time) Document {
	doc := Document{
		Title:         "Admission Application",
		ApplicationID: app.ID,
		GeneratedAt:   generatedAt,
		Declaration:   declarationText,
		SignatureLine: true,
	}

	doc.Sections = append(doc.Sections, personalSection(app.PersonalDetails))
	doc.Sections = append(doc.Sections, educationalSection(app.EducationalDetails))
	doc.Sections = append(doc.Sections, courseSection(app.CourseSelection, course))
	doc.Sections = append(doc.Sections, documentsSection(app.DocumentUploads))
	if app.PaymentDetails != nil {
		doc.Sections = append(doc.Sections, paymentSection(*app.PaymentDetails))
	}
	return doc
}

// BuildReceipt assembles the fee receipt for a completed payment.
func BuildReceipt(app models.Application, course *models.Course, generatedAt time.Time) Document {
	doc := Document{
		Title:         "Application Fee Receipt",
		ApplicationID: app.ID,
		GeneratedAt:   generatedAt,
	}

	applicant := NotProvided
	if app.PersonalDetails != nil {
		applicant = orPlaceholder(app.PersonalDetails.FullName)
	}
	courseName := NotProvided
	if course != nil {
		courseName = course.Name
	}

	fields := []Field{
		{Label: "Application ID", Value: app.ID},
		{Label: "Applicant Name", Value: applicant},
		{Label: "Course", Value: courseName},
	}
	if app.PaymentDetails != nil {
		p := *app.PaymentDetails
		fields = append(fields,
			Field{Label: "Transaction ID", Value: orPlaceholder(p.TransactionID)},
			Field{Label: "Payment Mode", Value: string(p.Mode)},
			Field{Label: "Amount Paid", Value: FormatINRWords(p.Amount)},
			Field{Label: "Status", Value: string(p.Status)},
		)
		if p.Date != nil {
			fields = append(fields, Field{Label: "Payment Date", Value: p.Date.Format("02 Jan 2006 15:04 MST")})
		}
	}

	doc.Sections = []Section{{Title: "Payment Details", Fields: fields}}
	return doc
}

func personalSection(details *models.PersonalDetails) Section {
	s := Section{Title: "Personal Details"}
	if details == nil {
		s.Fields = []Field{{Label: "Status", Value: NotProvided}}
		return s
	}
	s.Fields = []Field{
		{Label: "Full Name", Value: orPlaceholder(details.FullName)},
		{Label: "Date of Birth", Value: orPlaceholder(details.DateOfBirth)},
		{Label: "Gender", Value: orPlaceholder(details.Gender)},
		{Label: "Caste Category", Value: orPlaceholder(details.Caste)},
		{Label: "Sub-Caste", Value: orPlaceholder(details.SubCaste)},
		{Label: "Religion", Value: orPlaceholder(details.Religion)},
		{Label: "Aadhaar Number", Value: orPlaceholder(details.AadhaarNumber)},
		{Label: "Mobile Number", Value: orPlaceholder(details.MobileNumber)},
		{Label: "Email", Value: orPlaceholder(details.Email)},
		{Label: "Permanent Address", Value: orPlaceholder(details.PermanentAddress)},
		{Label: "Correspondence Address", Value: orPlaceholder(details.CorrespondenceAddress)},
	}
	return s
}

func educationalSection(details *models.EducationalDetails) Section {
	s := Section{Title: "Educational Details"}
	if details == nil {
		s.Fields = []Field{{Label: "Status", Value: NotProvided}}
		return s
	}
	s.Fields = []Field{
		{Label: "Board Name", Value: orPlaceholder(details.BoardName)},
		{Label: "Year of Passing", Value: orPlaceholder(details.YearOfPassing)},
		{Label: "Percentage", Value: orPlaceholder(details.Percentage)},
		{Label: "Seat Number", Value: orPlaceholder(details.SeatNumber)},
		{Label: "Previous College", Value: orPlaceholder(details.PreviousCollege)},
	}
	return s
}

func courseSection(selection *models.CourseSelection, course *models.Course) Section {
	s := Section{Title: "Course Selection"}
	if selection == nil {
		s.Fields = []Field{{Label: "Status", Value: NotProvided}}
		return s
	}
	courseName := selection.CourseID
	fees := ""
	duration := ""
	if course != nil {
		courseName = course.Name
		fees = FormatINRWords(course.Fees)
		duration = course.Duration
	}
	s.Fields = []Field{
		{Label: "Course", Value: orPlaceholder(courseName)},
		{Label: "Specialization", Value: orPlaceholder(selection.Specialization)},
		{Label: "Duration", Value: orPlaceholder(duration)},
		{Label: "Course Fees", Value: orPlaceholder(fees)},
	}
	return s
}

func documentsSection(uploads *models.DocumentUploads) Section {
	s := Section{Title: "Documents Uploaded"}
	if uploads == nil || len(uploads.Documents) == 0 {
		s.Fields = []Field{{Label: "Status", Value: NotProvided}}
		return s
	}
	for _, slot := range models.AllDocumentSlots {
		ref, ok := uploads.Get(slot)
		if !ok {
			continue
		}
		s.Fields = append(s.Fields, Field{Label: models.SlotLabels[slot], Value: ref.FileName})
	}
	return s
}

func paymentSection(details models.PaymentDetails) Section {
	s := Section{Title: "Payment Details"}
	s.Fields = []Field{
		{Label: "Payment Mode", Value: string(details.Mode)},
		{Label: "Amount", Value: FormatINRWords(details.Amount)},
		{Label: "Transaction ID", Value: orPlaceholder(details.TransactionID)},
		{Label: "Status", Value: string(details.Status)},
	}
	if details.Date != nil {
		s.Fields = append(s.Fields, Field{Label: "Payment Date", Value: details.Date.Format("02 Jan 2006 15:04 MST")})
	}
	return s
}
