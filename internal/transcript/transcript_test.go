package transcript

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collegeportal/admission-api/internal/models"
)

func TestFormatINR(t *testing.T) {
	tests := []struct {
		amount string
		want   string
	}{
		{"0", "₹0"},
		{"999", "₹999"},
		{"1000", "₹1,000"},
		{"12345", "₹12,345"},
		{"123456", "₹1,23,456"},
		{"1234567", "₹12,34,567"},
		{"12345678", "₹1,23,45,678"},
		{"1234567.50", "₹12,34,567.50"},
		{"1000.00", "₹1,000"},
		{"-45000", "₹-45,000"},
	}
	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			d, err := decimal.NewFromString(tt.amount)
			require.NoError(t, err)
			assert.Equal(t, tt.want, FormatINR(d))
		})
	}
}

func TestFormatINRWords(t *testing.T) {
	assert.Equal(t, "Rs. 1,000", FormatINRWords(decimal.NewFromInt(1000)))
}

func sampleApplication() models.Application {
	paid := time.Date(2026, 1, 20, 14, 0, 0, 0, time.UTC)
	return models.Application{
		ID:     "APP10042",
		UserID: "user-1",
		Status: models.StatusSubmitted,
		PersonalDetails: &models.PersonalDetails{
			FullName:              "Priya Patel",
			DateOfBirth:           "2005-03-02",
			Gender:                "Female",
			Caste:                 "General",
			Religion:              "Hindu",
			AadhaarNumber:         "123456789012",
			MobileNumber:          "9123456780",
			Email:                 "priya@example.com",
			PermanentAddress:      "45 FC Road, Pune",
			CorrespondenceAddress: "45 FC Road, Pune",
		},
		EducationalDetails: &models.EducationalDetails{
			BoardName:     "CBSE",
			YearOfPassing: "2023",
			Percentage:    "92.40",
			SeatNumber:    "C445566",
		},
		CourseSelection: &models.CourseSelection{CourseID: "4", Specialization: "Computer Science"},
		DocumentUploads: &models.DocumentUploads{Documents: map[models.DocumentSlot]models.DocumentRef{
			models.SlotPhoto:     {Slot: models.SlotPhoto, FileName: "photo.jpg"},
			models.SlotMarksheet: {Slot: models.SlotMarksheet, FileName: "marksheet.pdf"},
		}},
		PaymentDetails: &models.PaymentDetails{
			Mode:          models.PaymentModeUPI,
			Amount:        decimal.NewFromInt(1000),
			TransactionID: "TXN2345678",
			Status:        models.PaymentCompleted,
			Date:          &paid,
		},
	}
}

func sampleCourse() *models.Course {
	return &models.Course{
		ID:              "4",
		Name:            "Bachelor of Technology",
		Duration:        "4 Years",
		Fees:            decimal.NewFromInt(85000),
		Specializations: []string{"Computer Science"},
	}
}

func findSection(t *testing.T, doc Document, title string) Section {
	t.Helper()
	for _, s := range doc.Sections {
		if s.Title == title {
			return s
		}
	}
	t.Fatalf("section %q not found", title)
	return Section{}
}

func fieldValue(s Section, label string) string {
	for _, f := range s.Fields {
		if f.Label == label {
			return f.Value
		}
	}
	return ""
}

func TestBuildApplication(t *testing.T) {
	generated := time.Date(2026, 1, 21, 9, 0, 0, 0, time.UTC)
	doc := BuildApplication(sampleApplication(), sampleCourse(), generated)

	assert.Equal(t, "Admission Application", doc.Title)
	assert.Equal(t, "APP10042", doc.ApplicationID)
	assert.Equal(t, generated, doc.GeneratedAt)
	assert.True(t, doc.SignatureLine)
	assert.NotEmpty(t, doc.Declaration)

	personal := findSection(t, doc, "Personal Details")
	assert.Equal(t, "Priya Patel", fieldValue(personal, "Full Name"))
	// Optional blanks print the placeholder rather than vanishing.
	assert.Equal(t, NotProvided, fieldValue(personal, "Sub-Caste"))

	course := findSection(t, doc, "Course Selection")
	assert.Equal(t, "Bachelor of Technology", fieldValue(course, "Course"))
	assert.Equal(t, "Computer Science", fieldValue(course, "Specialization"))
	assert.Equal(t, "Rs. 85,000", fieldValue(course, "Course Fees"))

	docs := findSection(t, doc, "Documents Uploaded")
	assert.Equal(t, "photo.jpg", fieldValue(docs, "Passport Size Photo"))
	assert.Len(t, docs.Fields, 2)

	paym := findSection(t, doc, "Payment Details")
	assert.Equal(t, "Rs. 1,000", fieldValue(paym, "Amount"))
	assert.Equal(t, "TXN2345678", fieldValue(paym, "Transaction ID"))
}

func TestBuildApplicationEmptySlices(t *testing.T) {
	app := models.Application{ID: "APP10001", Status: models.StatusDraft}
	doc := BuildApplication(app, nil, time.Now())

	// A draft missing everything still yields a complete skeleton.
	require.Len(t, doc.Sections, 4)
	for _, section := range doc.Sections {
		assert.Equal(t, NotProvided, fieldValue(section, "Status"))
	}
}

func TestBuildReceipt(t *testing.T) {
	generated := time.Date(2026, 1, 21, 9, 0, 0, 0, time.UTC)
	doc := BuildReceipt(sampleApplication(), sampleCourse(), generated)

	assert.Equal(t, "Application Fee Receipt", doc.Title)
	assert.False(t, doc.SignatureLine)
	require.Len(t, doc.Sections, 1)

	s := doc.Sections[0]
	assert.Equal(t, "Priya Patel", fieldValue(s, "Applicant Name"))
	assert.Equal(t, "Bachelor of Technology", fieldValue(s, "Course"))
	assert.Equal(t, "Rs. 1,000", fieldValue(s, "Amount Paid"))
	assert.Equal(t, "TXN2345678", fieldValue(s, "Transaction ID"))
	assert.Equal(t, "20 Jan 2026 14:00 UTC", fieldValue(s, "Payment Date"))
}

func TestPDFRendererProducesDocument(t *testing.T) {
	doc := BuildApplication(sampleApplication(), sampleCourse(), time.Now().UTC())

	data, err := NewPDFRenderer().Render(doc)
	require.NoError(t, err)
	assert.Greater(t, len(data), 500)
	assert.Equal(t, "%PDF", string(data[:4]))
}
