package wizard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/collegeportal/admission-api/internal/models"
	"github.com/collegeportal/admission-api/internal/validation"
)

func TestValidatePersonalCleanInput(t *testing.T) {
	assert.True(t, ValidatePersonal(validPersonal()).Empty())
}

func TestValidatePersonalReportsFirstFailurePerField(t *testing.T) {
	details := validPersonal()
	details.FullName = "  "
	details.AadhaarNumber = "12-34"
	details.MobileNumber = "12345"
	details.Email = "not-an-email"

	errs := ValidatePersonal(details)
	assert.Equal(t, []string{"aadhaarNumber", "email", "fullName", "mobileNumber"}, errs.Fields())
	assert.Equal(t, "Full name is required", errs["fullName"])
	assert.Equal(t, "Please enter a valid Aadhaar number format (XXXX-XXXX-XXXX or 12 digits)", errs["aadhaarNumber"])
	assert.Equal(t, "Please enter a valid 10-digit mobile number", errs["mobileNumber"])
	assert.Equal(t, "Please enter a valid email address", errs["email"])
}

func TestValidatePersonalEmptyFormatField(t *testing.T) {
	details := validPersonal()
	details.AadhaarNumber = ""

	// Required wins over the format rule when the field is blank.
	errs := ValidatePersonal(details)
	assert.Equal(t, "Aadhaar number is required", errs["aadhaarNumber"])
}

func TestValidatePersonalSubCasteOptional(t *testing.T) {
	details := validPersonal()
	details.SubCaste = ""
	assert.True(t, ValidatePersonal(details).Empty())
}

func TestValidateEducational(t *testing.T) {
	assert.True(t, ValidateEducational(validEducational(), 2015, 2025).Empty())

	details := validEducational()
	details.YearOfPassing = "2010"
	details.Percentage = "105"
	errs := ValidateEducational(details, 2015, 2025)
	assert.Contains(t, errs["yearOfPassing"], "between 2015 and 2025")
	assert.Equal(t, "Please enter a valid percentage (0-100)", errs["percentage"])
}

func TestValidateCourse(t *testing.T) {
	btech := &models.Course{ID: "4", Name: "Bachelor of Technology",
		Specializations: []string{"Computer Science", "Electronics", "Mechanical", "Civil"}}
	bcom := &models.Course{ID: "3", Name: "Bachelor of Commerce"}

	tests := []struct {
		name      string
		selection models.CourseSelection
		course    *models.Course
		wantField string
		want      string
	}{
		{
			name:      "plain course clean",
			selection: models.CourseSelection{CourseID: "3"},
			course:    bcom,
		},
		{
			name:      "specialized course clean",
			selection: models.CourseSelection{CourseID: "4", Specialization: "Computer Science"},
			course:    btech,
		},
		{
			name:      "no course",
			selection: models.CourseSelection{},
			course:    nil,
			wantField: "courseId",
			want:      "Course is required",
		},
		{
			name:      "unknown course",
			selection: models.CourseSelection{CourseID: "99"},
			course:    nil,
			wantField: "courseId",
			want:      "Please select a valid course",
		},
		{
			name:      "specialization missing",
			selection: models.CourseSelection{CourseID: "4"},
			course:    btech,
			wantField: "specialization",
			want:      "Specialization is required",
		},
		{
			name:      "specialization not offered",
			selection: models.CourseSelection{CourseID: "4", Specialization: "Astrophysics"},
			course:    btech,
			wantField: "specialization",
			want:      "Please select a valid specialization",
		},
		{
			name:      "stray specialization",
			selection: models.CourseSelection{CourseID: "3", Specialization: "Computer Science"},
			course:    bcom,
			wantField: "specialization",
			want:      "The selected course does not offer specializations",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateCourse(tt.selection, tt.course)
			if tt.wantField == "" {
				assert.True(t, errs.Empty())
				return
			}
			assert.Equal(t, tt.want, errs[tt.wantField])
		})
	}
}

func TestValidateDocuments(t *testing.T) {
	reqs := RequiredDocuments(&models.PersonalDetails{Caste: "OBC"})

	errs := ValidateDocuments(fullUploads(), reqs)
	assert.True(t, errs.Empty())

	uploads := models.DocumentUploads{Documents: map[models.DocumentSlot]models.DocumentRef{
		models.SlotPhoto: {Slot: models.SlotPhoto},
	}}
	errs = ValidateDocuments(uploads, reqs)
	assert.Len(t, errs, 5)
	assert.Equal(t, "Caste Certificate is required", errs["casteCertificate"])
	assert.Equal(t, "Domicile/Residence Certificate is required", errs["domicileCertificate"])
	assert.Equal(t, "Signature is required", errs["signature"])
}

func TestSlotRule(t *testing.T) {
	photo := SlotRule(models.SlotPhoto)
	assert.Equal(t, int64(validation.MaxPhotoSize), photo.MaxSize)
	assert.Equal(t, validation.ImageTypes, photo.ContentTypes)

	signature := SlotRule(models.SlotSignature)
	assert.Equal(t, int64(validation.MaxSignatureSize), signature.MaxSize)

	cert := SlotRule(models.SlotCasteCertificate)
	assert.Equal(t, int64(validation.MaxDocumentSize), cert.MaxSize)
	assert.Equal(t, validation.DocumentTypes, cert.ContentTypes)
}
