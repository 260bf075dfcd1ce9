package wizard

import (
	"sort"

	"github.com/collegeportal/admission-api/internal/models"
	"github.com/collegeportal/admission-api/internal/validation"
)

// FieldErrors maps a form field (or document slot) to its first failing
// rule's message. An empty map means the slice is clean.
type FieldErrors map[string]string

// Empty reports whether validation passed.
func (f FieldErrors) Empty() bool {
	return len(f) == 0
}

// Fields lists the failing fields in stable order.
func (f FieldErrors) Fields() []string {
	fields := make([]string, 0, len(f))
	for field := range f {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

func (f FieldErrors) apply(field string, results ...validation.Result) {
	if _, seen := f[field]; seen {
		return
	}
	for _, r := range results {
		if !r.Valid {
			f[field] = r.Message
			return
		}
	}
}

// ValidatePersonal checks the step 1 slice. Sub-caste is optional; every
// other field is mandatory, with format rules on Aadhaar, mobile and email.
func ValidatePersonal(details models.PersonalDetails) FieldErrors {
	errs := FieldErrors{}
	errs.apply("fullName", validation.Required(details.FullName, "Full name"))
	errs.apply("dateOfBirth", validation.Required(details.DateOfBirth, "Date of birth"))
	errs.apply("gender", validation.Required(details.Gender, "Gender"))
	errs.apply("caste", validation.Required(details.Caste, "Caste category"))
	errs.apply("religion", validation.Required(details.Religion, "Religion"))
	errs.apply("aadhaarNumber",
		validation.Required(details.AadhaarNumber, "Aadhaar number"),
		validation.Aadhaar(details.AadhaarNumber))
	errs.apply("mobileNumber",
		validation.Required(details.MobileNumber, "Mobile number"),
		validation.Mobile(details.MobileNumber))
	errs.apply("email",
		validation.Required(details.Email, "Email"),
		validation.Email(details.Email))
	errs.apply("permanentAddress", validation.Required(details.PermanentAddress, "Permanent address"))
	errs.apply("correspondenceAddress", validation.Required(details.CorrespondenceAddress, "Correspondence address"))
	return errs
}

// ValidateEducational checks the step 2 slice. The passing year must fall in
// [minYear, maxYear]; previous college is optional.
func ValidateEducational(details models.EducationalDetails, minYear, maxYear int) FieldErrors {
	errs := FieldErrors{}
	errs.apply("boardName", validation.Required(details.BoardName, "Board name"))
	errs.apply("yearOfPassing",
		validation.Required(details.YearOfPassing, "Year of passing"),
		validation.YearBetween(details.YearOfPassing, minYear, maxYear))
	errs.apply("percentage",
		validation.Required(details.Percentage, "Percentage"),
		validation.Percentage(details.Percentage))
	errs.apply("seatNumber", validation.Required(details.SeatNumber, "Seat number"))
	return errs
}

// ValidateCourse checks the step 3 slice against the resolved course. A
// course with specializations requires one to be picked; courses without
// them reject a stray specialization value.
func ValidateCourse(selection models.CourseSelection, course *models.Course) FieldErrors {
	errs := FieldErrors{}
	errs.apply("courseId", validation.Required(selection.CourseID, "Course"))
	if !errs.Empty() {
		return errs
	}
	if course == nil {
		errs["courseId"] = "Please select a valid course"
		return errs
	}
	if SpecializationRequired(course) {
		errs.apply("specialization", validation.Required(selection.Specialization, "Specialization"))
		if errs.Empty() && !course.HasSpecialization(selection.Specialization) {
			errs["specialization"] = "Please select a valid specialization"
		}
	} else if selection.Specialization != "" {
		errs["specialization"] = "The selected course does not offer specializations"
	}
	return errs
}

// ValidateDocuments checks the step 4 slice against the document policy.
// Every missing required slot is reported, keyed by slot name.
func ValidateDocuments(uploads models.DocumentUploads, reqs DocumentRequirements) FieldErrors {
	errs := FieldErrors{}
	for _, slot := range reqs.Missing(uploads) {
		errs[string(slot)] = models.SlotLabels[slot] + " is required"
	}
	return errs
}

// SlotRule returns the upload constraint for a document slot. The photo and
// signature slots take images only with tight size caps; certificate slots
// also accept PDFs.
func SlotRule(slot models.DocumentSlot) validation.FileRule {
	switch slot {
	case models.SlotPhoto:
		return validation.FileRule{MaxSize: validation.MaxPhotoSize, ContentTypes: validation.ImageTypes}
	case models.SlotSignature:
		return validation.FileRule{MaxSize: validation.MaxSignatureSize, ContentTypes: validation.ImageTypes}
	default:
		return validation.FileRule{MaxSize: validation.MaxDocumentSize, ContentTypes: validation.DocumentTypes}
	}
}
