package wizard

import "github.com/collegeportal/admission-api/internal/models"

// GeneralCategory is the only caste category exempt from the caste
// certificate requirement.
const GeneralCategory = "General"

// DocumentRequirements is the per-applicant document policy. Photo,
// marksheet, domicile certificate, Aadhaar card and signature are mandatory
// for everyone; the caste certificate depends on the declared category.
// Optional slots (leaving certificate, other certificates) never block
// submission.
type DocumentRequirements struct {
	Photo            bool
	Marksheet        bool
	Domicile         bool
	AadhaarCard      bool
	Signature        bool
	CasteCertificate bool

	// Determined is false until the applicant has declared a category;
	// until then the caste requirement cannot be evaluated.
	Determined bool
}

// RequiredDocuments derives the policy from personal details. It must be
// re-evaluated whenever personal details change: editing the caste category
// can add or remove the certificate requirement late in the flow.
func RequiredDocuments(details *models.PersonalDetails) DocumentRequirements {
	reqs := DocumentRequirements{
		Photo:       true,
		Marksheet:   true,
		Domicile:    true,
		AadhaarCard: true,
		Signature:   true,
	}
	if details == nil || details.Caste == "" {
		return reqs
	}
	reqs.Determined = true
	reqs.CasteCertificate = details.Caste != GeneralCategory
	return reqs
}

// Slots lists the required slots in display order.
func (r DocumentRequirements) Slots() []models.DocumentSlot {
	slots := []models.DocumentSlot{
		models.SlotPhoto,
		models.SlotMarksheet,
	}
	if r.CasteCertificate {
		slots = append(slots, models.SlotCasteCertificate)
	}
	slots = append(slots, models.SlotDomicileCertificate, models.SlotAadhaarCard, models.SlotSignature)
	return slots
}

// Requires reports whether the given slot is mandatory under this policy.
func (r DocumentRequirements) Requires(slot models.DocumentSlot) bool {
	switch slot {
	case models.SlotPhoto:
		return r.Photo
	case models.SlotMarksheet:
		return r.Marksheet
	case models.SlotDomicileCertificate:
		return r.Domicile
	case models.SlotAadhaarCard:
		return r.AadhaarCard
	case models.SlotSignature:
		return r.Signature
	case models.SlotCasteCertificate:
		return r.CasteCertificate
	}
	return false
}

// Missing returns every required slot absent from the uploads, in display
// order, so callers can report all gaps at once rather than one at a time.
func (r DocumentRequirements) Missing(uploads models.DocumentUploads) []models.DocumentSlot {
	var missing []models.DocumentSlot
	for _, slot := range r.Slots() {
		if !uploads.Has(slot) {
			missing = append(missing, slot)
		}
	}
	return missing
}

// SpecializationRequired reports whether the chosen course demands a
// specialization pick.
func SpecializationRequired(course *models.Course) bool {
	return course != nil && course.HasSpecializations()
}
