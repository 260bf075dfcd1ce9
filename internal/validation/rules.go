// Package validation holds the pure per-field rules shared by every wizard
// step. Validators never panic and never touch external state; they return a
// structured result the caller can surface inline.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Result is the outcome of a single field check.
type Result struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// Ok returns a passing result.
func Ok() Result {
	return Result{Valid: true}
}

// Fail returns a failing result carrying the user-facing message.
func Fail(message string) Result {
	return Result{Valid: false, Message: message}
}

var (
	emailPattern      = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	mobilePattern     = regexp.MustCompile(`^[6-9]\d{9}$`)
	aadhaarPattern    = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}$|^\d{12}$`)
	percentagePattern = regexp.MustCompile(`^(100(\.0{1,2})?|[1-9]?\d(\.\d{1,2})?)$`)
	yearPattern       = regexp.MustCompile(`^\d{4}$`)
)

// Required checks for a non-blank value.
func Required(value, label string) Result {
	if strings.TrimSpace(value) == "" {
		return Fail(label + " is required")
	}
	return Ok()
}

// Email validates an email address.
func Email(value string) Result {
	if !emailPattern.MatchString(value) {
		return Fail("Please enter a valid email address")
	}
	return Ok()
}

// Mobile validates a 10-digit Indian mobile number starting 6-9.
func Mobile(value string) Result {
	if !mobilePattern.MatchString(value) {
		return Fail("Please enter a valid 10-digit mobile number")
	}
	return Ok()
}

// Aadhaar validates the national ID as XXXX-XXXX-XXXX or 12 plain digits.
func Aadhaar(value string) Result {
	if !aadhaarPattern.MatchString(value) {
		return Fail("Please enter a valid Aadhaar number format (XXXX-XXXX-XXXX or 12 digits)")
	}
	return Ok()
}

// Percentage validates a 0-100 value with at most two decimal places.
func Percentage(value string) Result {
	if !percentagePattern.MatchString(value) {
		return Fail("Please enter a valid percentage (0-100)")
	}
	return Ok()
}

// YearBetween validates a 4-digit year within [min, max] inclusive.
func YearBetween(value string, min, max int) Result {
	if !yearPattern.MatchString(value) {
		return Fail("Please enter a valid year")
	}
	year, err := strconv.Atoi(value)
	if err != nil || year < min || year > max {
		return Fail(fmt.Sprintf("Year must be between %d and %d", min, max))
	}
	return Ok()
}

// FileRule constrains an uploaded document.
type FileRule struct {
	MaxSize      int64
	ContentTypes []string
}

// File size limits per slot category.
const (
	MaxPhotoSize     = 1 << 20       // 1MB
	MaxSignatureSize = 500 << 10     // 500KB
	MaxDocumentSize  = 5 * (1 << 20) // 5MB
)

// ImageTypes are the MIME types accepted for photo and signature slots.
var ImageTypes = []string{"image/jpeg", "image/png"}

// DocumentTypes are the MIME types accepted for certificate slots.
var DocumentTypes = []string{"image/jpeg", "image/png", "application/pdf"}

// File validates an upload's size and MIME type against the rule.
func File(size int64, contentType string, rule FileRule) Result {
	if size <= 0 {
		return Fail("File is empty")
	}
	if rule.MaxSize > 0 && size > rule.MaxSize {
		return Fail(fmt.Sprintf("File exceeds the maximum size of %s", formatSize(rule.MaxSize)))
	}
	if len(rule.ContentTypes) > 0 {
		accepted := false
		for _, ct := range rule.ContentTypes {
			if strings.EqualFold(ct, contentType) {
				accepted = true
				break
			}
		}
		if !accepted {
			return Fail("File type is not accepted; upload a PDF, JPG or PNG")
		}
	}
	return Ok()
}

func formatSize(size int64) string {
	switch {
	case size >= 1<<20:
		return fmt.Sprintf("%dMB", size/(1<<20))
	case size >= 1<<10:
		return fmt.Sprintf("%dKB", size/(1<<10))
	default:
		return fmt.Sprintf("%d bytes", size)
	}
}
