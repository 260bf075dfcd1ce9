package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequired(t *testing.T) {
	assert.True(t, Required("Priya", "Full name").Valid)
	assert.False(t, Required("", "Full name").Valid)
	assert.False(t, Required("   ", "Full name").Valid)
	assert.Equal(t, "Full name is required", Required("", "Full name").Message)
}

func TestEmail(t *testing.T) {
	tests := []struct {
		value string
		valid bool
	}{
		{"priya@example.com", true},
		{"p.sharma+tag@college.edu.in", true},
		{"priya@example", false},
		{"@example.com", false},
		{"priya example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.valid, Email(tt.value).Valid)
		})
	}
}

func TestMobile(t *testing.T) {
	tests := []struct {
		value string
		valid bool
	}{
		{"9876543210", true},
		{"6000000000", true},
		{"5876543210", false},
		{"987654321", false},
		{"98765432100", false},
		{"98765 43210", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.valid, Mobile(tt.value).Valid)
		})
	}
}

func TestAadhaar(t *testing.T) {
	tests := []struct {
		value string
		valid bool
	}{
		{"1234-5678-9012", true},
		{"123456789012", true},
		{"1234 5678 9012", false},
		{"1234-5678-901", false},
		{"12345678901", false},
		{"1234567890123", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.valid, Aadhaar(tt.value).Valid)
		})
	}
}

func TestPercentage(t *testing.T) {
	tests := []struct {
		value string
		valid bool
	}{
		{"85.50", true},
		{"100", true},
		{"100.00", true},
		{"0", true},
		{"99.99", true},
		{"100.5", false},
		{"105", false},
		{"-1", false},
		{"85.505", false},
		{"abc", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.valid, Percentage(tt.value).Valid)
		})
	}
}

func TestYearBetween(t *testing.T) {
	assert.True(t, YearBetween("2024", 2016, 2026).Valid)
	assert.True(t, YearBetween("2016", 2016, 2026).Valid)
	assert.True(t, YearBetween("2026", 2016, 2026).Valid)
	assert.False(t, YearBetween("2015", 2016, 2026).Valid)
	assert.False(t, YearBetween("2027", 2016, 2026).Valid)
	assert.False(t, YearBetween("24", 2016, 2026).Valid)
	assert.False(t, YearBetween("twenty", 2016, 2026).Valid)
}

func TestFileSizeBoundaries(t *testing.T) {
	photoRule := FileRule{MaxSize: MaxPhotoSize, ContentTypes: ImageTypes}
	assert.True(t, File(MaxPhotoSize, "image/jpeg", photoRule).Valid)
	assert.False(t, File(MaxPhotoSize+1, "image/jpeg", photoRule).Valid)
	assert.Equal(t, "File exceeds the maximum size of 1MB", File(MaxPhotoSize+1, "image/jpeg", photoRule).Message)

	signatureRule := FileRule{MaxSize: MaxSignatureSize, ContentTypes: ImageTypes}
	assert.True(t, File(MaxSignatureSize, "image/png", signatureRule).Valid)
	assert.False(t, File(MaxSignatureSize+1, "image/png", signatureRule).Valid)
	assert.Equal(t, "File exceeds the maximum size of 500KB", File(MaxSignatureSize+1, "image/png", signatureRule).Message)

	documentRule := FileRule{MaxSize: MaxDocumentSize, ContentTypes: DocumentTypes}
	assert.True(t, File(MaxDocumentSize, "application/pdf", documentRule).Valid)
	assert.False(t, File(MaxDocumentSize+1, "application/pdf", documentRule).Valid)
}

func TestFileContentTypes(t *testing.T) {
	photoRule := FileRule{MaxSize: MaxPhotoSize, ContentTypes: ImageTypes}
	assert.True(t, File(1024, "IMAGE/JPEG", photoRule).Valid)
	assert.False(t, File(1024, "application/pdf", photoRule).Valid)
	assert.False(t, File(1024, "image/gif", photoRule).Valid)

	documentRule := FileRule{MaxSize: MaxDocumentSize, ContentTypes: DocumentTypes}
	assert.True(t, File(1024, "application/pdf", documentRule).Valid)

	assert.False(t, File(0, "image/jpeg", photoRule).Valid)
	assert.Equal(t, "File is empty", File(0, "image/jpeg", photoRule).Message)
}
