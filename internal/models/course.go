package models

import "github.com/shopspring/decimal"

// Course describes a catalog entry. The catalog is read-only reference data
// seeded at startup.
type Course struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Degree          string          `json:"degree"`
	Duration        string          `json:"duration"`
	Fees            decimal.Decimal `json:"fees"`
	Description     string          `json:"description"`
	Eligibility     string          `json:"eligibility"`
	Seats           int             `json:"seats"`
	Specializations []string        `json:"specializations,omitempty"`
}

// HasSpecializations reports whether choosing this course requires picking a
// specialization in the wizard.
func (c Course) HasSpecializations() bool {
	return len(c.Specializations) > 0
}

// HasSpecialization reports whether the named specialization is offered.
func (c Course) HasSpecialization(name string) bool {
	for _, s := range c.Specializations {
		if s == name {
			return true
		}
	}
	return false
}

// Announcement is a notice shown on the portal home page.
type Announcement struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	Content   string `json:"content"`
	Important bool   `json:"important"`
}

// ImportantDate is an admission calendar milestone.
type ImportantDate struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	Description string `json:"description"`
}
