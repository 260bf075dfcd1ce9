package repository

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/collegeportal/admission-api/internal/models"
)

// CourseRepository serves the read-only course catalog, announcements and
// admission calendar. The data is reference material fixed per academic year
// and seeded at construction, so it lives in memory rather than a table.
type CourseRepository struct {
	courses        map[string]models.Course
	order          []string
	announcements  []models.Announcement
	importantDates []models.ImportantDate
}

// NewCourseRepository builds the repository with the default catalog.
func NewCourseRepository() *CourseRepository {
	return newCourseRepositoryWith(defaultCourses(), defaultAnnouncements(), defaultImportantDates())
}

func newCourseRepositoryWith(courses []models.Course, announcements []models.Announcement, dates []models.ImportantDate) *CourseRepository {
	r := &CourseRepository{
		courses:        make(map[string]models.Course, len(courses)),
		announcements:  announcements,
		importantDates: dates,
	}
	for _, c := range courses {
		r.courses[c.ID] = c
		r.order = append(r.order, c.ID)
	}
	sort.Strings(r.order)
	return r
}

// List returns the catalog in display order.
func (r *CourseRepository) List(ctx context.Context) ([]models.Course, error) {
	courses := make([]models.Course, 0, len(r.order))
	for _, id := range r.order {
		courses = append(courses, r.courses[id])
	}
	return courses, nil
}

// FindByID returns one catalog entry, or nil when the id is unknown.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	course, ok := r.courses[id]
	if !ok {
		return nil, nil
	}
	return &course, nil
}

// Announcements returns the portal notices, important ones first.
func (r *CourseRepository) Announcements(ctx context.Context) ([]models.Announcement, error) {
	out := make([]models.Announcement, len(r.announcements))
	copy(out, r.announcements)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Important && !out[j].Important
	})
	return out, nil
}

// ImportantDates returns the admission calendar in chronological order.
func (r *CourseRepository) ImportantDates(ctx context.Context) ([]models.ImportantDate, error) {
	out := make([]models.ImportantDate, len(r.importantDates))
	copy(out, r.importantDates)
	return out, nil
}

func defaultCourses() []models.Course {
	return []models.Course{
		{
			ID:          "1",
			Name:        "Bachelor of Arts",
			Degree:      "B.A.",
			Duration:    "3 Years",
			Fees:        decimal.NewFromInt(25000),
			Description: "A comprehensive arts program covering humanities, social sciences, and languages. Students develop critical thinking, analytical skills, and cultural awareness through diverse coursework.",
			Eligibility: "Minimum 50% in 12th standard from any recognized board",
			Seats:       120,
		},
		{
			ID:          "2",
			Name:        "Bachelor of Science",
			Degree:      "B.Sc.",
			Duration:    "3 Years",
			Fees:        decimal.NewFromInt(30000),
			Description: "A rigorous science program with specializations in Physics, Chemistry, Biology, Mathematics, and Computer Science. Strong emphasis on practical laboratory work and research methodology.",
			Eligibility: "Minimum 55% in 12th standard with Science stream",
			Seats:       90,
		},
		{
			ID:          "3",
			Name:        "Bachelor of Commerce",
			Degree:      "B.Com.",
			Duration:    "3 Years",
			Fees:        decimal.NewFromInt(28000),
			Description: "A business-focused program covering accounting, economics, business law, and management principles. Prepares students for careers in finance, accounting, and business administration.",
			Eligibility: "Minimum 50% in 12th standard from any recognized board",
			Seats:       150,
		},
		{
			ID:              "4",
			Name:            "Bachelor of Technology",
			Degree:          "B.Tech.",
			Duration:        "4 Years",
			Fees:            decimal.NewFromInt(85000),
			Description:     "A comprehensive engineering program with specializations in Computer Science, Electronics, Mechanical, and Civil Engineering. Includes industry internships and capstone projects.",
			Eligibility:     "Minimum 60% in 12th standard with PCM/PCB and qualifying entrance exam",
			Seats:           60,
			Specializations: []string{"Computer Science", "Electronics", "Mechanical", "Civil"},
		},
		{
			ID:          "5",
			Name:        "Bachelor of Business Administration",
			Degree:      "BBA",
			Duration:    "3 Years",
			Fees:        decimal.NewFromInt(45000),
			Description: "A management-focused program that develops leadership, entrepreneurship, and business strategy skills. Includes case studies, business simulations, and industry projects.",
			Eligibility: "Minimum 55% in 12th standard from any recognized board",
			Seats:       60,
		},
		{
			ID:          "6",
			Name:        "Bachelor of Computer Applications",
			Degree:      "BCA",
			Duration:    "3 Years",
			Fees:        decimal.NewFromInt(40000),
			Description: "A technical program focused on computer applications, programming languages, database management, and software development methodologies.",
			Eligibility: "Minimum 50% in 12th standard with Mathematics",
			Seats:       90,
		},
	}
}

func defaultAnnouncements() []models.Announcement {
	return []models.Announcement{
		{
			ID:        "1",
			Title:     "Admission Open for Academic Year 2025-26",
			Date:      "2025-03-15",
			Content:   "Applications are now being accepted for all undergraduate programs for the academic year 2025-26. Apply online through our admission portal.",
			Important: true,
		},
		{
			ID:        "2",
			Title:     "Scholarship Program for Meritorious Students",
			Date:      "2025-03-20",
			Content:   "The college is offering scholarships to students who have scored above 90% in their 12th standard examinations. See eligibility details on the scholarship page.",
			Important: true,
		},
		{
			ID:      "3",
			Title:   "New B.Tech Specialization in AI and Machine Learning",
			Date:    "2025-03-22",
			Content: "We are excited to announce a new specialization in Artificial Intelligence and Machine Learning for B.Tech students starting this academic year.",
		},
		{
			ID:      "4",
			Title:   "Campus Tour for Prospective Students",
			Date:    "2025-04-05",
			Content: "Join us for a guided campus tour on April 5th, 2025. Register online to secure your spot.",
		},
	}
}

func defaultImportantDates() []models.ImportantDate {
	return []models.ImportantDate{
		{ID: "1", Title: "Application Submission Deadline", Date: "2025-06-15", Description: "Last date to submit admission applications for all undergraduate programs"},
		{ID: "2", Title: "Entrance Examination", Date: "2025-06-25", Description: "Entrance examination for B.Tech and other technical courses"},
		{ID: "3", Title: "Document Verification", Date: "2025-07-05 - 2025-07-15", Description: "Physical verification of documents for shortlisted candidates"},
		{ID: "4", Title: "First Merit List", Date: "2025-07-20", Description: "Announcement of first merit list for all programs"},
		{ID: "5", Title: "Fee Payment Deadline (First Merit List)", Date: "2025-07-30", Description: "Last date for fee payment for students in the first merit list"},
		{ID: "6", Title: "Second Merit List", Date: "2025-08-05", Description: "Announcement of second merit list (if seats available)"},
		{ID: "7", Title: "Orientation Program", Date: "2025-08-25", Description: "Orientation program for newly admitted students"},
		{ID: "8", Title: "Commencement of Classes", Date: "2025-09-01", Description: "First day of classes for the academic year 2025-26"},
	}
}
