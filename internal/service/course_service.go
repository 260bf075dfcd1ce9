package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/collegeportal/admission-api/internal/models"
	appErrors "github.com/collegeportal/admission-api/pkg/errors"
)

type courseCatalog interface {
	List(ctx context.Context) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Announcements(ctx context.Context) ([]models.Announcement, error)
	ImportantDates(ctx context.Context) ([]models.ImportantDate, error)
}

// CourseService exposes the public catalog, announcements and admission
// calendar.
type CourseService struct {
	catalog courseCatalog
	logger  *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(catalog courseCatalog, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{catalog: catalog, logger: logger}
}

// List returns every course in the catalog.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	courses, err := s.catalog.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// Get returns one course by id.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.catalog.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	if course == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
	}
	return course, nil
}

// Announcements returns the portal notices.
func (s *CourseService) Announcements(ctx context.Context) ([]models.Announcement, error) {
	announcements, err := s.catalog.Announcements(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list announcements")
	}
	return announcements, nil
}

// ImportantDates returns the admission calendar.
func (s *CourseService) ImportantDates(ctx context.Context) ([]models.ImportantDate, error) {
	dates, err := s.catalog.ImportantDates(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list important dates")
	}
	return dates, nil
}
