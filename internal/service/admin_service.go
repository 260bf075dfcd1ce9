package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/collegeportal/admission-api/internal/dto"
	"github.com/collegeportal/admission-api/internal/models"
	appErrors "github.com/collegeportal/admission-api/pkg/errors"
	"github.com/collegeportal/admission-api/pkg/export"
)

// ExportFormat names the register export encodings.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
	ExportPDF  ExportFormat = "pdf"
)

// statusTransitions lists the review moves the office may make. Drafts never
// reach the register, and approved/rejected are terminal.
var statusTransitions = map[models.ApplicationStatus][]models.ApplicationStatus{
	models.StatusSubmitted:   {models.StatusUnderReview, models.StatusApproved, models.StatusRejected},
	models.StatusUnderReview: {models.StatusApproved, models.StatusRejected},
}

type adminApplicationRepository interface {
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error)
	FindByID(ctx context.Context, id string) (*models.Application, error)
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus, remarks string, ts time.Time) error
	CountByStatus(ctx context.Context) (map[models.ApplicationStatus]int, error)
	CountSince(ctx context.Context, cutoff time.Time) (int, error)
}

// AdminService serves the admissions office: the register, the review
// lifecycle, the dashboard and file exports.
type AdminService struct {
	apps      adminApplicationRepository
	courses   admissionCourseCatalog
	audit     admissionAuditor
	validator *validator.Validate
	logger    *zap.Logger
	csv       *export.CSVExporter
	xlsx      *export.XLSXExporter
	pdf       *export.PDFExporter
	academic  string
	now       func() time.Time
}

// NewAdminService constructs an AdminService.
func NewAdminService(apps adminApplicationRepository, courses admissionCourseCatalog, audit admissionAuditor, validate *validator.Validate, logger *zap.Logger, academicYear string) *AdminService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		apps:      apps,
		courses:   courses,
		audit:     audit,
		validator: validate,
		logger:    logger,
		csv:       export.NewCSVExporter(),
		xlsx:      export.NewXLSXExporter(),
		pdf:       export.NewPDFExporter(),
		academic:  academicYear,
		now:       time.Now,
	}
}

// ListApplications returns a filtered, paginated page of the register.
func (s *AdminService) ListApplications(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, *models.Pagination, error) {
	apps, total, err := s.apps.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	return apps, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// GetApplication loads one application with its course resolved.
func (s *AdminService) GetApplication(ctx context.Context, id string) (*models.Application, *models.Course, error) {
	app, err := s.apps.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	var course *models.Course
	if app.CourseSelection != nil && app.CourseSelection.CourseID != "" {
		course, err = s.courses.FindByID(ctx, app.CourseSelection.CourseID)
		if err != nil {
			s.logger.Warn("failed to resolve course for application",
				zap.String("application_id", app.ID), zap.Error(err))
		}
	}
	return app, course, nil
}

// UpdateStatus moves an application through the review lifecycle. Only the
// transitions in statusTransitions are allowed.
func (s *AdminService) UpdateStatus(ctx context.Context, id string, req dto.StatusUpdateRequest, actorID, ip, userAgent string) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}

	app, err := s.apps.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	if !transitionAllowed(app.Status, req.Status) {
		return nil, appErrors.New("INVALID_TRANSITION", 422,
			fmt.Sprintf("cannot move an application from %s to %s", app.Status, req.Status))
	}

	ts := s.now().UTC()
	if err := s.apps.UpdateStatus(ctx, id, req.Status, req.Remarks, ts); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application status")
	}

	s.recordStatusAudit(ctx, actorID, app.ID, app.Status, req.Status, ip, userAgent)
	s.logger.Info("application status updated",
		zap.String("application_id", app.ID),
		zap.String("from", string(app.Status)),
		zap.String("to", string(req.Status)))

	app.Status = req.Status
	app.Remarks = req.Remarks
	app.UpdatedAt = ts
	return app, nil
}

// Dashboard summarises the register for the admissions office.
func (s *AdminService) Dashboard(ctx context.Context) (*dto.DashboardResponse, error) {
	counts, err := s.apps.CountByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count applications")
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	recent, err := s.apps.CountSince(ctx, s.now().Add(-7*24*time.Hour).UTC())
	if err != nil {
		s.logger.Warn("failed to count recent applications", zap.Error(err))
	}
	return &dto.DashboardResponse{
		Total:        total,
		ByStatus:     counts,
		RecentCount:  recent,
		GeneratedAt:  s.now().UTC(),
		AcademicYear: s.academic,
	}, nil
}

// Export renders the filtered register in the requested format. The filter's
// pagination is overridden so the export always covers every match.
func (s *AdminService) Export(ctx context.Context, filter models.ApplicationFilter, format ExportFormat) ([]byte, string, string, error) {
	filter.Page = 1
	filter.PageSize = 10000
	apps, _, err := s.apps.List(ctx, filter)
	if err != nil {
		return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications for export")
	}

	data := s.buildDataset(ctx, apps)
	title := "Admission Applications"
	stamp := s.now().Format("20060102-150405")

	switch format {
	case ExportCSV:
		b, err := s.csv.Render(data)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render CSV export")
		}
		return b, fmt.Sprintf("applications-%s.csv", stamp), "text/csv", nil
	case ExportXLSX:
		b, err := s.xlsx.Render(data, title)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render XLSX export")
		}
		return b, fmt.Sprintf("applications-%s.xlsx", stamp), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
	case ExportPDF:
		b, err := s.pdf.Render(data, title)
		if err != nil {
			return nil, "", "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render PDF export")
		}
		return b, fmt.Sprintf("applications-%s.pdf", stamp), "application/pdf", nil
	default:
		return nil, "", "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format; use csv, xlsx or pdf")
	}
}

func (s *AdminService) buildDataset(ctx context.Context, apps []models.Application) export.Dataset {
	courseNames := map[string]string{}
	data := export.Dataset{
		Headers: []string{"ID", "Name", "Course", "Status", "Percentage", "Mobile", "Email", "Created"},
	}
	for _, app := range apps {
		row := map[string]string{
			"ID":      app.ID,
			"Status":  string(app.Status),
			"Created": app.CreatedAt.Format("2006-01-02 15:04"),
		}
		if app.PersonalDetails != nil {
			row["Name"] = app.PersonalDetails.FullName
			row["Mobile"] = app.PersonalDetails.MobileNumber
			row["Email"] = app.PersonalDetails.Email
		}
		if app.EducationalDetails != nil {
			row["Percentage"] = app.EducationalDetails.Percentage
		}
		if app.CourseSelection != nil && app.CourseSelection.CourseID != "" {
			id := app.CourseSelection.CourseID
			name, ok := courseNames[id]
			if !ok {
				if course, err := s.courses.FindByID(ctx, id); err == nil && course != nil {
					name = course.Name
				} else {
					name = id
				}
				courseNames[id] = name
			}
			if app.CourseSelection.Specialization != "" {
				name = name + " (" + app.CourseSelection.Specialization + ")"
			}
			row["Course"] = name
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}

func (s *AdminService) recordStatusAudit(ctx context.Context, actorID, appID string, from, to models.ApplicationStatus, ip, userAgent string) {
	oldValues, _ := json.Marshal(map[string]string{"status": string(from)})
	newValues, _ := json.Marshal(map[string]string{"status": string(to)})
	if err := s.audit.CreateAuditLog(ctx, &models.AuditLog{
		UserID:     &actorID,
		Action:     models.AuditActionStatusChange,
		Resource:   "application",
		ResourceID: &appID,
		OldValues:  oldValues,
		NewValues:  newValues,
		IPAddress:  ip,
		UserAgent:  userAgent,
	}); err != nil {
		s.logger.Warn("failed to record audit log", zap.String("action", models.AuditActionStatusChange), zap.Error(err))
	}
}

func transitionAllowed(from, to models.ApplicationStatus) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ParseExportFormat normalises a query parameter into an ExportFormat.
func ParseExportFormat(raw string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(raw))) {
	case ExportCSV, "":
		return ExportCSV, nil
	case ExportXLSX:
		return ExportXLSX, nil
	case ExportPDF:
		return ExportPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format; use csv, xlsx or pdf")
	}
}
