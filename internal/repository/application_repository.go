package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/collegeportal/admission-api/internal/models"
)

// ApplicationRepository stores submitted admission applications. Wizard
// slices live in JSONB columns; drafts never reach this table, only
// confirmed submissions do.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository creates a new instance of ApplicationRepository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

type applicationRow struct {
	ID          string         `db:"id"`
	UserID      string         `db:"user_id"`
	Status      string         `db:"status"`
	Personal    []byte         `db:"personal_details"`
	Educational []byte         `db:"educational_details"`
	Course      []byte         `db:"course_selection"`
	Documents   []byte         `db:"document_uploads"`
	Payment     []byte         `db:"payment_details"`
	Remarks     sql.NullString `db:"remarks"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

const applicationColumns = `id, user_id, status, personal_details, educational_details, course_selection, document_uploads, payment_details, remarks, created_at, updated_at`

func toRow(app *models.Application) (*applicationRow, error) {
	row := &applicationRow{
		ID:        app.ID,
		UserID:    app.UserID,
		Status:    string(app.Status),
		CreatedAt: app.CreatedAt,
		UpdatedAt: app.UpdatedAt,
	}
	if app.Remarks != "" {
		row.Remarks = sql.NullString{String: app.Remarks, Valid: true}
	}

	var err error
	if row.Personal, err = marshalSlice(app.PersonalDetails); err != nil {
		return nil, err
	}
	if row.Educational, err = marshalSlice(app.EducationalDetails); err != nil {
		return nil, err
	}
	if row.Course, err = marshalSlice(app.CourseSelection); err != nil {
		return nil, err
	}
	if row.Documents, err = marshalSlice(app.DocumentUploads); err != nil {
		return nil, err
	}
	if row.Payment, err = marshalSlice(app.PaymentDetails); err != nil {
		return nil, err
	}
	return row, nil
}

func marshalSlice(v interface{}) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal application slice: %w", err)
	}
	return data, nil
}

func (row *applicationRow) toModel() (*models.Application, error) {
	app := &models.Application{
		ID:        row.ID,
		UserID:    row.UserID,
		Status:    models.ApplicationStatus(row.Status),
		Remarks:   row.Remarks.String,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
	if err := unmarshalSlice(row.Personal, &app.PersonalDetails); err != nil {
		return nil, err
	}
	if err := unmarshalSlice(row.Educational, &app.EducationalDetails); err != nil {
		return nil, err
	}
	if err := unmarshalSlice(row.Course, &app.CourseSelection); err != nil {
		return nil, err
	}
	if err := unmarshalSlice(row.Documents, &app.DocumentUploads); err != nil {
		return nil, err
	}
	if err := unmarshalSlice(row.Payment, &app.PaymentDetails); err != nil {
		return nil, err
	}
	return app, nil
}

func unmarshalSlice(data []byte, dest interface{}) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal application slice: %w", err)
	}
	return nil
}

// Create inserts a submitted application.
func (r *ApplicationRepository) Create(ctx context.Context, app *models.Application) error {
	row, err := toRow(app)
	if err != nil {
		return err
	}
	const query = `INSERT INTO applications (id, user_id, status, personal_details, educational_details, course_selection, document_uploads, payment_details, remarks, created_at, updated_at) VALUES (:id, :user_id, :status, :personal_details, :educational_details, :course_selection, :document_uploads, :payment_details, :remarks, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

// FindByID returns an application by its display identifier.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE id = $1 LIMIT 1`, applicationColumns)
	var row applicationRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find application by id: %w", err)
	}
	return row.toModel()
}

// FindByUser returns the user's applications, newest first.
func (r *ApplicationRepository) FindByUser(ctx context.Context, userID string) ([]models.Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE user_id = $1 ORDER BY created_at DESC`, applicationColumns)
	var rows []applicationRow
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("find applications by user: %w", err)
	}
	apps := make([]models.Application, 0, len(rows))
	for i := range rows {
		app, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		apps = append(apps, *app)
	}
	return apps, nil
}

// List returns applications matching the filter with a total count.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, int, error) {
	baseQuery := `FROM applications WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, string(filter.Status))
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("course_selection->>'courseId' = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(id) LIKE $%d OR LOWER(personal_details->>'fullName') LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"status":     true,
		"id":         true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}

	sortOrder := strings.ToUpper(filter.SortOrder)
	if sortOrder != "ASC" && sortOrder != "DESC" {
		sortOrder = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", applicationColumns, baseQuery, sortBy, sortOrder, pageSize, offset)

	var rows []applicationRow
	if err := r.db.SelectContext(ctx, &rows, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}

	apps := make([]models.Application, 0, len(rows))
	for i := range rows {
		app, err := rows[i].toModel()
		if err != nil {
			return nil, 0, err
		}
		apps = append(apps, *app)
	}
	return apps, total, nil
}

// UpdateStatus moves an application through the review lifecycle.
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus, remarks string, ts time.Time) error {
	const query = `UPDATE applications SET status = $2, remarks = $3, updated_at = $4 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, string(status), remarks, ts)
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdatePayment records the payment outcome on a submitted application.
func (r *ApplicationRepository) UpdatePayment(ctx context.Context, id string, payment *models.PaymentDetails, ts time.Time) error {
	data, err := marshalSlice(payment)
	if err != nil {
		return err
	}
	const query = `UPDATE applications SET payment_details = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, data, ts)
	if err != nil {
		return fmt.Errorf("update application payment: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountSince returns how many applications were created at or after cutoff.
func (r *ApplicationRepository) CountSince(ctx context.Context, cutoff time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM applications WHERE created_at >= $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, cutoff); err != nil {
		return 0, fmt.Errorf("count recent applications: %w", err)
	}
	return total, nil
}

// CountByStatus returns how many applications sit in each lifecycle state.
func (r *ApplicationRepository) CountByStatus(ctx context.Context) (map[models.ApplicationStatus]int, error) {
	const query = `SELECT status, COUNT(*) AS total FROM applications GROUP BY status`
	rows, err := r.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count applications by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.ApplicationStatus]int)
	for rows.Next() {
		var status string
		var total int
		if err := rows.Scan(&status, &total); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[models.ApplicationStatus(status)] = total
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate status counts: %w", err)
	}
	return counts, nil
}
