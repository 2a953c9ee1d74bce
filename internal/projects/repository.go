package projects

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventory/backend/internal/authz"
	"github.com/eventory/backend/internal/models"
)

// Repository handles project persistence. The principal is threaded into
// every call; tenant scoping comes from authz.TenantCondition and write
// permission from authz.Allowed, never from request payloads.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a projects repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const projectColumns = `id, agency_id, name, location, start_date, end_date, status,
	COALESCE(description,''), created_by, created_at, updated_at`

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	var loc []byte
	err := row.Scan(&p.ID, &p.AgencyID, &p.Name, &loc, &p.StartDate, &p.EndDate,
		&p.Status, &p.Description, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(loc, &p.Location); err != nil {
		return nil, fmt.Errorf("decode location: %w", err)
	}
	return &p, nil
}

// List returns projects visible to the principal, newest start date first.
func (r *Repository) List(ctx context.Context, p authz.Principal) ([]models.Project, error) {
	cond, args := authz.TenantCondition(p, "agency_id", 1)
	q := `SELECT ` + projectColumns + ` FROM projects WHERE ` + cond + ` ORDER BY start_date DESC`
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Project
	for rows.Next() {
		proj, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *proj)
	}
	return list, rows.Err()
}

// GetByID returns one project. Rows outside the principal's scope behave as
// absent, the same way a row policy would hide them.
func (r *Repository) GetByID(ctx context.Context, p authz.Principal, id uuid.UUID) (*models.Project, error) {
	cond, args := authz.TenantCondition(p, "agency_id", 2)
	q := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1 AND ` + cond
	return scanProject(r.pool.QueryRow(ctx, q, append([]any{id}, args...)...))
}

// CreateParams holds the client-suppliable fields of a new project. The
// owning agency is never among them.
type CreateParams struct {
	Name        string
	Location    models.Location
	StartDate   time.Time
	EndDate     time.Time
	Status      models.ProjectStatus
	Description string
}

// Create inserts a project owned by the principal's agency.
func (r *Repository) Create(ctx context.Context, p authz.Principal, params CreateParams) (*models.Project, error) {
	if !authz.Allowed(p, authz.ActionInsert, authz.ResourceProjects, authz.Row{AgencyID: p.AgencyID}) {
		return nil, authz.ErrDenied
	}
	loc, err := json.Marshal(params.Location)
	if err != nil {
		return nil, fmt.Errorf("encode location: %w", err)
	}
	q := `INSERT INTO projects (agency_id, name, location, start_date, end_date, status, description, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7,''), $8)
		RETURNING ` + projectColumns
	return scanProject(r.pool.QueryRow(ctx, q,
		*p.AgencyID, params.Name, loc, params.StartDate, params.EndDate,
		string(params.Status), params.Description, p.UserID))
}

// UpdateParams holds the patchable fields; nil keeps the current value.
type UpdateParams struct {
	Name        *string
	Location    *models.Location
	StartDate   *time.Time
	EndDate     *time.Time
	Status      *models.ProjectStatus
	Description *string
}

// Update patches a project in the principal's own agency. Foreign rows are
// not matched; the caller sees pgx.ErrNoRows.
func (r *Repository) Update(ctx context.Context, p authz.Principal, id uuid.UUID, params UpdateParams) (*models.Project, error) {
	if !authz.Allowed(p, authz.ActionUpdate, authz.ResourceProjects, authz.Row{AgencyID: p.AgencyID}) {
		return nil, authz.ErrDenied
	}
	var loc []byte
	if params.Location != nil {
		var err error
		loc, err = json.Marshal(params.Location)
		if err != nil {
			return nil, fmt.Errorf("encode location: %w", err)
		}
	}
	var status *string
	if params.Status != nil {
		s := string(*params.Status)
		status = &s
	}
	q := `UPDATE projects SET
		name = COALESCE($3, name),
		location = COALESCE($4::jsonb, location),
		start_date = COALESCE($5, start_date),
		end_date = COALESCE($6, end_date),
		status = COALESCE($7, status),
		description = COALESCE($8, description),
		updated_at = NOW()
		WHERE id = $1 AND agency_id = $2
		RETURNING ` + projectColumns
	return scanProject(r.pool.QueryRow(ctx, q,
		id, *p.AgencyID, params.Name, loc, params.StartDate, params.EndDate, status, params.Description))
}

// Delete removes a project in the principal's own agency; participants go
// with it via the FK cascade. Deleting a foreign or absent row reports false.
func (r *Repository) Delete(ctx context.Context, p authz.Principal, id uuid.UUID) (bool, error) {
	if !authz.Allowed(p, authz.ActionDelete, authz.ResourceProjects, authz.Row{AgencyID: p.AgencyID}) {
		return false, authz.ErrDenied
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM projects WHERE id = $1 AND agency_id = $2`, id, *p.AgencyID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CountByStatus returns project counts per status within the principal's
// scope, for the dashboard.
func (r *Repository) CountByStatus(ctx context.Context, p authz.Principal) (map[models.ProjectStatus]int, error) {
	cond, args := authz.TenantCondition(p, "agency_id", 1)
	q := `SELECT status, COUNT(*) FROM projects WHERE ` + cond + ` GROUP BY status`
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := make(map[models.ProjectStatus]int)
	for rows.Next() {
		var status models.ProjectStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
