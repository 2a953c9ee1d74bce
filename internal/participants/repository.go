package participants

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventory/backend/internal/authz"
	"github.com/eventory/backend/internal/models"
)

// Repository handles participant persistence. agency_id on every row is
// derived from the owning project, never from a request.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a participants repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const participantColumns = `id, project_id, agency_id, full_name,
	COALESCE(email,''), COALESCE(phone,''), COALESCE(organization,''), COALESCE(position,''),
	created_at, updated_at`

func scanParticipant(row pgx.Row) (*models.Participant, error) {
	var pt models.Participant
	err := row.Scan(&pt.ID, &pt.ProjectID, &pt.AgencyID, &pt.FullName,
		&pt.Email, &pt.Phone, &pt.Organization, &pt.Position, &pt.CreatedAt, &pt.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &pt, nil
}

// ListByProject returns the roster for a project within the principal's scope.
func (r *Repository) ListByProject(ctx context.Context, p authz.Principal, projectID uuid.UUID) ([]models.Participant, error) {
	cond, args := authz.TenantCondition(p, "agency_id", 2)
	q := `SELECT ` + participantColumns + ` FROM participants
		WHERE project_id = $1 AND ` + cond + ` ORDER BY full_name`
	rows, err := r.pool.Query(ctx, q, append([]any{projectID}, args...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Participant
	for rows.Next() {
		pt, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *pt)
	}
	return list, rows.Err()
}

// CreateParams holds the client-suppliable participant fields.
type CreateParams struct {
	FullName     string
	Email        string
	Phone        string
	Organization string
	Position     string
}

// Create adds a participant to a project the principal's agency owns. The
// INSERT derives agency_id from the project row itself and matches nothing
// when the project belongs to another agency, so the caller sees
// pgx.ErrNoRows instead of a cross-tenant write.
func (r *Repository) Create(ctx context.Context, p authz.Principal, projectID uuid.UUID, params CreateParams) (*models.Participant, error) {
	if !authz.Allowed(p, authz.ActionInsert, authz.ResourceParticipants, authz.Row{AgencyID: p.AgencyID}) {
		return nil, authz.ErrDenied
	}
	q := `INSERT INTO participants (project_id, agency_id, full_name, email, phone, organization, position)
		SELECT pr.id, pr.agency_id, $3, NULLIF($4,''), NULLIF($5,''), NULLIF($6,''), NULLIF($7,'')
		FROM projects pr WHERE pr.id = $1 AND pr.agency_id = $2
		RETURNING ` + participantColumns
	return scanParticipant(r.pool.QueryRow(ctx, q,
		projectID, *p.AgencyID, params.FullName, params.Email, params.Phone, params.Organization, params.Position))
}

// UpdateParams holds the patchable fields; nil keeps the current value.
type UpdateParams struct {
	FullName     *string
	Email        *string
	Phone        *string
	Organization *string
	Position     *string
}

// Update patches a participant in the principal's own agency.
func (r *Repository) Update(ctx context.Context, p authz.Principal, id uuid.UUID, params UpdateParams) (*models.Participant, error) {
	if !authz.Allowed(p, authz.ActionUpdate, authz.ResourceParticipants, authz.Row{AgencyID: p.AgencyID}) {
		return nil, authz.ErrDenied
	}
	q := `UPDATE participants SET
		full_name = COALESCE($3, full_name),
		email = COALESCE($4, email),
		phone = COALESCE($5, phone),
		organization = COALESCE($6, organization),
		position = COALESCE($7, position),
		updated_at = NOW()
		WHERE id = $1 AND agency_id = $2
		RETURNING ` + participantColumns
	return scanParticipant(r.pool.QueryRow(ctx, q,
		id, *p.AgencyID, params.FullName, params.Email, params.Phone, params.Organization, params.Position))
}

// Delete removes a participant in the principal's own agency. Reports false
// for foreign or absent rows.
func (r *Repository) Delete(ctx context.Context, p authz.Principal, id uuid.UUID) (bool, error) {
	if !authz.Allowed(p, authz.ActionDelete, authz.ResourceParticipants, authz.Row{AgencyID: p.AgencyID}) {
		return false, authz.ErrDenied
	}
	tag, err := r.pool.Exec(ctx, `DELETE FROM participants WHERE id = $1 AND agency_id = $2`, id, *p.AgencyID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Count returns the number of participants within the principal's scope, for
// the dashboard.
func (r *Repository) Count(ctx context.Context, p authz.Principal) (int, error) {
	cond, args := authz.TenantCondition(p, "agency_id", 1)
	q := `SELECT COUNT(*) FROM participants WHERE ` + cond
	var n int
	err := r.pool.QueryRow(ctx, q, args...).Scan(&n)
	return n, err
}
