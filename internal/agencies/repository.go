package agencies

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventory/backend/internal/authz"
	"github.com/eventory/backend/internal/models"
)

// Repository handles agency persistence. Every method takes the resolved
// principal; row scoping and write checks live in authz, not here.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an agencies repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// List returns the agencies the principal may see: all of them for MASTER,
// only its own for AGENCY.
func (r *Repository) List(ctx context.Context, p authz.Principal) ([]models.Agency, error) {
	cond, args := authz.TenantCondition(p, "id", 1)
	q := `SELECT id, name, created_at, updated_at FROM agencies WHERE ` + cond + ` ORDER BY name`
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Agency
	for rows.Next() {
		var a models.Agency
		if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// Count returns how many agencies the principal may see.
func (r *Repository) Count(ctx context.Context, p authz.Principal) (int, error) {
	cond, args := authz.TenantCondition(p, "id", 1)
	q := `SELECT COUNT(*) FROM agencies WHERE ` + cond
	var n int
	if err := r.pool.QueryRow(ctx, q, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// GetByID returns one agency if the principal may read it.
func (r *Repository) GetByID(ctx context.Context, p authz.Principal, id uuid.UUID) (*models.Agency, error) {
	if !authz.Allowed(p, authz.ActionSelect, authz.ResourceAgencies, authz.Row{AgencyID: &id}) {
		return nil, authz.ErrDenied
	}
	const q = `SELECT id, name, created_at, updated_at FROM agencies WHERE id = $1`
	var a models.Agency
	if err := r.pool.QueryRow(ctx, q, id).Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

// Update renames an agency. Only the owning AGENCY principal may write.
func (r *Repository) Update(ctx context.Context, p authz.Principal, id uuid.UUID, name string) (*models.Agency, error) {
	if !authz.Allowed(p, authz.ActionUpdate, authz.ResourceAgencies, authz.Row{AgencyID: &id}) {
		return nil, authz.ErrDenied
	}
	const q = `UPDATE agencies SET name = $2, updated_at = NOW() WHERE id = $1
		RETURNING id, name, created_at, updated_at`
	var a models.Agency
	if err := r.pool.QueryRow(ctx, q, id, name).Scan(&a.ID, &a.Name, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}
