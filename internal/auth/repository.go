package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventory/backend/internal/models"
)

// ErrNoRole means the user exists but has no role row. Callers must treat the
// account as incomplete and deny authorization (fail closed), distinct from
// "not authenticated".
var ErrNoRole = errors.New("user has no role assigned")

// Repository handles user, role, and signup persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, username, password_hash, full_name,
	COALESCE(organization,''), COALESCE(position,''), COALESCE(phone,''),
	agency_id, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Password, &u.FullName,
		&u.Organization, &u.Position, &u.Phone, &u.AgencyID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID returns a user by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, q, id))
}

// GetByUsername returns a user by username.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.pool.QueryRow(ctx, q, username))
}

// RoleOf returns the user's role via single-row lookup. When an account holds
// more than one role row the oldest wins; the schema allows it, the signup
// flow never creates it.
func (r *Repository) RoleOf(ctx context.Context, userID uuid.UUID) (models.Role, error) {
	const q = `SELECT role FROM user_roles WHERE user_id = $1 ORDER BY created_at LIMIT 1`
	var role models.Role
	err := r.pool.QueryRow(ctx, q, userID).Scan(&role)
	if err == pgx.ErrNoRows {
		return "", ErrNoRole
	}
	if err != nil {
		return "", err
	}
	return role, nil
}

// SignupParams holds everything the signup transaction needs.
type SignupParams struct {
	Username     string
	PasswordHash string
	FullName     string
	Organization string
	Position     string
	Phone        string
	Role         models.Role
	AgencyName   string // ignored for MASTER
}

// Signup atomically creates the user, its role row, and — for AGENCY signups —
// a fresh agency the profile points at. MASTER signups get a nil agency.
func (r *Repository) Signup(ctx context.Context, p SignupParams) (*models.User, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin signup tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var agencyID *uuid.UUID
	if p.Role == models.RoleAgency {
		name := p.AgencyName
		if name == "" {
			name = p.Organization
		}
		if name == "" {
			name = p.FullName
		}
		var id uuid.UUID
		const agencyQ = `INSERT INTO agencies (name) VALUES ($1) RETURNING id`
		if err := tx.QueryRow(ctx, agencyQ, name).Scan(&id); err != nil {
			return nil, fmt.Errorf("create agency: %w", err)
		}
		agencyID = &id
	}

	const userQ = `INSERT INTO users (username, password_hash, full_name, organization, position, phone, agency_id)
		VALUES ($1, $2, $3, NULLIF($4,''), NULLIF($5,''), NULLIF($6,''), $7)
		RETURNING ` + userColumns
	u, err := scanUser(tx.QueryRow(ctx, userQ,
		p.Username, p.PasswordHash, p.FullName, p.Organization, p.Position, p.Phone, agencyID))
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	const roleQ = `INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`
	if _, err := tx.Exec(ctx, roleQ, u.ID, string(p.Role)); err != nil {
		return nil, fmt.Errorf("create role: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit signup tx: %w", err)
	}
	return u, nil
}

// UpdateProfile updates the user's own profile fields. Nil fields keep their
// current value.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, fullName, organization, position, phone *string) (*models.User, error) {
	const q = `UPDATE users SET
		full_name = COALESCE($2, full_name),
		organization = COALESCE($3, organization),
		position = COALESCE($4, position),
		phone = COALESCE($5, phone),
		updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, q, id, fullName, organization, position, phone))
}
