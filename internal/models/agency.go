package models

import (
	"time"

	"github.com/google/uuid"
)

// Agency represents a tenant organization. Every project and participant row
// is scoped to exactly one agency.
type Agency struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
