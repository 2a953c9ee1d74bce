package models

import (
	"time"

	"github.com/google/uuid"
)

// Participant represents a roster entry for a project. AgencyID mirrors the
// owning project's agency so row policies stay symmetric with projects.
type Participant struct {
	ID           uuid.UUID `json:"id"`
	ProjectID    uuid.UUID `json:"project_id"`
	AgencyID     uuid.UUID `json:"agency_id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	Organization string    `json:"organization"`
	Position     string    `json:"position"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
