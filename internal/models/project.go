package models

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ProjectStatus is the lifecycle state of a project (event).
type ProjectStatus string

const (
	StatusScheduled ProjectStatus = "SCHEDULED"
	StatusOngoing   ProjectStatus = "ONGOING"
	StatusCompleted ProjectStatus = "COMPLETED"
)

// Valid reports whether s is a known status. Transitions between statuses are
// not restricted; any agency owner may set any value.
func (s ProjectStatus) Valid() bool {
	return s == StatusScheduled || s == StatusOngoing || s == StatusCompleted
}

// LocationKind tags the Location variant.
type LocationKind string

const (
	// LocationFreeText is a plain venue string entered by the user.
	LocationFreeText LocationKind = "free_text"
	// LocationHotelBooking references a hotel and room type from the catalog.
	LocationHotelBooking LocationKind = "hotel_booking"
)

// Location is a tagged variant: either free text or a hotel booking.
// Stored as JSONB on the project row.
type Location struct {
	Kind       LocationKind `json:"kind"`
	Text       string       `json:"text,omitempty"`
	HotelID    *uuid.UUID   `json:"hotel_id,omitempty"`
	RoomTypeID *uuid.UUID   `json:"room_type_id,omitempty"`
}

var errInvalidLocation = errors.New("location: kind must be free_text or hotel_booking")

// Validate checks the variant carries the fields its kind requires.
func (l Location) Validate() error {
	switch l.Kind {
	case LocationFreeText:
		if l.Text == "" {
			return errors.New("location: free_text requires text")
		}
		if l.HotelID != nil || l.RoomTypeID != nil {
			return errors.New("location: free_text cannot reference a hotel")
		}
		return nil
	case LocationHotelBooking:
		if l.HotelID == nil {
			return errors.New("location: hotel_booking requires hotel_id")
		}
		if l.Text != "" {
			return errors.New("location: hotel_booking cannot carry text")
		}
		return nil
	default:
		return errInvalidLocation
	}
}

// UnmarshalJSON enforces the tag on decode so malformed variants never reach
// the database.
func (l *Location) UnmarshalJSON(data []byte) error {
	type alias Location
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*l = Location(a)
	return l.Validate()
}

// Project represents an event owned by exactly one agency.
type Project struct {
	ID          uuid.UUID     `json:"id"`
	AgencyID    uuid.UUID     `json:"agency_id"`
	Name        string        `json:"name"`
	Location    Location      `json:"location"`
	StartDate   time.Time     `json:"start_date"`
	EndDate     time.Time     `json:"end_date"`
	Status      ProjectStatus `json:"status"`
	Description string        `json:"description"`
	CreatedBy   uuid.UUID     `json:"created_by"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}
