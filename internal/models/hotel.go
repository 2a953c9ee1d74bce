package models

import (
	"time"

	"github.com/google/uuid"
)

// Hotel is a catalog entry. Globally readable, never tenant-scoped; rows are
// seeded by the crawler, not written by end users.
type Hotel struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	FormattedAddress string    `json:"formatted_address"`
	Latitude         *float64  `json:"latitude,omitempty"`
	Longitude        *float64  `json:"longitude,omitempty"`
	Rating           *float64  `json:"rating,omitempty"`
	UserRatingsTotal int       `json:"user_ratings_total"`
	PlaceID          string    `json:"place_id"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// HotelRoomType describes a bookable room category, unique per
// (hotel_id, room_type_name).
type HotelRoomType struct {
	ID            uuid.UUID `json:"id"`
	HotelID       uuid.UUID `json:"hotel_id"`
	RoomTypeName  string    `json:"room_type_name"`
	Description   string    `json:"description"`
	MaxOccupancy  int       `json:"max_occupancy"`
	BedType       string    `json:"bed_type"`
	Amenities     []string  `json:"amenities"`
	PricePerNight int       `json:"price_per_night"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
