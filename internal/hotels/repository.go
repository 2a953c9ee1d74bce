package hotels

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventory/backend/internal/models"
)

// Repository handles the hotel catalog. The catalog is global: no tenant
// scoping applies, and end users never write hotel rows through the API.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a hotels repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const hotelColumns = `id, name, formatted_address, latitude, longitude, rating,
	user_ratings_total, place_id, created_at, updated_at`

func scanHotel(row pgx.Row) (*models.Hotel, error) {
	var h models.Hotel
	err := row.Scan(&h.ID, &h.Name, &h.FormattedAddress, &h.Latitude, &h.Longitude,
		&h.Rating, &h.UserRatingsTotal, &h.PlaceID, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// Search returns hotels whose name or address contains the query,
// case-insensitive, capped at limit. Duplicates cannot occur: one row matches
// once regardless of how many fields hit.
func (r *Repository) Search(ctx context.Context, query string, limit int) ([]models.Hotel, error) {
	q := `SELECT ` + hotelColumns + ` FROM hotels
		WHERE name ILIKE $1 OR formatted_address ILIKE $1
		ORDER BY rating DESC NULLS LAST, name
		LIMIT $2`
	rows, err := r.pool.Query(ctx, q, likePattern(query), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Hotel
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *h)
	}
	return list, rows.Err()
}

// Count returns the catalog size.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM hotels`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// GetByID returns one hotel.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Hotel, error) {
	q := `SELECT ` + hotelColumns + ` FROM hotels WHERE id = $1`
	return scanHotel(r.pool.QueryRow(ctx, q, id))
}

// Upsert inserts or refreshes a hotel keyed by place_id. Used by the crawler
// and the places backfill, not exposed over HTTP.
func (r *Repository) Upsert(ctx context.Context, h *models.Hotel) error {
	q := `INSERT INTO hotels (name, formatted_address, latitude, longitude, rating, user_ratings_total, place_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (place_id) DO UPDATE SET
			name = EXCLUDED.name,
			formatted_address = EXCLUDED.formatted_address,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			rating = EXCLUDED.rating,
			user_ratings_total = EXCLUDED.user_ratings_total,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q,
		h.Name, h.FormattedAddress, h.Latitude, h.Longitude, h.Rating, h.UserRatingsTotal, h.PlaceID).
		Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt)
}

const roomTypeColumns = `id, hotel_id, room_type_name, COALESCE(description,''),
	max_occupancy, COALESCE(bed_type,''), amenities, price_per_night, created_at, updated_at`

func scanRoomType(row pgx.Row) (*models.HotelRoomType, error) {
	var rt models.HotelRoomType
	err := row.Scan(&rt.ID, &rt.HotelID, &rt.RoomTypeName, &rt.Description,
		&rt.MaxOccupancy, &rt.BedType, &rt.Amenities, &rt.PricePerNight, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

// ListRoomTypes returns the room types of a hotel.
func (r *Repository) ListRoomTypes(ctx context.Context, hotelID uuid.UUID) ([]models.HotelRoomType, error) {
	q := `SELECT ` + roomTypeColumns + ` FROM hotel_room_types
		WHERE hotel_id = $1 ORDER BY price_per_night, room_type_name`
	rows, err := r.pool.Query(ctx, q, hotelID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.HotelRoomType
	for rows.Next() {
		rt, err := scanRoomType(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *rt)
	}
	return list, rows.Err()
}

// RoomTypeParams holds the fields of a new room type.
type RoomTypeParams struct {
	RoomTypeName  string
	Description   string
	MaxOccupancy  int
	BedType       string
	Amenities     []string
	PricePerNight int
}

// CreateRoomType inserts one room type. The (hotel_id, room_type_name)
// uniqueness constraint makes repeated inserts conflict rather than duplicate.
func (r *Repository) CreateRoomType(ctx context.Context, hotelID uuid.UUID, params RoomTypeParams) (*models.HotelRoomType, error) {
	amenities := params.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	q := `INSERT INTO hotel_room_types (hotel_id, room_type_name, description, max_occupancy, bed_type, amenities, price_per_night)
		VALUES ($1, $2, NULLIF($3,''), $4, NULLIF($5,''), $6, $7)
		RETURNING ` + roomTypeColumns
	return scanRoomType(r.pool.QueryRow(ctx, q,
		hotelID, params.RoomTypeName, params.Description, params.MaxOccupancy,
		params.BedType, amenities, params.PricePerNight))
}

// SeedDefaultRoomTypes persists the default room type set for a hotel.
// Idempotent: ON CONFLICT DO NOTHING against the uniqueness constraint, so a
// second call leaves the table unchanged.
func (r *Repository) SeedDefaultRoomTypes(ctx context.Context, hotelID uuid.UUID) error {
	q := `INSERT INTO hotel_room_types (hotel_id, room_type_name, description, max_occupancy, bed_type, amenities, price_per_night)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (hotel_id, room_type_name) DO NOTHING`
	for _, rt := range DefaultRoomTypes() {
		_, err := r.pool.Exec(ctx, q,
			hotelID, rt.RoomTypeName, rt.Description, rt.MaxOccupancy, rt.BedType, rt.Amenities, rt.PricePerNight)
		if err != nil {
			return err
		}
	}
	return nil
}
