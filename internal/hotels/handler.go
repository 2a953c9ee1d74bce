package hotels

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/eventory/backend/internal/authz"
	"github.com/eventory/backend/internal/models"
	"github.com/eventory/backend/internal/places"
	"github.com/eventory/backend/pkg/response"
)

// Store is the persistence surface the hotels handler needs.
type Store interface {
	Search(ctx context.Context, query string, limit int) ([]models.Hotel, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Hotel, error)
	Upsert(ctx context.Context, h *models.Hotel) error
	ListRoomTypes(ctx context.Context, hotelID uuid.UUID) ([]models.HotelRoomType, error)
	SeedDefaultRoomTypes(ctx context.Context, hotelID uuid.UUID) error
	CreateRoomType(ctx context.Context, hotelID uuid.UUID, params RoomTypeParams) (*models.HotelRoomType, error)
}

// MetadataSource looks up fresh hotel details from the Places API.
type MetadataSource interface {
	Details(ctx context.Context, placeID string) (*places.Place, error)
}

// Handler handles hotel catalog endpoints. The catalog is global: every
// authenticated user reads the same rows.
type Handler struct {
	store  Store
	meta   MetadataSource
	logger *zap.Logger
}

// NewHandler creates a hotels handler. meta may be a places client without an
// API key; metadata refresh then degrades to a no-op.
func NewHandler(store Store, meta MetadataSource, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, meta: meta, logger: logger}
}

// Search handles GET /hotels/search?q=. Queries shorter than two characters
// return an empty list rather than scanning the whole catalog.
func (h *Handler) Search(c *gin.Context) {
	q, ok := normalizeQuery(c.Query("q"))
	if !ok {
		response.OK(c, []models.Hotel{})
		return
	}
	list, err := h.store.Search(c.Request.Context(), q, maxResults)
	if err != nil {
		response.Internal(c, "failed to search hotels")
		return
	}
	if list == nil {
		list = []models.Hotel{}
	}
	response.OK(c, list)
}

// GetByID handles GET /hotels/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid hotel id")
		return
	}
	hotel, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "hotel not found")
			return
		}
		response.Internal(c, "failed to load hotel")
		return
	}
	response.OK(c, hotel)
}

// ListRoomTypes handles GET /hotels/:id/room-types. A hotel with no room
// types gets the default set seeded on first view; a later call returns the
// same rows instead of seeding again.
func (h *Handler) ListRoomTypes(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid hotel id")
		return
	}
	ctx := c.Request.Context()
	hotel, err := h.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "hotel not found")
			return
		}
		response.Internal(c, "failed to load hotel")
		return
	}
	list, err := h.store.ListRoomTypes(ctx, id)
	if err != nil {
		response.Internal(c, "failed to load room types")
		return
	}
	if len(list) == 0 {
		p := authz.MustPrincipal(c)
		if !authz.Allowed(p, authz.ActionInsert, authz.ResourceHotelRoomTypes, authz.Row{}) {
			response.Forbidden(c, "not allowed")
			return
		}
		h.refreshMetadata(ctx, hotel)
		if err := h.store.SeedDefaultRoomTypes(ctx, id); err != nil {
			response.Internal(c, "failed to seed room types")
			return
		}
		if list, err = h.store.ListRoomTypes(ctx, id); err != nil {
			response.Internal(c, "failed to load room types")
			return
		}
	}
	if list == nil {
		list = []models.HotelRoomType{}
	}
	response.OK(c, list)
}

// refreshMetadata backfills the catalog row from the Places API before the
// hotel gets its first room types. Best effort: an unkeyed client or a failed
// lookup leaves the stored row as is.
func (h *Handler) refreshMetadata(ctx context.Context, hotel *models.Hotel) {
	if h.meta == nil || hotel.PlaceID == "" {
		return
	}
	place, err := h.meta.Details(ctx, hotel.PlaceID)
	if err != nil {
		if !errors.Is(err, places.ErrDisabled) {
			h.logger.Warn("hotel metadata refresh failed",
				zap.String("place_id", hotel.PlaceID), zap.Error(err))
		}
		return
	}
	refreshed := FromPlace(*place)
	if err := h.store.Upsert(ctx, refreshed); err != nil {
		h.logger.Warn("hotel metadata upsert failed",
			zap.String("place_id", hotel.PlaceID), zap.Error(err))
	}
}

// CreateRoomTypeRequest is the body for POST /hotels/:id/room-types.
// price_per_night has no required tag: zero is a legitimate price
// (complimentary rooms) and required would reject it.
type CreateRoomTypeRequest struct {
	RoomTypeName  string   `json:"room_type_name" binding:"required"`
	Description   string   `json:"description"`
	MaxOccupancy  int      `json:"max_occupancy" binding:"required,min=1"`
	BedType       string   `json:"bed_type"`
	Amenities     []string `json:"amenities"`
	PricePerNight int      `json:"price_per_night" binding:"min=0"`
}

// CreateRoomType handles POST /hotels/:id/room-types.
func (h *Handler) CreateRoomType(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid hotel id")
		return
	}
	var req CreateRoomTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "room_type_name and max_occupancy are required")
		return
	}
	req.RoomTypeName = strings.TrimSpace(req.RoomTypeName)
	if req.RoomTypeName == "" {
		response.BadRequest(c, "room_type_name must not be blank")
		return
	}
	p := authz.MustPrincipal(c)
	if !authz.Allowed(p, authz.ActionInsert, authz.ResourceHotelRoomTypes, authz.Row{}) {
		response.Forbidden(c, "not allowed")
		return
	}
	ctx := c.Request.Context()
	if _, err := h.store.GetByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "hotel not found")
			return
		}
		response.Internal(c, "failed to load hotel")
		return
	}
	rt, err := h.store.CreateRoomType(ctx, id, RoomTypeParams{
		RoomTypeName:  req.RoomTypeName,
		Description:   req.Description,
		MaxOccupancy:  req.MaxOccupancy,
		BedType:       req.BedType,
		Amenities:     req.Amenities,
		PricePerNight: req.PricePerNight,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			response.Conflict(c, "room type already exists for this hotel")
			return
		}
		response.Internal(c, "failed to create room type")
		return
	}
	response.Created(c, rt)
}
