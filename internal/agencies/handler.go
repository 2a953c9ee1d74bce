package agencies

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eventory/backend/internal/authz"
	"github.com/eventory/backend/internal/models"
	"github.com/eventory/backend/pkg/response"
)

// Store is the persistence surface the agencies handler needs.
type Store interface {
	List(ctx context.Context, p authz.Principal) ([]models.Agency, error)
	GetByID(ctx context.Context, p authz.Principal, id uuid.UUID) (*models.Agency, error)
	Update(ctx context.Context, p authz.Principal, id uuid.UUID, name string) (*models.Agency, error)
}

// Handler handles agency HTTP endpoints.
type Handler struct {
	store Store
}

// NewHandler creates an agencies handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// List handles GET /agencies. MASTER sees every agency, AGENCY only its own.
func (h *Handler) List(c *gin.Context) {
	p := authz.MustPrincipal(c)
	list, err := h.store.List(c.Request.Context(), p)
	if err != nil {
		response.Internal(c, "failed to load agencies")
		return
	}
	if list == nil {
		list = []models.Agency{}
	}
	response.OK(c, list)
}

// GetByID handles GET /agencies/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid agency id")
		return
	}
	p := authz.MustPrincipal(c)
	agency, err := h.store.GetByID(c.Request.Context(), p, id)
	if err != nil {
		if errors.Is(err, authz.ErrDenied) {
			response.Forbidden(c, "not allowed")
			return
		}
		response.NotFound(c, "agency not found")
		return
	}
	response.OK(c, agency)
}

// UpdateRequest is the body for PATCH /agencies/:id.
type UpdateRequest struct {
	Name string `json:"name" binding:"required"`
}

// Update handles PATCH /agencies/:id. Own row only.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid agency id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name required")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > 255 {
		response.BadRequest(c, "name must be 1-255 characters")
		return
	}
	p := authz.MustPrincipal(c)
	agency, err := h.store.Update(c.Request.Context(), p, id, name)
	if err != nil {
		if errors.Is(err, authz.ErrDenied) {
			response.Forbidden(c, "not allowed")
			return
		}
		response.Internal(c, "failed to update agency")
		return
	}
	response.OK(c, agency)
}
