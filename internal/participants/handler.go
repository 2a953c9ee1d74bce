package participants

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/eventory/backend/internal/authz"
	"github.com/eventory/backend/internal/models"
	"github.com/eventory/backend/pkg/response"
)

// Store is the persistence surface the participants handler needs.
type Store interface {
	ListByProject(ctx context.Context, p authz.Principal, projectID uuid.UUID) ([]models.Participant, error)
	Create(ctx context.Context, p authz.Principal, projectID uuid.UUID, params CreateParams) (*models.Participant, error)
	Update(ctx context.Context, p authz.Principal, id uuid.UUID, params UpdateParams) (*models.Participant, error)
	Delete(ctx context.Context, p authz.Principal, id uuid.UUID) (bool, error)
}

// Handler handles participant HTTP endpoints.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates a participants handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, logger: logger}
}

// ListByProject handles GET /projects/:id/participants.
func (h *Handler) ListByProject(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	p := authz.MustPrincipal(c)
	list, err := h.store.ListByProject(c.Request.Context(), p, projectID)
	if err != nil {
		h.logger.Error("list participants", zap.Error(err))
		response.Internal(c, "failed to load participants")
		return
	}
	if list == nil {
		list = []models.Participant{}
	}
	response.OK(c, list)
}

// CreateRequest is the body for POST /projects/:id/participants. No agency
// or project ownership fields; both derive from the route and the principal.
type CreateRequest struct {
	FullName     string `json:"full_name" binding:"required"`
	Email        string `json:"email" binding:"omitempty,email"`
	Phone        string `json:"phone"`
	Organization string `json:"organization"`
	Position     string `json:"position"`
}

// Create handles POST /projects/:id/participants (AGENCY only).
func (h *Handler) Create(c *gin.Context) {
	projectID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	p := authz.MustPrincipal(c)
	pt, err := h.store.Create(c.Request.Context(), p, projectID, CreateParams{
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		Organization: req.Organization,
		Position:     req.Position,
	})
	if err != nil {
		switch {
		case errors.Is(err, authz.ErrDenied):
			response.Forbidden(c, "not allowed")
		case errors.Is(err, pgx.ErrNoRows):
			response.NotFound(c, "project not found")
		default:
			h.logger.Error("create participant", zap.Error(err))
			response.Internal(c, "failed to add participant")
		}
		return
	}
	response.Created(c, pt)
}

// UpdateRequest is the body for PATCH /participants/:id.
type UpdateRequest struct {
	FullName     *string `json:"full_name"`
	Email        *string `json:"email" binding:"omitempty,email"`
	Phone        *string `json:"phone"`
	Organization *string `json:"organization"`
	Position     *string `json:"position"`
}

// Update handles PATCH /participants/:id (own agency only).
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid participant id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	p := authz.MustPrincipal(c)
	pt, err := h.store.Update(c.Request.Context(), p, id, UpdateParams{
		FullName:     req.FullName,
		Email:        req.Email,
		Phone:        req.Phone,
		Organization: req.Organization,
		Position:     req.Position,
	})
	if err != nil {
		switch {
		case errors.Is(err, authz.ErrDenied):
			response.Forbidden(c, "not allowed")
		case errors.Is(err, pgx.ErrNoRows):
			response.NotFound(c, "participant not found")
		default:
			h.logger.Error("update participant", zap.Error(err))
			response.Internal(c, "failed to update participant")
		}
		return
	}
	response.OK(c, pt)
}

// Delete handles DELETE /participants/:id (own agency only).
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid participant id")
		return
	}
	p := authz.MustPrincipal(c)
	deleted, err := h.store.Delete(c.Request.Context(), p, id)
	if err != nil {
		if errors.Is(err, authz.ErrDenied) {
			response.Forbidden(c, "not allowed")
			return
		}
		h.logger.Error("delete participant", zap.Error(err))
		response.Internal(c, "failed to remove participant")
		return
	}
	if !deleted {
		response.NotFound(c, "participant not found")
		return
	}
	response.NoContent(c)
}
