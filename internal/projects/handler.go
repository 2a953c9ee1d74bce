package projects

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/eventory/backend/internal/authz"
	"github.com/eventory/backend/internal/models"
	"github.com/eventory/backend/pkg/response"
)

// Store is the persistence surface the projects handler needs.
type Store interface {
	List(ctx context.Context, p authz.Principal) ([]models.Project, error)
	GetByID(ctx context.Context, p authz.Principal, id uuid.UUID) (*models.Project, error)
	Create(ctx context.Context, p authz.Principal, params CreateParams) (*models.Project, error)
	Update(ctx context.Context, p authz.Principal, id uuid.UUID, params UpdateParams) (*models.Project, error)
	Delete(ctx context.Context, p authz.Principal, id uuid.UUID) (bool, error)
}

// Handler handles project HTTP endpoints.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates a projects handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, logger: logger}
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// CreateRequest is the body for POST /projects. There is deliberately no
// agency field; ownership comes from the resolved principal.
type CreateRequest struct {
	Name        string          `json:"name" binding:"required"`
	Location    models.Location `json:"location" binding:"required"`
	StartDate   string          `json:"start_date" binding:"required"`
	EndDate     string          `json:"end_date" binding:"required"`
	Status      string          `json:"status"`
	Description string          `json:"description"`
}

// List handles GET /projects.
func (h *Handler) List(c *gin.Context) {
	p := authz.MustPrincipal(c)
	list, err := h.store.List(c.Request.Context(), p)
	if err != nil {
		h.logger.Error("list projects", zap.Error(err))
		response.Internal(c, "failed to load projects")
		return
	}
	if list == nil {
		list = []models.Project{}
	}
	response.OK(c, list)
}

// GetByID handles GET /projects/:id. A project outside the caller's scope is
// indistinguishable from a missing one.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	p := authz.MustPrincipal(c)
	proj, err := h.store.GetByID(c.Request.Context(), p, id)
	if err != nil {
		response.NotFound(c, "project not found")
		return
	}
	response.OK(c, proj)
}

// Create handles POST /projects (AGENCY only).
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if err := req.Location.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	start, err := parseTime(req.StartDate)
	if err != nil {
		response.BadRequest(c, "invalid start_date")
		return
	}
	end, err := parseTime(req.EndDate)
	if err != nil {
		response.BadRequest(c, "invalid end_date")
		return
	}
	if end.Before(start) {
		response.BadRequest(c, "end_date before start_date")
		return
	}
	status := models.StatusScheduled
	if req.Status != "" {
		status = models.ProjectStatus(req.Status)
		if !status.Valid() {
			response.BadRequest(c, "invalid status")
			return
		}
	}

	p := authz.MustPrincipal(c)
	proj, err := h.store.Create(c.Request.Context(), p, CreateParams{
		Name:        req.Name,
		Location:    req.Location,
		StartDate:   start,
		EndDate:     end,
		Status:      status,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, authz.ErrDenied) {
			response.Forbidden(c, "not allowed")
			return
		}
		h.logger.Error("create project", zap.Error(err))
		response.Internal(c, "failed to create project")
		return
	}
	response.Created(c, proj)
}

// UpdateRequest is the body for PATCH /projects/:id. Absent fields keep
// their current value.
type UpdateRequest struct {
	Name        *string          `json:"name"`
	Location    *models.Location `json:"location"`
	StartDate   *string          `json:"start_date"`
	EndDate     *string          `json:"end_date"`
	Status      *string          `json:"status"`
	Description *string          `json:"description"`
}

// Update handles PATCH /projects/:id (own agency only).
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	params := UpdateParams{
		Name:        req.Name,
		Location:    req.Location,
		Description: req.Description,
	}
	if req.Location != nil {
		if err := req.Location.Validate(); err != nil {
			response.BadRequest(c, err.Error())
			return
		}
	}
	if req.StartDate != nil {
		t, err := parseTime(*req.StartDate)
		if err != nil {
			response.BadRequest(c, "invalid start_date")
			return
		}
		params.StartDate = &t
	}
	if req.EndDate != nil {
		t, err := parseTime(*req.EndDate)
		if err != nil {
			response.BadRequest(c, "invalid end_date")
			return
		}
		params.EndDate = &t
	}
	if req.Status != nil {
		status := models.ProjectStatus(*req.Status)
		if !status.Valid() {
			response.BadRequest(c, "invalid status")
			return
		}
		params.Status = &status
	}

	p := authz.MustPrincipal(c)
	proj, err := h.store.Update(c.Request.Context(), p, id, params)
	if err != nil {
		switch {
		case errors.Is(err, authz.ErrDenied):
			response.Forbidden(c, "not allowed")
		case errors.Is(err, pgx.ErrNoRows):
			response.NotFound(c, "project not found")
		default:
			h.logger.Error("update project", zap.Error(err))
			response.Internal(c, "failed to update project")
		}
		return
	}
	response.OK(c, proj)
}

// Delete handles DELETE /projects/:id (own agency only). Cascades to the
// project's participants.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid project id")
		return
	}
	p := authz.MustPrincipal(c)
	deleted, err := h.store.Delete(c.Request.Context(), p, id)
	if err != nil {
		if errors.Is(err, authz.ErrDenied) {
			response.Forbidden(c, "not allowed")
			return
		}
		h.logger.Error("delete project", zap.Error(err))
		response.Internal(c, "failed to delete project")
		return
	}
	if !deleted {
		response.NotFound(c, "project not found")
		return
	}
	response.NoContent(c)
}
