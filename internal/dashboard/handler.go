// Package dashboard serves aggregate counts for the landing screen. Each
// figure is scoped through the caller's principal, so MASTER sees global
// totals and an AGENCY sees only its own rows.
package dashboard

import (
	"context"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eventory/backend/internal/authz"
	"github.com/eventory/backend/internal/models"
	"github.com/eventory/backend/pkg/response"
)

// ProjectCounter counts projects per status within the principal's scope.
type ProjectCounter interface {
	CountByStatus(ctx context.Context, p authz.Principal) (map[models.ProjectStatus]int, error)
}

// ParticipantCounter counts participants within the principal's scope.
type ParticipantCounter interface {
	Count(ctx context.Context, p authz.Principal) (int, error)
}

// AgencyCounter counts agencies within the principal's scope.
type AgencyCounter interface {
	Count(ctx context.Context, p authz.Principal) (int, error)
}

// HotelCounter counts the global hotel catalog.
type HotelCounter interface {
	Count(ctx context.Context) (int, error)
}

// ProjectStats breaks project counts down by status.
type ProjectStats struct {
	Total     int `json:"total"`
	Scheduled int `json:"scheduled"`
	Ongoing   int `json:"ongoing"`
	Completed int `json:"completed"`
}

// Stats is the dashboard payload.
type Stats struct {
	Projects     ProjectStats `json:"projects"`
	Participants int          `json:"participants"`
	Agencies     int          `json:"agencies"`
	Hotels       int          `json:"hotels"`
}

// Handler handles GET /dashboard/stats.
type Handler struct {
	projects     ProjectCounter
	participants ParticipantCounter
	agencies     AgencyCounter
	hotels       HotelCounter
	logger       *zap.Logger
}

// NewHandler creates a dashboard handler.
func NewHandler(projects ProjectCounter, participants ParticipantCounter, agencies AgencyCounter, hotels HotelCounter, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{projects: projects, participants: participants, agencies: agencies, hotels: hotels, logger: logger}
}

// Stats handles GET /dashboard/stats. The four aggregates load concurrently;
// a failing one logs and reports zero so the rest of the dashboard still
// renders.
func (h *Handler) Stats(c *gin.Context) {
	p := authz.MustPrincipal(c)
	ctx := c.Request.Context()

	var stats Stats
	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		byStatus, err := h.projects.CountByStatus(ctx, p)
		if err != nil {
			h.logger.Warn("dashboard: project counts failed", zap.Error(err))
			return
		}
		stats.Projects = ProjectStats{
			Scheduled: byStatus[models.StatusScheduled],
			Ongoing:   byStatus[models.StatusOngoing],
			Completed: byStatus[models.StatusCompleted],
		}
		stats.Projects.Total = stats.Projects.Scheduled + stats.Projects.Ongoing + stats.Projects.Completed
	}()
	go func() {
		defer wg.Done()
		n, err := h.participants.Count(ctx, p)
		if err != nil {
			h.logger.Warn("dashboard: participant count failed", zap.Error(err))
			return
		}
		stats.Participants = n
	}()
	go func() {
		defer wg.Done()
		n, err := h.agencies.Count(ctx, p)
		if err != nil {
			h.logger.Warn("dashboard: agency count failed", zap.Error(err))
			return
		}
		stats.Agencies = n
	}()
	go func() {
		defer wg.Done()
		n, err := h.hotels.Count(ctx)
		if err != nil {
			h.logger.Warn("dashboard: hotel count failed", zap.Error(err))
			return
		}
		stats.Hotels = n
	}()
	wg.Wait()

	response.OK(c, stats)
}
