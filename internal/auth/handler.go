package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/eventory/backend/internal/authz"
	"github.com/eventory/backend/internal/models"
	"github.com/eventory/backend/pkg/response"
	"github.com/eventory/backend/pkg/utils"
)

// Store is the persistence surface the auth handler needs.
type Store interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	RoleOf(ctx context.Context, userID uuid.UUID) (models.Role, error)
	Signup(ctx context.Context, p SignupParams) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, fullName, organization, position, phone *string) (*models.User, error)
}

// RegisterRequest is the body for POST /auth/register.
type RegisterRequest struct {
	Username     string `json:"username" binding:"required,min=3,max=64"`
	Password     string `json:"password" binding:"required,min=6"`
	FullName     string `json:"full_name" binding:"required"`
	Role         string `json:"role" binding:"required"`
	Organization string `json:"organization"`
	Position     string `json:"position"`
	Phone        string `json:"phone"`
	AgencyName   string `json:"agency_name"`
}

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string            `json:"token"`
	Role  models.Role       `json:"role"`
	User  models.UserPublic `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	store    Store
	jwt      *JWTService
	sessions *SessionStore
	logger   *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(store Store, jwt *JWTService, sessions *SessionStore, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: store, jwt: jwt, sessions: sessions, logger: logger}
}

// Register handles POST /auth/register. One transaction creates the user, its
// role row, and — for AGENCY — a fresh agency.
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	role := models.Role(strings.ToUpper(req.Role))
	if !role.Valid() {
		response.BadRequest(c, "role must be MASTER or AGENCY")
		return
	}

	if _, err := h.store.GetByUsername(c.Request.Context(), req.Username); err == nil {
		response.Conflict(c, "username already taken")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	user, err := h.store.Signup(c.Request.Context(), SignupParams{
		Username:     req.Username,
		PasswordHash: hash,
		FullName:     req.FullName,
		Organization: req.Organization,
		Position:     req.Position,
		Phone:        req.Phone,
		Role:         role,
		AgencyName:   req.AgencyName,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			response.Conflict(c, "username already taken")
			return
		}
		h.logger.Error("signup", zap.Error(err))
		response.Internal(c, "failed to create account")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Username)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	response.Created(c, TokenResponse{Token: token, Role: role, User: user.ToPublic()})
}

// Login handles POST /auth/login. Bad username and bad password produce the
// same message.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	user, err := h.store.GetByUsername(c.Request.Context(), req.Username)
	if err != nil {
		response.Unauthorized(c, "invalid username or password")
		return
	}
	if !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "invalid username or password")
		return
	}

	role, err := h.store.RoleOf(c.Request.Context(), user.ID)
	if err != nil {
		// Authenticated but unusable: no role row means the account never
		// finished signup.
		response.Forbidden(c, "account setup incomplete")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.Username)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}
	response.OK(c, TokenResponse{Token: token, Role: role, User: user.ToPublic()})
}

// Logout handles POST /auth/logout. Revokes the presented token until its
// natural expiry and drops the cached principal.
func (h *Handler) Logout(c *gin.Context) {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		response.Unauthorized(c, "missing bearer token")
		return
	}
	claims, err := h.jwt.Validate(parts[1])
	if err != nil {
		response.Unauthorized(c, "invalid or expired token")
		return
	}
	if h.sessions != nil {
		if err := h.sessions.RevokeToken(c.Request.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
			h.logger.Error("revoke token", zap.Error(err))
			response.Internal(c, "failed to sign out")
			return
		}
		h.sessions.DropPrincipal(c.Request.Context(), claims.UserID)
	}
	response.NoContent(c)
}

// Me handles GET /me.
func (h *Handler) Me(c *gin.Context) {
	p := authz.MustPrincipal(c)
	if !authz.Allowed(p, authz.ActionSelect, authz.ResourceUsers, authz.Row{OwnerID: &p.UserID}) {
		response.Forbidden(c, "not allowed")
		return
	}
	user, err := h.store.GetByID(c.Request.Context(), p.UserID)
	if err != nil {
		response.NotFound(c, "profile not found")
		return
	}
	response.OK(c, gin.H{"user": user.ToPublic(), "role": p.Role})
}

// UpdateMeRequest is the body for PATCH /me. Absent fields are left unchanged.
type UpdateMeRequest struct {
	FullName     *string `json:"full_name"`
	Organization *string `json:"organization"`
	Position     *string `json:"position"`
	Phone        *string `json:"phone"`
}

// UpdateMe handles PATCH /me. Profiles are self-update only.
func (h *Handler) UpdateMe(c *gin.Context) {
	p := authz.MustPrincipal(c)
	if !authz.Allowed(p, authz.ActionUpdate, authz.ResourceUsers, authz.Row{OwnerID: &p.UserID}) {
		response.Forbidden(c, "not allowed")
		return
	}
	var req UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request")
		return
	}
	user, err := h.store.UpdateProfile(c.Request.Context(), p.UserID, req.FullName, req.Organization, req.Position, req.Phone)
	if err != nil {
		h.logger.Error("update profile", zap.Error(err))
		response.Internal(c, "failed to update profile")
		return
	}
	response.OK(c, user.ToPublic())
}
