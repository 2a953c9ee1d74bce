package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eventory/backend/internal/auth"
	"github.com/eventory/backend/internal/authz"
	"github.com/eventory/backend/internal/models"
	"github.com/eventory/backend/pkg/response"
)

// RoleResolver resolves a user's role and profile from the database. The
// token never carries role or agency; both are re-derived server-side here so
// no authorization decision ever trusts a client-supplied claim.
type RoleResolver interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	RoleOf(ctx context.Context, userID uuid.UUID) (models.Role, error)
}

// SessionCache caches resolved principals and answers revocation checks.
type SessionCache interface {
	GetPrincipal(ctx context.Context, userID uuid.UUID) *authz.Principal
	PutPrincipal(ctx context.Context, p authz.Principal)
	IsRevoked(ctx context.Context, jti string) bool
}

// Authenticate validates the bearer token and resolves the request principal
// {user_id, role, agency_id}, caching the resolution per session. A user
// without a role row is treated as an incomplete account and denied (fail
// closed), distinct from a bad token.
func Authenticate(jwtService *auth.JWTService, resolver RoleResolver, cache SessionCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Unauthorized(c, "missing authorization header")
			c.Abort()
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, "invalid authorization header")
			c.Abort()
			return
		}
		claims, err := jwtService.Validate(parts[1])
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		ctx := c.Request.Context()
		if cache != nil && cache.IsRevoked(ctx, claims.ID) {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}

		var principal *authz.Principal
		if cache != nil {
			principal = cache.GetPrincipal(ctx, claims.UserID)
		}
		if principal == nil {
			p, err := resolvePrincipal(ctx, resolver, claims.UserID)
			if err != nil {
				response.Forbidden(c, "account setup incomplete")
				c.Abort()
				return
			}
			principal = p
			if cache != nil {
				cache.PutPrincipal(ctx, *principal)
			}
		}

		authz.SetPrincipal(c, *principal)
		c.Next()
	}
}

func resolvePrincipal(ctx context.Context, resolver RoleResolver, userID uuid.UUID) (*authz.Principal, error) {
	role, err := resolver.RoleOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	user, err := resolver.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	// An AGENCY role with no agency is as broken as a missing role row.
	if role == models.RoleAgency && user.AgencyID == nil {
		return nil, auth.ErrNoRole
	}
	return &authz.Principal{UserID: user.ID, Role: role, AgencyID: user.AgencyID}, nil
}

// RequireRole allows only principals with one of the given roles. Route-level
// defense in depth; the row policies in authz remain the source of truth.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{})
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		p, ok := authz.PrincipalFrom(c)
		if !ok {
			response.Unauthorized(c, "missing user context")
			c.Abort()
			return
		}
		if _, ok := allowed[p.Role]; !ok {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}
		c.Next()
	}
}
