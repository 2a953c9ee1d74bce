package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/eventory/backend/internal/authz"
	"github.com/eventory/backend/internal/models"
)

const (
	principalKeyPrefix = "principal:"
	revokedKeyPrefix   = "revoked:"
	// principalTTL bounds how long a role change can lag behind.
	principalTTL = 5 * time.Minute
)

// SessionStore caches resolved principals and tracks revoked token IDs in
// Redis. Resolution stays idempotent: a cache miss just falls back to the
// database.
type SessionStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewSessionStore creates a session store.
func NewSessionStore(client *redis.Client, logger *zap.Logger) *SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionStore{client: client, logger: logger}
}

type cachedPrincipal struct {
	Role     models.Role `json:"role"`
	AgencyID *uuid.UUID  `json:"agency_id,omitempty"`
}

// GetPrincipal returns the cached principal for a user, or nil on miss.
// Cache errors are treated as misses.
func (s *SessionStore) GetPrincipal(ctx context.Context, userID uuid.UUID) *authz.Principal {
	raw, err := s.client.Get(ctx, principalKeyPrefix+userID.String()).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.logger.Warn("principal cache read", zap.Error(err))
		}
		return nil
	}
	var c cachedPrincipal
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil
	}
	return &authz.Principal{UserID: userID, Role: c.Role, AgencyID: c.AgencyID}
}

// PutPrincipal caches a resolved principal. Failures are logged and ignored;
// the next request resolves from the database again.
func (s *SessionStore) PutPrincipal(ctx context.Context, p authz.Principal) {
	raw, err := json.Marshal(cachedPrincipal{Role: p.Role, AgencyID: p.AgencyID})
	if err != nil {
		return
	}
	if err := s.client.Set(ctx, principalKeyPrefix+p.UserID.String(), raw, principalTTL).Err(); err != nil {
		s.logger.Warn("principal cache write", zap.Error(err))
	}
}

// DropPrincipal removes the cached principal, e.g. on sign-out.
func (s *SessionStore) DropPrincipal(ctx context.Context, userID uuid.UUID) {
	if err := s.client.Del(ctx, principalKeyPrefix+userID.String()).Err(); err != nil {
		s.logger.Warn("principal cache drop", zap.Error(err))
	}
}

// RevokeToken marks a token ID as revoked until the token would have expired
// anyway.
func (s *SessionStore) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
}

// IsRevoked reports whether a token ID has been revoked. Lookup errors count
// as revoked: when the revocation list is unreachable we fail closed.
func (s *SessionStore) IsRevoked(ctx context.Context, jti string) bool {
	_, err := s.client.Get(ctx, revokedKeyPrefix+jti).Result()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		s.logger.Warn("revocation check", zap.Error(err))
		return true
	}
	return true
}
