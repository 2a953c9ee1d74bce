package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/eventory/backend/internal/auth"
	"github.com/eventory/backend/internal/authz"
	"github.com/eventory/backend/internal/models"
)

type stubResolver struct {
	user    *models.User
	role    models.Role
	roleErr error
	calls   int
}

func (s *stubResolver) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.user, nil
}

func (s *stubResolver) RoleOf(ctx context.Context, userID uuid.UUID) (models.Role, error) {
	s.calls++
	if s.roleErr != nil {
		return "", s.roleErr
	}
	return s.role, nil
}

type stubCache struct {
	principal *authz.Principal
	revoked   bool
	put       []authz.Principal
}

func (s *stubCache) GetPrincipal(ctx context.Context, userID uuid.UUID) *authz.Principal {
	return s.principal
}

func (s *stubCache) PutPrincipal(ctx context.Context, p authz.Principal) {
	s.put = append(s.put, p)
}

func (s *stubCache) IsRevoked(ctx context.Context, jti string) bool {
	return s.revoked
}

func newAuthRouter(t *testing.T, jwtSvc *auth.JWTService, resolver RoleResolver, cache SessionCache) (*gin.Engine, *authz.Principal) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	var seen authz.Principal
	r := gin.New()
	r.GET("/probe", Authenticate(jwtSvc, resolver, cache), func(c *gin.Context) {
		seen = authz.MustPrincipal(c)
		c.Status(http.StatusOK)
	})
	return r, &seen
}

func doProbe(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticateResolvesPrincipalServerSide(t *testing.T) {
	jwtSvc := auth.NewJWTService("test-secret", 1)
	userID := uuid.New()
	agencyID := uuid.New()
	resolver := &stubResolver{
		user: &models.User{ID: userID, Username: "org1", AgencyID: &agencyID},
		role: models.RoleAgency,
	}
	cache := &stubCache{}
	r, seen := newAuthRouter(t, jwtSvc, resolver, cache)

	token, err := jwtSvc.Generate(userID, "org1")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	rec := doProbe(r, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	if seen.UserID != userID || seen.Role != models.RoleAgency {
		t.Errorf("principal = %+v", seen)
	}
	if seen.AgencyID == nil || *seen.AgencyID != agencyID {
		t.Errorf("agency_id = %v, want %s", seen.AgencyID, agencyID)
	}
	if len(cache.put) != 1 {
		t.Errorf("resolved principal not cached: %d puts", len(cache.put))
	}
}

func TestAuthenticateUsesCachedPrincipal(t *testing.T) {
	jwtSvc := auth.NewJWTService("test-secret", 1)
	userID := uuid.New()
	agencyID := uuid.New()
	resolver := &stubResolver{role: models.RoleAgency}
	cache := &stubCache{principal: &authz.Principal{UserID: userID, Role: models.RoleAgency, AgencyID: &agencyID}}
	r, seen := newAuthRouter(t, jwtSvc, resolver, cache)

	token, _ := jwtSvc.Generate(userID, "org1")
	rec := doProbe(r, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if resolver.calls != 0 {
		t.Errorf("resolver hit %d times despite cached principal", resolver.calls)
	}
	if seen.UserID != userID {
		t.Errorf("principal = %+v", seen)
	}
}

func TestAuthenticateFailsClosedWithoutRole(t *testing.T) {
	jwtSvc := auth.NewJWTService("test-secret", 1)
	userID := uuid.New()
	resolver := &stubResolver{roleErr: auth.ErrNoRole}
	r, _ := newAuthRouter(t, jwtSvc, resolver, &stubCache{})

	token, _ := jwtSvc.Generate(userID, "half-registered")
	rec := doProbe(r, token)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 for account without role", rec.Code)
	}
}

func TestAuthenticateRejectsAgencyRoleWithoutAgency(t *testing.T) {
	jwtSvc := auth.NewJWTService("test-secret", 1)
	userID := uuid.New()
	resolver := &stubResolver{
		user: &models.User{ID: userID, Username: "broken"},
		role: models.RoleAgency,
	}
	r, _ := newAuthRouter(t, jwtSvc, resolver, &stubCache{})

	token, _ := jwtSvc.Generate(userID, "broken")
	if rec := doProbe(r, token); rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 for AGENCY principal without agency", rec.Code)
	}
}

func TestAuthenticateRejectsRevokedToken(t *testing.T) {
	jwtSvc := auth.NewJWTService("test-secret", 1)
	resolver := &stubResolver{role: models.RoleMaster, user: &models.User{ID: uuid.New()}}
	r, _ := newAuthRouter(t, jwtSvc, resolver, &stubCache{revoked: true})

	token, _ := jwtSvc.Generate(uuid.New(), "signed-out")
	if rec := doProbe(r, token); rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401 for revoked token", rec.Code)
	}
}

func TestAuthenticateRejectsMissingAndMalformedHeaders(t *testing.T) {
	jwtSvc := auth.NewJWTService("test-secret", 1)
	r, _ := newAuthRouter(t, jwtSvc, &stubResolver{}, &stubCache{})

	if rec := doProbe(r, ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("no header: status = %d", rec.Code)
	}
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("basic auth: status = %d", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	agencyID := uuid.New()
	r.GET("/agency-only",
		func(c *gin.Context) {
			authz.SetPrincipal(c, authz.Principal{UserID: uuid.New(), Role: models.RoleMaster, AgencyID: nil})
		},
		RequireRole(models.RoleAgency),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)
	r.GET("/either",
		func(c *gin.Context) {
			authz.SetPrincipal(c, authz.Principal{UserID: uuid.New(), Role: models.RoleAgency, AgencyID: &agencyID})
		},
		RequireRole(models.RoleMaster, models.RoleAgency),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/agency-only", nil))
	if rec.Code != http.StatusForbidden {
		t.Errorf("MASTER on agency-only route: status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/either", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("AGENCY on shared route: status = %d", rec.Code)
	}
}
