package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/eventory/backend/internal/models"
	"github.com/eventory/backend/pkg/utils"
)

type stubStore struct {
	users     map[string]*models.User
	roles     map[uuid.UUID]models.Role
	signupErr error
}

func newStubStore() *stubStore {
	return &stubStore{users: map[string]*models.User{}, roles: map[uuid.UUID]models.Role{}}
}

func (s *stubStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u, ok := s.users[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return u, nil
}

func (s *stubStore) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *stubStore) RoleOf(ctx context.Context, userID uuid.UUID) (models.Role, error) {
	role, ok := s.roles[userID]
	if !ok {
		return "", ErrNoRole
	}
	return role, nil
}

func (s *stubStore) Signup(ctx context.Context, p SignupParams) (*models.User, error) {
	if s.signupErr != nil {
		return nil, s.signupErr
	}
	u := &models.User{ID: uuid.New(), Username: p.Username, Password: p.PasswordHash, FullName: p.FullName}
	if p.Role == models.RoleAgency {
		agencyID := uuid.New()
		u.AgencyID = &agencyID
	}
	s.users[p.Username] = u
	s.roles[u.ID] = p.Role
	return u, nil
}

func (s *stubStore) UpdateProfile(ctx context.Context, id uuid.UUID, fullName, organization, position, phone *string) (*models.User, error) {
	return s.GetByID(ctx, id)
}

func newAuthRouter(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, NewJWTService("test-secret", 1), nil, nil)
	r := gin.New()
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	return r
}

func postJSON(r *gin.Engine, path string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRegisterAgencyIssuesToken(t *testing.T) {
	store := newStubStore()
	r := newAuthRouter(store)

	rec := postJSON(r, "/auth/register",
		`{"username":"hana-tour","password":"secret1","full_name":"김하나","role":"agency","agency_name":"하나투어"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}
	raw := rec.Body.Bytes()
	var envelope struct {
		Success bool          `json:"success"`
		Data    TokenResponse `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Token == "" || envelope.Data.Role != models.RoleAgency {
		t.Errorf("response = %+v", envelope.Data)
	}
	if bytes.Contains(raw, []byte("password")) {
		t.Error("password leaked in response")
	}
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	r := newAuthRouter(newStubStore())
	rec := postJSON(r, "/auth/register",
		`{"username":"someone","password":"secret1","full_name":"x","role":"SUPERADMIN"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	store := newStubStore()
	r := newAuthRouter(store)
	body := `{"username":"dup","password":"secret1","full_name":"x","role":"MASTER"}`
	if rec := postJSON(r, "/auth/register", body); rec.Code != http.StatusCreated {
		t.Fatalf("first register: %d", rec.Code)
	}
	if rec := postJSON(r, "/auth/register", body); rec.Code != http.StatusConflict {
		t.Fatalf("second register: %d, want 409", rec.Code)
	}
}

func TestRegisterUniqueViolationFromDatabase(t *testing.T) {
	// A concurrent signup can slip past the username pre-check; the unique
	// index violation must still surface as a conflict, not a 500.
	store := newStubStore()
	store.signupErr = fmt.Errorf("create user: %w", &pgconn.PgError{Code: "23505"})
	r := newAuthRouter(store)

	rec := postJSON(r, "/auth/register",
		`{"username":"race","password":"secret1","full_name":"x","role":"MASTER"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	store := newStubStore()
	hash, _ := utils.HashPassword("secret1")
	u := &models.User{ID: uuid.New(), Username: "master", Password: hash}
	store.users["master"] = u
	store.roles[u.ID] = models.RoleMaster
	r := newAuthRouter(store)

	rec := postJSON(r, "/auth/login", `{"username":"master","password":"secret1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
	}

	// Wrong password and unknown username are indistinguishable.
	wrongPass := postJSON(r, "/auth/login", `{"username":"master","password":"nope"}`)
	noUser := postJSON(r, "/auth/login", `{"username":"ghost","password":"secret1"}`)
	if wrongPass.Code != http.StatusUnauthorized || noUser.Code != http.StatusUnauthorized {
		t.Fatalf("codes = %d, %d, want 401 for both", wrongPass.Code, noUser.Code)
	}
	if wrongPass.Body.String() != noUser.Body.String() {
		t.Error("login failures should not reveal which field was wrong")
	}
}

func TestLoginWithoutRoleRowIsForbidden(t *testing.T) {
	store := newStubStore()
	hash, _ := utils.HashPassword("secret1")
	u := &models.User{ID: uuid.New(), Username: "orphan", Password: hash}
	store.users["orphan"] = u
	r := newAuthRouter(store)

	rec := postJSON(r, "/auth/login", `{"username":"orphan","password":"secret1"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 for account without a role row", rec.Code)
	}
}
