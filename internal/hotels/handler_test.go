package hotels

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/eventory/backend/internal/authz"
	"github.com/eventory/backend/internal/models"
	"github.com/eventory/backend/internal/places"
)

type fakeStore struct {
	hotel     models.Hotel
	roomTypes []models.HotelRoomType
	seedCalls int
	upserted  []*models.Hotel
	createErr error
}

func (s *fakeStore) Search(ctx context.Context, query string, limit int) ([]models.Hotel, error) {
	return []models.Hotel{s.hotel}, nil
}

func (s *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Hotel, error) {
	if id != s.hotel.ID {
		return nil, pgx.ErrNoRows
	}
	return &s.hotel, nil
}

func (s *fakeStore) Upsert(ctx context.Context, h *models.Hotel) error {
	s.upserted = append(s.upserted, h)
	return nil
}

func (s *fakeStore) ListRoomTypes(ctx context.Context, hotelID uuid.UUID) ([]models.HotelRoomType, error) {
	return s.roomTypes, nil
}

func (s *fakeStore) SeedDefaultRoomTypes(ctx context.Context, hotelID uuid.UUID) error {
	s.seedCalls++
	for _, rt := range DefaultRoomTypes() {
		rt.ID = uuid.New()
		rt.HotelID = hotelID
		s.roomTypes = append(s.roomTypes, rt)
	}
	return nil
}

func (s *fakeStore) CreateRoomType(ctx context.Context, hotelID uuid.UUID, params RoomTypeParams) (*models.HotelRoomType, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	rt := models.HotelRoomType{ID: uuid.New(), HotelID: hotelID, RoomTypeName: params.RoomTypeName,
		MaxOccupancy: params.MaxOccupancy, PricePerNight: params.PricePerNight}
	s.roomTypes = append(s.roomTypes, rt)
	return &rt, nil
}

type fakeMeta struct {
	place *places.Place
	err   error
	calls int
}

func (f *fakeMeta) Details(ctx context.Context, placeID string) (*places.Place, error) {
	f.calls++
	return f.place, f.err
}

func newRouter(store Store, meta MetadataSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	agencyID := uuid.New()
	p := authz.Principal{UserID: uuid.New(), Role: models.RoleAgency, AgencyID: &agencyID}
	h := NewHandler(store, meta, nil)
	r := gin.New()
	r.Use(func(c *gin.Context) { authz.SetPrincipal(c, p) })
	r.GET("/hotels/search", h.Search)
	r.GET("/hotels/:id", h.GetByID)
	r.GET("/hotels/:id/room-types", h.ListRoomTypes)
	r.POST("/hotels/:id/room-types", h.CreateRoomType)
	return r
}

func getRoomTypes(r *gin.Engine, hotelID uuid.UUID) ([]models.HotelRoomType, int) {
	req := httptest.NewRequest(http.MethodGet, "/hotels/"+hotelID.String()+"/room-types", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	var envelope struct {
		Success bool                   `json:"success"`
		Data    []models.HotelRoomType `json:"data"`
	}
	_ = json.NewDecoder(rec.Body).Decode(&envelope)
	return envelope.Data, rec.Code
}

func TestRoomTypesSeededOnceOnFirstView(t *testing.T) {
	store := &fakeStore{hotel: models.Hotel{ID: uuid.New(), Name: "신라호텔"}}
	r := newRouter(store, nil)

	first, code := getRoomTypes(r, store.hotel.ID)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(first) != 3 {
		t.Fatalf("first view seeded %d room types, want 3", len(first))
	}

	second, _ := getRoomTypes(r, store.hotel.ID)
	if len(second) != 3 {
		t.Fatalf("second view returned %d room types, want the same 3", len(second))
	}
	if store.seedCalls != 1 {
		t.Errorf("seed called %d times, want 1", store.seedCalls)
	}
}

func TestRoomTypesOfUnknownHotel(t *testing.T) {
	store := &fakeStore{hotel: models.Hotel{ID: uuid.New()}}
	r := newRouter(store, nil)

	if _, code := getRoomTypes(r, uuid.New()); code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", code)
	}
	if store.seedCalls != 0 {
		t.Errorf("seed called for an unknown hotel")
	}
}

func TestSearchShortQueryReturnsEmptySet(t *testing.T) {
	store := &fakeStore{hotel: models.Hotel{ID: uuid.New(), Name: "신라호텔"}}
	r := newRouter(store, nil)

	req := httptest.NewRequest(http.MethodGet, "/hotels/search?q=%ED%98%B8", nil) // "호", one rune
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var envelope struct {
		Success bool           `json:"success"`
		Data    []models.Hotel `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !envelope.Success || len(envelope.Data) != 0 {
		t.Errorf("short query returned %d hotels, want none", len(envelope.Data))
	}
}

func postRoomType(r *gin.Engine, hotelID uuid.UUID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/hotels/"+hotelID.String()+"/room-types", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestCreateRoomTypeAllowsZeroPrice(t *testing.T) {
	store := &fakeStore{hotel: models.Hotel{ID: uuid.New(), Name: "신라호텔"}}
	r := newRouter(store, nil)

	rec := postRoomType(r, store.hotel.ID,
		`{"room_type_name":"Complimentary","max_occupancy":2,"price_per_night":0}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body %s, want 201 for a free room", rec.Code, rec.Body.String())
	}
}

func TestCreateRoomTypeDuplicateIsConflict(t *testing.T) {
	store := &fakeStore{
		hotel:     models.Hotel{ID: uuid.New(), Name: "신라호텔"},
		createErr: &pgconn.PgError{Code: "23505"},
	}
	r := newRouter(store, nil)

	rec := postRoomType(r, store.hotel.ID,
		`{"room_type_name":"Standard","max_occupancy":2,"price_per_night":150000}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestFirstViewRefreshesMetadataBeforeSeeding(t *testing.T) {
	store := &fakeStore{hotel: models.Hotel{ID: uuid.New(), Name: "stale name", PlaceID: "p1"}}
	meta := &fakeMeta{place: &places.Place{Name: "신라호텔", FormattedAddress: "서울특별시 중구", PlaceID: "p1", Rating: 4.7}}
	r := newRouter(store, meta)

	if _, code := getRoomTypes(r, store.hotel.ID); code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if meta.calls != 1 {
		t.Fatalf("details called %d times, want 1", meta.calls)
	}
	if len(store.upserted) != 1 || store.upserted[0].Name != "신라호텔" {
		t.Fatalf("upserted = %+v, want refreshed catalog row", store.upserted)
	}

	// Already-seeded hotels are never re-fetched.
	if _, code := getRoomTypes(r, store.hotel.ID); code != http.StatusOK {
		t.Fatalf("second view status = %d", code)
	}
	if meta.calls != 1 {
		t.Errorf("details called %d times after second view, want still 1", meta.calls)
	}
}

func TestUnkeyedMetadataSourceFallsBackToDefaults(t *testing.T) {
	store := &fakeStore{hotel: models.Hotel{ID: uuid.New(), Name: "신라호텔", PlaceID: "p1"}}
	meta := &fakeMeta{err: places.ErrDisabled}
	r := newRouter(store, meta)

	list, code := getRoomTypes(r, store.hotel.ID)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if len(list) != 3 {
		t.Fatalf("seeded %d room types, want the 3 defaults", len(list))
	}
	if len(store.upserted) != 0 {
		t.Errorf("upserted %d rows with a disabled client", len(store.upserted))
	}
}
