package places

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eventory/backend/config"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient(config.PlacesConfig{APIKey: "test-key", Language: "ko"}, nil)
	c.baseURL = srv.URL
	return c
}

func TestTextSearchPagination(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/textsearch/json" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("language"); got != "ko" {
			t.Errorf("language = %q, want ko", got)
		}
		if r.URL.Query().Get("pagetoken") == "tok-1" {
			w.Write([]byte(`{"status":"OK","results":[{"name":"부산 호텔","place_id":"p2"}]}`))
			return
		}
		if got := r.URL.Query().Get("query"); got != "서울 호텔" {
			t.Errorf("query = %q", got)
		}
		w.Write([]byte(`{"status":"OK","results":[{"name":"서울 호텔","place_id":"p1","rating":4.5}],"next_page_token":"tok-1"}`))
	})

	first, token, err := c.TextSearch(context.Background(), "서울 호텔", "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(first) != 1 || first[0].PlaceID != "p1" || first[0].Rating != 4.5 {
		t.Fatalf("first page = %+v", first)
	}
	if token != "tok-1" {
		t.Fatalf("token = %q", token)
	}

	second, token, err := c.TextSearch(context.Background(), "", token)
	if err != nil {
		t.Fatalf("next page: %v", err)
	}
	if len(second) != 1 || second[0].PlaceID != "p2" {
		t.Fatalf("second page = %+v", second)
	}
	if token != "" {
		t.Fatalf("token after last page = %q", token)
	}
}

func TestTextSearchZeroResults(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ZERO_RESULTS"}`))
	})
	results, _, err := c.TextSearch(context.Background(), "없는곳", "")
	if err != nil {
		t.Fatalf("zero results should not error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("results = %+v", results)
	}
}

func TestTextSearchAPIError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"REQUEST_DENIED"}`))
	})
	if _, _, err := c.TextSearch(context.Background(), "서울 호텔", ""); err == nil {
		t.Fatal("expected error for REQUEST_DENIED")
	}
}

func TestDisabledClient(t *testing.T) {
	c := NewClient(config.PlacesConfig{}, nil)
	if c.Enabled() {
		t.Fatal("client without key reports enabled")
	}
	if _, _, err := c.TextSearch(context.Background(), "서울 호텔", ""); !errors.Is(err, ErrDisabled) {
		t.Fatalf("err = %v, want ErrDisabled", err)
	}
}

func TestDetails(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("place_id"); got != "p1" {
			t.Errorf("place_id = %q", got)
		}
		w.Write([]byte(`{"status":"OK","result":{"name":"신라호텔","formatted_address":"서울특별시 중구","place_id":"p1","rating":4.7,"user_ratings_total":1200}}`))
	})
	place, err := c.Details(context.Background(), "p1")
	if err != nil {
		t.Fatalf("details: %v", err)
	}
	if place.Name != "신라호텔" || place.UserRatingsTotal != 1200 {
		t.Fatalf("place = %+v", place)
	}
}
