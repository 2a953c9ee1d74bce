package main

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/eventory/backend/config"
	"github.com/eventory/backend/internal/models"
	"github.com/eventory/backend/internal/places"
)

type fakeSearcher struct {
	queries []string
	results map[string][]places.Place
}

func (f *fakeSearcher) TextSearch(ctx context.Context, query, pageToken string) ([]places.Place, string, error) {
	f.queries = append(f.queries, query)
	return f.results[query], "", nil
}

type fakeCatalog struct {
	saved []*models.Hotel
}

func (f *fakeCatalog) Upsert(ctx context.Context, h *models.Hotel) error {
	f.saved = append(f.saved, h)
	return nil
}

func TestCrawlSweepsFiveStarQueriesPerCity(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]places.Place{}}
	cfg := config.CrawlerConfig{Cities: []string{"서울", "부산"}, MinRating: 4.0}

	crawl(context.Background(), zap.NewNop(), searcher, &fakeCatalog{}, cfg)

	if len(searcher.queries) != 2 {
		t.Fatalf("queries = %v", searcher.queries)
	}
	for _, q := range searcher.queries {
		if !strings.HasSuffix(q, " 5성급 호텔") {
			t.Errorf("query %q does not target five-star hotels", q)
		}
	}
}

func TestCrawlFiltersAndDedupes(t *testing.T) {
	place := func(id string, rating float64) places.Place {
		p := places.Place{PlaceID: id, Name: "호텔 " + id, Rating: rating}
		return p
	}
	searcher := &fakeSearcher{results: map[string][]places.Place{
		cityQuery("서울"): {place("a", 4.5), place("b", 3.2), place("a", 4.5)},
		cityQuery("부산"): {place("a", 4.5), place("c", 4.8)},
	}}
	catalog := &fakeCatalog{}
	cfg := config.CrawlerConfig{Cities: []string{"서울", "부산"}, MinRating: 4.0}

	saved := crawl(context.Background(), zap.NewNop(), searcher, catalog, cfg)

	// "a" once (deduped across cities and pages), "b" dropped by rating, "c" kept.
	if saved != 2 || len(catalog.saved) != 2 {
		t.Fatalf("saved = %d (%d rows), want 2", saved, len(catalog.saved))
	}
	ids := map[string]bool{}
	for _, h := range catalog.saved {
		ids[h.PlaceID] = true
	}
	if !ids["a"] || !ids["c"] || ids["b"] {
		t.Errorf("saved ids = %v", ids)
	}
}
