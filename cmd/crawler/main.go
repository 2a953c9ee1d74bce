// Package main runs the hotel catalog crawler. It sweeps a city list through
// the Places text search, keeps well-rated lodging, and upserts rows keyed by
// place_id so reruns refresh instead of duplicating.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eventory/backend/config"
	"github.com/eventory/backend/internal/hotels"
	"github.com/eventory/backend/internal/models"
	"github.com/eventory/backend/internal/places"
	"github.com/eventory/backend/pkg/database"
)

// pageDelay is how long a fresh next_page_token takes to become valid on the
// Places API side.
const pageDelay = 2 * time.Second

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if !cfg.Places.Enabled() {
		logger.Fatal("GOOGLE_PLACES_API_KEY is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	client := places.NewClient(cfg.Places, logger)
	repo := hotels.NewRepository(pool)

	saved := crawl(ctx, logger, client, repo, cfg.Crawler)
	logger.Info("crawl finished", zap.Int("hotels_saved", saved))
	if ctx.Err() != nil {
		os.Exit(1)
	}
}

// searcher is the slice of the places client the sweep needs.
type searcher interface {
	TextSearch(ctx context.Context, query, pageToken string) ([]places.Place, string, error)
}

// catalog is the slice of the hotels repository the sweep needs.
type catalog interface {
	Upsert(ctx context.Context, h *models.Hotel) error
}

// cityQuery builds the per-city search. Five-star hotels specifically; the
// rating cutoff alone pulls in a much broader set.
func cityQuery(city string) string {
	return city + " 5성급 호텔"
}

func crawl(ctx context.Context, logger *zap.Logger, client searcher, repo catalog, cfg config.CrawlerConfig) int {
	seen := make(map[string]struct{})
	saved := 0
	for _, city := range cfg.Cities {
		if ctx.Err() != nil {
			break
		}
		query := cityQuery(city)
		logger.Info("crawling city", zap.String("city", city))

		token := ""
		for page := 0; page < 3; page++ {
			if token != "" {
				select {
				case <-time.After(pageDelay):
				case <-ctx.Done():
					return saved
				}
			}
			results, next, err := client.TextSearch(ctx, query, token)
			if err != nil {
				logger.Warn("search failed", zap.String("city", city), zap.Error(err))
				break
			}
			for _, place := range results {
				if _, dup := seen[place.PlaceID]; dup {
					continue
				}
				seen[place.PlaceID] = struct{}{}
				if place.Rating < cfg.MinRating {
					continue
				}
				if err := repo.Upsert(ctx, hotels.FromPlace(place)); err != nil {
					logger.Warn("upsert failed", zap.String("place_id", place.PlaceID), zap.Error(err))
					continue
				}
				saved++
			}
			if next == "" {
				break
			}
			token = next
		}
	}
	return saved
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
