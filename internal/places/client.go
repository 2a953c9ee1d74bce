// Package places is a thin client for the Google Places API. It backfills
// hotel catalog data; when no API key is configured every lookup reports
// ErrDisabled and callers fall back to their defaults.
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/eventory/backend/config"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place"

// ErrDisabled means no API key is configured. Callers degrade to defaults.
var ErrDisabled = errors.New("places: not configured")

// Place is the subset of Places API fields the catalog stores.
type Place struct {
	Name             string  `json:"name"`
	FormattedAddress string  `json:"formatted_address"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
	Rating           float64 `json:"rating"`
	UserRatingsTotal int     `json:"user_ratings_total"`
	PlaceID          string  `json:"place_id"`
}

// Client calls the Places API.
type Client struct {
	httpClient *http.Client
	apiKey     string
	language   string
	baseURL    string
	logger     *zap.Logger
}

// NewClient creates a places client from config. The client is usable even
// without an API key; calls then return ErrDisabled.
func NewClient(cfg config.PlacesConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiKey:     cfg.APIKey,
		language:   cfg.Language,
		baseURL:    defaultBaseURL,
		logger:     logger,
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool { return c != nil && c.apiKey != "" }

type searchResponse struct {
	Status        string  `json:"status"`
	Results       []Place `json:"results"`
	NextPageToken string  `json:"next_page_token"`
}

type detailsResponse struct {
	Status string `json:"status"`
	Result Place  `json:"result"`
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if !c.Enabled() {
		return ErrDisabled
	}
	params.Set("key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("places request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("places: http %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// TextSearch runs a lodging text search, e.g. "서울 5성급 호텔". A non-empty
// pageToken continues a previous search. ZERO_RESULTS is not an error.
func (c *Client) TextSearch(ctx context.Context, query, pageToken string) ([]Place, string, error) {
	params := url.Values{}
	if pageToken != "" {
		params.Set("pagetoken", pageToken)
	} else {
		params.Set("query", query)
		params.Set("type", "lodging")
	}
	var resp searchResponse
	if err := c.get(ctx, "/textsearch/json", params, &resp); err != nil {
		return nil, "", err
	}
	switch resp.Status {
	case "OK":
		return resp.Results, resp.NextPageToken, nil
	case "ZERO_RESULTS":
		return nil, "", nil
	default:
		return nil, "", fmt.Errorf("places: status %s", resp.Status)
	}
}

// Details fetches one place by its place_id.
func (c *Client) Details(ctx context.Context, placeID string) (*Place, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "name,formatted_address,geometry,rating,user_ratings_total,place_id")
	var resp detailsResponse
	if err := c.get(ctx, "/details/json", params, &resp); err != nil {
		return nil, err
	}
	if resp.Status != "OK" {
		return nil, fmt.Errorf("places: status %s", resp.Status)
	}
	return &resp.Result, nil
}
