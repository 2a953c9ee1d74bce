package hotels

import (
	"github.com/eventory/backend/internal/models"
	"github.com/eventory/backend/internal/places"
)

// FromPlace maps a Places API result onto a catalog row keyed by place_id.
// Zero coordinates and ratings stay nil so an upsert never overwrites stored
// values with blanks.
func FromPlace(p places.Place) *models.Hotel {
	h := &models.Hotel{
		Name:             p.Name,
		FormattedAddress: p.FormattedAddress,
		PlaceID:          p.PlaceID,
		UserRatingsTotal: p.UserRatingsTotal,
	}
	lat, lng := p.Geometry.Location.Lat, p.Geometry.Location.Lng
	if lat != 0 || lng != 0 {
		h.Latitude, h.Longitude = &lat, &lng
	}
	if p.Rating > 0 {
		rating := p.Rating
		h.Rating = &rating
	}
	return h
}
