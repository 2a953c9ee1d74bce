package hotels

import "github.com/eventory/backend/internal/models"

// DefaultRoomTypes returns the room type set seeded for a hotel that has
// none. Prices are KRW per night.
func DefaultRoomTypes() []models.HotelRoomType {
	return []models.HotelRoomType{
		{
			RoomTypeName:  "Standard",
			Description:   "Comfortable room with city view",
			MaxOccupancy:  2,
			BedType:       "Double",
			Amenities:     []string{"WiFi", "TV", "Air conditioning"},
			PricePerNight: 150000,
		},
		{
			RoomTypeName:  "Deluxe",
			Description:   "Spacious room with premium furnishing",
			MaxOccupancy:  2,
			BedType:       "Queen",
			Amenities:     []string{"WiFi", "TV", "Air conditioning", "Minibar"},
			PricePerNight: 220000,
		},
		{
			RoomTypeName:  "Suite",
			Description:   "Separate living area and bedroom",
			MaxOccupancy:  4,
			BedType:       "King",
			Amenities:     []string{"WiFi", "TV", "Air conditioning", "Minibar", "Bathtub", "Lounge access"},
			PricePerNight: 350000,
		},
	}
}
