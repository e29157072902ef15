package types

import (
	"time"

	"github.com/google/uuid"
)

// Place is a point of interest, either freshly resolved from an external
// provider (ID is uuid.Nil until persisted) or loaded from storage.
// Identity for externally-resolved places is (Provider, ProviderID).
// Latitude/longitude are independently nullable; a place missing either
// coordinate is excluded from coordinate-based planning.
type Place struct {
	ID         uuid.UUID `json:"id,omitempty"`
	Provider   string    `json:"provider"`
	ProviderID string    `json:"provider_id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	Category   *string   `json:"category,omitempty"`
	Lat        *float64  `json:"lat,omitempty"`
	Lon        *float64  `json:"lon,omitempty"`
}

// HasCoords reports whether both coordinates are present.
func (p Place) HasCoords() bool {
	return p.Lat != nil && p.Lon != nil
}

// CategoryOrEmpty returns the category for sorting purposes; a missing
// category sorts first as the empty string.
func (p Place) CategoryOrEmpty() string {
	if p.Category == nil {
		return ""
	}
	return *p.Category
}

// SavedPlace is a user's bookmark of a place, newest-first in listings.
type SavedPlace struct {
	ID        uuid.UUID `json:"saved_id"`
	UserID    uuid.UUID `json:"-"`
	PlaceID   uuid.UUID `json:"place_id"`
	Place     Place     `json:"place"`
	CreatedAt time.Time `json:"created_at"`
}

// SavePlaceRequest is the body for bookmarking an externally-resolved place.
type SavePlaceRequest struct {
	Provider   string   `json:"provider"`
	ProviderID string   `json:"provider_id"`
	Name       string   `json:"name"`
	Address    string   `json:"address,omitempty"`
	Category   *string  `json:"category,omitempty"`
	Lat        *float64 `json:"lat,omitempty"`
	Lon        *float64 `json:"lon,omitempty"`
}

// UnsavePlaceRequest removes a bookmark by place ID.
type UnsavePlaceRequest struct {
	PlaceID uuid.UUID `json:"place_id"`
}
