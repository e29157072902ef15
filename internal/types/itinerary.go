package types

import (
	"time"

	"github.com/google/uuid"
)

// Itinerary is a user's multi-day trip container. DaysCount is validated
// to 1..30 on creation.
type Itinerary struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"-"`
	Title     string     `json:"title"`
	DaysCount int        `json:"days_count"`
	StartDate *time.Time `json:"start_date,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// ItineraryItem is one scheduled place within an itinerary day.
// Position is zero-based and gap-free within (ItineraryID, DayIndex).
type ItineraryItem struct {
	ID          uuid.UUID `json:"id"`
	ItineraryID uuid.UUID `json:"itinerary_id"`
	PlaceID     uuid.UUID `json:"place_id"`
	DayIndex    int       `json:"day_index"`
	Position    int       `json:"position"`
	Note        *string   `json:"note,omitempty"`
	Place       *Place    `json:"place,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// GeneratedItinerary is the result of a generation run: the persisted
// items re-read in (day_index, position) order.
type GeneratedItinerary struct {
	ItineraryID uuid.UUID       `json:"itinerary_id"`
	Count       int             `json:"count"`
	Items       []ItineraryItem `json:"items"`
}

type CreateItineraryRequest struct {
	Title     string     `json:"title"`
	DaysCount int        `json:"days_count"`
	StartDate *time.Time `json:"start_date,omitempty"`
}

type AddItineraryItemRequest struct {
	PlaceID  uuid.UUID `json:"place_id"`
	DayIndex int       `json:"day_index"`
	Note     *string   `json:"note,omitempty"`
}

type RemoveItineraryItemRequest struct {
	ItemID uuid.UUID `json:"item_id"`
}
