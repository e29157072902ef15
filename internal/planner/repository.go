package planner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	database "github.com/localexplorer/itinerary-api/app/db"
	"github.com/localexplorer/itinerary-api/app/observability/metrics"
	"github.com/localexplorer/itinerary-api/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository is the generator's only touchpoint with storage: the atomic
// replace of an itinerary's items, and the ordered read-back.
type Repository interface {
	// ReplaceItems deletes every prior item of the itinerary and inserts
	// the new set in one transaction. Partial writes are never observable.
	ReplaceItems(ctx context.Context, itineraryID uuid.UUID, items []types.ItineraryItem) error
	// ListItems returns the itinerary's items with their places, ordered
	// by (day_index, position) ascending.
	ListItems(ctx context.Context, itineraryID uuid.UUID) ([]types.ItineraryItem, error)
}

type RepositoryImpl struct {
	logger *slog.Logger
	db     database.Querier
}

func NewRepository(db database.Querier, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		db:     db,
	}
}

func (r *RepositoryImpl) ReplaceItems(ctx context.Context, itineraryID uuid.UUID, items []types.ItineraryItem) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to begin replace transaction", slog.Any("error", err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM itinerary_items WHERE itinerary_id = $1`, itineraryID); err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete prior itinerary items", slog.Any("error", err))
		return fmt.Errorf("failed to delete prior items: %w", err)
	}

	insert := `
        INSERT INTO itinerary_items (itinerary_id, place_id, day_index, position, note)
        VALUES ($1, $2, $3, $4, $5)
    `
	for _, item := range items {
		if _, err := tx.Exec(ctx, insert,
			itineraryID, item.PlaceID, item.DayIndex, item.Position, item.Note,
		); err != nil {
			r.logger.ErrorContext(ctx, "Failed to insert itinerary item",
				slog.Int("day_index", item.DayIndex), slog.Int("position", item.Position), slog.Any("error", err))
			return fmt.Errorf("failed to insert item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.ErrorContext(ctx, "Failed to commit replace transaction", slog.Any("error", err))
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) ListItems(ctx context.Context, itineraryID uuid.UUID) ([]types.ItineraryItem, error) {
	query := `
        SELECT i.id, i.itinerary_id, i.place_id, i.day_index, i.position, i.note, i.created_at,
               p.id, p.provider, p.provider_id, p.name, p.address, p.category, p.lat, p.lon
        FROM itinerary_items i
        JOIN places p ON p.id = i.place_id
        WHERE i.itinerary_id = $1
        ORDER BY i.day_index, i.position
    `
	rows, err := r.db.Query(ctx, query, itineraryID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list itinerary items", slog.Any("error", err))
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		return nil, fmt.Errorf("failed to list itinerary items: %w", err)
	}
	defer rows.Close()

	var items []types.ItineraryItem
	for rows.Next() {
		var item types.ItineraryItem
		var place types.Place
		err := rows.Scan(
			&item.ID, &item.ItineraryID, &item.PlaceID, &item.DayIndex, &item.Position, &item.Note, &item.CreatedAt,
			&place.ID, &place.Provider, &place.ProviderID, &place.Name, &place.Address, &place.Category, &place.Lat, &place.Lon,
		)
		if err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan itinerary item", slog.Any("error", err))
			return nil, fmt.Errorf("failed to scan itinerary item: %w", err)
		}
		item.Place = &place
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating itinerary item rows: %w", err)
	}
	return items, nil
}
