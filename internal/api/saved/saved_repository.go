package saved

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	database "github.com/localexplorer/itinerary-api/app/db"
	"github.com/localexplorer/itinerary-api/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository persists user bookmarks.
type Repository interface {
	// SaveForUser bookmarks a stored place. Saving a place twice is a
	// no-op that returns the existing bookmark id.
	SaveForUser(ctx context.Context, userID, placeID uuid.UUID) (uuid.UUID, error)
	// RemoveForUser deletes a bookmark and reports whether one existed.
	RemoveForUser(ctx context.Context, userID, placeID uuid.UUID) (bool, error)
	// ListForUser returns the user's bookmarks newest-first, place data
	// included.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]types.SavedPlace, error)
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

func (r *RepositoryImpl) SaveForUser(ctx context.Context, userID, placeID uuid.UUID) (uuid.UUID, error) {
	query := `
        INSERT INTO saved_places (user_id, place_id)
        VALUES ($1, $2)
        ON CONFLICT (user_id, place_id) DO UPDATE SET place_id = EXCLUDED.place_id
        RETURNING id
    `
	var id uuid.UUID
	if err := r.db.QueryRow(ctx, query, userID, placeID).Scan(&id); err != nil {
		r.logger.ErrorContext(ctx, "Failed to save place", slog.Any("error", err))
		return uuid.Nil, fmt.Errorf("failed to save place: %w", err)
	}
	return id, nil
}

func (r *RepositoryImpl) RemoveForUser(ctx context.Context, userID, placeID uuid.UUID) (bool, error) {
	query := `DELETE FROM saved_places WHERE user_id = $1 AND place_id = $2`
	tag, err := r.db.Exec(ctx, query, userID, placeID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to unsave place", slog.Any("error", err))
		return false, fmt.Errorf("failed to unsave place: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *RepositoryImpl) ListForUser(ctx context.Context, userID uuid.UUID) ([]types.SavedPlace, error) {
	query := `
        SELECT sp.id, sp.user_id, sp.place_id, sp.created_at,
               p.id, p.provider, p.provider_id, p.name, p.address, p.category, p.lat, p.lon
        FROM saved_places sp
        JOIN places p ON p.id = sp.place_id
        WHERE sp.user_id = $1
        ORDER BY sp.created_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list saved places", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list saved places: %w", err)
	}
	defer rows.Close()

	saved := []types.SavedPlace{}
	for rows.Next() {
		var sp types.SavedPlace
		if err := rows.Scan(
			&sp.ID, &sp.UserID, &sp.PlaceID, &sp.CreatedAt,
			&sp.Place.ID, &sp.Place.Provider, &sp.Place.ProviderID, &sp.Place.Name,
			&sp.Place.Address, &sp.Place.Category, &sp.Place.Lat, &sp.Place.Lon,
		); err != nil {
			return nil, fmt.Errorf("failed to scan saved place: %w", err)
		}
		saved = append(saved, sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read saved places: %w", err)
	}
	return saved, nil
}
