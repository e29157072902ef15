package place

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	database "github.com/localexplorer/itinerary-api/app/db"
	"github.com/localexplorer/itinerary-api/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

// Repository persists externally-resolved places.
type Repository interface {
	// UpsertPlace inserts the place or, when (provider, provider_id)
	// already exists, refreshes its mutable fields. Returns the stored
	// surrogate id either way; a conflicting write is never an error.
	UpsertPlace(ctx context.Context, p types.Place) (uuid.UUID, error)
	// GetPlace loads one place by surrogate id.
	GetPlace(ctx context.Context, placeID uuid.UUID) (types.Place, error)
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

func (r *RepositoryImpl) UpsertPlace(ctx context.Context, p types.Place) (uuid.UUID, error) {
	query := `
        INSERT INTO places (provider, provider_id, name, address, category, lat, lon)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        ON CONFLICT (provider, provider_id) DO UPDATE
        SET name = EXCLUDED.name, address = EXCLUDED.address, category = EXCLUDED.category,
            lat = EXCLUDED.lat, lon = EXCLUDED.lon, updated_at = now()
        RETURNING id
    `
	var id uuid.UUID
	err := r.db.QueryRow(ctx, query,
		p.Provider, p.ProviderID, p.Name, p.Address, p.Category, p.Lat, p.Lon,
	).Scan(&id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to upsert place", slog.Any("error", err))
		return uuid.Nil, fmt.Errorf("failed to upsert place: %w", err)
	}
	return id, nil
}

func (r *RepositoryImpl) GetPlace(ctx context.Context, placeID uuid.UUID) (types.Place, error) {
	query := `
        SELECT id, provider, provider_id, name, address, category, lat, lon
        FROM places
        WHERE id = $1
    `
	var p types.Place
	err := r.db.QueryRow(ctx, query, placeID).Scan(
		&p.ID, &p.Provider, &p.ProviderID, &p.Name, &p.Address, &p.Category, &p.Lat, &p.Lon,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return types.Place{}, fmt.Errorf("place not found: %w", err)
		}
		r.logger.ErrorContext(ctx, "Failed to get place", slog.Any("error", err))
		return types.Place{}, fmt.Errorf("failed to get place: %w", err)
	}
	return p, nil
}
