package itinerary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	database "github.com/localexplorer/itinerary-api/app/db"
	"github.com/localexplorer/itinerary-api/internal/api"
	"github.com/localexplorer/itinerary-api/internal/types"
)

const uniqueViolationCode = "23505"

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	// CreateItinerary inserts a new itinerary. A duplicate (user, title)
	// pair returns api.ErrConflict.
	CreateItinerary(ctx context.Context, userID uuid.UUID, title string, daysCount int, startDate *time.Time) (*types.Itinerary, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]types.Itinerary, error)
	// GetForUser loads one itinerary scoped to its owner. An itinerary
	// belonging to another user is api.ErrNotFound, never a leak.
	GetForUser(ctx context.Context, userID, itineraryID uuid.UUID) (*types.Itinerary, error)
	// AppendItem inserts an item at the next free position of the day.
	AppendItem(ctx context.Context, itineraryID, placeID uuid.UUID, dayIndex int, note *string) (*types.ItineraryItem, error)
	// RemoveItem deletes one item and reports whether it existed.
	RemoveItem(ctx context.Context, itineraryID, itemID uuid.UUID) (bool, error)
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

func (r *RepositoryImpl) CreateItinerary(ctx context.Context, userID uuid.UUID, title string, daysCount int, startDate *time.Time) (*types.Itinerary, error) {
	query := `
        INSERT INTO itineraries (user_id, title, days_count, start_date)
        VALUES ($1, $2, $3, $4)
        RETURNING id, user_id, title, days_count, start_date, created_at
    `
	var it types.Itinerary
	err := r.db.QueryRow(ctx, query, userID, title, daysCount, startDate).Scan(
		&it.ID, &it.UserID, &it.Title, &it.DaysCount, &it.StartDate, &it.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, fmt.Errorf("itinerary title already in use: %w", api.ErrConflict)
		}
		r.logger.ErrorContext(ctx, "Failed to create itinerary", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create itinerary: %w", err)
	}
	return &it, nil
}

func (r *RepositoryImpl) ListForUser(ctx context.Context, userID uuid.UUID) ([]types.Itinerary, error) {
	query := `
        SELECT id, user_id, title, days_count, start_date, created_at
        FROM itineraries
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to list itineraries", slog.Any("error", err))
		return nil, fmt.Errorf("failed to list itineraries: %w", err)
	}
	defer rows.Close()

	itineraries := []types.Itinerary{}
	for rows.Next() {
		var it types.Itinerary
		if err := rows.Scan(&it.ID, &it.UserID, &it.Title, &it.DaysCount, &it.StartDate, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan itinerary: %w", err)
		}
		itineraries = append(itineraries, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read itineraries: %w", err)
	}
	return itineraries, nil
}

func (r *RepositoryImpl) GetForUser(ctx context.Context, userID, itineraryID uuid.UUID) (*types.Itinerary, error) {
	query := `
        SELECT id, user_id, title, days_count, start_date, created_at
        FROM itineraries
        WHERE id = $1 AND user_id = $2
    `
	var it types.Itinerary
	err := r.db.QueryRow(ctx, query, itineraryID, userID).Scan(
		&it.ID, &it.UserID, &it.Title, &it.DaysCount, &it.StartDate, &it.CreatedAt,
	)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, fmt.Errorf("itinerary not found: %w", api.ErrNotFound)
		}
		r.logger.ErrorContext(ctx, "Failed to get itinerary", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get itinerary: %w", err)
	}
	return &it, nil
}

func (r *RepositoryImpl) AppendItem(ctx context.Context, itineraryID, placeID uuid.UUID, dayIndex int, note *string) (*types.ItineraryItem, error) {
	query := `
        INSERT INTO itinerary_items (itinerary_id, place_id, day_index, position, note)
        SELECT $1, $2, $3, COALESCE(MAX(position) + 1, 0), $4
        FROM itinerary_items
        WHERE itinerary_id = $1 AND day_index = $3
        RETURNING id, itinerary_id, place_id, day_index, position, note, created_at
    `
	var item types.ItineraryItem
	err := r.db.QueryRow(ctx, query, itineraryID, placeID, dayIndex, note).Scan(
		&item.ID, &item.ItineraryID, &item.PlaceID, &item.DayIndex, &item.Position, &item.Note, &item.CreatedAt,
	)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to append itinerary item", slog.Any("error", err))
		return nil, fmt.Errorf("failed to append itinerary item: %w", err)
	}
	return &item, nil
}

func (r *RepositoryImpl) RemoveItem(ctx context.Context, itineraryID, itemID uuid.UUID) (bool, error) {
	query := `DELETE FROM itinerary_items WHERE id = $1 AND itinerary_id = $2`
	tag, err := r.db.Exec(ctx, query, itemID, itineraryID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to remove itinerary item", slog.Any("error", err))
		return false, fmt.Errorf("failed to remove itinerary item: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
