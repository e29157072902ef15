package planner

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localexplorer/itinerary-api/internal/types"
)

func TestReplaceItems(t *testing.T) {
	logger := slog.Default()
	itineraryID := uuid.New()
	placeID := uuid.New()

	t.Run("DeleteThenInsertInOneTransaction", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewRepository(mockPool, logger)

		items := []types.ItineraryItem{
			{PlaceID: placeID, DayIndex: 0, Position: 0},
			{PlaceID: placeID, DayIndex: 0, Position: 1},
		}

		mockPool.ExpectBegin()
		mockPool.ExpectExec("DELETE FROM itinerary_items").
			WithArgs(itineraryID).
			WillReturnResult(pgxmock.NewResult("DELETE", 3))
		for _, item := range items {
			mockPool.ExpectExec("INSERT INTO itinerary_items").
				WithArgs(itineraryID, item.PlaceID, item.DayIndex, item.Position, item.Note).
				WillReturnResult(pgxmock.NewResult("INSERT", 1))
		}
		mockPool.ExpectCommit()

		err = repo.ReplaceItems(context.Background(), itineraryID, items)

		require.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("InsertFailureRollsBack", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewRepository(mockPool, logger)

		items := []types.ItineraryItem{{PlaceID: placeID, DayIndex: 0, Position: 0}}

		mockPool.ExpectBegin()
		mockPool.ExpectExec("DELETE FROM itinerary_items").
			WithArgs(itineraryID).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		mockPool.ExpectExec("INSERT INTO itinerary_items").
			WithArgs(itineraryID, placeID, 0, 0, (*string)(nil)).
			WillReturnError(errors.New("constraint violation"))
		mockPool.ExpectRollback()

		err = repo.ReplaceItems(context.Background(), itineraryID, items)

		require.Error(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("EmptyItemsOnlyDeletes", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewRepository(mockPool, logger)

		mockPool.ExpectBegin()
		mockPool.ExpectExec("DELETE FROM itinerary_items").
			WithArgs(itineraryID).
			WillReturnResult(pgxmock.NewResult("DELETE", 5))
		mockPool.ExpectCommit()

		err = repo.ReplaceItems(context.Background(), itineraryID, nil)

		require.NoError(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestListItems(t *testing.T) {
	logger := slog.Default()
	itineraryID := uuid.New()

	t.Run("ScansItemsWithPlaces", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewRepository(mockPool, logger)

		itemID := uuid.New()
		placeID := uuid.New()
		now := time.Now()
		lat, lon := 48.86, 2.35
		category := "Museum"

		rows := pgxmock.NewRows([]string{
			"id", "itinerary_id", "place_id", "day_index", "position", "note", "created_at",
			"p_id", "provider", "provider_id", "name", "address", "category", "lat", "lon",
		}).AddRow(
			itemID, itineraryID, placeID, 0, 0, (*string)(nil), now,
			placeID, "osm", "node/1", "Louvre", "Rue de Rivoli Paris", &category, &lat, &lon,
		)

		mockPool.ExpectQuery("SELECT (.+) FROM itinerary_items").
			WithArgs(itineraryID).
			WillReturnRows(rows)

		items, err := repo.ListItems(context.Background(), itineraryID)

		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, itemID, items[0].ID)
		require.NotNil(t, items[0].Place)
		assert.Equal(t, "Louvre", items[0].Place.Name)
		assert.Equal(t, &category, items[0].Place.Category)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("QueryFailure", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		repo := NewRepository(mockPool, logger)

		mockPool.ExpectQuery("SELECT (.+) FROM itinerary_items").
			WithArgs(itineraryID).
			WillReturnError(errors.New("connection reset"))

		_, err = repo.ListItems(context.Background(), itineraryID)

		require.Error(t, err)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
