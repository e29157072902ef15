package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()

	t.Run("GetFreshEntry", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		store := NewPostgresStore(mockPool)

		mockPool.ExpectQuery("SELECT payload, expires_at FROM query_cache").
			WithArgs("k").
			WillReturnRows(pgxmock.NewRows([]string{"payload", "expires_at"}).
				AddRow([]byte(`["cached"]`), time.Now().Add(time.Hour)))

		payload, found, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, []byte(`["cached"]`), payload)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("GetMissingEntry", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		store := NewPostgresStore(mockPool)

		mockPool.ExpectQuery("SELECT payload, expires_at FROM query_cache").
			WithArgs("k").
			WillReturnRows(pgxmock.NewRows([]string{"payload", "expires_at"}))

		_, found, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("ExpiredEntryDeletedOnRead", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		store := NewPostgresStore(mockPool)

		mockPool.ExpectQuery("SELECT payload, expires_at FROM query_cache").
			WithArgs("k").
			WillReturnRows(pgxmock.NewRows([]string{"payload", "expires_at"}).
				AddRow([]byte(`["stale"]`), time.Now().Add(-time.Minute)))
		mockPool.ExpectExec("DELETE FROM query_cache").
			WithArgs("k").
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		_, found, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.False(t, found)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("SetUpserts", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		store := NewPostgresStore(mockPool)

		mockPool.ExpectExec("INSERT INTO query_cache").
			WithArgs("k", []byte("payload"), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, store.Set(ctx, "k", []byte("payload"), time.Minute))
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("GetErrorSurfaces", func(t *testing.T) {
		mockPool, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mockPool.Close()

		store := NewPostgresStore(mockPool)

		mockPool.ExpectQuery("SELECT payload, expires_at FROM query_cache").
			WithArgs("k").
			WillReturnError(errors.New("connection reset"))

		_, _, err = store.Get(ctx, "k")
		assert.Error(t, err)
	})
}
