package place

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/localexplorer/itinerary-api/internal/types"
)

type MockPlaceService struct {
	mock.Mock
}

func (m *MockPlaceService) Search(ctx context.Context, query string, limit int) ([]types.Place, bool, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]types.Place), args.Bool(1), args.Error(2)
}

func TestSearchPlaces(t *testing.T) {
	logger := slog.Default()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockPlaceService)
		handler := NewHandler(mockService, logger)

		mockService.On("Search", mock.Anything, "paris", 10).
			Return([]types.Place{{Name: "Louvre"}}, false, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/places?q=paris&limit=10", nil)
		rec := httptest.NewRecorder()
		handler.SearchPlaces(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var places []types.Place
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &places))
		require.Len(t, places, 1)
		assert.Equal(t, "Louvre", places[0].Name)
		assert.Empty(t, rec.Header().Get("X-Cache"))
	})

	t.Run("CacheHitHeader", func(t *testing.T) {
		mockService := new(MockPlaceService)
		handler := NewHandler(mockService, logger)

		mockService.On("Search", mock.Anything, "paris", 0).
			Return([]types.Place{}, true, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/places?q=paris", nil)
		rec := httptest.NewRecorder()
		handler.SearchPlaces(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "HIT", rec.Header().Get("X-Cache"))
	})

	t.Run("BadLimit", func(t *testing.T) {
		mockService := new(MockPlaceService)
		handler := NewHandler(mockService, logger)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/places?q=paris&limit=abc", nil)
		rec := httptest.NewRecorder()
		handler.SearchPlaces(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "Search")
	})

	t.Run("ResolutionExhaustionIsBadGateway", func(t *testing.T) {
		mockService := new(MockPlaceService)
		handler := NewHandler(mockService, logger)

		resErr := &types.ResolutionError{Query: "paris", Attempts: []string{"a: down", "b: down"}}
		mockService.On("Search", mock.Anything, "paris", 0).Return(nil, false, resErr).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/places?q=paris", nil)
		rec := httptest.NewRecorder()
		handler.SearchPlaces(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "2 attempts")
	})
}
