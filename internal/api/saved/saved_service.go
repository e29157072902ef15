package saved

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/localexplorer/itinerary-api/internal/api"
	"github.com/localexplorer/itinerary-api/internal/api/place"
	"github.com/localexplorer/itinerary-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	// Save persists the externally-resolved place and bookmarks it for the
	// user. Re-saving the same place is idempotent.
	Save(ctx context.Context, userID uuid.UUID, req types.SavePlaceRequest) (*types.SavedPlace, error)
	// Unsave removes a bookmark; api.ErrNotFound when none exists.
	Unsave(ctx context.Context, userID, placeID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]types.SavedPlace, error)
}

type ServiceImpl struct {
	logger    *slog.Logger
	repo      Repository
	placeRepo place.Repository
}

func NewServiceImpl(repo Repository, placeRepo place.Repository, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:    logger,
		repo:      repo,
		placeRepo: placeRepo,
	}
}

func (s *ServiceImpl) Save(ctx context.Context, userID uuid.UUID, req types.SavePlaceRequest) (*types.SavedPlace, error) {
	if strings.TrimSpace(req.Provider) == "" || strings.TrimSpace(req.ProviderID) == "" || strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: provider, provider_id and name are required", api.ErrValidation)
	}

	placeID, err := s.placeRepo.UpsertPlace(ctx, types.Place{
		Provider:   req.Provider,
		ProviderID: req.ProviderID,
		Name:       req.Name,
		Address:    req.Address,
		Category:   req.Category,
		Lat:        req.Lat,
		Lon:        req.Lon,
	})
	if err != nil {
		return nil, err
	}

	savedID, err := s.repo.SaveForUser(ctx, userID, placeID)
	if err != nil {
		return nil, err
	}

	p, err := s.placeRepo.GetPlace(ctx, placeID)
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "Place saved",
		slog.String("userID", userID.String()), slog.String("placeID", placeID.String()))
	return &types.SavedPlace{
		ID:      savedID,
		UserID:  userID,
		PlaceID: placeID,
		Place:   p,
	}, nil
}

func (s *ServiceImpl) Unsave(ctx context.Context, userID, placeID uuid.UUID) error {
	removed, err := s.repo.RemoveForUser(ctx, userID, placeID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("place is not saved: %w", api.ErrNotFound)
	}
	return nil
}

func (s *ServiceImpl) List(ctx context.Context, userID uuid.UUID) ([]types.SavedPlace, error) {
	return s.repo.ListForUser(ctx, userID)
}
