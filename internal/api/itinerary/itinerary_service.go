package itinerary

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/localexplorer/itinerary-api/internal/api"
	"github.com/localexplorer/itinerary-api/internal/api/saved"
	"github.com/localexplorer/itinerary-api/internal/cache"
	"github.com/localexplorer/itinerary-api/internal/planner"
	"github.com/localexplorer/itinerary-api/internal/types"
)

const (
	defaultTitle = "My Trip"
	minDaysCount = 1
	maxDaysCount = 30
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	Create(ctx context.Context, userID uuid.UUID, req types.CreateItineraryRequest) (*types.Itinerary, error)
	List(ctx context.Context, userID uuid.UUID) ([]types.Itinerary, error)
	// GetItems returns the itinerary's items in (day_index, position)
	// order, read through the items cache. The bool reports a cache hit.
	GetItems(ctx context.Context, userID, itineraryID uuid.UUID) ([]types.ItineraryItem, bool, error)
	AddItem(ctx context.Context, userID, itineraryID uuid.UUID, req types.AddItineraryItemRequest) (*types.ItineraryItem, error)
	RemoveItem(ctx context.Context, userID, itineraryID, itemID uuid.UUID) error
	// Generate rebuilds the itinerary's items from the user's saved
	// places and returns the persisted plan.
	Generate(ctx context.Context, userID, itineraryID uuid.UUID) (*types.GeneratedItinerary, error)
}

type ServiceImpl struct {
	logger      *slog.Logger
	repo        Repository
	savedRepo   saved.Repository
	plannerRepo planner.Repository
	generator   *planner.Generator
	cache       *cache.Service
	itemsTTL    time.Duration
}

func NewServiceImpl(
	repo Repository,
	savedRepo saved.Repository,
	plannerRepo planner.Repository,
	generator *planner.Generator,
	cacheService *cache.Service,
	itemsTTL time.Duration,
	logger *slog.Logger,
) *ServiceImpl {
	return &ServiceImpl{
		logger:      logger,
		repo:        repo,
		savedRepo:   savedRepo,
		plannerRepo: plannerRepo,
		generator:   generator,
		cache:       cacheService,
		itemsTTL:    itemsTTL,
	}
}

func (s *ServiceImpl) Create(ctx context.Context, userID uuid.UUID, req types.CreateItineraryRequest) (*types.Itinerary, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = defaultTitle
	}

	daysCount := req.DaysCount
	if daysCount < minDaysCount {
		daysCount = minDaysCount
	}
	if daysCount > maxDaysCount {
		daysCount = maxDaysCount
	}

	it, err := s.repo.CreateItinerary(ctx, userID, title, daysCount, req.StartDate)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "Itinerary created",
		slog.String("itineraryID", it.ID.String()), slog.Int("days", it.DaysCount))
	return it, nil
}

func (s *ServiceImpl) List(ctx context.Context, userID uuid.UUID) ([]types.Itinerary, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *ServiceImpl) GetItems(ctx context.Context, userID, itineraryID uuid.UUID) ([]types.ItineraryItem, bool, error) {
	if _, err := s.repo.GetForUser(ctx, userID, itineraryID); err != nil {
		return nil, false, err
	}

	key := cache.ItemsKey(userID.String(), itineraryID.String())
	return cache.Lookup(ctx, s.cache, key, s.itemsTTL, func(ctx context.Context) ([]types.ItineraryItem, error) {
		return s.plannerRepo.ListItems(ctx, itineraryID)
	})
}

func (s *ServiceImpl) AddItem(ctx context.Context, userID, itineraryID uuid.UUID, req types.AddItineraryItemRequest) (*types.ItineraryItem, error) {
	it, err := s.repo.GetForUser(ctx, userID, itineraryID)
	if err != nil {
		return nil, err
	}
	if req.PlaceID == uuid.Nil {
		return nil, fmt.Errorf("%w: place_id is required", api.ErrValidation)
	}
	if req.DayIndex < 0 || req.DayIndex >= it.DaysCount {
		return nil, fmt.Errorf("%w: day_index must be between 0 and %d", api.ErrValidation, it.DaysCount-1)
	}

	item, err := s.repo.AppendItem(ctx, itineraryID, req.PlaceID, req.DayIndex, req.Note)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.ItemsKey(userID.String(), itineraryID.String()))
	return item, nil
}

func (s *ServiceImpl) RemoveItem(ctx context.Context, userID, itineraryID, itemID uuid.UUID) error {
	if _, err := s.repo.GetForUser(ctx, userID, itineraryID); err != nil {
		return err
	}

	removed, err := s.repo.RemoveItem(ctx, itineraryID, itemID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("itinerary item not found: %w", api.ErrNotFound)
	}

	s.cache.Invalidate(ctx, cache.ItemsKey(userID.String(), itineraryID.String()))
	return nil
}

func (s *ServiceImpl) Generate(ctx context.Context, userID, itineraryID uuid.UUID) (*types.GeneratedItinerary, error) {
	it, err := s.repo.GetForUser(ctx, userID, itineraryID)
	if err != nil {
		return nil, err
	}

	savedPlaces, err := s.savedRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	// Newest-first listing order is the truncation priority.
	candidates := make([]types.Place, 0, len(savedPlaces))
	for _, sp := range savedPlaces {
		candidates = append(candidates, sp.Place)
	}

	generated, err := s.generator.Generate(ctx, itineraryID, candidates, it.DaysCount)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, cache.ItemsKey(userID.String(), itineraryID.String()))
	return generated, nil
}
