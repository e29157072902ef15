package place

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/localexplorer/itinerary-api/internal/cache"
	"github.com/localexplorer/itinerary-api/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

// QueryResolver is the upstream resolution capability the service caches.
type QueryResolver interface {
	Resolve(ctx context.Context, query string, limit int) ([]types.Place, error)
}

// Service is the cached place-search business logic.
type Service interface {
	// Search resolves a query through the cache-aside layer. The returned
	// bool reports whether the result came from cache.
	Search(ctx context.Context, query string, limit int) ([]types.Place, bool, error)
}

type ServiceImpl struct {
	logger       *slog.Logger
	resolver     QueryResolver
	cache        *cache.Service
	ttl          time.Duration
	defaultLimit int
	maxLimit     int
	maxRadiusM   int
}

func NewServiceImpl(resolver QueryResolver, cacheSvc *cache.Service, ttl time.Duration, defaultLimit, maxLimit, maxRadiusM int, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:       logger,
		resolver:     resolver,
		cache:        cacheSvc,
		ttl:          ttl,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
		maxRadiusM:   maxRadiusM,
	}
}

func (s *ServiceImpl) Search(ctx context.Context, query string, limit int) ([]types.Place, bool, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return []types.Place{}, false, nil
	}

	// Limit and radius are part of the key so distinct parameterizations
	// never collide.
	key := cache.PlacesKey(query, limit, s.maxRadiusM)
	return cache.Lookup(ctx, s.cache, key, s.ttl, func(ctx context.Context) ([]types.Place, error) {
		return s.resolver.Resolve(ctx, query, limit)
	})
}
