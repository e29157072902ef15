package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/localexplorer/itinerary-api/app/observability/metrics"
)

// Store is one cache backend. Implementations must be safe for concurrent
// use; entries are written wholesale and never mutated in place.
type Store interface {
	// Get returns the raw payload for key, or found=false on a miss.
	// Expired entries are a miss.
	Get(ctx context.Context, key string) (payload []byte, found bool, err error)
	// Set writes payload under key with the given TTL.
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	// Delete removes key; deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Service is a cache-aside layer over a Store. Backend failures are logged
// and swallowed so the cache can never break the primary read path.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Invalidate drops key, best-effort.
func (s *Service) Invalidate(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "Cache delete failed", slog.String("key", key), slog.Any("error", err))
	}
}

// Lookup is the cache-aside read path: a backend miss, an expired entry or
// a payload that does not decode as T all count as a miss. Undecodable
// entries are purged so they cannot poison future reads. On a miss the
// resolver runs and its result is written back best-effort.
func Lookup[T any](ctx context.Context, s *Service, key string, ttl time.Duration, resolve func(context.Context) (T, error)) (T, bool, error) {
	var zero T

	payload, found, err := s.store.Get(ctx, key)
	if err != nil {
		s.logger.WarnContext(ctx, "Cache get failed, falling back to resolver",
			slog.String("key", key), slog.Any("error", err))
	} else if found {
		var value T
		if err := json.Unmarshal(payload, &value); err == nil {
			metrics.Get().CacheHitsTotal.Add(ctx, 1)
			return value, true, nil
		}
		s.logger.WarnContext(ctx, "Cache entry failed to decode, purging",
			slog.String("key", key))
		s.Invalidate(ctx, key)
	}

	metrics.Get().CacheMissesTotal.Add(ctx, 1)

	value, err := resolve(ctx)
	if err != nil {
		return zero, false, err
	}

	if encoded, err := json.Marshal(value); err != nil {
		s.logger.WarnContext(ctx, "Cache encode failed", slog.String("key", key), slog.Any("error", err))
	} else if err := s.store.Set(ctx, key, encoded, ttl); err != nil {
		s.logger.WarnContext(ctx, "Cache set failed", slog.String("key", key), slog.Any("error", err))
	}

	return value, false, nil
}

// PlacesKey builds the resolver cache key. The query is case-folded and
// trimmed so equivalent queries collapse to one entry; limit and radius are
// part of the key because they change the result set.
func PlacesKey(query string, limit, radiusM int) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	return fmt.Sprintf("places:q=%s|limit=%d|r=%d", normalized, limit, radiusM)
}

// ItemsKey builds the generated-items cache key for one user's itinerary.
func ItemsKey(userID, itineraryID string) string {
	return fmt.Sprintf("items:%s:%s", userID, itineraryID)
}
