package place

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/localexplorer/itinerary-api/app/observability/metrics"
	"github.com/localexplorer/itinerary-api/internal/types"
)

// Resolver turns a free-text query into nearby points of interest. It
// geocodes the query and then walks a fixed priority list of POI providers
// with a shrinking search radius, one attempt in flight at a time so no
// provider gets hammered. Each attempt carries its own timeout; a failed
// attempt is recorded and the pipeline moves on.
type Resolver struct {
	logger    *slog.Logger
	geocoder  Geocoder
	providers []POIProvider
	radiiM    []int
}

func NewResolver(geocoder Geocoder, providers []POIProvider, radiiM []int, logger *slog.Logger) *Resolver {
	return &Resolver{
		logger:    logger,
		geocoder:  geocoder,
		providers: providers,
		radiiM:    radiiM,
	}
}

// Resolve returns up to limit normalized places near the queried location.
// An empty query and a query that geocodes to nothing both return an empty
// list without error; only exhausting every (provider, radius) pair is a
// *types.ResolutionError.
func (r *Resolver) Resolve(ctx context.Context, query string, limit int) ([]types.Place, error) {
	ctx, span := otel.Tracer("PlaceResolver").Start(ctx, "Resolve", trace.WithAttributes(
		attribute.String("query", query),
		attribute.Int("limit", limit),
	))
	defer span.End()

	metrics.Get().ResolveRequestsTotal.Add(ctx, 1)

	query = strings.TrimSpace(query)
	if query == "" {
		return []types.Place{}, nil
	}

	lat, lon, found, err := r.geocoder.Geocode(ctx, query)
	if err != nil {
		r.logger.ErrorContext(ctx, "Geocoding failed", slog.String("query", query), slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("geocoding failed: %w", err)
	}
	if !found {
		// "Place not found" is a normal outcome, not a transport failure.
		r.logger.DebugContext(ctx, "Query geocoded to nothing", slog.String("query", query))
		return []types.Place{}, nil
	}
	span.SetAttributes(attribute.Float64("geo.lat", lat), attribute.Float64("geo.lon", lon))

	var attempts []string
	for _, provider := range r.providers {
		for _, radius := range r.radiiM {
			metrics.Get().ResolveAttemptsTotal.Add(ctx, 1)

			places, err := provider.Search(ctx, lat, lon, radius, limit)
			if err != nil {
				diag := fmt.Sprintf("%s radius=%dm: %v", provider.Name(), radius, err)
				attempts = append(attempts, diag)
				r.logger.WarnContext(ctx, "POI search attempt failed, trying next option",
					slog.String("provider", provider.Name()),
					slog.Int("radius_m", radius),
					slog.Any("error", err),
				)
				continue
			}

			span.SetAttributes(attribute.Int("results.count", len(places)))
			span.SetStatus(codes.Ok, "Places resolved")
			return places, nil
		}
	}

	metrics.Get().ResolveFailuresTotal.Add(ctx, 1)
	resErr := &types.ResolutionError{Query: query, Attempts: attempts}
	span.RecordError(resErr)
	r.logger.ErrorContext(ctx, "All POI search attempts exhausted",
		slog.String("query", query), slog.Int("attempts", len(attempts)))
	return nil, resErr
}
