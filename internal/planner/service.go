package planner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/localexplorer/itinerary-api/app/observability/metrics"
	"github.com/localexplorer/itinerary-api/internal/api"
	"github.com/localexplorer/itinerary-api/internal/types"
)

const defaultPerDayCap = 6

// Generator turns an unordered candidate list into persisted, ordered
// day-by-day itinerary items. Output is deterministic for identical input:
// assignment, ordering and truncation carry no hidden randomness.
type Generator struct {
	logger    *slog.Logger
	repo      Repository
	perDayCap int
}

func NewGenerator(repo Repository, logger *slog.Logger, perDayCap int) *Generator {
	if perDayCap <= 0 {
		perDayCap = defaultPerDayCap
	}
	return &Generator{
		logger:    logger,
		repo:      repo,
		perDayCap: perDayCap,
	}
}

// Generate caps the candidate list at daysCount*perDayCap (input order
// preserved, callers pass newest-first), assigns places to days, orders
// each day, atomically replaces the itinerary's items and returns the
// persisted rows re-read in (day_index, position) order.
func (g *Generator) Generate(ctx context.Context, itineraryID uuid.UUID, candidates []types.Place, daysCount int) (*types.GeneratedItinerary, error) {
	ctx, span := otel.Tracer("Planner").Start(ctx, "Generate", trace.WithAttributes(
		attribute.String("itinerary.id", itineraryID.String()),
		attribute.Int("days_count", daysCount),
		attribute.Int("candidates", len(candidates)),
	))
	defer span.End()

	if daysCount < 1 {
		return nil, fmt.Errorf("%w: days count must be a positive integer", api.ErrValidation)
	}

	start := time.Now()

	// Global truncation bounds per-day density before assignment.
	if max := daysCount * g.perDayCap; len(candidates) > max {
		candidates = candidates[:max]
	}

	buckets := AssignDays(candidates, daysCount)

	items := make([]types.ItineraryItem, 0, len(candidates))
	for dayIndex, bucket := range buckets {
		for position, place := range OrderDay(bucket) {
			items = append(items, types.ItineraryItem{
				ItineraryID: itineraryID,
				PlaceID:     place.ID,
				DayIndex:    dayIndex,
				Position:    position,
			})
		}
	}

	if err := g.repo.ReplaceItems(ctx, itineraryID, items); err != nil {
		g.logger.ErrorContext(ctx, "Failed to replace itinerary items", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("failed to replace itinerary items: %w", err)
	}

	persisted, err := g.repo.ListItems(ctx, itineraryID)
	if err != nil {
		g.logger.ErrorContext(ctx, "Failed to re-read generated items", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("failed to read generated items: %w", err)
	}

	metrics.Get().GenerateDurationSeconds.Record(ctx, time.Since(start).Seconds())
	metrics.Get().GenerateRequestsTotal.Add(ctx, 1)

	g.logger.InfoContext(ctx, "Itinerary generated",
		slog.String("itineraryID", itineraryID.String()),
		slog.Int("items", len(persisted)),
		slog.Int("days", daysCount),
	)
	span.SetAttributes(attribute.Int("items.count", len(persisted)))
	span.SetStatus(codes.Ok, "Itinerary generated")

	return &types.GeneratedItinerary{
		ItineraryID: itineraryID,
		Count:       len(persisted),
		Items:       persisted,
	}, nil
}
