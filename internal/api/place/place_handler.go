package place

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/localexplorer/itinerary-api/internal/api"
	"github.com/localexplorer/itinerary-api/internal/types"
)

type Handler struct {
	placeService Service
	logger       *slog.Logger
}

func NewHandler(placeService Service, logger *slog.Logger) *Handler {
	return &Handler{
		placeService: placeService,
		logger:       logger,
	}
}

// SearchPlaces handles GET /places?q=...&limit=... An empty query is a
// valid request answered with an empty list.
func (h *Handler) SearchPlaces(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlaceHandler").Start(r.Context(), "SearchPlaces", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/places"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "SearchPlaces"))

	query := r.URL.Query().Get("q")
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = parsed
	}

	places, hit, err := h.placeService.Search(ctx, query, limit)
	if err != nil {
		var resErr *types.ResolutionError
		if errors.As(err, &resErr) {
			l.ErrorContext(ctx, "Place resolution exhausted all providers",
				slog.Int("attempts", len(resErr.Attempts)))
			api.ErrorResponse(w, r, http.StatusBadGateway,
				fmt.Sprintf("places query failed after %d attempts", len(resErr.Attempts)))
			return
		}
		l.ErrorContext(ctx, "Place search failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to search places")
		return
	}

	if hit {
		w.Header().Set("X-Cache", "HIT")
	}
	api.WriteJSONResponse(w, r, http.StatusOK, places)
}
