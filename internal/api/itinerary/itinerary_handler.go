package itinerary

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/localexplorer/itinerary-api/internal/api"
	"github.com/localexplorer/itinerary-api/internal/api/auth"
	"github.com/localexplorer/itinerary-api/internal/types"
)

type Handler struct {
	itineraryService Service
	logger           *slog.Logger
}

func NewHandler(itineraryService Service, logger *slog.Logger) *Handler {
	return &Handler{
		itineraryService: itineraryService,
		logger:           logger,
	}
}

func userIDFromRequest(r *http.Request) (uuid.UUID, bool) {
	raw, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func itineraryIDFromRequest(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "itineraryID"))
}

func (h *Handler) CreateItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "CreateItinerary", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itineraries"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "CreateItinerary"))

	userID, ok := userIDFromRequest(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req types.CreateItineraryRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	it, err := h.itineraryService.Create(ctx, userID, req)
	if err != nil {
		if errors.Is(err, api.ErrConflict) {
			api.ErrorResponse(w, r, http.StatusConflict, "An itinerary with this title already exists")
			return
		}
		l.ErrorContext(ctx, "Failed to create itinerary", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to create itinerary")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, it)
}

func (h *Handler) ListItineraries(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "ListItineraries", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itineraries"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "ListItineraries"))

	userID, ok := userIDFromRequest(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	itineraries, err := h.itineraryService.List(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list itineraries", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list itineraries")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, itineraries)
}

func (h *Handler) GetItineraryItems(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "GetItineraryItems", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itineraries/{itineraryID}/items"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetItineraryItems"))

	userID, ok := userIDFromRequest(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	itineraryID, err := itineraryIDFromRequest(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid itinerary ID")
		return
	}

	items, hit, err := h.itineraryService.GetItems(ctx, userID, itineraryID)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Itinerary not found")
			return
		}
		l.ErrorContext(ctx, "Failed to get itinerary items", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to get itinerary items")
		return
	}

	if hit {
		w.Header().Set("X-Cache", "HIT")
	}
	api.WriteJSONResponse(w, r, http.StatusOK, items)
}

func (h *Handler) AddItineraryItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "AddItineraryItem", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itineraries/{itineraryID}/items"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "AddItineraryItem"))

	userID, ok := userIDFromRequest(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	itineraryID, err := itineraryIDFromRequest(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid itinerary ID")
		return
	}

	var req types.AddItineraryItemRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	item, err := h.itineraryService.AddItem(ctx, userID, itineraryID, req)
	if err != nil {
		switch {
		case errors.Is(err, api.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Itinerary not found")
		case errors.Is(err, api.ErrValidation):
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		default:
			l.ErrorContext(ctx, "Failed to add itinerary item", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to add itinerary item")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, item)
}

func (h *Handler) RemoveItineraryItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "RemoveItineraryItem", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itineraries/{itineraryID}/items"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "RemoveItineraryItem"))

	userID, ok := userIDFromRequest(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	itineraryID, err := itineraryIDFromRequest(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid itinerary ID")
		return
	}

	var req types.RemoveItineraryItemRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.ItemID == uuid.Nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "item_id is required")
		return
	}

	if err := h.itineraryService.RemoveItem(ctx, userID, itineraryID, req.ItemID); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Itinerary or item not found")
			return
		}
		l.ErrorContext(ctx, "Failed to remove itinerary item", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to remove itinerary item")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, api.Response{Success: true, Message: "Item removed"})
}

func (h *Handler) GenerateItinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "GenerateItinerary", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itineraries/{itineraryID}/generate"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GenerateItinerary"))

	userID, ok := userIDFromRequest(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}
	itineraryID, err := itineraryIDFromRequest(r)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid itinerary ID")
		return
	}

	generated, err := h.itineraryService.Generate(ctx, userID, itineraryID)
	if err != nil {
		switch {
		case errors.Is(err, api.ErrNotFound):
			api.ErrorResponse(w, r, http.StatusNotFound, "Itinerary not found")
		case errors.Is(err, api.ErrValidation):
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		default:
			l.ErrorContext(ctx, "Failed to generate itinerary", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to generate itinerary")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, generated)
}
