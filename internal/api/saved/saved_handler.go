package saved

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/localexplorer/itinerary-api/internal/api"
	"github.com/localexplorer/itinerary-api/internal/api/auth"
	"github.com/localexplorer/itinerary-api/internal/types"
)

type Handler struct {
	savedService Service
	logger       *slog.Logger
}

func NewHandler(savedService Service, logger *slog.Logger) *Handler {
	return &Handler{
		savedService: savedService,
		logger:       logger,
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

func (h *Handler) ListSavedPlaces(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("SavedHandler").Start(r.Context(), "ListSavedPlaces", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/saved"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "ListSavedPlaces"))

	userID, ok := userIDFromRequest(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	places, err := h.savedService.List(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to list saved places", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list saved places")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, places)
}

func (h *Handler) SavePlace(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("SavedHandler").Start(r.Context(), "SavePlace", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/saved"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "SavePlace"))

	userID, ok := userIDFromRequest(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req types.SavePlaceRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	sp, err := h.savedService.Save(ctx, userID, req)
	if err != nil {
		if errors.Is(err, api.ErrValidation) {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		l.ErrorContext(ctx, "Failed to save place", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to save place")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, sp)
}

func (h *Handler) UnsavePlace(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("SavedHandler").Start(r.Context(), "UnsavePlace", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/saved"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "UnsavePlace"))

	userID, ok := userIDFromRequest(r)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req types.UnsavePlaceRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.PlaceID == uuid.Nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "place_id is required")
		return
	}

	if err := h.savedService.Unsave(ctx, userID, req.PlaceID); err != nil {
		if errors.Is(err, api.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Place is not saved")
			return
		}
		l.ErrorContext(ctx, "Failed to unsave place", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to unsave place")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, api.Response{Success: true, Message: "Place unsaved"})
}
