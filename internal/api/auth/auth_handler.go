package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/localexplorer/itinerary-api/internal/api"
)

type Handler struct {
	authService Service
	logger      *slog.Logger
}

func NewHandler(authService Service, logger *slog.Logger) *Handler {
	return &Handler{
		authService: authService,
		logger:      logger,
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Register", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/auth/register"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Register"))

	var req RegisterRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.authService.Register(ctx, req.Username, req.Email, req.Password); err != nil {
		switch {
		case errors.Is(err, api.ErrValidation):
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		case errors.Is(err, api.ErrConflict):
			api.ErrorResponse(w, r, http.StatusConflict, "Email already registered")
		default:
			l.ErrorContext(ctx, "Registration failed", slog.Any("error", err))
			api.ErrorResponse(w, r, http.StatusInternalServerError, "Registration failed")
		}
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, api.Response{Success: true, Message: "User registered"})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "Login", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/auth/login"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Login"))

	var req LoginRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	access, refresh, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, api.ErrUnauthenticated) {
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		l.ErrorContext(ctx, "Login failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Login failed")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, LoginResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		Message:      "Login successful",
	})
}

func (h *Handler) RefreshSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("AuthHandler").Start(r.Context(), "RefreshSession", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/auth/refresh"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "RefreshSession"))

	var req RefreshTokenRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	access, refresh, err := h.authService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, api.ErrUnauthenticated) {
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid or expired refresh token")
			return
		}
		l.ErrorContext(ctx, "Session refresh failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Session refresh failed")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, TokenResponse{AccessToken: access, RefreshToken: refresh})
}
