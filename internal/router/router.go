package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/localexplorer/itinerary-api/internal/api/auth"
	"github.com/localexplorer/itinerary-api/internal/api/itinerary"
	"github.com/localexplorer/itinerary-api/internal/api/place"
	"github.com/localexplorer/itinerary-api/internal/api/saved"
)

// Config carries the handlers and middleware the router mounts. Server-wide
// middleware (request id, logging, recoverer) is applied in main.go before
// this router.
type Config struct {
	AuthHandler            *auth.Handler
	PlaceHandler           *place.Handler
	SavedHandler           *saved.Handler
	ItineraryHandler       *itinerary.Handler
	AuthenticateMiddleware func(http.Handler) http.Handler
}

// SetupRouter wires the public auth routes and the authenticated API
// surface under /api/v1.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "X-Cache"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		// Public auth routes.
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", cfg.AuthHandler.Register)
			r.Post("/auth/login", cfg.AuthHandler.Login)
			r.Post("/auth/refresh", cfg.AuthHandler.RefreshSession)
		})

		// Everything below requires a Bearer token.
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Get("/places", cfg.PlaceHandler.SearchPlaces)

			r.Get("/saved", cfg.SavedHandler.ListSavedPlaces)
			r.Post("/saved", cfg.SavedHandler.SavePlace)
			r.Delete("/saved", cfg.SavedHandler.UnsavePlace)

			r.Route("/itineraries", func(r chi.Router) {
				r.Get("/", cfg.ItineraryHandler.ListItineraries)
				r.Post("/", cfg.ItineraryHandler.CreateItinerary)
				r.Route("/{itineraryID}", func(r chi.Router) {
					r.Get("/items", cfg.ItineraryHandler.GetItineraryItems)
					r.Post("/items", cfg.ItineraryHandler.AddItineraryItem)
					r.Delete("/items", cfg.ItineraryHandler.RemoveItineraryItem)
					r.Post("/generate", cfg.ItineraryHandler.GenerateItinerary)
				})
			})
		})
	})

	return r
}
