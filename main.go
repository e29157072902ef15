package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"golang.org/x/sync/errgroup"

	database "github.com/localexplorer/itinerary-api/app/db"
	appLogger "github.com/localexplorer/itinerary-api/app/logger"
	"github.com/localexplorer/itinerary-api/app/tracer"
	"github.com/localexplorer/itinerary-api/config"
	"github.com/localexplorer/itinerary-api/internal/api/auth"
	"github.com/localexplorer/itinerary-api/internal/api/itinerary"
	"github.com/localexplorer/itinerary-api/internal/api/place"
	"github.com/localexplorer/itinerary-api/internal/api/saved"
	"github.com/localexplorer/itinerary-api/internal/cache"
	"github.com/localexplorer/itinerary-api/internal/planner"
	"github.com/localexplorer/itinerary-api/internal/router"
)

func main() {
	// Standard log until slog is configured, in case godotenv fails.
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger()
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	metricsHandler, err := tracer.InitTracingAndMetrics("LocalExplorer")
	if err != nil {
		logger.Error("Failed to initialize tracing and metrics", slog.Any("error", err))
		os.Exit(1)
	}

	// --- Database ---
	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		os.Exit(1)
	}

	if err := database.RunMigrations(dbConfig.ConnectionURL, logger); err != nil {
		logger.Error("Failed to run database migrations", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if !database.WaitForDB(ctx, pool, logger) {
		logger.Error("Database not ready after waiting, exiting.")
		os.Exit(1)
	}

	// --- Cache backend ---
	var store cache.Store
	switch cfg.Cache.Backend {
	case "postgres":
		store = cache.NewPostgresStore(pool)
	default:
		store = cache.NewMemoryStore(cfg.Cache.PlacesTTL, cfg.Cache.CleanupInterval)
	}
	cacheService := cache.NewService(store, logger)

	// --- Resolution pipeline ---
	geocoder := place.NewNominatimGeocoder(cfg.Resolver.GeocodeURL, cfg.Resolver.UserAgent, cfg.Resolver.AttemptTimeout)
	providers := make([]place.POIProvider, 0, len(cfg.Resolver.OverpassEndpoints))
	for _, endpoint := range cfg.Resolver.OverpassEndpoints {
		providers = append(providers, place.NewOverpassProvider(endpoint, cfg.Resolver.UserAgent, cfg.Resolver.AttemptTimeout))
	}
	resolver := place.NewResolver(geocoder, providers, cfg.Resolver.RadiiM, logger)

	maxRadiusM := 0
	for _, r := range cfg.Resolver.RadiiM {
		if r > maxRadiusM {
			maxRadiusM = r
		}
	}

	// --- Dependency injection ---
	authRepo := auth.NewRepository(pool, logger)
	authService := auth.NewServiceImpl(authRepo, cfg.JWT, logger)
	authHandler := auth.NewHandler(authService, logger)

	placeRepo := place.NewRepository(pool, logger)
	placeService := place.NewServiceImpl(resolver, cacheService, cfg.Cache.PlacesTTL,
		cfg.Resolver.DefaultLimit, cfg.Resolver.MaxLimit, maxRadiusM, logger)
	placeHandler := place.NewHandler(placeService, logger)

	savedRepo := saved.NewRepository(pool, logger)
	savedService := saved.NewServiceImpl(savedRepo, placeRepo, logger)
	savedHandler := saved.NewHandler(savedService, logger)

	plannerRepo := planner.NewRepository(pool, logger)
	generator := planner.NewGenerator(plannerRepo, logger, cfg.Planner.PerDayCap)

	itineraryRepo := itinerary.NewRepository(pool, logger)
	itineraryService := itinerary.NewServiceImpl(itineraryRepo, savedRepo, plannerRepo,
		generator, cacheService, cfg.Cache.ItemsTTL, logger)
	itineraryHandler := itinerary.NewHandler(itineraryService, logger)

	apiRouter := router.SetupRouter(&router.Config{
		AuthHandler:            authHandler,
		PlaceHandler:           placeHandler,
		SavedHandler:           savedHandler,
		ItineraryHandler:       itineraryHandler,
		AuthenticateMiddleware: auth.Authenticate(logger, cfg.JWT),
	})

	mux := chi.NewMux()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(appLogger.StructuredLogger(logger))
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.StripSlashes)
	mux.Use(middleware.Timeout(cfg.Server.Timeout))
	mux.Use(middleware.Compress(5, "application/json"))
	mux.Mount("/", apiRouter)

	srv := &http.Server{
		Addr:         cfg.Server.HTTPPort,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	metricsMux := chi.NewMux()
	metricsMux.Handle("/metrics", metricsHandler)
	metricsSrv := &http.Server{
		Addr:    cfg.Server.MetricsPort,
		Handler: metricsMux,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.Info("Starting metrics server", slog.String("address", metricsSrv.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received, starting graceful shutdown...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
		}
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Metrics server graceful shutdown failed", slog.Any("error", err))
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server exited with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Application shut down complete.")
}

// setupLogger picks tint for development and JSON for everything else.
func setupLogger() *slog.Logger {
	env := os.Getenv("APP_ENV")

	if env == "development" || env == "" {
		return slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
}
