package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"truckbay-api/internal/auth"
	"truckbay-api/internal/client"
	"truckbay-api/internal/config"
	"truckbay-api/internal/database"
	"truckbay-api/internal/handler"
	"truckbay-api/internal/repository"
	"truckbay-api/internal/service"
	"truckbay-api/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	slog.Info("starting truckbay-api")

	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slog.Info("connecting to database", "host", cfg.Database.Host, "database", cfg.Database.Name)
	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database ready")

	// Registry clients share one rate limiter
	rateLimiter := client.NewRateLimiter(cfg.Registry.RateLimit)
	defer rateLimiter.Stop()

	nhtsaClient := client.NewNHTSAClient(cfg.Registry.NHTSABaseURL, cfg.Registry.Timeout, rateLimiter)
	epaClient := client.NewEPAClient(cfg.Registry.EPABaseURL, cfg.Registry.Timeout, rateLimiter)

	objectStore, err := storage.NewMinIOStore(ctx, cfg.Storage)
	if err != nil {
		slog.Error("failed to initialize object store", "error", err)
		os.Exit(1)
	}

	verifier, err := auth.NewJWTVerifier(cfg.Auth)
	if err != nil {
		slog.Error("failed to initialize token verifier", "error", err)
		os.Exit(1)
	}

	// Repositories
	dealerRepo := repository.NewDealerRepo(db)
	listingRepo := repository.NewListingRepo(db)
	vehicleRepo := repository.NewVehicleRepo(db)
	failureRepo := repository.NewEnrichmentFailureRepo(db)

	// Services
	enrichmentSvc := service.NewEnrichmentService(nhtsaClient, epaClient)
	complianceSvc := service.NewComplianceService(vehicleRepo)
	listingSvc := service.NewListingService(listingRepo, enrichmentSvc, failureRepo)

	// Handlers
	healthHandler := handler.NewHealthHandler(db)
	vinHandler := handler.NewVinHandler(enrichmentSvc)
	complianceHandler := handler.NewComplianceHandler(complianceSvc)
	listingHandler := handler.NewListingHandler(listingSvc, objectStore)
	dealerHandler := handler.NewDealerHandler(dealerRepo)

	// Router
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Use(corsMiddleware)

	// Routes
	r.Get("/health", healthHandler.Check)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/vin/decode", vinHandler.Decode)
		r.Post("/compliance/calculate", complianceHandler.Calculate)

		r.Get("/listings", listingHandler.List)
		r.Get("/listings/{id}", listingHandler.Get)
		r.Get("/dealers", dealerHandler.List)
		r.Get("/dealers/{id}", dealerHandler.Get)

		// Mutations require a verified identity
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(verifier))

			r.Post("/listings", listingHandler.Create)
			r.Put("/listings/{id}", listingHandler.Update)
			r.Delete("/listings/{id}", listingHandler.Delete)
			r.Post("/listings/{id}/images", listingHandler.UploadImage)
			r.Post("/dealers", dealerHandler.Create)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		slog.Info("server started", "port", cfg.APIPort)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shut down server", "error", err)
	}

	slog.Info("server stopped")
}

// corsMiddleware answers preflight requests itself and stamps the CORS
// headers on everything else
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
