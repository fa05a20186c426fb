package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"zonepilot-backend/config"
	"zonepilot-backend/internal/delivery/http/middleware"
	v1 "zonepilot-backend/internal/delivery/http/v1"
	"zonepilot-backend/internal/infrastructure/cache"
	"zonepilot-backend/internal/repository/postgres"
	"zonepilot-backend/internal/usecase"
	"zonepilot-backend/pkg/logger"
	"zonepilot-backend/pkg/utils"

	"github.com/NYTimes/gziphandler"
)

func main() {
	cfg := config.LoadConfig()
	utils.SetSecret(cfg.JWTSecret)

	logger.Init(cfg.Env, cfg.LogLevel)
	log := logger.Get()

	pgxPool, err := postgres.NewPgxPool(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	log.Info().Msg("Successfully connected to PostgreSQL")

	// Repositories
	warehouseRepo := postgres.NewWarehouseRepository(pgxPool)
	zoneRepo := postgres.NewZoneRepository(pgxPool)
	pricingRepo := postgres.NewPricingRepository(pgxPool)
	versionRepo := postgres.NewVersionRepository(pgxPool)
	quoteLogRepo := postgres.NewQuoteLogRepository(pgxPool)
	userRepo := postgres.NewUserRepository(pgxPool)
	txManager := postgres.NewTransactionManager(pgxPool)

	// Cache: quote/analytics entries expire on their own TTLs, the
	// cleanup interval only bounds how long expired entries linger.
	memCache := cache.NewMemoryCache(cfg.QuoteCacheTTL, cfg.CacheCleanupInterval)
	generations := cache.NewGenerations()

	// Recorder: every zone/slab mutation flows through it.
	recorder := usecase.NewRecorder(versionRepo, txManager, generations, cfg.VersionConflictRetries)

	// Usecases
	authUC := usecase.NewAuthUsecase(userRepo, cfg.AccessTokenExpiry)
	warehouseUC := usecase.NewWarehouseUsecase(warehouseRepo)
	zoneUC := usecase.NewZoneUsecase(warehouseRepo, zoneRepo, recorder)
	pricingUC := usecase.NewPricingUsecase(warehouseRepo, pricingRepo, recorder)
	quoteUC := usecase.NewQuoteUsecase(warehouseRepo, zoneUC, pricingUC, quoteLogRepo, memCache, generations, cfg.QuoteCacheTTL)
	analyticsUC := usecase.NewAnalyticsUsecase(warehouseRepo, quoteLogRepo, memCache, cfg.AnalyticsCacheTTL)

	if cfg.SeedAdminEmail != "" && cfg.SeedAdminPassword != "" {
		authUC.SeedAdmin(context.Background(), cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	}

	// Handlers
	authHandler := v1.NewAuthHandler(authUC)
	warehouseHandler := v1.NewWarehouseHandler(warehouseUC)
	zoneHandler := v1.NewZoneHandler(zoneUC, recorder)
	pricingHandler := v1.NewPricingHandler(pricingUC, recorder)
	quoteHandler := v1.NewQuoteHandler(quoteUC)
	auditHandler := v1.NewAuditHandler(recorder)
	analyticsHandler := v1.NewAnalyticsHandler(analyticsUC)

	mux := http.NewServeMux()

	adminOnly := func(h http.HandlerFunc) http.Handler {
		return middleware.AuthMiddleware(middleware.AdminMiddleware(h))
	}

	// Auth
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.Handle("GET /api/v1/auth/me", middleware.AuthMiddleware(http.HandlerFunc(authHandler.Me)))

	// Warehouses
	mux.HandleFunc("GET /api/v1/warehouses", warehouseHandler.List)
	mux.Handle("POST /api/v1/warehouses", adminOnly(warehouseHandler.Create))

	// Zones
	mux.HandleFunc("GET /api/v1/zones", zoneHandler.ListZones)
	mux.Handle("POST /api/v1/zones", adminOnly(zoneHandler.CreateZone))
	mux.Handle("PATCH /api/v1/zones/{id}", adminOnly(zoneHandler.UpdateZone))
	mux.Handle("DELETE /api/v1/zones/{id}", adminOnly(zoneHandler.DisableZone))
	mux.Handle("GET /api/v1/zones/{id}/versions", adminOnly(zoneHandler.ListVersions))
	mux.Handle("GET /api/v1/zones/export", adminOnly(zoneHandler.ExportGeoJSON))
	mux.Handle("POST /api/v1/zones/import", adminOnly(zoneHandler.ImportGeoJSON))

	// Pricing
	mux.HandleFunc("GET /api/v1/pricing", pricingHandler.ListSlabs)
	mux.Handle("POST /api/v1/pricing", adminOnly(pricingHandler.CreateSlab))
	mux.Handle("PATCH /api/v1/pricing/{id}", adminOnly(pricingHandler.UpdateSlab))
	mux.Handle("DELETE /api/v1/pricing/{id}", adminOnly(pricingHandler.DisableSlab))
	mux.Handle("GET /api/v1/pricing/versions", adminOnly(pricingHandler.ListVersions))

	// Quotes
	mux.HandleFunc("POST /api/v1/quote", quoteHandler.GetQuote)

	// Audit & Analytics
	mux.Handle("GET /api/v1/audit", adminOnly(auditHandler.List))
	mux.HandleFunc("GET /api/v1/analytics/summary", analyticsHandler.Summary)
	mux.HandleFunc("GET /api/v1/analytics/recent-quotes", analyticsHandler.RecentQuotes)

	// Health Check
	healthHandler := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "ok", "db": "connected"}`))
	}
	mux.HandleFunc("GET /api/v1/health", healthHandler)
	mux.HandleFunc("GET /health", healthHandler) // Support root health check for Load Balancers

	addr := fmt.Sprintf(":%s", cfg.Port)

	// 50 req/s, burst 100, cleanup every minute, TTL 3 minutes
	rateLimiter := middleware.NewRateLimiter(
		context.Background(),
		50,
		100,
		time.Minute,
		3*time.Minute,
	)

	handler := middleware.NewCORSMiddleware(cfg)(mux)
	handler = middleware.RequestLogger(handler)
	handler = rateLimiter.Middleware()(handler)
	handler = gziphandler.GzipHandler(handler)

	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	log.Info().Msgf("Server starting on %s", addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down...")

	rateLimiter.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	pgxPool.Close()
	log.Info().Msg("Server exited properly")
}
