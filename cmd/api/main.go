package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/athujoshi24/legendary-panel/internal/api"
	"github.com/athujoshi24/legendary-panel/internal/api/handlers"
	mw "github.com/athujoshi24/legendary-panel/internal/api/middleware"
	"github.com/athujoshi24/legendary-panel/internal/metrics"
	"github.com/athujoshi24/legendary-panel/internal/repository"
	"github.com/athujoshi24/legendary-panel/internal/services"
	"github.com/athujoshi24/legendary-panel/pkg/config"
	"github.com/athujoshi24/legendary-panel/pkg/database"
	"github.com/athujoshi24/legendary-panel/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()

	// Initialize logger
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("starting recipe catalog api",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
		zap.String("db_driver", cfg.DBDriver),
	)

	// Connect to database
	ctx := context.Background()
	db, err := database.Open(ctx, database.Options{
		Driver:  cfg.DBDriver,
		DSN:     cfg.DatabaseURL,
		Verbose: cfg.IsDevelopment(),
	})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)
	log.Info("database connected")

	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatal("auto migrate failed", zap.Error(err))
		}
		log.Info("schema migrated")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	tagRepo := repository.NewTagRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)

	// Services
	authService := services.NewAuthService(userRepo, []byte(cfg.JWTSecret), cfg.TokenTTL)
	resolver := services.NewAssociationResolver(tagRepo, ingredientRepo)
	recipeService := services.NewRecipeService(recipeRepo, resolver)

	trustedProxies, err := mw.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		log.Fatal("invalid trusted proxies", zap.Error(err))
	}

	reg := metrics.NewRegistry()
	collector := metrics.NewCollector(reg)

	// Create router with dependencies
	router := api.NewRouter(api.Dependencies{
		Authenticator:      authService,
		Metrics:            collector,
		Gatherer:           reg,
		Ping:               func(ctx context.Context) error { return database.Ping(ctx, db) },
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		TrustedProxies:     trustedProxies,

		AuthHandler:        handlers.NewAuthHandler(authService, collector),
		TagsHandler:        handlers.NewAttributeHandler(services.NewAttributeService(tagRepo), collector),
		IngredientsHandler: handlers.NewAttributeHandler(services.NewAttributeService(ingredientRepo), collector),
		RecipesHandler:     handlers.NewRecipesHandler(recipeService, collector),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}
}
