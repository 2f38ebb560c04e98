// Package main provides the entry point for the VLINKS video link tracking service.
//
//	@title			VLINKS Video Link Tracking API
//	@version		1.0.0
//	@description	Tracked redirect links for video descriptions and CRM booking attribution.
//
//	@contact.name	VLINKS Support
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@externalDocs.description	OpenAPI Specification
//	@externalDocs.url			https://swagger.io/resources/open-api/
package main

import (
	"VLINKS-Backend/internal/analytics"
	"VLINKS-Backend/internal/config"
	"VLINKS-Backend/internal/database"
	httpHandler "VLINKS-Backend/internal/handler/http"
	"VLINKS-Backend/internal/repository"
	"VLINKS-Backend/internal/repository/cache"
	"VLINKS-Backend/internal/repository/memory"
	"VLINKS-Backend/internal/repository/postgres"
	"VLINKS-Backend/internal/scheduler"
	"VLINKS-Backend/internal/service"
	"VLINKS-Backend/pkg/geo"
	"VLINKS-Backend/pkg/iphash"
	"VLINKS-Backend/pkg/logger"
	"VLINKS-Backend/pkg/useragent"
	"context"
	"errors"
	lg "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "VLINKS-Backend/docs" // Import swagger docs
)

const version = "1.0.0"

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env, logger.FileConfig{
		Path:       cfg.Logger.FilePath,
		MaxSizeMB:  cfg.Logger.MaxSizeMB,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAgeDays: cfg.Logger.MaxAgeDays,
	})
	defer func() {
		if err := log.Sync(); err != nil {
			lg.Printf("ERROR: failed to sync zap logger: %v\n", err)
		}
	}()

	log.Info("starting VLINKS service", zap.String("env", cfg.Env), zap.String("storage", cfg.Database.Driver))

	storage, db := openStorage(cfg, log)
	if db != nil {
		defer func() {
			if err := database.Close(db, log); err != nil {
				log.Error("failed to close database connection", zap.Error(err))
			}
		}()
	}

	// Кэш ссылок в Redis опционален
	var (
		resolver    service.LinkResolver
		invalidator service.LinkCacheInvalidator
	)
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() {
			if err := client.Close(); err != nil {
				log.Error("failed to close redis client", zap.Error(err))
			}
		}()

		linkCache := cache.NewLinkCache(client, storage, cfg.Redis.LinkCacheTTL, log)
		if err := linkCache.Ping(context.Background()); err != nil {
			log.Warn("redis unavailable, link cache will fall through to storage", zap.Error(err))
		}
		resolver, invalidator = linkCache, linkCache
		log.Info("link cache enabled", zap.String("addr", cfg.Redis.Addr), zap.Duration("ttl", cfg.Redis.LinkCacheTTL))
	}

	// Обогащение кликов
	var locator geo.Locator = geo.NoopLocator{}
	if cfg.Tracking.GeoIPPath != "" {
		maxmind, err := geo.OpenMaxMind(cfg.Tracking.GeoIPPath)
		if err != nil {
			log.Warn("geo lookup disabled", zap.Error(err))
		} else {
			defer maxmind.Close()
			locator = maxmind
		}
	}
	enricher := analytics.NewEnricher(
		iphash.New(cfg.Tracking.IPHashSecret),
		useragent.Load(cfg.Tracking.UARegexesPath, log),
		locator,
		log,
	)

	processor := analytics.NewProcessor(storage, enricher, log, analytics.ProcessorConfig{
		WorkerCount:     cfg.ClickLogger.Workers,
		BufferSize:      cfg.ClickLogger.BufferSize,
		WriteTimeout:    cfg.ClickLogger.WriteTimeout,
		ShutdownTimeout: cfg.ClickLogger.ShutdownTimeout,
	})
	if err := processor.Start(); err != nil {
		log.Fatal("failed to start click logger", zap.Error(err))
	}

	retention := scheduler.NewRetention(storage, cfg.Webhook.LogRetentionDays, log)
	if err := retention.Start(cfg.Webhook.RetentionSchedule); err != nil {
		log.Fatal("failed to schedule webhook log retention", zap.Error(err))
	}

	apiServer, err := httpHandler.NewServer(storage, resolver, invalidator, processor, log, httpHandler.Options{
		Env:              cfg.Env,
		Version:          version,
		CORSOrigins:      cfg.HTTPServer.CORSOrigins,
		WebhookRateLimit: cfg.Webhook.RateLimit,
		WebhookMaxBody:   cfg.Webhook.MaxBodyBytes,
		SkipOrphans:      cfg.Webhook.SkipOrphanTransitions,
	})
	if err != nil {
		log.Fatal("failed to create HTTP server", zap.Error(err))
	}

	server := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      apiServer.SetupRoutes(),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	log.Info("starting HTTP server", zap.String("address", cfg.HTTPServer.Address))

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down VLINKS service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer shutdownCancel()

	// Сначала перестаем принимать запросы, затем дописываем клики из очереди
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown HTTP server", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	// Stop отменяет зависшие записи до закрытия БД в defer
	if err := processor.Stop(); err != nil {
		log.Error("failed to stop click logger", zap.Error(err), zap.Int64("abandoned_clicks", processor.Abandoned()))
	}

	retention.Stop()
}

// openStorage выбирает хранилище по cfg.Database.Driver; db равен nil для memory
func openStorage(cfg *config.Config, log *zap.Logger) (repository.Storage, *gorm.DB) {
	if cfg.Database.Driver == "memory" {
		log.Warn("using in-memory storage, data is lost on restart")
		return memory.New(), nil
	}

	db, err := database.NewConnection(&cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	if cfg.Database.AutoMigrate {
		log.Info("running database migrations (auto_migrate: true)")
		if err := database.AutoMigrate(db, log); err != nil {
			log.Fatal("failed to run database migrations", zap.Error(err))
		}
	} else {
		log.Info("skipping database migrations (auto_migrate: false)")
	}

	if cfg.Database.SeedData {
		log.Info("seeding database with initial data (seed_data: true)")
		if err := database.SeedData(db, log); err != nil {
			log.Fatal("failed to seed database", zap.Error(err))
		}
	} else {
		log.Info("skipping database seeding (seed_data: false)")
	}

	return postgres.New(db, log), db
}
