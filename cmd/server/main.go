package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	auditapp "github.com/mims/backend/internal/application/audit"
	bulkapp "github.com/mims/backend/internal/application/bulkimport"
	catalogapp "github.com/mims/backend/internal/application/catalog"
	inventoryapp "github.com/mims/backend/internal/application/inventory"
	pickingapp "github.com/mims/backend/internal/application/picking"
	"github.com/mims/backend/internal/domain/shared"
	"github.com/mims/backend/internal/infrastructure/cache"
	"github.com/mims/backend/internal/infrastructure/config"
	"github.com/mims/backend/internal/infrastructure/event"
	"github.com/mims/backend/internal/infrastructure/logger"
	"github.com/mims/backend/internal/infrastructure/persistence"
	"github.com/mims/backend/internal/interfaces/http/handler"
	"github.com/mims/backend/internal/interfaces/http/middleware"
	"github.com/mims/backend/internal/interfaces/http/router"
)

// version is set at build time via -ldflags
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewFromAppConfig(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("starting server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("version", version))

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}()

	// Repositories
	partRepo := persistence.NewGormPartRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	orderRepo := persistence.NewGormPurchaseOrderRepository(db.DB)
	stateRepo := persistence.NewGormInventoryStateRepository(db.DB)
	txRepo := persistence.NewGormTransactionRepository(db.DB)
	taskRepo := persistence.NewGormPickingTaskRepository(db.DB)
	auditRepo := persistence.NewGormAuditRepository(db.DB)
	uploadRepo := persistence.NewGormUploadLogRepository(db.DB)
	allocator := persistence.NewGormCodeAllocator(db.DB)
	scope := persistence.NewGormTransactionScope(db.DB)

	// Event bus with the safety-stock alert consumer
	bus := event.NewInMemoryEventBus(log)
	bus.Subscribe(inventoryapp.NewStockAlertHandler(log))
	ctx := context.Background()
	if err := bus.Start(ctx); err != nil {
		log.Fatal("failed to start event bus", zap.Error(err))
	}
	defer func() {
		_ = bus.Stop(ctx)
	}()

	idempotencyStore := newIdempotencyStore(cfg, log)
	defer func() {
		_ = idempotencyStore.Close()
	}()

	// Application services
	partService := catalogapp.NewPartService(partRepo, log)
	partService.SetEventPublisher(bus)
	partService.SetStateInitializer(stateRepo)

	ledgerService := inventoryapp.NewLedgerService(scope, allocator, partRepo, stateRepo, txRepo, log)
	ledgerService.SetEventPublisher(bus)

	pickingService := pickingapp.NewPickingService(scope, allocator, taskRepo, partRepo, log)
	pickingService.SetEventPublisher(bus)

	auditService := auditapp.NewAuditService(allocator, auditRepo, partRepo, stateRepo, log)
	auditService.SetEventPublisher(bus)

	importService := bulkapp.NewImportService(ledgerService, allocator, partRepo, supplierRepo, orderRepo, uploadRepo, log)

	engine := buildEngine(cfg, log)
	router.Setup(engine, router.Handlers{
		Health:     handler.NewHealthHandler(db, version),
		Parts:      handler.NewPartHandler(partService),
		Inventory:  handler.NewInventoryHandler(ledgerService),
		Picking:    handler.NewPickingHandler(pickingService, idempotencyStore, cfg.Import.CompletionKeyTTL),
		Audits:     handler.NewAuditHandler(auditService),
		BulkImport: handler.NewBulkImportHandler(importService, cfg.Import.MaxRows),
	})

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	log.Info("server stopped")
}

// buildEngine assembles the gin engine with the middleware chain
func buildEngine(cfg *config.Config, log *zap.Logger) *gin.Engine {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		corsConfig.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		corsConfig.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}
	engine.Use(middleware.CORSWithConfig(corsConfig))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	return engine
}

// newIdempotencyStore connects to Redis when configured, falling back to
// the in-process store so a missing Redis never blocks startup.
func newIdempotencyStore(cfg *config.Config, log *zap.Logger) shared.IdempotencyStore {
	if cfg.Redis.Host != "" {
		store, err := cache.NewRedisIdempotencyStore(cache.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err == nil {
			log.Info("using redis idempotency store", zap.String("host", cfg.Redis.Host))
			return store
		}
		log.Warn("redis unavailable, using in-memory idempotency store", zap.Error(err))
	}
	return cache.NewInMemoryIdempotencyStore()
}
