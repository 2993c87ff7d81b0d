package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/estatedesk/backend/internal/application/buyerapp"
	"github.com/estatedesk/backend/internal/application/listingapp"
	"github.com/estatedesk/backend/internal/application/status"
	"github.com/estatedesk/backend/internal/application/syncapp"
	syncdomain "github.com/estatedesk/backend/internal/domain/sync"
	"github.com/estatedesk/backend/internal/infrastructure/cache"
	"github.com/estatedesk/backend/internal/infrastructure/config"
	"github.com/estatedesk/backend/internal/infrastructure/crypto"
	"github.com/estatedesk/backend/internal/infrastructure/logger"
	"github.com/estatedesk/backend/internal/infrastructure/persistence"
	"github.com/estatedesk/backend/internal/infrastructure/scheduler"
	"github.com/estatedesk/backend/internal/infrastructure/sheets"
	"github.com/estatedesk/backend/internal/interfaces/http/handler"
	"github.com/estatedesk/backend/internal/interfaces/http/middleware"
	"github.com/estatedesk/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting EstateDesk Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database with zap-backed gorm logging
	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Redis client for the derived-status display cache. A dead redis only
	// costs cache hits, so a failed ping logs a warning instead of aborting.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing redis client", zap.Error(err))
		}
	}()
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		log.Warn("Redis unreachable, status cache degraded", zap.Error(err))
	}
	cancelPing()

	// Field encryption for personal data columns
	encryptor, err := crypto.NewFieldEncryptor(cfg.Crypto.Key)
	if err != nil {
		log.Fatal("Failed to initialize field encryption", zap.Error(err))
	}

	// Repositories
	sellerRepo := persistence.NewGormSellerRepository(db.DB, encryptor)
	propertyRepo := persistence.NewGormPropertyRepository(db.DB)
	buyerRepo := persistence.NewGormBuyerRepository(db.DB, encryptor)
	auditRepo := persistence.NewGormDeletionAuditRepository(db.DB)
	runRepo := persistence.NewGormSyncRunRepository(db.DB)

	// Spreadsheet clients share one rate limiter: the per-minute quota is
	// accounted per credential, not per sheet
	limiter := sheets.NewLimiter(cfg.Sheets.RequestsPerMinute)
	sellerSheet := sheets.NewClient(cfg.Sheets, cfg.Sheets.SellerSheet, limiter, log)
	buyerSheet := sheets.NewClient(cfg.Sheets, cfg.Sheets.BuyerSheet, limiter, log)

	// Snapshot cache feeds diff detection; one keyed loader per sheet
	snapshots := cache.NewSnapshotCache(cfg.Sheets.CacheTTL, log)
	snapshots.Register("sellers", sellerSheet.ReadAll)
	snapshots.Register("buyers", buyerSheet.ReadAll)

	// Sync pipeline
	sellerMapper := syncapp.NewSellerMapper()
	buyerMapper := syncapp.NewBuyerMapper()

	sellerDetector := syncapp.NewDiffDetector(
		syncdomain.KindSeller, snapshots, "sellers", sellerMapper,
		sellerRepo, cfg.Sync.SellerCompareFields, cfg.Sync.PageSize, log,
	)
	buyerDetector := syncapp.NewDiffDetector(
		syncdomain.KindBuyer, snapshots, "buyers", buyerMapper,
		buyerRepo, cfg.Sync.BuyerCompareFields, cfg.Sync.PageSize, log,
	)

	sellerExecutor := syncapp.NewSellerExecutor(sellerSheet, sellerMapper, sellerRepo, propertyRepo, auditRepo, log)
	buyerExecutor := syncapp.NewBuyerExecutor(buyerSheet, buyerMapper, buyerRepo, auditRepo, log)

	orchestrator := syncapp.NewOrchestrator(snapshots, runRepo, cfg.Sync.DeletionSyncEnabled, log)
	orchestrator.AddKind(syncdomain.KindSeller, sellerSheet, sellerDetector, sellerExecutor)
	orchestrator.AddKind(syncdomain.KindBuyer, buyerSheet, buyerDetector, buyerExecutor)

	// Periodic scheduler
	syncScheduler, err := scheduler.NewSyncScheduler(scheduler.SyncSchedulerConfig{
		Enabled:    cfg.Sync.Enabled,
		Interval:   cfg.Sync.Interval,
		RunTimeout: cfg.Sync.Interval,
	}, orchestrator, log)
	if err != nil {
		log.Fatal("Failed to create sync scheduler", zap.Error(err))
	}
	if cfg.Sync.Enabled {
		if err := syncScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start sync scheduler", zap.Error(err))
		}
		defer func() {
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer stopCancel()
			if err := syncScheduler.Stop(stopCtx); err != nil {
				log.Error("Error stopping sync scheduler", zap.Error(err))
			}
		}()
		log.Info("Sync scheduler started", zap.Duration("interval", cfg.Sync.Interval))
	}

	// Read-side services
	statusEngine := status.NewEngine(log)
	statusCache := cache.NewStatusCache(redisClient, cfg.Redis.StatusCacheTTL)
	sellerService := listingapp.NewSellerService(sellerRepo, propertyRepo)
	buyerService := buyerapp.NewBuyerService(buyerRepo, statusEngine, statusCache, log)

	// HTTP surface
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(log),
		logger.Recovery(log),
	)

	r := router.NewRouter(engine)
	r.Register(handler.NewSellerHandler(sellerService)).
		Register(handler.NewBuyerHandler(buyerService)).
		Register(handler.NewSyncHandler(orchestrator)).
		Register(handler.NewSystemHandler(db.DB, redisClient))
	r.Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
