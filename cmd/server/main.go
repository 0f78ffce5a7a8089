package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/config"
	"storefront/internal/api"
	"storefront/internal/broker"
	"storefront/internal/redisclient"
	"storefront/internal/reports"
	"storefront/internal/service"
	"storefront/internal/store"
	"storefront/internal/util"
	"storefront/internal/worker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env, cfg.Server.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting storefront")

	tp, err := util.InitTracer(util.ServiceName, cfg.Observ.JaegerEndpoint)
	if err != nil {
		logger.Fatal("Failed to initialize tracer", zap.Error(err))
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn("Error shutting down tracer", zap.Error(err))
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Database connected")

	if cfg.Database.RunMigrations {
		if err := db.Migrate(); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		logger.Info("Migrations applied")
	}

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	logger.Info("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
	defer producer.Close()
	logger.Info("Kafka producer initialized", zap.String("topic", cfg.Kafka.TopicEvents))

	eventPublisher := broker.NewEventPublisher(producer)

	// Reports are optional: without MongoDB the shop still runs.
	reportStore, err := reports.NewStore(context.Background(), cfg.Mongo.URI, cfg.Mongo.DBName)
	if err != nil {
		logger.Warn("Reports disabled", zap.Error(err))
		reportStore = nil
	} else {
		defer reportStore.Close(context.Background())
		if err := reportStore.EnsureIndexes(context.Background()); err != nil {
			logger.Warn("Failed to create report indexes", zap.Error(err))
		}
	}

	accountService := service.NewAccountService(db, redisClient, redisClient, service.AccountOptions{
		SessionTTL:       time.Duration(cfg.Business.SessionTTLMinutes) * time.Minute,
		LoginMaxAttempts: cfg.Business.LoginMaxAttempts,
		LoginWindow:      time.Duration(cfg.Business.LoginWindowSeconds) * time.Second,
	})
	catalogService := service.NewCatalogService(db, redisClient, eventPublisher,
		time.Duration(cfg.Business.CatalogCacheSeconds)*time.Second)
	cartService := service.NewCartService(db, db, redisClient, eventPublisher)
	orderService := service.NewOrderService(db, db, db, redisClient, eventPublisher)
	supplierService := service.NewSupplierService(db, db, eventPublisher)
	newsService := service.NewNewsService(db)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	var reportWorker *worker.ReportWorker
	if reportStore != nil {
		consumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents, cfg.Kafka.ConsumerGroup)
		reportWorker = worker.NewReportWorker(consumer, reports.NewProjector(db, reportStore))
		go func() {
			if err := reportWorker.Start(workerCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Report worker error", zap.Error(err))
			}
		}()
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	services := api.Services{
		Accounts:  accountService,
		Catalog:   catalogService,
		Carts:     cartService,
		Orders:    orderService,
		Suppliers: supplierService,
		News:      newsService,
	}
	if reportStore != nil {
		services.Reports = reportStore
	}

	router := gin.New()
	handler := api.NewHandler(services, api.Options{
		SessionTTL:    time.Duration(cfg.Business.SessionTTLMinutes) * time.Minute,
		SecureCookies: cfg.Server.Env == "production",
	})
	handler.AddReadinessCheck("postgres", db.Ping)
	handler.AddReadinessCheck("redis", redisClient.Ping)
	if reportStore != nil {
		handler.AddReadinessCheck("mongo", reportStore.Ping)
	}
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	workerCancel()
	if reportWorker != nil {
		if err := reportWorker.Stop(); err != nil {
			logger.Warn("Error stopping report worker", zap.Error(err))
		}
	}

	logger.Info("Server exited")
}
