// Command reportsync rebuilds every order report document from PostgreSQL.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"storefront/config"
	"storefront/internal/reports"
	"storefront/internal/store"
	"storefront/internal/util"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env, cfg.Server.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()
	logger := util.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	reportStore, err := reports.NewStore(ctx, cfg.Mongo.URI, cfg.Mongo.DBName)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer reportStore.Close(context.Background())

	ids, err := db.ListReportableOrderIDs(ctx)
	if err != nil {
		logger.Fatal("Failed to list orders", zap.Error(err))
	}

	n, err := reports.NewProjector(db, reportStore).Resync(ctx, ids)
	if err != nil {
		logger.Fatal("Report sync failed", zap.Int("synced", n), zap.Int("total", len(ids)), zap.Error(err))
	}

	if err := reportStore.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to create report indexes", zap.Error(err))
	}

	logger.Info("Report sync complete", zap.Int("orders", n))
}
