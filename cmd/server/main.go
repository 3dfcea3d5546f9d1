package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aiseo/brand-visibility/internal/analytics"
	"github.com/aiseo/brand-visibility/internal/api"
	"github.com/aiseo/brand-visibility/internal/config"
	"github.com/aiseo/brand-visibility/internal/notifications"
	"github.com/aiseo/brand-visibility/internal/reporting"
	"github.com/aiseo/brand-visibility/internal/scheduler"
	"github.com/aiseo/brand-visibility/internal/storage"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logrus.SetLevel(logrus.InfoLevel)
	if cfg.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.SetFormatter(&logrus.JSONFormatter{})

	logrus.Info("Starting brand visibility service")

	ctx := context.Background()

	// Report archive: Azure blob storage when configured, local directory otherwise
	archive, err := openArchive(ctx, cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize storage: %v", err)
	}

	dataset, err := loadDataset(ctx, cfg, archive)
	if err != nil {
		logrus.Fatalf("Failed to load dataset: %v", err)
	}

	store, closeStore, err := openRecordStore(cfg, dataset)
	if err != nil {
		logrus.Fatalf("Failed to open record store: %v", err)
	}
	defer closeStore()

	facade := analytics.NewFacade(store, analytics.NewClassifier(cfg.TrendDeadband))

	var notificationService notifications.NotificationInterface
	if cfg.NotificationsEnabled() {
		notificationService = notifications.NewService(cfg)
	}

	reportingService := reporting.NewService(cfg, facade, archive, notificationService)

	schedulerService := scheduler.NewService(cfg, reportingService)
	if err := schedulerService.Start(); err != nil {
		logrus.Fatalf("Failed to start scheduler: %v", err)
	}
	defer schedulerService.Stop()

	apiServer := api.NewServer(facade, store, reportingService, cfg.SearchMaxPerCategory)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      apiServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logrus.Infof("HTTP server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Brands created at runtime live only in memory; keep a snapshot
	if mem, ok := store.(*storage.MemoryStore); ok {
		if err := storage.SaveDataset(shutdownCtx, archive, storage.SnapshotBlob, mem.Snapshot()); err != nil {
			logrus.Errorf("Failed to save dataset snapshot: %v", err)
		}
	}

	logrus.Info("Server exited")
}

func openArchive(ctx context.Context, cfg *config.Config) (storage.StorageInterface, error) {
	if cfg.StorageAccount != "" {
		return storage.NewAzureStorage(ctx, cfg.StorageAccount, cfg.StorageContainer)
	}
	logrus.Infof("No storage account configured, archiving to %s", cfg.ArchiveDir)
	return storage.NewFileStorage(cfg.ArchiveDir)
}

func loadDataset(ctx context.Context, cfg *config.Config, archive storage.StorageInterface) (*storage.Dataset, error) {
	switch {
	case cfg.DatasetBlob != "":
		return storage.LoadDataset(ctx, archive, cfg.DatasetBlob)
	case cfg.DatasetPath != "":
		return storage.LoadDatasetFile(cfg.DatasetPath)
	default:
		logrus.Warn("No dataset configured, starting with an empty store")
		return nil, nil
	}
}

func openRecordStore(cfg *config.Config, ds *storage.Dataset) (storage.RecordStore, func(), error) {
	if cfg.DataBackend == "sqlite" {
		db, err := storage.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if ds != nil {
			if err := db.Import(ds); err != nil {
				db.Close()
				return nil, nil, err
			}
		}
		logrus.Infof("Using SQLite record store at %s", cfg.SQLitePath)
		return db, func() { db.Close() }, nil
	}

	store := storage.NewMemoryStore(ds)
	logrus.Info("Using in-memory record store")
	return store, func() {}, nil
}
