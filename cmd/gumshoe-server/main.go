// Package main is the entry point for the Gumshoe game server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
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

	"github.com/okuznetsov/gumshoe/server/internal/api"
	"github.com/okuznetsov/gumshoe/server/internal/engine"
	"github.com/okuznetsov/gumshoe/server/internal/events"
	"github.com/okuznetsov/gumshoe/server/internal/lifecycle"
	"github.com/okuznetsov/gumshoe/server/internal/network"
	"github.com/okuznetsov/gumshoe/server/internal/platform/config"
	"github.com/okuznetsov/gumshoe/server/internal/platform/logger"
	"github.com/okuznetsov/gumshoe/server/internal/platform/metrics"
	"github.com/okuznetsov/gumshoe/server/internal/store"
)

// sqlitePersisterAdapter bridges the context-free activity log to the
// SQLite repository.
type sqlitePersisterAdapter struct {
	repo *store.ActivityRepository
}

func (a *sqlitePersisterAdapter) Append(entry events.Activity) error {
	err := a.repo.Append(context.Background(), entry)
	metrics.Get().RecordActivityWrite(err)
	return err
}

func main() {
	appLogger := logger.NewLogger()
	appLogger.Info("Initializing Gumshoe game server...")

	cfg, err := config.Load()
	if err != nil {
		appLogger.Error("Failed to load configuration: " + err.Error())
		os.Exit(1)
	}

	appLogger.Info("Initializing activity database at " + cfg.ActivityDB)
	db, err := store.InitActivityDB(cfg.ActivityDB)
	if err != nil {
		appLogger.Error("Failed to initialize SQLite: " + err.Error())
		os.Exit(1)
	}
	defer db.Close()

	activityRepo := store.NewActivityRepository(db)
	activity := events.NewLog(&sqlitePersisterAdapter{repo: activityRepo})

	templates, err := store.NewTemplateStore(cfg.TemplatesDir())
	if err != nil {
		appLogger.Error("Failed to open template store: " + err.Error())
		os.Exit(1)
	}
	rooms, err := store.NewRoomStore(cfg.RoomsDir())
	if err != nil {
		appLogger.Error("Failed to open room store: " + err.Error())
		os.Exit(1)
	}

	// One-time import of the old single-file state. Safe to repeat.
	migrator := lifecycle.NewMigrator(templates, activity, appLogger)
	migrated, err := migrator.Run(cfg.LegacyStatePath)
	if err != nil {
		appLogger.Error("Legacy migration failed: " + err.Error())
		os.Exit(1)
	}
	if migrated > 0 {
		appLogger.Info(fmt.Sprintf("Migrated %d legacy game(s)", migrated))
	}

	gameEngine := engine.New(templates, rooms, activity, appLogger)
	admin := lifecycle.NewAdmin(templates, rooms, activity, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(appLogger)
	go hub.Run(ctx)
	hub.StartActivityFeed(ctx, activity, cfg.FeedInterval)

	server := api.NewServer(gameEngine, admin, hub, appLogger)
	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.Routes(),
	}

	go func() {
		appLogger.Info("HTTP API & WS Server listening on " + cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Server failed: " + err.Error())
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Shutdown incomplete: " + err.Error())
	}
}
