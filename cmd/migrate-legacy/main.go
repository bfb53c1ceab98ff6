// Package main runs the legacy single-file state migration without starting
// the server. The server performs the same migration on boot; this tool
// exists for dry-run style checks on a copy of production data.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/okuznetsov/gumshoe/server/internal/events"
	"github.com/okuznetsov/gumshoe/server/internal/lifecycle"
	"github.com/okuznetsov/gumshoe/server/internal/platform/config"
	"github.com/okuznetsov/gumshoe/server/internal/platform/logger"
	"github.com/okuznetsov/gumshoe/server/internal/store"
)

func main() {
	statePath := flag.String("state", "", "legacy state file (defaults to the configured path)")
	flag.Parse()

	appLogger := logger.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		appLogger.Error("Failed to load configuration: " + err.Error())
		os.Exit(1)
	}

	path := *statePath
	if path == "" {
		path = cfg.LegacyStatePath
	}

	templates, err := store.NewTemplateStore(cfg.TemplatesDir())
	if err != nil {
		appLogger.Error("Failed to open template store: " + err.Error())
		os.Exit(1)
	}

	// No persister: the standalone tool does not touch the activity DB.
	activity := events.NewLog(nil)

	migrator := lifecycle.NewMigrator(templates, activity, appLogger)
	migrated, err := migrator.Run(path)
	if err != nil {
		appLogger.Error("Migration failed: " + err.Error())
		os.Exit(1)
	}
	appLogger.Info(fmt.Sprintf("Migration complete: %d template(s) imported from %s", migrated, path))
}
