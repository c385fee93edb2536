package main

import (
	"flag"
	"log"

	"algoritmia_backend/internal/app"
	"algoritmia_backend/internal/config"
	"algoritmia_backend/pkg/database"
	"algoritmia_backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	configDir := flag.String("config", "configs", "directory holding config.yaml")
	migrateOnly := flag.Bool("migrate-only", false, "run the schema migration and exit")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *migrateOnly {
		logger.InitLogger(cfg)
		defer logger.Log.Sync()
		// InitDB migrates on open
		if _, err := database.InitDB(&cfg.Database, false); err != nil {
			logger.Log.Fatal("Migration failed", zap.Error(err))
		}
		logger.Log.Info("Database migration completed, exiting")
		return
	}

	application := app.NewApp(cfg)
	application.Run()
}
