package main

import (
	"flag"
	"log"
	"path/filepath"

	"techtrain_backend/internal/app"
	"techtrain_backend/internal/config"
	"techtrain_backend/pkg/configwatcher"
	"techtrain_backend/pkg/logger"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "run database migrations and exit")
	configDir := flag.String("config", "configs", "directory holding config.yaml")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	if *migrateOnly {
		log.Println("Migrations complete, exiting")
		return
	}

	go configwatcher.WatchConfig(filepath.Join(*configDir, "config.yaml"), application.ReloadConfig)

	application.Run()
}
