package main

import (
	"context"
	"flag"
	"log"
	"time"

	"investorportal/internal/migrations"
	"investorportal/internal/store"
	"investorportal/internal/utils"
)

func main() {
	rollback := flag.Bool("rollback", false, "roll back the last applied migration")
	flag.Parse()

	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := utils.NewAppLoggerFromConfig(config.Log)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	db, err := store.Open(ctx, config.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if *rollback {
		if err := migrations.RollbackLastMigration(db, logger); err != nil {
			log.Fatalf("Rollback failed: %v", err)
		}
		return
	}

	if err := migrations.RunMigrations(db, logger); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	logger.Info("Migrations up to date")
}
