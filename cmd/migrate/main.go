// Command migrate applies the schema for the configured store. Production
// servers skip AutoMigrate at startup, so deployments run this first.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"socialapi/internal/config"
	"socialapi/internal/database"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if cfg.DBDriver == config.DriverMongo {
		// Connecting ensures the indexes.
		client, _, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return fmt.Errorf("connect mongo: %w", err)
		}
		_ = client.Disconnect(context.Background())
		log.Println("mongo indexes ensured")
		return nil
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: true})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer func() { _ = sqlDB.Close() }()
	}
	log.Println("schema applied")
	return nil
}
