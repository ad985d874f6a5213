package main

import (
	"log"

	"tiendabot/internal/api"
	"tiendabot/internal/config"
	"tiendabot/internal/database"
	"tiendabot/internal/events"
	"tiendabot/internal/logger"
	"tiendabot/internal/services/catalog"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Initialize database
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database: %v", err)
	}

	// Import pipeline: catalog writes plus best-effort event publishing
	publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.CatalogTopic, logger)
	defer publisher.Close()
	importer := catalog.NewImporter(db.DB, logger, publisher)

	// Initialize API server
	server := api.New(cfg, logger, db, importer)

	// Start server
	logger.Info("Starting API server on port " + cfg.APIPort)
	if err := server.Start(); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
