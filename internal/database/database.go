package database

import (
	"fmt"
	"strings"

	"tiendabot/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	DB *gorm.DB
}

func New(databaseURL string) (*Database, error) {
	var db *gorm.DB
	var err error

	if strings.HasPrefix(databaseURL, "sqlite://") {
		// SQLite for development
		dbPath := strings.TrimPrefix(databaseURL, "sqlite://")
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.AutoMigrate(
			&models.Product{},
			&models.CatalogUpdate{},
			&models.SiteSettings{},
			&models.Document{},
			&models.CatalogSummary{},
		); err != nil {
			return nil, fmt.Errorf("failed to migrate tables: %w", err)
		}
		return &Database{DB: db}, nil
	}

	// PostgreSQL for production
	db, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Create tables manually with raw SQL
	createTablesSQL := `
	CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		external_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT,
		category TEXT,
		sku TEXT,
		price DECIMAL(10,2),
		stock_quantity INTEGER DEFAULT 0,
		image_url TEXT,
		external_url TEXT,
		combinations JSONB,
		metadata JSONB,
		source TEXT NOT NULL,
		status TEXT DEFAULT 'active',
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_products_source ON products(source);
	CREATE INDEX IF NOT EXISTS idx_products_external_id ON products(external_id);

	CREATE TABLE IF NOT EXISTS catalog_updates (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		source TEXT NOT NULL,
		status TEXT DEFAULT 'processing',
		products_count INTEGER DEFAULT 0,
		error_message TEXT,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		completed_at TIMESTAMPTZ
	);

	CREATE TABLE IF NOT EXISTS site_settings (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		site_name TEXT,
		site_url TEXT,
		persona TEXT,
		tone TEXT,
		chat_model TEXT,
		temperature DECIMAL DEFAULT 0.7,
		top_p DECIMAL DEFAULT 1,
		max_tokens INTEGER DEFAULT 1024,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS documents (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		name TEXT NOT NULL,
		content_type TEXT,
		size_bytes BIGINT DEFAULT 0,
		content TEXT,
		created_at TIMESTAMPTZ DEFAULT NOW(),
		updated_at TIMESTAMPTZ DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS catalog_summaries (
		source TEXT PRIMARY KEY,
		products_count INTEGER DEFAULT 0,
		min_price DECIMAL(10,2) DEFAULT 0,
		max_price DECIMAL(10,2) DEFAULT 0,
		categories INTEGER DEFAULT 0,
		refreshed_at TIMESTAMPTZ DEFAULT NOW()
	);
	`

	err = db.Exec(createTablesSQL).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
