package catalog

import (
	"context"
	"fmt"
	"time"

	"tiendabot/internal/events"
	"tiendabot/internal/logger"
	"tiendabot/internal/models"
	"tiendabot/internal/services/prestashop"

	"gorm.io/gorm"
)

const insertBatchSize = 100

// EventPublisher is satisfied by events.Publisher. Nil is allowed: imports
// work without a broker, events are enrichment.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Importer persists a user-approved scan result. Each attempt gets one
// CatalogUpdate audit row whose status only ever moves forward:
// processing -> completed or processing -> failed.
type Importer struct {
	db        *gorm.DB
	logger    *logger.Logger
	publisher EventPublisher
}

func NewImporter(db *gorm.DB, logger *logger.Logger, publisher EventPublisher) *Importer {
	return &Importer{
		db:        db,
		logger:    logger,
		publisher: publisher,
	}
}

type ImportResult struct {
	Success       bool   `json:"success"`
	ImportedCount int    `json:"imported_count,omitempty"`
	UpdateID      string `json:"update_id,omitempty"`
	Error         string `json:"error,omitempty"`
}

// ConfirmImport writes the approved products under the given source tag.
// The audit row is written first so a crash mid-import leaves a visible
// `processing` record; the product rows themselves are replaced inside one
// transaction, so the catalog never half-imports.
func (i *Importer) ConfirmImport(ctx context.Context, source models.ProductSource, products []models.Product) (*ImportResult, error) {
	update := models.CatalogUpdate{
		Source:        source,
		Status:        models.UpdateStatusProcessing,
		ProductsCount: len(products),
	}
	if err := i.db.WithContext(ctx).Create(&update).Error; err != nil {
		return &ImportResult{Success: false, Error: err.Error()}, fmt.Errorf("failed to create catalog update: %w", err)
	}

	err := i.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("source = ?", source).Delete(&models.Product{}).Error; err != nil {
			return err
		}
		if len(products) == 0 {
			return nil
		}
		return tx.CreateInBatches(&products, insertBatchSize).Error
	})

	if err != nil {
		i.markFailed(ctx, update.ID, err)
		return &ImportResult{Success: false, UpdateID: update.ID, Error: err.Error()},
			fmt.Errorf("failed to import products: %w", err)
	}

	now := time.Now()
	if err := i.db.WithContext(ctx).Model(&models.CatalogUpdate{}).
		Where("id = ? AND status = ?", update.ID, models.UpdateStatusProcessing).
		Updates(map[string]interface{}{
			"status":       models.UpdateStatusCompleted,
			"completed_at": now,
		}).Error; err != nil {
		i.logger.Error("failed to complete catalog update %s: %v", update.ID, err)
	}

	i.publishImported(ctx, update.ID, source, len(products))

	i.logger.Info("imported %d products (source=%s, update=%s)", len(products), source, update.ID)
	return &ImportResult{Success: true, ImportedCount: len(products), UpdateID: update.ID}, nil
}

func (i *Importer) markFailed(ctx context.Context, updateID string, cause error) {
	now := time.Now()
	msg := cause.Error()
	if err := i.db.WithContext(ctx).Model(&models.CatalogUpdate{}).
		Where("id = ? AND status = ?", updateID, models.UpdateStatusProcessing).
		Updates(map[string]interface{}{
			"status":        models.UpdateStatusFailed,
			"error_message": msg,
			"completed_at":  now,
		}).Error; err != nil {
		i.logger.Error("failed to mark catalog update %s failed: %v", updateID, err)
	}
}

func (i *Importer) publishImported(ctx context.Context, updateID string, source models.ProductSource, count int) {
	if i.publisher == nil {
		return
	}
	event := events.Event{
		Type:          events.TypeCatalogImported,
		Source:        string(source),
		UpdateID:      updateID,
		ProductsCount: count,
		Timestamp:     time.Now(),
	}
	if err := i.publisher.Publish(ctx, event); err != nil {
		// Best effort: a missing broker must not fail a finished import.
		i.logger.Warn("failed to publish %s event: %v", event.Type, err)
	}
}

// FromScanned converts a reviewed scan result into catalog rows.
func FromScanned(products []prestashop.ScannedProduct, source models.ProductSource) []models.Product {
	rows := make([]models.Product, 0, len(products))
	for _, sp := range products {
		status := models.ProductStatusActive
		if !sp.IsActive {
			status = models.ProductStatusInactive
		}

		row := models.Product{
			ExternalID:    fmt.Sprintf("%d", sp.ID),
			Name:          sp.Name,
			Price:         sp.Price,
			StockQuantity: sp.StockQuantity,
			Combinations:  sp.Combinations,
			Source:        source,
			Status:        status,
		}
		if sp.Description != "" {
			row.Description = &sp.Description
		}
		if sp.Category != "" {
			row.Category = &sp.Category
		}
		if sp.SKU != "" {
			row.SKU = &sp.SKU
		}
		if sp.ImageURL != "" {
			row.ImageURL = &sp.ImageURL
		}
		if sp.ExternalURL != "" {
			row.ExternalURL = &sp.ExternalURL
		}
		rows = append(rows, row)
	}
	return rows
}
