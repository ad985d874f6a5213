package processors

import (
	"fmt"
	"time"

	"tiendabot/internal/events"
	"tiendabot/internal/logger"
	"tiendabot/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CatalogProcessor applies post-import work: after each import it refreshes
// the per-source summary row the chat prompt builder reads.
type CatalogProcessor struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewCatalogProcessor(db *gorm.DB, logger *logger.Logger) *CatalogProcessor {
	return &CatalogProcessor{
		db:     db,
		logger: logger,
	}
}

func (p *CatalogProcessor) Process(event events.Event) error {
	switch event.Type {
	case events.TypeCatalogImported:
		return p.refreshSummary(models.ProductSource(event.Source))
	default:
		p.logger.Debug("ignoring event type %s", event.Type)
		return nil
	}
}

func (p *CatalogProcessor) refreshSummary(source models.ProductSource) error {
	var rollup struct {
		Count      int64
		MinPrice   float64
		MaxPrice   float64
		Categories int64
	}

	err := p.db.Model(&models.Product{}).
		Select("COUNT(*) AS count, COALESCE(MIN(price), 0) AS min_price, COALESCE(MAX(price), 0) AS max_price, COUNT(DISTINCT category) AS categories").
		Where("source = ?", source).
		Scan(&rollup).Error
	if err != nil {
		return fmt.Errorf("failed to compute catalog rollup: %w", err)
	}

	summary := models.CatalogSummary{
		Source:        source,
		ProductsCount: int(rollup.Count),
		MinPrice:      rollup.MinPrice,
		MaxPrice:      rollup.MaxPrice,
		Categories:    int(rollup.Categories),
		RefreshedAt:   time.Now(),
	}

	if err := p.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&summary).Error; err != nil {
		return fmt.Errorf("failed to upsert catalog summary: %w", err)
	}

	p.logger.Info("refreshed catalog summary for %s: %d products", source, summary.ProductsCount)
	return nil
}
