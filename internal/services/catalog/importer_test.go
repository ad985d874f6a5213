package catalog

import (
	"context"
	"testing"

	"tiendabot/internal/events"
	"tiendabot/internal/logger"
	"tiendabot/internal/models"
	"tiendabot/internal/services/prestashop"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.CatalogUpdate{}))
	return db
}

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.events = append(p.events, event)
	return nil
}

func sampleProducts(n int) []models.Product {
	out := make([]models.Product, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Product{
			ExternalID: string(rune('a' + i)),
			Name:       "Product",
			Price:      9.99,
			Source:     models.SourcePrestaShop,
			Status:     models.ProductStatusActive,
		})
	}
	return out
}

func TestConfirmImportCompletes(t *testing.T) {
	db := testDB(t)
	pub := &recordingPublisher{}
	imp := NewImporter(db, logger.New("error"), pub)

	result, err := imp.ConfirmImport(context.Background(), models.SourcePrestaShop, sampleProducts(3))
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.ImportedCount)
	assert.NotEmpty(t, result.UpdateID)

	var update models.CatalogUpdate
	require.NoError(t, db.First(&update, "id = ?", result.UpdateID).Error)
	assert.Equal(t, models.UpdateStatusCompleted, update.Status)
	assert.Equal(t, 3, update.ProductsCount)
	assert.NotNil(t, update.CompletedAt)
	assert.Nil(t, update.ErrorMessage)

	var count int64
	require.NoError(t, db.Model(&models.Product{}).Count(&count).Error)
	assert.EqualValues(t, 3, count)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TypeCatalogImported, pub.events[0].Type)
	assert.Equal(t, "prestashop", pub.events[0].Source)
	assert.Equal(t, result.UpdateID, pub.events[0].UpdateID)
	assert.Equal(t, 3, pub.events[0].ProductsCount)
}

func TestConfirmImportReplacesSameSourceOnly(t *testing.T) {
	db := testDB(t)
	imp := NewImporter(db, logger.New("error"), nil)

	manual := models.Product{ExternalID: "m1", Name: "Handmade", Source: models.SourceManual}
	require.NoError(t, db.Create(&manual).Error)

	_, err := imp.ConfirmImport(context.Background(), models.SourcePrestaShop, sampleProducts(5))
	require.NoError(t, err)

	result, err := imp.ConfirmImport(context.Background(), models.SourcePrestaShop, sampleProducts(2))
	require.NoError(t, err)
	assert.Equal(t, 2, result.ImportedCount)

	var fromShop int64
	require.NoError(t, db.Model(&models.Product{}).Where("source = ?", models.SourcePrestaShop).Count(&fromShop).Error)
	assert.EqualValues(t, 2, fromShop)

	var kept int64
	require.NoError(t, db.Model(&models.Product{}).Where("source = ?", models.SourceManual).Count(&kept).Error)
	assert.EqualValues(t, 1, kept)
}

func TestConfirmImportEmptyListClearsSource(t *testing.T) {
	db := testDB(t)
	imp := NewImporter(db, logger.New("error"), nil)

	_, err := imp.ConfirmImport(context.Background(), models.SourcePrestaShop, sampleProducts(4))
	require.NoError(t, err)

	result, err := imp.ConfirmImport(context.Background(), models.SourcePrestaShop, nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.ImportedCount)

	var count int64
	require.NoError(t, db.Model(&models.Product{}).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}

func TestConfirmImportFailureMarksUpdateFailed(t *testing.T) {
	db := testDB(t)
	imp := NewImporter(db, logger.New("error"), nil)

	// Losing the products table forces the import transaction to fail while
	// the audit table stays writable.
	require.NoError(t, db.Migrator().DropTable(&models.Product{}))

	result, err := imp.ConfirmImport(context.Background(), models.SourcePrestaShop, sampleProducts(2))
	require.Error(t, err)
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
	require.NotEmpty(t, result.UpdateID)

	var update models.CatalogUpdate
	require.NoError(t, db.First(&update, "id = ?", result.UpdateID).Error)
	assert.Equal(t, models.UpdateStatusFailed, update.Status)
	require.NotNil(t, update.ErrorMessage)
	assert.NotEmpty(t, *update.ErrorMessage)
	assert.NotNil(t, update.CompletedAt)
}

func TestFromScannedMapsFields(t *testing.T) {
	scanned := []prestashop.ScannedProduct{
		{
			ID:            7,
			Name:          "Camiseta",
			Price:         19.5,
			Description:   "Soft cotton",
			Category:      "inicio",
			SKU:           "CAM-7",
			StockQuantity: 12,
			ImageURL:      "https://shop.example.com/7-medium_default/camiseta.jpg",
			ExternalURL:   "https://shop.example.com/inicio/7-camiseta.html",
			Combinations: []models.Combination{
				{ID: 71, Price: 19.5, Quantity: 4},
			},
			IsActive: true,
		},
		{ID: 8, Name: "Gorra", IsActive: false},
	}

	rows := FromScanned(scanned, models.SourcePrestaShop)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, "7", first.ExternalID)
	assert.Equal(t, "Camiseta", first.Name)
	assert.Equal(t, 19.5, first.Price)
	assert.Equal(t, 12, first.StockQuantity)
	require.NotNil(t, first.SKU)
	assert.Equal(t, "CAM-7", *first.SKU)
	require.NotNil(t, first.ImageURL)
	require.NotNil(t, first.ExternalURL)
	assert.Equal(t, models.SourcePrestaShop, first.Source)
	assert.Equal(t, models.ProductStatusActive, first.Status)
	require.Len(t, first.Combinations, 1)

	second := rows[1]
	assert.Nil(t, second.Description)
	assert.Nil(t, second.SKU)
	assert.Equal(t, models.ProductStatusInactive, second.Status)
}
