package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Product struct {
	ID            string                 `json:"id" gorm:"type:uuid;primary_key"`
	ExternalID    string                 `json:"external_id" gorm:"not null;index"`
	Name          string                 `json:"name" gorm:"not null"`
	Description   *string                `json:"description"`
	Category      *string                `json:"category"`
	SKU           *string                `json:"sku"`
	Price         float64                `json:"price" gorm:"type:decimal(10,2)"`
	StockQuantity int                    `json:"stock_quantity"`
	ImageURL      *string                `json:"image_url"`
	ExternalURL   *string                `json:"external_url"`
	Combinations  []Combination          `json:"combinations" gorm:"type:jsonb;serializer:json"`
	Metadata      map[string]interface{} `json:"metadata" gorm:"type:jsonb;serializer:json"`
	Source        ProductSource          `json:"source" gorm:"not null;index"`
	Status        ProductStatus          `json:"status" gorm:"default:active"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// Combination is a product variant (size, color, ...) with its own price and stock.
// Stored inline on the product row as JSON, it has no lifecycle of its own.
type Combination struct {
	ID         int64                  `json:"id"`
	Reference  string                 `json:"reference,omitempty"`
	Price      float64                `json:"price"`
	Quantity   int                    `json:"quantity"`
	Attributes []CombinationAttribute `json:"attributes"`
}

type CombinationAttribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type ProductSource string

const (
	SourcePrestaShop  ProductSource = "prestashop"
	SourceWooCommerce ProductSource = "woocommerce"
	SourceCSV         ProductSource = "csv"
	SourceManual      ProductSource = "manual"
)

type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
