package models

import "time"

// CatalogSummary is a per-source rollup refreshed by the worker after each
// import. The chat prompt builder reads it instead of scanning product rows.
type CatalogSummary struct {
	Source        ProductSource `json:"source" gorm:"primary_key"`
	ProductsCount int           `json:"products_count"`
	MinPrice      float64       `json:"min_price" gorm:"type:decimal(10,2)"`
	MaxPrice      float64       `json:"max_price" gorm:"type:decimal(10,2)"`
	Categories    int           `json:"categories"`
	RefreshedAt   time.Time     `json:"refreshed_at"`
}
