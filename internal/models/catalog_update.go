package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogUpdate is the audit record for one import attempt. Rows are append-only
// except for the single terminal transition processing -> completed|failed.
type CatalogUpdate struct {
	ID            string        `json:"id" gorm:"type:uuid;primary_key"`
	Source        ProductSource `json:"source" gorm:"not null"`
	Status        UpdateStatus  `json:"status" gorm:"default:processing"`
	ProductsCount int           `json:"products_count"`
	ErrorMessage  *string       `json:"error_message"`
	CreatedAt     time.Time     `json:"created_at"`
	CompletedAt   *time.Time    `json:"completed_at"`
}

type UpdateStatus string

const (
	UpdateStatusProcessing UpdateStatus = "processing"
	UpdateStatusCompleted  UpdateStatus = "completed"
	UpdateStatusFailed     UpdateStatus = "failed"
)

func (u *CatalogUpdate) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}
