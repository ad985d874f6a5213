package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SiteSettings holds the single-row dashboard configuration: site metadata,
// the chatbot persona text and the model parameters used by the chat panel.
type SiteSettings struct {
	ID          string    `json:"id" gorm:"type:uuid;primary_key"`
	SiteName    string    `json:"site_name"`
	SiteURL     string    `json:"site_url"`
	Persona     string    `json:"persona"`
	Tone        string    `json:"tone"`
	ChatModel   string    `json:"chat_model"`
	Temperature float64   `json:"temperature" gorm:"default:0.7"`
	TopP        float64   `json:"top_p" gorm:"default:1"`
	MaxTokens   int       `json:"max_tokens" gorm:"default:1024"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (s *SiteSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// DefaultSettings is returned when nothing has been saved yet.
func DefaultSettings() SiteSettings {
	return SiteSettings{
		ChatModel:   "gpt-4o-mini",
		Temperature: 0.7,
		TopP:        1,
		MaxTokens:   1024,
	}
}
