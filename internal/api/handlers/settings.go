package handlers

import (
	"net/http"

	"tiendabot/internal/logger"
	"tiendabot/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type SettingsHandler struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewSettingsHandler(db *gorm.DB, logger *logger.Logger) *SettingsHandler {
	return &SettingsHandler{
		db:     db,
		logger: logger,
	}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	var settings models.SiteSettings
	if err := h.db.First(&settings).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusOK, gin.H{"data": models.DefaultSettings()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": settings})
}

func (h *SettingsHandler) Update(c *gin.Context) {
	var input models.SiteSettings
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Temperature < 0 || input.Temperature > 2 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "temperature must be between 0 and 2"})
		return
	}
	if input.TopP < 0 || input.TopP > 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "top_p must be between 0 and 1"})
		return
	}
	if input.MaxTokens < 1 || input.MaxTokens > 32768 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "max_tokens must be between 1 and 32768"})
		return
	}

	// Single-row configuration: update the existing row if there is one.
	var existing models.SiteSettings
	err := h.db.First(&existing).Error
	if err != nil && err != gorm.ErrRecordNotFound {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
		return
	}

	if err == nil {
		input.ID = existing.ID
		input.CreatedAt = existing.CreatedAt
		if err := h.db.Save(&input).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings"})
			return
		}
	} else {
		if err := h.db.Create(&input).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"data": input})
}
