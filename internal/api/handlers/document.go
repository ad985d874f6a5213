package handlers

import (
	"net/http"

	"tiendabot/internal/logger"
	"tiendabot/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DocumentHandler struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewDocumentHandler(db *gorm.DB, logger *logger.Logger) *DocumentHandler {
	return &DocumentHandler{
		db:     db,
		logger: logger,
	}
}

// List returns documents without their content; Get returns the full record.
func (h *DocumentHandler) List(c *gin.Context) {
	var documents []models.Document

	if err := h.db.Select("id", "name", "content_type", "size_bytes", "created_at", "updated_at").
		Order("created_at DESC").Find(&documents).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch documents"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": documents})
}

func (h *DocumentHandler) Get(c *gin.Context) {
	id := c.Param("id")

	var document models.Document
	if err := h.db.First(&document, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch document"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": document})
}

func (h *DocumentHandler) Create(c *gin.Context) {
	var document models.Document
	if err := c.ShouldBindJSON(&document); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if document.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}
	if document.SizeBytes == 0 {
		document.SizeBytes = int64(len(document.Content))
	}

	if err := h.db.Create(&document).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create document"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": document})
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.db.Delete(&models.Document{}, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete document"})
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
