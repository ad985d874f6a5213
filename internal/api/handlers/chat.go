package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"tiendabot/internal/logger"
	"tiendabot/internal/models"
	"tiendabot/internal/services/chat"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ChatHandler struct {
	db     *gorm.DB
	logger *logger.Logger
	client *chat.Client
}

func NewChatHandler(db *gorm.DB, logger *logger.Logger, client *chat.Client) *ChatHandler {
	return &ChatHandler{
		db:     db,
		logger: logger,
		client: client,
	}
}

// Complete serves the dashboard's chat-test panel: it wraps the user's
// conversation in a system prompt built from the saved persona and catalog
// summary, then forwards it with the configured model parameters.
func (h *ChatHandler) Complete(c *gin.Context) {
	if !h.client.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Chat API key is not configured"})
		return
	}

	var request struct {
		Messages []chat.Message `json:"messages" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var settings models.SiteSettings
	if err := h.db.First(&settings).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch settings"})
			return
		}
		settings = models.DefaultSettings()
	}

	messages := append([]chat.Message{{Role: "system", Content: h.systemPrompt(settings)}}, request.Messages...)

	reply, err := h.client.Complete(c.Request.Context(), chat.CompletionRequest{
		Model:       settings.ChatModel,
		Messages:    messages,
		Temperature: settings.Temperature,
		TopP:        settings.TopP,
		MaxTokens:   settings.MaxTokens,
	})
	if err != nil {
		h.logger.Error("chat completion failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Chat completion failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

func (h *ChatHandler) systemPrompt(settings models.SiteSettings) string {
	var b strings.Builder

	if settings.SiteName != "" {
		fmt.Fprintf(&b, "You are the shopping assistant for %s", settings.SiteName)
		if settings.SiteURL != "" {
			fmt.Fprintf(&b, " (%s)", settings.SiteURL)
		}
		b.WriteString(".\n")
	} else {
		b.WriteString("You are a retail shopping assistant.\n")
	}

	if settings.Persona != "" {
		b.WriteString(settings.Persona)
		b.WriteString("\n")
	}
	if settings.Tone != "" {
		fmt.Fprintf(&b, "Tone: %s\n", settings.Tone)
	}

	var summaries []models.CatalogSummary
	if err := h.db.Find(&summaries).Error; err == nil && len(summaries) > 0 {
		b.WriteString("Catalog overview:\n")
		for _, s := range summaries {
			fmt.Fprintf(&b, "- %s: %d products, prices %.2f to %.2f\n",
				s.Source, s.ProductsCount, s.MinPrice, s.MaxPrice)
		}
	}

	return b.String()
}
