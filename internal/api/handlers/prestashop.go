package handlers

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"tiendabot/internal/config"
	"tiendabot/internal/logger"
	"tiendabot/internal/models"
	"tiendabot/internal/services/catalog"
	"tiendabot/internal/services/prestashop"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type PrestaShopHandler struct {
	config   *config.Config
	logger   *logger.Logger
	importer *catalog.Importer

	mu    sync.RWMutex
	scans map[string]*ScanState
}

// ScanState is the snapshot the dashboard polls while a scan runs.
type ScanState struct {
	ID               string     `json:"id"`
	Status           string     `json:"status"`
	Percent          int        `json:"percent"`
	ProductsObtained int        `json:"products_obtained"`
	ProductsTotal    int        `json:"products_total"`
	CurrentProduct   string     `json:"current_product,omitempty"`
	Error            string     `json:"error,omitempty"`
	StartedAt        time.Time  `json:"started_at"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
}

const (
	scanStatusRunning   = "running"
	scanStatusCompleted = "completed"
	scanStatusFailed    = "failed"

	// scanRetention bounds the snapshot map: finished scans older than this
	// are evicted when a new scan registers.
	scanRetention = time.Hour
)

func NewPrestaShopHandler(cfg *config.Config, logger *logger.Logger, importer *catalog.Importer) *PrestaShopHandler {
	return &PrestaShopHandler{
		config:   cfg,
		logger:   logger,
		importer: importer,
		scans:    map[string]*ScanState{},
	}
}

type shopCredentials struct {
	APIURL string `json:"apiUrl" binding:"required"`
	APIKey string `json:"apiKey" binding:"required"`
}

func (h *PrestaShopHandler) newClient(creds shopCredentials) *prestashop.Client {
	timeout := time.Duration(h.config.ProxyTimeoutSec) * time.Second
	return prestashop.NewClient(creds.APIURL, creds.APIKey, timeout, h.logger)
}

// Test validates a URL/key pair with a single-product probe.
func (h *PrestaShopHandler) Test(c *gin.Context) {
	var creds shopCredentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.newClient(creds).Test(c.Request.Context()); err != nil {
		status, msg := classifyScanError(err)
		c.JSON(status, gin.H{"success": false, "error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Scan runs a full catalog scan and returns the normalized products for
// review. The scan is synchronous; progress snapshots are recorded under a
// scan id the front-end can poll from another request.
func (h *PrestaShopHandler) Scan(c *gin.Context) {
	var creds shopCredentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state := &ScanState{
		ID:        uuid.New().String(),
		Status:    scanStatusRunning,
		StartedAt: time.Now(),
	}
	h.mu.Lock()
	h.pruneScans(time.Now())
	h.scans[state.ID] = state
	h.mu.Unlock()

	client := h.newClient(creds)
	normalizer := prestashop.NewNormalizer(client.ShopURL(), h.config.CategorySlug)
	scanner := prestashop.NewScanner(client, normalizer, prestashop.ScanOptions{
		PageSize:  h.config.ScanPageSize,
		PageDelay: time.Duration(h.config.ScanPageDelayMs) * time.Millisecond,
		Policy: prestashop.RetryPolicy{
			MaxConsecutiveFailures: h.config.ScanMaxFailures,
			InitialBackoff:         time.Second,
			BackoffFactor:          2,
			MinPageSize:            h.config.ScanMinPageSize,
		},
	}, h.logger)

	products, err := scanner.Scan(c.Request.Context(), func(percent int, info *prestashop.ProgressInfo) {
		h.mu.Lock()
		state.Percent = percent
		if info != nil {
			state.ProductsObtained = info.ProductsObtained
			state.ProductsTotal = info.ProductsTotal
			state.CurrentProduct = info.CurrentProduct
		}
		h.mu.Unlock()
	})

	now := time.Now()
	h.mu.Lock()
	state.FinishedAt = &now
	if err != nil {
		state.Status = scanStatusFailed
		state.Error = err.Error()
	} else {
		state.Status = scanStatusCompleted
		state.Percent = 100
	}
	h.mu.Unlock()

	if err != nil {
		status, msg := classifyScanError(err)
		c.JSON(status, gin.H{"scan_id": state.ID, "error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"scan_id":  state.ID,
		"count":    len(products),
		"products": products,
	})
}

// Status returns the progress snapshot of one scan. The state is copied
// under the lock: serializing the live struct would race with the progress
// callback of a scan still running.
func (h *PrestaShopHandler) Status(c *gin.Context) {
	id := c.Param("id")

	h.mu.RLock()
	state, ok := h.scans[id]
	var snapshot ScanState
	if ok {
		snapshot = *state
	}
	h.mu.RUnlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Scan not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": snapshot})
}

// pruneScans drops finished snapshots past their retention. Caller holds
// the write lock.
func (h *PrestaShopHandler) pruneScans(now time.Time) {
	for id, state := range h.scans {
		if state.FinishedAt != nil && now.Sub(*state.FinishedAt) > scanRetention {
			delete(h.scans, id)
		}
	}
}

// Import persists a reviewed product list to the catalog.
func (h *PrestaShopHandler) Import(c *gin.Context) {
	var request struct {
		Source   models.ProductSource        `json:"source"`
		Products []prestashop.ScannedProduct `json:"products" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if request.Source == "" {
		request.Source = models.SourcePrestaShop
	}

	rows := catalog.FromScanned(request.Products, request.Source)
	result, err := h.importer.ConfirmImport(c.Request.Context(), request.Source, rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, result)
		return
	}

	c.JSON(http.StatusOK, result)
}

// classifyScanError maps scan and probe failures to response codes: upstream
// replies keep their status, transport failures become 502/504. The message
// is the full error chain so an aborted scan still names its retry count.
func classifyScanError(err error) (int, string) {
	var aerr *prestashop.APIError
	if errors.As(err, &aerr) {
		status := aerr.StatusCode
		if status < 400 || status > 599 {
			status = http.StatusBadGateway
		}
		return status, err.Error()
	}
	status, _ := TranslateTransport(err)
	return status, err.Error()
}
