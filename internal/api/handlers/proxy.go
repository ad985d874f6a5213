package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"tiendabot/internal/logger"
	"tiendabot/internal/services/prestashop"

	"github.com/gin-gonic/gin"
)

// ProxyHandler forwards webservice requests for the browser-based dashboard,
// which cannot call the shop API directly because of CORS.
type ProxyHandler struct {
	logger  *logger.Logger
	timeout time.Duration
}

func NewProxyHandler(timeout time.Duration, logger *logger.Logger) *ProxyHandler {
	return &ProxyHandler{
		logger:  logger,
		timeout: timeout,
	}
}

type proxyRequest struct {
	APIURL   string            `json:"apiUrl" binding:"required"`
	APIKey   string            `json:"apiKey" binding:"required"`
	Resource string            `json:"resource"`
	Params   map[string]string `json:"params"`
}

// PrestaShop relays one request to the shop webservice. The upstream status
// and body are forwarded verbatim; only network failures are translated
// (timeout to 504, connection failure to 502).
func (h *ProxyHandler) PrestaShop(c *gin.Context) {
	var request proxyRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resource := request.Resource
	if resource == "" {
		resource = c.Query("resource")
	}
	if resource == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "resource is required"})
		return
	}

	params := url.Values{}
	for k, v := range request.Params {
		params.Set(k, v)
	}

	client := prestashop.NewClient(request.APIURL, request.APIKey, h.timeout, h.logger)
	resp, err := client.Get(c.Request.Context(), resource, params)
	if err != nil {
		status, msg := TranslateTransport(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.Data(resp.StatusCode, resp.ContentType, resp.Body)
}

// TranslateTransport maps a failed upstream call to a proxy status code.
func TranslateTransport(err error) (int, string) {
	var terr *prestashop.TransportError
	if errors.As(err, &terr) {
		if terr.Timeout {
			return http.StatusGatewayTimeout, terr.Error()
		}
		return http.StatusBadGateway, terr.Error()
	}
	return http.StatusInternalServerError, err.Error()
}
