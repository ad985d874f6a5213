package handler

import (
	"database/sql"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	"tiendabot/internal/logger"
	"tiendabot/internal/services/prestashop"
)

// Serverless entrypoint. Function platforms only need the CORS-bypassing
// webservice proxy; the full dashboard API runs from cmd/api on a
// long-running host.

var (
	app     *gin.Engine
	appOnce sync.Once
	lg      *logger.Logger

	db      *sql.DB
	dbMutex sync.Mutex
)

// initDB lazily opens the audit database. The proxy works without it;
// request records are best-effort.
func initDB() error {
	dbMutex.Lock()
	defer dbMutex.Unlock()

	if db != nil {
		return nil // Already initialized
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL not set")
	}

	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return err
	}

	if err = conn.Ping(); err != nil {
		conn.Close()
		return err
	}

	_, err = conn.Exec(`CREATE TABLE IF NOT EXISTS proxy_requests (
		id SERIAL PRIMARY KEY,
		resource VARCHAR(255) NOT NULL,
		status INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);`)
	if err != nil {
		conn.Close()
		return err
	}

	// Assign only once the handle is usable, so a failed attempt is retried
	// on the next call instead of poisoning every later write.
	db = conn
	return nil
}

func recordProxyCall(resource string, status int, duration time.Duration) {
	if err := initDB(); err != nil {
		return
	}
	_, err := db.Exec(
		`INSERT INTO proxy_requests (resource, status, duration_ms) VALUES ($1, $2, $3)`,
		resource, status, duration.Milliseconds(),
	)
	if err != nil {
		lg.Warn("failed to record proxy call: %v", err)
	}
}

func corsHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func proxyPrestaShop(c *gin.Context) {
	var request struct {
		APIURL   string            `json:"apiUrl" binding:"required"`
		APIKey   string            `json:"apiKey" binding:"required"`
		Resource string            `json:"resource"`
		Params   map[string]string `json:"params"`
	}
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

	client := prestashop.NewClient(request.APIURL, request.APIKey, 28*time.Second, lg)

	start := time.Now()
	resp, err := client.Get(c.Request.Context(), resource, params)
	if err != nil {
		status := http.StatusBadGateway
		if terr, ok := err.(*prestashop.TransportError); ok && terr.Timeout {
			status = http.StatusGatewayTimeout
		}
		recordProxyCall(resource, status, time.Since(start))
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	recordProxyCall(resource, resp.StatusCode, time.Since(start))
	c.Data(resp.StatusCode, resp.ContentType, resp.Body)
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}

func initApp() {
	gin.SetMode(gin.ReleaseMode)
	lg = logger.New(os.Getenv("LOG_LEVEL"))

	app = gin.New()
	app.Use(gin.Recovery())
	app.Use(corsHeaders())

	app.GET("/api/health", health)
	app.POST("/api/proxy/prestashop", proxyPrestaShop)
}

// Handler is the single HTTP entrypoint for serverless deployments.
func Handler(w http.ResponseWriter, r *http.Request) {
	appOnce.Do(initApp)
	app.ServeHTTP(w, r)
}
