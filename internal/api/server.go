package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"tiendabot/internal/api/handlers"
	"tiendabot/internal/api/middleware"
	"tiendabot/internal/config"
	"tiendabot/internal/database"
	"tiendabot/internal/logger"
	"tiendabot/internal/services/catalog"
	"tiendabot/internal/services/chat"

	"github.com/gin-gonic/gin"
)

type Server struct {
	config *config.Config
	logger *logger.Logger
	db     *database.Database
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, db *database.Database, importer *catalog.Importer) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// Initialize handlers
	chatClient := chat.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, logger)
	proxyTimeout := time.Duration(cfg.ProxyTimeoutSec) * time.Second

	settingsHandler := handlers.NewSettingsHandler(db.DB, logger)
	productHandler := handlers.NewProductHandler(db.DB, logger)
	documentHandler := handlers.NewDocumentHandler(db.DB, logger)
	chatHandler := handlers.NewChatHandler(db.DB, logger, chatClient)
	proxyHandler := handlers.NewProxyHandler(proxyTimeout, logger)
	prestashopHandler := handlers.NewPrestaShopHandler(cfg, logger, importer)

	// Routes
	v1 := router.Group("/api/v1")
	{
		// Site settings & model parameters
		settings := v1.Group("/settings")
		{
			settings.GET("", settingsHandler.Get)
			settings.PUT("", settingsHandler.Update)
		}

		// Catalog
		products := v1.Group("/products")
		{
			products.GET("", productHandler.List)
			products.GET("/:id", productHandler.Get)
			products.POST("", productHandler.Create)
			products.PUT("/:id", productHandler.Update)
			products.DELETE("/:id", productHandler.Delete)
			products.DELETE("", productHandler.DeleteBySource)
		}

		// Documentation files
		documents := v1.Group("/documents")
		{
			documents.GET("", documentHandler.List)
			documents.GET("/:id", documentHandler.Get)
			documents.POST("", documentHandler.Create)
			documents.DELETE("/:id", documentHandler.Delete)
		}

		// Chat test panel
		v1.POST("/chat", chatHandler.Complete)

		// Webservice proxy
		v1.POST("/proxy/prestashop", proxyHandler.PrestaShop)

		// PrestaShop scan & import
		prestashop := v1.Group("/prestashop")
		{
			prestashop.POST("/test", prestashopHandler.Test)
			prestashop.POST("/scan", prestashopHandler.Scan)
			prestashop.GET("/scans/:id", prestashopHandler.Status)
			prestashop.POST("/import", prestashopHandler.Import)
		}
	}

	return &Server{
		config: cfg,
		logger: logger,
		db:     db,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	return s.server.Shutdown(ctx)
}

// GetRouter exposes the Gin router for serverless deployments.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
