// Package http wires the gin engine, middleware and routes of the
// login broker.
package http

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"kurologin/internal/application/login/usecases"
	"kurologin/internal/infrastructure/config"
	"kurologin/internal/interfaces/http/handlers"
	"kurologin/internal/interfaces/http/middleware"
	"kurologin/internal/shared/logger"
)

// Router represents the HTTP router configuration
type Router struct {
	engine       *gin.Engine
	loginHandler *handlers.LoginHandler
	staticDir    string
}

// NewRouter creates a new HTTP router with all dependencies
func NewRouter(
	sendSMSCodeUC *usecases.SendSMSCodeUseCase,
	completeLoginUC *usecases.CompleteLoginUseCase,
	cfg *config.Config,
	log logger.Interface,
) *Router {
	engine := gin.New()

	engine.Use(middleware.Logger(log))
	engine.Use(middleware.Recovery())
	engine.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	engine.Use(middleware.SecurityHeaders())

	return &Router{
		engine:       engine,
		loginHandler: handlers.NewLoginHandler(sendSMSCodeUC, completeLoginUC, log),
		staticDir:    cfg.Server.StaticDir,
	}
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	api := r.engine.Group("/api")
	{
		api.GET("/health", r.loginHandler.HealthCheck)
		api.POST("/send_sms", r.loginHandler.SendSMS)
		api.POST("/login", r.loginHandler.Login)
	}

	if r.staticDir != "" {
		r.engine.Static("/static", r.staticDir)
		index := filepath.Join(r.staticDir, "index.html")
		r.engine.GET("/", func(c *gin.Context) {
			c.File(index)
		})
	}

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "not found",
		})
	})
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
