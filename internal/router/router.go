package router

import (
	"net/http"

	"nft-backend/internal/config"
	"nft-backend/internal/handlers"
	"nft-backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Dependencies handlers and settings the router is built from
type Dependencies struct {
	Config    *config.Config
	Logger    *logrus.Logger
	Mint      *handlers.MintHandler
	Gallery   *handlers.GalleryHandler
	WebSocket *handlers.WebSocketHandler
	Auth      *handlers.AuthHandler           // nil when auth.jwtSecret is empty
	Checks    map[string]handlers.HealthCheck // readiness probes
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(deps.Logger))
	r.Use(middleware.CORS(deps.Config.CORS))

	authMiddleware := middleware.NewAuthMiddleware(deps.Logger, deps.Config.Auth.JWTSecret)
	if !authMiddleware.Enabled() {
		deps.Logger.Warn("⚠️ auth.jwtSecret not set, mint routes are open")
	}

	// ============ Health Check ============
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/health", handlers.HealthCheckHandler)
	r.GET("/health/ready", handlers.ReadinessHandler(deps.Checks))

	// ============ Prometheus Metrics ============
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// ============ API Routes ============
	api := r.Group("/api")
	{
		if deps.Auth != nil {
			api.GET("/auth/nonce", deps.Auth.GenerateNonceHandler)
			api.POST("/auth", deps.Auth.AuthenticateHandler)
		}

		mint := api.Group("/mint", authMiddleware.RequireAuth())
		{
			mint.POST("", deps.Mint.SubmitMintHandler)
			mint.GET("/batches/:id", deps.Mint.GetBatchHandler)
		}

		api.GET("/gallery", deps.Gallery.ListHandler)
		api.GET("/gallery/:id", deps.Gallery.GetHandler)
	}

	// ============ WebSocket ============
	r.GET("/ws/mint/:id", deps.WebSocket.HandleBatchStream)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"message": "Endpoint not found",
			"path":    c.Request.URL.Path,
		})
	})

	return r
}

func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		entry := logger.WithFields(logrus.Fields{
			"status": c.Writer.Status(),
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"ip":     c.ClientIP(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request")
	}
}
