package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"nft-backend/internal/config"
	"nft-backend/internal/db"
	"nft-backend/internal/handlers"
	"nft-backend/internal/router"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// NewRouterDependencies builds the HTTP handlers on top of a wired container
func NewRouterDependencies(c *ServiceContainer, logger *logrus.Logger) router.Dependencies {
	checks := map[string]handlers.HealthCheck{}
	if c.DB != nil {
		checks["database"] = func() error { return db.Ping(c.DB) }
	}
	if c.NATSClient != nil {
		checks["nats"] = c.NATSClient.Healthy
	}

	deps := router.Dependencies{
		Config:    c.Config,
		Logger:    logger,
		Mint:      handlers.NewMintHandler(c.MintService),
		Gallery:   handlers.NewGalleryHandler(c.Gallery),
		WebSocket: handlers.NewWebSocketHandler(c.JobUpdates, c.MintService),
		Checks:    checks,
	}
	if c.Config.Auth.JWTSecret != "" {
		deps.Auth = handlers.NewAuthHandler(c.Config.Auth.JWTSecret, c.Config.Blockchain.ChainID)
	}
	return deps
}

// RunServer serves the API on addr until ctx is canceled, then shuts down gracefully.
// An empty addr means server.host:server.port.
func RunServer(ctx context.Context, cfg *config.Config, logger *logrus.Logger, addr string) error {
	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	container, err := NewServiceContainer(ctx, cfg)
	if err != nil {
		return err
	}
	defer container.Close()

	if addr == "" {
		addr = cfg.Addr()
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           router.SetupRouter(NewRouterDependencies(container, logger)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Infof("🌐 Server listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("🛑 Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("❌ Server shutdown failed: %v", err)
			return err
		}
		logger.Info("✅ Server stopped")
		return nil
	case err := <-serverErr:
		return err
	}
}
