package app

import (
	"testing"

	"nft-backend/internal/config"
	"nft-backend/internal/services"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewRouterDependencies(t *testing.T) {
	cfg := config.Default()
	container := &ServiceContainer{Config: cfg, JobUpdates: services.NewJobUpdateHub()}

	deps := NewRouterDependencies(container, logrus.New())
	assert.Nil(t, deps.Auth)
	assert.Empty(t, deps.Checks)
	assert.NotNil(t, deps.Mint)
	assert.NotNil(t, deps.Gallery)
	assert.NotNil(t, deps.WebSocket)

	cfg.Auth.JWTSecret = "secret"
	deps = NewRouterDependencies(container, logrus.New())
	assert.NotNil(t, deps.Auth)
}

func TestServiceContainerCloseRunsInReverse(t *testing.T) {
	var order []int
	c := &ServiceContainer{}
	c.closers = append(c.closers, func() { order = append(order, 1) }, func() { order = append(order, 2) })

	c.Close()
	c.Close()
	assert.Equal(t, []int{2, 1}, order)
}

func TestNewPacer(t *testing.T) {
	assert.IsType(t, &services.IntervalPacer{}, newPacer(config.MintConfig{PacingIntervalMs: 100}))
	assert.IsType(t, &services.RateLimitPacer{}, newPacer(config.MintConfig{PacingIntervalMs: 100, PacingBurst: 1}))
}
