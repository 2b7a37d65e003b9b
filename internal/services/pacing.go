package services

import (
	"context"
	"sync"
	"time"

	"nft-backend/internal/metrics"

	"golang.org/x/time/rate"
)

// PacingPolicy spaces out ledger submissions from one signer.
// BeforeSubmit blocks until the next submission may start; AfterSubmit is called once a transaction was sent.
type PacingPolicy interface {
	BeforeSubmit(ctx context.Context) error
	AfterSubmit()
}

// IntervalPacer enforces a minimum delay between a sent transaction and the next submission
type IntervalPacer struct {
	interval time.Duration

	mu       sync.Mutex
	lastSent time.Time
}

func NewIntervalPacer(interval time.Duration) *IntervalPacer {
	return &IntervalPacer{interval: interval}
}

func (p *IntervalPacer) BeforeSubmit(ctx context.Context) error {
	p.mu.Lock()
	wait := time.Until(p.lastSent.Add(p.interval))
	p.mu.Unlock()
	if wait <= 0 {
		return nil
	}

	start := time.Now()
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		metrics.PacingWaitDuration.Observe(time.Since(start).Seconds())
		return nil
	}
}

func (p *IntervalPacer) AfterSubmit() {
	p.mu.Lock()
	p.lastSent = time.Now()
	p.mu.Unlock()
}

// RateLimitPacer token bucket over submissions
type RateLimitPacer struct {
	limiter *rate.Limiter
}

// NewRateLimitPacer allows one submission per interval with the given burst.
// Only a burst of 1 keeps the minimum gap between submissions; mint.pacingBurst is limited to that.
func NewRateLimitPacer(interval time.Duration, burst int) *RateLimitPacer {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitPacer{limiter: rate.NewLimiter(rate.Every(interval), burst)}
}

func (p *RateLimitPacer) BeforeSubmit(ctx context.Context) error {
	start := time.Now()
	if err := p.limiter.Wait(ctx); err != nil {
		return err
	}
	metrics.PacingWaitDuration.Observe(time.Since(start).Seconds())
	return nil
}

func (p *RateLimitPacer) AfterSubmit() {}

// NoPacing submits back to back
type NoPacing struct{}

func (NoPacing) BeforeSubmit(ctx context.Context) error { return ctx.Err() }
func (NoPacing) AfterSubmit()                           {}
