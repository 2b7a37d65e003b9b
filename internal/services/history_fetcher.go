package services

import (
	"context"
	"math/big"
	"sort"
	"sync"
	"time"

	"nft-backend/internal/interfaces"
	"nft-backend/internal/metrics"
	"nft-backend/internal/models"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// failureBackoff how long a failed source query is replayed instead of retried
const failureBackoff = 15 * time.Second

// HistoryFetcher transfer history of single records.
// The full contract transfer list is cached for ttl so a gallery scan costs one source query.
// A failed query is remembered for failureBackoff, so a scan over a failing source queries it once.
type HistoryFetcher struct {
	source   interfaces.TransferSource
	contract common.Address
	ttl      time.Duration

	mu        sync.Mutex
	cached    []models.TransferLog
	fetchedAt time.Time
	lastErr   error
	failedAt  time.Time
}

func NewHistoryFetcher(source interfaces.TransferSource, contract common.Address, ttl time.Duration) *HistoryFetcher {
	return &HistoryFetcher{source: source, contract: contract, ttl: ttl}
}

// Fetch transfers of recordID, oldest first; empty on any source error
func (h *HistoryFetcher) Fetch(ctx context.Context, recordID *big.Int) []models.TransferEvent {
	transfers, err := h.transfers(ctx)
	if err != nil {
		logrus.Warnf("⚠️ [History] Failed to list transfers for %s: %v", h.contract.Hex(), err)
		return []models.TransferEvent{}
	}

	var matched []models.TransferLog
	for _, t := range transfers {
		if t.RecordID != nil && t.RecordID.Cmp(recordID) == 0 {
			matched = append(matched, t)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].Timestamp.Equal(matched[j].Timestamp) {
			return matched[i].Timestamp.Before(matched[j].Timestamp)
		}
		return matched[i].BlockNumber < matched[j].BlockNumber
	})

	events := make([]models.TransferEvent, len(matched))
	for i, t := range matched {
		events[i] = t.Event()
	}
	return events
}

// Invalidate drops the cached transfer list
func (h *HistoryFetcher) Invalidate() {
	h.mu.Lock()
	h.cached = nil
	h.fetchedAt = time.Time{}
	h.lastErr = nil
	h.mu.Unlock()
}

func (h *HistoryFetcher) transfers(ctx context.Context) ([]models.TransferLog, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ttl > 0 && h.cached != nil && time.Since(h.fetchedAt) < h.ttl {
		metrics.HistoryCacheResults.WithLabelValues("hit").Inc()
		return h.cached, nil
	}
	if h.lastErr != nil && time.Since(h.failedAt) < failureBackoff {
		metrics.HistoryCacheResults.WithLabelValues("backoff").Inc()
		return nil, h.lastErr
	}
	metrics.HistoryCacheResults.WithLabelValues("miss").Inc()

	transfers, err := h.source.ListTransfers(ctx, h.contract)
	if err != nil {
		if ctx.Err() == nil {
			h.lastErr = err
			h.failedAt = time.Now()
		}
		return nil, err
	}
	h.lastErr = nil
	if transfers == nil {
		transfers = []models.TransferLog{}
	}
	h.cached = transfers
	h.fetchedAt = time.Now()
	return transfers, nil
}
