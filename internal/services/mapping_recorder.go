package services

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"nft-backend/internal/models"
	"nft-backend/internal/repository"
)

// TokenMapping record id → content reference of a confirmed mint
type TokenMapping struct {
	RecordID   *big.Int  `json:"record_id"`
	ContentRef string    `json:"content_ref"`
	TxHash     string    `json:"tx_hash"`
	BatchID    string    `json:"batch_id"`
	Owner      string    `json:"owner"`
	RecordedAt time.Time `json:"recorded_at"`
}

// MappingRecorder persists mappings in confirmation order
type MappingRecorder interface {
	Record(ctx context.Context, mapping TokenMapping) error
	// Lookup returns "" and false when the id was never recorded
	Lookup(ctx context.Context, recordID *big.Int) (string, bool, error)
}

// MemoryMappingRecorder in-process recorder; List preserves confirmation order
type MemoryMappingRecorder struct {
	mu      sync.RWMutex
	ordered []TokenMapping
	byID    map[string]int
}

func NewMemoryMappingRecorder() *MemoryMappingRecorder {
	return &MemoryMappingRecorder{byID: make(map[string]int)}
}

func (r *MemoryMappingRecorder) Record(ctx context.Context, mapping TokenMapping) error {
	if mapping.RecordID == nil {
		return fmt.Errorf("mapping without record id")
	}
	if mapping.RecordedAt.IsZero() {
		mapping.RecordedAt = time.Now()
	}
	mapping.RecordID = new(big.Int).Set(mapping.RecordID)

	r.mu.Lock()
	defer r.mu.Unlock()
	key := mapping.RecordID.String()
	if i, ok := r.byID[key]; ok {
		r.ordered[i] = mapping
		return nil
	}
	r.byID[key] = len(r.ordered)
	r.ordered = append(r.ordered, mapping)
	return nil
}

func (r *MemoryMappingRecorder) Lookup(ctx context.Context, recordID *big.Int) (string, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i, ok := r.byID[recordID.String()]
	if !ok {
		return "", false, nil
	}
	return r.ordered[i].ContentRef, true, nil
}

// List mappings in the order they were recorded
func (r *MemoryMappingRecorder) List() []TokenMapping {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]TokenMapping, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// RepositoryMappingRecorder writes mappings to token_uri_mappings
type RepositoryMappingRecorder struct {
	repo     repository.TokenMappingRepository
	chainID  string
	contract string
}

func NewRepositoryMappingRecorder(repo repository.TokenMappingRepository, chainID *big.Int, contract string) *RepositoryMappingRecorder {
	return &RepositoryMappingRecorder{repo: repo, chainID: chainID.String(), contract: contract}
}

func (r *RepositoryMappingRecorder) Record(ctx context.Context, mapping TokenMapping) error {
	if mapping.RecordID == nil {
		return fmt.Errorf("mapping without record id")
	}
	return r.repo.Upsert(ctx, &models.TokenURIMapping{
		RecordID:   mapping.RecordID.String(),
		ChainID:    r.chainID,
		Contract:   r.contract,
		ContentRef: mapping.ContentRef,
		TxHash:     mapping.TxHash,
		BatchID:    mapping.BatchID,
		Owner:      mapping.Owner,
	})
}

func (r *RepositoryMappingRecorder) Lookup(ctx context.Context, recordID *big.Int) (string, bool, error) {
	mapping, err := r.repo.GetByRecordID(ctx, r.chainID, recordID.String())
	if err != nil {
		return "", false, err
	}
	if mapping == nil {
		return "", false, nil
	}
	return mapping.ContentRef, true, nil
}

// RecordIDs ids in recording order
func (r *MemoryMappingRecorder) RecordIDs(ctx context.Context) ([]*big.Int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]*big.Int, len(r.ordered))
	for i, m := range r.ordered {
		ids[i] = new(big.Int).Set(m.RecordID)
	}
	return ids, nil
}

// RecordIDs every recorded id on this chain
func (r *RepositoryMappingRecorder) RecordIDs(ctx context.Context) ([]*big.Int, error) {
	const pageSize = 500
	var ids []*big.Int
	for page := 1; ; page++ {
		mappings, total, err := r.repo.FindByChain(ctx, r.chainID, page, pageSize)
		if err != nil {
			return nil, err
		}
		for _, m := range mappings {
			if id, ok := new(big.Int).SetString(m.RecordID, 10); ok {
				ids = append(ids, id)
			}
		}
		if len(mappings) < pageSize || int64(page*pageSize) >= total {
			return ids, nil
		}
	}
}
