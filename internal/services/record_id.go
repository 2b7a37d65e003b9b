package services

import (
	"context"
	"fmt"
	"math/big"

	"nft-backend/internal/config"

	"github.com/google/uuid"
)

// RecordIDAllocator picks the identifier for the next mint.
// A nil id means the contract assigns one (mintNFT) and it is read back from the receipt.
type RecordIDAllocator interface {
	Allocate(ctx context.Context) (*big.Int, error)
}

// LedgerAssigned leaves allocation to the contract counter
type LedgerAssigned struct{}

func (LedgerAssigned) Allocate(context.Context) (*big.Int, error) {
	return nil, nil
}

// UUIDAllocator random 128-bit identifiers
type UUIDAllocator struct{}

func (UUIDAllocator) Allocate(context.Context) (*big.Int, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("failed to generate record id: %w", err)
	}
	return new(big.Int).SetBytes(id[:]), nil
}

// NewRecordIDAllocator allocator for the configured strategy
func NewRecordIDAllocator(strategy string) (RecordIDAllocator, error) {
	switch strategy {
	case "", config.RecordIDStrategyLedger:
		return LedgerAssigned{}, nil
	case config.RecordIDStrategyUUID:
		return UUIDAllocator{}, nil
	default:
		return nil, fmt.Errorf("unknown record id strategy %q", strategy)
	}
}
