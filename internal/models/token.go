package models

import (
	"math/big"
	"time"
)

// MetadataRecord ERC-721 metadata document
type MetadataRecord struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"` // ipfs://<asset content id>
}

// TransferEvent one ownership transfer of a record
type TransferEvent struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Timestamp time.Time `json:"timestamp"`
}

// TransferLog transfer as reported by a history source, before filtering by record
type TransferLog struct {
	From        string
	To          string
	RecordID    *big.Int
	Timestamp   time.Time
	BlockNumber uint64
	TxHash      string
}

// Event strips the source-only fields
func (l TransferLog) Event() TransferEvent {
	return TransferEvent{From: l.From, To: l.To, Timestamp: l.Timestamp}
}

// TokenRecord a minted record as shown in the gallery
type TokenRecord struct {
	RecordID   *big.Int        `json:"record_id"`
	Owner      string          `json:"owner"`
	ContentRef *string         `json:"content_ref,omitempty"`
	Metadata   *MetadataRecord `json:"metadata,omitempty"`
	History    []TransferEvent `json:"history"`
}

// ScanState probe-path bookkeeping for one gallery fetch
type ScanState struct {
	Cursor              uint64 `json:"cursor"`
	ConsecutiveFailures uint64 `json:"consecutive_failures"`
	TotalAttempts       uint64 `json:"total_attempts"`
}

// ScanPath which discovery strategy a scan used
type ScanPath string

const (
	ScanPathFast  ScanPath = "fast"
	ScanPathProbe ScanPath = "probe"
)

// GalleryReport records plus how they were discovered
type GalleryReport struct {
	Path     ScanPath      `json:"path"`
	Count    *big.Int      `json:"count,omitempty"` // fast path only
	State    ScanState     `json:"state"`
	Skipped  []string      `json:"skipped,omitempty"` // ids whose fetch failed
	Records  []TokenRecord `json:"records"`
	Duration time.Duration `json:"duration_ns"`
}
