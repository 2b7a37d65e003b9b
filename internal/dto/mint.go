package dto

import "nft-backend/internal/models"

// ==================== Mint DTOs ====================

// MintAcceptedResponse returned by POST /api/mint?async=true
type MintAcceptedResponse struct {
	Success bool   `json:"success"`
	BatchID string `json:"batch_id"`
	Jobs    int    `json:"jobs"`
	Stream  string `json:"stream"` // websocket path for job updates
}

// MintBatchResponse finished (or in-progress) batch
type MintBatchResponse struct {
	Success bool                `json:"success"`
	Batch   *models.BatchReport `json:"batch"`
}

// GalleryResponse GET /api/gallery
type GalleryResponse struct {
	Success bool                  `json:"success"`
	Total   int                   `json:"total"`
	Report  *models.GalleryReport `json:"report"`
}

// ErrorResponse uniform error body
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
