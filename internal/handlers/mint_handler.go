package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"nft-backend/internal/dto"
	"nft-backend/internal/models"
	"nft-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	maxAssetSize    = 20 << 20 // 20MB per file
	maxBatchSize    = 50
	maxMultipartMem = 32 << 20
)

var allowedAssetTypes = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".svg": true, ".webp": true,
	".mp4": true, ".webm": true, ".glb": true, ".json": true,
}

// BatchMinter minting operations used by the HTTP layer
type BatchMinter interface {
	SubmitBatch(ctx context.Context, requests []models.MintRequest) (*models.BatchReport, error)
	SubmitBatchAsync(ctx context.Context, requests []models.MintRequest) (string, error)
	GetBatch(ctx context.Context, batchID string) (*models.BatchReport, error)
}

// MintHandler handles mint batch operations
type MintHandler struct {
	minter BatchMinter
}

// NewMintHandler creates a new MintHandler
func NewMintHandler(minter BatchMinter) *MintHandler {
	return &MintHandler{minter: minter}
}

// SubmitMintHandler mints every uploaded file.
// Form fields: files (repeated), names and descriptions (optional, aligned with files by position).
// POST /api/mint[?async=true]
func (h *MintHandler) SubmitMintHandler(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxMultipartMem); err != nil {
		respondWithError(c, http.StatusBadRequest, "Invalid form", err.Error(), "INVALID_FORM")
		return
	}
	form := c.Request.MultipartForm
	files := form.File["files"]
	if len(files) == 0 {
		respondWithError(c, http.StatusBadRequest, "No files uploaded", "at least one file is required in field 'files'", "NO_FILES")
		return
	}
	if len(files) > maxBatchSize {
		respondWithError(c, http.StatusBadRequest, "Batch too large", fmt.Sprintf("at most %d files per batch", maxBatchSize), "BATCH_TOO_LARGE")
		return
	}

	names := form.Value["names"]
	descriptions := form.Value["descriptions"]
	requests := make([]models.MintRequest, 0, len(files))
	for i, file := range files {
		req, err := readMintRequest(file)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, "Invalid file", err.Error(), "INVALID_FILE")
			return
		}
		if i < len(names) {
			req.DisplayName = strings.TrimSpace(names[i])
		}
		if i < len(descriptions) {
			req.Description = strings.TrimSpace(descriptions[i])
		}
		requests = append(requests, req)
	}

	log := logrus.WithFields(logrus.Fields{"component": "MintHandler", "files": len(requests)})

	if c.Query("async") == "true" {
		batchID, err := h.minter.SubmitBatchAsync(c.Request.Context(), requests)
		if err != nil {
			h.respondPreflightError(c, err)
			return
		}
		log.WithField("batch", batchID).Info("📥 [Mint] Batch accepted")
		c.JSON(http.StatusAccepted, dto.MintAcceptedResponse{
			Success: true,
			BatchID: batchID,
			Jobs:    len(requests),
			Stream:  "/ws/mint/" + batchID,
		})
		return
	}

	report, err := h.minter.SubmitBatch(c.Request.Context(), requests)
	if err != nil {
		h.respondPreflightError(c, err)
		return
	}
	log.WithField("batch", report.BatchID).Infof("📦 [Mint] Batch done: %d confirmed, %d failed", report.Succeeded, report.Failed)
	c.JSON(http.StatusOK, dto.MintBatchResponse{Success: true, Batch: report})
}

// GetBatchHandler batch report, live while the batch runs
// GET /api/mint/batches/:id
func (h *MintHandler) GetBatchHandler(c *gin.Context) {
	batchID := c.Param("id")
	report, err := h.minter.GetBatch(c.Request.Context(), batchID)
	if err != nil {
		if errors.Is(err, services.ErrBatchNotFound) {
			respondWithError(c, http.StatusNotFound, "Batch not found", batchID, "BATCH_NOT_FOUND")
			return
		}
		respondWithError(c, http.StatusInternalServerError, "Failed to load batch", err.Error(), "BATCH_LOAD_FAILED")
		return
	}
	c.JSON(http.StatusOK, dto.MintBatchResponse{Success: true, Batch: report})
}

func (h *MintHandler) respondPreflightError(c *gin.Context, err error) {
	logrus.WithField("component", "MintHandler").Warnf("⚠️ [Mint] Batch rejected: %v", err)
	switch {
	case errors.Is(err, services.ErrEmptyBatch):
		respondWithError(c, http.StatusBadRequest, "Empty batch", err.Error(), "EMPTY_BATCH")
	case errors.Is(err, services.ErrSigningUnavailable):
		respondWithError(c, http.StatusServiceUnavailable, "Signing unavailable", err.Error(), "SIGNING_UNAVAILABLE")
	case errors.Is(err, services.ErrNetworkMismatch):
		respondWithError(c, http.StatusConflict, "Network mismatch", err.Error(), "NETWORK_MISMATCH")
	default:
		respondWithError(c, http.StatusInternalServerError, "Mint failed", err.Error(), "MINT_FAILED")
	}
}

func readMintRequest(file *multipart.FileHeader) (models.MintRequest, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedAssetTypes[ext] {
		return models.MintRequest{}, fmt.Errorf("%s: unsupported file type %q", file.Filename, ext)
	}
	if file.Size > maxAssetSize {
		return models.MintRequest{}, fmt.Errorf("%s: exceeds %dMB limit", file.Filename, maxAssetSize>>20)
	}
	src, err := file.Open()
	if err != nil {
		return models.MintRequest{}, fmt.Errorf("%s: failed to open: %w", file.Filename, err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return models.MintRequest{}, fmt.Errorf("%s: failed to read: %w", file.Filename, err)
	}
	return models.MintRequest{Asset: data, FileName: filepath.Base(file.Filename)}, nil
}
