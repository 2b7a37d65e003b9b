package handlers

import (
	"context"
	"errors"
	"math/big"
	"net/http"

	"nft-backend/internal/dto"
	"nft-backend/internal/models"
	"nft-backend/internal/services"
	"nft-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

// GalleryReader gallery operations used by the HTTP layer
type GalleryReader interface {
	ScanWithReport(ctx context.Context) (*models.GalleryReport, error)
	Get(ctx context.Context, recordID *big.Int) (*models.TokenRecord, error)
}

// GalleryHandler serves the reconstructed gallery
type GalleryHandler struct {
	gallery GalleryReader
}

func NewGalleryHandler(gallery GalleryReader) *GalleryHandler {
	return &GalleryHandler{gallery: gallery}
}

// ListHandler every discoverable record with owner, metadata and history.
// GET /api/gallery[?owner=0x...]
func (h *GalleryHandler) ListHandler(c *gin.Context) {
	owner := c.Query("owner")
	if owner != "" {
		normalized, err := utils.NormalizeEvmAddress(owner)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, "Invalid owner", err.Error(), "INVALID_OWNER")
			return
		}
		owner = normalized
	}

	report, err := h.gallery.ScanWithReport(c.Request.Context())
	if err != nil && report == nil {
		respondWithError(c, http.StatusBadGateway, "Gallery scan failed", err.Error(), "SCAN_FAILED")
		return
	}
	if owner != "" {
		filtered := *report
		filtered.Records = make([]models.TokenRecord, 0, len(report.Records))
		for _, r := range report.Records {
			if r.Owner == owner {
				filtered.Records = append(filtered.Records, r)
			}
		}
		report = &filtered
	}
	c.JSON(http.StatusOK, dto.GalleryResponse{Success: true, Total: len(report.Records), Report: report})
}

// GetHandler one record by id
// GET /api/gallery/:id
func (h *GalleryHandler) GetHandler(c *gin.Context) {
	id, err := utils.ParseRecordID(c.Param("id"))
	if err != nil {
		respondWithError(c, http.StatusBadRequest, "Invalid record id", err.Error(), "INVALID_RECORD_ID")
		return
	}

	record, err := h.gallery.Get(c.Request.Context(), id)
	if err != nil {
		var transient *services.TransientReadError
		if errors.As(err, &transient) {
			respondWithError(c, http.StatusBadGateway, "Ledger read failed", err.Error(), "LEDGER_UNAVAILABLE")
			return
		}
		respondWithError(c, http.StatusInternalServerError, "Failed to load record", err.Error(), "RECORD_LOAD_FAILED")
		return
	}
	if record == nil {
		respondWithError(c, http.StatusNotFound, "Record not found", id.String(), "RECORD_NOT_FOUND")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "record": record})
}
