package handlers

import (
	"nft-backend/internal/dto"

	"github.com/gin-gonic/gin"
)

// respondWithError unified error response function
func respondWithError(c *gin.Context, statusCode int, errorType, message, code string) {
	c.JSON(statusCode, dto.ErrorResponse{
		Success: false,
		Error:   errorType,
		Message: message,
		Code:    code,
	})
}
