package dto

import "github.com/golang-jwt/jwt/v5"

// ==================== Auth DTOs ====================

// AuthRequest wallet signature login
type AuthRequest struct {
	Address   string `json:"address" binding:"required"`   // signer wallet address
	Message   string `json:"message" binding:"required"`   // message returned by /api/auth/nonce
	Signature string `json:"signature" binding:"required"` // personal_sign signature, 0x hex
}

// AuthResponse Authentication response structure
type AuthResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message"`
}

// JWTClaims JWT Claims structure
type JWTClaims struct {
	Address string `json:"address"`
	ChainID int64  `json:"chain_id"`
	jwt.RegisteredClaims
}
