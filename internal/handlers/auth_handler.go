package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"nft-backend/internal/dto"
	"nft-backend/internal/utils"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const (
	tokenIssuer  = "nft-backend"
	nonceTTL     = 5 * time.Minute
	defaultJWTTL = 24 * time.Hour
)

var nonceLine = regexp.MustCompile(`(?m)^Nonce: ([0-9a-f]{32})$`)

// JWTClaims claims carried by API tokens
type JWTClaims = dto.JWTClaims

// AuthHandler wallet-signature login that issues API tokens
type AuthHandler struct {
	secret  []byte
	chainID int64
	ttl     time.Duration

	mu     sync.Mutex
	nonces map[string]time.Time // nonce -> expiry
}

// NewAuthHandler create handler
func NewAuthHandler(secret string, chainID int64) *AuthHandler {
	return &AuthHandler{
		secret:  []byte(secret),
		chainID: chainID,
		ttl:     defaultJWTTL,
		nonces:  make(map[string]time.Time),
	}
}

// GenerateNonceHandler message for the wallet to sign
// GET /api/auth/nonce
func (h *AuthHandler) GenerateNonceHandler(c *gin.Context) {
	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		respondWithError(c, http.StatusInternalServerError, "Failed to generate nonce", err.Error(), "NONCE_FAILED")
		return
	}
	nonceStr := hex.EncodeToString(nonce)
	timestamp := time.Now().Unix()

	h.mu.Lock()
	h.pruneNonces()
	h.nonces[nonceStr] = time.Now().Add(nonceTTL)
	h.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"nonce":     nonceStr,
		"message":   fmt.Sprintf("NFT Backend Authentication\nNonce: %s\nTimestamp: %d", nonceStr, timestamp),
		"timestamp": timestamp,
	})
}

// AuthenticateHandler verify the signed nonce message and issue a token
// POST /api/auth
func (h *AuthHandler) AuthenticateHandler(c *gin.Context) {
	var req dto.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.AuthResponse{Success: false, Message: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	address, err := utils.NormalizeEvmAddress(req.Address)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.AuthResponse{Success: false, Message: err.Error()})
		return
	}

	if err := h.consumeNonce(req.Message); err != nil {
		logrus.WithFields(logrus.Fields{"component": "AuthHandler", "address": address}).Warnf("⚠️ [Auth] %v", err)
		c.JSON(http.StatusUnauthorized, dto.AuthResponse{Success: false, Message: err.Error()})
		return
	}

	signer, err := RecoverSigner(req.Message, req.Signature)
	if err != nil || signer.Hex() != address {
		logrus.WithFields(logrus.Fields{"component": "AuthHandler", "address": address}).Warn("⚠️ [Auth] Signature does not match address")
		c.JSON(http.StatusUnauthorized, dto.AuthResponse{Success: false, Message: "signature verification failed"})
		return
	}

	token, err := GenerateJWTToken(h.secret, address, h.chainID, h.ttl)
	if err != nil {
		logrus.Errorf("❌ [Auth] Failed to sign token: %v", err)
		c.JSON(http.StatusInternalServerError, dto.AuthResponse{Success: false, Message: "failed to issue token"})
		return
	}

	logrus.Infof("✅ [Auth] Token issued for %s", address)
	c.JSON(http.StatusOK, dto.AuthResponse{Success: true, Token: token, Message: "success"})
}

func (h *AuthHandler) consumeNonce(message string) error {
	m := nonceLine.FindStringSubmatch(message)
	if m == nil {
		return errors.New("message carries no nonce")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	expiry, ok := h.nonces[m[1]]
	if !ok {
		return errors.New("unknown or used nonce")
	}
	delete(h.nonces, m[1])
	if time.Now().After(expiry) {
		return errors.New("nonce expired")
	}
	return nil
}

func (h *AuthHandler) pruneNonces() {
	now := time.Now()
	for n, expiry := range h.nonces {
		if now.After(expiry) {
			delete(h.nonces, n)
		}
	}
}

// RecoverSigner address that produced a personal_sign signature over message
func RecoverSigner(message, signature string) (common.Address, error) {
	sig, err := hexutil.Decode(strings.TrimSpace(signature))
	if err != nil {
		return common.Address{}, fmt.Errorf("invalid signature encoding: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, fmt.Errorf("signature must be %d bytes, got %d", crypto.SignatureLength, len(sig))
	}
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}
	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to recover signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// GenerateJWTToken HS256 token for address
func GenerateJWTToken(secret []byte, address string, chainID int64, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		Address: address,
		ChainID: chainID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
			Subject:   address,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}

// ValidateJWTToken parse and verify an HS256 token
func ValidateJWTToken(secret []byte, tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}, jwt.WithIssuer(tokenIssuer))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token claims")
}
