package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nft-backend/internal/dto"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func personalSign(t *testing.T, message string) (string, string) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), key)
	require.NoError(t, err)
	sig[crypto.RecoveryIDOffset] += 27
	return crypto.PubkeyToAddress(key.PublicKey).Hex(), hexutil.Encode(sig)
}

func TestAuthFlow(t *testing.T) {
	h := NewAuthHandler("secret", 11155111)
	r := gin.New()
	r.GET("/api/auth/nonce", h.GenerateNonceHandler)
	r.POST("/api/auth", h.AuthenticateHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/nonce", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var nonce struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &nonce))

	address, signature := personalSign(t, nonce.Message)
	login := func(req dto.AuthRequest) *httptest.ResponseRecorder {
		body, err := json.Marshal(req)
		require.NoError(t, err)
		w := httptest.NewRecorder()
		httpReq := httptest.NewRequest(http.MethodPost, "/api/auth", bytes.NewReader(body))
		httpReq.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, httpReq)
		return w
	}

	// signature from another key
	otherAddress, _ := personalSign(t, nonce.Message)
	w = login(dto.AuthRequest{Address: otherAddress, Message: nonce.Message, Signature: signature})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// the failed attempt consumed the nonce
	w = login(dto.AuthRequest{Address: address, Message: nonce.Message, Signature: signature})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/nonce", nil))
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &nonce))
	address, signature = personalSign(t, nonce.Message)

	w = login(dto.AuthRequest{Address: address, Message: nonce.Message, Signature: signature})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	claims, err := ValidateJWTToken([]byte("secret"), resp.Token)
	require.NoError(t, err)
	assert.Equal(t, address, claims.Address)
	assert.Equal(t, int64(11155111), claims.ChainID)

	// replay
	w = login(dto.AuthRequest{Address: address, Message: nonce.Message, Signature: signature})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecoverSigner_RejectsMalformedSignatures(t *testing.T) {
	_, err := RecoverSigner("hello", "0x1234")
	assert.Error(t, err)
	_, err = RecoverSigner("hello", "not-hex")
	assert.Error(t, err)
}

func TestValidateJWTToken(t *testing.T) {
	token, err := GenerateJWTToken([]byte("a"), "0xabc", 1, time.Minute)
	require.NoError(t, err)

	_, err = ValidateJWTToken([]byte("b"), token)
	assert.Error(t, err)

	claims, err := ValidateJWTToken([]byte("a"), token)
	require.NoError(t, err)
	assert.Equal(t, "0xabc", claims.Subject)
}
