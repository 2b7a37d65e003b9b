package middleware

import (
	"net/http"
	"strings"

	"nft-backend/internal/dto"
	"nft-backend/internal/handlers"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// AuthMiddleware JWT bearer authentication
type AuthMiddleware struct {
	logger *logrus.Logger
	secret []byte
}

// NewAuthMiddleware an empty secret disables authentication
func NewAuthMiddleware(logger *logrus.Logger, secret string) *AuthMiddleware {
	return &AuthMiddleware{logger: logger, secret: []byte(secret)}
}

// Enabled reports whether tokens are checked
func (a *AuthMiddleware) Enabled() bool {
	return len(a.secret) > 0
}

// RequireAuth rejects requests without a valid bearer token
func (a *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.Enabled() {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			a.reject(c, "Authentication required", "Missing Authorization header. Please provide a valid JWT token.", "MISSING_AUTH_HEADER")
			return
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			a.reject(c, "Invalid authorization format", "Authorization header must be in format: Bearer <token>", "INVALID_AUTH_FORMAT")
			return
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenString == "" {
			a.reject(c, "Empty token", "Token cannot be empty", "EMPTY_TOKEN")
			return
		}

		claims, err := handlers.ValidateJWTToken(a.secret, tokenString)
		if err != nil {
			a.reject(c, "Invalid or expired token", err.Error(), "INVALID_TOKEN")
			return
		}

		c.Set("user_address", claims.Address)
		c.Set("chain_id", claims.ChainID)

		a.logger.WithFields(logrus.Fields{
			"path":         c.Request.URL.Path,
			"method":       c.Request.Method,
			"user_address": claims.Address,
		}).Debug("JWT accepted")

		c.Next()
	}
}

func (a *AuthMiddleware) reject(c *gin.Context, errorType, message, code string) {
	a.logger.WithFields(logrus.Fields{
		"path":   c.Request.URL.Path,
		"method": c.Request.Method,
		"code":   code,
	}).Warn("JWT rejected")

	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
		Success: false,
		Error:   errorType,
		Message: message,
		Code:    code,
	})
}
