package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	jwt "github.com/golang-jwt/jwt/v5"
)

const (
	tokenTTL    = 72 * time.Hour
	tokenIssuer = "strangerchat"
)

var ErrInvalidToken = errors.New("invalid token")

// generateJWT signs an HS256 token carrying the anonymous ID.
func (h *Handler) generateJWT(anonID string, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"anon_id": anonID,
		"exp":     now.Add(tokenTTL).Unix(),
		"iat":     now.Unix(),
		"iss":     tokenIssuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.JWTSecret)
}

// validateAndGetAnonID checks signature, issuer and expiry and returns the
// anonymous ID.
func (h *Handler) validateAndGetAnonID(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString,
		func(*jwt.Token) (interface{}, error) { return h.JWTSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidToken
	}
	anonID, ok := claims["anon_id"].(string)
	if !ok {
		return "", fmt.Errorf("%w: missing anon_id", ErrInvalidToken)
	}
	if _, err := uuid.Parse(anonID); err != nil {
		return "", fmt.Errorf("%w: malformed anon_id", ErrInvalidToken)
	}
	return anonID, nil
}

// tokenFromRequest reads a bearer token from the Authorization header or,
// for browsers that cannot set headers on a WebSocket, the token query.
func tokenFromRequest(c *gin.Context) string {
	if auth := c.GetHeader("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return token
		}
		return ""
	}
	return c.Query("token")
}

// GetAnonID creates an anonymous ID and returns it with its token.
func (h *Handler) GetAnonID(c *gin.Context) {
	anonID := uuid.NewString()

	token, err := h.generateJWT(anonID, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("Failed to sign token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "anon_id": anonID})
}
