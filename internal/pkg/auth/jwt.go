// internal/pkg/auth/jwt.go
package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/your-org/storefront-backend/internal/config"
)

// Claims represents the identity token claims this service reads
type Claims struct {
	UserID       *uint  `json:"user_id,omitempty"`
	LegacyUserID *uint  `json:"userId,omitempty"`
	CartID       string `json:"cart_id,omitempty"`
	jwt.RegisteredClaims
}

// OwnerID returns the authenticated user id, if the token carries one
func (c *Claims) OwnerID() *uint {
	if c.UserID != nil {
		return c.UserID
	}
	return c.LegacyUserID
}

// JWTManager verifies identity tokens issued by the identity provider
type JWTManager struct {
	secret []byte
	parser *jwt.Parser
}

// NewJWTManager creates a new JWT manager
func NewJWTManager(cfg config.JWTConfig) *JWTManager {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	return &JWTManager{
		secret: []byte(cfg.Secret),
		parser: jwt.NewParser(opts...),
	}
}

// ValidateToken validates and parses a JWT token
func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := j.parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return j.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	if claims.OwnerID() == nil && claims.CartID == "" {
		return nil, errors.New("token carries neither user nor cart")
	}
	return claims, nil
}

// ExtractTokenFromHeader extracts JWT token from Authorization header
func ExtractTokenFromHeader(authHeader string) string {
	const prefix = "Bearer "
	if len(authHeader) > len(prefix) && strings.EqualFold(authHeader[:len(prefix)], prefix) {
		return strings.TrimSpace(authHeader[len(prefix):])
	}
	return ""
}
