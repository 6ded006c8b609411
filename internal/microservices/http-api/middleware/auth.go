package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ScopeWriteRecipe is required to create recipes when auth is enabled.
const ScopeWriteRecipe = "write:recipe"

// Claims carried by access tokens.
type Claims struct {
	Scopes []string `json:"scopes"`
	jwt.RegisteredClaims
}

// SignToken issues an HS256 token for subject with the given scopes.
func SignToken(secret, subject string, scopes []string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Scopes: scopes,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken validates signature and expiry and returns the claims.
func ParseToken(secret, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// AuthMiddleware is a Gin middleware for JWT authentication of API requests
// It checks for the presence and validity of a JWT token in the Authorization header
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "missing authorization header"})
			return
		}

		// "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "invalid authorization header format"})
			return
		}

		claims, err := ParseToken(secret, parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "invalid token"})
			return
		}

		c.Set("claims", claims)
		c.Set("subject", claims.Subject)
		c.Set("scopes", claims.Scopes)

		c.Next()
	}
}

// RequireScopes middleware checks if token has required scopes
func RequireScopes(requiredScopes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		scopesInterface, exists := c.Get("scopes")
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "scopes not found in token"})
			return
		}

		tokenScopes, ok := scopesInterface.([]string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": "invalid scope format"})
			return
		}

		if !hasAllScopes(tokenScopes, requiredScopes) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"detail":   "insufficient scopes",
				"required": requiredScopes,
			})
			return
		}

		c.Next()
	}
}

// WriteGuards returns the chain protecting mutating routes.
func WriteGuards(secret string) []gin.HandlerFunc {
	return []gin.HandlerFunc{AuthMiddleware(secret), RequireScopes(ScopeWriteRecipe)}
}

func hasAllScopes(tokenScopes, requiredScopes []string) bool {
	scopeMap := make(map[string]bool, len(tokenScopes))
	for _, scope := range tokenScopes {
		scopeMap[scope] = true
	}

	if scopeMap["*"] {
		return true
	}

	for _, required := range requiredScopes {
		if !scopeMap[required] && !matchesWildcardScope(tokenScopes, required) {
			return false
		}
	}
	return true
}

// matchesWildcardScope handles "write:*" style scopes
func matchesWildcardScope(tokenScopes []string, required string) bool {
	for _, scope := range tokenScopes {
		if strings.HasSuffix(scope, "*") && strings.HasPrefix(required, strings.TrimSuffix(scope, "*")) {
			return true
		}
	}
	return false
}
