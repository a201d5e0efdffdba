package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/farepath-service/internal/domain/dto"
	"github.com/guttosm/farepath-service/internal/i18n"
	"github.com/guttosm/farepath-service/internal/service"
)

const (
	// OperatorKey is the context key holding the authenticated operator name.
	OperatorKey = "operator"
	// ClaimsKey is the context key holding the operator's *dto.Claims.
	ClaimsKey = "claims"
)

// JWTAuth returns a middleware that validates operator bearer tokens.
func JWTAuth(tokens service.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, i18n.ErrKeyTokenRequired)
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, i18n.ErrKeyInvalidToken)
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenString == "" {
			abortUnauthorized(c, i18n.ErrKeyTokenRequired)
			return
		}

		claims, err := tokens.Validate(tokenString)
		if err != nil {
			abortUnauthorized(c, i18n.ErrKeyInvalidToken)
			return
		}

		c.Set(OperatorKey, claims.Operator)
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// GetOperator returns the authenticated operator, or "" for anonymous requests.
func GetOperator(c *gin.Context) string {
	return c.GetString(OperatorKey)
}

// GetClaims returns the authenticated operator's claims.
func GetClaims(c *gin.Context) (*dto.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*dto.Claims)
	return claims, ok && claims != nil
}
