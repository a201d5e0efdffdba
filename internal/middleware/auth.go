package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/farepath-service/internal/domain/dto"
	"github.com/guttosm/farepath-service/internal/i18n"
	"golang.org/x/crypto/bcrypt"
)

const (
	// APIKeyHeader is the HTTP header name for API key authentication.
	APIKeyHeader = "X-API-Key"
	// APIKeyQuery is the query parameter name for API key authentication.
	APIKeyQuery = "api_key"
	// APIClientKey is the context key holding the fingerprint of the authenticated API key.
	APIClientKey = "api_client"
)

// APIKeyConfig lists the keys accepted by APIKeyAuth.
type APIKeyConfig struct {
	// Keys are plain keys.
	Keys map[string]bool
	// Hashes are bcrypt hashes of keys.
	Hashes []string
}

func (c APIKeyConfig) empty() bool {
	return len(c.Keys) == 0 && len(c.Hashes) == 0
}

// apiKeyVerifier checks presented keys. bcrypt comparisons are slow, so keys
// that matched a hash once are remembered by their fingerprint.
type apiKeyVerifier struct {
	cfg      APIKeyConfig
	verified sync.Map
}

func (v *apiKeyVerifier) valid(key string) bool {
	if v.cfg.Keys[key] {
		return true
	}
	fp := keyFingerprint(key)
	if _, ok := v.verified.Load(fp); ok {
		return true
	}
	for _, h := range v.cfg.Hashes {
		if bcrypt.CompareHashAndPassword([]byte(h), []byte(key)) == nil {
			v.verified.Store(fp, struct{}{})
			return true
		}
	}
	return false
}

// keyFingerprint identifies a key in logs and rate limits without exposing it.
func keyFingerprint(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

// APIKeyAuth returns a middleware that validates API keys.
// It checks the X-API-Key header first, then falls back to api_key query parameter.
// With no keys configured, authentication is disabled.
func APIKeyAuth(cfg APIKeyConfig) gin.HandlerFunc {
	verifier := &apiKeyVerifier{cfg: cfg}

	return func(c *gin.Context) {
		if cfg.empty() {
			c.Next()
			return
		}

		key := c.GetHeader(APIKeyHeader)
		if key == "" {
			key = c.Query(APIKeyQuery)
		}

		if key == "" {
			abortUnauthorized(c, i18n.ErrKeyAPIKeyRequired)
			return
		}

		if !verifier.valid(key) {
			abortUnauthorized(c, i18n.ErrKeyInvalidAPIKey)
			return
		}

		c.Set(APIClientKey, keyFingerprint(key))
		c.Next()
	}
}

// GetAPIClient returns the fingerprint of the API key that authenticated the request.
func GetAPIClient(c *gin.Context) string {
	return c.GetString(APIClientKey)
}

func abortUnauthorized(c *gin.Context, key string) {
	abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, key)
}

func abortWithError(c *gin.Context, status int, code, key string) {
	message := i18n.GetTranslator().Translate(key, i18n.GetLocale(c))
	c.AbortWithStatusJSON(status, dto.NewError(code, message).WithRequestID(GetRequestID(c)))
}
