package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/use-agent/koans/models"
)

// ContextKeyAPIKey is the gin context key holding the authenticated key.
const ContextKeyAPIKey = "api_key"

// Auth rejects requests that do not carry one of apiKeys, either as
// X-API-Key or as an Authorization bearer token. Empty keys are ignored;
// with no keys left every request passes.
func Auth(apiKeys []string) gin.HandlerFunc {
	keys := make([][]byte, 0, len(apiKeys))
	for _, k := range apiKeys {
		if k != "" {
			keys = append(keys, []byte(k))
		}
	}
	if len(keys) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key, ok := presentedKey(c)
		if !ok {
			unauthorized(c, "API key required (X-API-Key or Authorization: Bearer)")
			return
		}
		if !knownKey(keys, key) {
			unauthorized(c, "API key not recognised")
			return
		}

		c.Set(ContextKeyAPIKey, key)
		c.Next()
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", `Bearer realm="koans"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.NewErrorResponse(models.ErrCodeUnauthorized, msg))
}

// knownKey compares in constant time against every key.
func knownKey(keys [][]byte, key string) bool {
	found := 0
	for _, k := range keys {
		found |= subtle.ConstantTimeCompare(k, []byte(key))
	}
	return found == 1
}

func presentedKey(c *gin.Context) (string, bool) {
	if key := c.GetHeader("X-API-Key"); key != "" {
		return key, true
	}
	token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	token = strings.TrimSpace(token)
	return token, found && token != ""
}
