package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/filmatlas/filmatlas/internal/tokens"
	"github.com/filmatlas/filmatlas/pkg/metrics"
)

const principalKey = "principal"

// Verifier checks a bearer token and returns its principal.
type Verifier interface {
	VerifyBearer(token string) (*tokens.Principal, error)
}

// bearerToken pulls the token out of the Authorization header. The header
// shape is checked before any cryptographic work: a missing header and a
// malformed one produce the same response.
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	// exactly two space-separated parts; "Bearer a b" is malformed
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Auth requires a valid bearer token and stores its principal in the
// request context.
func Auth(verifier Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			metrics.AuthFailures.WithLabelValues("missing_header").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   true,
				"message": "Authorization header ('Bearer token') not found",
			})
			return
		}
		p, err := verifier.VerifyBearer(raw)
		if err != nil {
			if errors.Is(err, tokens.ErrTokenExpired) {
				metrics.AuthFailures.WithLabelValues("expired").Inc()
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error":   true,
					"message": "Token expired",
					"expired": true,
				})
				return
			}
			metrics.AuthFailures.WithLabelValues("invalid").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   true,
				"message": "Invalid JWT token",
			})
			return
		}
		c.Set(principalKey, *p)
		c.Next()
	}
}

// OptionalAuth verifies a bearer token when one is present but lets
// anonymous requests through. A provided-but-bad token is still rejected.
func OptionalAuth(verifier Verifier) gin.HandlerFunc {
	required := Auth(verifier)
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		required(c)
	}
}

// Principal returns the authenticated principal stored by Auth.
func Principal(c *gin.Context) (tokens.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return tokens.Principal{}, false
	}
	p, ok := v.(tokens.Principal)
	return p, ok
}
