// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 PlaceHub Contributors

package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/placehub/placehub/internal/account"
	"github.com/placehub/placehub/internal/observability"
)

// identityKey is the gin context key the auth gate stores the verified
// identity under.
const identityKey = "placehub.identity"

// Authenticate gates mutating routes behind token verification. Preflight
// OPTIONS requests carry no credentials by protocol design and pass through
// untouched. Missing, malformed, and unverifiable tokens all produce the
// same 401 so callers cannot probe which check failed.
func Authenticate(tokens account.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Message: msgAuthFailed})
			return
		}

		identity, err := tokens.Verify(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{Message: msgAuthFailed})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// identityFrom returns the verified identity the auth gate attached.
func identityFrom(c *gin.Context) (account.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return account.Identity{}, false
	}
	identity, ok := v.(account.Identity)
	return identity, ok
}

// RequestLogger logs one line per completed request.
func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}

// RecordMetrics counts completed requests by method and status.
func RecordMetrics(metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		metrics.RequestsTotal.WithLabelValues(
			c.Request.Method,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
	}
}
