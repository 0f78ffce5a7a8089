package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"storefront/internal/auth"
	"storefront/internal/service"
	"storefront/internal/util"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	sessionCookieName = "session_id"
	principalKey      = "principal"
	tokenKey          = "session_token"
)

// sessionToken reads the session cookie, falling back to a bearer token
func sessionToken(c *gin.Context) string {
	if token, err := c.Cookie(sessionCookieName); err == nil && strings.TrimSpace(token) != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}

// session attaches the caller's principal when the request carries a
// valid session. Anonymous requests pass through.
func (h *Handler) session() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			c.Next()
			return
		}

		p, err := h.accounts.Authenticate(c.Request.Context(), token)
		switch {
		case err == nil:
			c.Set(principalKey, p)
			c.Set(tokenKey, token)
		case errors.Is(err, service.ErrUnauthenticated):
			h.clearSessionCookie(c)
		default:
			util.GetLogger().Warn("Session lookup failed", zap.Error(err))
		}
		c.Next()
	}
}

// requireTier rejects callers outside tier before the handler runs
func requireTier(tier auth.Tier) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := principal(c)
		if !p.Allows(tier) {
			denied(c, tier, p)
			return
		}
		c.Next()
	}
}

// principal returns the caller or nil
func principal(c *gin.Context) *auth.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*auth.Principal)
	return p
}

func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, token, int(h.opts.SessionTTL/time.Second), "/", "", h.opts.SecureCookies, true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(sessionCookieName, "", -1, "/", "", h.opts.SecureCookies, true)
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(c.Request.Method, path, status).
			Observe(time.Since(start).Seconds())
		util.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
