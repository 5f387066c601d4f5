package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/cashclear/cashclear-pro/internal/session"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Context keys set by SessionAuthMiddleware.
const (
	ContextSessionKey    = "session"
	ContextOperatorIDKey = "operatorID"
)

// SessionAuthMiddleware resolves the bearer token to a live session and stores it in the context.
func SessionAuthMiddleware(manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		s, errResolve := manager.Resolve(c.Request.Context(), token)
		if errResolve != nil {
			if errors.Is(errResolve, session.ErrUnauthorized) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired session"})
				return
			}
			log.WithError(errResolve).Error("session middleware: resolve failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session lookup failed"})
			return
		}

		c.Set(ContextSessionKey, s)
		c.Set(ContextOperatorIDKey, s.OperatorID)
		c.Next()
	}
}

// CurrentSession returns the session stored by SessionAuthMiddleware.
func CurrentSession(c *gin.Context) *session.Session {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	s, _ := value.(*session.Session)
	return s
}
