package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	cchttp "github.com/cashclear/cashclear-pro/internal/http"
	"github.com/cashclear/cashclear-pro/internal/session"
	"github.com/gin-gonic/gin"
)

// maxValidityDays bounds a requested voucher validity.
const maxValidityDays = 365

// requireSession returns the current session or aborts with 401.
func requireSession(c *gin.Context) (*session.Session, bool) {
	s := cchttp.CurrentSession(c)
	if s == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	return s, true
}

// validityFromDays converts an optional day count. Zero keeps the configured default.
func validityFromDays(days int) (time.Duration, bool) {
	if days < 0 || days > maxValidityDays {
		return 0, false
	}
	return time.Duration(days) * 24 * time.Hour, true
}

// queryInt parses an integer query value with a fallback.
func queryInt(c *gin.Context, key string, fallback int) int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback
	}
	v, errParse := strconv.Atoi(raw)
	if errParse != nil {
		return fallback
	}
	return v
}
