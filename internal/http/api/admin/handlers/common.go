package handlers

import (
	"strconv"
	"strings"

	cchttp "github.com/cashclear/cashclear-pro/internal/http"
	"github.com/gin-gonic/gin"
)

// actorID returns the operator acting through the current session.
func actorID(c *gin.Context) string {
	if s := cchttp.CurrentSession(c); s != nil {
		return s.OperatorID
	}
	return ""
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
