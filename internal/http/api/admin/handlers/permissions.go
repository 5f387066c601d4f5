package handlers

import (
	"net/http"

	cchttp "github.com/cashclear/cashclear-pro/internal/http"
	"github.com/cashclear/cashclear-pro/internal/http/api/admin/permissions"
	"github.com/gin-gonic/gin"
)

// PermissionHandler exposes permission definitions for admins.
type PermissionHandler struct{}

// NewPermissionHandler constructs a PermissionHandler.
func NewPermissionHandler() *PermissionHandler {
	return &PermissionHandler{}
}

// List returns all permission definitions with whether the caller holds each.
func (h *PermissionHandler) List(c *gin.Context) {
	role := ""
	if s := cchttp.CurrentSession(c); s != nil {
		role = s.Role
	}
	defs := permissions.Definitions()
	defMap := permissions.DefinitionMap()
	out := make([]gin.H, 0, len(defs))
	for _, def := range defs {
		out = append(out, gin.H{
			"key":     def.Key,
			"method":  def.Method,
			"path":    def.Path,
			"label":   def.Label,
			"module":  def.Module,
			"roles":   def.Roles,
			"allowed": permissions.Allowed(defMap, def.Key, role),
		})
	}
	c.JSON(http.StatusOK, gin.H{"permissions": out})
}
