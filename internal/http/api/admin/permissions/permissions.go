// Package permissions maps admin routes to the roles allowed to call them.
package permissions

import (
	"slices"
	"strings"

	"github.com/cashclear/cashclear-pro/internal/models"
)

// Definition describes one admin route permission.
type Definition struct {
	Key    string
	Method string
	Path   string
	Module string
	Label  string
	Roles  []string
}

var (
	everyAdmin = []string{models.RoleAdmin, models.RoleDev}
	adminOnly  = []string{models.RoleAdmin}
)

var definitions = []Definition{
	newDefinition("GET", "/v0/admin/operators", "Operators", "List operators", everyAdmin),
	newDefinition("POST", "/v0/admin/operators", "Operators", "Create operator", adminOnly),
	newDefinition("PUT", "/v0/admin/operators/:id/status", "Operators", "Change operator status", everyAdmin),
	newDefinition("PUT", "/v0/admin/operators/:id/password", "Operators", "Reset operator password", adminOnly),
	newDefinition("POST", "/v0/admin/operators/:id/top-up", "Balances", "Top up operator balance", adminOnly),
	newDefinition("GET", "/v0/admin/operators/:id/entries", "Balances", "List balance entries", everyAdmin),
	newDefinition("GET", "/v0/admin/history", "Vouchers", "Voucher history", everyAdmin),
	newDefinition("GET", "/v0/admin/audit-events", "Audit", "List audit events", everyAdmin),
	newDefinition("GET", "/v0/admin/settings", "Settings", "List settings", everyAdmin),
	newDefinition("PUT", "/v0/admin/settings/:key", "Settings", "Update setting", adminOnly),
	newDefinition("GET", "/v0/admin/backup", "Maintenance", "Download database backup", everyAdmin),
	newDefinition("GET", "/v0/admin/permissions", "Maintenance", "List permissions", everyAdmin),
}

func newDefinition(method, path, module, label string, roles []string) Definition {
	return Definition{
		Key:    Key(method, path),
		Method: method,
		Path:   path,
		Module: module,
		Label:  label,
		Roles:  roles,
	}
}

// Key builds the permission key for a route.
func Key(method, path string) string {
	return strings.ToUpper(strings.TrimSpace(method)) + " " + strings.TrimSpace(path)
}

// Definitions returns every admin permission.
func Definitions() []Definition {
	return slices.Clone(definitions)
}

// DefinitionMap indexes definitions by key.
func DefinitionMap() map[string]Definition {
	out := make(map[string]Definition, len(definitions))
	for _, def := range definitions {
		out[def.Key] = def
	}
	return out
}

// Allowed reports whether role may call the route identified by key.
func Allowed(definitionMap map[string]Definition, key, role string) bool {
	def, ok := definitionMap[key]
	if !ok {
		return false
	}
	return slices.Contains(def.Roles, role)
}
