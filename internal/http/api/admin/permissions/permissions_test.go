package permissions

import (
	"testing"

	"github.com/cashclear/cashclear-pro/internal/models"
)

func TestDefinitionMapIncludesOperatorPermissions(t *testing.T) {
	t.Parallel()

	definitionMap := DefinitionMap()
	requiredKeys := []string{
		"GET /v0/admin/operators",
		"POST /v0/admin/operators/:id/top-up",
		"PUT /v0/admin/settings/:key",
		"GET /v0/admin/backup",
	}

	for _, key := range requiredKeys {
		key := key
		t.Run(key, func(t *testing.T) {
			t.Parallel()
			if _, ok := definitionMap[key]; !ok {
				t.Fatalf("DefinitionMap() missing permission key %q", key)
			}
		})
	}
}

func TestAllowedRoles(t *testing.T) {
	t.Parallel()

	definitionMap := DefinitionMap()
	cases := []struct {
		key  string
		role string
		want bool
	}{
		{"GET /v0/admin/operators", models.RoleAdmin, true},
		{"GET /v0/admin/operators", models.RoleDev, true},
		{"GET /v0/admin/operators", models.RoleOperator, false},
		{"POST /v0/admin/operators", models.RoleAdmin, true},
		{"POST /v0/admin/operators", models.RoleDev, false},
		{"POST /v0/admin/operators/:id/top-up", models.RoleDev, false},
		{"POST /v0/admin/operators/:id/top-up", models.RoleAdmin, true},
		{"DELETE /v0/admin/operators/:id", models.RoleAdmin, false},
	}
	for _, tc := range cases {
		if got := Allowed(definitionMap, tc.key, tc.role); got != tc.want {
			t.Fatalf("Allowed(%q, %q) = %v, want %v", tc.key, tc.role, got, tc.want)
		}
	}
}
