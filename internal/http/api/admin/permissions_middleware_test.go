package admin

import (
	"net/http"
	"net/http/httptest"
	"testing"

	cchttp "github.com/cashclear/cashclear-pro/internal/http"
	"github.com/cashclear/cashclear-pro/internal/models"
	"github.com/cashclear/cashclear-pro/internal/session"
	"github.com/gin-gonic/gin"
)

func newPermissionRouter(role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/v0/admin")
	group.Use(func(c *gin.Context) {
		if role != "" {
			c.Set(cchttp.ContextSessionKey, &session.Session{ID: "s1", OperatorID: "U1", Role: role})
		}
		c.Next()
	}, adminPermissionMiddleware())
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }
	group.GET("/operators", ok)
	group.POST("/operators", ok)
	group.POST("/operators/:id/top-up", ok)
	group.GET("/unlisted", ok)
	return router
}

func TestAdminPermissionMiddleware(t *testing.T) {
	cases := []struct {
		name   string
		role   string
		method string
		path   string
		want   int
	}{
		{"admin lists operators", models.RoleAdmin, http.MethodGet, "/v0/admin/operators", http.StatusNoContent},
		{"dev lists operators", models.RoleDev, http.MethodGet, "/v0/admin/operators", http.StatusNoContent},
		{"operator denied", models.RoleOperator, http.MethodGet, "/v0/admin/operators", http.StatusForbidden},
		{"dev cannot create accounts", models.RoleDev, http.MethodPost, "/v0/admin/operators", http.StatusForbidden},
		{"admin creates accounts", models.RoleAdmin, http.MethodPost, "/v0/admin/operators", http.StatusNoContent},
		{"dev cannot top up", models.RoleDev, http.MethodPost, "/v0/admin/operators/OP1/top-up", http.StatusForbidden},
		{"admin tops up", models.RoleAdmin, http.MethodPost, "/v0/admin/operators/OP1/top-up", http.StatusNoContent},
		{"route without definition", models.RoleAdmin, http.MethodGet, "/v0/admin/unlisted", http.StatusForbidden},
		{"no session", "", http.MethodGet, "/v0/admin/operators", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newPermissionRouter(tc.role).ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
			if rec.Code != tc.want {
				t.Fatalf("%s %s as %q: expected %d, got %d", tc.method, tc.path, tc.role, tc.want, rec.Code)
			}
		})
	}
}
