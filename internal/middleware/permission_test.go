package middleware_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/santoshrchetty/construction-erp/internal/erp/testutil"
	"github.com/santoshrchetty/construction-erp/internal/middleware"
)

func setupPermissionTest() *gin.Engine {
	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")
	api.POST("/guarded", middleware.RequirePermission("timesheet:approve"), func(c *gin.Context) {
		c.JSON(200, gin.H{"code": 0})
	})
	return router
}

func TestRequirePermissionDenied(t *testing.T) {
	router := setupPermissionTest()
	token := testutil.GenerateTestToken("user-001", "Worker", "worker@test.com",
		[]string{"erp_member"}, []string{"timesheet:submit"})

	w := testutil.DoRequest(router, "POST", "/api/v1/guarded", nil, token)
	if w.Code != http.StatusForbidden {
		t.Errorf("Expected 403 without permission, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRequirePermissionGranted(t *testing.T) {
	router := setupPermissionTest()
	token := testutil.GenerateTestToken("user-002", "Lead", "lead@test.com",
		[]string{"erp_lead"}, []string{"timesheet:approve"})

	w := testutil.DoRequest(router, "POST", "/api/v1/guarded", nil, token)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 with permission, got %d: %s", w.Code, w.Body.String())
	}
}

func TestRequirePermissionWildcard(t *testing.T) {
	router := setupPermissionTest()

	w := testutil.DoRequest(router, "POST", "/api/v1/guarded", nil, testutil.DefaultTestToken())
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 with wildcard permission, got %d: %s", w.Code, w.Body.String())
	}
}
