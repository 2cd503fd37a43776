package handler

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/santoshrchetty/construction-erp/internal/erp/repository"
	"github.com/santoshrchetty/construction-erp/internal/erp/service"
	"github.com/santoshrchetty/construction-erp/internal/erp/testutil"
	"github.com/santoshrchetty/construction-erp/internal/erp/treestate"
	"gorm.io/gorm"
)

func setupWBSTest(t *testing.T) (*gin.Engine, *gorm.DB, *treestate.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	store := treestate.NewStore(testutil.SetupTestRedis(t))

	repos := repository.NewRepositories(db)
	svcs := service.NewServices(repos)
	wbsHandler := NewWBSHandler(svcs.WBS, store)
	activityHandler := NewActivityHandler(svcs.Activity, store)

	router := testutil.SetupRouter()
	api := testutil.AuthGroup(router, "/api/v1")

	api.GET("/projects/:id/tree", wbsHandler.GetTree)
	api.POST("/projects/:id/wbs", wbsHandler.CreateNode)
	api.GET("/wbs/:id", wbsHandler.GetNode)
	api.PUT("/wbs/:id", wbsHandler.UpdateNode)
	api.GET("/wbs/:id/delete-impact", wbsHandler.PreviewDelete)
	api.DELETE("/wbs/:id", wbsHandler.DeleteNode)

	api.POST("/wbs/:id/activities", activityHandler.CreateActivity)
	api.DELETE("/activities/:id", activityHandler.DeleteActivity)
	api.POST("/activities/:id/dependencies", activityHandler.AddDependency)
	api.GET("/activities/:id/predecessors", activityHandler.ListPredecessors)
	api.GET("/activities/:id/successors", activityHandler.ListSuccessors)

	return router, db, store
}

func createNode(t *testing.T, router *gin.Engine, token, projectID string, parentID *string, name string) map[string]interface{} {
	t.Helper()
	body := map[string]interface{}{"name": name}
	if parentID != nil {
		body["parent_id"] = *parentID
	}
	w := testutil.DoRequest(router, "POST", "/api/v1/projects/"+projectID+"/wbs", body, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	return resp["data"].(map[string]interface{})
}

func createActivityUnder(t *testing.T, router *gin.Engine, token, nodeID, name string) map[string]interface{} {
	t.Helper()
	w := testutil.DoRequest(router, "POST", "/api/v1/wbs/"+nodeID+"/activities",
		map[string]interface{}{"name": name}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	return resp["data"].(map[string]interface{})
}

func TestWBSCreateNodeCodes(t *testing.T) {
	router, db, _ := setupWBSTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedProject(t, db, "proj-001", "AIR-24-01", "Airport Terminal")

	// 两个根节点顺序取号
	root1 := createNode(t, router, token, "proj-001", nil, "Design Phase")
	if root1["code"] != "AIR-24-01.01" {
		t.Errorf("Expected code AIR-24-01.01, got %v", root1["code"])
	}
	if root1["level"] != float64(1) {
		t.Errorf("Expected level 1, got %v", root1["level"])
	}

	root2 := createNode(t, router, token, "proj-001", nil, "Construction Phase")
	if root2["code"] != "AIR-24-01.02" {
		t.Errorf("Expected code AIR-24-01.02, got %v", root2["code"])
	}

	// 子节点在父编码下取号
	rootID := root1["id"].(string)
	child := createNode(t, router, token, "proj-001", &rootID, "Structural Design")
	if child["code"] != "AIR-24-01.01.01" {
		t.Errorf("Expected code AIR-24-01.01.01, got %v", child["code"])
	}
	if child["level"] != float64(2) {
		t.Errorf("Expected level 2, got %v", child["level"])
	}
}

func TestWBSCreateNodeUnknownProject(t *testing.T) {
	router, _, _ := setupWBSTest(t)
	token := testutil.DefaultTestToken()

	w := testutil.DoRequest(router, "POST", "/api/v1/projects/no-such/wbs",
		map[string]interface{}{"name": "Ghost"}, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d: %s", w.Code, w.Body.String())
	}
}

func TestWBSGetTree(t *testing.T) {
	router, db, _ := setupWBSTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedProject(t, db, "proj-001", "AIR-24-01", "Airport Terminal")

	root := createNode(t, router, token, "proj-001", nil, "Design Phase")
	rootID := root["id"].(string)
	createNode(t, router, token, "proj-001", &rootID, "Structural Design")
	act := createActivityUnder(t, router, token, rootID, "Soil Survey")
	if code, _ := act["code"].(string); !strings.HasPrefix(code, "AIR-24-01.01-A") {
		t.Errorf("Expected activity code under AIR-24-01.01, got %v", act["code"])
	}

	w := testutil.DoRequest(router, "GET", "/api/v1/projects/proj-001/tree", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	roots := data["roots"].([]interface{})
	if len(roots) != 1 {
		t.Fatalf("Expected 1 root, got %d", len(roots))
	}

	rootNode := roots[0].(map[string]interface{})
	children := rootNode["children"].([]interface{})
	if len(children) != 1 {
		t.Errorf("Expected 1 child node, got %d", len(children))
	}
	activities := rootNode["activities"].([]interface{})
	if len(activities) != 1 {
		t.Errorf("Expected 1 activity on root, got %d", len(activities))
	}
}

func TestWBSDependencyCycleRejected(t *testing.T) {
	router, db, _ := setupWBSTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedProject(t, db, "proj-001", "AIR-24-01", "Airport Terminal")

	root := createNode(t, router, token, "proj-001", nil, "Phase")
	rootID := root["id"].(string)
	a := createActivityUnder(t, router, token, rootID, "Excavation")
	b := createActivityUnder(t, router, token, rootID, "Foundation")
	c := createActivityUnder(t, router, token, rootID, "Framing")

	// a ← b ← c 链
	w := testutil.DoRequest(router, "POST", "/api/v1/activities/"+b["id"].(string)+"/dependencies",
		map[string]interface{}{"predecessor_id": a["id"]}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	w = testutil.DoRequest(router, "POST", "/api/v1/activities/"+c["id"].(string)+"/dependencies",
		map[string]interface{}{"predecessor_id": b["id"]}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// a 依赖 c 会成环，必须拒绝
	w = testutil.DoRequest(router, "POST", "/api/v1/activities/"+a["id"].(string)+"/dependencies",
		map[string]interface{}{"predecessor_id": c["id"]}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for cyclic dependency, got %d: %s", w.Code, w.Body.String())
	}

	// 重复边也拒绝
	w = testutil.DoRequest(router, "POST", "/api/v1/activities/"+b["id"].(string)+"/dependencies",
		map[string]interface{}{"predecessor_id": a["id"]}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for duplicate edge, got %d: %s", w.Code, w.Body.String())
	}
}

func TestWBSPredecessorsSuccessorsInverse(t *testing.T) {
	router, db, _ := setupWBSTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedProject(t, db, "proj-001", "AIR-24-01", "Airport Terminal")

	root := createNode(t, router, token, "proj-001", nil, "Phase")
	rootID := root["id"].(string)
	a := createActivityUnder(t, router, token, rootID, "Excavation")
	b := createActivityUnder(t, router, token, rootID, "Foundation")

	w := testutil.DoRequest(router, "POST", "/api/v1/activities/"+b["id"].(string)+"/dependencies",
		map[string]interface{}{"predecessor_id": a["id"], "dependency_type": "FS", "lag_days": 3}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// b 的前置是 a，带边属性和前置状态
	w = testutil.DoRequest(router, "GET", "/api/v1/activities/"+b["id"].(string)+"/predecessors", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	preds := resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(preds) != 1 {
		t.Fatalf("Expected 1 predecessor, got %d", len(preds))
	}
	edge := preds[0].(map[string]interface{})
	if edge["predecessor_id"] != a["id"] {
		t.Errorf("Expected predecessor %v, got %v", a["id"], edge["predecessor_id"])
	}
	if edge["dependency_type"] != "FS" || edge["lag_days"] != float64(3) {
		t.Errorf("Expected FS/3 edge, got %v/%v", edge["dependency_type"], edge["lag_days"])
	}
	if edge["predecessor_status"] != "not_started" {
		t.Errorf("Expected predecessor_status not_started, got %v", edge["predecessor_status"])
	}

	// 反向查询：a 的后继正好是 b
	w = testutil.DoRequest(router, "GET", "/api/v1/activities/"+a["id"].(string)+"/successors", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp = testutil.ParseResponse(w)
	succs := resp["data"].(map[string]interface{})["items"].([]interface{})
	if len(succs) != 1 {
		t.Fatalf("Expected 1 successor, got %d", len(succs))
	}
	if succs[0].(map[string]interface{})["id"] != b["id"] {
		t.Errorf("Expected successor %v, got %v", b["id"], succs[0].(map[string]interface{})["id"])
	}
}

func TestWBSDeleteCascade(t *testing.T) {
	router, db, _ := setupWBSTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedProject(t, db, "proj-001", "AIR-24-01", "Airport Terminal")

	root := createNode(t, router, token, "proj-001", nil, "Phase")
	rootID := root["id"].(string)
	child := createNode(t, router, token, "proj-001", &rootID, "Work Package")
	createActivityUnder(t, router, token, child["id"].(string), "Excavation")

	// 删除前先看波及范围
	w := testutil.DoRequest(router, "GET", "/api/v1/wbs/"+rootID+"/delete-impact", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	impact := resp["data"].(map[string]interface{})
	if impact["node_count"] != float64(2) {
		t.Errorf("Expected node_count 2, got %v", impact["node_count"])
	}
	if impact["activity_count"] != float64(1) {
		t.Errorf("Expected activity_count 1, got %v", impact["activity_count"])
	}

	w = testutil.DoRequest(router, "DELETE", "/api/v1/wbs/"+rootID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// 整棵子树删干净
	w = testutil.DoRequest(router, "GET", "/api/v1/wbs/"+child["id"].(string), nil, token)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after cascade delete, got %d", w.Code)
	}
	w = testutil.DoRequest(router, "GET", "/api/v1/projects/proj-001/tree", nil, token)
	resp = testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	roots := data["roots"].([]interface{})
	if len(roots) != 0 {
		t.Errorf("Expected empty tree, got %d roots", len(roots))
	}
}

func TestWBSUpdateNode(t *testing.T) {
	router, db, _ := setupWBSTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedProject(t, db, "proj-001", "AIR-24-01", "Airport Terminal")

	node := createNode(t, router, token, "proj-001", nil, "Old Name")
	nodeID := node["id"].(string)

	w := testutil.DoRequest(router, "PUT", "/api/v1/wbs/"+nodeID,
		map[string]string{"name": "New Name"}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["name"] != "New Name" {
		t.Errorf("Expected name 'New Name', got %v", data["name"])
	}
	// 编码不因改名变化
	if data["code"] != node["code"] {
		t.Errorf("Expected code unchanged %v, got %v", node["code"], data["code"])
	}
}

func TestWBSCreateNodeInvalidType(t *testing.T) {
	router, db, _ := setupWBSTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedProject(t, db, "proj-001", "AIR-24-01", "Airport Terminal")

	w := testutil.DoRequest(router, "POST", "/api/v1/projects/proj-001/wbs",
		map[string]interface{}{"name": "Phase", "node_type": "banana"}, token)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for unknown node type, got %d: %s", w.Code, w.Body.String())
	}
}

func TestWBSDeletePrunesTreeState(t *testing.T) {
	router, db, store := setupWBSTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedProject(t, db, "proj-001", "AIR-24-01", "Airport Terminal")

	root := createNode(t, router, token, "proj-001", nil, "Phase")
	rootID := root["id"].(string)
	child := createNode(t, router, token, "proj-001", &rootID, "Work Package")
	childID := child["id"].(string)
	act := createActivityUnder(t, router, token, childID, "Excavation")
	actID := act["id"].(string)

	ctx := context.Background()
	const userID = "test-user-001"
	_, err := store.Mutate(ctx, userID, "proj-001", func(st *treestate.State) {
		st.ToggleNode(rootID)
		st.ToggleActivities(childID)
		st.ToggleTasks(actID)
		st.Select(treestate.KindNode, childID)
	})
	if err != nil {
		t.Fatalf("Failed to seed tree state: %v", err)
	}

	w := testutil.DoRequest(router, "DELETE", "/api/v1/wbs/"+rootID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// 删掉的子树在UI状态里不留痕迹
	state, err := store.Load(ctx, userID, "proj-001")
	if err != nil {
		t.Fatalf("Failed to load tree state: %v", err)
	}
	if len(state.Nodes) != 0 {
		t.Errorf("Expected no expanded nodes, got %v", state.Nodes)
	}
	if len(state.Activities) != 0 {
		t.Errorf("Expected no expanded activity lists, got %v", state.Activities)
	}
	if len(state.Tasks) != 0 {
		t.Errorf("Expected no expanded task lists, got %v", state.Tasks)
	}
	if state.Selection != nil {
		t.Errorf("Expected selection cleared, got %+v", state.Selection)
	}
}

func TestActivityDeletePrunesTreeState(t *testing.T) {
	router, db, store := setupWBSTest(t)
	token := testutil.DefaultTestToken()
	testutil.SeedProject(t, db, "proj-001", "AIR-24-01", "Airport Terminal")

	root := createNode(t, router, token, "proj-001", nil, "Phase")
	rootID := root["id"].(string)
	act := createActivityUnder(t, router, token, rootID, "Excavation")
	actID := act["id"].(string)

	ctx := context.Background()
	const userID = "test-user-001"
	_, err := store.Mutate(ctx, userID, "proj-001", func(st *treestate.State) {
		st.ToggleNode(rootID)
		st.ToggleTasks(actID)
		st.Select(treestate.KindActivity, actID)
	})
	if err != nil {
		t.Fatalf("Failed to seed tree state: %v", err)
	}

	w := testutil.DoRequest(router, "DELETE", "/api/v1/activities/"+actID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}

	state, err := store.Load(ctx, userID, "proj-001")
	if err != nil {
		t.Fatalf("Failed to load tree state: %v", err)
	}
	// 节点还在，展开记录应保留；活动相关状态清掉
	if !state.Nodes[rootID] {
		t.Errorf("Expected node expansion kept, got %v", state.Nodes)
	}
	if len(state.Tasks) != 0 {
		t.Errorf("Expected no expanded task lists, got %v", state.Tasks)
	}
	if state.Selection != nil {
		t.Errorf("Expected selection cleared, got %+v", state.Selection)
	}
}

func TestWBSUnauthorized(t *testing.T) {
	router, _, _ := setupWBSTest(t)

	w := testutil.DoRequest(router, "GET", "/api/v1/projects/proj-001/tree", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", w.Code)
	}
}
