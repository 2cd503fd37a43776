package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/santoshrchetty/construction-erp/internal/erp/service"
	"github.com/santoshrchetty/construction-erp/internal/erp/sse"
	"github.com/santoshrchetty/construction-erp/internal/erp/treestate"
)

// WBSHandler 工作分解结构处理器
type WBSHandler struct {
	svc   *service.WBSService
	state *treestate.Store
}

// NewWBSHandler 创建WBS处理器
func NewWBSHandler(svc *service.WBSService, state *treestate.Store) *WBSHandler {
	return &WBSHandler{svc: svc, state: state}
}

// GetTree 获取项目树（节点+活动+任务的嵌套结构）
// GET /api/v1/projects/:id/tree
func (h *WBSHandler) GetTree(c *gin.Context) {
	tree, err := h.svc.BuildProjectTree(c.Request.Context(), c.Param("id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"roots": tree})
}

// CreateNode 在项目下创建WBS节点
// POST /api/v1/projects/:id/wbs
func (h *WBSHandler) CreateNode(c *gin.Context) {
	var input service.CreateNodeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	node, err := h.svc.CreateNode(c.Request.Context(), c.Param("id"), &input, GetUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}

	sse.PublishTreeUpdate(node.ProjectID, "node", node.ID, "created")
	Created(c, node)
}

// GetNode 获取WBS节点详情
// GET /api/v1/wbs/:id
func (h *WBSHandler) GetNode(c *gin.Context) {
	node, err := h.svc.GetNode(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, node)
}

// UpdateNode 更新WBS节点
// PUT /api/v1/wbs/:id
func (h *WBSHandler) UpdateNode(c *gin.Context) {
	var input service.UpdateNodeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	node, err := h.svc.UpdateNode(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		Fail(c, err)
		return
	}

	sse.PublishTreeUpdate(node.ProjectID, "node", node.ID, "updated")
	Success(c, node)
}

// PreviewDelete 删除前的波及范围评估
// GET /api/v1/wbs/:id/delete-impact
func (h *WBSHandler) PreviewDelete(c *gin.Context) {
	impact, err := h.svc.PreviewDelete(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, impact)
}

// DeleteNode 级联删除节点子树
// DELETE /api/v1/wbs/:id
func (h *WBSHandler) DeleteNode(c *gin.Context) {
	id := c.Param("id")
	node, err := h.svc.GetNode(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}

	impact, err := h.svc.DeleteNode(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}

	// 被删实体从当前用户的树状态里剔除，失败不影响删除结果
	_, _ = h.state.Mutate(c.Request.Context(), GetUserID(c), node.ProjectID, func(st *treestate.State) {
		st.Prune(impact.NodeIDs, impact.ActivityIDs)
	})

	sse.PublishTreeUpdate(node.ProjectID, "node", id, "deleted")
	Success(c, impact)
}

// RecalculateCost 重算项目的节点成本汇总
// POST /api/v1/projects/:id/wbs/recalculate-cost
func (h *WBSHandler) RecalculateCost(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.RecalculateNodeCost(c.Request.Context(), id); err != nil {
		Fail(c, err)
		return
	}

	sse.PublishTreeUpdate(id, "node", "", "cost")
	Success(c, gin.H{"project_id": id})
}
