package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/santoshrchetty/construction-erp/internal/erp/treestate"
)

// TreeStateHandler 项目树UI状态处理器
// 展开/选中状态按 用户×项目 存Redis，与树数据分离
type TreeStateHandler struct {
	store *treestate.Store
}

// NewTreeStateHandler 创建树状态处理器
func NewTreeStateHandler(store *treestate.Store) *TreeStateHandler {
	return &TreeStateHandler{store: store}
}

// GetState 读取当前用户在该项目的树状态
// GET /api/v1/projects/:id/tree-state
func (h *TreeStateHandler) GetState(c *gin.Context) {
	state, err := h.store.Load(c.Request.Context(), GetUserID(c), c.Param("id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, state)
}

// ToggleNode 翻转节点子级展开
// POST /api/v1/projects/:id/tree-state/nodes/:nodeId/toggle
func (h *TreeStateHandler) ToggleNode(c *gin.Context) {
	state, err := h.store.Mutate(c.Request.Context(), GetUserID(c), c.Param("id"), func(s *treestate.State) {
		s.ToggleNode(c.Param("nodeId"))
	})
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, state)
}

// ToggleActivities 翻转节点的活动列表展开
// POST /api/v1/projects/:id/tree-state/nodes/:nodeId/toggle-activities
func (h *TreeStateHandler) ToggleActivities(c *gin.Context) {
	state, err := h.store.Mutate(c.Request.Context(), GetUserID(c), c.Param("id"), func(s *treestate.State) {
		s.ToggleActivities(c.Param("nodeId"))
	})
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, state)
}

// ToggleTasks 翻转活动的任务列表展开
// POST /api/v1/projects/:id/tree-state/activities/:activityId/toggle-tasks
func (h *TreeStateHandler) ToggleTasks(c *gin.Context) {
	state, err := h.store.Mutate(c.Request.Context(), GetUserID(c), c.Param("id"), func(s *treestate.State) {
		s.ToggleTasks(c.Param("activityId"))
	})
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, state)
}

// Select 选中树上的对象，换对象时清编辑标记
// PUT /api/v1/projects/:id/tree-state/selection
func (h *TreeStateHandler) Select(c *gin.Context) {
	var req struct {
		Kind    string `json:"kind" binding:"required,oneof=node activity task"`
		ID      string `json:"id" binding:"required"`
		Editing *bool  `json:"editing"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	state, err := h.store.Mutate(c.Request.Context(), GetUserID(c), c.Param("id"), func(s *treestate.State) {
		s.Select(req.Kind, req.ID)
		if req.Editing != nil {
			s.SetEditing(*req.Editing)
		}
	})
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, state)
}

// ClearSelection 取消选中
// DELETE /api/v1/projects/:id/tree-state/selection
func (h *TreeStateHandler) ClearSelection(c *gin.Context) {
	state, err := h.store.Mutate(c.Request.Context(), GetUserID(c), c.Param("id"), func(s *treestate.State) {
		s.ClearSelection()
	})
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, state)
}

// Reset 重置为全折叠
// DELETE /api/v1/projects/:id/tree-state
func (h *TreeStateHandler) Reset(c *gin.Context) {
	if err := h.store.Reset(c.Request.Context(), GetUserID(c), c.Param("id")); err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, treestate.NewState())
}
