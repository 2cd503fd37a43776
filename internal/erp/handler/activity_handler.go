package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/santoshrchetty/construction-erp/internal/erp/service"
	"github.com/santoshrchetty/construction-erp/internal/erp/sse"
	"github.com/santoshrchetty/construction-erp/internal/erp/treestate"
)

// ActivityHandler 活动处理器
type ActivityHandler struct {
	svc   *service.ActivityService
	state *treestate.Store
}

// NewActivityHandler 创建活动处理器
func NewActivityHandler(svc *service.ActivityService, state *treestate.Store) *ActivityHandler {
	return &ActivityHandler{svc: svc, state: state}
}

// ListByNode WBS节点下的活动列表
// GET /api/v1/wbs/:id/activities
func (h *ActivityHandler) ListByNode(c *gin.Context) {
	activities, err := h.svc.ListByNode(c.Request.Context(), c.Param("id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": activities})
}

// CreateActivity 在WBS节点下创建活动
// POST /api/v1/wbs/:id/activities
func (h *ActivityHandler) CreateActivity(c *gin.Context) {
	var input service.CreateActivityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	activity, err := h.svc.CreateActivity(c.Request.Context(), c.Param("id"), &input, GetUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}

	sse.PublishTreeUpdate(activity.ProjectID, "activity", activity.ID, "created")
	Created(c, activity)
}

// GetActivity 获取活动详情（含依赖边和前置状态）
// GET /api/v1/activities/:id
func (h *ActivityHandler) GetActivity(c *gin.Context) {
	activity, err := h.svc.GetActivity(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, activity)
}

// UpdateActivity 更新活动
// PUT /api/v1/activities/:id
func (h *ActivityHandler) UpdateActivity(c *gin.Context) {
	var input service.UpdateActivityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	activity, err := h.svc.UpdateActivity(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		Fail(c, err)
		return
	}

	sse.PublishTreeUpdate(activity.ProjectID, "activity", activity.ID, "updated")
	Success(c, activity)
}

// DeleteActivity 删除活动及其依赖边、任务
// DELETE /api/v1/activities/:id
func (h *ActivityHandler) DeleteActivity(c *gin.Context) {
	id := c.Param("id")
	activity, err := h.svc.GetActivity(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}

	if err := h.svc.DeleteActivity(c.Request.Context(), id); err != nil {
		Fail(c, err)
		return
	}

	// 当前用户树状态里的勾选、展开痕迹一并清掉，失败不影响删除结果
	_, _ = h.state.Mutate(c.Request.Context(), GetUserID(c), activity.ProjectID, func(st *treestate.State) {
		st.Prune(nil, []string{id})
	})

	sse.PublishTreeUpdate(activity.ProjectID, "activity", id, "deleted")
	Success(c, gin.H{"id": id})
}

// AddDependency 添加前置依赖边（带类型和延迟天数）
// POST /api/v1/activities/:id/dependencies
func (h *ActivityHandler) AddDependency(c *gin.Context) {
	var input service.AddDependencyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	dep, err := h.svc.AddDependency(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, dep)
}

// RemoveDependency 删除依赖边
// DELETE /api/v1/activities/:id/dependencies/:depId
func (h *ActivityHandler) RemoveDependency(c *gin.Context) {
	if err := h.svc.RemoveDependency(c.Request.Context(), c.Param("id"), c.Param("depId")); err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"id": c.Param("depId")})
}

// ListPredecessors 前置边列表（含前置活动状态）
// GET /api/v1/activities/:id/predecessors
func (h *ActivityHandler) ListPredecessors(c *gin.Context) {
	deps, err := h.svc.ListPredecessors(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"items": deps})
}

// ListSuccessors 后继活动列表
// GET /api/v1/activities/:id/successors
func (h *ActivityHandler) ListSuccessors(c *gin.Context) {
	activities, err := h.svc.ListSuccessors(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{"items": activities})
}

// Schedule 按项目日历推算活动计划结束日期
// GET /api/v1/activities/:id/schedule
func (h *ActivityHandler) Schedule(c *gin.Context) {
	sched, err := h.svc.Schedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, sched)
}
