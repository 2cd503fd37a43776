package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/santoshrchetty/construction-erp/internal/erp/service"
	"github.com/santoshrchetty/construction-erp/internal/erp/sse"
)

// TaskHandler 任务处理器
type TaskHandler struct {
	svc *service.TaskService
}

// NewTaskHandler 创建任务处理器
func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// ListByActivity 活动下的任务列表
// GET /api/v1/activities/:id/tasks
func (h *TaskHandler) ListByActivity(c *gin.Context) {
	tasks, err := h.svc.ListByActivity(c.Request.Context(), c.Param("id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": tasks})
}

// CreateTask 在活动下创建任务
// POST /api/v1/activities/:id/tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var input service.CreateTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	task, err := h.svc.CreateTask(c.Request.Context(), c.Param("id"), &input, GetUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}

	sse.PublishTaskUpdate(task.ProjectID, task.ID, "created")
	Created(c, task)
}

// GetTask 获取任务详情
// GET /api/v1/tasks/:id
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, err := h.svc.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, task)
}

// UpdateTask 更新任务
// PUT /api/v1/tasks/:id
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var input service.UpdateTaskInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	task, err := h.svc.UpdateTask(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		Fail(c, err)
		return
	}

	sse.PublishTaskUpdate(task.ProjectID, task.ID, "updated")
	Success(c, task)
}

// UpdateProgress 更新任务进度（状态随进度软联动）
// PUT /api/v1/tasks/:id/progress
func (h *TaskHandler) UpdateProgress(c *gin.Context) {
	var req struct {
		Progress int `json:"progress" binding:"min=0,max=100"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	task, err := h.svc.UpdateProgress(c.Request.Context(), c.Param("id"), req.Progress)
	if err != nil {
		Fail(c, err)
		return
	}

	sse.PublishTaskUpdate(task.ProjectID, task.ID, "progress")
	Success(c, task)
}

// DeleteTask 删除任务
// DELETE /api/v1/tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id := c.Param("id")
	task, err := h.svc.GetTask(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}

	if err := h.svc.DeleteTask(c.Request.Context(), id); err != nil {
		Fail(c, err)
		return
	}

	sse.PublishTaskUpdate(task.ProjectID, id, "deleted")
	Success(c, gin.H{"id": id})
}

// ListOverdue 项目的逾期任务
// GET /api/v1/projects/:id/tasks/overdue
func (h *TaskHandler) ListOverdue(c *gin.Context) {
	tasks, err := h.svc.ListOverdue(c.Request.Context(), c.Param("id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"items": tasks})
}
