package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/santoshrchetty/construction-erp/internal/erp/service"
	"github.com/santoshrchetty/construction-erp/internal/erp/sse"
)

// ProjectHandler 项目处理器
type ProjectHandler struct {
	svc *service.ProjectService
}

// NewProjectHandler 创建项目处理器
func NewProjectHandler(svc *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

// ListProjects 获取项目列表
// GET /api/v1/projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	page, pageSize := GetPagination(c)

	filters := map[string]interface{}{
		"keyword":  c.Query("keyword"),
		"status":   c.Query("status"),
		"category": c.Query("category"),
	}

	projects, total, err := h.svc.ListProjects(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Paginated(c, projects, page, pageSize, total)
}

// GetProject 获取项目详情
// GET /api/v1/projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.svc.GetProject(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, project)
}

// CreateProject 创建项目（自动分配编码）
// POST /api/v1/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var input service.CreateProjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	project, err := h.svc.CreateProject(c.Request.Context(), &input, GetUserID(c))
	if err != nil {
		InternalError(c, err.Error())
		return
	}

	sse.PublishProjectUpdate(project.ID, "created")
	Created(c, project)
}

// UpdateProject 更新项目
// PUT /api/v1/projects/:id
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	var input service.UpdateProjectInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	project, err := h.svc.UpdateProject(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		Fail(c, err)
		return
	}

	sse.PublishProjectUpdate(project.ID, "updated")
	Success(c, project)
}

// DeleteProject 删除项目（软删除）
// DELETE /api/v1/projects/:id
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.DeleteProject(c.Request.Context(), id); err != nil {
		Fail(c, err)
		return
	}

	sse.PublishProjectUpdate(id, "deleted")
	Success(c, gin.H{"id": id})
}

// CountWorkingDays 按项目日历统计日期区间的工作日
// GET /api/v1/projects/:id/calendar/count?start=2024-01-01&end=2024-01-31
func (h *ProjectHandler) CountWorkingDays(c *gin.Context) {
	start := c.Query("start")
	end := c.Query("end")
	if start == "" || end == "" {
		BadRequest(c, "start 和 end 不能为空")
		return
	}

	count, err := h.svc.CountWorkingDays(c.Request.Context(), c.Param("id"), start, end)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, count)
}

// ProjectEndDate 按项目日历推算结束日期
// GET /api/v1/projects/:id/calendar/end-date?start=2024-01-01&working_days=10
func (h *ProjectHandler) ProjectEndDate(c *gin.Context) {
	start := c.Query("start")
	if start == "" {
		BadRequest(c, "start 不能为空")
		return
	}
	workingDays, err := strconv.Atoi(c.DefaultQuery("working_days", "0"))
	if err != nil || workingDays <= 0 {
		BadRequest(c, "working_days 必须是正整数")
		return
	}

	endDate, err := h.svc.ProjectEndDate(c.Request.Context(), c.Param("id"), start, workingDays)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, gin.H{
		"start":        start,
		"working_days": workingDays,
		"end_date":     endDate.Format("2006-01-02"),
	})
}

// RecalculateProgress 手动触发项目进度重算
// POST /api/v1/projects/:id/recalculate
func (h *ProjectHandler) RecalculateProgress(c *gin.Context) {
	id := c.Param("id")
	progress, err := h.svc.RecalculateProgress(c.Request.Context(), id)
	if err != nil {
		Fail(c, err)
		return
	}

	sse.PublishProjectUpdate(id, "progress")
	Success(c, gin.H{"id": id, "progress": progress})
}
