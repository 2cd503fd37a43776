package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/santoshrchetty/construction-erp/internal/erp/service"
	"github.com/santoshrchetty/construction-erp/internal/erp/sse"
)

// TimesheetHandler 工时处理器
type TimesheetHandler struct {
	svc *service.TimesheetService
}

// NewTimesheetHandler 创建工时处理器
func NewTimesheetHandler(svc *service.TimesheetService) *TimesheetHandler {
	return &TimesheetHandler{svc: svc}
}

// ListEntries 工时记录列表
// GET /api/v1/timesheets
func (h *TimesheetHandler) ListEntries(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]interface{}{
		"user_id":     c.Query("user_id"),
		"activity_id": c.Query("activity_id"),
		"project_id":  c.Query("project_id"),
		"status":      c.Query("status"),
	}

	entries, total, err := h.svc.ListEntries(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Paginated(c, entries, page, pageSize, total)
}

// GetEntry 获取工时记录
// GET /api/v1/timesheets/:id
func (h *TimesheetHandler) GetEntry(c *gin.Context) {
	entry, err := h.svc.GetEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, entry)
}

// SubmitEntry 提交工时
// POST /api/v1/timesheets
func (h *TimesheetHandler) SubmitEntry(c *gin.Context) {
	var input service.SubmitEntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	entry, err := h.svc.SubmitEntry(c.Request.Context(), &input, GetUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, entry)
}

// Approve 审批通过（工时和人工成本归集）
// POST /api/v1/timesheets/:id/approve
func (h *TimesheetHandler) Approve(c *gin.Context) {
	entry, err := h.svc.Approve(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}

	sse.PublishTimesheetDecision(entry.UserID, entry.ID, entry.Status)
	Success(c, entry)
}

// Reject 驳回
// POST /api/v1/timesheets/:id/reject
func (h *TimesheetHandler) Reject(c *gin.Context) {
	entry, err := h.svc.Reject(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}

	sse.PublishTimesheetDecision(entry.UserID, entry.ID, entry.Status)
	Success(c, entry)
}

// ActivityHours 活动已审批工时合计
// GET /api/v1/activities/:id/hours
func (h *TimesheetHandler) ActivityHours(c *gin.Context) {
	hours, err := h.svc.ActivityHours(c.Request.Context(), c.Param("id"))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"activity_id": c.Param("id"), "approved_hours": hours})
}
