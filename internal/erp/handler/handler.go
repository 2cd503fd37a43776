package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/santoshrchetty/construction-erp/internal/erp/repository"
	"github.com/santoshrchetty/construction-erp/internal/erp/service"
	"github.com/santoshrchetty/construction-erp/internal/erp/treestate"
)

// Handlers 处理器集合
type Handlers struct {
	Project     *ProjectHandler
	WBS         *WBSHandler
	Activity    *ActivityHandler
	Task        *TaskHandler
	Procurement *ProcurementHandler
	Inventory   *InventoryHandler
	Timesheet   *TimesheetHandler
	Analytics   *AnalyticsHandler
	TreeState   *TreeStateHandler
	SSE         *SSEHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svc *service.Services, stateStore *treestate.Store) *Handlers {
	return &Handlers{
		Project:     NewProjectHandler(svc.Project),
		WBS:         NewWBSHandler(svc.WBS, stateStore),
		Activity:    NewActivityHandler(svc.Activity, stateStore),
		Task:        NewTaskHandler(svc.Task),
		Procurement: NewProcurementHandler(svc.Procurement),
		Inventory:   NewInventoryHandler(svc.Inventory),
		Timesheet:   NewTimesheetHandler(svc.Timesheet),
		Analytics:   NewAnalyticsHandler(svc.Analytics),
		TreeState:   NewTreeStateHandler(stateStore),
		SSE:         NewSSEHandler(),
	}
}

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 创建成功响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 参数错误响应
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// Unauthorized 未授权响应
func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

// Forbidden 禁止访问响应
func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

// NotFound 资源不存在响应
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// Conflict 冲突响应
func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

// InternalError 服务器错误响应
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// Fail 按错误类型选响应：找不到→404，校验/业务规则→400，编码撞车→409，其余→500
func Fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, "资源不存在")
	case errors.Is(err, service.ErrCodeConflict):
		Conflict(c, err.Error())
	case errors.Is(err, service.ErrInvalid), errors.Is(err, repository.ErrInsufficientStock):
		BadRequest(c, err.Error())
	default:
		InternalError(c, err.Error())
	}
}

// GetUserID 从上下文获取用户ID
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetPagination 从请求获取分页参数
func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}

// Paginated 列表响应：items + 分页信息
func Paginated(c *gin.Context, items interface{}, page, pageSize int, total int64) {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	Success(c, gin.H{
		"items": items,
		"pagination": gin.H{
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": totalPages,
		},
	})
}
