package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/santoshrchetty/construction-erp/internal/erp/service"
)

// AnalyticsHandler 项目分析处理器
type AnalyticsHandler struct {
	svc *service.AnalyticsService
}

// NewAnalyticsHandler 创建分析处理器
func NewAnalyticsHandler(svc *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc}
}

// EVM 挣值分析
// GET /api/v1/projects/:id/analytics/evm
func (h *AnalyticsHandler) EVM(c *gin.Context) {
	summary, err := h.svc.EVM(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, summary)
}

// CTC 完工尚需成本
// GET /api/v1/projects/:id/analytics/ctc
func (h *AnalyticsHandler) CTC(c *gin.Context) {
	summary, err := h.svc.CTC(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, summary)
}

// Margin 项目利润率
// GET /api/v1/projects/:id/analytics/margin
func (h *AnalyticsHandler) Margin(c *gin.Context) {
	summary, err := h.svc.Margin(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, summary)
}

// ActivityCosts 活动成本明细与流水对账
// GET /api/v1/activities/:id/costs
func (h *AnalyticsHandler) ActivityCosts(c *gin.Context) {
	breakdown, err := h.svc.ActivityCosts(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, breakdown)
}
