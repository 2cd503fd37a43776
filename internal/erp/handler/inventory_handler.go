package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/santoshrchetty/construction-erp/internal/erp/service"
)

// InventoryHandler 库存处理器
type InventoryHandler struct {
	svc *service.InventoryService
}

// NewInventoryHandler 创建库存处理器
func NewInventoryHandler(svc *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// ListItems 物料列表
// GET /api/v1/store-items
func (h *InventoryHandler) ListItems(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]interface{}{
		"keyword":  c.Query("keyword"),
		"category": c.Query("category"),
	}
	if c.Query("below_reorder") == "true" {
		filters["below_reorder"] = true
	}

	items, total, err := h.svc.ListItems(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Paginated(c, items, page, pageSize, total)
}

// GetItem 获取物料详情
// GET /api/v1/store-items/:id
func (h *InventoryHandler) GetItem(c *gin.Context) {
	item, err := h.svc.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, item)
}

// CreateItem 创建物料
// POST /api/v1/store-items
func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var input service.CreateItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	item, err := h.svc.CreateItem(c.Request.Context(), &input)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, item)
}

// Issue 领料出库到活动
// POST /api/v1/store-items/issue
func (h *InventoryHandler) Issue(c *gin.Context) {
	var input service.IssueInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	txn, err := h.svc.IssueToActivity(c.Request.Context(), &input, GetUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, txn)
}

// Adjust 盘点调整
// POST /api/v1/store-items/adjust
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var input service.AdjustInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	txn, err := h.svc.Adjust(c.Request.Context(), &input, GetUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, txn)
}

// ListTransactions 物料出入库流水
// GET /api/v1/store-items/:id/transactions
func (h *InventoryHandler) ListTransactions(c *gin.Context) {
	page, pageSize := GetPagination(c)
	txns, total, err := h.svc.ListTransactions(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Paginated(c, txns, page, pageSize, total)
}
