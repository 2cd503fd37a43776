package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/santoshrchetty/construction-erp/internal/erp/service"
)

// ProcurementHandler 采购处理器
type ProcurementHandler struct {
	svc *service.ProcurementService
}

// NewProcurementHandler 创建采购处理器
func NewProcurementHandler(svc *service.ProcurementService) *ProcurementHandler {
	return &ProcurementHandler{svc: svc}
}

// === 供应商 ===

// ListSuppliers 供应商列表
// GET /api/v1/suppliers
func (h *ProcurementHandler) ListSuppliers(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]interface{}{
		"keyword":  c.Query("keyword"),
		"category": c.Query("category"),
		"status":   c.Query("status"),
	}

	suppliers, total, err := h.svc.ListSuppliers(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Paginated(c, suppliers, page, pageSize, total)
}

// GetSupplier 获取供应商详情
// GET /api/v1/suppliers/:id
func (h *ProcurementHandler) GetSupplier(c *gin.Context) {
	supplier, err := h.svc.GetSupplier(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, supplier)
}

// CreateSupplier 创建供应商
// POST /api/v1/suppliers
func (h *ProcurementHandler) CreateSupplier(c *gin.Context) {
	var input service.CreateSupplierInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	supplier, err := h.svc.CreateSupplier(c.Request.Context(), &input, GetUserID(c))
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Created(c, supplier)
}

// UpdateSupplier 更新供应商
// PUT /api/v1/suppliers/:id
func (h *ProcurementHandler) UpdateSupplier(c *gin.Context) {
	var input service.CreateSupplierInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	supplier, err := h.svc.UpdateSupplier(c.Request.Context(), c.Param("id"), &input)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, supplier)
}

// === 采购订单 ===

// ListPOs 采购订单列表
// GET /api/v1/purchase-orders
func (h *ProcurementHandler) ListPOs(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]interface{}{
		"project_id":  c.Query("project_id"),
		"supplier_id": c.Query("supplier_id"),
		"status":      c.Query("status"),
	}

	orders, total, err := h.svc.ListPOs(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	Paginated(c, orders, page, pageSize, total)
}

// GetPO 获取采购订单详情（含行项和供应商）
// GET /api/v1/purchase-orders/:id
func (h *ProcurementHandler) GetPO(c *gin.Context) {
	po, err := h.svc.GetPO(c.Request.Context(), c.Param("id"))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, po)
}

// CreatePO 创建采购订单
// POST /api/v1/purchase-orders
func (h *ProcurementHandler) CreatePO(c *gin.Context) {
	var input service.CreatePOInput
	if err := c.ShouldBindJSON(&input); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	po, err := h.svc.CreatePO(c.Request.Context(), &input, GetUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, po)
}

// SetPOStatus 采购订单状态流转
// PUT /api/v1/purchase-orders/:id/status
func (h *ProcurementHandler) SetPOStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	po, err := h.svc.SetPOStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, po)
}

// ReceivePO 采购收货（入库 + 成本归集）
// POST /api/v1/purchase-orders/:id/receive
func (h *ProcurementHandler) ReceivePO(c *gin.Context) {
	var req struct {
		Items []service.ReceiveItemInput `json:"items" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	po, err := h.svc.ReceivePO(c.Request.Context(), c.Param("id"), req.Items, GetUserID(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Success(c, po)
}
