package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/santoshrchetty/construction-erp/internal/erp/entity"
	"github.com/santoshrchetty/construction-erp/internal/erp/repository"
	"github.com/santoshrchetty/construction-erp/internal/shared/calendar"
)

// ProcurementService 采购服务：供应商、采购订单、收货入库
type ProcurementService struct {
	supplierRepo  *repository.SupplierRepository
	poRepo        *repository.PORepository
	inventoryRepo *repository.InventoryRepository
	activityRepo  *repository.ActivityRepository
}

func NewProcurementService(supplierRepo *repository.SupplierRepository, poRepo *repository.PORepository, inventoryRepo *repository.InventoryRepository, activityRepo *repository.ActivityRepository) *ProcurementService {
	return &ProcurementService{
		supplierRepo:  supplierRepo,
		poRepo:        poRepo,
		inventoryRepo: inventoryRepo,
		activityRepo:  activityRepo,
	}
}

// === 供应商 ===

// CreateSupplierInput 创建供应商入参
type CreateSupplierInput struct {
	Code     string `json:"code" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Category string `json:"category"`
	Contact  string `json:"contact"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	Notes    string `json:"notes"`
}

// CreateSupplier 创建供应商
func (s *ProcurementService) CreateSupplier(ctx context.Context, input *CreateSupplierInput, createdBy string) (*entity.Supplier, error) {
	supplier := &entity.Supplier{
		ID:        uuid.New().String()[:32],
		Code:      input.Code,
		Name:      input.Name,
		Category:  input.Category,
		Status:    "active",
		Contact:   input.Contact,
		Phone:     input.Phone,
		Email:     input.Email,
		Address:   input.Address,
		Notes:     input.Notes,
		CreatedBy: createdBy,
	}
	if err := s.supplierRepo.Create(ctx, supplier); err != nil {
		return nil, fmt.Errorf("create supplier: %w", err)
	}
	return supplier, nil
}

// GetSupplier 获取供应商
func (s *ProcurementService) GetSupplier(ctx context.Context, id string) (*entity.Supplier, error) {
	return s.supplierRepo.FindByID(ctx, id)
}

// ListSuppliers 供应商列表
func (s *ProcurementService) ListSuppliers(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Supplier, int64, error) {
	return s.supplierRepo.FindAll(ctx, page, pageSize, filters)
}

// UpdateSupplier 更新供应商
func (s *ProcurementService) UpdateSupplier(ctx context.Context, id string, input *CreateSupplierInput) (*entity.Supplier, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != "" {
		supplier.Name = input.Name
	}
	if input.Category != "" {
		supplier.Category = input.Category
	}
	if input.Contact != "" {
		supplier.Contact = input.Contact
	}
	if input.Phone != "" {
		supplier.Phone = input.Phone
	}
	if input.Email != "" {
		supplier.Email = input.Email
	}
	if input.Address != "" {
		supplier.Address = input.Address
	}
	if input.Notes != "" {
		supplier.Notes = input.Notes
	}
	if err := s.supplierRepo.Update(ctx, supplier); err != nil {
		return nil, fmt.Errorf("update supplier: %w", err)
	}
	return supplier, nil
}

// === 采购订单 ===

// POItemInput 采购订单行项入参
type POItemInput struct {
	StoreItemID *string `json:"store_item_id"`
	Description string  `json:"description" binding:"required"`
	Quantity    float64 `json:"quantity" binding:"required"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unit_price"`
}

// CreatePOInput 创建采购订单入参
type CreatePOInput struct {
	ProjectID    string        `json:"project_id" binding:"required"`
	ActivityID   *string       `json:"activity_id"`
	SupplierID   string        `json:"supplier_id" binding:"required"`
	Currency     string        `json:"currency"`
	ExpectedDate string        `json:"expected_date"`
	Notes        string        `json:"notes"`
	Items        []POItemInput `json:"items" binding:"required,min=1"`
}

// CreatePO 创建采购订单（带行项），编码 PO-{年}-{序号}
func (s *ProcurementService) CreatePO(ctx context.Context, input *CreatePOInput, createdBy string) (*entity.PurchaseOrder, error) {
	if _, err := s.supplierRepo.FindByID(ctx, input.SupplierID); err != nil {
		return nil, fmt.Errorf("supplier not found: %w", err)
	}
	if input.ActivityID != nil {
		activity, err := s.activityRepo.FindByID(ctx, *input.ActivityID)
		if err != nil {
			return nil, fmt.Errorf("activity not found: %w", err)
		}
		if activity.ProjectID != input.ProjectID {
			return nil, fmt.Errorf("归集活动不在本项目内: %w", ErrInvalid)
		}
	}

	code, err := s.poRepo.GenerateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate po code: %w", err)
	}

	var expectedDate *time.Time
	if input.ExpectedDate != "" {
		d, err := time.Parse(calendar.DateLayout, input.ExpectedDate)
		if err != nil {
			return nil, fmt.Errorf("期望到货日期格式错误: %v: %w", err, ErrInvalid)
		}
		expectedDate = &d
	}

	currency := input.Currency
	if currency == "" {
		currency = "INR"
	}

	po := &entity.PurchaseOrder{
		ID:           uuid.New().String()[:32],
		Code:         code,
		ProjectID:    input.ProjectID,
		ActivityID:   input.ActivityID,
		SupplierID:   input.SupplierID,
		Status:       entity.POStatusDraft,
		Currency:     currency,
		ExpectedDate: expectedDate,
		Notes:        input.Notes,
		CreatedBy:    createdBy,
	}

	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("行项数量必须大于0: %s: %w", item.Description, ErrInvalid)
		}
		lineTotal := item.Quantity * item.UnitPrice
		unit := item.Unit
		if unit == "" {
			unit = "nos"
		}
		po.Items = append(po.Items, entity.POItem{
			ID:          uuid.New().String()[:32],
			POID:        po.ID,
			StoreItemID: item.StoreItemID,
			Description: item.Description,
			Quantity:    item.Quantity,
			Unit:        unit,
			UnitPrice:   item.UnitPrice,
			LineTotal:   &lineTotal,
		})
	}
	po.TotalAmount = lo.SumBy(po.Items, func(it entity.POItem) float64 { return *it.LineTotal })

	if err := s.poRepo.Create(ctx, po); err != nil {
		return nil, fmt.Errorf("create po: %w", err)
	}
	return po, nil
}

// GetPO 获取采购订单（含行项和供应商）
func (s *ProcurementService) GetPO(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return s.poRepo.FindByID(ctx, id)
}

// ListPOs 采购订单列表
func (s *ProcurementService) ListPOs(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.PurchaseOrder, int64, error) {
	return s.poRepo.FindAll(ctx, page, pageSize, filters)
}

// poTransitions 状态机：当前状态 → 允许的下一状态
var poTransitions = map[string][]string{
	entity.POStatusDraft:    {entity.POStatusApproved, entity.POStatusCancelled},
	entity.POStatusApproved: {entity.POStatusSent, entity.POStatusCancelled},
	entity.POStatusSent:     {entity.POStatusPartial, entity.POStatusReceived, entity.POStatusCancelled},
	entity.POStatusPartial:  {entity.POStatusPartial, entity.POStatusReceived, entity.POStatusCancelled},
}

// SetPOStatus 采购订单状态流转
func (s *ProcurementService) SetPOStatus(ctx context.Context, id, status string) (*entity.PurchaseOrder, error) {
	po, err := s.poRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !lo.Contains(poTransitions[po.Status], status) {
		return nil, fmt.Errorf("状态不能从 %s 流转到 %s: %w", po.Status, status, ErrInvalid)
	}

	po.Status = status
	if err := s.poRepo.Update(ctx, po); err != nil {
		return nil, fmt.Errorf("update po: %w", err)
	}
	return po, nil
}

// ReceiveItemInput 收货入参
type ReceiveItemInput struct {
	ItemID   string  `json:"item_id" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required"`
}

// ReceivePO 采购收货：更新行项收货量、记入库流水、材料成本归集到活动
// 全部行项收齐转 received，否则转 partial
func (s *ProcurementService) ReceivePO(ctx context.Context, poID string, inputs []ReceiveItemInput, receivedBy string) (*entity.PurchaseOrder, error) {
	po, err := s.poRepo.FindByID(ctx, poID)
	if err != nil {
		return nil, err
	}
	if po.Status != entity.POStatusSent && po.Status != entity.POStatusPartial {
		return nil, fmt.Errorf("只有已发出或部分到货的订单才能收货，当前状态 %s: %w", po.Status, ErrInvalid)
	}

	var receivedCost float64
	for _, in := range inputs {
		if in.Quantity <= 0 {
			return nil, fmt.Errorf("收货数量必须大于0: %w", ErrInvalid)
		}
		item, err := s.poRepo.FindItem(ctx, in.ItemID)
		if err != nil {
			return nil, fmt.Errorf("po item not found: %w", err)
		}
		if item.POID != poID {
			return nil, fmt.Errorf("行项不属于该订单: %w", ErrInvalid)
		}
		if item.ReceivedQty+in.Quantity > item.Quantity {
			return nil, fmt.Errorf("收货超量: %s 已收 %.3f，订购 %.3f: %w", item.Description, item.ReceivedQty, item.Quantity, ErrInvalid)
		}

		item.ReceivedQty += in.Quantity
		if err := s.poRepo.UpdateItem(ctx, item); err != nil {
			return nil, fmt.Errorf("update po item: %w", err)
		}

		// 挂了库存物料的行项记一笔入库流水
		if item.StoreItemID != nil {
			txn := &entity.StockTransaction{
				ID:          uuid.New().String()[:32],
				StoreItemID: *item.StoreItemID,
				ProjectID:   &po.ProjectID,
				ActivityID:  po.ActivityID,
				POID:        &po.ID,
				Type:        entity.StockTxnReceipt,
				Quantity:    in.Quantity,
				UnitCost:    item.UnitPrice,
				CreatedBy:   receivedBy,
			}
			if err := s.inventoryRepo.RecordTransaction(ctx, txn); err != nil {
				return nil, fmt.Errorf("record stock receipt: %w", err)
			}
		}
		receivedCost += in.Quantity * item.UnitPrice
	}

	// 材料成本归集到活动
	if po.ActivityID != nil && receivedCost > 0 {
		if err := s.activityRepo.AddCost(ctx, *po.ActivityID, "material_cost", receivedCost); err != nil {
			return nil, fmt.Errorf("rollup material cost: %w", err)
		}
	}

	// 重新拉行项判断整单状态
	po, err = s.poRepo.FindByID(ctx, poID)
	if err != nil {
		return nil, err
	}
	fullyReceived := lo.EveryBy(po.Items, func(it entity.POItem) bool {
		return it.ReceivedQty >= it.Quantity
	})
	if fullyReceived {
		po.Status = entity.POStatusReceived
		now := time.Now()
		po.ReceivedDate = &now
	} else {
		po.Status = entity.POStatusPartial
	}
	if err := s.poRepo.Update(ctx, po); err != nil {
		return nil, fmt.Errorf("update po status: %w", err)
	}
	return po, nil
}
