package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/santoshrchetty/construction-erp/internal/erp/entity"
	"github.com/santoshrchetty/construction-erp/internal/erp/repository"
)

// InventoryService 库存服务
type InventoryService struct {
	inventoryRepo *repository.InventoryRepository
	activityRepo  *repository.ActivityRepository
}

func NewInventoryService(inventoryRepo *repository.InventoryRepository, activityRepo *repository.ActivityRepository) *InventoryService {
	return &InventoryService{
		inventoryRepo: inventoryRepo,
		activityRepo:  activityRepo,
	}
}

// CreateItemInput 创建物料入参
type CreateItemInput struct {
	Code         string  `json:"code" binding:"required"`
	Name         string  `json:"name" binding:"required"`
	Category     string  `json:"category"`
	Unit         string  `json:"unit"`
	ReorderLevel float64 `json:"reorder_level"`
	UnitCost     float64 `json:"unit_cost"`
	Location     string  `json:"location"`
}

// CreateItem 创建物料
func (s *InventoryService) CreateItem(ctx context.Context, input *CreateItemInput) (*entity.StoreItem, error) {
	unit := input.Unit
	if unit == "" {
		unit = "nos"
	}
	item := &entity.StoreItem{
		ID:           uuid.New().String()[:32],
		Code:         input.Code,
		Name:         input.Name,
		Category:     input.Category,
		Unit:         unit,
		ReorderLevel: input.ReorderLevel,
		UnitCost:     input.UnitCost,
		Location:     input.Location,
	}
	if err := s.inventoryRepo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("create store item: %w", err)
	}
	return item, nil
}

// GetItem 获取物料
func (s *InventoryService) GetItem(ctx context.Context, id string) (*entity.StoreItem, error) {
	return s.inventoryRepo.FindItemByID(ctx, id)
}

// ListItems 物料列表
func (s *InventoryService) ListItems(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.StoreItem, int64, error) {
	return s.inventoryRepo.FindAllItems(ctx, page, pageSize, filters)
}

// IssueInput 领料出库入参
type IssueInput struct {
	StoreItemID string  `json:"store_item_id" binding:"required"`
	ActivityID  string  `json:"activity_id" binding:"required"`
	Quantity    float64 `json:"quantity" binding:"required"`
	Notes       string  `json:"notes"`
}

// IssueToActivity 领料出库并把材料成本归集到活动
func (s *InventoryService) IssueToActivity(ctx context.Context, input *IssueInput, issuedBy string) (*entity.StockTransaction, error) {
	if input.Quantity <= 0 {
		return nil, fmt.Errorf("出库数量必须大于0: %w", ErrInvalid)
	}
	activity, err := s.activityRepo.FindByID(ctx, input.ActivityID)
	if err != nil {
		return nil, fmt.Errorf("activity not found: %w", err)
	}
	item, err := s.inventoryRepo.FindItemByID(ctx, input.StoreItemID)
	if err != nil {
		return nil, fmt.Errorf("store item not found: %w", err)
	}

	txn := &entity.StockTransaction{
		ID:          uuid.New().String()[:32],
		StoreItemID: item.ID,
		ProjectID:   &activity.ProjectID,
		ActivityID:  &activity.ID,
		Type:        entity.StockTxnIssue,
		Quantity:    input.Quantity,
		UnitCost:    item.UnitCost,
		Notes:       input.Notes,
		CreatedBy:   issuedBy,
	}
	if err := s.inventoryRepo.RecordTransaction(ctx, txn); err != nil {
		return nil, err
	}

	// 领用成本加到活动材料成本上
	if err := s.activityRepo.AddCost(ctx, activity.ID, "material_cost", input.Quantity*item.UnitCost); err != nil {
		return nil, fmt.Errorf("rollup material cost: %w", err)
	}
	return txn, nil
}

// AdjustInput 盘点调整入参，数量正负皆可
type AdjustInput struct {
	StoreItemID string  `json:"store_item_id" binding:"required"`
	Quantity    float64 `json:"quantity" binding:"required"`
	Notes       string  `json:"notes"`
}

// Adjust 盘点调整在手量
func (s *InventoryService) Adjust(ctx context.Context, input *AdjustInput, adjustedBy string) (*entity.StockTransaction, error) {
	item, err := s.inventoryRepo.FindItemByID(ctx, input.StoreItemID)
	if err != nil {
		return nil, fmt.Errorf("store item not found: %w", err)
	}

	txn := &entity.StockTransaction{
		ID:          uuid.New().String()[:32],
		StoreItemID: item.ID,
		Type:        entity.StockTxnAdjustment,
		Quantity:    input.Quantity,
		UnitCost:    item.UnitCost,
		Notes:       input.Notes,
		CreatedBy:   adjustedBy,
	}
	if err := s.inventoryRepo.RecordTransaction(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// ListTransactions 物料出入库流水
func (s *InventoryService) ListTransactions(ctx context.Context, storeItemID string, page, pageSize int) ([]entity.StockTransaction, int64, error) {
	return s.inventoryRepo.ListTransactions(ctx, storeItemID, page, pageSize)
}
