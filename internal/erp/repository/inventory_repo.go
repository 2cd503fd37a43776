package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/santoshrchetty/construction-erp/internal/erp/entity"
	"gorm.io/gorm"
)

// InventoryRepository 库存仓库
type InventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository 创建库存仓库
func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// FindItemByID 根据ID查找物料
func (r *InventoryRepository) FindItemByID(ctx context.Context, id string) (*entity.StoreItem, error) {
	var item entity.StoreItem
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// CreateItem 创建物料
func (r *InventoryRepository) CreateItem(ctx context.Context, item *entity.StoreItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// UpdateItem 更新物料
func (r *InventoryRepository) UpdateItem(ctx context.Context, item *entity.StoreItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// FindAllItems 获取物料列表（分页）
func (r *InventoryRepository) FindAllItems(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.StoreItem, int64, error) {
	var items []entity.StoreItem
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.StoreItem{})

	if keyword, ok := filters["keyword"].(string); ok && keyword != "" {
		query = query.Where("name ILIKE ? OR code ILIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}
	if category, ok := filters["category"].(string); ok && category != "" {
		query = query.Where("category = ?", category)
	}
	if belowReorder, ok := filters["below_reorder"].(bool); ok && belowReorder {
		query = query.Where("quantity_on_hand < reorder_level")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("code ASC").Offset(offset).Limit(pageSize).Find(&items).Error
	return items, total, err
}

// RecordTransaction 记一笔出入库流水并原子更新在手量
// 出库量不足直接报错，整个操作在一个事务里
func (r *InventoryRepository) RecordTransaction(ctx context.Context, txn *entity.StockTransaction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item entity.StoreItem
		if err := tx.Where("id = ?", txn.StoreItemID).First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		delta := txn.Quantity
		if txn.Type == entity.StockTxnIssue {
			delta = -txn.Quantity
			if item.QuantityHand < txn.Quantity {
				return fmt.Errorf("库存不足: %s 在手 %.3f，需出库 %.3f: %w", item.Code, item.QuantityHand, txn.Quantity, ErrInsufficientStock)
			}
		}

		if err := tx.Model(&entity.StoreItem{}).
			Where("id = ?", item.ID).
			Update("quantity_on_hand", gorm.Expr("quantity_on_hand + ?", delta)).Error; err != nil {
			return err
		}

		return tx.Create(txn).Error
	})
}

// ListTransactions 查询出入库流水
func (r *InventoryRepository) ListTransactions(ctx context.Context, storeItemID string, page, pageSize int) ([]entity.StockTransaction, int64, error) {
	var txns []entity.StockTransaction
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.StockTransaction{}).
		Where("store_item_id = ?", storeItemID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&txns).Error
	return txns, total, err
}

// SumIssuedCostByActivity 活动的领料成本合计（物料成本回写用）
func (r *InventoryRepository) SumIssuedCostByActivity(ctx context.Context, activityID string) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&entity.StockTransaction{}).
		Select("COALESCE(SUM(quantity * unit_cost), 0)").
		Where("activity_id = ? AND type = ?", activityID, entity.StockTxnIssue).
		Scan(&total).Error
	return total, err
}
