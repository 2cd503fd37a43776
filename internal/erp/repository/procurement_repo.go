package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/santoshrchetty/construction-erp/internal/erp/entity"
	"gorm.io/gorm"
)

// SupplierRepository 供应商仓库
type SupplierRepository struct {
	db *gorm.DB
}

// NewSupplierRepository 创建供应商仓库
func NewSupplierRepository(db *gorm.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

// FindByID 根据ID查找供应商
func (r *SupplierRepository) FindByID(ctx context.Context, id string) (*entity.Supplier, error) {
	var supplier entity.Supplier
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&supplier).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &supplier, nil
}

// Create 创建供应商
func (r *SupplierRepository) Create(ctx context.Context, supplier *entity.Supplier) error {
	return r.db.WithContext(ctx).Create(supplier).Error
}

// Update 更新供应商
func (r *SupplierRepository) Update(ctx context.Context, supplier *entity.Supplier) error {
	return r.db.WithContext(ctx).Save(supplier).Error
}

// FindAll 获取供应商列表（分页）
func (r *SupplierRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Supplier, int64, error) {
	var suppliers []entity.Supplier
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Supplier{})

	if keyword, ok := filters["keyword"].(string); ok && keyword != "" {
		query = query.Where("name ILIKE ? OR code ILIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}
	if category, ok := filters["category"].(string); ok && category != "" {
		query = query.Where("category = ?", category)
	}
	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("code ASC").Offset(offset).Limit(pageSize).Find(&suppliers).Error
	return suppliers, total, err
}

// PORepository 采购订单仓库
type PORepository struct {
	db *gorm.DB
}

// NewPORepository 创建采购订单仓库
func NewPORepository(db *gorm.DB) *PORepository {
	return &PORepository{db: db}
}

// FindByID 根据ID查找采购订单（带行项和供应商）
func (r *PORepository) FindByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	var po entity.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Supplier").
		Where("id = ?", id).
		First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &po, nil
}

// Create 创建采购订单（连带行项）
func (r *PORepository) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	return r.db.WithContext(ctx).Create(po).Error
}

// Update 更新采购订单
func (r *PORepository) Update(ctx context.Context, po *entity.PurchaseOrder) error {
	return r.db.WithContext(ctx).Save(po).Error
}

// FindAll 获取采购订单列表（分页）
func (r *PORepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.PurchaseOrder, int64, error) {
	var pos []entity.PurchaseOrder
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.PurchaseOrder{})

	if projectID, ok := filters["project_id"].(string); ok && projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if supplierID, ok := filters["supplier_id"].(string); ok && supplierID != "" {
		query = query.Where("supplier_id = ?", supplierID)
	}
	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("Supplier").
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&pos).Error
	return pos, total, err
}

// GenerateCode 生成采购订单编码 PO-{year}-{4位}
func (r *PORepository) GenerateCode(ctx context.Context) (string, error) {
	year := time.Now().Format("2006")
	prefix := fmt.Sprintf("PO-%s-", year)

	var maxCode string
	err := r.db.WithContext(ctx).
		Model(&entity.PurchaseOrder{}).
		Select("COALESCE(MAX(code), '')").
		Where("code LIKE ?", prefix+"%").
		Scan(&maxCode).Error
	if err != nil {
		return "", err
	}

	var seq int
	if maxCode != "" {
		fmt.Sscanf(maxCode, "PO-"+year+"-%d", &seq)
	}
	return fmt.Sprintf("%s%04d", prefix, seq+1), nil
}

// FindItem 查找订单行项
func (r *PORepository) FindItem(ctx context.Context, itemID string) (*entity.POItem, error) {
	var item entity.POItem
	err := r.db.WithContext(ctx).Where("id = ?", itemID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// UpdateItem 更新订单行项
func (r *PORepository) UpdateItem(ctx context.Context, item *entity.POItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}
