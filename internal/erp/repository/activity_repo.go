package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/santoshrchetty/construction-erp/internal/erp/entity"
	"gorm.io/gorm"
)

// ActivityRepository 活动仓库
type ActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository 创建活动仓库
func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// FindByID 根据ID查找活动
func (r *ActivityRepository) FindByID(ctx context.Context, id string) (*entity.Activity, error) {
	var activity entity.Activity
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&activity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &activity, nil
}

// Create 创建活动
func (r *ActivityRepository) Create(ctx context.Context, activity *entity.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

// Update 更新活动
func (r *ActivityRepository) Update(ctx context.Context, activity *entity.Activity) error {
	return r.db.WithContext(ctx).Save(activity).Error
}

// AddCost 成本桶原子累加，领料、收货、工时审批回写都走这里
// 用表达式更新而不是读改写，多端并发回写不丢数
func (r *ActivityRepository) AddCost(ctx context.Context, id, bucket string, amount float64) error {
	switch bucket {
	case "labor_cost", "material_cost", "equipment_cost", "subcontract_cost", "expense_cost":
	default:
		return fmt.Errorf("未知的成本桶: %s", bucket)
	}
	return r.db.WithContext(ctx).
		Model(&entity.Activity{}).
		Where("id = ?", id).
		Update(bucket, gorm.Expr(bucket+" + ?", amount)).Error
}

// Delete 删除活动，连同两侧依赖边和下属任务（一个事务内）
func (r *ActivityRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("activity_id = ? OR predecessor_id = ?", id, id).
			Delete(&entity.ActivityDependency{}).Error; err != nil {
			return err
		}
		if err := tx.Where("activity_id = ?", id).Delete(&entity.Task{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entity.Activity{}).Error
	})
}

// ListByProject 获取项目全部活动
func (r *ActivityRepository) ListByProject(ctx context.Context, projectID string) ([]entity.Activity, error) {
	var activities []entity.Activity
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("code ASC").
		Find(&activities).Error
	return activities, err
}

// ListByNode 获取WBS节点下的活动
func (r *ActivityRepository) ListByNode(ctx context.Context, wbsNodeID string) ([]entity.Activity, error) {
	var activities []entity.Activity
	err := r.db.WithContext(ctx).
		Where("wbs_node_id = ?", wbsNodeID).
		Order("code ASC").
		Find(&activities).Error
	return activities, err
}

// SiblingCodes 同一WBS节点下已有的活动编码（编码分配用）
func (r *ActivityRepository) SiblingCodes(ctx context.Context, wbsNodeID string) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).
		Model(&entity.Activity{}).
		Where("wbs_node_id = ?", wbsNodeID).
		Pluck("code", &codes).Error
	return codes, err
}

// === 依赖边 ===

// AddDependency 添加依赖边
func (r *ActivityRepository) AddDependency(ctx context.Context, dep *entity.ActivityDependency) error {
	return r.db.WithContext(ctx).Create(dep).Error
}

// RemoveDependency 删除依赖边
func (r *ActivityRepository) RemoveDependency(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entity.ActivityDependency{}, "id = ?", id).Error
}

// FindDependency 查找依赖边
func (r *ActivityRepository) FindDependency(ctx context.Context, id string) (*entity.ActivityDependency, error) {
	var dep entity.ActivityDependency
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&dep).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &dep, nil
}

// ListPredecessors 活动的前置依赖边
func (r *ActivityRepository) ListPredecessors(ctx context.Context, activityID string) ([]entity.ActivityDependency, error) {
	var deps []entity.ActivityDependency
	err := r.db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Find(&deps).Error
	return deps, err
}

// ListSuccessors 后继活动（依赖这条活动的活动）
func (r *ActivityRepository) ListSuccessors(ctx context.Context, activityID string) ([]entity.Activity, error) {
	var activities []entity.Activity
	err := r.db.WithContext(ctx).
		Where("id IN (SELECT activity_id FROM activity_dependencies WHERE predecessor_id = ?)", activityID).
		Find(&activities).Error
	return activities, err
}

// ListDependenciesByProject 项目全部依赖边（环检测、甘特展示用）
func (r *ActivityRepository) ListDependenciesByProject(ctx context.Context, projectID string) ([]entity.ActivityDependency, error) {
	var deps []entity.ActivityDependency
	err := r.db.WithContext(ctx).
		Where("activity_id IN (SELECT id FROM activities WHERE project_id = ?)", projectID).
		Find(&deps).Error
	return deps, err
}

// FindStatusByIDs 批量查询活动状态
func (r *ActivityRepository) FindStatusByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	if len(ids) == 0 {
		return make(map[string]string), nil
	}
	var results []struct {
		ID     string `gorm:"column:id"`
		Status string `gorm:"column:status"`
	}
	err := r.db.WithContext(ctx).
		Model(&entity.Activity{}).
		Select("id, status").
		Where("id IN (?)", ids).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	statusMap := make(map[string]string, len(results))
	for _, row := range results {
		statusMap[row.ID] = row.Status
	}
	return statusMap, nil
}

// IDsByNodes 一批WBS节点下的全部活动ID（删除影响评估用，一次查询）
func (r *ActivityRepository) IDsByNodes(ctx context.Context, nodeIDs []string) ([]string, error) {
	ids := []string{}
	if len(nodeIDs) == 0 {
		return ids, nil
	}
	err := r.db.WithContext(ctx).
		Model(&entity.Activity{}).
		Where("wbs_node_id IN ?", nodeIDs).
		Pluck("id", &ids).Error
	return ids, err
}
