package repository

import (
	"context"
	"errors"

	"github.com/santoshrchetty/construction-erp/internal/erp/entity"
	"gorm.io/gorm"
)

// WBSRepository WBS节点仓库
type WBSRepository struct {
	db *gorm.DB
}

// NewWBSRepository 创建WBS节点仓库
func NewWBSRepository(db *gorm.DB) *WBSRepository {
	return &WBSRepository{db: db}
}

// FindByID 根据ID查找节点
func (r *WBSRepository) FindByID(ctx context.Context, id string) (*entity.WBSNode, error) {
	var node entity.WBSNode
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&node).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &node, nil
}

// Create 创建节点
func (r *WBSRepository) Create(ctx context.Context, node *entity.WBSNode) error {
	return r.db.WithContext(ctx).Create(node).Error
}

// Update 更新节点
func (r *WBSRepository) Update(ctx context.Context, node *entity.WBSNode) error {
	return r.db.WithContext(ctx).Save(node).Error
}

// ListByProject 获取项目全部节点，按层级和兄弟顺序排列
// 树构建方依赖这里的排序保证输出顺序稳定
func (r *WBSRepository) ListByProject(ctx context.Context, projectID string) ([]entity.WBSNode, error) {
	var nodes []entity.WBSNode
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("level ASC, sequence_order ASC, code ASC").
		Find(&nodes).Error
	return nodes, err
}

// SiblingCodes 查询兄弟编码集合（编码分配用）
// parentID 为空查根节点
func (r *WBSRepository) SiblingCodes(ctx context.Context, projectID string, parentID *string) ([]string, error) {
	var codes []string
	query := r.db.WithContext(ctx).
		Model(&entity.WBSNode{}).
		Where("project_id = ?", projectID)
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}
	err := query.Pluck("code", &codes).Error
	return codes, err
}

// MaxSiblingSequence 兄弟组内最大 sequence_order
func (r *WBSRepository) MaxSiblingSequence(ctx context.Context, projectID string, parentID *string) (int, error) {
	var max int
	query := r.db.WithContext(ctx).
		Model(&entity.WBSNode{}).
		Where("project_id = ?", projectID)
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}
	err := query.Select("COALESCE(MAX(sequence_order), 0)").Scan(&max).Error
	return max, err
}

// DescendantIDs 收集节点及其全部后代的ID，自顶向下排列（级联删除用）
// 用应用层逐层展开而不是递归CTE，树深度有限
func (r *WBSRepository) DescendantIDs(ctx context.Context, nodeID string) ([]string, error) {
	ordered := []string{}
	frontier := []string{nodeID}

	for len(frontier) > 0 {
		ordered = append(ordered, frontier...)
		var next []string
		err := r.db.WithContext(ctx).
			Model(&entity.WBSNode{}).
			Where("parent_id IN ?", frontier).
			Pluck("id", &next).Error
		if err != nil {
			return nil, err
		}
		frontier = next
	}

	// 反转：叶子在前，便于自底向上删除
	for i, j := 0, len(ordered)-1; i < j; i, j = i+1, j-1 {
		ordered[i], ordered[j] = ordered[j], ordered[i]
	}
	return ordered, nil
}

// DeleteCascade 级联删除一批节点及其下属活动、依赖边、任务
// nodeIDs 应来自 DescendantIDs（叶子在前），整个删除在一个事务内
func (r *WBSRepository) DeleteCascade(ctx context.Context, nodeIDs []string) error {
	if len(nodeIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var activityIDs []string
		if err := tx.Model(&entity.Activity{}).
			Where("wbs_node_id IN ?", nodeIDs).
			Pluck("id", &activityIDs).Error; err != nil {
			return err
		}

		if len(activityIDs) > 0 {
			// 依赖边两头都要清：被删活动的前置边和指向被删活动的后继边
			if err := tx.Where("activity_id IN ? OR predecessor_id IN ?", activityIDs, activityIDs).
				Delete(&entity.ActivityDependency{}).Error; err != nil {
				return err
			}
			if err := tx.Where("activity_id IN ?", activityIDs).
				Delete(&entity.Task{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", activityIDs).
				Delete(&entity.Activity{}).Error; err != nil {
				return err
			}
		}

		// 倒序逐个删，叶子先于父节点，不触发父子约束
		for i := len(nodeIDs) - 1; i >= 0; i-- {
			if err := tx.Where("id = ?", nodeIDs[i]).Delete(&entity.WBSNode{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// UpdateCostRollup 更新节点成本汇总（派生值）
func (r *WBSRepository) UpdateCostRollup(ctx context.Context, nodeID string, direct, indirect float64) error {
	return r.db.WithContext(ctx).
		Model(&entity.WBSNode{}).
		Where("id = ?", nodeID).
		Updates(map[string]interface{}{
			"direct_cost":   direct,
			"indirect_cost": indirect,
		}).Error
}
