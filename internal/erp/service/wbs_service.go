package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/santoshrchetty/construction-erp/internal/erp/entity"
	"github.com/santoshrchetty/construction-erp/internal/erp/repository"
	"gorm.io/gorm"
)

// WBSService 工作分解结构服务
type WBSService struct {
	wbsRepo      *repository.WBSRepository
	activityRepo *repository.ActivityRepository
	taskRepo     *repository.TaskRepository
	projectRepo  *repository.ProjectRepository
}

func NewWBSService(wbsRepo *repository.WBSRepository, activityRepo *repository.ActivityRepository, taskRepo *repository.TaskRepository, projectRepo *repository.ProjectRepository) *WBSService {
	return &WBSService{
		wbsRepo:      wbsRepo,
		activityRepo: activityRepo,
		taskRepo:     taskRepo,
		projectRepo:  projectRepo,
	}
}

// ActivityNode 树里的活动：活动本体 + 任务清单
type ActivityNode struct {
	entity.Activity
	Tasks []entity.Task `json:"tasks"`
}

// TreeNode 树里的WBS节点：节点本体 + 活动 + 子节点
type TreeNode struct {
	entity.WBSNode
	Activities []*ActivityNode `json:"activities"`
	Children   []*TreeNode     `json:"children"`
}

// BuildProjectTree 把平面行组装成嵌套的项目树
// 四次整批查询 + 内存索引组装，复杂度 O(节点数+活动数+任务数)
// 父节点缺失的孤儿节点/活动/任务直接丢弃，不中断组装
func (s *WBSService) BuildProjectTree(ctx context.Context, projectID string) ([]*TreeNode, error) {
	nodes, err := s.wbsRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load wbs nodes: %w", err)
	}
	activities, err := s.activityRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load activities: %w", err)
	}
	deps, err := s.activityRepo.ListDependenciesByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load dependencies: %w", err)
	}
	tasks, err := s.taskRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}

	return AssembleTree(nodes, activities, deps, tasks), nil
}

// AssembleTree 纯内存组装，入参都是平面行
// 节点按 level ASC 排好序，保证父节点先于子节点出现
func AssembleTree(nodes []entity.WBSNode, activities []entity.Activity, deps []entity.ActivityDependency, tasks []entity.Task) []*TreeNode {
	nodeIndex := make(map[string]*TreeNode, len(nodes))
	for i := range nodes {
		nodeIndex[nodes[i].ID] = &TreeNode{
			WBSNode:    nodes[i],
			Activities: []*ActivityNode{},
			Children:   []*TreeNode{},
		}
	}

	// 活动状态表，给依赖边带上前置状态
	statusByID := make(map[string]string, len(activities))
	for i := range activities {
		statusByID[activities[i].ID] = activities[i].Status
	}

	// 依赖边按活动分组
	depsByActivity := make(map[string][]entity.ActivityDependency, len(deps))
	for _, d := range deps {
		d.PredecessorStatus = statusByID[d.PredecessorID]
		depsByActivity[d.ActivityID] = append(depsByActivity[d.ActivityID], d)
	}

	// 活动挂到节点
	activityIndex := make(map[string]*ActivityNode, len(activities))
	for i := range activities {
		parent, ok := nodeIndex[activities[i].WBSNodeID]
		if !ok {
			continue // 孤儿活动
		}
		an := &ActivityNode{Activity: activities[i], Tasks: []entity.Task{}}
		an.Dependencies = depsByActivity[an.ID]
		if an.Dependencies == nil {
			an.Dependencies = []entity.ActivityDependency{}
		}
		activityIndex[an.ID] = an
		parent.Activities = append(parent.Activities, an)
	}

	// 任务挂到活动
	for i := range tasks {
		if an, ok := activityIndex[tasks[i].ActivityID]; ok {
			an.Tasks = append(an.Tasks, tasks[i])
		}
	}

	// 节点挂到父节点，level 升序保证父先于子
	roots := []*TreeNode{}
	for i := range nodes {
		tn := nodeIndex[nodes[i].ID]
		if tn.ParentID == nil {
			roots = append(roots, tn)
			continue
		}
		parent, ok := nodeIndex[*tn.ParentID]
		if !ok {
			continue // 孤儿节点连同子树丢弃
		}
		parent.Children = append(parent.Children, tn)
	}
	return roots
}

// CreateNodeInput 创建WBS节点入参
type CreateNodeInput struct {
	ParentID    *string `json:"parent_id"`
	Name        string  `json:"name" binding:"required"`
	NodeType    string  `json:"node_type"`
	Description string  `json:"description"`
}

// CreateNode 创建WBS节点并分配编码
// 根节点编码 {项目编码}.{NN}，子节点 {父编码}.{NN}；撞码靠唯一索引+重试
func (s *WBSService) CreateNode(ctx context.Context, projectID string, input *CreateNodeInput, createdBy string) (*entity.WBSNode, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("project not found: %w", err)
	}

	parentCode := project.Code
	level := 1
	if input.ParentID != nil {
		parent, err := s.wbsRepo.FindByID(ctx, *input.ParentID)
		if err != nil {
			return nil, fmt.Errorf("parent node not found: %w", err)
		}
		if parent.ProjectID != projectID {
			return nil, fmt.Errorf("父节点不在本项目内: %w", ErrInvalid)
		}
		parentCode = parent.Code
		level = parent.Level + 1
	}

	nodeType := input.NodeType
	if nodeType == "" {
		nodeType = entity.WBSNodeTypePhase
	}
	switch nodeType {
	case entity.WBSNodeTypeProject, entity.WBSNodeTypePhase,
		entity.WBSNodeTypeDeliverable, entity.WBSNodeTypeWorkPackage:
	default:
		return nil, fmt.Errorf("未知的节点类型 %s: %w", nodeType, ErrInvalid)
	}

	var lastErr error
	for attempt := 0; attempt < codeAllocRetries; attempt++ {
		siblings, err := s.wbsRepo.SiblingCodes(ctx, projectID, input.ParentID)
		if err != nil {
			return nil, fmt.Errorf("query sibling codes: %w", err)
		}
		maxSeq, err := s.wbsRepo.MaxSiblingSequence(ctx, projectID, input.ParentID)
		if err != nil {
			return nil, fmt.Errorf("query sibling sequence: %w", err)
		}

		node := &entity.WBSNode{
			ID:            uuid.New().String()[:32],
			ProjectID:     projectID,
			ParentID:      input.ParentID,
			Code:          NextWBSCode(parentCode, siblings),
			Name:          input.Name,
			NodeType:      nodeType,
			Level:         level,
			SequenceOrder: maxSeq + 1,
			Description:   input.Description,
			CreatedBy:     createdBy,
		}

		err = s.wbsRepo.Create(ctx, node)
		if err == nil {
			return node, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create wbs node: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("WBS编码分配冲突，请重试: %v: %w", lastErr, ErrCodeConflict)
}

// GetNode 获取节点详情
func (s *WBSService) GetNode(ctx context.Context, id string) (*entity.WBSNode, error) {
	return s.wbsRepo.FindByID(ctx, id)
}

// UpdateNodeInput 更新节点入参；编码、层级、父节点不可改
type UpdateNodeInput struct {
	Name        string `json:"name"`
	NodeType    string `json:"node_type"`
	Description string `json:"description"`
}

// UpdateNode 更新节点基本信息
func (s *WBSService) UpdateNode(ctx context.Context, id string, input *UpdateNodeInput) (*entity.WBSNode, error) {
	node, err := s.wbsRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != "" {
		node.Name = input.Name
	}
	if input.NodeType != "" {
		node.NodeType = input.NodeType
	}
	if input.Description != "" {
		node.Description = input.Description
	}
	if err := s.wbsRepo.Update(ctx, node); err != nil {
		return nil, fmt.Errorf("update wbs node: %w", err)
	}
	return node, nil
}

// DeleteImpact 删除影响评估；ID清单给UI状态清理用，不出现在响应里
type DeleteImpact struct {
	NodeCount     int   `json:"node_count"` // 含节点自身
	ActivityCount int64 `json:"activity_count"`
	TaskCount     int64 `json:"task_count"`

	NodeIDs     []string `json:"-"`
	ActivityIDs []string `json:"-"`
}

// PreviewDelete 删除前返回波及范围，前端确认用
// 子树ID一次展开、活动ID一次Pluck、任务一次Count，不随子树规模加查询
func (s *WBSService) PreviewDelete(ctx context.Context, nodeID string) (*DeleteImpact, error) {
	if _, err := s.wbsRepo.FindByID(ctx, nodeID); err != nil {
		return nil, err
	}
	nodeIDs, err := s.wbsRepo.DescendantIDs(ctx, nodeID)
	if err != nil {
		return nil, fmt.Errorf("collect descendants: %w", err)
	}
	activityIDs, err := s.activityRepo.IDsByNodes(ctx, nodeIDs)
	if err != nil {
		return nil, fmt.Errorf("collect activities: %w", err)
	}
	taskCount, err := s.taskRepo.CountByActivities(ctx, activityIDs)
	if err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}

	return &DeleteImpact{
		NodeCount:     len(nodeIDs),
		ActivityCount: int64(len(activityIDs)),
		TaskCount:     taskCount,
		NodeIDs:       nodeIDs,
		ActivityIDs:   activityIDs,
	}, nil
}

// DeleteNode 级联删除节点子树及其活动、依赖边、任务
func (s *WBSService) DeleteNode(ctx context.Context, nodeID string) (*DeleteImpact, error) {
	impact, err := s.PreviewDelete(ctx, nodeID)
	if err != nil {
		return nil, err
	}
	if err := s.wbsRepo.DeleteCascade(ctx, impact.NodeIDs); err != nil {
		return nil, fmt.Errorf("cascade delete: %w", err)
	}
	return impact, nil
}

// RecalculateNodeCost 重算节点成本汇总：自身活动直接成本 + 子节点汇总
// 整树自底向上跑一遍，夜间任务和成本回写后调用
func (s *WBSService) RecalculateNodeCost(ctx context.Context, projectID string) error {
	nodes, err := s.wbsRepo.ListByProject(ctx, projectID)
	if err != nil {
		return err
	}
	activities, err := s.activityRepo.ListByProject(ctx, projectID)
	if err != nil {
		return err
	}

	direct := make(map[string]float64, len(nodes))
	for i := range activities {
		direct[activities[i].WBSNodeID] += activities[i].DirectCostTotal()
	}

	// level 降序：先算深层，父节点把子节点的合计当间接成本累上
	indirect := make(map[string]float64, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		n := nodes[i]
		if n.ParentID != nil {
			indirect[*n.ParentID] += direct[n.ID] + indirect[n.ID]
		}
	}

	for i := range nodes {
		n := nodes[i]
		if err := s.wbsRepo.UpdateCostRollup(ctx, n.ID, direct[n.ID], indirect[n.ID]); err != nil {
			return fmt.Errorf("update cost rollup for %s: %w", n.Code, err)
		}
	}
	return nil
}
