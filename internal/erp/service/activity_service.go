package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/santoshrchetty/construction-erp/internal/erp/entity"
	"github.com/santoshrchetty/construction-erp/internal/erp/repository"
	"github.com/santoshrchetty/construction-erp/internal/shared/calendar"
	"gorm.io/gorm"
)

// ActivityService 活动服务：调度单元、依赖边、进度
type ActivityService struct {
	activityRepo *repository.ActivityRepository
	wbsRepo      *repository.WBSRepository
	projectRepo  *repository.ProjectRepository
}

func NewActivityService(activityRepo *repository.ActivityRepository, wbsRepo *repository.WBSRepository, projectRepo *repository.ProjectRepository) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		wbsRepo:      wbsRepo,
		projectRepo:  projectRepo,
	}
}

// CreateActivityInput 创建活动入参
type CreateActivityInput struct {
	Name            string  `json:"name" binding:"required"`
	ActivityType    string  `json:"activity_type"`
	PlannedStart    string  `json:"planned_start"`
	PlannedDuration int     `json:"planned_duration"`
	BudgetAmount    float64 `json:"budget_amount"`
}

// CreateActivity 在WBS节点下创建活动并分配编码 {节点编码}-A{NN}
func (s *ActivityService) CreateActivity(ctx context.Context, wbsNodeID string, input *CreateActivityInput, createdBy string) (*entity.Activity, error) {
	node, err := s.wbsRepo.FindByID(ctx, wbsNodeID)
	if err != nil {
		return nil, fmt.Errorf("wbs node not found: %w", err)
	}

	activityType := input.ActivityType
	if activityType == "" {
		activityType = entity.ActivityTypeInternal
	}
	switch activityType {
	case entity.ActivityTypeInternal, entity.ActivityTypeExternal, entity.ActivityTypeService:
	default:
		return nil, fmt.Errorf("未知的活动类型 %s: %w", activityType, ErrInvalid)
	}

	var plannedStart *time.Time
	if input.PlannedStart != "" {
		d, err := time.Parse(calendar.DateLayout, input.PlannedStart)
		if err != nil {
			return nil, fmt.Errorf("计划开始日期格式错误: %v: %w", err, ErrInvalid)
		}
		plannedStart = &d
	}
	if input.PlannedDuration < 0 {
		return nil, fmt.Errorf("计划工期不能为负: %w", ErrInvalid)
	}

	var lastErr error
	for attempt := 0; attempt < codeAllocRetries; attempt++ {
		siblings, err := s.activityRepo.SiblingCodes(ctx, wbsNodeID)
		if err != nil {
			return nil, fmt.Errorf("query sibling codes: %w", err)
		}

		activity := &entity.Activity{
			ID:              uuid.New().String()[:32],
			ProjectID:       node.ProjectID,
			WBSNodeID:       wbsNodeID,
			Code:            NextActivityCode(node.Code, siblings),
			Name:            input.Name,
			ActivityType:    activityType,
			Status:          entity.ActivityStatusNotStarted,
			PlannedStart:    plannedStart,
			PlannedDuration: input.PlannedDuration,
			BudgetAmount:    input.BudgetAmount,
			CreatedBy:       createdBy,
		}

		err = s.activityRepo.Create(ctx, activity)
		if err == nil {
			return activity, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create activity: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("活动编码分配冲突，请重试: %v: %w", lastErr, ErrCodeConflict)
}

// GetActivity 获取活动详情，带依赖边（含前置状态）和任务
func (s *ActivityService) GetActivity(ctx context.Context, id string) (*entity.Activity, error) {
	activity, err := s.activityRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	deps, err := s.loadDependencies(ctx, id)
	if err != nil {
		return nil, err
	}
	activity.Dependencies = deps
	return activity, nil
}

// loadDependencies 加载前置边并补上前置活动状态
func (s *ActivityService) loadDependencies(ctx context.Context, activityID string) ([]entity.ActivityDependency, error) {
	deps, err := s.activityRepo.ListPredecessors(ctx, activityID)
	if err != nil {
		return nil, fmt.Errorf("load predecessors: %w", err)
	}
	if len(deps) == 0 {
		return []entity.ActivityDependency{}, nil
	}

	ids := make([]string, 0, len(deps))
	for _, d := range deps {
		ids = append(ids, d.PredecessorID)
	}
	statuses, err := s.activityRepo.FindStatusByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load predecessor statuses: %w", err)
	}
	for i := range deps {
		deps[i].PredecessorStatus = statuses[deps[i].PredecessorID]
	}
	return deps, nil
}

// UpdateActivityInput 更新活动入参
type UpdateActivityInput struct {
	Name            string   `json:"name"`
	Status          string   `json:"status"`
	PlannedStart    string   `json:"planned_start"`
	PlannedDuration *int     `json:"planned_duration"`
	ActualStart     string   `json:"actual_start"`
	ActualDuration  *int     `json:"actual_duration"`
	Progress        *int     `json:"progress"`
	BudgetAmount    *float64 `json:"budget_amount"`
}

// UpdateActivity 更新活动
// 状态改为 in_progress 时校验依赖门槛：FS/FF 要求前置完成，SS/SF 要求前置已开始
func (s *ActivityService) UpdateActivity(ctx context.Context, id string, input *UpdateActivityInput) (*entity.Activity, error) {
	activity, err := s.activityRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Status == entity.ActivityStatusInProgress && activity.Status == entity.ActivityStatusNotStarted {
		if err := s.checkStartGate(ctx, id); err != nil {
			return nil, err
		}
	}

	if input.Name != "" {
		activity.Name = input.Name
	}
	if input.Status != "" {
		activity.Status = input.Status
	}
	if input.PlannedStart != "" {
		d, err := time.Parse(calendar.DateLayout, input.PlannedStart)
		if err != nil {
			return nil, fmt.Errorf("计划开始日期格式错误: %v: %w", err, ErrInvalid)
		}
		activity.PlannedStart = &d
	}
	if input.PlannedDuration != nil {
		if *input.PlannedDuration < 0 {
			return nil, fmt.Errorf("计划工期不能为负: %w", ErrInvalid)
		}
		activity.PlannedDuration = *input.PlannedDuration
	}
	if input.ActualStart != "" {
		d, err := time.Parse(calendar.DateLayout, input.ActualStart)
		if err != nil {
			return nil, fmt.Errorf("实际开始日期格式错误: %v: %w", err, ErrInvalid)
		}
		activity.ActualStart = &d
	}
	if input.ActualDuration != nil {
		activity.ActualDuration = *input.ActualDuration
	}
	if input.Progress != nil {
		p := *input.Progress
		if p < 0 || p > 100 {
			return nil, fmt.Errorf("进度必须在 0-100 之间: %w", ErrInvalid)
		}
		activity.Progress = p
		if p >= 100 {
			activity.Status = entity.ActivityStatusCompleted
		}
	}
	if input.BudgetAmount != nil {
		activity.BudgetAmount = *input.BudgetAmount
	}

	if err := s.activityRepo.Update(ctx, activity); err != nil {
		return nil, fmt.Errorf("update activity: %w", err)
	}
	return activity, nil
}

// checkStartGate 开工门槛：按依赖边类型校验前置活动状态
func (s *ActivityService) checkStartGate(ctx context.Context, activityID string) error {
	deps, err := s.loadDependencies(ctx, activityID)
	if err != nil {
		return err
	}
	for _, d := range deps {
		switch d.DependencyType {
		case entity.DependencyFinishToStart, entity.DependencyFinishToFinish:
			if d.PredecessorStatus != entity.ActivityStatusCompleted &&
				d.PredecessorStatus != entity.ActivityStatusCancelled {
				return fmt.Errorf("前置活动未完成，不能开工 (依赖类型 %s): %w", d.DependencyType, ErrInvalid)
			}
		case entity.DependencyStartToStart, entity.DependencyStartToFinish:
			if d.PredecessorStatus == entity.ActivityStatusNotStarted {
				return fmt.Errorf("前置活动未开始，不能开工 (依赖类型 %s): %w", d.DependencyType, ErrInvalid)
			}
		}
	}
	return nil
}

// DeleteActivity 删除活动及其两侧依赖边、任务
func (s *ActivityService) DeleteActivity(ctx context.Context, id string) error {
	if _, err := s.activityRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.activityRepo.Delete(ctx, id)
}

// ListByNode WBS节点下的活动
func (s *ActivityService) ListByNode(ctx context.Context, wbsNodeID string) ([]entity.Activity, error) {
	return s.activityRepo.ListByNode(ctx, wbsNodeID)
}

// === 依赖边 ===

// AddDependencyInput 添加依赖边入参
type AddDependencyInput struct {
	PredecessorID  string `json:"predecessor_id" binding:"required"`
	DependencyType string `json:"dependency_type"`
	LagDays        int    `json:"lag_days"`
}

// AddDependency 给活动添加前置依赖边
// 同项目、不自依赖、类型合法、不成环；重复边靠唯一索引拦
func (s *ActivityService) AddDependency(ctx context.Context, activityID string, input *AddDependencyInput) (*entity.ActivityDependency, error) {
	if activityID == input.PredecessorID {
		return nil, fmt.Errorf("活动不能依赖自身: %w", ErrInvalid)
	}

	activity, err := s.activityRepo.FindByID(ctx, activityID)
	if err != nil {
		return nil, fmt.Errorf("activity not found: %w", err)
	}
	predecessor, err := s.activityRepo.FindByID(ctx, input.PredecessorID)
	if err != nil {
		return nil, fmt.Errorf("predecessor not found: %w", err)
	}
	if activity.ProjectID != predecessor.ProjectID {
		return nil, fmt.Errorf("前置活动必须在同一项目内: %w", ErrInvalid)
	}

	depType := input.DependencyType
	if depType == "" {
		depType = entity.DependencyFinishToStart
	}
	if !entity.ValidDependencyType(depType) {
		return nil, fmt.Errorf("未知的依赖类型 %s: %w", depType, ErrInvalid)
	}

	cyclic, err := s.wouldCreateCycle(ctx, activity.ProjectID, activityID, input.PredecessorID)
	if err != nil {
		return nil, err
	}
	if cyclic {
		return nil, fmt.Errorf("依赖成环: %s 已直接或间接依赖 %s: %w", predecessor.Code, activity.Code, ErrInvalid)
	}

	dep := &entity.ActivityDependency{
		ID:             uuid.New().String()[:32],
		ActivityID:     activityID,
		PredecessorID:  input.PredecessorID,
		DependencyType: depType,
		LagDays:        input.LagDays,
	}
	if err := s.activityRepo.AddDependency(ctx, dep); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("依赖边已存在: %w", ErrInvalid)
		}
		return nil, fmt.Errorf("add dependency: %w", err)
	}
	dep.PredecessorStatus = predecessor.Status
	return dep, nil
}

// wouldCreateCycle 判断新边 activity→predecessor 是否成环
// 把项目内全部依赖边拉到内存，从 predecessor 沿前置方向DFS，能走到 activity 即成环
func (s *ActivityService) wouldCreateCycle(ctx context.Context, projectID, activityID, predecessorID string) (bool, error) {
	deps, err := s.activityRepo.ListDependenciesByProject(ctx, projectID)
	if err != nil {
		return false, fmt.Errorf("load project dependencies: %w", err)
	}

	predecessorsOf := make(map[string][]string, len(deps))
	for _, d := range deps {
		predecessorsOf[d.ActivityID] = append(predecessorsOf[d.ActivityID], d.PredecessorID)
	}

	visited := map[string]bool{}
	stack := []string{predecessorID}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if current == activityID {
			return true, nil
		}
		if visited[current] {
			continue
		}
		visited[current] = true
		stack = append(stack, predecessorsOf[current]...)
	}
	return false, nil
}

// RemoveDependency 删除依赖边
func (s *ActivityService) RemoveDependency(ctx context.Context, activityID, depID string) error {
	dep, err := s.activityRepo.FindDependency(ctx, depID)
	if err != nil {
		return err
	}
	if dep.ActivityID != activityID {
		return fmt.Errorf("依赖边不属于该活动: %w", ErrInvalid)
	}
	return s.activityRepo.RemoveDependency(ctx, depID)
}

// ListPredecessors 前置边列表（含前置状态）
func (s *ActivityService) ListPredecessors(ctx context.Context, activityID string) ([]entity.ActivityDependency, error) {
	return s.loadDependencies(ctx, activityID)
}

// ListSuccessors 后继活动列表
func (s *ActivityService) ListSuccessors(ctx context.Context, activityID string) ([]entity.Activity, error) {
	return s.activityRepo.ListSuccessors(ctx, activityID)
}

// ActivitySchedule 活动排期推算结果
type ActivitySchedule struct {
	PlannedStart    *time.Time `json:"planned_start"`
	PlannedDuration int        `json:"planned_duration"`
	PlannedEnd      *time.Time `json:"planned_end"`
	WorkingDays     int        `json:"working_days"`
	ActualStart     *time.Time `json:"actual_start,omitempty"`
	// 实际开工比计划晚的工作日数，提前为负；未开工时为空
	StartDelayDays *int `json:"start_delay_days,omitempty"`
}

// Schedule 按项目工作日历推算活动计划结束日期
func (s *ActivityService) Schedule(ctx context.Context, activityID string) (*ActivitySchedule, error) {
	activity, err := s.activityRepo.FindByID(ctx, activityID)
	if err != nil {
		return nil, err
	}
	project, err := s.projectRepo.FindByID(ctx, activity.ProjectID)
	if err != nil {
		return nil, err
	}

	sched := &ActivitySchedule{
		PlannedStart:    activity.PlannedStart,
		PlannedDuration: activity.PlannedDuration,
		WorkingDays:     activity.PlannedDuration,
		ActualStart:     activity.ActualStart,
	}

	cal := calendar.Default()
	if len(project.WorkingDays) > 0 {
		cal = calendar.New(project.WorkingDays, project.Holidays)
	}

	if activity.PlannedStart != nil && activity.PlannedDuration > 0 {
		end := cal.EndDateAfter(*activity.PlannedStart, activity.PlannedDuration)
		sched.PlannedEnd = &end
	}

	if activity.PlannedStart != nil && activity.ActualStart != nil {
		delay := startDelayDays(cal, *activity.PlannedStart, *activity.ActualStart)
		sched.StartDelayDays = &delay
	}
	return sched, nil
}

// startDelayDays 计划开工到实际开工之间的工作日数，不含起点当天
func startDelayDays(cal *calendar.Calendar, planned, actual time.Time) int {
	switch {
	case actual.After(planned):
		d := cal.CountDays(planned, actual).Working - 1
		if d < 0 {
			d = 0
		}
		return d
	case planned.After(actual):
		d := cal.CountDays(actual, planned).Working - 1
		if d < 0 {
			d = 0
		}
		return -d
	default:
		return 0
	}
}
