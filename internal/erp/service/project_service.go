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

// ProjectService 项目服务
type ProjectService struct {
	projectRepo  *repository.ProjectRepository
	activityRepo *repository.ActivityRepository
}

func NewProjectService(projectRepo *repository.ProjectRepository, activityRepo *repository.ActivityRepository) *ProjectService {
	return &ProjectService{
		projectRepo:  projectRepo,
		activityRepo: activityRepo,
	}
}

// CreateProjectInput 创建项目入参
type CreateProjectInput struct {
	Name        string   `json:"name" binding:"required"`
	Category    string   `json:"category" binding:"required"`
	Description string   `json:"description"`
	Budget      float64  `json:"budget"`
	StartDate   string   `json:"start_date"`
	PlannedEnd  string   `json:"planned_end"`
	WorkingDays []int    `json:"working_days"`
	Holidays    []string `json:"holidays"`
}

// codeAllocRetries 编码并发冲突重试次数
const codeAllocRetries = 3

// CreateProject 创建项目并分配编码
// 编码 = 类别前缀-两位年-年内序号；并发撞码靠唯一索引兜底，重试重新取号
func (s *ProjectService) CreateProject(ctx context.Context, input *CreateProjectInput, createdBy string) (*entity.Project, error) {
	if _, ok := entity.ProjectCategories[input.Category]; !ok {
		return nil, fmt.Errorf("未知的项目类别 %s: %w", input.Category, ErrInvalid)
	}

	var startDate, plannedEnd *time.Time
	if input.StartDate != "" {
		d, err := time.Parse(calendar.DateLayout, input.StartDate)
		if err != nil {
			return nil, fmt.Errorf("开始日期格式错误: %v: %w", err, ErrInvalid)
		}
		startDate = &d
	}
	if input.PlannedEnd != "" {
		d, err := time.Parse(calendar.DateLayout, input.PlannedEnd)
		if err != nil {
			return nil, fmt.Errorf("结束日期格式错误: %v: %w", err, ErrInvalid)
		}
		plannedEnd = &d
	}
	for _, h := range input.Holidays {
		if _, err := time.Parse(calendar.DateLayout, h); err != nil {
			return nil, fmt.Errorf("节假日格式错误 %s: %v: %w", h, err, ErrInvalid)
		}
	}

	workingDays := input.WorkingDays
	if len(workingDays) == 0 {
		workingDays = []int{1, 2, 3, 4, 5} // 默认周一到周五
	}

	prefix := entity.CategoryPrefix(input.Category)
	yearPrefix := fmt.Sprintf("%s-%02d-", prefix, time.Now().Year()%100)

	var lastErr error
	for attempt := 0; attempt < codeAllocRetries; attempt++ {
		existing, err := s.projectRepo.ListCodesByPrefix(ctx, yearPrefix)
		if err != nil {
			return nil, fmt.Errorf("query project codes: %w", err)
		}

		project := &entity.Project{
			ID:          uuid.New().String()[:32],
			Code:        NextProjectCode(prefix, time.Now(), existing),
			Name:        input.Name,
			Category:    input.Category,
			Description: input.Description,
			Status:      entity.ProjectStatusPlanning,
			Budget:      input.Budget,
			StartDate:   startDate,
			PlannedEnd:  plannedEnd,
			WorkingDays: workingDays,
			Holidays:    input.Holidays,
			CreatedBy:   createdBy,
		}

		err = s.projectRepo.Create(ctx, project)
		if err == nil {
			return project, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create project: %w", err)
		}
		lastErr = err // 撞码，重新取号
	}
	return nil, fmt.Errorf("项目编码分配冲突，请重试: %v: %w", lastErr, ErrCodeConflict)
}

// GetProject 获取项目详情
func (s *ProjectService) GetProject(ctx context.Context, id string) (*entity.Project, error) {
	return s.projectRepo.FindByID(ctx, id)
}

// ListProjects 项目列表（分页筛选）
func (s *ProjectService) ListProjects(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Project, int64, error) {
	return s.projectRepo.FindAll(ctx, page, pageSize, filters)
}

// UpdateProjectInput 更新项目入参，空值字段不更新
type UpdateProjectInput struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	Budget      *float64 `json:"budget"`
	StartDate   string   `json:"start_date"`
	PlannedEnd  string   `json:"planned_end"`
	WorkingDays []int    `json:"working_days"`
	Holidays    []string `json:"holidays"`
}

// UpdateProject 更新项目，编码和类别不可改
func (s *ProjectService) UpdateProject(ctx context.Context, id string, input *UpdateProjectInput) (*entity.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		project.Name = input.Name
	}
	if input.Description != "" {
		project.Description = input.Description
	}
	if input.Status != "" {
		project.Status = input.Status
	}
	if input.Budget != nil {
		project.Budget = *input.Budget
	}
	if input.StartDate != "" {
		d, err := time.Parse(calendar.DateLayout, input.StartDate)
		if err != nil {
			return nil, fmt.Errorf("开始日期格式错误: %v: %w", err, ErrInvalid)
		}
		project.StartDate = &d
	}
	if input.PlannedEnd != "" {
		d, err := time.Parse(calendar.DateLayout, input.PlannedEnd)
		if err != nil {
			return nil, fmt.Errorf("结束日期格式错误: %v: %w", err, ErrInvalid)
		}
		project.PlannedEnd = &d
	}
	if input.WorkingDays != nil {
		project.WorkingDays = input.WorkingDays
	}
	if input.Holidays != nil {
		for _, h := range input.Holidays {
			if _, err := time.Parse(calendar.DateLayout, h); err != nil {
				return nil, fmt.Errorf("节假日格式错误 %s: %v: %w", h, err, ErrInvalid)
			}
		}
		project.Holidays = input.Holidays
	}

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return project, nil
}

// DeleteProject 软删除项目
func (s *ProjectService) DeleteProject(ctx context.Context, id string) error {
	if _, err := s.projectRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.projectRepo.Delete(ctx, id)
}

// CalendarOf 用项目的工作日掩码和节假日构造工作日历
func (s *ProjectService) CalendarOf(project *entity.Project) *calendar.Calendar {
	if len(project.WorkingDays) == 0 {
		return calendar.Default()
	}
	return calendar.New(project.WorkingDays, project.Holidays)
}

// CountWorkingDays 项目日历下 [start, end] 的天数统计
func (s *ProjectService) CountWorkingDays(ctx context.Context, projectID, start, end string) (*calendar.DayCount, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	startDate, err := time.Parse(calendar.DateLayout, start)
	if err != nil {
		return nil, fmt.Errorf("开始日期格式错误: %v: %w", err, ErrInvalid)
	}
	endDate, err := time.Parse(calendar.DateLayout, end)
	if err != nil {
		return nil, fmt.Errorf("结束日期格式错误: %v: %w", err, ErrInvalid)
	}
	count := s.CalendarOf(project).CountDays(startDate, endDate)
	return &count, nil
}

// ProjectEndDate 从开始日期按项目日历推算占用 n 个工作日后的结束日期
func (s *ProjectService) ProjectEndDate(ctx context.Context, projectID, start string, workingDays int) (time.Time, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return time.Time{}, err
	}
	startDate, err := time.Parse(calendar.DateLayout, start)
	if err != nil {
		return time.Time{}, fmt.Errorf("开始日期格式错误: %v: %w", err, ErrInvalid)
	}
	return s.CalendarOf(project).EndDateAfter(startDate, workingDays), nil
}

// RecalculateProgress 用活动进度（预算加权）重算项目进度
func (s *ProjectService) RecalculateProgress(ctx context.Context, projectID string) (int, error) {
	activities, err := s.activityRepo.ListByProject(ctx, projectID)
	if err != nil {
		return 0, err
	}
	if len(activities) == 0 {
		// 最后一批活动删掉后进度也要归零，不能留旧值
		if err := s.projectRepo.UpdateProgress(ctx, projectID, 0); err != nil {
			return 0, err
		}
		return 0, nil
	}

	var weighted, totalWeight float64
	for _, a := range activities {
		weight := a.BudgetAmount
		if weight <= 0 {
			weight = 1 // 没填预算的活动按等权算
		}
		weighted += float64(a.Progress) * weight
		totalWeight += weight
	}

	progress := int(weighted / totalWeight)
	if progress > 100 {
		progress = 100
	}
	if err := s.projectRepo.UpdateProgress(ctx, projectID, progress); err != nil {
		return 0, err
	}
	return progress, nil
}

// RecalculateAllProgress 全量重算在建项目进度（夜间任务）
func (s *ProjectService) RecalculateAllProgress(ctx context.Context) error {
	projects, err := s.projectRepo.ListActive(ctx)
	if err != nil {
		return err
	}
	for _, p := range projects {
		if _, err := s.RecalculateProgress(ctx, p.ID); err != nil {
			return fmt.Errorf("recalculate progress for %s: %w", p.Code, err)
		}
	}
	return nil
}
