package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/santoshrchetty/construction-erp/internal/erp/entity"
	"github.com/santoshrchetty/construction-erp/internal/erp/repository"
	"github.com/santoshrchetty/construction-erp/internal/shared/calendar"
)

// TaskService 任务服务
type TaskService struct {
	taskRepo     *repository.TaskRepository
	activityRepo *repository.ActivityRepository
}

func NewTaskService(taskRepo *repository.TaskRepository, activityRepo *repository.ActivityRepository) *TaskService {
	return &TaskService{
		taskRepo:     taskRepo,
		activityRepo: activityRepo,
	}
}

// CreateTaskInput 创建任务入参
type CreateTaskInput struct {
	Name           string  `json:"name" binding:"required"`
	Priority       string  `json:"priority"`
	ChecklistItem  bool    `json:"checklist_item"`
	DueDate        string  `json:"due_date"`
	EstimatedHours float64 `json:"estimated_hours"`
	AssigneeID     *string `json:"assignee_id"`
}

// CreateTask 在活动下创建任务
func (s *TaskService) CreateTask(ctx context.Context, activityID string, input *CreateTaskInput, createdBy string) (*entity.Task, error) {
	activity, err := s.activityRepo.FindByID(ctx, activityID)
	if err != nil {
		return nil, fmt.Errorf("activity not found: %w", err)
	}

	priority := input.Priority
	if priority == "" {
		priority = entity.TaskPriorityMedium
	}
	switch priority {
	case entity.TaskPriorityLow, entity.TaskPriorityMedium,
		entity.TaskPriorityHigh, entity.TaskPriorityCritical:
	default:
		return nil, fmt.Errorf("未知的优先级 %s: %w", priority, ErrInvalid)
	}

	var dueDate *time.Time
	if input.DueDate != "" {
		d, err := time.Parse(calendar.DateLayout, input.DueDate)
		if err != nil {
			return nil, fmt.Errorf("截止日期格式错误: %v: %w", err, ErrInvalid)
		}
		dueDate = &d
	}

	task := &entity.Task{
		ID:             uuid.New().String()[:32],
		ActivityID:     activityID,
		ProjectID:      activity.ProjectID,
		Name:           input.Name,
		Status:         entity.TaskStatusNotStarted,
		Priority:       priority,
		ChecklistItem:  input.ChecklistItem,
		DueDate:        dueDate,
		EstimatedHours: input.EstimatedHours,
		AssigneeID:     input.AssigneeID,
		CreatedBy:      createdBy,
	}
	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return task, nil
}

// GetTask 获取任务
func (s *TaskService) GetTask(ctx context.Context, id string) (*entity.Task, error) {
	return s.taskRepo.FindByID(ctx, id)
}

// ListByActivity 活动下的任务
func (s *TaskService) ListByActivity(ctx context.Context, activityID string) ([]entity.Task, error) {
	return s.taskRepo.ListByActivity(ctx, activityID)
}

// UpdateTaskInput 更新任务入参
type UpdateTaskInput struct {
	Name       string  `json:"name"`
	Status     string  `json:"status"`
	Priority   string  `json:"priority"`
	DueDate    string  `json:"due_date"`
	AssigneeID *string `json:"assignee_id"`
}

// UpdateTask 更新任务，完成时记完成时间
func (s *TaskService) UpdateTask(ctx context.Context, id string, input *UpdateTaskInput) (*entity.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		task.Name = input.Name
	}
	if input.Status != "" {
		task.Status = input.Status
		if input.Status == entity.TaskStatusCompleted {
			now := time.Now()
			task.CompletedAt = &now
			task.Progress = 100
		}
	}
	if input.Priority != "" {
		task.Priority = input.Priority
	}
	if input.DueDate != "" {
		d, err := time.Parse(calendar.DateLayout, input.DueDate)
		if err != nil {
			return nil, fmt.Errorf("截止日期格式错误: %v: %w", err, ErrInvalid)
		}
		task.DueDate = &d
	}
	if input.AssigneeID != nil {
		task.AssigneeID = input.AssigneeID
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

// UpdateProgress 更新任务进度，状态随进度软联动
func (s *TaskService) UpdateProgress(ctx context.Context, id string, progress int) (*entity.Task, error) {
	if progress < 0 || progress > 100 {
		return nil, fmt.Errorf("进度必须在 0-100 之间: %w", ErrInvalid)
	}
	if err := s.taskRepo.UpdateProgress(ctx, id, progress); err != nil {
		return nil, err
	}
	return s.taskRepo.FindByID(ctx, id)
}

// DeleteTask 删除任务
func (s *TaskService) DeleteTask(ctx context.Context, id string) error {
	if _, err := s.taskRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.taskRepo.Delete(ctx, id)
}

// ListOverdue 项目的逾期任务
func (s *TaskService) ListOverdue(ctx context.Context, projectID string) ([]entity.Task, error) {
	return s.taskRepo.ListOverdue(ctx, projectID)
}
