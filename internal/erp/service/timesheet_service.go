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

// TimesheetService 工时服务
type TimesheetService struct {
	timesheetRepo *repository.TimesheetRepository
	activityRepo  *repository.ActivityRepository
	taskRepo      *repository.TaskRepository
}

func NewTimesheetService(timesheetRepo *repository.TimesheetRepository, activityRepo *repository.ActivityRepository, taskRepo *repository.TaskRepository) *TimesheetService {
	return &TimesheetService{
		timesheetRepo: timesheetRepo,
		activityRepo:  activityRepo,
		taskRepo:      taskRepo,
	}
}

// SubmitEntryInput 提交工时入参
type SubmitEntryInput struct {
	ActivityID string  `json:"activity_id" binding:"required"`
	TaskID     *string `json:"task_id"`
	WorkDate   string  `json:"work_date" binding:"required"`
	Hours      float64 `json:"hours" binding:"required"`
	HourlyRate float64 `json:"hourly_rate"`
	Notes      string  `json:"notes"`
}

// SubmitEntry 提交工时记录
func (s *TimesheetService) SubmitEntry(ctx context.Context, input *SubmitEntryInput, userID string) (*entity.TimesheetEntry, error) {
	if input.Hours <= 0 || input.Hours > 24 {
		return nil, fmt.Errorf("工时必须在 0-24 小时之间: %w", ErrInvalid)
	}
	workDate, err := time.Parse(calendar.DateLayout, input.WorkDate)
	if err != nil {
		return nil, fmt.Errorf("工作日期格式错误: %v: %w", err, ErrInvalid)
	}

	activity, err := s.activityRepo.FindByID(ctx, input.ActivityID)
	if err != nil {
		return nil, fmt.Errorf("activity not found: %w", err)
	}
	if input.TaskID != nil {
		task, err := s.taskRepo.FindByID(ctx, *input.TaskID)
		if err != nil {
			return nil, fmt.Errorf("task not found: %w", err)
		}
		if task.ActivityID != activity.ID {
			return nil, fmt.Errorf("任务不属于该活动: %w", ErrInvalid)
		}
	}

	entry := &entity.TimesheetEntry{
		ID:         uuid.New().String()[:32],
		ProjectID:  activity.ProjectID,
		ActivityID: activity.ID,
		TaskID:     input.TaskID,
		UserID:     userID,
		WorkDate:   workDate,
		Hours:      input.Hours,
		HourlyRate: input.HourlyRate,
		Status:     entity.TimesheetStatusSubmitted,
		Notes:      input.Notes,
	}
	if err := s.timesheetRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("create timesheet entry: %w", err)
	}
	return entry, nil
}

// GetEntry 获取工时记录
func (s *TimesheetService) GetEntry(ctx context.Context, id string) (*entity.TimesheetEntry, error) {
	return s.timesheetRepo.FindByID(ctx, id)
}

// ListEntries 工时记录列表
func (s *TimesheetService) ListEntries(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.TimesheetEntry, int64, error) {
	return s.timesheetRepo.FindAll(ctx, page, pageSize, filters)
}

// Approve 审批通过：实际工时累到任务、人工成本累到活动
func (s *TimesheetService) Approve(ctx context.Context, id, approverID string) (*entity.TimesheetEntry, error) {
	entry, err := s.timesheetRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.UserID == approverID {
		return nil, fmt.Errorf("不能审批自己的工时: %w", ErrInvalid)
	}

	if err := s.timesheetRepo.SetStatus(ctx, id, entity.TimesheetStatusApproved, approverID); err != nil {
		if err == repository.ErrNotFound {
			return nil, fmt.Errorf("只有待审批的工时才能审批: %w", ErrInvalid)
		}
		return nil, err
	}

	if entry.TaskID != nil {
		if err := s.taskRepo.AddActualHours(ctx, *entry.TaskID, entry.Hours); err != nil {
			return nil, fmt.Errorf("rollup task hours: %w", err)
		}
	}
	if entry.HourlyRate > 0 {
		if err := s.activityRepo.AddCost(ctx, entry.ActivityID, "labor_cost", entry.Hours*entry.HourlyRate); err != nil {
			return nil, fmt.Errorf("rollup labor cost: %w", err)
		}
	}

	return s.timesheetRepo.FindByID(ctx, id)
}

// Reject 驳回工时
func (s *TimesheetService) Reject(ctx context.Context, id, approverID string) (*entity.TimesheetEntry, error) {
	if err := s.timesheetRepo.SetStatus(ctx, id, entity.TimesheetStatusRejected, approverID); err != nil {
		if err == repository.ErrNotFound {
			return nil, fmt.Errorf("只有待审批的工时才能驳回: %w", ErrInvalid)
		}
		return nil, err
	}
	return s.timesheetRepo.FindByID(ctx, id)
}

// ActivityHours 活动已审批工时合计
func (s *TimesheetService) ActivityHours(ctx context.Context, activityID string) (float64, error) {
	return s.timesheetRepo.SumApprovedHoursByActivity(ctx, activityID)
}
