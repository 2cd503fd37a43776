package repository

import (
	"context"
	"errors"
	"time"

	"github.com/santoshrchetty/construction-erp/internal/erp/entity"
	"gorm.io/gorm"
)

// TaskRepository 任务仓库
type TaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository 创建任务仓库
func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// FindByID 根据ID查找任务
func (r *TaskRepository) FindByID(ctx context.Context, id string) (*entity.Task, error) {
	var task entity.Task
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &task, nil
}

// Create 创建任务
func (r *TaskRepository) Create(ctx context.Context, task *entity.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// Update 更新任务
func (r *TaskRepository) Update(ctx context.Context, task *entity.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// Delete 删除任务
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Task{}).Error
}

// ListByActivity 获取活动下的任务
func (r *TaskRepository) ListByActivity(ctx context.Context, activityID string) ([]entity.Task, error) {
	var tasks []entity.Task
	err := r.db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Order("created_at ASC").
		Find(&tasks).Error
	return tasks, err
}

// ListByProject 获取项目全部任务
func (r *TaskRepository) ListByProject(ctx context.Context, projectID string) ([]entity.Task, error) {
	var tasks []entity.Task
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&tasks).Error
	return tasks, err
}

// UpdateProgress 更新任务进度
// 软规则：0 → not_started，100 → completed并记完成时间
func (r *TaskRepository) UpdateProgress(ctx context.Context, taskID string, progress int) error {
	updates := map[string]interface{}{
		"progress":   progress,
		"updated_at": time.Now(),
	}

	if progress <= 0 {
		updates["progress"] = 0
		updates["status"] = entity.TaskStatusNotStarted
	} else if progress >= 100 {
		updates["progress"] = 100
		updates["status"] = entity.TaskStatusCompleted
		updates["completed_at"] = time.Now()
	} else {
		updates["status"] = entity.TaskStatusInProgress
	}

	return r.db.WithContext(ctx).
		Model(&entity.Task{}).
		Where("id = ?", taskID).
		Updates(updates).Error
}

// ListOverdue 获取逾期任务
func (r *TaskRepository) ListOverdue(ctx context.Context, projectID string) ([]entity.Task, error) {
	var tasks []entity.Task
	query := r.db.WithContext(ctx).
		Where("due_date < ? AND status NOT IN ?", time.Now(), []string{entity.TaskStatusCompleted, entity.TaskStatusCancelled})

	if projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}

	err := query.Order("due_date ASC").Find(&tasks).Error
	return tasks, err
}

// CountByActivities 一批活动下的任务总数（删除影响评估用）
func (r *TaskRepository) CountByActivities(ctx context.Context, activityIDs []string) (int64, error) {
	var count int64
	if len(activityIDs) == 0 {
		return 0, nil
	}
	err := r.db.WithContext(ctx).
		Model(&entity.Task{}).
		Where("activity_id IN ?", activityIDs).
		Count(&count).Error
	return count, err
}

// AddActualHours 累加实际工时（工时审批通过后回写）
func (r *TaskRepository) AddActualHours(ctx context.Context, taskID string, hours float64) error {
	return r.db.WithContext(ctx).
		Model(&entity.Task{}).
		Where("id = ?", taskID).
		Update("actual_hours", gorm.Expr("actual_hours + ?", hours)).Error
}
