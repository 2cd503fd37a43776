package repository

import (
	"context"
	"errors"
	"time"

	"github.com/santoshrchetty/construction-erp/internal/erp/entity"
	"gorm.io/gorm"
)

// TimesheetRepository 工时仓库
type TimesheetRepository struct {
	db *gorm.DB
}

// NewTimesheetRepository 创建工时仓库
func NewTimesheetRepository(db *gorm.DB) *TimesheetRepository {
	return &TimesheetRepository{db: db}
}

// FindByID 根据ID查找工时记录
func (r *TimesheetRepository) FindByID(ctx context.Context, id string) (*entity.TimesheetEntry, error) {
	var entry entity.TimesheetEntry
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// Create 创建工时记录
func (r *TimesheetRepository) Create(ctx context.Context, entry *entity.TimesheetEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// Update 更新工时记录
func (r *TimesheetRepository) Update(ctx context.Context, entry *entity.TimesheetEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

// FindAll 查询工时记录（分页）
func (r *TimesheetRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.TimesheetEntry, int64, error) {
	var entries []entity.TimesheetEntry
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.TimesheetEntry{})

	if userID, ok := filters["user_id"].(string); ok && userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if activityID, ok := filters["activity_id"].(string); ok && activityID != "" {
		query = query.Where("activity_id = ?", activityID)
	}
	if projectID, ok := filters["project_id"].(string); ok && projectID != "" {
		query = query.Where("project_id = ?", projectID)
	}
	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("work_date DESC").Offset(offset).Limit(pageSize).Find(&entries).Error
	return entries, total, err
}

// SetStatus 审批流转（approved/rejected），只允许从 submitted 出发
func (r *TimesheetRepository) SetStatus(ctx context.Context, id, status, approverID string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&entity.TimesheetEntry{}).
		Where("id = ? AND status = ?", id, entity.TimesheetStatusSubmitted).
		Updates(map[string]interface{}{
			"status":      status,
			"approved_by": approverID,
			"approved_at": now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SumApprovedHoursByActivity 活动已审批工时合计
func (r *TimesheetRepository) SumApprovedHoursByActivity(ctx context.Context, activityID string) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&entity.TimesheetEntry{}).
		Select("COALESCE(SUM(hours), 0)").
		Where("activity_id = ? AND status = ?", activityID, entity.TimesheetStatusApproved).
		Scan(&total).Error
	return total, err
}

// SumApprovedCostByActivity 活动已审批人工成本合计
func (r *TimesheetRepository) SumApprovedCostByActivity(ctx context.Context, activityID string) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).
		Model(&entity.TimesheetEntry{}).
		Select("COALESCE(SUM(hours * hourly_rate), 0)").
		Where("activity_id = ? AND status = ?", activityID, entity.TimesheetStatusApproved).
		Scan(&total).Error
	return total, err
}
