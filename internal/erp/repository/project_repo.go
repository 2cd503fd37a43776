package repository

import (
	"context"
	"errors"

	"github.com/santoshrchetty/construction-erp/internal/erp/entity"
	"gorm.io/gorm"
)

// ProjectRepository 项目仓库
type ProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository 创建项目仓库
func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// FindByID 根据ID查找项目
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*entity.Project, error) {
	var project entity.Project
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&project).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &project, nil
}

// Create 创建项目
func (r *ProjectRepository) Create(ctx context.Context, project *entity.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// Update 更新项目
func (r *ProjectRepository) Update(ctx context.Context, project *entity.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

// Delete 软删除项目
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&entity.Project{}).
		Where("id = ?", id).
		Update("deleted_at", gorm.Expr("NOW()")).Error
}

// FindAll 获取项目列表（分页）
func (r *ProjectRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]interface{}) ([]entity.Project, int64, error) {
	var projects []entity.Project
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Project{}).Where("deleted_at IS NULL")

	if keyword, ok := filters["keyword"].(string); ok && keyword != "" {
		query = query.Where("name ILIKE ? OR code ILIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}
	if status, ok := filters["status"].(string); ok && status != "" {
		query = query.Where("status = ?", status)
	}
	if category, ok := filters["category"].(string); ok && category != "" {
		query = query.Where("category = ?", category)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&projects).Error

	return projects, total, err
}

// ListCodesByPrefix 查询指定前缀的全部项目编码（编码分配用）
func (r *ProjectRepository) ListCodesByPrefix(ctx context.Context, prefix string) ([]string, error) {
	var codes []string
	err := r.db.WithContext(ctx).
		Model(&entity.Project{}).
		Where("code LIKE ?", prefix+"%").
		Pluck("code", &codes).Error
	return codes, err
}

// CodeExists 编码是否已存在
func (r *ProjectRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.Project{}).
		Where("code = ?", code).
		Count(&count).Error
	return count > 0, err
}

// UpdateProgress 更新项目进度（夜间汇总任务用）
func (r *ProjectRepository) UpdateProgress(ctx context.Context, id string, progress int) error {
	return r.db.WithContext(ctx).
		Model(&entity.Project{}).
		Where("id = ?", id).
		Update("progress", progress).Error
}

// ListActive 列出所有进行中项目（汇总任务用）
func (r *ProjectRepository) ListActive(ctx context.Context) ([]entity.Project, error) {
	var projects []entity.Project
	err := r.db.WithContext(ctx).
		Where("status IN ? AND deleted_at IS NULL", []string{entity.ProjectStatusPlanning, entity.ProjectStatusActive}).
		Find(&projects).Error
	return projects, err
}
