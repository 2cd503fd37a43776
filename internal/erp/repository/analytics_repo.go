package repository

import (
	"context"

	"github.com/santoshrchetty/construction-erp/internal/erp/entity"
	"gorm.io/gorm"
)

// AnalyticsRepository 项目分析仓库
// EVM/CTC/利润率都由数据库函数计算，这里只负责调用取数
type AnalyticsRepository struct {
	db *gorm.DB
}

// NewAnalyticsRepository 创建项目分析仓库
func NewAnalyticsRepository(db *gorm.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// ProjectEVM 挣值分析（PV/EV/AC/SPI/CPI）
func (r *AnalyticsRepository) ProjectEVM(ctx context.Context, projectID string) (*entity.EVMSummary, error) {
	var summary entity.EVMSummary
	err := r.db.WithContext(ctx).
		Raw("SELECT * FROM project_evm(?)", projectID).
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// ProjectCTC 完工尚需成本
func (r *AnalyticsRepository) ProjectCTC(ctx context.Context, projectID string) (*entity.CTCSummary, error) {
	var summary entity.CTCSummary
	err := r.db.WithContext(ctx).
		Raw("SELECT * FROM project_ctc(?)", projectID).
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// ProjectMargin 项目利润率
func (r *AnalyticsRepository) ProjectMargin(ctx context.Context, projectID string) (*entity.MarginSummary, error) {
	var summary entity.MarginSummary
	err := r.db.WithContext(ctx).
		Raw("SELECT * FROM project_margin(?)", projectID).
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
