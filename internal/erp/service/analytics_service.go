package service

import (
	"context"

	"github.com/santoshrchetty/construction-erp/internal/erp/entity"
	"github.com/santoshrchetty/construction-erp/internal/erp/repository"
)

// AnalyticsService 项目分析服务：EVM、CTC、利润率
// 重计算都在数据库函数里做，服务层只负责校验项目和取数
type AnalyticsService struct {
	analyticsRepo *repository.AnalyticsRepository
	projectRepo   *repository.ProjectRepository
	activityRepo  *repository.ActivityRepository
	inventoryRepo *repository.InventoryRepository
	timesheetRepo *repository.TimesheetRepository
}

func NewAnalyticsService(
	analyticsRepo *repository.AnalyticsRepository,
	projectRepo *repository.ProjectRepository,
	activityRepo *repository.ActivityRepository,
	inventoryRepo *repository.InventoryRepository,
	timesheetRepo *repository.TimesheetRepository,
) *AnalyticsService {
	return &AnalyticsService{
		analyticsRepo: analyticsRepo,
		projectRepo:   projectRepo,
		activityRepo:  activityRepo,
		inventoryRepo: inventoryRepo,
		timesheetRepo: timesheetRepo,
	}
}

// ActivityCostBreakdown 活动成本明细：活动行上的累计桶 + 按流水重算的对照值
// sourced_* 从出入库流水和工时单重算，和桶值对不上说明回写漏了
type ActivityCostBreakdown struct {
	ActivityID          string  `json:"activity_id"`
	LaborCost           float64 `json:"labor_cost"`
	MaterialCost        float64 `json:"material_cost"`
	EquipmentCost       float64 `json:"equipment_cost"`
	SubcontractCost     float64 `json:"subcontract_cost"`
	ExpenseCost         float64 `json:"expense_cost"`
	TotalCost           float64 `json:"total_cost"`
	SourcedMaterialCost float64 `json:"sourced_material_cost"`
	SourcedLaborCost    float64 `json:"sourced_labor_cost"`
}

// ActivityCosts 活动成本明细与流水对账
func (s *AnalyticsService) ActivityCosts(ctx context.Context, activityID string) (*ActivityCostBreakdown, error) {
	activity, err := s.activityRepo.FindByID(ctx, activityID)
	if err != nil {
		return nil, err
	}

	issued, err := s.inventoryRepo.SumIssuedCostByActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}
	labor, err := s.timesheetRepo.SumApprovedCostByActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}

	return &ActivityCostBreakdown{
		ActivityID:          activity.ID,
		LaborCost:           activity.LaborCost,
		MaterialCost:        activity.MaterialCost,
		EquipmentCost:       activity.EquipmentCost,
		SubcontractCost:     activity.SubcontractCost,
		ExpenseCost:         activity.ExpenseCost,
		TotalCost:           activity.DirectCostTotal(),
		SourcedMaterialCost: issued,
		SourcedLaborCost:    labor,
	}, nil
}

// EVM 挣值分析
func (s *AnalyticsService) EVM(ctx context.Context, projectID string) (*entity.EVMSummary, error) {
	if _, err := s.projectRepo.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.analyticsRepo.ProjectEVM(ctx, projectID)
}

// CTC 完工尚需成本
func (s *AnalyticsService) CTC(ctx context.Context, projectID string) (*entity.CTCSummary, error) {
	if _, err := s.projectRepo.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.analyticsRepo.ProjectCTC(ctx, projectID)
}

// Margin 项目利润率
func (s *AnalyticsService) Margin(ctx context.Context, projectID string) (*entity.MarginSummary, error) {
	if _, err := s.projectRepo.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	return s.analyticsRepo.ProjectMargin(ctx, projectID)
}
