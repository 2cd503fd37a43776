package entity

import (
	"time"
)

// Activity 作业活动：挂在WBS节点下的可调度工作单元
// 编码为 {wbsNodeCode}-A{NN}
type Activity struct {
	ID           string `json:"id" gorm:"primaryKey;size:32"`
	ProjectID    string `json:"project_id" gorm:"size:32;not null;index;uniqueIndex:uk_activity_project_code,priority:1"`
	WBSNodeID    string `json:"wbs_node_id" gorm:"size:32;not null;index"`
	Code         string `json:"code" gorm:"size:128;not null;uniqueIndex:uk_activity_project_code,priority:2"`
	Name         string `json:"name" gorm:"size:256;not null"`
	ActivityType string `json:"activity_type" gorm:"size:16;not null;default:INTERNAL"`
	Status       string `json:"status" gorm:"size:16;not null;default:not_started"`

	// 计划与实际
	PlannedStart    *time.Time `json:"planned_start" gorm:"type:date"`
	PlannedDuration int        `json:"planned_duration" gorm:"default:0"` // 工作日
	ActualStart     *time.Time `json:"actual_start" gorm:"type:date"`
	ActualDuration  int        `json:"actual_duration" gorm:"default:0"`
	Progress        int        `json:"progress" gorm:"not null;default:0"` // 0-100

	// 预算与五类直接成本
	BudgetAmount    float64 `json:"budget_amount" gorm:"type:decimal(18,2);default:0"`
	LaborCost       float64 `json:"labor_cost" gorm:"type:decimal(18,2);default:0"`
	MaterialCost    float64 `json:"material_cost" gorm:"type:decimal(18,2);default:0"`
	EquipmentCost   float64 `json:"equipment_cost" gorm:"type:decimal(18,2);default:0"`
	SubcontractCost float64 `json:"subcontract_cost" gorm:"type:decimal(18,2);default:0"`
	ExpenseCost     float64 `json:"expense_cost" gorm:"type:decimal(18,2);default:0"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联
	Tasks        []Task               `json:"tasks,omitempty" gorm:"foreignKey:ActivityID"`
	Dependencies []ActivityDependency `json:"dependencies,omitempty" gorm:"-"` // 非数据库字段，手动加载
}

func (Activity) TableName() string {
	return "activities"
}

// ActivityDependency 活动依赖边
// 类型和延迟天数按 (activity, predecessor) 边存储，而不是挂在活动上共享
type ActivityDependency struct {
	ID             string    `json:"id" gorm:"primaryKey;size:32"`
	ActivityID     string    `json:"activity_id" gorm:"size:32;not null;index;uniqueIndex:uk_activity_pred,priority:1"`
	PredecessorID  string    `json:"predecessor_id" gorm:"size:32;not null;index;uniqueIndex:uk_activity_pred,priority:2"`
	DependencyType string    `json:"dependency_type" gorm:"size:4;not null;default:FS"`
	LagDays        int       `json:"lag_days" gorm:"default:0"`
	CreatedAt      time.Time `json:"created_at"`

	// 前置活动当前状态，非数据库字段
	PredecessorStatus string `json:"predecessor_status,omitempty" gorm:"-"`
}

func (ActivityDependency) TableName() string {
	return "activity_dependencies"
}

// ActivityType 活动类型（决定适用的成本字段）
const (
	ActivityTypeInternal = "INTERNAL"
	ActivityTypeExternal = "EXTERNAL"
	ActivityTypeService  = "SERVICE"
)

// ActivityStatus 活动状态
const (
	ActivityStatusNotStarted = "not_started"
	ActivityStatusInProgress = "in_progress"
	ActivityStatusOnHold     = "on_hold"
	ActivityStatusCompleted  = "completed"
	ActivityStatusCancelled  = "cancelled"
)

// DependencyType 依赖类型
const (
	DependencyFinishToStart  = "FS"
	DependencyStartToStart   = "SS"
	DependencyFinishToFinish = "FF"
	DependencyStartToFinish  = "SF"
)

// ValidDependencyType 依赖类型是否合法
func ValidDependencyType(t string) bool {
	switch t {
	case DependencyFinishToStart, DependencyStartToStart,
		DependencyFinishToFinish, DependencyStartToFinish:
		return true
	}
	return false
}

// DirectCostTotal 五类直接成本合计
func (a *Activity) DirectCostTotal() float64 {
	return a.LaborCost + a.MaterialCost + a.EquipmentCost + a.SubcontractCost + a.ExpenseCost
}
