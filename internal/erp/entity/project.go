package entity

import (
	"time"
)

// Project 工程项目实体
type Project struct {
	ID          string     `json:"id" gorm:"primaryKey;size:32"`
	Code        string     `json:"code" gorm:"size:64;not null;uniqueIndex"` // 如 AIR-24-01
	Name        string     `json:"name" gorm:"size:256;not null"`
	Category    string     `json:"category" gorm:"size:32;not null"` // 决定编码前缀
	Status      string     `json:"status" gorm:"size:16;not null;default:planning"`
	Description string     `json:"description" gorm:"type:text"`
	Budget      float64    `json:"budget" gorm:"type:decimal(18,2);default:0"`
	Progress    int        `json:"progress" gorm:"not null;default:0"`
	StartDate   *time.Time `json:"start_date" gorm:"type:date"`
	PlannedEnd  *time.Time `json:"planned_end" gorm:"type:date"`
	ActualEnd   *time.Time `json:"actual_end" gorm:"type:date"`

	// 工作日历：星期掩码(0=周日..6=周六) + 节假日(ISO日期串)
	WorkingDays IntArray    `json:"working_days" gorm:"type:jsonb"`
	Holidays    StringArray `json:"holidays" gorm:"type:jsonb"`

	CreatedBy string     `json:"created_by" gorm:"size:32;not null"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at" gorm:"index"`

	// 关联
	WBSNodes []WBSNode `json:"wbs_nodes,omitempty" gorm:"foreignKey:ProjectID"`
}

func (Project) TableName() string {
	return "projects"
}

// ProjectStatus 项目状态
const (
	ProjectStatusPlanning  = "planning"
	ProjectStatusActive    = "active"
	ProjectStatusOnHold    = "on_hold"
	ProjectStatusCompleted = "completed"
	ProjectStatusCancelled = "cancelled"
)

// ProjectCategories 项目类别 → 编码前缀（固定表）
var ProjectCategories = map[string]string{
	"airport":     "AIR",
	"building":    "BLD",
	"bridge":      "BRG",
	"highway":     "HWY",
	"industrial":  "IND",
	"marine":      "MAR",
	"metro":       "MTR",
	"residential": "RES",
	"utilities":   "UTL",
	"water":       "WTR",
}

// CategoryPrefix 类别前缀；未知类别用 GEN 兜底
func CategoryPrefix(category string) string {
	if p, ok := ProjectCategories[category]; ok {
		return p
	}
	return "GEN"
}
