package entity

import (
	"time"
)

// Task 任务：活动下的执行项，checklist_item 区分简单清单项和跟踪任务
type Task struct {
	ID             string     `json:"id" gorm:"primaryKey;size:32"`
	ActivityID     string     `json:"activity_id" gorm:"size:32;not null;index"`
	ProjectID      string     `json:"project_id" gorm:"size:32;not null;index"`
	Name           string     `json:"name" gorm:"size:256;not null"`
	Status         string     `json:"status" gorm:"size:16;not null;default:not_started"`
	Priority       string     `json:"priority" gorm:"size:16;not null;default:medium"`
	Progress       int        `json:"progress" gorm:"not null;default:0"`
	ChecklistItem  bool       `json:"checklist_item" gorm:"default:false"`
	DueDate        *time.Time `json:"due_date" gorm:"type:date"`
	EstimatedHours float64    `json:"estimated_hours" gorm:"type:decimal(8,2)"`
	ActualHours    float64    `json:"actual_hours" gorm:"type:decimal(8,2)"`
	CompletedAt    *time.Time `json:"completed_at"`
	AssigneeID     *string    `json:"assignee_id" gorm:"size:32"`
	CreatedBy      string     `json:"created_by" gorm:"size:32"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}

// TaskStatus 任务状态
const (
	TaskStatusNotStarted = "not_started"
	TaskStatusInProgress = "in_progress"
	TaskStatusOnHold     = "on_hold"
	TaskStatusCompleted  = "completed"
	TaskStatusCancelled  = "cancelled"
)

// TaskPriority 任务优先级
const (
	TaskPriorityLow      = "low"
	TaskPriorityMedium   = "medium"
	TaskPriorityHigh     = "high"
	TaskPriorityCritical = "critical"
)
