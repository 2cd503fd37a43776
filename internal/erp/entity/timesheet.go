package entity

import "time"

// TimesheetEntry 工时记录：按人按天记到活动（可细到任务）
type TimesheetEntry struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	ProjectID  string    `json:"project_id" gorm:"size:32;not null;index"`
	ActivityID string    `json:"activity_id" gorm:"size:32;not null;index"`
	TaskID     *string   `json:"task_id" gorm:"size:32;index"`
	UserID     string    `json:"user_id" gorm:"size:32;not null;index"`
	WorkDate   time.Time `json:"work_date" gorm:"type:date;not null"`
	Hours      float64   `json:"hours" gorm:"type:decimal(5,2);not null"`
	HourlyRate float64   `json:"hourly_rate" gorm:"type:decimal(10,2);default:0"`
	Status     string    `json:"status" gorm:"size:16;not null;default:submitted"`
	Notes      string    `json:"notes" gorm:"size:500"`

	ApprovedBy *string    `json:"approved_by" gorm:"size:32"`
	ApprovedAt *time.Time `json:"approved_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (TimesheetEntry) TableName() string {
	return "timesheet_entries"
}

// 工时状态
const (
	TimesheetStatusSubmitted = "submitted"
	TimesheetStatusApproved  = "approved"
	TimesheetStatusRejected  = "rejected"
)
