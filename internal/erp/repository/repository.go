package repository

import (
	"errors"

	"gorm.io/gorm"
)

// 错误定义
var (
	ErrNotFound = errors.New("record not found")
	// ErrInsufficientStock 出库量超过在手量
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Repositories 仓库集合
type Repositories struct {
	Project   *ProjectRepository
	WBS       *WBSRepository
	Activity  *ActivityRepository
	Task      *TaskRepository
	Supplier  *SupplierRepository
	PO        *PORepository
	Inventory *InventoryRepository
	Timesheet *TimesheetRepository
	Analytics *AnalyticsRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Project:   NewProjectRepository(db),
		WBS:       NewWBSRepository(db),
		Activity:  NewActivityRepository(db),
		Task:      NewTaskRepository(db),
		Supplier:  NewSupplierRepository(db),
		PO:        NewPORepository(db),
		Inventory: NewInventoryRepository(db),
		Timesheet: NewTimesheetRepository(db),
		Analytics: NewAnalyticsRepository(db),
	}
}
