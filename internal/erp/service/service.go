package service

import (
	"github.com/santoshrchetty/construction-erp/internal/erp/repository"
)

// Services 服务集合
type Services struct {
	Project     *ProjectService
	WBS         *WBSService
	Activity    *ActivityService
	Task        *TaskService
	Procurement *ProcurementService
	Inventory   *InventoryService
	Timesheet   *TimesheetService
	Analytics   *AnalyticsService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories) *Services {
	return &Services{
		Project:     NewProjectService(repos.Project, repos.Activity),
		WBS:         NewWBSService(repos.WBS, repos.Activity, repos.Task, repos.Project),
		Activity:    NewActivityService(repos.Activity, repos.WBS, repos.Project),
		Task:        NewTaskService(repos.Task, repos.Activity),
		Procurement: NewProcurementService(repos.Supplier, repos.PO, repos.Inventory, repos.Activity),
		Inventory:   NewInventoryService(repos.Inventory, repos.Activity),
		Timesheet:   NewTimesheetService(repos.Timesheet, repos.Activity, repos.Task),
		Analytics:   NewAnalyticsService(repos.Analytics, repos.Project, repos.Activity, repos.Inventory, repos.Timesheet),
	}
}
