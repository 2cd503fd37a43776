package entity

// 财务分析结果行：由数据库端命名函数计算返回（project_evm / project_ctc / project_margin），
// 本服务只做取数和展示整形，不在应用层重算

// EVMSummary 挣值分析
type EVMSummary struct {
	ProjectID         string  `json:"project_id" gorm:"column:project_id"`
	PlannedValue      float64 `json:"planned_value" gorm:"column:planned_value"`
	EarnedValue       float64 `json:"earned_value" gorm:"column:earned_value"`
	ActualCost        float64 `json:"actual_cost" gorm:"column:actual_cost"`
	ScheduleVariance  float64 `json:"schedule_variance" gorm:"column:schedule_variance"`
	CostVariance      float64 `json:"cost_variance" gorm:"column:cost_variance"`
	SPI               float64 `json:"spi" gorm:"column:spi"`
	CPI               float64 `json:"cpi" gorm:"column:cpi"`
	EstimateAtComplete float64 `json:"estimate_at_complete" gorm:"column:estimate_at_complete"`
}

// CTCSummary 完工尚需成本
type CTCSummary struct {
	ProjectID       string  `json:"project_id" gorm:"column:project_id"`
	BudgetTotal     float64 `json:"budget_total" gorm:"column:budget_total"`
	CommittedCost   float64 `json:"committed_cost" gorm:"column:committed_cost"`
	ActualCost      float64 `json:"actual_cost" gorm:"column:actual_cost"`
	CostToComplete  float64 `json:"cost_to_complete" gorm:"column:cost_to_complete"`
	ForecastAtEnd   float64 `json:"forecast_at_end" gorm:"column:forecast_at_end"`
	BudgetVariance  float64 `json:"budget_variance" gorm:"column:budget_variance"`
}

// MarginSummary 毛利分析
type MarginSummary struct {
	ProjectID     string  `json:"project_id" gorm:"column:project_id"`
	ContractValue float64 `json:"contract_value" gorm:"column:contract_value"`
	CostIncurred  float64 `json:"cost_incurred" gorm:"column:cost_incurred"`
	CostForecast  float64 `json:"cost_forecast" gorm:"column:cost_forecast"`
	MarginAmount  float64 `json:"margin_amount" gorm:"column:margin_amount"`
	MarginPercent float64 `json:"margin_percent" gorm:"column:margin_percent"`
}
