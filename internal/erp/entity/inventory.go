package entity

import "time"

// StoreItem 库存物料
type StoreItem struct {
	ID           string  `json:"id" gorm:"primaryKey;size:32"`
	Code         string  `json:"code" gorm:"size:32;uniqueIndex;not null"`
	Name         string  `json:"name" gorm:"size:200;not null"`
	Category     string  `json:"category" gorm:"size:50"` // cement/steel/aggregate/electrical/...
	Unit         string  `json:"unit" gorm:"size:16;default:nos"`
	QuantityHand float64 `json:"quantity_on_hand" gorm:"column:quantity_on_hand;type:decimal(15,3);default:0"`
	ReorderLevel float64 `json:"reorder_level" gorm:"type:decimal(15,3);default:0"`
	UnitCost     float64 `json:"unit_cost" gorm:"type:decimal(15,4);default:0"`
	Location     string  `json:"location" gorm:"size:100"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StoreItem) TableName() string {
	return "store_items"
}

// StockTransaction 出入库流水
// receipt=入库(采购收货)，issue=出库(领用到活动)，adjustment=盘点调整
type StockTransaction struct {
	ID          string  `json:"id" gorm:"primaryKey;size:32"`
	StoreItemID string  `json:"store_item_id" gorm:"size:32;not null;index"`
	ProjectID   *string `json:"project_id" gorm:"size:32;index"`
	ActivityID  *string `json:"activity_id" gorm:"size:32;index"` // 领用成本归集到活动
	POID        *string `json:"po_id" gorm:"size:32"`
	Type        string  `json:"type" gorm:"size:16;not null"`
	Quantity    float64 `json:"quantity" gorm:"type:decimal(15,3);not null"`
	UnitCost    float64 `json:"unit_cost" gorm:"type:decimal(15,4)"`
	Notes       string  `json:"notes" gorm:"size:500"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
}

func (StockTransaction) TableName() string {
	return "stock_transactions"
}

// 流水类型
const (
	StockTxnReceipt    = "receipt"
	StockTxnIssue      = "issue"
	StockTxnAdjustment = "adjustment"
)
