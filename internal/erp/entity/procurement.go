package entity

import "time"

// Supplier 供应商
type Supplier struct {
	ID       string `json:"id" gorm:"primaryKey;size:32"`
	Code     string `json:"code" gorm:"size:32;uniqueIndex;not null"`
	Name     string `json:"name" gorm:"size:200;not null"`
	Category string `json:"category" gorm:"size:50"` // material/equipment/subcontract/service
	Status   string `json:"status" gorm:"size:20;default:active"`
	Contact  string `json:"contact" gorm:"size:100"`
	Phone    string `json:"phone" gorm:"size:50"`
	Email    string `json:"email" gorm:"size:100"`
	Address  string `json:"address" gorm:"size:500"`
	Notes    string `json:"notes" gorm:"type:text"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Supplier) TableName() string {
	return "suppliers"
}

// PurchaseOrder 采购订单
type PurchaseOrder struct {
	ID         string  `json:"id" gorm:"primaryKey;size:32"`
	Code       string  `json:"code" gorm:"size:32;uniqueIndex;not null"` // PO-{yyyy}-{NNNN}
	ProjectID  string  `json:"project_id" gorm:"size:32;not null;index"`
	ActivityID *string `json:"activity_id" gorm:"size:32;index"` // 成本归集到活动
	SupplierID string  `json:"supplier_id" gorm:"size:32;not null;index"`
	Status     string  `json:"status" gorm:"size:20;default:draft"`

	TotalAmount float64 `json:"total_amount" gorm:"type:decimal(18,2);default:0"`
	Currency    string  `json:"currency" gorm:"size:10;default:INR"`

	ExpectedDate *time.Time `json:"expected_date" gorm:"type:date"`
	ReceivedDate *time.Time `json:"received_date" gorm:"type:date"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Notes     string    `json:"notes" gorm:"type:text"`

	// 关联
	Items    []POItem  `json:"items,omitempty" gorm:"foreignKey:POID"`
	Supplier *Supplier `json:"supplier,omitempty" gorm:"foreignKey:SupplierID"`
}

func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// POItem 采购订单行项
type POItem struct {
	ID          string   `json:"id" gorm:"primaryKey;size:32"`
	POID        string   `json:"po_id" gorm:"size:32;not null;index"`
	StoreItemID *string  `json:"store_item_id" gorm:"size:32"` // 入库物料
	Description string   `json:"description" gorm:"size:500;not null"`
	Quantity    float64  `json:"quantity" gorm:"type:decimal(15,3);not null"`
	Unit        string   `json:"unit" gorm:"size:16;default:nos"`
	UnitPrice   float64  `json:"unit_price" gorm:"type:decimal(15,4)"`
	ReceivedQty float64  `json:"received_qty" gorm:"type:decimal(15,3);default:0"`
	LineTotal   *float64 `json:"line_total" gorm:"type:decimal(18,2)"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (POItem) TableName() string {
	return "purchase_order_items"
}

// PO状态
const (
	POStatusDraft     = "draft"
	POStatusApproved  = "approved"
	POStatusSent      = "sent"
	POStatusPartial   = "partial"
	POStatusReceived  = "received"
	POStatusCancelled = "cancelled"
)
