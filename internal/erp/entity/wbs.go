package entity

import (
	"time"
)

// WBSNode 工作分解结构节点
// 编码随树层级派生：根为 {projectCode}.{NN}，子级为 {parentCode}.{NN}
type WBSNode struct {
	ID            string  `json:"id" gorm:"primaryKey;size:32"`
	ProjectID     string  `json:"project_id" gorm:"size:32;not null;index;uniqueIndex:uk_wbs_project_code,priority:1"`
	ParentID      *string `json:"parent_id" gorm:"size:32;index"` // null 表示根节点
	Code          string  `json:"code" gorm:"size:128;not null;uniqueIndex:uk_wbs_project_code,priority:2"`
	Name          string  `json:"name" gorm:"size:256;not null"`
	NodeType      string  `json:"node_type" gorm:"size:16;not null;default:phase"`
	Level         int     `json:"level" gorm:"not null;default:1"` // 根=1，逐层+1
	SequenceOrder int     `json:"sequence_order" gorm:"not null;default:1"`
	Description   string  `json:"description" gorm:"type:text"`

	// 成本汇总（派生值，由汇总任务重算，非权威数据）
	DirectCost   float64 `json:"direct_cost" gorm:"type:decimal(18,2);default:0"`
	IndirectCost float64 `json:"indirect_cost" gorm:"type:decimal(18,2);default:0"`

	CreatedBy string    `json:"created_by" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (WBSNode) TableName() string {
	return "wbs_nodes"
}

// WBSNodeType 节点类型
const (
	WBSNodeTypeProject     = "project"
	WBSNodeTypePhase       = "phase"
	WBSNodeTypeDeliverable = "deliverable"
	WBSNodeTypeWorkPackage = "work_package"
)
