// Package treestate 管理项目树的前端UI状态：展开/折叠与选中
// UI状态与树数据分离存储，树重建不影响用户的展开记录
package treestate

// SelectionKind 选中对象类型
const (
	KindNode     = "node"
	KindActivity = "activity"
	KindTask     = "task"
)

// Selection 当前选中项；Editing 标记行内编辑中
type Selection struct {
	Kind    string `json:"kind"`
	ID      string `json:"id"`
	Editing bool   `json:"editing"`
}

// State 一个用户在一个项目树上的全部UI状态
type State struct {
	Nodes      map[string]bool `json:"nodes"`      // 节点ID → 子节点展开
	Activities map[string]bool `json:"activities"` // 节点ID → 活动列表展开
	Tasks      map[string]bool `json:"tasks"`      // 活动ID → 任务列表展开
	Selection  *Selection      `json:"selection,omitempty"`
}

// NewState 全折叠、无选中的初始状态
func NewState() *State {
	return &State{
		Nodes:      map[string]bool{},
		Activities: map[string]bool{},
		Tasks:      map[string]bool{},
	}
}

// ToggleNode 翻转节点子级展开，返回新值
func (s *State) ToggleNode(nodeID string) bool {
	s.Nodes[nodeID] = !s.Nodes[nodeID]
	if !s.Nodes[nodeID] {
		delete(s.Nodes, nodeID) // 折叠即默认态，不留脏记录
	}
	return s.Nodes[nodeID]
}

// ToggleActivities 翻转节点的活动列表展开，返回新值
func (s *State) ToggleActivities(nodeID string) bool {
	s.Activities[nodeID] = !s.Activities[nodeID]
	if !s.Activities[nodeID] {
		delete(s.Activities, nodeID)
	}
	return s.Activities[nodeID]
}

// ToggleTasks 翻转活动的任务列表展开，返回新值
func (s *State) ToggleTasks(activityID string) bool {
	s.Tasks[activityID] = !s.Tasks[activityID]
	if !s.Tasks[activityID] {
		delete(s.Tasks, activityID)
	}
	return s.Tasks[activityID]
}

// Select 选中对象；换选中项时编辑标记清掉，避免编辑框跟错对象
func (s *State) Select(kind, id string) {
	if s.Selection != nil && s.Selection.Kind == kind && s.Selection.ID == id {
		return
	}
	s.Selection = &Selection{Kind: kind, ID: id}
}

// ClearSelection 取消选中
func (s *State) ClearSelection() {
	s.Selection = nil
}

// SetEditing 进入/退出行内编辑，没有选中项时是空操作
func (s *State) SetEditing(editing bool) {
	if s.Selection == nil {
		return
	}
	s.Selection.Editing = editing
}

// Prune 清掉已删除对象的残留状态（级联删除后调用）
func (s *State) Prune(nodeIDs, activityIDs []string) {
	for _, id := range nodeIDs {
		delete(s.Nodes, id)
		delete(s.Activities, id)
		if s.Selection != nil && s.Selection.Kind == KindNode && s.Selection.ID == id {
			s.Selection = nil
		}
	}
	for _, id := range activityIDs {
		delete(s.Tasks, id)
		if s.Selection != nil && s.Selection.Kind == KindActivity && s.Selection.ID == id {
			s.Selection = nil
		}
	}
}
