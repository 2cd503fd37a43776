package treestate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleNode(t *testing.T) {
	s := NewState()

	assert.True(t, s.ToggleNode("n1"))
	assert.True(t, s.Nodes["n1"])

	// 再翻一次回折叠，且不留记录
	assert.False(t, s.ToggleNode("n1"))
	_, ok := s.Nodes["n1"]
	assert.False(t, ok)
	assert.Empty(t, s.Nodes)
}

func TestToggleIndependentScopes(t *testing.T) {
	s := NewState()
	s.ToggleNode("n1")
	s.ToggleActivities("n1")
	s.ToggleTasks("a1")

	assert.True(t, s.Nodes["n1"])
	assert.True(t, s.Activities["n1"])
	assert.True(t, s.Tasks["a1"])

	// 三类展开互不影响
	s.ToggleActivities("n1")
	assert.True(t, s.Nodes["n1"])
	assert.Empty(t, s.Activities)
	assert.True(t, s.Tasks["a1"])
}

func TestSelect(t *testing.T) {
	s := NewState()
	s.Select(KindNode, "n1")
	require.NotNil(t, s.Selection)
	assert.Equal(t, KindNode, s.Selection.Kind)
	assert.Equal(t, "n1", s.Selection.ID)
	assert.False(t, s.Selection.Editing)

	// 换选中项时编辑标记清掉
	s.SetEditing(true)
	s.Select(KindActivity, "a1")
	assert.Equal(t, "a1", s.Selection.ID)
	assert.False(t, s.Selection.Editing)
}

func TestSelectSameTargetKeepsEditing(t *testing.T) {
	s := NewState()
	s.Select(KindTask, "t1")
	s.SetEditing(true)

	// 重复选同一对象是空操作，编辑状态不丢
	s.Select(KindTask, "t1")
	require.NotNil(t, s.Selection)
	assert.True(t, s.Selection.Editing)
}

func TestSetEditingWithoutSelection(t *testing.T) {
	s := NewState()
	s.SetEditing(true) // 没有选中项，不应panic也不应生效
	assert.Nil(t, s.Selection)
}

func TestClearSelection(t *testing.T) {
	s := NewState()
	s.Select(KindNode, "n1")
	s.ClearSelection()
	assert.Nil(t, s.Selection)
}

func TestPrune(t *testing.T) {
	s := NewState()
	s.ToggleNode("n1")
	s.ToggleNode("n2")
	s.ToggleActivities("n1")
	s.ToggleTasks("a1")
	s.ToggleTasks("a2")
	s.Select(KindNode, "n1")

	s.Prune([]string{"n1"}, []string{"a1"})

	_, ok := s.Nodes["n1"]
	assert.False(t, ok)
	assert.True(t, s.Nodes["n2"])
	assert.Empty(t, s.Activities)
	_, ok = s.Tasks["a1"]
	assert.False(t, ok)
	assert.True(t, s.Tasks["a2"])

	// 被删对象的选中状态一并清掉
	assert.Nil(t, s.Selection)
}

func TestPruneKeepsUnrelatedSelection(t *testing.T) {
	s := NewState()
	s.Select(KindActivity, "a9")
	s.Prune([]string{"n1"}, []string{"a1"})
	require.NotNil(t, s.Selection)
	assert.Equal(t, "a9", s.Selection.ID)
}
