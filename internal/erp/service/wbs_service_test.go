package service

import (
	"testing"

	"github.com/santoshrchetty/construction-erp/internal/erp/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestAssembleTreeNesting(t *testing.T) {
	nodes := []entity.WBSNode{
		{ID: "n1", Code: "P.01", Level: 1},
		{ID: "n2", Code: "P.02", Level: 1},
		{ID: "n3", ParentID: strPtr("n1"), Code: "P.01.01", Level: 2},
		{ID: "n4", ParentID: strPtr("n3"), Code: "P.01.01.01", Level: 3},
	}
	activities := []entity.Activity{
		{ID: "a1", WBSNodeID: "n3", Code: "P.01.01-A01", Status: entity.ActivityStatusNotStarted},
		{ID: "a2", WBSNodeID: "n3", Code: "P.01.01-A02", Status: entity.ActivityStatusInProgress},
	}
	tasks := []entity.Task{
		{ID: "t1", ActivityID: "a1"},
		{ID: "t2", ActivityID: "a1"},
		{ID: "t3", ActivityID: "a2"},
	}

	roots := AssembleTree(nodes, activities, nil, tasks)
	require.Len(t, roots, 2)
	assert.Equal(t, "P.01", roots[0].Code)
	assert.Equal(t, "P.02", roots[1].Code)

	require.Len(t, roots[0].Children, 1)
	n3 := roots[0].Children[0]
	assert.Equal(t, "P.01.01", n3.Code)
	require.Len(t, n3.Children, 1)
	assert.Equal(t, "P.01.01.01", n3.Children[0].Code)

	require.Len(t, n3.Activities, 2)
	assert.Len(t, n3.Activities[0].Tasks, 2)
	assert.Len(t, n3.Activities[1].Tasks, 1)

	// 叶子节点是空切片而不是nil，前端不用判空
	assert.NotNil(t, roots[1].Children)
	assert.NotNil(t, roots[1].Activities)
	assert.Empty(t, roots[1].Children)
}

func TestAssembleTreeDependencies(t *testing.T) {
	nodes := []entity.WBSNode{{ID: "n1", Code: "P.01", Level: 1}}
	activities := []entity.Activity{
		{ID: "a1", WBSNodeID: "n1", Status: entity.ActivityStatusCompleted},
		{ID: "a2", WBSNodeID: "n1", Status: entity.ActivityStatusNotStarted},
	}
	deps := []entity.ActivityDependency{
		{ID: "d1", ActivityID: "a2", PredecessorID: "a1", DependencyType: entity.DependencyFinishToStart, LagDays: 2},
	}

	roots := AssembleTree(nodes, activities, deps, nil)
	require.Len(t, roots, 1)
	require.Len(t, roots[0].Activities, 2)

	a1 := roots[0].Activities[0]
	a2 := roots[0].Activities[1]
	assert.Empty(t, a1.Dependencies)
	assert.NotNil(t, a1.Dependencies)

	require.Len(t, a2.Dependencies, 1)
	d := a2.Dependencies[0]
	assert.Equal(t, "a1", d.PredecessorID)
	assert.Equal(t, entity.DependencyFinishToStart, d.DependencyType)
	assert.Equal(t, 2, d.LagDays)
	// 依赖边上带出前置活动的当前状态
	assert.Equal(t, entity.ActivityStatusCompleted, d.PredecessorStatus)
}

func TestAssembleTreeDropsOrphans(t *testing.T) {
	nodes := []entity.WBSNode{
		{ID: "n1", Code: "P.01", Level: 1},
		// 父节点不存在，整个孤儿子树丢弃
		{ID: "n9", ParentID: strPtr("gone"), Code: "P.09.01", Level: 2},
	}
	activities := []entity.Activity{
		{ID: "a1", WBSNodeID: "n1"},
		{ID: "a9", WBSNodeID: "missing-node"}, // 孤儿活动
	}
	tasks := []entity.Task{
		{ID: "t1", ActivityID: "a1"},
		{ID: "t9", ActivityID: "missing-activity"}, // 孤儿任务
	}

	roots := AssembleTree(nodes, activities, nil, tasks)
	require.Len(t, roots, 1)
	assert.Equal(t, "n1", roots[0].ID)
	assert.Empty(t, roots[0].Children)
	require.Len(t, roots[0].Activities, 1)
	assert.Equal(t, "a1", roots[0].Activities[0].ID)
	assert.Len(t, roots[0].Activities[0].Tasks, 1)
}

func TestAssembleTreePreservesInputOrder(t *testing.T) {
	// 入参已按 level ASC, sequence_order ASC 排好，组装不重排
	nodes := []entity.WBSNode{
		{ID: "n1", Code: "P.01", Level: 1, SequenceOrder: 1},
		{ID: "n2", Code: "P.02", Level: 1, SequenceOrder: 2},
		{ID: "n3", ParentID: strPtr("n1"), Code: "P.01.01", Level: 2, SequenceOrder: 1},
		{ID: "n4", ParentID: strPtr("n1"), Code: "P.01.02", Level: 2, SequenceOrder: 2},
	}

	roots := AssembleTree(nodes, nil, nil, nil)
	require.Len(t, roots, 2)
	assert.Equal(t, "n1", roots[0].ID)
	assert.Equal(t, "n2", roots[1].ID)
	require.Len(t, roots[0].Children, 2)
	assert.Equal(t, "P.01.01", roots[0].Children[0].Code)
	assert.Equal(t, "P.01.02", roots[0].Children[1].Code)
}

func TestAssembleTreeIdempotent(t *testing.T) {
	// 同一批行组装两次结果必须完全一致，组装不改输入也不依赖遍历顺序
	nodes := []entity.WBSNode{
		{ID: "n1", Code: "P.01", Level: 1, SequenceOrder: 1},
		{ID: "n2", ParentID: strPtr("n1"), Code: "P.01.01", Level: 2, SequenceOrder: 1},
		{ID: "n3", ParentID: strPtr("n1"), Code: "P.01.02", Level: 2, SequenceOrder: 2},
	}
	activities := []entity.Activity{
		{ID: "a1", WBSNodeID: "n2", Status: entity.ActivityStatusCompleted},
		{ID: "a2", WBSNodeID: "n2", Status: entity.ActivityStatusNotStarted},
	}
	deps := []entity.ActivityDependency{
		{ID: "d1", ActivityID: "a2", PredecessorID: "a1", DependencyType: entity.DependencyFinishToStart},
	}
	tasks := []entity.Task{
		{ID: "t1", ActivityID: "a1"},
		{ID: "t2", ActivityID: "a2"},
	}

	first := AssembleTree(nodes, activities, deps, tasks)
	second := AssembleTree(nodes, activities, deps, tasks)
	assert.Equal(t, first, second)
}

func TestAssembleTreeEmpty(t *testing.T) {
	roots := AssembleTree(nil, nil, nil, nil)
	assert.NotNil(t, roots)
	assert.Empty(t, roots)
}
