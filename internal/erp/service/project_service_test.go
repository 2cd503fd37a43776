package service

import (
	"context"
	"testing"

	"github.com/santoshrchetty/construction-erp/internal/erp/entity"
	"github.com/santoshrchetty/construction-erp/internal/erp/testutil"
)

func TestRecalculateProgressWeighted(t *testing.T) {
	svcs, db := setupServiceTest(t)
	ctx := context.Background()
	testutil.SeedProject(t, db, "proj-001", "AIR-24-01", "Airport Terminal")
	testutil.SeedWBSNode(t, db, "node-001", "proj-001", "AIR-24-01.01", nil, 1)
	testutil.SeedActivity(t, db, "act-001", "proj-001", "node-001", "AIR-24-01.01-A01")
	testutil.SeedActivity(t, db, "act-002", "proj-001", "node-001", "AIR-24-01.01-A02")

	// 预算 3:1，进度 100 和 0，加权后 75
	db.Model(&entity.Activity{}).Where("id = ?", "act-001").
		Updates(map[string]interface{}{"progress": 100, "budget_amount": 300})
	db.Model(&entity.Activity{}).Where("id = ?", "act-002").
		Updates(map[string]interface{}{"progress": 0, "budget_amount": 100})

	progress, err := svcs.Project.RecalculateProgress(ctx, "proj-001")
	if err != nil {
		t.Fatalf("Failed to recalculate: %v", err)
	}
	if progress != 75 {
		t.Errorf("Expected progress 75, got %d", progress)
	}
}

func TestRecalculateProgressZeroWhenNoActivities(t *testing.T) {
	svcs, db := setupServiceTest(t)
	ctx := context.Background()
	testutil.SeedProject(t, db, "proj-001", "AIR-24-01", "Airport Terminal")
	testutil.SeedWBSNode(t, db, "node-001", "proj-001", "AIR-24-01.01", nil, 1)
	testutil.SeedActivity(t, db, "act-001", "proj-001", "node-001", "AIR-24-01.01-A01")

	db.Model(&entity.Activity{}).Where("id = ?", "act-001").Update("progress", 100)
	if _, err := svcs.Project.RecalculateProgress(ctx, "proj-001"); err != nil {
		t.Fatalf("Failed to recalculate: %v", err)
	}

	// 最后一个活动删掉后重算必须把项目进度写回0
	if err := svcs.Activity.DeleteActivity(ctx, "act-001"); err != nil {
		t.Fatalf("Failed to delete activity: %v", err)
	}
	progress, err := svcs.Project.RecalculateProgress(ctx, "proj-001")
	if err != nil {
		t.Fatalf("Failed to recalculate: %v", err)
	}
	if progress != 0 {
		t.Errorf("Expected progress 0, got %d", progress)
	}

	project, err := svcs.Project.GetProject(ctx, "proj-001")
	if err != nil {
		t.Fatalf("Failed to load project: %v", err)
	}
	if project.Progress != 0 {
		t.Errorf("Expected stored progress 0, got %d", project.Progress)
	}
}
