package service

import (
	"context"
	"errors"
	"testing"

	"github.com/santoshrchetty/construction-erp/internal/erp/repository"
	"github.com/santoshrchetty/construction-erp/internal/erp/testutil"
)

func TestInventoryIssueAccumulatesMaterialCost(t *testing.T) {
	svcs, db := setupServiceTest(t)
	ctx := context.Background()
	testutil.SeedProject(t, db, "proj-001", "AIR-24-01", "Airport Terminal")
	testutil.SeedWBSNode(t, db, "node-001", "proj-001", "AIR-24-01.01", nil, 1)
	testutil.SeedActivity(t, db, "act-001", "proj-001", "node-001", "AIR-24-01.01-A01")

	item, err := svcs.Inventory.CreateItem(ctx, &CreateItemInput{
		Code:     "CEM-001",
		Name:     "Cement 50kg",
		Unit:     "bag",
		UnitCost: 25,
	})
	if err != nil {
		t.Fatalf("Failed to create item: %v", err)
	}
	if _, err := svcs.Inventory.Adjust(ctx, &AdjustInput{StoreItemID: item.ID, Quantity: 100}, "keeper-001"); err != nil {
		t.Fatalf("Failed to adjust stock: %v", err)
	}

	issue := func(qty float64) {
		t.Helper()
		if _, err := svcs.Inventory.IssueToActivity(ctx, &IssueInput{
			StoreItemID: item.ID,
			ActivityID:  "act-001",
			Quantity:    qty,
		}, "keeper-001"); err != nil {
			t.Fatalf("Failed to issue %v: %v", qty, err)
		}
	}
	issue(4)
	issue(6)

	// 两次领料的材料成本都累到活动上：(4+6)*25
	activity, err := svcs.Activity.GetActivity(ctx, "act-001")
	if err != nil {
		t.Fatalf("Failed to load activity: %v", err)
	}
	if activity.MaterialCost != 250 {
		t.Errorf("Expected material_cost 250, got %v", activity.MaterialCost)
	}
}

func TestInventoryIssueInsufficientStock(t *testing.T) {
	svcs, db := setupServiceTest(t)
	ctx := context.Background()
	testutil.SeedProject(t, db, "proj-001", "AIR-24-01", "Airport Terminal")
	testutil.SeedWBSNode(t, db, "node-001", "proj-001", "AIR-24-01.01", nil, 1)
	testutil.SeedActivity(t, db, "act-001", "proj-001", "node-001", "AIR-24-01.01-A01")

	item, err := svcs.Inventory.CreateItem(ctx, &CreateItemInput{
		Code:     "STL-001",
		Name:     "Steel Rod",
		Unit:     "ton",
		UnitCost: 900,
	})
	if err != nil {
		t.Fatalf("Failed to create item: %v", err)
	}

	_, err = svcs.Inventory.IssueToActivity(ctx, &IssueInput{
		StoreItemID: item.ID,
		ActivityID:  "act-001",
		Quantity:    5,
	}, "keeper-001")
	if !errors.Is(err, repository.ErrInsufficientStock) {
		t.Errorf("Expected ErrInsufficientStock, got %v", err)
	}

	// 出库失败不能污染活动成本
	activity, err := svcs.Activity.GetActivity(ctx, "act-001")
	if err != nil {
		t.Fatalf("Failed to load activity: %v", err)
	}
	if activity.MaterialCost != 0 {
		t.Errorf("Expected material_cost 0 after failed issue, got %v", activity.MaterialCost)
	}
}
