package service

import (
	"context"
	"errors"
	"testing"

	"github.com/santoshrchetty/construction-erp/internal/erp/repository"
	"github.com/santoshrchetty/construction-erp/internal/erp/testutil"
)

func TestActivityCostsReconciliation(t *testing.T) {
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
	if _, err := svcs.Inventory.Adjust(ctx, &AdjustInput{StoreItemID: item.ID, Quantity: 50}, "keeper-001"); err != nil {
		t.Fatalf("Failed to adjust stock: %v", err)
	}
	if _, err := svcs.Inventory.IssueToActivity(ctx, &IssueInput{
		StoreItemID: item.ID,
		ActivityID:  "act-001",
		Quantity:    8,
	}, "keeper-001"); err != nil {
		t.Fatalf("Failed to issue: %v", err)
	}

	entry, err := svcs.Timesheet.SubmitEntry(ctx, &SubmitEntryInput{
		ActivityID: "act-001",
		WorkDate:   "2024-03-04",
		Hours:      8,
		HourlyRate: 50,
	}, "worker-001")
	if err != nil {
		t.Fatalf("Failed to submit entry: %v", err)
	}
	if _, err := svcs.Timesheet.Approve(ctx, entry.ID, "approver-001"); err != nil {
		t.Fatalf("Failed to approve: %v", err)
	}

	breakdown, err := svcs.Analytics.ActivityCosts(ctx, "act-001")
	if err != nil {
		t.Fatalf("Failed to load cost breakdown: %v", err)
	}
	// 活动上的成本桶和按流水重算的对照值必须一致
	if breakdown.MaterialCost != 200 || breakdown.SourcedMaterialCost != 200 {
		t.Errorf("Expected material cost 200/200, got %v/%v", breakdown.MaterialCost, breakdown.SourcedMaterialCost)
	}
	if breakdown.LaborCost != 400 || breakdown.SourcedLaborCost != 400 {
		t.Errorf("Expected labor cost 400/400, got %v/%v", breakdown.LaborCost, breakdown.SourcedLaborCost)
	}
	if breakdown.TotalCost != 600 {
		t.Errorf("Expected total cost 600, got %v", breakdown.TotalCost)
	}
}

func TestActivityCostsUnknownActivity(t *testing.T) {
	svcs, _ := setupServiceTest(t)

	_, err := svcs.Analytics.ActivityCosts(context.Background(), "no-such")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
