package service

import (
	"context"
	"errors"
	"testing"

	"github.com/santoshrchetty/construction-erp/internal/erp/repository"
	"github.com/santoshrchetty/construction-erp/internal/erp/testutil"
	"gorm.io/gorm"
)

func setupServiceTest(t *testing.T) (*Services, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	return NewServices(repos), db
}

func TestTimesheetApproveAccumulatesLaborCost(t *testing.T) {
	svcs, db := setupServiceTest(t)
	ctx := context.Background()
	testutil.SeedProject(t, db, "proj-001", "AIR-24-01", "Airport Terminal")
	testutil.SeedWBSNode(t, db, "node-001", "proj-001", "AIR-24-01.01", nil, 1)
	testutil.SeedActivity(t, db, "act-001", "proj-001", "node-001", "AIR-24-01.01-A01")

	submit := func(hours, rate float64) string {
		t.Helper()
		entry, err := svcs.Timesheet.SubmitEntry(ctx, &SubmitEntryInput{
			ActivityID: "act-001",
			WorkDate:   "2024-03-04",
			Hours:      hours,
			HourlyRate: rate,
		}, "worker-001")
		if err != nil {
			t.Fatalf("Failed to submit entry: %v", err)
		}
		return entry.ID
	}

	first := submit(8, 50)
	second := submit(4, 60)

	if _, err := svcs.Timesheet.Approve(ctx, first, "approver-001"); err != nil {
		t.Fatalf("Failed to approve first entry: %v", err)
	}
	if _, err := svcs.Timesheet.Approve(ctx, second, "approver-001"); err != nil {
		t.Fatalf("Failed to approve second entry: %v", err)
	}

	// 两笔审批的人工成本都累到活动上：8*50 + 4*60
	activity, err := svcs.Activity.GetActivity(ctx, "act-001")
	if err != nil {
		t.Fatalf("Failed to load activity: %v", err)
	}
	if activity.LaborCost != 640 {
		t.Errorf("Expected labor_cost 640, got %v", activity.LaborCost)
	}
}

func TestTimesheetSelfApprovalRejected(t *testing.T) {
	svcs, db := setupServiceTest(t)
	ctx := context.Background()
	testutil.SeedProject(t, db, "proj-001", "AIR-24-01", "Airport Terminal")
	testutil.SeedWBSNode(t, db, "node-001", "proj-001", "AIR-24-01.01", nil, 1)
	testutil.SeedActivity(t, db, "act-001", "proj-001", "node-001", "AIR-24-01.01-A01")

	entry, err := svcs.Timesheet.SubmitEntry(ctx, &SubmitEntryInput{
		ActivityID: "act-001",
		WorkDate:   "2024-03-04",
		Hours:      8,
		HourlyRate: 50,
	}, "worker-001")
	if err != nil {
		t.Fatalf("Failed to submit entry: %v", err)
	}

	_, err = svcs.Timesheet.Approve(ctx, entry.ID, "worker-001")
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("Expected ErrInvalid for self-approval, got %v", err)
	}
}
