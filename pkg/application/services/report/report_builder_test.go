package report

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vsinha/bomcost/pkg/application/services/rollup"
	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/infrastructure/repositories/memory"
	testhelpers "github.com/vsinha/bomcost/pkg/infrastructure/testing"
)

func recalculated(t *testing.T, repo *memory.Repository, bomID entities.BOMID) {
	t.Helper()
	if _, err := rollup.NewService(repo, nil, nil).Recalculate(context.Background(), bomID); err != nil {
		t.Fatalf("Recalculate failed: %v", err)
	}
}

func TestBuildReport_Gearbox(t *testing.T) {
	repo := testhelpers.BuildGearboxTestData()
	recalculated(t, repo, testhelpers.GearboxBOM)

	builder := NewBuilder(repo, nil)
	builder.SetClock(testhelpers.FixedClock)
	report, err := builder.BuildReport(context.Background(), testhelpers.GearboxBOM)
	if err != nil {
		t.Fatalf("BuildReport failed: %v", err)
	}

	if !report.OverallTotalCost.Equal(testhelpers.Dec("164.9")) {
		t.Errorf("Expected overall total 164.9, got %s", report.OverallTotalCost)
	}
	if report.TotalItems != 6 || report.ItemsWithCosts != 5 || report.StaleCosts != 0 {
		t.Errorf("Expected 6 items, 5 with costs, 0 stale, got %d/%d/%d",
			report.TotalItems, report.ItemsWithCosts, report.StaleCosts)
	}
	if !report.GeneratedAt.Equal(testhelpers.FixedTime) {
		t.Errorf("Expected GeneratedAt from clock, got %v", report.GeneratedAt)
	}

	expected := []struct {
		itemType entities.ItemType
		count    int
		raw      string
		process  string
		own      string
		total    string
	}{
		{entities.Assembly, 1, "0", "0", "12.5", "164.9"},
		{entities.SubAssembly, 1, "40", "0", "40", "125.25"},
		{entities.ChildPart, 2, "103.25", "2.4", "105.65", "112.4"},
		{entities.BOP, 2, "0", "0", "6.75", "6.75"},
	}
	if len(report.ByType) != len(expected) {
		t.Fatalf("Expected %d groups, got %d", len(expected), len(report.ByType))
	}
	for i, want := range expected {
		got := report.ByType[i]
		if got.ItemType != want.itemType || got.Count != want.count {
			t.Errorf("Group %d: expected %s x%d, got %s x%d", i, want.itemType, want.count, got.ItemType, got.Count)
		}
		for _, c := range []struct {
			name string
			want string
			got  decimal.Decimal
		}{
			{"raw", want.raw, got.RawMaterialCost},
			{"process", want.process, got.ProcessCost},
			{"own", want.own, got.OwnCost},
			{"total", want.total, got.TotalCost},
		} {
			if !c.got.Equal(testhelpers.Dec(c.want)) {
				t.Errorf("%s %s: expected %s, got %s", want.itemType, c.name, c.want, c.got)
			}
		}
	}

	wantLines := []struct {
		id    entities.ItemID
		depth int
	}{
		{"GEARBOX", 0}, {"HOUSING", 1}, {"HOUSING_CASTING", 2}, {"GASKET", 2}, {"SHAFT", 1}, {"BEARING", 2},
	}
	for i, want := range wantLines {
		line := report.Lines[i]
		if line.ItemID != want.id || line.Depth != want.depth {
			t.Errorf("Line %d: expected %s at depth %d, got %s at %d", i, want.id, want.depth, line.ItemID, line.Depth)
		}
	}
	if report.Lines[3].HasCost {
		t.Error("Expected GASKET line without cost")
	}
	if !report.Lines[0].IsRoot || report.Lines[1].IsRoot {
		t.Error("Expected only GEARBOX to be a root")
	}
	if report.IsComplete() {
		t.Error("Expected report to be incomplete")
	}
}

func TestBuildReport_RootsOnly(t *testing.T) {
	repo := testhelpers.BuildSimpleTestData()
	recalculated(t, repo, "SIMPLE")

	report, err := NewBuilder(repo, nil).BuildReport(context.Background(), "SIMPLE")
	if err != nil {
		t.Fatalf("BuildReport failed: %v", err)
	}
	// 150 for A; adding B's 50 again would double count
	if !report.OverallTotalCost.Equal(testhelpers.Dec("150")) {
		t.Errorf("Expected overall total 150, got %s", report.OverallTotalCost)
	}
	if !report.IsComplete() || report.NeedsRecalculation() {
		t.Error("Expected complete and fresh report")
	}
	if len(report.Banners()) != 0 {
		t.Errorf("Expected no banners, got %v", report.Banners())
	}
}

func TestBuildReport_EmptyBOM(t *testing.T) {
	report, err := NewBuilder(memory.NewRepository(0), nil).BuildReport(context.Background(), "NONE")
	if err != nil {
		t.Fatalf("BuildReport failed: %v", err)
	}
	if report.ByType == nil || len(report.ByType) != 0 {
		t.Errorf("Expected empty by-type groups, got %v", report.ByType)
	}

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if !strings.Contains(string(data), `"by_type":[]`) {
		t.Errorf("Expected by_type to encode as an empty list, got %s", data)
	}
	if !report.OverallTotalCost.IsZero() || report.TotalItems != 0 {
		t.Errorf("Expected zero totals, got %s over %d items", report.OverallTotalCost, report.TotalItems)
	}
}

func TestBuildReport_LinesCarryCosts(t *testing.T) {
	repo := testhelpers.BuildGearboxTestData()
	recalculated(t, repo, testhelpers.GearboxBOM)

	report, err := NewBuilder(repo, nil).BuildReport(context.Background(), testhelpers.GearboxBOM)
	if err != nil {
		t.Fatalf("BuildReport failed: %v", err)
	}
	for _, line := range report.Lines {
		if line.HasCost != (line.Cost != nil) {
			t.Errorf("%s: HasCost %v but cost %v", line.ItemID, line.HasCost, line.Cost)
		}
		if line.Item != nil && !line.Quantity.Equal(line.Item.Quantity) {
			t.Errorf("%s: expected quantity %s, got %s", line.ItemID, line.Item.Quantity, line.Quantity)
		}
	}
}

func TestBuildReport_StaleBeforeRecalculation(t *testing.T) {
	repo := testhelpers.BuildGearboxTestData()

	report, err := NewBuilder(repo, nil).BuildReport(context.Background(), testhelpers.GearboxBOM)
	if err != nil {
		t.Fatalf("BuildReport failed: %v", err)
	}
	if report.StaleCosts != 5 || !report.NeedsRecalculation() {
		t.Errorf("Expected 5 stale costs, got %d", report.StaleCosts)
	}
	if !report.OverallTotalCost.IsZero() {
		t.Errorf("Expected zero total before any recalculation, got %s", report.OverallTotalCost)
	}

	banners := report.Banners()
	if len(banners) != 2 || banners[0] != "5 items have stale costs" || banners[1] != "1 items have no cost data" {
		t.Errorf("Unexpected banners: %v", banners)
	}
}

func TestBuildReport_CycleWarning(t *testing.T) {
	repo := memory.NewRepository(3)
	_ = repo.LoadItems([]*entities.BomItem{
		{ID: "A", BOMID: "LOOP", ParentItemID: entities.ParentRef("B"), ItemType: entities.SubAssembly, Name: "A", Quantity: decimal.NewFromInt(1)},
		{ID: "B", BOMID: "LOOP", ParentItemID: entities.ParentRef("A"), ItemType: entities.SubAssembly, Name: "B", Quantity: decimal.NewFromInt(1)},
		{ID: "C", BOMID: "LOOP", ParentItemID: entities.ParentRef("C"), ItemType: entities.ChildPart, Name: "C", Quantity: decimal.NewFromInt(1)},
	})

	core, logs := observer.New(zapcore.WarnLevel)
	report, err := NewBuilder(repo, zap.New(core)).BuildReport(context.Background(), "LOOP")
	if err != nil {
		t.Fatalf("BuildReport failed: %v", err)
	}

	if len(report.Warnings) != 2 {
		t.Fatalf("Expected 2 warnings, got %v", report.Warnings)
	}
	if logs.Len() != 2 {
		t.Errorf("Expected 2 warning logs, got %d", logs.Len())
	}
	if report.TotalItems != 3 || report.ItemsWithCosts != 0 {
		t.Errorf("Expected 3 items without costs, got %d/%d", report.TotalItems, report.ItemsWithCosts)
	}

	found := false
	for _, banner := range report.Banners() {
		if banner == "cycle detected and auto-resolved at item B" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected cycle banner for B, got %v", report.Banners())
	}
}
