package scenario

import (
	"context"
	"strings"
	"testing"

	"github.com/vsinha/bomcost/pkg/application/services/rollup"
	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/infrastructure/repositories/memory"
	testhelpers "github.com/vsinha/bomcost/pkg/infrastructure/testing"
)

func TestLoadFile_Gearbox(t *testing.T) {
	s, err := LoadFile("testdata/gearbox.yaml")
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if s.BOMID != testhelpers.GearboxBOM {
		t.Errorf("Expected bom %s, got %s", testhelpers.GearboxBOM, s.BOMID)
	}
	if len(s.Items) != 6 || len(s.Costs) != 5 || len(s.Operations) != 1 || len(s.Machines) != 2 {
		t.Fatalf("Expected 6/5/1/2 rows, got %d/%d/%d/%d", len(s.Items), len(s.Costs), len(s.Operations), len(s.Machines))
	}
	if s.Items[2].Type != entities.ChildPart || !s.Items[4].Quantity.Equal(testhelpers.Dec("2")) {
		t.Errorf("Unexpected item rows: %+v %+v", s.Items[2], s.Items[4])
	}
	if s.Items[5].PartNumber != "6205-2RS" {
		t.Errorf("Expected quoted part number to stay a string, got %q", s.Items[5].PartNumber)
	}
}

func TestApply_GearboxMatchesFixture(t *testing.T) {
	ctx := context.Background()
	s, err := LoadFile("testdata/gearbox.yaml")
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	repo := memory.NewRepository(8)
	summary, err := s.Apply(ctx, repo, testhelpers.FixedTime, true)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if summary.Items != 6 || summary.Costs != 5 || summary.Operations != 1 || summary.Machines != 2 {
		t.Errorf("Unexpected summary %+v", summary)
	}
	if !summary.Validation.IsValid() {
		t.Errorf("Expected a clean structure, got %v", summary.Validation.Errors)
	}

	bearing, _, _ := repo.GetCostRecord(ctx, "BEARING")
	if !bearing.ProcuredPartsCost.Equal(testhelpers.Dec("6.75")) {
		t.Errorf("Expected BEARING landed cost 6.75, got %s", bearing.ProcuredPartsCost)
	}
	gearbox, _, _ := repo.GetCostRecord(ctx, "GEARBOX")
	if !gearbox.PackagingLogisticsCost.Equal(testhelpers.Dec("12.5")) {
		t.Errorf("Expected GEARBOX packaging 12.5, got %s", gearbox.PackagingLogisticsCost)
	}

	ops, _ := repo.GetProcessInputsForItem(ctx, "SHAFT")
	if len(ops) != 1 || ops[0].ID != "SHAFT-OP10" {
		t.Fatalf("Expected generated operation id SHAFT-OP10, got %v", ops)
	}

	rate, found, _ := repo.GetMHRRate(ctx, "IMM-350T")
	if !found || !rate.Equal(testhelpers.Dec("56.09")) {
		t.Errorf("Expected derived rate 56.09, got %s (found=%v)", rate, found)
	}

	items, _ := repo.GetItemsForBOM(ctx, testhelpers.GearboxBOM)
	if items[0].ID != "GEARBOX" || items[5].ID != "BEARING" || items[5].SortOrder != 5 {
		t.Errorf("Expected file order to become sort order")
	}

	svc := rollup.NewService(repo, nil, nil)
	svc.SetClock(testhelpers.FixedClock)
	if _, err := svc.Recalculate(ctx, testhelpers.GearboxBOM); err != nil {
		t.Fatalf("Recalculate failed: %v", err)
	}
	gearbox, _, _ = repo.GetCostRecord(ctx, "GEARBOX")
	if !gearbox.TotalCost.Equal(testhelpers.Dec("164.9")) || !gearbox.SellingPrice.Equal(testhelpers.Dec("208.5985")) {
		t.Errorf("Expected 164.9 / 208.5985, got %s / %s", gearbox.TotalCost, gearbox.SellingPrice)
	}
}

func TestApply_LenientKeepsStructuralProblems(t *testing.T) {
	s, err := Parse([]byte(`
bom_id: LOOP
items:
  - {id: A, parent: B, type: assembly, name: A, quantity: 1}
  - {id: B, parent: A, type: child_part, name: B, quantity: 1}
`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	repo := memory.NewRepository(2)
	summary, err := s.Apply(context.Background(), repo, testhelpers.FixedTime, false)
	if err != nil {
		t.Fatalf("Expected lenient apply to succeed, got %v", err)
	}
	if !summary.Validation.HasCycles {
		t.Error("Expected the cycle to be reported")
	}
	if repo.Count() != 2 {
		t.Errorf("Expected 2 items stored, got %d", repo.Count())
	}

	if _, err := s.Apply(context.Background(), memory.NewRepository(2), testhelpers.FixedTime, true); err == nil {
		t.Error("Expected strict apply to refuse a cycle")
	}
}

func TestParseAndApply_Errors(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		contains string
	}{
		{
			name:     "unknown field",
			yaml:     "bom_id: X\nitems:\n  - {id: A, type: assembly, name: A, quantity: 1, qty: 2}\n",
			contains: "qty",
		},
		{
			name:     "missing bom id",
			yaml:     "items: []\n",
			contains: "bom_id is required",
		},
		{
			name:     "unknown item type",
			yaml:     "bom_id: X\nitems:\n  - {id: A, type: widget, name: A, quantity: 1}\n",
			contains: "widget",
		},
		{
			name:     "cost for unknown item",
			yaml:     "bom_id: X\nitems:\n  - {id: A, type: assembly, name: A, quantity: 1}\ncosts:\n  - {item_id: Z, raw_material_cost: 1}\n",
			contains: "unknown item Z",
		},
		{
			name:     "duplicate ids",
			yaml:     "bom_id: X\nitems:\n  - {id: A, type: assembly, name: A, quantity: 1}\n  - {id: A, type: assembly, name: A2, quantity: 1}\n",
			contains: "duplicate item ids",
		},
		{
			name:     "machine with rate and mhr",
			yaml:     "bom_id: X\nmachines:\n  - {ref: M1, rate: 10, mhr: {shifts_per_day: 1}}\n",
			contains: "not both",
		},
		{
			name:     "machine listed twice",
			yaml:     "bom_id: X\nmachines:\n  - {ref: M1, rate: 10}\n  - {ref: M1, rate: 12}\n",
			contains: "listed twice",
		},
		{
			name:     "invalid operation",
			yaml:     "bom_id: X\nitems:\n  - {id: A, type: child_part, name: A, quantity: 1}\noperations:\n  - {item_id: A, batch_size: 0, parts_per_cycle: 1}\n",
			contains: "batch_size",
		},
		{
			name:     "negative procured price",
			yaml:     "bom_id: X\nitems:\n  - {id: A, type: bop, name: A, quantity: 1}\ncosts:\n  - {item_id: A, procured: {unit_price: -1, quantity: 1}}\n",
			contains: "unit_price",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Parse([]byte(tt.yaml))
			if err == nil {
				_, err = s.Apply(context.Background(), memory.NewRepository(2), testhelpers.FixedTime, false)
			}
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("Expected error containing %q, got %v", tt.contains, err)
			}
		})
	}
}

func TestApply_NothingWrittenOnError(t *testing.T) {
	s, _ := Parse([]byte(`
bom_id: X
items:
  - {id: A, type: assembly, name: A, quantity: 1}
machines:
  - {ref: M1}
`))
	repo := memory.NewRepository(1)
	if _, err := s.Apply(context.Background(), repo, testhelpers.FixedTime, false); err == nil {
		t.Fatal("Expected machine without rate to be rejected")
	}
	if repo.Count() != 0 {
		t.Errorf("Expected nothing written, got %d items", repo.Count())
	}
}
