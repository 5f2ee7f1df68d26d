package testing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/infrastructure/repositories/memory"
)

// GearboxBOM is the id of the fixture BOM built by BuildGearboxTestData
const GearboxBOM entities.BOMID = "GBX-100"

// FixedTime is the clock used by fixtures so tests can compare timestamps
var FixedTime = time.Date(2024, 6, 3, 8, 30, 0, 0, time.UTC)

// FixedClock returns FixedTime
func FixedClock() time.Time {
	return FixedTime
}

// Dec parses a decimal literal and panics on bad input
func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DecPtr is Dec returning a pointer
func DecPtr(s string) *decimal.Decimal {
	d := Dec(s)
	return &d
}

// mustCreateItem is a helper for tests - panics on validation error
func mustCreateItem(
	id, parent string,
	itemType entities.ItemType,
	name string,
	quantity string,
	sortOrder int,
) *entities.BomItem {
	var parentID *entities.ItemID
	if parent != "" {
		parentID = entities.ParentRef(entities.ItemID(parent))
	}
	item, err := entities.NewBomItem(
		entities.ItemID(id),
		GearboxBOM,
		parentID,
		itemType,
		name,
		Dec(quantity),
		5000,
	)
	if err != nil {
		panic(err)
	}
	item.SortOrder = sortOrder
	item.CreatedAt = FixedTime
	item.UpdatedAt = FixedTime
	return item
}

func costRecord(itemID string, update entities.DirectCostUpdate) *entities.BomItemCost {
	cost := entities.NewBomItemCost(entities.ItemID(itemID), FixedTime)
	update.Apply(cost)
	return cost
}

// GearboxItems returns the fixture hierarchy:
//
//	GEARBOX (assembly)
//	├── HOUSING (sub_assembly)
//	│   ├── HOUSING_CASTING (child_part)
//	│   └── GASKET (bop, no cost data)
//	└── SHAFT (child_part, qty 2, one turning operation)
//	    └── BEARING (bop, qty 2)
func GearboxItems() []*entities.BomItem {
	return []*entities.BomItem{
		mustCreateItem("GEARBOX", "", entities.Assembly, "Gearbox assembly", "1", 0),
		mustCreateItem("HOUSING", "GEARBOX", entities.SubAssembly, "Housing", "1", 1),
		mustCreateItem("HOUSING_CASTING", "HOUSING", entities.ChildPart, "Housing casting", "1", 2),
		mustCreateItem("GASKET", "HOUSING", entities.BOP, "Cover gasket", "1", 3),
		mustCreateItem("SHAFT", "GEARBOX", entities.ChildPart, "Output shaft", "2", 4),
		mustCreateItem("BEARING", "SHAFT", entities.BOP, "Deep groove bearing", "2", 5),
	}
}

// ShaftTurning is the single operation on SHAFT. With LATHE-01 at 60/h it
// costs 0.8 setup + 1.0 labor + 0.6 machine = 2.4 per part.
func ShaftTurning() *entities.ProcessCostRecord {
	return &entities.ProcessCostRecord{
		ID:               "OP-SHAFT-10",
		ItemID:           "SHAFT",
		OperationName:    "CNC turning",
		MachineRef:       "LATHE-01",
		DirectRate:       Dec("100"),
		SetupManning:     Dec("1"),
		SetupMinutes:     Dec("30"),
		BatchSize:        Dec("100"),
		Heads:            Dec("1"),
		CycleTimeSeconds: Dec("36"),
		PartsPerCycle:    Dec("1"),
	}
}

// BuildGearboxTestData builds the gearbox quotation scenario. After a
// recalculation the expected totals are:
//
//	BEARING 6.75, SHAFT 27.15, HOUSING_CASTING 85.25, HOUSING 125.25,
//	GEARBOX 164.9 with a selling price of 208.5985 (SGA 10%, profit 15%).
func BuildGearboxTestData() *memory.Repository {
	ctx := context.Background()
	repo := memory.NewRepository(8)

	if err := repo.LoadItems(GearboxItems()); err != nil {
		panic(err)
	}

	gearbox := costRecord("GEARBOX", entities.DirectCostUpdate{PackagingLogisticsCost: DecPtr("12.5")})
	gearbox.SGAPercentage = DecPtr("10")
	gearbox.ProfitPercentage = DecPtr("15")

	records := []*entities.BomItemCost{
		gearbox,
		costRecord("HOUSING", entities.DirectCostUpdate{RawMaterialCost: DecPtr("40")}),
		costRecord("HOUSING_CASTING", entities.DirectCostUpdate{RawMaterialCost: DecPtr("85.25")}),
		costRecord("SHAFT", entities.DirectCostUpdate{RawMaterialCost: DecPtr("18")}),
		costRecord("BEARING", entities.DirectCostUpdate{ProcuredPartsCost: DecPtr("6.75")}),
	}
	for _, record := range records {
		if err := repo.UpsertCostRecord(ctx, record.ItemID, record); err != nil {
			panic(err)
		}
	}

	if err := repo.SaveProcessInput(ctx, ShaftTurning()); err != nil {
		panic(err)
	}
	if err := repo.SaveMHRRate(ctx, "LATHE-01", Dec("60")); err != nil {
		panic(err)
	}

	return repo
}

// BuildSimpleTestData builds the two-item example: root A with own cost 100
// and child B with own cost 50 at quantity 2
func BuildSimpleTestData() *memory.Repository {
	ctx := context.Background()
	repo := memory.NewRepository(2)

	a, _ := entities.NewBomItem("A", "SIMPLE", nil, entities.Assembly, "Root A", Dec("1"), 0)
	b, _ := entities.NewBomItem("B", "SIMPLE", entities.ParentRef("A"), entities.ChildPart, "Child B", Dec("2"), 0)
	if err := repo.LoadItems([]*entities.BomItem{a, b}); err != nil {
		panic(err)
	}

	_ = repo.UpsertCostRecord(ctx, "A", costRecord("A", entities.DirectCostUpdate{RawMaterialCost: DecPtr("100")}))
	_ = repo.UpsertCostRecord(ctx, "B", costRecord("B", entities.DirectCostUpdate{RawMaterialCost: DecPtr("50")}))

	return repo
}
