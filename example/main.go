package main

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vsinha/bomcost/pkg/costing"
	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/infrastructure/repositories/memory"
)

func main() {
	ctx := context.Background()

	repo := memory.NewRepository(4)
	engine, err := costing.NewEngine(repo, nil)
	if err != nil {
		fmt.Printf("❌ Engine setup failed: %v\n", err)
		return
	}

	// Set up a small pump quotation
	if err := setupPumpBOM(ctx, engine); err != nil {
		fmt.Printf("❌ Setup failed: %v\n", err)
		return
	}

	fmt.Println("🔧 Rolling up costs for PUMP-7...")
	result, err := engine.Recalculate(ctx, "PUMP-7")
	if err != nil {
		fmt.Printf("❌ Recalculation failed: %v\n", err)
		return
	}
	fmt.Printf("  Items processed: %d, records written: %d\n\n", result.ItemsProcessed, result.RecordsWritten)

	report, err := engine.BuildReport(ctx, "PUMP-7")
	if err != nil {
		fmt.Printf("❌ Report failed: %v\n", err)
		return
	}

	fmt.Println("📊 Cost Report:")
	for _, line := range report.Lines {
		if !line.HasCost {
			fmt.Printf("  %*s%s: no cost data\n", line.Depth*2, "", line.ItemID)
			continue
		}
		fmt.Printf("  %*s%s: total %s, extended %s, selling %s\n",
			line.Depth*2, "", line.ItemID,
			line.Cost.TotalCost.StringFixed(2),
			line.Cost.ExtendedCost.StringFixed(2),
			line.Cost.SellingPrice.StringFixed(2))
	}
	fmt.Printf("\n  Overall total: %s\n", report.OverallTotalCost.StringFixed(2))

	// A price change on a bought-out part makes its ancestors stale
	fmt.Println("\n💱 Motor price increase...")
	motorPrice := decimal.NewFromInt(48)
	if _, err := engine.UpdateDirectCosts(ctx, "MOTOR", entities.DirectCostUpdate{ProcuredPartsCost: &motorPrice}); err != nil {
		fmt.Printf("❌ Update failed: %v\n", err)
		return
	}
	report, _ = engine.BuildReport(ctx, "PUMP-7")
	for _, banner := range report.Banners() {
		fmt.Printf("  ⚠️  %s\n", banner)
	}

	if _, err := engine.Recalculate(ctx, "PUMP-7"); err != nil {
		fmt.Printf("❌ Recalculation failed: %v\n", err)
		return
	}
	report, _ = engine.BuildReport(ctx, "PUMP-7")
	fmt.Printf("  New overall total: %s\n", report.OverallTotalCost.StringFixed(2))
}

func setupPumpBOM(ctx context.Context, engine *costing.Engine) error {
	one := decimal.NewFromInt(1)
	items := []struct {
		id       entities.ItemID
		parent   entities.ItemID
		itemType entities.ItemType
		name     string
		qty      decimal.Decimal
	}{
		{"PUMP", "", entities.Assembly, "Centrifugal pump", one},
		{"VOLUTE", "PUMP", entities.ChildPart, "Volute casing", one},
		{"IMPELLER", "PUMP", entities.ChildPart, "Impeller", one},
		{"MOTOR", "PUMP", entities.BOP, "0.75 kW motor", one},
	}
	for i, row := range items {
		var parent *entities.ItemID
		if row.parent != "" {
			parent = entities.ParentRef(row.parent)
		}
		item, err := entities.NewBomItem(row.id, "PUMP-7", parent, row.itemType, row.name, row.qty, 2000)
		if err != nil {
			return err
		}
		item.SortOrder = i
		if _, err := engine.CreateItem(ctx, item); err != nil {
			return err
		}
	}

	// Molding machine rate for the impeller
	machine := entities.MHRRecord{
		ShiftsPerDay:               decimal.NewFromInt(2),
		HoursPerShift:              decimal.NewFromInt(8),
		WorkingDaysPerYear:         decimal.NewFromInt(250),
		CapacityUtilizationPercent: decimal.NewFromInt(80),
		LandedCost:                 decimal.NewFromInt(250000),
		PaybackYears:               decimal.NewFromInt(8),
		InterestRatePercent:        decimal.NewFromInt(8),
		MaintenanceRatePercent:     decimal.NewFromInt(5),
		PowerKwhPerHour:            decimal.NewFromInt(15),
		ElectricityCostPerKwh:      decimal.RequireFromString("0.15"),
	}
	res, err := engine.SaveMachine(ctx, "IMM-150T", machine)
	if err != nil {
		return err
	}
	fmt.Printf("🏭 IMM-150T hour rate: %s\n", res.TotalMachineHourRate.StringFixed(2))

	if _, err := engine.AddProcessInput(ctx, &entities.ProcessCostRecord{
		ItemID:           "IMPELLER",
		OperationName:    "Injection molding",
		MachineRef:       "IMM-150T",
		DirectRate:       decimal.NewFromInt(35),
		SetupManning:     one,
		SetupMinutes:     decimal.NewFromInt(45),
		BatchSize:        decimal.NewFromInt(500),
		Heads:            one,
		CycleTimeSeconds: decimal.NewFromInt(40),
		PartsPerCycle:    decimal.NewFromInt(2),
		ScrapPercentage:  decimal.NewFromInt(2),
	}); err != nil {
		return err
	}

	motor, _ := engine.CalculateProcuredParts(entities.ProcuredPartInput{
		UnitPrice:         decimal.NewFromInt(42),
		Quantity:          decimal.NewFromInt(50),
		FreightPercentage: decimal.NewFromInt(4),
		DutyPercentage:    decimal.NewFromInt(3),
	})

	updates := map[entities.ItemID]entities.DirectCostUpdate{
		"VOLUTE":   {RawMaterialCost: decPtr("18.40")},
		"IMPELLER": {RawMaterialCost: decPtr("2.15")},
		"MOTOR":    {ProcuredPartsCost: &motor.LandedUnitCost},
		"PUMP":     {PackagingLogisticsCost: decPtr("3.20")},
	}
	for id, update := range updates {
		if _, err := engine.UpdateDirectCosts(ctx, id, update); err != nil {
			return err
		}
	}

	sga, profit := decimal.NewFromInt(8), decimal.NewFromInt(12)
	_, err = engine.SetMargins(ctx, "PUMP", &sga, &profit)
	return err
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
