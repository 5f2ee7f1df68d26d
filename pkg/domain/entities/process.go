package entities

import "github.com/shopspring/decimal"

// ProcessCostRecord describes one manufacturing operation performed on a BOM
// item. Rates are currency per hour.
type ProcessCostRecord struct {
	ID            string `json:"id,omitempty" yaml:"id"`
	ItemID        ItemID `json:"item_id,omitempty" yaml:"item_id"`
	OperationName string `json:"operation_name,omitempty" yaml:"operation_name"`

	// MachineRef points at a stored machine hour rate; when set it overrides MachineRate
	MachineRef string `json:"machine_ref,omitempty" yaml:"machine_ref"`

	DirectRate   decimal.Decimal `json:"direct_rate" yaml:"direct_rate"`
	IndirectRate decimal.Decimal `json:"indirect_rate" yaml:"indirect_rate"`
	FringeRate   decimal.Decimal `json:"fringe_rate" yaml:"fringe_rate"`
	MachineRate  decimal.Decimal `json:"machine_rate" yaml:"machine_rate"`

	SetupManning decimal.Decimal `json:"setup_manning" yaml:"setup_manning"`
	SetupMinutes decimal.Decimal `json:"setup_minutes" yaml:"setup_minutes"`

	BatchSize        decimal.Decimal `json:"batch_size" yaml:"batch_size"`
	Heads            decimal.Decimal `json:"heads" yaml:"heads"`
	CycleTimeSeconds decimal.Decimal `json:"cycle_time_seconds" yaml:"cycle_time_seconds"`
	PartsPerCycle    decimal.Decimal `json:"parts_per_cycle" yaml:"parts_per_cycle"`

	ScrapPercentage decimal.Decimal `json:"scrap_percentage" yaml:"scrap_percentage"`

	// AnnualVolume is optional; when positive the result carries an annual cost
	AnnualVolume decimal.Decimal `json:"annual_volume,omitempty" yaml:"annual_volume"`
}

// ProcessCostResult is the per-part and per-batch cost of an operation
type ProcessCostResult struct {
	SetupTimeHours        decimal.Decimal `json:"setup_time_hours"`
	CycleTimePerPartHours decimal.Decimal `json:"cycle_time_per_part_hours"`

	DirectRate   decimal.Decimal `json:"direct_rate"`
	IndirectRate decimal.Decimal `json:"indirect_rate"`
	FringeRate   decimal.Decimal `json:"fringe_rate"`
	MachineRate  decimal.Decimal `json:"machine_rate"`

	SetupLaborCost    decimal.Decimal `json:"setup_labor_cost"`
	SetupOverheadCost decimal.Decimal `json:"setup_overhead_cost"`
	SetupMachineCost  decimal.Decimal `json:"setup_machine_cost"`
	TotalSetupCost    decimal.Decimal `json:"total_setup_cost"`
	SetupCostPerPart  decimal.Decimal `json:"setup_cost_per_part"`

	CycleLaborCostPerPart    decimal.Decimal `json:"cycle_labor_cost_per_part"`
	CycleOverheadCostPerPart decimal.Decimal `json:"cycle_overhead_cost_per_part"`
	CycleMachineCostPerPart  decimal.Decimal `json:"cycle_machine_cost_per_part"`
	TotalCycleCostPerPart    decimal.Decimal `json:"total_cycle_cost_per_part"`

	CostPerPartBeforeScrap decimal.Decimal `json:"cost_per_part_before_scrap"`
	ScrapPercentage        decimal.Decimal `json:"scrap_percentage"`
	ScrapFactor            decimal.Decimal `json:"scrap_factor"`
	ScrapAdjustment        decimal.Decimal `json:"scrap_adjustment"`
	TotalCostPerPart       decimal.Decimal `json:"total_cost_per_part"`
	TotalBatchCost         decimal.Decimal `json:"total_batch_cost"`
	AnnualCost             decimal.Decimal `json:"annual_cost"`
}
