package calculators

import (
	"github.com/shopspring/decimal"
	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/domain/services"
)

var (
	minutesPerHour = decimal.NewFromInt(60)
	secondsPerHour = decimal.NewFromInt(3600)
)

// ProcessCalculator prices one manufacturing operation per part: setup cost
// spread over the batch, cycle cost per part, then a scrap uplift. Figures
// are carried unrounded and rounded only on output, because per-part costs
// are tiny and get multiplied by large annual volumes.
type ProcessCalculator struct{}

var _ Calculator[entities.ProcessCostRecord, entities.ProcessCostResult] = ProcessCalculator{}

// NewProcessCalculator creates a process cost calculator
func NewProcessCalculator() ProcessCalculator {
	return ProcessCalculator{}
}

// Validate checks the operation record
func (ProcessCalculator) Validate(in entities.ProcessCostRecord) entities.ValidationErrors {
	var errs entities.ValidationErrors

	requireNonNegative(&errs, "direct_rate", in.DirectRate)
	requireNonNegative(&errs, "indirect_rate", in.IndirectRate)
	requireNonNegative(&errs, "fringe_rate", in.FringeRate)
	requireNonNegative(&errs, "machine_rate", in.MachineRate)
	requireNonNegative(&errs, "setup_manning", in.SetupManning)
	requireNonNegative(&errs, "setup_minutes", in.SetupMinutes)
	requirePositive(&errs, "batch_size", in.BatchSize)
	requireNonNegative(&errs, "heads", in.Heads)
	requireNonNegative(&errs, "cycle_time_seconds", in.CycleTimeSeconds)
	requirePositive(&errs, "parts_per_cycle", in.PartsPerCycle)
	requireNonNegative(&errs, "annual_volume", in.AnnualVolume)

	if in.ScrapPercentage.IsNegative() || in.ScrapPercentage.GreaterThanOrEqual(hundred) {
		errs.Addf("scrap_percentage", "must be at least 0 and below 100, got %s", in.ScrapPercentage)
	}

	return errs
}

// Calculate validates the record and computes the per-part cost
func (c ProcessCalculator) Calculate(in entities.ProcessCostRecord) (entities.ProcessCostResult, error) {
	return run(in, c.Validate, computeProcess)
}

func computeProcess(in entities.ProcessCostRecord) entities.ProcessCostResult {
	setupHours := in.SetupMinutes.Div(minutesPerHour)
	cycleHours := services.SafeDiv(in.CycleTimeSeconds.Div(secondsPerHour), in.PartsPerCycle)
	overheadRate := in.IndirectRate.Add(in.FringeRate)

	setupLabor := setupHours.Mul(in.SetupManning).Mul(in.DirectRate)
	setupOverhead := setupHours.Mul(in.SetupManning).Mul(overheadRate)
	setupMachine := setupHours.Mul(in.MachineRate)
	totalSetup := services.Sum(setupLabor, setupOverhead, setupMachine)
	setupPerPart := services.SafeDiv(totalSetup, in.BatchSize)

	cycleLabor := cycleHours.Mul(in.Heads).Mul(in.DirectRate)
	cycleOverhead := cycleHours.Mul(in.Heads).Mul(overheadRate)
	cycleMachine := cycleHours.Mul(in.MachineRate)
	totalCycle := services.Sum(cycleLabor, cycleOverhead, cycleMachine)

	beforeScrap := setupPerPart.Add(totalCycle)
	scrapFactor := decimal.NewFromInt(1).Sub(in.ScrapPercentage.Div(hundred))
	totalPerPart := services.SafeDiv(beforeScrap, scrapFactor)

	cost := func(d decimal.Decimal) decimal.Decimal { return services.Round(d, services.CostPrecision) }
	rate := func(d decimal.Decimal) decimal.Decimal { return services.Round(d, services.RatePrecision) }

	res := entities.ProcessCostResult{
		SetupTimeHours:        cost(setupHours),
		CycleTimePerPartHours: cost(cycleHours),

		DirectRate:   rate(in.DirectRate),
		IndirectRate: rate(in.IndirectRate),
		FringeRate:   rate(in.FringeRate),
		MachineRate:  rate(in.MachineRate),

		SetupLaborCost:    cost(setupLabor),
		SetupOverheadCost: cost(setupOverhead),
		SetupMachineCost:  cost(setupMachine),
		TotalSetupCost:    cost(totalSetup),
		SetupCostPerPart:  cost(setupPerPart),

		CycleLaborCostPerPart:    cost(cycleLabor),
		CycleOverheadCostPerPart: cost(cycleOverhead),
		CycleMachineCostPerPart:  cost(cycleMachine),
		TotalCycleCostPerPart:    cost(totalCycle),

		CostPerPartBeforeScrap: cost(beforeScrap),
		ScrapPercentage:        rate(in.ScrapPercentage),
		ScrapFactor:            services.Round(scrapFactor, services.PercentPrecision),
		ScrapAdjustment:        cost(totalPerPart.Sub(beforeScrap)),
		TotalCostPerPart:       cost(totalPerPart),
		TotalBatchCost:         cost(totalPerPart.Mul(in.BatchSize)),
	}
	if in.AnnualVolume.IsPositive() {
		res.AnnualCost = cost(totalPerPart.Mul(in.AnnualVolume))
	}

	return res
}
