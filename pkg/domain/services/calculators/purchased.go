package calculators

import (
	"github.com/shopspring/decimal"
	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/domain/services"
)

func currency(d decimal.Decimal) decimal.Decimal {
	return services.Round(d, services.CurrencyPrecision)
}

// PackagingCalculator prices packing, freight and handling for a quantity
type PackagingCalculator struct{}

var _ Calculator[entities.PackagingLogisticsInput, entities.PackagingLogisticsResult] = PackagingCalculator{}

// NewPackagingCalculator creates a packaging and logistics calculator
func NewPackagingCalculator() PackagingCalculator {
	return PackagingCalculator{}
}

// Validate checks the packaging input
func (PackagingCalculator) Validate(in entities.PackagingLogisticsInput) entities.ValidationErrors {
	var errs entities.ValidationErrors
	requireNonNegative(&errs, "packaging_cost_per_unit", in.PackagingCostPerUnit)
	requireNonNegative(&errs, "freight_cost_per_unit", in.FreightCostPerUnit)
	requireNonNegative(&errs, "handling_cost_per_unit", in.HandlingCostPerUnit)
	requireNonNegative(&errs, "quantity", in.Quantity)
	requireNonNegative(&errs, "overhead_percentage", in.OverheadPercentage)
	return errs
}

// Calculate validates the input and computes the packaging cost
func (c PackagingCalculator) Calculate(in entities.PackagingLogisticsInput) (entities.PackagingLogisticsResult, error) {
	return run(in, c.Validate, func(in entities.PackagingLogisticsInput) entities.PackagingLogisticsResult {
		unit := services.Sum(in.PackagingCostPerUnit, in.FreightCostPerUnit, in.HandlingCostPerUnit)
		subtotal := unit.Mul(in.Quantity)
		overhead := services.ApplyPercentage(subtotal, in.OverheadPercentage)
		total := subtotal.Add(overhead)

		return entities.PackagingLogisticsResult{
			UnitCost:     currency(unit),
			Subtotal:     currency(subtotal),
			OverheadCost: currency(overhead),
			TotalCost:    currency(total),
			CostPerUnit:  currency(services.SafeDiv(total, in.Quantity)),
		}
	})
}

// ProcuredPartCalculator prices a bought-out part to its landed cost
type ProcuredPartCalculator struct{}

var _ Calculator[entities.ProcuredPartInput, entities.ProcuredPartResult] = ProcuredPartCalculator{}

// NewProcuredPartCalculator creates a procured part calculator
func NewProcuredPartCalculator() ProcuredPartCalculator {
	return ProcuredPartCalculator{}
}

// Validate checks the procured part input
func (ProcuredPartCalculator) Validate(in entities.ProcuredPartInput) entities.ValidationErrors {
	var errs entities.ValidationErrors
	requireNonNegative(&errs, "unit_price", in.UnitPrice)
	requireNonNegative(&errs, "quantity", in.Quantity)
	requireNonNegative(&errs, "freight_percentage", in.FreightPercentage)
	requireNonNegative(&errs, "duty_percentage", in.DutyPercentage)
	requireNonNegative(&errs, "overhead_percentage", in.OverheadPercentage)
	return errs
}

// Calculate validates the input and computes the landed cost
func (c ProcuredPartCalculator) Calculate(in entities.ProcuredPartInput) (entities.ProcuredPartResult, error) {
	return run(in, c.Validate, func(in entities.ProcuredPartInput) entities.ProcuredPartResult {
		base := in.UnitPrice.Mul(in.Quantity)
		freight := services.ApplyPercentage(base, in.FreightPercentage)
		duty := services.ApplyPercentage(base, in.DutyPercentage)
		overhead := services.ApplyPercentage(base, in.OverheadPercentage)
		total := services.Sum(base, freight, duty, overhead)

		return entities.ProcuredPartResult{
			BaseCost:       currency(base),
			FreightCost:    currency(freight),
			DutyCost:       currency(duty),
			OverheadCost:   currency(overhead),
			TotalCost:      currency(total),
			LandedUnitCost: currency(services.SafeDiv(total, in.Quantity)),
		}
	})
}
