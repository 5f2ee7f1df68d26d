package calculators

import (
	"github.com/shopspring/decimal"
	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/domain/services"
)

var (
	monthsPerYear = decimal.NewFromInt(12)
	maxShiftHours = decimal.NewFromInt(24)
)

// MHRCalculator amortizes a machine's capital and running costs into an
// hourly rate. Every named figure is rounded to two places and the rounded
// value is what later steps use, so the breakdown adds up on paper.
type MHRCalculator struct{}

var _ Calculator[entities.MHRRecord, entities.MHRResult] = MHRCalculator{}

// NewMHRCalculator creates a machine hour rate calculator
func NewMHRCalculator() MHRCalculator {
	return MHRCalculator{}
}

// Validate checks the machine record. Planned maintenance larger than the
// working hours is accepted and yields negative available hours.
func (MHRCalculator) Validate(in entities.MHRRecord) entities.ValidationErrors {
	var errs entities.ValidationErrors

	requireNonNegative(&errs, "shifts_per_day", in.ShiftsPerDay)
	requireNonNegative(&errs, "hours_per_shift", in.HoursPerShift)
	if in.HoursPerShift.GreaterThan(maxShiftHours) {
		errs.Addf("hours_per_shift", "cannot exceed 24, got %s", in.HoursPerShift)
	}
	requireNonNegative(&errs, "working_days_per_year", in.WorkingDaysPerYear)
	requireNonNegative(&errs, "planned_maintenance_hours", in.PlannedMaintenanceHours)
	requirePercentage(&errs, "capacity_utilization_percent", in.CapacityUtilizationPercent)

	requireNonNegative(&errs, "landed_cost", in.LandedCost)
	requireNonNegative(&errs, "accessories_percent", in.AccessoriesPercent)
	requireNonNegative(&errs, "installation_percent", in.InstallationPercent)
	requirePositive(&errs, "payback_years", in.PaybackYears)
	requireNonNegative(&errs, "interest_rate_percent", in.InterestRatePercent)
	requireNonNegative(&errs, "insurance_rate_percent", in.InsuranceRatePercent)
	requireNonNegative(&errs, "maintenance_rate_percent", in.MaintenanceRatePercent)

	requireNonNegative(&errs, "footprint_sqm", in.FootprintSqm)
	requireNonNegative(&errs, "rent_per_sqm_per_month", in.RentPerSqmPerMonth)
	requireNonNegative(&errs, "power_kwh_per_hour", in.PowerKwhPerHour)
	requireNonNegative(&errs, "electricity_cost_per_kwh", in.ElectricityCostPerKwh)

	requireNonNegative(&errs, "admin_overhead_percent", in.AdminOverheadPercent)
	requireNonNegative(&errs, "profit_margin_percent", in.ProfitMarginPercent)

	return errs
}

// Calculate validates the record and computes the rate breakdown
func (c MHRCalculator) Calculate(in entities.MHRRecord) (entities.MHRResult, error) {
	return run(in, c.Validate, computeMHR)
}

func computeMHR(in entities.MHRRecord) entities.MHRResult {
	r2 := func(d decimal.Decimal) decimal.Decimal { return services.Round(d, services.CurrencyPrecision) }

	var res entities.MHRResult

	res.WorkingHoursPerYear = services.Round(in.ShiftsPerDay.Mul(in.HoursPerShift).Mul(in.WorkingDaysPerYear), services.HoursPrecision)
	res.AvailableHoursPerYear = services.Round(res.WorkingHoursPerYear.Sub(in.PlannedMaintenanceHours), services.HoursPrecision)
	res.EffectiveHoursPerYear = services.Round(
		services.ApplyPercentage(res.AvailableHoursPerYear, in.CapacityUtilizationPercent), services.HoursPrecision)

	res.AccessoriesCost = r2(services.ApplyPercentage(in.LandedCost, in.AccessoriesPercent))
	res.InstallationCost = r2(services.ApplyPercentage(in.LandedCost.Add(res.AccessoriesCost), in.InstallationPercent))
	res.TotalCapital = r2(services.Sum(in.LandedCost, res.AccessoriesCost, res.InstallationCost))

	res.AnnualDepreciation = r2(services.SafeDiv(res.TotalCapital, in.PaybackYears))
	// interest is charged on the depreciation amount, not on capital
	res.AnnualInterest = r2(services.ApplyPercentage(res.AnnualDepreciation, in.InterestRatePercent))
	res.AnnualInsurance = r2(services.ApplyPercentage(res.TotalCapital, in.InsuranceRatePercent))
	res.AnnualRent = r2(in.FootprintSqm.Mul(in.RentPerSqmPerMonth).Mul(monthsPerYear))
	res.AnnualMaintenance = r2(services.ApplyPercentage(res.TotalCapital, in.MaintenanceRatePercent))
	res.AnnualElectricity = r2(in.PowerKwhPerHour.Mul(in.ElectricityCostPerKwh).Mul(res.EffectiveHoursPerYear))

	perHour := func(annual decimal.Decimal) decimal.Decimal {
		return services.Round(services.SafeDiv(annual, res.EffectiveHoursPerYear), services.RatePrecision)
	}
	res.DepreciationPerHour = perHour(res.AnnualDepreciation)
	res.InterestPerHour = perHour(res.AnnualInterest)
	res.InsurancePerHour = perHour(res.AnnualInsurance)
	res.RentPerHour = perHour(res.AnnualRent)
	res.MaintenancePerHour = perHour(res.AnnualMaintenance)
	res.ElectricityPerHour = perHour(res.AnnualElectricity)

	res.CostOfOwnershipPerHour = r2(services.Sum(
		res.DepreciationPerHour, res.InterestPerHour, res.InsurancePerHour, res.RentPerHour))
	res.TotalFixedCostPerHour = r2(res.CostOfOwnershipPerHour.Add(res.MaintenancePerHour))
	res.TotalOperatingCostPerHour = r2(res.TotalFixedCostPerHour.Add(res.ElectricityPerHour))

	res.AdminOverheadPerHour = r2(services.ApplyPercentage(res.TotalOperatingCostPerHour, in.AdminOverheadPercent))
	res.SubtotalPerHour = r2(res.TotalOperatingCostPerHour.Add(res.AdminOverheadPerHour))
	res.ProfitPerHour = r2(services.ApplyPercentage(res.SubtotalPerHour, in.ProfitMarginPercent))
	res.TotalMachineHourRate = r2(res.SubtotalPerHour.Add(res.ProfitPerHour))

	return res
}
