package entities

import "github.com/shopspring/decimal"

// MHRRecord is the machine master data needed to amortize a machine into an
// hourly rate
type MHRRecord struct {
	MachineRef  string `json:"machine_ref,omitempty" yaml:"machine_ref"`
	MachineName string `json:"machine_name,omitempty" yaml:"machine_name"`

	// Operational
	ShiftsPerDay               decimal.Decimal `json:"shifts_per_day" yaml:"shifts_per_day"`
	HoursPerShift              decimal.Decimal `json:"hours_per_shift" yaml:"hours_per_shift"`
	WorkingDaysPerYear         decimal.Decimal `json:"working_days_per_year" yaml:"working_days_per_year"`
	PlannedMaintenanceHours    decimal.Decimal `json:"planned_maintenance_hours" yaml:"planned_maintenance_hours"`
	CapacityUtilizationPercent decimal.Decimal `json:"capacity_utilization_percent" yaml:"capacity_utilization_percent"`

	// Capital
	LandedCost             decimal.Decimal `json:"landed_cost" yaml:"landed_cost"`
	AccessoriesPercent     decimal.Decimal `json:"accessories_percent" yaml:"accessories_percent"`
	InstallationPercent    decimal.Decimal `json:"installation_percent" yaml:"installation_percent"`
	PaybackYears           decimal.Decimal `json:"payback_years" yaml:"payback_years"`
	InterestRatePercent    decimal.Decimal `json:"interest_rate_percent" yaml:"interest_rate_percent"`
	InsuranceRatePercent   decimal.Decimal `json:"insurance_rate_percent" yaml:"insurance_rate_percent"`
	MaintenanceRatePercent decimal.Decimal `json:"maintenance_rate_percent" yaml:"maintenance_rate_percent"`

	// Utilities
	FootprintSqm          decimal.Decimal `json:"footprint_sqm" yaml:"footprint_sqm"`
	RentPerSqmPerMonth    decimal.Decimal `json:"rent_per_sqm_per_month" yaml:"rent_per_sqm_per_month"`
	PowerKwhPerHour       decimal.Decimal `json:"power_kwh_per_hour" yaml:"power_kwh_per_hour"`
	ElectricityCostPerKwh decimal.Decimal `json:"electricity_cost_per_kwh" yaml:"electricity_cost_per_kwh"`

	// Margins
	AdminOverheadPercent decimal.Decimal `json:"admin_overhead_percent" yaml:"admin_overhead_percent"`
	ProfitMarginPercent  decimal.Decimal `json:"profit_margin_percent" yaml:"profit_margin_percent"`
}

// MHRResult is the published breakdown of a machine hour rate. Every figure
// is already rounded to its table precision.
type MHRResult struct {
	WorkingHoursPerYear   decimal.Decimal `json:"working_hours_per_year"`
	AvailableHoursPerYear decimal.Decimal `json:"available_hours_per_year"`
	EffectiveHoursPerYear decimal.Decimal `json:"effective_hours_per_year"`

	AccessoriesCost  decimal.Decimal `json:"accessories_cost"`
	InstallationCost decimal.Decimal `json:"installation_cost"`
	TotalCapital     decimal.Decimal `json:"total_capital"`

	AnnualDepreciation decimal.Decimal `json:"annual_depreciation"`
	AnnualInterest     decimal.Decimal `json:"annual_interest"`
	AnnualInsurance    decimal.Decimal `json:"annual_insurance"`
	AnnualRent         decimal.Decimal `json:"annual_rent"`
	AnnualMaintenance  decimal.Decimal `json:"annual_maintenance"`
	AnnualElectricity  decimal.Decimal `json:"annual_electricity"`

	DepreciationPerHour decimal.Decimal `json:"depreciation_per_hour"`
	InterestPerHour     decimal.Decimal `json:"interest_per_hour"`
	InsurancePerHour    decimal.Decimal `json:"insurance_per_hour"`
	RentPerHour         decimal.Decimal `json:"rent_per_hour"`
	MaintenancePerHour  decimal.Decimal `json:"maintenance_per_hour"`
	ElectricityPerHour  decimal.Decimal `json:"electricity_per_hour"`

	CostOfOwnershipPerHour    decimal.Decimal `json:"cost_of_ownership_per_hour"`
	TotalFixedCostPerHour     decimal.Decimal `json:"total_fixed_cost_per_hour"`
	TotalOperatingCostPerHour decimal.Decimal `json:"total_operating_cost_per_hour"`
	AdminOverheadPerHour      decimal.Decimal `json:"admin_overhead_per_hour"`
	SubtotalPerHour           decimal.Decimal `json:"subtotal_per_hour"`
	ProfitPerHour             decimal.Decimal `json:"profit_per_hour"`
	TotalMachineHourRate      decimal.Decimal `json:"total_machine_hour_rate"`
}
