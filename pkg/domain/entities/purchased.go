package entities

import "github.com/shopspring/decimal"

// PackagingLogisticsInput prices packing and shipping for a quantity of parts
type PackagingLogisticsInput struct {
	PackagingCostPerUnit decimal.Decimal `json:"packaging_cost_per_unit" yaml:"packaging_cost_per_unit"`
	FreightCostPerUnit   decimal.Decimal `json:"freight_cost_per_unit" yaml:"freight_cost_per_unit"`
	HandlingCostPerUnit  decimal.Decimal `json:"handling_cost_per_unit" yaml:"handling_cost_per_unit"`
	Quantity             decimal.Decimal `json:"quantity" yaml:"quantity"`
	OverheadPercentage   decimal.Decimal `json:"overhead_percentage" yaml:"overhead_percentage"`
}

// PackagingLogisticsResult is the packaging and logistics cost
type PackagingLogisticsResult struct {
	UnitCost     decimal.Decimal `json:"unit_cost"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	OverheadCost decimal.Decimal `json:"overhead_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	CostPerUnit  decimal.Decimal `json:"cost_per_unit"`
}

// ProcuredPartInput prices a bought-out part
type ProcuredPartInput struct {
	UnitPrice          decimal.Decimal `json:"unit_price" yaml:"unit_price"`
	Quantity           decimal.Decimal `json:"quantity" yaml:"quantity"`
	FreightPercentage  decimal.Decimal `json:"freight_percentage" yaml:"freight_percentage"`
	DutyPercentage     decimal.Decimal `json:"duty_percentage" yaml:"duty_percentage"`
	OverheadPercentage decimal.Decimal `json:"overhead_percentage" yaml:"overhead_percentage"`
}

// ProcuredPartResult is the landed cost of a bought-out part
type ProcuredPartResult struct {
	BaseCost       decimal.Decimal `json:"base_cost"`
	FreightCost    decimal.Decimal `json:"freight_cost"`
	DutyCost       decimal.Decimal `json:"duty_cost"`
	OverheadCost   decimal.Decimal `json:"overhead_cost"`
	TotalCost      decimal.Decimal `json:"total_cost"`
	LandedUnitCost decimal.Decimal `json:"landed_unit_cost"`
}
