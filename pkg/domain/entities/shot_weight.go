package entities

import "github.com/shopspring/decimal"

// ShotWeightRecord holds the injection-molding inputs for one tool. Mass in
// grams, lengths in mm, volume in mm³, density in kg/m³.
type ShotWeightRecord struct {
	MaterialDensity decimal.Decimal `json:"material_density" yaml:"material_density"`
	PartVolume      decimal.Decimal `json:"part_volume" yaml:"part_volume"`
	PartWeight      decimal.Decimal `json:"part_weight" yaml:"part_weight"`
	Cavities        decimal.Decimal `json:"cavities" yaml:"cavities"`
	RunnerDiameter  decimal.Decimal `json:"runner_diameter" yaml:"runner_diameter"`
	RunnerLength    decimal.Decimal `json:"runner_length" yaml:"runner_length"`

	IncludeSprue   bool            `json:"include_sprue" yaml:"include_sprue"`
	SprueDiameter  decimal.Decimal `json:"sprue_diameter,omitempty" yaml:"sprue_diameter"`
	SprueLength    decimal.Decimal `json:"sprue_length,omitempty" yaml:"sprue_length"`
	ColdSlugWeight decimal.Decimal `json:"cold_slug_weight,omitempty" yaml:"cold_slug_weight"`
}

// ShotWeightResult is the material mass injected per cycle
type ShotWeightResult struct {
	RunnerProjectedArea   decimal.Decimal `json:"runner_projected_area"`
	RunnerProjectedVolume decimal.Decimal `json:"runner_projected_volume"`
	RunnerWeight          decimal.Decimal `json:"runner_weight"`

	TotalPartWeight   decimal.Decimal `json:"total_part_weight"`
	TotalRunnerWeight decimal.Decimal `json:"total_runner_weight"`
	TotalShotWeight   decimal.Decimal `json:"total_shot_weight"`
	RunnerToPartRatio decimal.Decimal `json:"runner_to_part_ratio"`

	SprueArea                decimal.Decimal `json:"sprue_area,omitempty"`
	SprueVolume              decimal.Decimal `json:"sprue_volume,omitempty"`
	SprueWeight              decimal.Decimal `json:"sprue_weight,omitempty"`
	ColdSlugWeight           decimal.Decimal `json:"cold_slug_weight,omitempty"`
	TotalShotWeightWithSprue decimal.Decimal `json:"total_shot_weight_with_sprue"`
}
