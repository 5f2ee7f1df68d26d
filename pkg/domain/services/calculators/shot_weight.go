package calculators

import (
	"math"

	"github.com/shopspring/decimal"
	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/domain/services"
)

var (
	pi       = decimal.NewFromFloat(math.Pi)
	two      = decimal.NewFromInt(2)
	thousand = decimal.NewFromInt(1000)
)

// ShotWeightCalculator computes the material mass injected per molding cycle.
// Every derived value is rounded to four places and carried forward rounded.
type ShotWeightCalculator struct{}

var _ Calculator[entities.ShotWeightRecord, entities.ShotWeightResult] = ShotWeightCalculator{}

// NewShotWeightCalculator creates a shot weight calculator
func NewShotWeightCalculator() ShotWeightCalculator {
	return ShotWeightCalculator{}
}

// Validate reports every non-positive geometry or material input at once
func (ShotWeightCalculator) Validate(in entities.ShotWeightRecord) entities.ValidationErrors {
	var errs entities.ValidationErrors

	requirePositive(&errs, "material_density", in.MaterialDensity)
	requirePositive(&errs, "part_volume", in.PartVolume)
	requirePositive(&errs, "part_weight", in.PartWeight)
	requirePositive(&errs, "cavities", in.Cavities)
	requirePositive(&errs, "runner_diameter", in.RunnerDiameter)
	requirePositive(&errs, "runner_length", in.RunnerLength)

	if in.IncludeSprue {
		requirePositive(&errs, "sprue_diameter", in.SprueDiameter)
		requirePositive(&errs, "sprue_length", in.SprueLength)
		requireNonNegative(&errs, "cold_slug_weight", in.ColdSlugWeight)
	}

	return errs
}

// Calculate validates the record and computes the shot weight
func (c ShotWeightCalculator) Calculate(in entities.ShotWeightRecord) (entities.ShotWeightResult, error) {
	return run(in, c.Validate, computeShotWeight)
}

func computeShotWeight(in entities.ShotWeightRecord) entities.ShotWeightResult {
	r4 := func(d decimal.Decimal) decimal.Decimal { return services.Round(d, services.WeightPrecision) }

	var res entities.ShotWeightResult

	res.RunnerProjectedArea = r4(circleArea(in.RunnerDiameter))
	res.RunnerProjectedVolume = r4(res.RunnerProjectedArea.Mul(in.RunnerLength))
	res.RunnerWeight = r4(gramsFromVolume(res.RunnerProjectedVolume, in.MaterialDensity))

	res.TotalPartWeight = r4(in.PartWeight.Mul(in.Cavities))
	res.TotalRunnerWeight = r4(res.RunnerWeight.Mul(in.Cavities))
	res.TotalShotWeight = r4(res.TotalPartWeight.Add(res.TotalRunnerWeight))
	res.RunnerToPartRatio = r4(services.PercentOf(res.TotalRunnerWeight, res.TotalPartWeight))

	res.TotalShotWeightWithSprue = res.TotalShotWeight
	if in.IncludeSprue {
		res.SprueArea = r4(circleArea(in.SprueDiameter))
		res.SprueVolume = r4(res.SprueArea.Mul(in.SprueLength))
		res.SprueWeight = r4(gramsFromVolume(res.SprueVolume, in.MaterialDensity))
		res.ColdSlugWeight = r4(in.ColdSlugWeight)
		res.TotalShotWeightWithSprue = r4(services.Sum(res.TotalShotWeight, res.SprueWeight, res.ColdSlugWeight))
	}

	return res
}

// circleArea returns π(d/2)² in mm² for a diameter in mm
func circleArea(diameter decimal.Decimal) decimal.Decimal {
	radius := diameter.Div(two)
	return pi.Mul(radius).Mul(radius)
}

// gramsFromVolume converts mm³ at a density in kg/m³ to grams
func gramsFromVolume(volumeMM3, densityKgM3 decimal.Decimal) decimal.Decimal {
	cm3 := volumeMM3.Div(thousand)
	gPerCm3 := densityKgM3.Div(thousand)
	return cm3.Mul(gPerCm3)
}
