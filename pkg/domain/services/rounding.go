package services

import "github.com/shopspring/decimal"

// Published precision table. Currency, hours and rates are shown to 2
// places; process per-part costs need 6 because they are multiplied by large
// annual volumes.
const (
	CurrencyPrecision int32 = 2
	HoursPrecision    int32 = 2
	RatePrecision     int32 = 2
	CostPrecision     int32 = 6
	PercentPrecision  int32 = 4
	WeightPrecision   int32 = 4
)

var hundred = decimal.NewFromInt(100)

// Round rounds half away from zero to the given number of places
func Round(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Round(places)
}

// SafeDiv divides n by d, returning zero instead of panicking when d is zero
func SafeDiv(n, d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return decimal.Zero
	}
	return n.Div(d)
}

// ApplyPercentage returns pct percent of base (pct on a 0-100 scale)
func ApplyPercentage(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(hundred)
}

// AddPercentage returns base increased by pct percent
func AddPercentage(base, pct decimal.Decimal) decimal.Decimal {
	return base.Add(ApplyPercentage(base, pct))
}

// PercentOf returns part as a percentage of whole, zero when whole is zero
func PercentOf(part, whole decimal.Decimal) decimal.Decimal {
	return SafeDiv(part, whole).Mul(hundred)
}

// Sum adds a list of decimals
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
