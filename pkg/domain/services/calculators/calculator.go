// Package calculators holds the per-item cost engines. Every engine is a pure
// function of a typed input record to a typed result record and shares the
// same validate-then-calculate shape.
package calculators

import (
	"github.com/shopspring/decimal"
	"github.com/vsinha/bomcost/pkg/domain/entities"
)

var hundred = decimal.NewFromInt(100)

// Calculator is implemented by every cost engine. Calculate returns the
// engine's ValidationErrors and a zero result when the input is invalid; no
// partial calculation is ever performed.
type Calculator[In, Out any] interface {
	Validate(in In) entities.ValidationErrors
	Calculate(in In) (Out, error)
}

func run[In, Out any](in In, validate func(In) entities.ValidationErrors, compute func(In) Out) (Out, error) {
	if errs := validate(in); errs.HasErrors() {
		var zero Out
		return zero, errs
	}
	return compute(in), nil
}

func requirePositive(errs *entities.ValidationErrors, field string, v decimal.Decimal) {
	if !v.IsPositive() {
		errs.Addf(field, "must be greater than 0, got %s", v)
	}
}

func requireNonNegative(errs *entities.ValidationErrors, field string, v decimal.Decimal) {
	if v.IsNegative() {
		errs.Addf(field, "cannot be negative, got %s", v)
	}
}

func requirePercentage(errs *entities.ValidationErrors, field string, v decimal.Decimal) {
	if v.IsNegative() || v.GreaterThan(hundred) {
		errs.Addf(field, "must be between 0 and 100, got %s", v)
	}
}
