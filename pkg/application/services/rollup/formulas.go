package rollup

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/domain/services"
)

// Apply recomputes the aggregate fields of a ledger row from its direct costs
// and the summed totals of the item's direct children, and marks it fresh.
// quantity is the item's quantity per parent.
func Apply(cost *entities.BomItemCost, quantity, childrenCost decimal.Decimal, at time.Time) {
	cost.OwnCost = cost.DirectCost()
	cost.DirectChildrenCost = childrenCost
	cost.TotalCost = cost.OwnCost.Add(childrenCost)
	cost.UnitCost = cost.TotalCost
	cost.ExtendedCost = services.Round(cost.UnitCost.Mul(quantity), services.CostPrecision)
	cost.SellingPrice = SellingPrice(cost.TotalCost, cost.SGAPercentage, cost.ProfitPercentage)

	cost.IsStale = false
	calculatedAt := at
	cost.LastCalculatedAt = &calculatedAt
	cost.UpdatedAt = at
}

// SellingPrice applies SGA and then profit on top of it. A nil percentage
// counts as zero.
func SellingPrice(total decimal.Decimal, sga, profit *decimal.Decimal) decimal.Decimal {
	price := total
	if sga != nil {
		price = services.AddPercentage(price, *sga)
	}
	if profit != nil {
		price = services.AddPercentage(price, *profit)
	}
	return services.Round(price, services.CostPrecision)
}
