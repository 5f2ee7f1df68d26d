package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// BomItemCost is the cost ledger row of a single BomItem. Direct cost fields
// are entered or computed for the item alone; aggregate fields are written by
// the rollup pass.
type BomItemCost struct {
	ItemID ItemID `json:"item_id"`

	// Direct contributions
	RawMaterialCost        decimal.Decimal `json:"raw_material_cost"`
	ProcessCost            decimal.Decimal `json:"process_cost"`
	PackagingLogisticsCost decimal.Decimal `json:"packaging_logistics_cost"`
	ProcuredPartsCost      decimal.Decimal `json:"procured_parts_cost"`

	// Aggregates
	DirectChildrenCost decimal.Decimal `json:"direct_children_cost"`
	OwnCost            decimal.Decimal `json:"own_cost"`
	TotalCost          decimal.Decimal `json:"total_cost"`
	UnitCost           decimal.Decimal `json:"unit_cost"`
	ExtendedCost       decimal.Decimal `json:"extended_cost"`

	SGAPercentage    *decimal.Decimal `json:"sga_percentage,omitempty"`
	ProfitPercentage *decimal.Decimal `json:"profit_percentage,omitempty"`
	SellingPrice     decimal.Decimal  `json:"selling_price"`

	IsStale          bool       `json:"is_stale"`
	LastCalculatedAt *time.Time `json:"last_calculated_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NewBomItemCost returns an empty, stale ledger row for an item
func NewBomItemCost(itemID ItemID, now time.Time) *BomItemCost {
	return &BomItemCost{
		ItemID:    itemID,
		IsStale:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DirectCost sums the four direct contributions
func (c *BomItemCost) DirectCost() decimal.Decimal {
	return c.RawMaterialCost.
		Add(c.ProcessCost).
		Add(c.PackagingLogisticsCost).
		Add(c.ProcuredPartsCost)
}

// Clone returns a deep copy safe to hand out of a repository
func (c *BomItemCost) Clone() *BomItemCost {
	if c == nil {
		return nil
	}
	out := *c
	if c.SGAPercentage != nil {
		v := *c.SGAPercentage
		out.SGAPercentage = &v
	}
	if c.ProfitPercentage != nil {
		v := *c.ProfitPercentage
		out.ProfitPercentage = &v
	}
	if c.LastCalculatedAt != nil {
		v := *c.LastCalculatedAt
		out.LastCalculatedAt = &v
	}
	return &out
}

// DirectCostUpdate carries a partial write to the direct cost fields. Nil
// fields are left untouched.
type DirectCostUpdate struct {
	RawMaterialCost        *decimal.Decimal
	ProcessCost            *decimal.Decimal
	PackagingLogisticsCost *decimal.Decimal
	ProcuredPartsCost      *decimal.Decimal
}

// IsEmpty reports whether the update changes nothing
func (u DirectCostUpdate) IsEmpty() bool {
	return u.RawMaterialCost == nil &&
		u.ProcessCost == nil &&
		u.PackagingLogisticsCost == nil &&
		u.ProcuredPartsCost == nil
}

// Apply copies the provided fields onto a ledger row
func (u DirectCostUpdate) Apply(c *BomItemCost) {
	if u.RawMaterialCost != nil {
		c.RawMaterialCost = *u.RawMaterialCost
	}
	if u.ProcessCost != nil {
		c.ProcessCost = *u.ProcessCost
	}
	if u.PackagingLogisticsCost != nil {
		c.PackagingLogisticsCost = *u.PackagingLogisticsCost
	}
	if u.ProcuredPartsCost != nil {
		c.ProcuredPartsCost = *u.ProcuredPartsCost
	}
}
