package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CostTypeSummary aggregates the cost ledger of every item of one type
type CostTypeSummary struct {
	ItemType        ItemType        `json:"item_type"`
	Count           int             `json:"count"`
	RawMaterialCost decimal.Decimal `json:"raw_material_cost"`
	ProcessCost     decimal.Decimal `json:"process_cost"`
	OwnCost         decimal.Decimal `json:"own_cost"`
	TotalCost       decimal.Decimal `json:"total_cost"`
}

// CostReportLine is one item of the report in parent-before-child order
type CostReportLine struct {
	Item     *BomItem        `json:"-"`
	ItemID   ItemID          `json:"item_id"`
	Name     string          `json:"name"`
	Type     ItemType        `json:"item_type"`
	Quantity decimal.Decimal `json:"quantity"`
	Depth    int             `json:"depth"`
	IsRoot   bool            `json:"is_root"`
	Cost     *BomItemCost    `json:"cost,omitempty"`
	HasCost  bool            `json:"has_cost"`
}

// CostReport summarizes a BOM's cost ledger
type CostReport struct {
	BOMID            BOMID               `json:"bom_id"`
	GeneratedAt      time.Time           `json:"generated_at"`
	ByType           []CostTypeSummary   `json:"by_type"`
	OverallTotalCost decimal.Decimal     `json:"overall_total_cost"`
	TotalItems       int                 `json:"total_items"`
	ItemsWithCosts   int                 `json:"items_with_costs"`
	StaleCosts       int                 `json:"stale_costs"`
	Lines            []CostReportLine    `json:"lines"`
	Warnings         []StructuralWarning `json:"warnings,omitempty"`
}

// NeedsRecalculation reports whether any cost record is stale
func (r *CostReport) NeedsRecalculation() bool {
	return r.StaleCosts > 0
}

// IsComplete reports whether every item has a cost record
func (r *CostReport) IsComplete() bool {
	return r.ItemsWithCosts == r.TotalItems
}

// Banners returns the non-blocking notices a caller should surface
func (r *CostReport) Banners() []string {
	var banners []string
	if r.StaleCosts > 0 {
		banners = append(banners, fmt.Sprintf("%d items have stale costs", r.StaleCosts))
	}
	if missing := r.TotalItems - r.ItemsWithCosts; missing > 0 {
		banners = append(banners, fmt.Sprintf("%d items have no cost data", missing))
	}
	for _, w := range r.Warnings {
		if w.Kind == CycleDetected || w.Kind == SelfReference {
			banners = append(banners, fmt.Sprintf("cycle detected and auto-resolved at item %s", w.ItemID))
		}
	}
	return banners
}
