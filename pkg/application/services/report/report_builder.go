package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/domain/repositories"
	"github.com/vsinha/bomcost/pkg/domain/services"
)

// Builder summarizes the stored cost ledger of a BOM. It reads only; totals
// are whatever the last recalculation wrote.
type Builder struct {
	repo   repositories.CostRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewBuilder creates a report builder
func NewBuilder(repo repositories.CostRepository, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{repo: repo, logger: logger, now: time.Now}
}

// SetClock replaces the time source for GeneratedAt
func (b *Builder) SetClock(now func() time.Time) {
	b.now = now
}

// BuildReport groups the ledger by item type and totals the effective roots.
// Summing every item would count each child twice, once on its own and once
// inside its parent.
func (b *Builder) BuildReport(ctx context.Context, bomID entities.BOMID) (*entities.CostReport, error) {
	items, err := b.repo.GetItemsForBOM(ctx, bomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load items for bom %s: %w", bomID, err)
	}

	h := services.ResolveHierarchy(items)
	for _, w := range h.Warnings {
		b.logger.Warn("structural problem resolved",
			zap.String("bom_id", string(bomID)),
			zap.Stringer("kind", w.Kind),
			zap.String("item_id", string(w.ItemID)),
			zap.String("detail", w.Message),
		)
	}

	report := &entities.CostReport{
		BOMID:            bomID,
		GeneratedAt:      b.now(),
		OverallTotalCost: decimal.Zero,
		TotalItems:       h.Len(),
		ByType:           []entities.CostTypeSummary{},
		Lines:            make([]entities.CostReportLine, 0, h.Len()),
		Warnings:         h.Warnings,
	}

	groups := make(map[entities.ItemType]*entities.CostTypeSummary, len(entities.ItemTypes))
	for _, item := range h.Order() {
		cost, found, err := b.repo.GetCostRecord(ctx, item.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load cost record for %s: %w", item.ID, err)
		}

		group, ok := groups[item.ItemType]
		if !ok {
			group = &entities.CostTypeSummary{ItemType: item.ItemType}
			groups[item.ItemType] = group
		}
		group.Count++

		isRoot := h.IsRoot(item.ID)
		report.Lines = append(report.Lines, entities.CostReportLine{
			Item:     item,
			ItemID:   item.ID,
			Name:     item.Name,
			Type:     item.ItemType,
			Quantity: item.Quantity,
			Depth:    h.Depth(item.ID),
			IsRoot:   isRoot,
			Cost:     cost,
			HasCost:  found,
		})

		if !found {
			continue
		}
		report.ItemsWithCosts++
		if cost.IsStale {
			report.StaleCosts++
		}
		group.RawMaterialCost = group.RawMaterialCost.Add(cost.RawMaterialCost)
		group.ProcessCost = group.ProcessCost.Add(cost.ProcessCost)
		group.OwnCost = group.OwnCost.Add(cost.OwnCost)
		group.TotalCost = group.TotalCost.Add(cost.TotalCost)
		if isRoot {
			report.OverallTotalCost = report.OverallTotalCost.Add(cost.TotalCost)
		}
	}

	for _, itemType := range entities.ItemTypes {
		if group, ok := groups[itemType]; ok {
			report.ByType = append(report.ByType, *group)
		}
	}

	if report.NeedsRecalculation() || !report.IsComplete() {
		b.logger.Info("cost report has gaps",
			zap.String("bom_id", string(bomID)),
			zap.Int("stale", report.StaleCosts),
			zap.Int("without_costs", report.TotalItems-report.ItemsWithCosts),
		)
	}

	return report, nil
}
