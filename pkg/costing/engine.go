// Package costing is the caller-facing entry point: the hierarchy helpers,
// the per-item cost engines, the rollup, the report and the ledger write
// paths behind one Engine that shares a lock table and an event store.
package costing

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vsinha/bomcost/pkg/application/dto"
	"github.com/vsinha/bomcost/pkg/application/services/ledger"
	"github.com/vsinha/bomcost/pkg/application/services/report"
	"github.com/vsinha/bomcost/pkg/application/services/rollup"
	"github.com/vsinha/bomcost/pkg/application/services/shared"
	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/domain/repositories"
	"github.com/vsinha/bomcost/pkg/domain/services"
	"github.com/vsinha/bomcost/pkg/domain/services/calculators"
	"github.com/vsinha/bomcost/pkg/infrastructure/events"
)

// EngineConfig holds engine tuning
type EngineConfig struct {
	// RecalcConcurrency bounds RecalculateAll fan-out (0 = unlimited)
	RecalcConcurrency int
}

// Engine wires the costing services around one repository
type Engine struct {
	repo   repositories.Repository
	events events.EventStore
	logger *zap.Logger

	rollup *rollup.Service
	report *report.Builder
	ledger *ledger.Service
}

// NewEngine creates an engine with default configuration
func NewEngine(repo repositories.Repository, logger *zap.Logger) (*Engine, error) {
	return NewEngineWithConfig(repo, logger, EngineConfig{RecalcConcurrency: 4})
}

// NewEngineWithConfig creates an engine with custom configuration
func NewEngineWithConfig(repo repositories.Repository, logger *zap.Logger, config EngineConfig) (*Engine, error) {
	if repo == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// rollup passes and ledger writes on the same BOM must not interleave
	locks := &shared.KeyedMutex{}
	store := events.NewInMemoryEventStore(logger)

	rollupSvc := rollup.NewServiceWithConfig(repo, locks, logger, rollup.Config{
		MaxConcurrentBOMs: config.RecalcConcurrency,
	})
	rollupSvc.SetEventStore(store)

	ledgerSvc, err := ledger.NewService(repo, store, locks, logger)
	if err != nil {
		return nil, err
	}

	return &Engine{
		repo:   repo,
		events: store,
		logger: logger,
		rollup: rollupSvc,
		report: report.NewBuilder(repo, logger),
		ledger: ledgerSvc,
	}, nil
}

// SetClock replaces the time source of every service
func (e *Engine) SetClock(now func() time.Time) {
	e.rollup.SetClock(now)
	e.report.SetClock(now)
	e.ledger.SetClock(now)
}

// Events returns the store that records every change and recalculation
func (e *Engine) Events() events.EventStore {
	return e.events
}

// History returns every recorded change and recalculation of a BOM, oldest
// first
func (e *Engine) History(bomID entities.BOMID) ([]events.Event, error) {
	return e.events.History(bomID, 1)
}

// LastRecalculatedAt reports when the BOM was last rolled up in this process
func (e *Engine) LastRecalculatedAt(bomID entities.BOMID) (time.Time, bool, error) {
	history, err := e.events.History(bomID, 1)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read history of %s: %w", bomID, err)
	}
	last, ok := events.LastOfType(history, events.CostRecalculatedEvent)
	if !ok {
		return time.Time{}, false, nil
	}
	return last.Timestamp(), true, nil
}

// Repository returns the underlying repository
func (e *Engine) Repository() repositories.Repository {
	return e.repo
}

// Hierarchy

// BuildTree converts a flat item list into a forest
func (e *Engine) BuildTree(items []*entities.BomItem) *services.Forest {
	return services.BuildTree(items)
}

// OrderParentsBeforeChildren orders items so every parent precedes its children
func (e *Engine) OrderParentsBeforeChildren(items []*entities.BomItem) ([]*entities.BomItem, []entities.StructuralWarning) {
	return services.OrderParentsBeforeChildren(items)
}

// DepthOf counts declared hops from an item to its root or first repeated
// ancestor. Inside a cycle this can exceed the tree depth; display code
// should use services.ResolveHierarchy(items).Depth instead.
func (e *Engine) DepthOf(itemID entities.ItemID, items []*entities.BomItem) int {
	return services.DepthOf(itemID, items)
}

// ValidateBOM audits the stored structure of a BOM
func (e *Engine) ValidateBOM(ctx context.Context, bomID entities.BOMID) (*services.ValidationResult, error) {
	items, err := e.repo.GetItemsForBOM(ctx, bomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load items for bom %s: %w", bomID, err)
	}
	return services.ValidateHierarchy(items), nil
}

// Per-item engines

// CalculateMHR computes a machine hour rate
func (e *Engine) CalculateMHR(in entities.MHRRecord) (entities.MHRResult, error) {
	return calculators.NewMHRCalculator().Calculate(in)
}

// CalculateProcessCost computes the per-part cost of one operation
func (e *Engine) CalculateProcessCost(in entities.ProcessCostRecord) (entities.ProcessCostResult, error) {
	return calculators.NewProcessCalculator().Calculate(in)
}

// CalculateShotWeight computes the shot weight of a molding
func (e *Engine) CalculateShotWeight(in entities.ShotWeightRecord) (entities.ShotWeightResult, error) {
	return calculators.NewShotWeightCalculator().Calculate(in)
}

// CalculatePackaging computes packaging and logistics cost
func (e *Engine) CalculatePackaging(in entities.PackagingLogisticsInput) (entities.PackagingLogisticsResult, error) {
	return calculators.NewPackagingCalculator().Calculate(in)
}

// CalculateProcuredParts computes the landed cost of a bought-out part
func (e *Engine) CalculateProcuredParts(in entities.ProcuredPartInput) (entities.ProcuredPartResult, error) {
	return calculators.NewProcuredPartCalculator().Calculate(in)
}

// Rollup and reporting

// Recalculate rolls costs up through one BOM
func (e *Engine) Recalculate(ctx context.Context, bomID entities.BOMID) (*dto.RecalculationResult, error) {
	return e.rollup.Recalculate(ctx, bomID)
}

// RecalculateAll rolls up several BOMs concurrently. An empty list means
// every stored BOM.
func (e *Engine) RecalculateAll(ctx context.Context, bomIDs []entities.BOMID) ([]*dto.RecalculationResult, error) {
	if len(bomIDs) == 0 {
		all, err := e.repo.ListBOMs(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list boms: %w", err)
		}
		bomIDs = all
	}
	return e.rollup.RecalculateAll(ctx, bomIDs)
}

// BuildReport assembles the cost report of a BOM
func (e *Engine) BuildReport(ctx context.Context, bomID entities.BOMID) (*entities.CostReport, error) {
	return e.report.BuildReport(ctx, bomID)
}

// Ledger writes

// UpdateDirectCosts applies a partial direct cost update
func (e *Engine) UpdateDirectCosts(ctx context.Context, itemID entities.ItemID, update entities.DirectCostUpdate) (*entities.BomItemCost, error) {
	return e.ledger.UpdateDirectCosts(ctx, itemID, update)
}

// SetMargins sets the SGA and profit percentages of an item
func (e *Engine) SetMargins(ctx context.Context, itemID entities.ItemID, sga, profit *decimal.Decimal) (*entities.BomItemCost, error) {
	return e.ledger.SetMargins(ctx, itemID, sga, profit)
}

// CreateItem adds an item to a BOM
func (e *Engine) CreateItem(ctx context.Context, item *entities.BomItem) (*entities.BomItem, error) {
	return e.ledger.CreateItem(ctx, item)
}

// UpdateItem replaces an item's fields
func (e *Engine) UpdateItem(ctx context.Context, item *entities.BomItem) (*entities.BomItem, error) {
	return e.ledger.UpdateItem(ctx, item)
}

// DeleteItem removes an item and its ledger row
func (e *Engine) DeleteItem(ctx context.Context, itemID entities.ItemID) error {
	return e.ledger.DeleteItem(ctx, itemID)
}

// AddProcessInput stores an operation for an item
func (e *Engine) AddProcessInput(ctx context.Context, input *entities.ProcessCostRecord) (*entities.ProcessCostRecord, error) {
	return e.ledger.AddProcessInput(ctx, input)
}

// SaveMachineRate stores a machine hour rate
func (e *Engine) SaveMachineRate(ctx context.Context, machineRef string, rate decimal.Decimal) error {
	return e.ledger.SaveMachineRate(ctx, machineRef, rate)
}

// SaveMachine computes the hour rate of a machine and stores it under ref
func (e *Engine) SaveMachine(ctx context.Context, ref string, machine entities.MHRRecord) (entities.MHRResult, error) {
	res, err := e.CalculateMHR(machine)
	if err != nil {
		return entities.MHRResult{}, err
	}
	if err := e.ledger.SaveMachineRate(ctx, ref, res.TotalMachineHourRate); err != nil {
		return entities.MHRResult{}, err
	}
	return res, nil
}
