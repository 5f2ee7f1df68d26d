package rollup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vsinha/bomcost/pkg/application/dto"
	"github.com/vsinha/bomcost/pkg/application/services/shared"
	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/domain/repositories"
	"github.com/vsinha/bomcost/pkg/domain/services"
	"github.com/vsinha/bomcost/pkg/domain/services/calculators"
	"github.com/vsinha/bomcost/pkg/infrastructure/events"
)

// Config holds rollup tuning
type Config struct {
	// MaxConcurrentBOMs bounds RecalculateAll fan-out (0 = unlimited)
	MaxConcurrentBOMs int
}

// Service recomputes aggregated costs bottom-up through a BOM
type Service struct {
	config  Config
	repo    repositories.CostRepository
	locks   *shared.KeyedMutex
	events  events.EventStore
	logger  *zap.Logger
	now     func() time.Time
	process calculators.ProcessCalculator
}

// NewService creates a rollup service with default configuration. locks is
// shared with every writer that must not interleave with a recalculation.
func NewService(repo repositories.CostRepository, locks *shared.KeyedMutex, logger *zap.Logger) *Service {
	return NewServiceWithConfig(repo, locks, logger, Config{MaxConcurrentBOMs: 4})
}

// NewServiceWithConfig creates a rollup service with custom configuration
func NewServiceWithConfig(
	repo repositories.CostRepository,
	locks *shared.KeyedMutex,
	logger *zap.Logger,
	config Config,
) *Service {
	if locks == nil {
		locks = &shared.KeyedMutex{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		config:  config,
		repo:    repo,
		locks:   locks,
		logger:  logger,
		now:     time.Now,
		process: calculators.NewProcessCalculator(),
	}
}

// SetClock replaces the time source used for lastCalculatedAt
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// SetEventStore makes every completed pass append a cost.recalculated event
func (s *Service) SetEventStore(store events.EventStore) {
	s.events = store
}

// Recalculate runs a full child-before-parent pass over one BOM. Only one
// pass per BOM runs at a time; other BOMs are not blocked.
func (s *Service) Recalculate(ctx context.Context, bomID entities.BOMID) (*dto.RecalculationResult, error) {
	unlock := s.locks.Lock(string(bomID))
	defer unlock()

	start := s.now()
	log := s.logger.With(zap.String("bom_id", string(bomID)))

	items, err := s.repo.GetItemsForBOM(ctx, bomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load items for bom %s: %w", bomID, err)
	}

	h := services.ResolveHierarchy(items)
	for _, w := range h.Warnings {
		log.Warn("structural problem resolved",
			zap.Stringer("kind", w.Kind),
			zap.String("item_id", string(w.ItemID)),
			zap.String("related_id", string(w.RelatedID)),
			zap.String("detail", w.Message),
		)
	}

	result := &dto.RecalculationResult{
		BOMID:        bomID,
		Warnings:     h.Warnings,
		CalculatedAt: start,
	}
	totals := make(map[entities.ItemID]decimal.Decimal, h.Len())

	for _, item := range h.ReverseOrder() {
		result.ItemsProcessed++

		cost, found, err := s.repo.GetCostRecord(ctx, item.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load cost record for %s: %w", item.ID, err)
		}

		processCost, hasOperations, err := s.processCost(ctx, item, result, log)
		if err != nil {
			return nil, err
		}

		childrenCost := decimal.Zero
		costedChildren := false
		for _, child := range h.Children(item.ID) {
			if total, ok := totals[child.ID]; ok {
				childrenCost = childrenCost.Add(total)
				costedChildren = true
			}
		}

		if !found {
			if !hasOperations && !costedChildren {
				result.MissingCostRecords = append(result.MissingCostRecords, item.ID)
				log.Debug("no cost data for item", zap.String("item_id", string(item.ID)))
				continue
			}
			cost = entities.NewBomItemCost(item.ID, start)
			result.RecordsCreated++
		}
		if hasOperations {
			cost.ProcessCost = processCost
		}

		Apply(cost, item.Quantity, childrenCost, start)

		if err := s.repo.UpsertCostRecord(ctx, item.ID, cost); err != nil {
			return nil, fmt.Errorf("failed to save cost record for %s: %w", item.ID, err)
		}
		totals[item.ID] = cost.TotalCost
		result.RecordsWritten++
	}

	result.Duration = s.now().Sub(start)

	if s.events != nil {
		event := events.NewCostRecalculatedEvent(bomID, result.ItemsProcessed, result.RecordsWritten, start)
		if err := s.events.AppendEvent(ctx, event); err != nil {
			return nil, fmt.Errorf("failed to publish recalculation of %s: %w", bomID, err)
		}
	}

	log.Info("bom recalculated",
		zap.Int("items", result.ItemsProcessed),
		zap.Int("written", result.RecordsWritten),
		zap.Int("created", result.RecordsCreated),
		zap.Int("missing_cost_records", len(result.MissingCostRecords)),
		zap.Int("missing_machine_rates", len(result.MissingMachineRates)),
		zap.Int("rejected_operations", len(result.RejectedOperations)),
		zap.Int("warnings", len(result.Warnings)),
		zap.Duration("duration", result.Duration),
	)

	return result, nil
}

// RecalculateAll recalculates several BOMs concurrently. Results keep the
// order of bomIDs; the first failure cancels the remaining passes.
func (s *Service) RecalculateAll(ctx context.Context, bomIDs []entities.BOMID) ([]*dto.RecalculationResult, error) {
	results := make([]*dto.RecalculationResult, len(bomIDs))

	g, gctx := errgroup.WithContext(ctx)
	if s.config.MaxConcurrentBOMs > 0 {
		g.SetLimit(s.config.MaxConcurrentBOMs)
	}

	for i, bomID := range bomIDs {
		g.Go(func() error {
			res, err := s.Recalculate(gctx, bomID)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// processCost sums the per-part cost of the item's operations. Machine
// references are resolved to stored hour rates; a missing rate counts as 0
// and an invalid operation contributes nothing.
func (s *Service) processCost(
	ctx context.Context,
	item *entities.BomItem,
	result *dto.RecalculationResult,
	log *zap.Logger,
) (decimal.Decimal, bool, error) {
	operations, err := s.repo.GetProcessInputsForItem(ctx, item.ID)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("failed to load process inputs for %s: %w", item.ID, err)
	}
	if len(operations) == 0 {
		return decimal.Zero, false, nil
	}

	total := decimal.Zero
	for _, op := range operations {
		input := *op
		if op.MachineRef != "" {
			rate, found, err := s.repo.GetMHRRate(ctx, op.MachineRef)
			if err != nil {
				return decimal.Zero, true, fmt.Errorf("failed to load machine rate %s: %w", op.MachineRef, err)
			}
			if !found {
				result.MissingMachineRates = appendUnique(result.MissingMachineRates, op.MachineRef)
				log.Debug("machine rate missing",
					zap.String("item_id", string(item.ID)),
					zap.String("machine_ref", op.MachineRef))
			}
			input.MachineRate = rate
		}

		res, err := s.process.Calculate(input)
		if err != nil {
			var verrs entities.ValidationErrors
			if !errors.As(err, &verrs) {
				return decimal.Zero, true, err
			}
			result.RejectedOperations = append(result.RejectedOperations, dto.OperationError{
				ItemID:      item.ID,
				OperationID: op.ID,
				Errors:      verrs,
			})
			log.Warn("process input rejected",
				zap.String("item_id", string(item.ID)),
				zap.String("operation_id", op.ID),
				zap.Error(err))
			continue
		}
		total = total.Add(res.TotalCostPerPart)
	}

	return total, true, nil
}

func appendUnique(list []string, value string) []string {
	for _, v := range list {
		if v == value {
			return list
		}
	}
	return append(list, value)
}
