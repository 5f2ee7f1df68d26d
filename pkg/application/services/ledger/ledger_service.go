package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vsinha/bomcost/pkg/application/services/shared"
	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/domain/repositories"
	"github.com/vsinha/bomcost/pkg/domain/services"
	"github.com/vsinha/bomcost/pkg/domain/services/calculators"
	"github.com/vsinha/bomcost/pkg/infrastructure/events"
)

// ErrNoChanges is returned when a cost update carries no fields
var ErrNoChanges = errors.New("no cost fields to update")

// Service owns every write that can invalidate a computed total. Each write
// holds the BOM lock shared with the rollup service and publishes an event;
// the subscribed StalenessMarker does the marking.
type Service struct {
	repo   repositories.Repository
	events events.EventStore
	locks  *shared.KeyedMutex
	logger *zap.Logger
	now    func() time.Time
	marker *StalenessMarker
}

// NewService wires a ledger service and subscribes its staleness marker to
// store. A nil store gets a private in-memory one.
func NewService(
	repo repositories.Repository,
	store events.EventStore,
	locks *shared.KeyedMutex,
	logger *zap.Logger,
) (*Service, error) {
	if store == nil {
		store = events.NewInMemoryEventStore(logger)
	}
	if locks == nil {
		locks = &shared.KeyedMutex{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	marker := NewStalenessMarker(repo, logger)
	if err := store.Subscribe(StalenessEventTypes, marker); err != nil {
		return nil, fmt.Errorf("failed to subscribe staleness marker: %w", err)
	}

	return &Service{
		repo:   repo,
		events: store,
		locks:  locks,
		logger: logger,
		now:    time.Now,
		marker: marker,
	}, nil
}

// SetClock replaces the time source for timestamps
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
	s.marker.now = now
}

// Events returns the store this service publishes to
func (s *Service) Events() events.EventStore {
	return s.events
}

// UpdateDirectCosts applies a partial update to an item's direct costs,
// creating the ledger row on first write. The item and its ancestors are
// marked stale.
func (s *Service) UpdateDirectCosts(
	ctx context.Context,
	itemID entities.ItemID,
	update entities.DirectCostUpdate,
) (*entities.BomItemCost, error) {
	if update.IsEmpty() {
		return nil, ErrNoChanges
	}
	if errs := validateDirectCosts(update); errs.HasErrors() {
		return nil, errs
	}

	item, unlock, err := s.lockItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	cost, err := s.loadOrCreate(ctx, itemID)
	if err != nil {
		return nil, err
	}
	update.Apply(cost)
	cost.UpdatedAt = s.now()
	if err := s.repo.UpsertCostRecord(ctx, itemID, cost); err != nil {
		return nil, fmt.Errorf("failed to save cost record for %s: %w", itemID, err)
	}

	event := events.NewCostInputsChangedEvent(item, changedFields(update), s.now())
	if err := s.events.AppendEvent(ctx, event); err != nil {
		return nil, err
	}

	return s.reload(ctx, itemID)
}

// SetMargins sets the SGA and profit percentages used for the selling price.
// A nil percentage removes that margin.
func (s *Service) SetMargins(
	ctx context.Context,
	itemID entities.ItemID,
	sga, profit *decimal.Decimal,
) (*entities.BomItemCost, error) {
	var errs entities.ValidationErrors
	validatePercentage(&errs, "sga_percentage", sga)
	validatePercentage(&errs, "profit_percentage", profit)
	if errs.HasErrors() {
		return nil, errs
	}

	item, unlock, err := s.lockItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	cost, err := s.loadOrCreate(ctx, itemID)
	if err != nil {
		return nil, err
	}
	cost.SGAPercentage = copyDecimal(sga)
	cost.ProfitPercentage = copyDecimal(profit)
	cost.UpdatedAt = s.now()
	if err := s.repo.UpsertCostRecord(ctx, itemID, cost); err != nil {
		return nil, fmt.Errorf("failed to save cost record for %s: %w", itemID, err)
	}

	if err := s.events.AppendEvent(ctx, events.NewCostMarginsChangedEvent(item, s.now())); err != nil {
		return nil, err
	}

	return s.reload(ctx, itemID)
}

// CreateItem adds an item to a BOM. An empty id is replaced by a generated
// one. The parent, when given, must already exist in the same BOM.
func (s *Service) CreateItem(ctx context.Context, item *entities.BomItem) (*entities.BomItem, error) {
	if item == nil {
		return nil, fmt.Errorf("item cannot be nil")
	}
	created := item.Clone()
	if created.ID == "" {
		created.ID = entities.ItemID(uuid.NewString())
	}
	if err := validateItem(created); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(string(created.BOMID))
	defer unlock()

	if _, err := s.repo.GetItem(ctx, created.ID); err == nil {
		return nil, fmt.Errorf("item %s already exists", created.ID)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check item %s: %w", created.ID, err)
	}
	if err := s.checkParent(ctx, created); err != nil {
		return nil, err
	}

	now := s.now()
	created.CreatedAt = now
	created.UpdatedAt = now
	if err := s.repo.SaveItem(ctx, created); err != nil {
		return nil, fmt.Errorf("failed to save item %s: %w", created.ID, err)
	}

	if err := s.events.AppendEvent(ctx, events.NewBOMItemCreatedEvent(created, now)); err != nil {
		return nil, err
	}

	s.logger.Info("bom item created",
		zap.String("bom_id", string(created.BOMID)),
		zap.String("item_id", string(created.ID)))
	return created, nil
}

// UpdateItem replaces an item's attributes. Moving an item to another BOM is
// rejected, as is re-parenting that would close a cycle.
func (s *Service) UpdateItem(ctx context.Context, item *entities.BomItem) (*entities.BomItem, error) {
	if item == nil {
		return nil, fmt.Errorf("item cannot be nil")
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}

	old, unlock, err := s.lockItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()
	if old.BOMID != item.BOMID {
		return nil, fmt.Errorf("item %s cannot move from bom %s to %s", item.ID, old.BOMID, item.BOMID)
	}

	if err := s.checkParent(ctx, item); err != nil {
		return nil, err
	}
	if item.HasParent() {
		items, err := s.repo.GetItemsForBOM(ctx, item.BOMID)
		if err != nil {
			return nil, fmt.Errorf("failed to load items for bom %s: %w", item.BOMID, err)
		}
		h := services.ResolveHierarchy(items)
		for _, ancestor := range h.DeclaredAncestors(item.ParentID()) {
			if ancestor.ID == item.ID {
				return nil, fmt.Errorf("re-parenting %s under %s would create a cycle", item.ID, item.ParentID())
			}
		}
	}

	updated := item.Clone()
	updated.CreatedAt = old.CreatedAt
	updated.UpdatedAt = s.now()
	if err := s.repo.SaveItem(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to save item %s: %w", updated.ID, err)
	}

	event := events.NewBOMItemUpdatedEvent(old, updated, updated.UpdatedAt)
	if err := s.events.AppendEvent(ctx, event); err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteItem removes an item with its ledger row and process inputs. Its
// children keep their parent reference and become roots.
func (s *Service) DeleteItem(ctx context.Context, itemID entities.ItemID) error {
	item, unlock, err := s.lockItem(ctx, itemID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.repo.DeleteCostRecord(ctx, itemID); err != nil {
		return fmt.Errorf("failed to delete cost record for %s: %w", itemID, err)
	}
	if err := s.repo.DeleteItem(ctx, itemID); err != nil {
		return fmt.Errorf("failed to delete item %s: %w", itemID, err)
	}

	if err := s.events.AppendEvent(ctx, events.NewBOMItemDeletedEvent(item, s.now())); err != nil {
		return err
	}

	s.logger.Info("bom item deleted",
		zap.String("bom_id", string(item.BOMID)),
		zap.String("item_id", string(itemID)))
	return nil
}

// AddProcessInput stores an operation for an item, generating an id when
// none is given. The operation is validated before it is stored.
func (s *Service) AddProcessInput(
	ctx context.Context,
	input *entities.ProcessCostRecord,
) (*entities.ProcessCostRecord, error) {
	if input == nil {
		return nil, fmt.Errorf("process input cannot be nil")
	}
	if errs := calculators.NewProcessCalculator().Validate(*input); errs.HasErrors() {
		return nil, errs
	}

	stored := *input
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	item, unlock, err := s.lockItem(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := s.repo.SaveProcessInput(ctx, &stored); err != nil {
		return nil, fmt.Errorf("failed to save process input %s: %w", stored.ID, err)
	}

	event := events.NewCostInputsChangedEvent(item, []string{"process_cost"}, s.now())
	if err := s.events.AppendEvent(ctx, event); err != nil {
		return nil, err
	}
	return &stored, nil
}

// SaveMachineRate stores a machine hour rate and marks every item with an
// operation on that machine stale
func (s *Service) SaveMachineRate(ctx context.Context, machineRef string, rate decimal.Decimal) error {
	if machineRef == "" {
		return fmt.Errorf("machine reference cannot be empty")
	}
	if rate.IsNegative() {
		errs := entities.ValidationErrors{}
		errs.Addf("machine_rate", "must be non-negative, got %s", rate)
		return errs
	}

	if err := s.repo.SaveMHRRate(ctx, machineRef, rate); err != nil {
		return fmt.Errorf("failed to save machine rate %s: %w", machineRef, err)
	}

	boms, err := s.repo.ListBOMs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list boms: %w", err)
	}
	for _, bomID := range boms {
		if err := s.markMachineUsers(ctx, bomID, machineRef); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) markMachineUsers(ctx context.Context, bomID entities.BOMID, machineRef string) error {
	unlock := s.locks.Lock(string(bomID))
	defer unlock()

	items, err := s.repo.GetItemsForBOM(ctx, bomID)
	if err != nil {
		return fmt.Errorf("failed to load items for bom %s: %w", bomID, err)
	}
	for _, item := range items {
		operations, err := s.repo.GetProcessInputsForItem(ctx, item.ID)
		if err != nil {
			return fmt.Errorf("failed to load process inputs for %s: %w", item.ID, err)
		}
		for _, op := range operations {
			if op.MachineRef != machineRef {
				continue
			}
			event := events.NewCostInputsChangedEvent(item, []string{"process_cost"}, s.now())
			if err := s.events.AppendEvent(ctx, event); err != nil {
				return err
			}
			break
		}
	}
	return nil
}

// lockItem takes the lock of the item's BOM and returns the item as stored
// once the lock is held. Anything read before locking may already be
// outdated, so events are built from this copy only. Items never change BOM,
// which makes the unlocked read good enough to pick the lock.
func (s *Service) lockItem(ctx context.Context, itemID entities.ItemID) (*entities.BomItem, func(), error) {
	current, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load item %s: %w", itemID, err)
	}

	unlock := s.locks.Lock(string(current.BOMID))
	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		unlock()
		return nil, nil, fmt.Errorf("failed to load item %s: %w", itemID, err)
	}
	return item, unlock, nil
}

func (s *Service) loadOrCreate(ctx context.Context, itemID entities.ItemID) (*entities.BomItemCost, error) {
	cost, found, err := s.repo.GetCostRecord(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cost record for %s: %w", itemID, err)
	}
	if !found {
		cost = entities.NewBomItemCost(itemID, s.now())
	}
	return cost, nil
}

func (s *Service) reload(ctx context.Context, itemID entities.ItemID) (*entities.BomItemCost, error) {
	cost, _, err := s.repo.GetCostRecord(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload cost record for %s: %w", itemID, err)
	}
	return cost, nil
}

func (s *Service) checkParent(ctx context.Context, item *entities.BomItem) error {
	if !item.HasParent() {
		return nil
	}
	parent, err := s.repo.GetItem(ctx, item.ParentID())
	if err != nil {
		return fmt.Errorf("parent %s of %s: %w", item.ParentID(), item.ID, err)
	}
	if parent.BOMID != item.BOMID {
		return fmt.Errorf("parent %s of %s belongs to bom %s, not %s", parent.ID, item.ID, parent.BOMID, item.BOMID)
	}
	return nil
}

// validateItem runs the constructor checks on an already built item
func validateItem(item *entities.BomItem) error {
	_, err := entities.NewBomItem(
		item.ID,
		item.BOMID,
		item.ParentItemID,
		item.ItemType,
		item.Name,
		item.Quantity,
		item.AnnualVolume,
	)
	return err
}

func validateDirectCosts(update entities.DirectCostUpdate) entities.ValidationErrors {
	var errs entities.ValidationErrors
	check := func(field string, v *decimal.Decimal) {
		if v != nil && v.IsNegative() {
			errs.Addf(field, "must be non-negative, got %s", v)
		}
	}
	check("raw_material_cost", update.RawMaterialCost)
	check("process_cost", update.ProcessCost)
	check("packaging_logistics_cost", update.PackagingLogisticsCost)
	check("procured_parts_cost", update.ProcuredPartsCost)
	return errs
}

func validatePercentage(errs *entities.ValidationErrors, field string, v *decimal.Decimal) {
	if v == nil {
		return
	}
	if v.IsNegative() || v.GreaterThan(decimal.NewFromInt(100)) {
		errs.Addf(field, "must be between 0 and 100, got %s", v)
	}
}

func changedFields(update entities.DirectCostUpdate) []string {
	var fields []string
	if update.RawMaterialCost != nil {
		fields = append(fields, "raw_material_cost")
	}
	if update.ProcessCost != nil {
		fields = append(fields, "process_cost")
	}
	if update.PackagingLogisticsCost != nil {
		fields = append(fields, "packaging_logistics_cost")
	}
	if update.ProcuredPartsCost != nil {
		fields = append(fields, "procured_parts_cost")
	}
	return fields
}

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := *d
	return &v
}
