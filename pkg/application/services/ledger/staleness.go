package ledger

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/domain/repositories"
	"github.com/vsinha/bomcost/pkg/domain/services"
	"github.com/vsinha/bomcost/pkg/infrastructure/events"
)

// StalenessEventTypes are the events the marker subscribes to
var StalenessEventTypes = append(
	[]string{events.CostInputsChangedEvent, events.CostMarginsChangedEvent},
	events.StructuralEventTypes...,
)

// StalenessMarker flips ledger rows to stale when an upstream input changes.
// It runs inside AppendEvent, so callers holding the BOM lock keep holding it
// while rows are marked.
type StalenessMarker struct {
	repo   repositories.CostRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewStalenessMarker creates a marker writing through repo
func NewStalenessMarker(repo repositories.CostRepository, logger *zap.Logger) *StalenessMarker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StalenessMarker{repo: repo, logger: logger, now: time.Now}
}

func (m *StalenessMarker) CanHandle(eventType string) bool {
	for _, t := range StalenessEventTypes {
		if t == eventType {
			return true
		}
	}
	return false
}

func (m *StalenessMarker) Handle(ctx context.Context, event events.Event) error {
	var (
		bomID entities.BOMID
		chain func(h *services.Hierarchy) []entities.ItemID
	)

	switch data := event.Data().(type) {
	case events.CostInputsChanged:
		bomID = data.BOMID
		chain = func(h *services.Hierarchy) []entities.ItemID {
			return withAncestors(h, data.ItemID)
		}
	case events.CostMarginsChanged:
		// selling price only; parents aggregate totals, not prices
		bomID = data.BOMID
		chain = func(*services.Hierarchy) []entities.ItemID {
			return []entities.ItemID{data.ItemID}
		}
	case events.BOMItemCreated:
		bomID = data.Item.BOMID
		chain = func(h *services.Hierarchy) []entities.ItemID {
			return withAncestors(h, data.Item.ID)
		}
	case events.BOMItemUpdated:
		bomID = data.NewItem.BOMID
		chain = func(h *services.Hierarchy) []entities.ItemID {
			ids := withAncestors(h, data.NewItem.ID)
			if data.OldItem.HasParent() && data.OldItem.ParentID() != data.NewItem.ParentID() {
				ids = append(ids, withAncestors(h, data.OldItem.ParentID())...)
			}
			return ids
		}
	case events.BOMItemDeleted:
		bomID = data.Item.BOMID
		chain = func(h *services.Hierarchy) []entities.ItemID {
			if !data.Item.HasParent() {
				return nil
			}
			return withAncestors(h, data.Item.ParentID())
		}
	default:
		return fmt.Errorf("unexpected payload %T for event %s", event.Data(), event.Type())
	}

	items, err := m.repo.GetItemsForBOM(ctx, bomID)
	if err != nil {
		return fmt.Errorf("failed to load items for bom %s: %w", bomID, err)
	}

	marked, err := m.markAll(ctx, chain(services.ResolveHierarchy(items)))
	if err != nil {
		return err
	}

	m.logger.Debug("cost records marked stale",
		zap.String("bom_id", string(bomID)),
		zap.String("event", event.Type()),
		zap.Int("marked", marked),
	)
	return nil
}

// markAll sets isStale on every listed item that has a ledger row. Rows that
// are already stale are left untouched.
func (m *StalenessMarker) markAll(ctx context.Context, ids []entities.ItemID) (int, error) {
	marked := 0
	seen := make(map[entities.ItemID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		cost, found, err := m.repo.GetCostRecord(ctx, id)
		if err != nil {
			return marked, fmt.Errorf("failed to load cost record for %s: %w", id, err)
		}
		if !found || cost.IsStale {
			continue
		}
		cost.IsStale = true
		cost.UpdatedAt = m.now()
		if err := m.repo.UpsertCostRecord(ctx, id, cost); err != nil {
			return marked, fmt.Errorf("failed to mark %s stale: %w", id, err)
		}
		marked++
	}
	return marked, nil
}

// withAncestors returns id followed by its declared ancestor chain. An id not
// in the hierarchy is returned alone.
func withAncestors(h *services.Hierarchy, id entities.ItemID) []entities.ItemID {
	ids := []entities.ItemID{id}
	for _, ancestor := range h.DeclaredAncestors(id) {
		ids = append(ids, ancestor.ID)
	}
	return ids
}
