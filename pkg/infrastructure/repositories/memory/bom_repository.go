package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/domain/repositories"
)

// Repository provides in-memory storage for BOM items and their cost ledger.
// Items live in one arena slice with an id index; everything handed out is a
// copy, so callers cannot mutate stored state behind the lock.
type Repository struct {
	mutex sync.RWMutex

	items    []entities.BomItem
	itemsMap map[entities.ItemID]int

	costs         map[entities.ItemID]*entities.BomItemCost
	processInputs map[entities.ItemID][]*entities.ProcessCostRecord
	mhrRates      map[string]decimal.Decimal
}

// NewRepository creates a new in-memory repository
func NewRepository(expectedItems int) *Repository {
	return &Repository{
		items:         make([]entities.BomItem, 0, expectedItems),
		itemsMap:      make(map[entities.ItemID]int, expectedItems),
		costs:         make(map[entities.ItemID]*entities.BomItemCost, expectedItems),
		processInputs: make(map[entities.ItemID][]*entities.ProcessCostRecord),
		mhrRates:      make(map[string]decimal.Decimal),
	}
}

// Verify interface compliance
var _ repositories.Repository = (*Repository)(nil)

// LoadItems adds or replaces a batch of items
func (r *Repository) LoadItems(items []*entities.BomItem) error {
	for _, item := range items {
		if err := r.SaveItem(context.Background(), item); err != nil {
			return err
		}
	}
	return nil
}

// SaveItem inserts an item or replaces the stored item with the same id
func (r *Repository) SaveItem(ctx context.Context, item *entities.BomItem) error {
	if item == nil || item.ID == "" {
		return fmt.Errorf("item id cannot be empty")
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if index, exists := r.itemsMap[item.ID]; exists {
		r.items[index] = *item.Clone()
		return nil
	}
	r.itemsMap[item.ID] = len(r.items)
	r.items = append(r.items, *item.Clone())
	return nil
}

// GetItem returns a single item
func (r *Repository) GetItem(ctx context.Context, itemID entities.ItemID) (*entities.BomItem, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	index, exists := r.itemsMap[itemID]
	if !exists {
		return nil, fmt.Errorf("item %s: %w", itemID, repositories.ErrNotFound)
	}
	return r.items[index].Clone(), nil
}

// GetItemsForBOM returns the items of a BOM ordered by sort order, then by
// insertion order
func (r *Repository) GetItemsForBOM(ctx context.Context, bomID entities.BOMID) ([]*entities.BomItem, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	items := make([]*entities.BomItem, 0)
	for i := range r.items {
		if r.items[i].BOMID == bomID {
			items = append(items, r.items[i].Clone())
		}
	}
	sort.SliceStable(items, func(a, b int) bool {
		return items[a].SortOrder < items[b].SortOrder
	})
	return items, nil
}

// DeleteItem removes an item and its process inputs. Children keep their
// parent reference and become orphans; the cost row is removed separately.
func (r *Repository) DeleteItem(ctx context.Context, itemID entities.ItemID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	index, exists := r.itemsMap[itemID]
	if !exists {
		return fmt.Errorf("item %s: %w", itemID, repositories.ErrNotFound)
	}

	r.items = append(r.items[:index], r.items[index+1:]...)
	delete(r.itemsMap, itemID)
	for i := index; i < len(r.items); i++ {
		r.itemsMap[r.items[i].ID] = i
	}
	delete(r.processInputs, itemID)
	return nil
}

// ListBOMs returns every BOM id in first-seen order
func (r *Repository) ListBOMs(ctx context.Context) ([]entities.BOMID, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	seen := make(map[entities.BOMID]bool)
	boms := make([]entities.BOMID, 0)
	for i := range r.items {
		if id := r.items[i].BOMID; !seen[id] {
			seen[id] = true
			boms = append(boms, id)
		}
	}
	return boms, nil
}

// Count returns the number of stored items
func (r *Repository) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.items)
}
