package memory

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vsinha/bomcost/pkg/domain/entities"
)

// GetCostRecord returns a copy of the item's ledger row
func (r *Repository) GetCostRecord(ctx context.Context, itemID entities.ItemID) (*entities.BomItemCost, bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	cost, exists := r.costs[itemID]
	if !exists {
		return nil, false, nil
	}
	return cost.Clone(), true, nil
}

// UpsertCostRecord stores the ledger row for an item
func (r *Repository) UpsertCostRecord(ctx context.Context, itemID entities.ItemID, cost *entities.BomItemCost) error {
	if cost == nil {
		return fmt.Errorf("cost record for %s cannot be nil", itemID)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	stored := cost.Clone()
	stored.ItemID = itemID
	r.costs[itemID] = stored
	return nil
}

// DeleteCostRecord removes the item's ledger row; a missing row is not an error
func (r *Repository) DeleteCostRecord(ctx context.Context, itemID entities.ItemID) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.costs, itemID)
	return nil
}

// GetProcessInputsForItem returns the item's operations in insertion order
func (r *Repository) GetProcessInputsForItem(ctx context.Context, itemID entities.ItemID) ([]*entities.ProcessCostRecord, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	inputs := r.processInputs[itemID]
	out := make([]*entities.ProcessCostRecord, 0, len(inputs))
	for _, input := range inputs {
		copied := *input
		out = append(out, &copied)
	}
	return out, nil
}

// SaveProcessInput inserts an operation or replaces the one with the same id
func (r *Repository) SaveProcessInput(ctx context.Context, input *entities.ProcessCostRecord) error {
	if input == nil || input.ID == "" {
		return fmt.Errorf("process input id cannot be empty")
	}
	if input.ItemID == "" {
		return fmt.Errorf("process input %s has no item id", input.ID)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	copied := *input
	inputs := r.processInputs[input.ItemID]
	for i, existing := range inputs {
		if existing.ID == input.ID {
			inputs[i] = &copied
			return nil
		}
	}
	r.processInputs[input.ItemID] = append(inputs, &copied)
	return nil
}

// GetMHRRate returns the stored machine hour rate
func (r *Repository) GetMHRRate(ctx context.Context, machineRef string) (decimal.Decimal, bool, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	rate, exists := r.mhrRates[machineRef]
	return rate, exists, nil
}

// SaveMHRRate stores a machine hour rate under a reference
func (r *Repository) SaveMHRRate(ctx context.Context, machineRef string, rate decimal.Decimal) error {
	if machineRef == "" {
		return fmt.Errorf("machine reference cannot be empty")
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.mhrRates[machineRef] = rate
	return nil
}
