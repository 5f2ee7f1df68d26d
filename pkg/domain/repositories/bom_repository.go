package repositories

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/vsinha/bomcost/pkg/domain/entities"
)

// ErrNotFound is returned when a requested item does not exist
var ErrNotFound = errors.New("not found")

// CostRepository is everything the costing core reads and writes. The core
// never issues queries of its own; failures are propagated to callers as-is.
type CostRepository interface {
	GetItemsForBOM(ctx context.Context, bomID entities.BOMID) ([]*entities.BomItem, error)
	GetItem(ctx context.Context, itemID entities.ItemID) (*entities.BomItem, error)

	// GetCostRecord reports found=false when the item has no ledger row yet
	GetCostRecord(ctx context.Context, itemID entities.ItemID) (*entities.BomItemCost, bool, error)
	UpsertCostRecord(ctx context.Context, itemID entities.ItemID, cost *entities.BomItemCost) error

	GetProcessInputsForItem(ctx context.Context, itemID entities.ItemID) ([]*entities.ProcessCostRecord, error)

	// GetMHRRate reports found=false when no rate is stored for the machine
	GetMHRRate(ctx context.Context, machineRef string) (decimal.Decimal, bool, error)
}
