package repositories

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/vsinha/bomcost/pkg/domain/entities"
)

// ItemStore provides the mutations behind BOM maintenance and data entry
type ItemStore interface {
	SaveItem(ctx context.Context, item *entities.BomItem) error
	DeleteItem(ctx context.Context, itemID entities.ItemID) error
	DeleteCostRecord(ctx context.Context, itemID entities.ItemID) error
	SaveProcessInput(ctx context.Context, input *entities.ProcessCostRecord) error
	SaveMHRRate(ctx context.Context, machineRef string, rate decimal.Decimal) error
	ListBOMs(ctx context.Context) ([]entities.BOMID, error)
}

// Repository is a full read/write store
type Repository interface {
	CostRepository
	ItemStore
}
