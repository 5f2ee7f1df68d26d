package events

import (
	"time"

	"github.com/vsinha/bomcost/pkg/domain/entities"
)

const (
	CostInputsChangedEvent  = "cost.inputs.changed"
	CostMarginsChangedEvent = "cost.margins.changed"
	CostRecalculatedEvent   = "cost.recalculated"

	BOMItemCreatedEvent = "bom.item.created"
	BOMItemUpdatedEvent = "bom.item.updated"
	BOMItemDeletedEvent = "bom.item.deleted"
)

// StructuralEventTypes are the events that change the shape of a BOM
var StructuralEventTypes = []string{BOMItemCreatedEvent, BOMItemUpdatedEvent, BOMItemDeletedEvent}

type CostInputsChanged struct {
	ItemID entities.ItemID `json:"item_id"`
	BOMID  entities.BOMID  `json:"bom_id"`
	Fields []string        `json:"fields"`
}

type CostMarginsChanged struct {
	ItemID entities.ItemID `json:"item_id"`
	BOMID  entities.BOMID  `json:"bom_id"`
}

type CostRecalculated struct {
	BOMID          entities.BOMID `json:"bom_id"`
	ItemsProcessed int            `json:"items_processed"`
	RecordsWritten int            `json:"records_written"`
}

type BOMItemCreated struct {
	Item entities.BomItem `json:"item"`
}

type BOMItemUpdated struct {
	OldItem entities.BomItem `json:"old_item"`
	NewItem entities.BomItem `json:"new_item"`
}

type BOMItemDeleted struct {
	Item entities.BomItem `json:"item"`
}

func NewCostInputsChangedEvent(item *entities.BomItem, fields []string, at time.Time) Event {
	return NewEvent(CostInputsChangedEvent, item.BOMID, CostInputsChanged{
		ItemID: item.ID,
		BOMID:  item.BOMID,
		Fields: fields,
	}, at)
}

func NewCostMarginsChangedEvent(item *entities.BomItem, at time.Time) Event {
	return NewEvent(CostMarginsChangedEvent, item.BOMID, CostMarginsChanged{
		ItemID: item.ID,
		BOMID:  item.BOMID,
	}, at)
}

func NewCostRecalculatedEvent(bomID entities.BOMID, processed, written int, at time.Time) Event {
	return NewEvent(CostRecalculatedEvent, bomID, CostRecalculated{
		BOMID:          bomID,
		ItemsProcessed: processed,
		RecordsWritten: written,
	}, at)
}

func NewBOMItemCreatedEvent(item *entities.BomItem, at time.Time) Event {
	return NewEvent(BOMItemCreatedEvent, item.BOMID, BOMItemCreated{Item: *item.Clone()}, at)
}

func NewBOMItemUpdatedEvent(oldItem, newItem *entities.BomItem, at time.Time) Event {
	return NewEvent(BOMItemUpdatedEvent, newItem.BOMID, BOMItemUpdated{
		OldItem: *oldItem.Clone(),
		NewItem: *newItem.Clone(),
	}, at)
}

func NewBOMItemDeletedEvent(item *entities.BomItem, at time.Time) Event {
	return NewEvent(BOMItemDeletedEvent, item.BOMID, BOMItemDeleted{Item: *item.Clone()}, at)
}
