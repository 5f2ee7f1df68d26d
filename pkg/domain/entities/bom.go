package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BomItem is a single node of a BOM hierarchy, stored as a flat row with an
// optional reference to its parent
type BomItem struct {
	ID            ItemID
	BOMID         BOMID
	ParentItemID  *ItemID // nil = root
	ItemType      ItemType
	SortOrder     int
	Name          string
	PartNumber    string
	Description   string
	Unit          string
	Material      string
	MaterialGrade string
	Quantity      decimal.Decimal // per parent
	AnnualVolume  int64
	File2DPath    string
	File3DPath    string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewBomItem creates a validated BomItem. parentID may be nil for a root item.
func NewBomItem(
	id ItemID,
	bomID BOMID,
	parentID *ItemID,
	itemType ItemType,
	name string,
	quantity decimal.Decimal,
	annualVolume int64,
) (*BomItem, error) {
	if id == "" {
		return nil, fmt.Errorf("item id cannot be empty")
	}
	if bomID == "" {
		return nil, fmt.Errorf("bom id cannot be empty")
	}
	if name == "" {
		return nil, fmt.Errorf("item name cannot be empty")
	}
	if itemType < Assembly || itemType > BOP {
		return nil, fmt.Errorf("invalid item type: %d", int(itemType))
	}
	if parentID != nil && *parentID == id {
		return nil, fmt.Errorf("item cannot be its own parent: %s", id)
	}
	if quantity.IsNegative() {
		return nil, fmt.Errorf("quantity cannot be negative, got %s", quantity)
	}
	if annualVolume < 0 {
		return nil, fmt.Errorf("annual volume cannot be negative, got %d", annualVolume)
	}

	return &BomItem{
		ID:           id,
		BOMID:        bomID,
		ParentItemID: parentID,
		ItemType:     itemType,
		Name:         name,
		Quantity:     quantity,
		AnnualVolume: annualVolume,
	}, nil
}

// HasParent reports whether the item declares a parent
func (i *BomItem) HasParent() bool {
	return i.ParentItemID != nil && *i.ParentItemID != ""
}

// ParentID returns the declared parent id, or "" for a declared root
func (i *BomItem) ParentID() ItemID {
	if i.ParentItemID == nil {
		return ""
	}
	return *i.ParentItemID
}

// ParentRef is a small helper for building items with a parent literal
func ParentRef(id ItemID) *ItemID {
	return &id
}

// Clone returns a copy that does not share the parent pointer
func (i *BomItem) Clone() *BomItem {
	if i == nil {
		return nil
	}
	out := *i
	if i.ParentItemID != nil {
		out.ParentItemID = ParentRef(*i.ParentItemID)
	}
	return &out
}
