package entities

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestBomItem_Validation(t *testing.T) {
	validItem, err := NewBomItem("ITEM_1", "BOM_1", nil, Assembly, "Gearbox", decimal.NewFromInt(1), 5000)
	if err != nil {
		t.Fatalf("Expected valid item creation to succeed: %v", err)
	}
	if validItem.HasParent() {
		t.Error("Expected root item to have no parent")
	}
	if validItem.ParentID() != "" {
		t.Errorf("Expected empty parent id, got '%s'", validItem.ParentID())
	}

	testCases := []struct {
		name         string
		id           ItemID
		bomID        BOMID
		parentID     *ItemID
		itemType     ItemType
		itemName     string
		quantity     decimal.Decimal
		annualVolume int64
		expectError  string
	}{
		{"empty id", "", "BOM_1", nil, ChildPart, "Shaft", decimal.NewFromInt(1), 0, "item id cannot be empty"},
		{"empty bom", "ITEM_2", "", nil, ChildPart, "Shaft", decimal.NewFromInt(1), 0, "bom id cannot be empty"},
		{"empty name", "ITEM_2", "BOM_1", nil, ChildPart, "", decimal.NewFromInt(1), 0, "item name cannot be empty"},
		{"bad type", "ITEM_2", "BOM_1", nil, ItemType(9), "Shaft", decimal.NewFromInt(1), 0, "invalid item type: 9"},
		{"self parent", "ITEM_2", "BOM_1", ParentRef("ITEM_2"), ChildPart, "Shaft", decimal.NewFromInt(1), 0, "item cannot be its own parent: ITEM_2"},
		{"negative quantity", "ITEM_2", "BOM_1", nil, ChildPart, "Shaft", decimal.NewFromInt(-2), 0, "quantity cannot be negative, got -2"},
		{"negative volume", "ITEM_2", "BOM_1", nil, ChildPart, "Shaft", decimal.NewFromInt(1), -10, "annual volume cannot be negative, got -10"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBomItem(tc.id, tc.bomID, tc.parentID, tc.itemType, tc.itemName, tc.quantity, tc.annualVolume)
			if err == nil {
				t.Fatalf("Expected error for %s, but got none", tc.name)
			}
			if err.Error() != tc.expectError {
				t.Errorf("Expected error '%s', got '%s'", tc.expectError, err.Error())
			}
		})
	}
}

func TestBomItem_ZeroQuantityAllowed(t *testing.T) {
	item, err := NewBomItem("ITEM_1", "BOM_1", ParentRef("ROOT"), BOP, "Bolt M6", decimal.Zero, 0)
	if err != nil {
		t.Fatalf("Expected zero quantity to be accepted: %v", err)
	}
	if item.ParentID() != "ROOT" {
		t.Errorf("Expected parent ROOT, got %s", item.ParentID())
	}
}

func TestItemType_RoundTrip(t *testing.T) {
	for _, itemType := range ItemTypes {
		parsed, err := ParseItemType(itemType.String())
		if err != nil {
			t.Fatalf("Failed to parse %s: %v", itemType, err)
		}
		if parsed != itemType {
			t.Errorf("Expected %s, got %s", itemType, parsed)
		}
	}

	if _, err := ParseItemType("widget"); err == nil {
		t.Error("Expected error for unknown item type")
	}

	var it ItemType
	if err := it.UnmarshalText([]byte("sub_assembly")); err != nil {
		t.Fatalf("UnmarshalText failed: %v", err)
	}
	if it != SubAssembly {
		t.Errorf("Expected sub_assembly, got %s", it)
	}
}

func TestDirectCostUpdate_Apply(t *testing.T) {
	raw := decimal.NewFromFloat(12.5)
	procured := decimal.NewFromInt(3)

	cost := &BomItemCost{ProcessCost: decimal.NewFromInt(7)}
	update := DirectCostUpdate{RawMaterialCost: &raw, ProcuredPartsCost: &procured}
	if update.IsEmpty() {
		t.Fatal("Expected update to be non-empty")
	}
	update.Apply(cost)

	if !cost.RawMaterialCost.Equal(raw) {
		t.Errorf("Expected raw material %s, got %s", raw, cost.RawMaterialCost)
	}
	if !cost.ProcessCost.Equal(decimal.NewFromInt(7)) {
		t.Errorf("Expected process cost untouched at 7, got %s", cost.ProcessCost)
	}
	if !cost.DirectCost().Equal(decimal.NewFromFloat(22.5)) {
		t.Errorf("Expected direct cost 22.5, got %s", cost.DirectCost())
	}

	if !(DirectCostUpdate{}).IsEmpty() {
		t.Error("Expected zero-value update to be empty")
	}
}

func TestBomItemCost_CloneIsDeep(t *testing.T) {
	sga := decimal.NewFromInt(10)
	original := &BomItemCost{ItemID: "A", SGAPercentage: &sga}
	clone := original.Clone()

	*clone.SGAPercentage = decimal.NewFromInt(99)
	if !original.SGAPercentage.Equal(decimal.NewFromInt(10)) {
		t.Errorf("Expected original SGA to stay 10, got %s", original.SGAPercentage)
	}
}
