package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/vsinha/bomcost/pkg/domain/entities"
)

func newItem(id, parent string) *entities.BomItem {
	item := &entities.BomItem{
		ID:       entities.ItemID(id),
		BOMID:    "BOM_1",
		ItemType: entities.ChildPart,
		Name:     id,
		Quantity: decimal.NewFromInt(1),
	}
	if parent != "" {
		item.ParentItemID = entities.ParentRef(entities.ItemID(parent))
	}
	return item
}

func ids(items []*entities.BomItem) []entities.ItemID {
	out := make([]entities.ItemID, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

func assertPermutation(t *testing.T, input, output []*entities.BomItem) {
	t.Helper()
	if len(output) != len(input) {
		t.Fatalf("Expected %d items, got %d", len(input), len(output))
	}
	seen := make(map[entities.ItemID]int)
	for _, item := range output {
		seen[item.ID]++
	}
	for _, item := range input {
		if seen[item.ID] != 1 {
			t.Errorf("Expected %s exactly once, got %d", item.ID, seen[item.ID])
		}
	}
}

func assertParentsFirst(t *testing.T, ordered []*entities.BomItem) {
	t.Helper()
	position := make(map[entities.ItemID]int, len(ordered))
	for i, item := range ordered {
		position[item.ID] = i
	}
	for i, item := range ordered {
		if !item.HasParent() {
			continue
		}
		if p, ok := position[item.ParentID()]; ok && p > i {
			t.Errorf("Expected parent %s before %s, got positions %d and %d", item.ParentID(), item.ID, p, i)
		}
	}
}

func TestOrderParentsBeforeChildren_Acyclic(t *testing.T) {
	// deliberately children-first input
	items := []*entities.BomItem{
		newItem("BOLT", "SUB_2"),
		newItem("SUB_2", "ROOT"),
		newItem("SHAFT", "SUB_1"),
		newItem("SUB_1", "ROOT"),
		newItem("ROOT", ""),
		newItem("GEAR", "SUB_1"),
	}

	ordered, warnings := OrderParentsBeforeChildren(items)

	if len(warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", warnings)
	}
	assertPermutation(t, items, ordered)
	assertParentsFirst(t, ordered)

	expected := []entities.ItemID{"ROOT", "SUB_2", "BOLT", "SUB_1", "SHAFT", "GEAR"}
	got := ids(ordered)
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("Expected order %v, got %v", expected, got)
		}
	}
}

func TestOrderParentsBeforeChildren_TwoItemCycle(t *testing.T) {
	items := []*entities.BomItem{newItem("A", "B"), newItem("B", "A")}

	ordered, warnings := OrderParentsBeforeChildren(items)

	assertPermutation(t, items, ordered)
	if got := ids(ordered); got[0] != "B" || got[1] != "A" {
		t.Errorf("Expected order [B A], got %v", got)
	}
	if len(warnings) != 1 {
		t.Fatalf("Expected 1 warning, got %d", len(warnings))
	}
	if warnings[0].Kind != entities.CycleDetected || warnings[0].ItemID != "B" {
		t.Errorf("Expected cycle warning at B, got %s", warnings[0])
	}

	h := ResolveHierarchy(items)
	if !h.IsRoot("B") {
		t.Error("Expected B to become the effective root")
	}
	if parent := h.Parent("A"); parent == nil || parent.ID != "B" {
		t.Errorf("Expected A to stay under B, got %v", parent)
	}
}

func TestOrderParentsBeforeChildren_LongCycleWithTail(t *testing.T) {
	items := []*entities.BomItem{
		newItem("TAIL", "C"),
		newItem("A", "B"),
		newItem("B", "C"),
		newItem("C", "A"),
	}

	ordered, warnings := OrderParentsBeforeChildren(items)

	assertPermutation(t, items, ordered)
	if len(warnings) != 1 || warnings[0].Kind != entities.CycleDetected {
		t.Fatalf("Expected exactly one cycle warning, got %v", warnings)
	}

	h := ResolveHierarchy(items)
	if len(h.Roots()) != 1 {
		t.Fatalf("Expected one effective root, got %d", len(h.Roots()))
	}
	// every non-root must still follow its effective parent
	position := make(map[entities.ItemID]int)
	for i, item := range ordered {
		position[item.ID] = i
	}
	for _, item := range ordered {
		if parent := h.Parent(item.ID); parent != nil && position[parent.ID] > position[item.ID] {
			t.Errorf("Expected effective parent %s before %s", parent.ID, item.ID)
		}
	}
}

func TestResolveHierarchy_UnresolvableParents(t *testing.T) {
	foreign := newItem("FOREIGN", "")
	foreign.BOMID = "BOM_2"

	items := []*entities.BomItem{
		newItem("ROOT", ""),
		newItem("SELF", "SELF"),
		newItem("ORPHAN", "DELETED"),
		foreign,
		newItem("CROSS", "FOREIGN"),
		newItem("ROOT", ""),
		nil,
	}

	h := ResolveHierarchy(items)

	if h.Len() != 5 {
		t.Fatalf("Expected 5 distinct items, got %d", h.Len())
	}
	for _, id := range []entities.ItemID{"ROOT", "SELF", "ORPHAN", "FOREIGN", "CROSS"} {
		if !h.IsRoot(id) {
			t.Errorf("Expected %s to be a root", id)
		}
	}

	kinds := make(map[entities.WarningKind]entities.ItemID)
	for _, w := range h.Warnings {
		kinds[w.Kind] = w.ItemID
	}
	expected := map[entities.WarningKind]entities.ItemID{
		entities.DuplicateItem:  "ROOT",
		entities.SelfReference:  "SELF",
		entities.MissingParent:  "ORPHAN",
		entities.CrossBOMParent: "CROSS",
	}
	for kind, id := range expected {
		if kinds[kind] != id {
			t.Errorf("Expected %s warning for %s, got '%s'", kind, id, kinds[kind])
		}
	}
}

func TestHierarchy_DepthAndAncestors(t *testing.T) {
	items := []*entities.BomItem{
		newItem("LEAF", "MID"),
		newItem("MID", "ROOT"),
		newItem("ROOT", ""),
	}
	h := ResolveHierarchy(items)

	depths := map[entities.ItemID]int{"ROOT": 0, "MID": 1, "LEAF": 2}
	for id, expected := range depths {
		if got := h.Depth(id); got != expected {
			t.Errorf("Expected depth %d for %s, got %d", expected, id, got)
		}
	}

	ancestors := ids(h.Ancestors("LEAF"))
	if len(ancestors) != 2 || ancestors[0] != "MID" || ancestors[1] != "ROOT" {
		t.Errorf("Expected ancestors [MID ROOT], got %v", ancestors)
	}

	reversed := ids(h.ReverseOrder())
	if reversed[0] != "LEAF" || reversed[2] != "ROOT" {
		t.Errorf("Expected child-before-parent order, got %v", reversed)
	}
}

func TestHierarchy_DeclaredAncestorsThroughCycle(t *testing.T) {
	items := []*entities.BomItem{newItem("A", "B"), newItem("B", "A"), newItem("C", "A")}
	h := ResolveHierarchy(items)

	// B is an effective root but its declared chain still reaches A
	if len(h.Ancestors("B")) != 0 {
		t.Errorf("Expected no effective ancestors for B, got %v", ids(h.Ancestors("B")))
	}
	declared := ids(h.DeclaredAncestors("B"))
	if len(declared) != 1 || declared[0] != "A" {
		t.Errorf("Expected declared ancestors [A], got %v", declared)
	}
	declared = ids(h.DeclaredAncestors("C"))
	if len(declared) != 2 || declared[0] != "A" || declared[1] != "B" {
		t.Errorf("Expected declared ancestors [A B], got %v", declared)
	}
}

func TestDepthOf(t *testing.T) {
	items := []*entities.BomItem{
		newItem("ROOT", ""),
		newItem("MID", "ROOT"),
		newItem("LEAF", "MID"),
		newItem("ORPHAN", "GONE"),
		newItem("A", "B"),
		newItem("B", "A"),
		newItem("SELF", "SELF"),
	}

	testCases := []struct {
		id       entities.ItemID
		expected int
	}{
		{"ROOT", 0},
		{"MID", 1},
		{"LEAF", 2},
		{"ORPHAN", 0},
		{"UNKNOWN", 0},
		{"A", 2},
		{"SELF", 0},
	}

	for _, tc := range testCases {
		t.Run(string(tc.id), func(t *testing.T) {
			if got := DepthOf(tc.id, items); got != tc.expected {
				t.Errorf("Expected depth %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestDepthOf_CycleCountsDeclaredHops(t *testing.T) {
	items := []*entities.BomItem{newItem("A", "B"), newItem("B", "A")}
	h := ResolveHierarchy(items)

	// A -> B -> A before the repeat, against one hop in the cycle-broken tree
	if got := DepthOf("A", items); got != 2 {
		t.Errorf("Expected declared depth 2, got %d", got)
	}
	if got := h.Depth("A"); got != 1 {
		t.Errorf("Expected display depth 1, got %d", got)
	}
	if got := h.Depth("B"); got != 0 {
		t.Errorf("Expected B at depth 0, got %d", got)
	}
}

func TestDepthOfVisited_StopsAtVisitedAncestor(t *testing.T) {
	items := []*entities.BomItem{
		newItem("ROOT", ""),
		newItem("MID", "ROOT"),
		newItem("LEAF", "MID"),
	}
	visited := map[entities.ItemID]bool{"MID": true}

	if got := DepthOfVisited("LEAF", items, visited); got != 1 {
		t.Errorf("Expected depth 1 when MID already visited, got %d", got)
	}
	if !visited["LEAF"] {
		t.Error("Expected visited set to be updated in place")
	}
}
