package services

import (
	"fmt"

	"github.com/vsinha/bomcost/pkg/domain/entities"
)

const noParent = -1

// Hierarchy is the resolved parent/child structure of one BOM. Items live in
// a single arena; relations are indices into it, so breaking a cycle only
// rewrites an index.
type Hierarchy struct {
	Items    []*entities.BomItem
	Warnings []entities.StructuralWarning

	index    map[entities.ItemID]int
	declared []int // declared parent index, noParent when unresolvable
	parent   []int // effective parent after cycle breaking
	children [][]int
	order    []int
	depth    []int
}

// ResolveHierarchy indexes a flat list of items and resolves every parent
// reference. Unresolvable references (missing, other BOM, self) make the item
// a root. Cycles are broken during a depth-first parent-before-child
// insertion: when an item's parent is still on the recursion stack, the item
// is inserted immediately and its parent link is dropped.
func ResolveHierarchy(items []*entities.BomItem) *Hierarchy {
	h := &Hierarchy{
		Items: make([]*entities.BomItem, 0, len(items)),
		index: make(map[entities.ItemID]int, len(items)),
	}

	for _, item := range items {
		if item == nil {
			continue
		}
		if _, exists := h.index[item.ID]; exists {
			h.warn(entities.DuplicateItem, item.ID, "", "duplicate item id ignored")
			continue
		}
		h.index[item.ID] = len(h.Items)
		h.Items = append(h.Items, item)
	}

	n := len(h.Items)
	h.declared = make([]int, n)
	h.parent = make([]int, n)
	for i, item := range h.Items {
		h.declared[i] = h.resolveDeclaredParent(item)
		h.parent[i] = h.declared[i]
	}

	h.order = make([]int, 0, n)
	visited := make([]bool, n)
	onStack := make([]bool, n)
	for i := range h.Items {
		h.insert(i, visited, onStack)
	}

	h.children = make([][]int, n)
	for i := range h.Items {
		if p := h.parent[i]; p != noParent {
			h.children[p] = append(h.children[p], i)
		}
	}

	h.depth = make([]int, n)
	for _, i := range h.order {
		if p := h.parent[i]; p != noParent {
			h.depth[i] = h.depth[p] + 1
		}
	}

	return h
}

func (h *Hierarchy) resolveDeclaredParent(item *entities.BomItem) int {
	if !item.HasParent() {
		return noParent
	}
	parentID := item.ParentID()
	if parentID == item.ID {
		h.warn(entities.SelfReference, item.ID, parentID, "item references itself as parent; treated as root")
		return noParent
	}
	p, ok := h.index[parentID]
	if !ok {
		h.warn(entities.MissingParent, item.ID, parentID,
			fmt.Sprintf("parent %s not found; treated as root", parentID))
		return noParent
	}
	if h.Items[p].BOMID != item.BOMID {
		h.warn(entities.CrossBOMParent, item.ID, parentID,
			fmt.Sprintf("parent %s belongs to bom %s; treated as root", parentID, h.Items[p].BOMID))
		return noParent
	}
	return p
}

// insert appends i to the order after making sure its parent is already there
func (h *Hierarchy) insert(i int, visited, onStack []bool) {
	if visited[i] {
		return
	}
	onStack[i] = true

	if p := h.parent[i]; p != noParent {
		if onStack[p] {
			h.parent[i] = noParent
			h.warn(entities.CycleDetected, h.Items[i].ID, h.Items[p].ID,
				fmt.Sprintf("parent chain revisits %s; parent link dropped", h.Items[p].ID))
		} else {
			h.insert(p, visited, onStack)
		}
	}

	onStack[i] = false
	visited[i] = true
	h.order = append(h.order, i)
}

func (h *Hierarchy) warn(kind entities.WarningKind, itemID, relatedID entities.ItemID, message string) {
	h.Warnings = append(h.Warnings, entities.StructuralWarning{
		Kind:      kind,
		ItemID:    itemID,
		RelatedID: relatedID,
		Message:   message,
	})
}

// Len returns the number of distinct items
func (h *Hierarchy) Len() int {
	return len(h.Items)
}

// Contains reports whether the item is part of the hierarchy
func (h *Hierarchy) Contains(id entities.ItemID) bool {
	_, ok := h.index[id]
	return ok
}

// Item returns the item with the given id, or nil
func (h *Hierarchy) Item(id entities.ItemID) *entities.BomItem {
	i, ok := h.index[id]
	if !ok {
		return nil
	}
	return h.Items[i]
}

// Order returns the items with every parent before its children
func (h *Hierarchy) Order() []*entities.BomItem {
	out := make([]*entities.BomItem, len(h.order))
	for k, i := range h.order {
		out[k] = h.Items[i]
	}
	return out
}

// ReverseOrder returns the items with every child before its parent
func (h *Hierarchy) ReverseOrder() []*entities.BomItem {
	out := make([]*entities.BomItem, len(h.order))
	for k, i := range h.order {
		out[len(h.order)-1-k] = h.Items[i]
	}
	return out
}

// Parent returns the effective parent, or nil for a root
func (h *Hierarchy) Parent(id entities.ItemID) *entities.BomItem {
	i, ok := h.index[id]
	if !ok || h.parent[i] == noParent {
		return nil
	}
	return h.Items[h.parent[i]]
}

// IsRoot reports whether the item has no resolvable parent
func (h *Hierarchy) IsRoot(id entities.ItemID) bool {
	i, ok := h.index[id]
	return ok && h.parent[i] == noParent
}

// Children returns the effective direct children in input order
func (h *Hierarchy) Children(id entities.ItemID) []*entities.BomItem {
	i, ok := h.index[id]
	if !ok {
		return nil
	}
	out := make([]*entities.BomItem, 0, len(h.children[i]))
	for _, c := range h.children[i] {
		out = append(out, h.Items[c])
	}
	return out
}

// Roots returns the effective roots in input order
func (h *Hierarchy) Roots() []*entities.BomItem {
	var roots []*entities.BomItem
	for i, item := range h.Items {
		if h.parent[i] == noParent {
			roots = append(roots, item)
		}
	}
	return roots
}

// Depth returns the number of hops to the item's effective root
func (h *Hierarchy) Depth(id entities.ItemID) int {
	i, ok := h.index[id]
	if !ok {
		return 0
	}
	return h.depth[i]
}

// Ancestors returns the effective ancestor chain, nearest first
func (h *Hierarchy) Ancestors(id entities.ItemID) []*entities.BomItem {
	i, ok := h.index[id]
	if !ok {
		return nil
	}
	var out []*entities.BomItem
	for p := h.parent[i]; p != noParent; p = h.parent[p] {
		out = append(out, h.Items[p])
	}
	return out
}

// DeclaredAncestors follows the stored parent references, stopping at a
// missing parent or the first repeated item. It is a superset of Ancestors
// when cycles were broken, which is what staleness marking wants.
func (h *Hierarchy) DeclaredAncestors(id entities.ItemID) []*entities.BomItem {
	i, ok := h.index[id]
	if !ok {
		return nil
	}
	seen := map[int]bool{i: true}
	var out []*entities.BomItem
	for p := h.declared[i]; p != noParent && !seen[p]; p = h.declared[p] {
		seen[p] = true
		out = append(out, h.Items[p])
	}
	return out
}

// OrderParentsBeforeChildren returns a permutation of items in which every
// item with a resolvable parent comes after that parent. Cycles are broken
// and reported as warnings.
func OrderParentsBeforeChildren(items []*entities.BomItem) ([]*entities.BomItem, []entities.StructuralWarning) {
	h := ResolveHierarchy(items)
	return h.Order(), h.Warnings
}

// DepthOf counts hops from an item to the nearest root or already-visited
// ancestor. Roots and unknown ids are depth 0.
//
// It follows declared parent links until the first repeat, so inside a cycle
// it can exceed Hierarchy.Depth, which measures against the cycle-broken
// tree: in A<->B with B kept as root, DepthOf(A) is 2 while Depth(A) is 1.
// Indentation and report levels should use Hierarchy.Depth.
func DepthOf(itemID entities.ItemID, items []*entities.BomItem) int {
	return DepthOfVisited(itemID, items, nil)
}

// DepthOfVisited is DepthOf with a caller-supplied visited set, which is
// updated in place. It returns 0 at the first repeat, so cycles terminate.
func DepthOfVisited(itemID entities.ItemID, items []*entities.BomItem, visited map[entities.ItemID]bool) int {
	if visited == nil {
		visited = make(map[entities.ItemID]bool)
	}
	index := make(map[entities.ItemID]*entities.BomItem, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if _, exists := index[item.ID]; !exists {
			index[item.ID] = item
		}
	}
	return depthOf(itemID, index, visited)
}

func depthOf(id entities.ItemID, index map[entities.ItemID]*entities.BomItem, visited map[entities.ItemID]bool) int {
	if visited[id] {
		return 0
	}
	visited[id] = true

	item, ok := index[id]
	if !ok || !item.HasParent() || item.ParentID() == id {
		return 0
	}
	parent, ok := index[item.ParentID()]
	if !ok || parent.BOMID != item.BOMID {
		return 0
	}
	return 1 + depthOf(parent.ID, index, visited)
}
