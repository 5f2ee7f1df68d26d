package services

import (
	"fmt"

	"github.com/vsinha/bomcost/pkg/domain/entities"
)

// ValidationResult contains the results of a structural BOM audit
type ValidationResult struct {
	HasCycles       bool
	CyclePaths      [][]entities.ItemID
	DuplicateIDs    []entities.ItemID
	SelfReferences  []entities.ItemID
	MissingParents  []entities.ItemID
	CrossBOMParents []entities.ItemID
	Errors          []string
}

// IsValid reports whether the audit found nothing to fix
func (r *ValidationResult) IsValid() bool {
	return len(r.Errors) == 0
}

// ValidateHierarchy audits the parent references of a flat item list. It
// never modifies the items; the hierarchy services still resolve every
// problem it reports, this only makes them visible for data-quality review.
func ValidateHierarchy(items []*entities.BomItem) *ValidationResult {
	result := &ValidationResult{
		CyclePaths:      make([][]entities.ItemID, 0),
		DuplicateIDs:    make([]entities.ItemID, 0),
		SelfReferences:  make([]entities.ItemID, 0),
		MissingParents:  make([]entities.ItemID, 0),
		CrossBOMParents: make([]entities.ItemID, 0),
		Errors:          make([]string, 0),
	}

	index := make(map[entities.ItemID]*entities.BomItem, len(items))
	ordered := make([]entities.ItemID, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		if _, exists := index[item.ID]; exists {
			result.DuplicateIDs = append(result.DuplicateIDs, item.ID)
			continue
		}
		index[item.ID] = item
		ordered = append(ordered, item.ID)
	}

	// child -> parent edges; out-degree is at most one
	parentOf := make(map[entities.ItemID]entities.ItemID, len(ordered))
	for _, id := range ordered {
		item := index[id]
		if !item.HasParent() {
			continue
		}
		parentID := item.ParentID()
		parent, exists := index[parentID]
		switch {
		case parentID == id:
			result.SelfReferences = append(result.SelfReferences, id)
		case !exists:
			result.MissingParents = append(result.MissingParents, id)
		case parent.BOMID != item.BOMID:
			result.CrossBOMParents = append(result.CrossBOMParents, id)
		default:
			parentOf[id] = parentID
		}
	}

	result.CyclePaths = detectCycles(ordered, parentOf)
	result.HasCycles = len(result.CyclePaths) > 0

	for _, cycle := range result.CyclePaths {
		result.Errors = append(result.Errors, fmt.Sprintf("parent cycle detected: %v", cycle))
	}
	if len(result.DuplicateIDs) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("duplicate item ids: %v", result.DuplicateIDs))
	}
	if len(result.SelfReferences) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("items referencing themselves: %v", result.SelfReferences))
	}
	if len(result.MissingParents) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("items with missing parents: %v", result.MissingParents))
	}
	if len(result.CrossBOMParents) > 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("items parented across boms: %v", result.CrossBOMParents))
	}

	return result
}

// detectCycles runs a DFS along parent edges from every item in input order
func detectCycles(ordered []entities.ItemID, parentOf map[entities.ItemID]entities.ItemID) [][]entities.ItemID {
	visited := make(map[entities.ItemID]bool)
	recursionStack := make(map[entities.ItemID]bool)
	cycles := make([][]entities.ItemID, 0)

	for _, id := range ordered {
		if !visited[id] {
			dfsDetectCycle(id, parentOf, visited, recursionStack, nil, &cycles)
		}
	}

	return cycles
}

func dfsDetectCycle(
	current entities.ItemID,
	parentOf map[entities.ItemID]entities.ItemID,
	visited map[entities.ItemID]bool,
	recursionStack map[entities.ItemID]bool,
	path []entities.ItemID,
	cycles *[][]entities.ItemID,
) {
	visited[current] = true
	recursionStack[current] = true
	path = append(path, current)

	if parent, ok := parentOf[current]; ok {
		if !visited[parent] {
			dfsDetectCycle(parent, parentOf, visited, recursionStack, path, cycles)
		} else if recursionStack[parent] {
			for i, id := range path {
				if id == parent {
					cycle := make([]entities.ItemID, 0, len(path)-i+1)
					cycle = append(cycle, path[i:]...)
					cycle = append(cycle, parent)
					*cycles = append(*cycles, cycle)
					break
				}
			}
		}
	}

	recursionStack[current] = false
}
