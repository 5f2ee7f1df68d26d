package services

import "github.com/vsinha/bomcost/pkg/domain/entities"

// TreeNode wraps a BOM item with its ordered children. Item is the caller's
// pointer, not a copy.
type TreeNode struct {
	Item     *entities.BomItem
	Parent   *TreeNode
	Children []*TreeNode
}

// Forest is the rooted view of one BOM
type Forest struct {
	Roots    []*TreeNode
	Warnings []entities.StructuralWarning

	nodes map[entities.ItemID]*TreeNode
}

// TreeVisitor receives nodes during a depth-first walk
type TreeVisitor interface {
	// VisitNode is called before the node's children; returning false skips them
	VisitNode(node *TreeNode, depth int) bool

	// LeaveNode is called after the node's children, so calls arrive child-before-parent
	LeaveNode(node *TreeNode, depth int)
}

// BuildTree converts a flat item list into a forest. Roots and children keep
// input order. Items whose parent is missing, in another BOM, the item
// itself, or part of a cycle become roots, so every input id appears exactly
// once.
func BuildTree(items []*entities.BomItem) *Forest {
	return BuildTreeFrom(ResolveHierarchy(items))
}

// BuildTreeFrom builds the forest for an already resolved hierarchy
func BuildTreeFrom(h *Hierarchy) *Forest {
	forest := &Forest{
		Roots:    make([]*TreeNode, 0),
		Warnings: h.Warnings,
		nodes:    make(map[entities.ItemID]*TreeNode, h.Len()),
	}

	for _, item := range h.Items {
		forest.nodes[item.ID] = &TreeNode{Item: item}
	}

	for i, item := range h.Items {
		node := forest.nodes[item.ID]
		if p := h.parent[i]; p != noParent {
			parent := forest.nodes[h.Items[p].ID]
			node.Parent = parent
			parent.Children = append(parent.Children, node)
		} else {
			forest.Roots = append(forest.Roots, node)
		}
	}

	return forest
}

// Size returns the number of nodes in the forest
func (f *Forest) Size() int {
	return len(f.nodes)
}

// Find returns the node for an item id, or nil
func (f *Forest) Find(id entities.ItemID) *TreeNode {
	return f.nodes[id]
}

// Walk visits every root in order, depth first
func (f *Forest) Walk(visitor TreeVisitor) {
	for _, root := range f.Roots {
		walkNode(root, 0, visitor)
	}
}

func walkNode(node *TreeNode, depth int, visitor TreeVisitor) {
	if visitor.VisitNode(node, depth) {
		for _, child := range node.Children {
			walkNode(child, depth+1, visitor)
		}
	}
	visitor.LeaveNode(node, depth)
}

// IsLeaf reports whether the node has no children
func (n *TreeNode) IsLeaf() bool {
	return len(n.Children) == 0
}

// Count returns the number of nodes in the subtree rooted at n
func (n *TreeNode) Count() int {
	count := 1
	for _, child := range n.Children {
		count += child.Count()
	}
	return count
}
