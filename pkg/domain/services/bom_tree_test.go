package services

import (
	"strings"
	"testing"

	"github.com/vsinha/bomcost/pkg/domain/entities"
)

type recordingVisitor struct {
	pre   []string
	post  []string
	prune entities.ItemID
}

func (v *recordingVisitor) VisitNode(node *TreeNode, depth int) bool {
	v.pre = append(v.pre, strings.Repeat(">", depth)+string(node.Item.ID))
	return node.Item.ID != v.prune
}

func (v *recordingVisitor) LeaveNode(node *TreeNode, depth int) {
	v.post = append(v.post, string(node.Item.ID))
}

func TestBuildTree_Empty(t *testing.T) {
	forest := BuildTree(nil)
	if len(forest.Roots) != 0 || forest.Size() != 0 {
		t.Errorf("Expected empty forest, got %d roots and %d nodes", len(forest.Roots), forest.Size())
	}
}

func TestBuildTree_AcyclicKeepsEveryItem(t *testing.T) {
	items := []*entities.BomItem{
		newItem("GEAR", "SUB"),
		newItem("ROOT", ""),
		newItem("SUB", "ROOT"),
		newItem("SHAFT", "SUB"),
		newItem("COVER", "ROOT"),
		newItem("SPARE", ""),
	}

	forest := BuildTree(items)

	total := 0
	for _, root := range forest.Roots {
		total += root.Count()
	}
	if total != len(items) {
		t.Errorf("Expected %d nodes in forest, got %d", len(items), total)
	}
	if len(forest.Roots) != 2 || forest.Roots[0].Item.ID != "ROOT" || forest.Roots[1].Item.ID != "SPARE" {
		t.Errorf("Expected roots [ROOT SPARE] in input order")
	}

	for _, item := range items {
		node := forest.Find(item.ID)
		if node == nil {
			t.Fatalf("Expected node for %s", item.ID)
		}
		if node.Item != item {
			t.Errorf("Expected node for %s to share the input pointer", item.ID)
		}
		if !item.HasParent() {
			if node.Parent != nil {
				t.Errorf("Expected %s to be a root", item.ID)
			}
			continue
		}
		if node.Parent == nil || node.Parent.Item.ID != item.ParentID() {
			t.Errorf("Expected parent %s for %s", item.ParentID(), item.ID)
		}
	}

	sub := forest.Find("SUB")
	if len(sub.Children) != 2 || sub.Children[0].Item.ID != "GEAR" || sub.Children[1].Item.ID != "SHAFT" {
		t.Error("Expected SUB children [GEAR SHAFT] in input order")
	}
}

func TestBuildTree_SelfReferenceAndCycleTerminate(t *testing.T) {
	items := []*entities.BomItem{
		newItem("SELF", "SELF"),
		newItem("A", "B"),
		newItem("B", "C"),
		newItem("C", "A"),
		newItem("D", "C"),
	}

	forest := BuildTree(items)

	if forest.Size() != len(items) {
		t.Fatalf("Expected %d nodes, got %d", len(items), forest.Size())
	}
	total := 0
	for _, root := range forest.Roots {
		total += root.Count()
	}
	if total != len(items) {
		t.Errorf("Expected every item reachable exactly once, got %d", total)
	}
	if forest.Find("SELF").Parent != nil {
		t.Error("Expected self-referencing item to be a root")
	}

	var sawSelf, sawCycle bool
	for _, w := range forest.Warnings {
		sawSelf = sawSelf || w.Kind == entities.SelfReference
		sawCycle = sawCycle || w.Kind == entities.CycleDetected
	}
	if !sawSelf || !sawCycle {
		t.Errorf("Expected self reference and cycle warnings, got %v", forest.Warnings)
	}
}

func TestForest_WalkOrder(t *testing.T) {
	items := []*entities.BomItem{
		newItem("ROOT", ""),
		newItem("SUB", "ROOT"),
		newItem("PART", "SUB"),
		newItem("BOLT", "ROOT"),
	}
	forest := BuildTree(items)

	visitor := &recordingVisitor{}
	forest.Walk(visitor)

	pre := strings.Join(visitor.pre, ",")
	if pre != "ROOT,>SUB,>>PART,>BOLT" {
		t.Errorf("Expected pre-order ROOT,>SUB,>>PART,>BOLT, got %s", pre)
	}
	post := strings.Join(visitor.post, ",")
	if post != "PART,SUB,BOLT,ROOT" {
		t.Errorf("Expected post-order PART,SUB,BOLT,ROOT, got %s", post)
	}

	pruned := &recordingVisitor{prune: "SUB"}
	forest.Walk(pruned)
	if strings.Join(pruned.pre, ",") != "ROOT,>SUB,>BOLT" {
		t.Errorf("Expected SUB children skipped, got %v", pruned.pre)
	}
}
