package output

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/vsinha/bomcost/pkg/application/dto"
	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/domain/services"
)

// Format selects a renderer
type Format string

const (
	Text Format = "text"
	JSON Format = "json"
)

// ParseFormat validates a --format value
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case Text, JSON:
		return f, nil
	}
	return "", fmt.Errorf("unsupported output format: %s", s)
}

// WriteJSON writes v as indented JSON
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return nil
}

// WriteReport renders a cost report
func WriteReport(w io.Writer, report *entities.CostReport, format Format) error {
	if format == JSON {
		return WriteJSON(w, report)
	}

	fmt.Fprintf(w, "Cost Report: %s\n", report.BOMID)
	fmt.Fprintf(w, "======================\n\n")
	for _, banner := range report.Banners() {
		fmt.Fprintf(w, "! %s\n", banner)
	}
	if len(report.Banners()) > 0 {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "%-32s %-13s %8s %12s %12s %12s %12s\n",
		"Item", "Type", "Qty", "Own", "Total", "Extended", "Selling")
	fmt.Fprintf(w, "%-32s %-13s %8s %12s %12s %12s %12s\n",
		strings.Repeat("-", 32), strings.Repeat("-", 13), strings.Repeat("-", 8),
		strings.Repeat("-", 12), strings.Repeat("-", 12), strings.Repeat("-", 12), strings.Repeat("-", 12))

	for _, line := range report.Lines {
		label := strings.Repeat("  ", line.Depth) + string(line.ItemID)
		qty := ""
		if line.Item != nil {
			qty = line.Item.Quantity.String()
		}
		if !line.HasCost {
			fmt.Fprintf(w, "%-32s %-13s %8s %12s\n", label, line.Type, qty, "no data")
			continue
		}
		c := line.Cost
		stale := ""
		if c.IsStale {
			stale = " *"
		}
		fmt.Fprintf(w, "%-32s %-13s %8s %12s %12s %12s %12s%s\n",
			label, line.Type, qty,
			c.OwnCost.StringFixed(2), c.TotalCost.StringFixed(2),
			c.ExtendedCost.StringFixed(2), c.SellingPrice.StringFixed(2), stale)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%-13s %6s %12s %12s %12s %12s\n", "Type", "Count", "Raw", "Process", "Own", "Total")
	fmt.Fprintf(w, "%-13s %6s %12s %12s %12s %12s\n",
		strings.Repeat("-", 13), strings.Repeat("-", 6), strings.Repeat("-", 12),
		strings.Repeat("-", 12), strings.Repeat("-", 12), strings.Repeat("-", 12))
	for _, group := range report.ByType {
		fmt.Fprintf(w, "%-13s %6d %12s %12s %12s %12s\n",
			group.ItemType, group.Count,
			group.RawMaterialCost.StringFixed(2), group.ProcessCost.StringFixed(2),
			group.OwnCost.StringFixed(2), group.TotalCost.StringFixed(2))
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Items: %d (%d with costs, %d stale)\n", report.TotalItems, report.ItemsWithCosts, report.StaleCosts)
	fmt.Fprintf(w, "Overall total: %s\n", report.OverallTotalCost.StringFixed(2))
	return nil
}

// WriteRecalculation renders rollup results
func WriteRecalculation(w io.Writer, results []*dto.RecalculationResult, format Format) error {
	if format == JSON {
		return WriteJSON(w, results)
	}

	for _, r := range results {
		fmt.Fprintf(w, "%s: %d items processed, %d records written (%d created) in %v\n",
			r.BOMID, r.ItemsProcessed, r.RecordsWritten, r.RecordsCreated, r.Duration)
		for _, warning := range r.Warnings {
			fmt.Fprintf(w, "  warning: %s\n", warning)
		}
		if len(r.MissingCostRecords) > 0 {
			fmt.Fprintf(w, "  no cost data: %s\n", joinIDs(r.MissingCostRecords))
		}
		if len(r.MissingMachineRates) > 0 {
			fmt.Fprintf(w, "  no machine rate: %s\n", strings.Join(r.MissingMachineRates, ", "))
		}
		for _, op := range r.RejectedOperations {
			fmt.Fprintf(w, "  rejected operation %s on %s: %v\n", op.OperationID, op.ItemID, op.Errors)
		}
	}
	return nil
}

type treeNode struct {
	ID       entities.ItemID   `json:"id"`
	Name     string            `json:"name"`
	Type     entities.ItemType `json:"item_type"`
	Quantity string            `json:"quantity"`
	Children []treeNode        `json:"children,omitempty"`
}

func toTreeNode(n *services.TreeNode) treeNode {
	node := treeNode{
		ID:       n.Item.ID,
		Name:     n.Item.Name,
		Type:     n.Item.ItemType,
		Quantity: n.Item.Quantity.String(),
	}
	for _, child := range n.Children {
		node.Children = append(node.Children, toTreeNode(child))
	}
	return node
}

type textTree struct {
	w io.Writer
}

func (v textTree) VisitNode(node *services.TreeNode, depth int) bool {
	fmt.Fprintf(v.w, "%s%s  %s (%s, qty %s)\n",
		strings.Repeat("  ", depth), node.Item.ID, node.Item.Name, node.Item.ItemType, node.Item.Quantity)
	return true
}

func (v textTree) LeaveNode(*services.TreeNode, int) {}

// WriteTree renders a BOM forest
func WriteTree(w io.Writer, forest *services.Forest, format Format) error {
	if format == JSON {
		roots := make([]treeNode, 0, len(forest.Roots))
		for _, root := range forest.Roots {
			roots = append(roots, toTreeNode(root))
		}
		return WriteJSON(w, struct {
			Roots    []treeNode                   `json:"roots"`
			Warnings []entities.StructuralWarning `json:"warnings,omitempty"`
		}{roots, forest.Warnings})
	}

	forest.Walk(textTree{w: w})
	for _, warning := range forest.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	return nil
}

// WriteValidation renders a structural audit
func WriteValidation(w io.Writer, bomID entities.BOMID, result *services.ValidationResult, format Format) error {
	if format == JSON {
		return WriteJSON(w, result)
	}
	if result.IsValid() {
		fmt.Fprintf(w, "%s: structure is valid\n", bomID)
		return nil
	}
	fmt.Fprintf(w, "%s: %d problems\n", bomID, len(result.Errors))
	for _, e := range result.Errors {
		fmt.Fprintf(w, "  - %s\n", e)
	}
	return nil
}

// WriteFields renders a flat result record, one field per line, labelled
// with its JSON name
func WriteFields(w io.Writer, title string, v interface{}, format Format) error {
	if format == JSON {
		return WriteJSON(w, v)
	}

	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return fmt.Errorf("cannot render %T as fields", v)
	}

	fmt.Fprintf(w, "%s\n%s\n", title, strings.Repeat("=", len(title)))
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name := strings.Split(field.Tag.Get("json"), ",")[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = field.Name
		}
		fmt.Fprintf(w, "%-32s %v\n", name, rv.Field(i).Interface())
	}
	return nil
}

func joinIDs(ids []entities.ItemID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ", ")
}
