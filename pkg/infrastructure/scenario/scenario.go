package scenario

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/domain/repositories"
	"github.com/vsinha/bomcost/pkg/domain/services"
	"github.com/vsinha/bomcost/pkg/domain/services/calculators"
)

// Scenario is a quotation data set in YAML: one BOM with its items, direct
// costs, operations and the machines they run on
type Scenario struct {
	BOMID      entities.BOMID               `yaml:"bom_id"`
	Items      []Item                       `yaml:"items"`
	Costs      []Cost                       `yaml:"costs"`
	Operations []entities.ProcessCostRecord `yaml:"operations"`
	Machines   []Machine                    `yaml:"machines"`
}

// Item is a BOM row. List position becomes the sort order.
type Item struct {
	ID            entities.ItemID   `yaml:"id"`
	Parent        entities.ItemID   `yaml:"parent"`
	Type          entities.ItemType `yaml:"type"`
	Name          string            `yaml:"name"`
	PartNumber    string            `yaml:"part_number"`
	Description   string            `yaml:"description"`
	Unit          string            `yaml:"unit"`
	Material      string            `yaml:"material"`
	MaterialGrade string            `yaml:"material_grade"`
	Quantity      decimal.Decimal   `yaml:"quantity"`
	AnnualVolume  int64             `yaml:"annual_volume"`
}

// Cost holds direct cost entries for one item. Packaging and procured
// inputs are priced with their calculators and override the plain fields.
type Cost struct {
	ItemID                 entities.ItemID                   `yaml:"item_id"`
	RawMaterialCost        *decimal.Decimal                  `yaml:"raw_material_cost"`
	ProcessCost            *decimal.Decimal                  `yaml:"process_cost"`
	PackagingLogisticsCost *decimal.Decimal                  `yaml:"packaging_logistics_cost"`
	ProcuredPartsCost      *decimal.Decimal                  `yaml:"procured_parts_cost"`
	SGAPercentage          *decimal.Decimal                  `yaml:"sga_percentage"`
	ProfitPercentage       *decimal.Decimal                  `yaml:"profit_percentage"`
	Packaging              *entities.PackagingLogisticsInput `yaml:"packaging"`
	Procured               *entities.ProcuredPartInput       `yaml:"procured"`
}

// Machine is a stored hour rate, given directly or derived from machine data
type Machine struct {
	Ref  string              `yaml:"ref"`
	Rate *decimal.Decimal    `yaml:"rate"`
	MHR  *entities.MHRRecord `yaml:"mhr"`
}

// Summary reports what Apply wrote
type Summary struct {
	BOMID      entities.BOMID
	Items      int
	Costs      int
	Operations int
	Machines   int
	Validation *services.ValidationResult
}

// LoadFile reads and parses a scenario file
func LoadFile(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes a scenario. Unknown keys are rejected so typos in cost
// field names do not silently become zero.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, err
	}
	if s.BOMID == "" {
		return nil, fmt.Errorf("bom_id is required")
	}
	return &s, nil
}

// BuildItems converts the item rows into validated BomItems
func (s *Scenario) BuildItems(now time.Time) ([]*entities.BomItem, error) {
	items := make([]*entities.BomItem, 0, len(s.Items))
	for i, row := range s.Items {
		var parent *entities.ItemID
		if row.Parent != "" {
			parent = entities.ParentRef(row.Parent)
		}
		item, err := entities.NewBomItem(row.ID, s.BOMID, parent, row.Type, row.Name, row.Quantity, row.AnnualVolume)
		if err != nil {
			return nil, fmt.Errorf("item %d (%s): %w", i+1, row.ID, err)
		}
		item.SortOrder = i
		item.PartNumber = row.PartNumber
		item.Description = row.Description
		item.Unit = row.Unit
		item.Material = row.Material
		item.MaterialGrade = row.MaterialGrade
		item.CreatedAt = now
		item.UpdatedAt = now
		items = append(items, item)
	}
	return items, nil
}

// Apply validates the scenario and writes it through repo. Duplicate item
// ids are refused; other structural problems are reported in the summary
// and left for the hierarchy services to resolve. With strict set, any
// structural problem is refused.
func (s *Scenario) Apply(ctx context.Context, repo repositories.Repository, now time.Time, strict bool) (*Summary, error) {
	items, err := s.BuildItems(now)
	if err != nil {
		return nil, err
	}

	validation := services.ValidateHierarchy(items)
	if len(validation.DuplicateIDs) > 0 {
		return nil, fmt.Errorf("duplicate item ids: %v", validation.DuplicateIDs)
	}
	if strict && !validation.IsValid() {
		return nil, fmt.Errorf("scenario %s is structurally invalid: %s", s.BOMID, strings.Join(validation.Errors, "; "))
	}

	known := make(map[entities.ItemID]bool, len(items))
	for _, item := range items {
		known[item.ID] = true
	}

	costs, err := s.buildCosts(known, now)
	if err != nil {
		return nil, err
	}
	operations, err := s.buildOperations(known)
	if err != nil {
		return nil, err
	}
	rates, err := s.buildRates()
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		if err := repo.SaveItem(ctx, item); err != nil {
			return nil, fmt.Errorf("failed to save item %s: %w", item.ID, err)
		}
	}
	for _, cost := range costs {
		if err := repo.UpsertCostRecord(ctx, cost.ItemID, cost); err != nil {
			return nil, fmt.Errorf("failed to save cost record for %s: %w", cost.ItemID, err)
		}
	}
	for _, op := range operations {
		if err := repo.SaveProcessInput(ctx, op); err != nil {
			return nil, fmt.Errorf("failed to save process input %s: %w", op.ID, err)
		}
	}
	for _, m := range s.Machines {
		if err := repo.SaveMHRRate(ctx, m.Ref, rates[m.Ref]); err != nil {
			return nil, fmt.Errorf("failed to save machine rate %s: %w", m.Ref, err)
		}
	}

	return &Summary{
		BOMID:      s.BOMID,
		Items:      len(items),
		Costs:      len(costs),
		Operations: len(operations),
		Machines:   len(rates),
		Validation: validation,
	}, nil
}

func (s *Scenario) buildCosts(known map[entities.ItemID]bool, now time.Time) ([]*entities.BomItemCost, error) {
	costs := make([]*entities.BomItemCost, 0, len(s.Costs))
	for _, row := range s.Costs {
		if !known[row.ItemID] {
			return nil, fmt.Errorf("cost entry for unknown item %s", row.ItemID)
		}

		update := entities.DirectCostUpdate{
			RawMaterialCost:        row.RawMaterialCost,
			ProcessCost:            row.ProcessCost,
			PackagingLogisticsCost: row.PackagingLogisticsCost,
			ProcuredPartsCost:      row.ProcuredPartsCost,
		}
		if row.Packaging != nil {
			res, err := calculators.NewPackagingCalculator().Calculate(*row.Packaging)
			if err != nil {
				return nil, fmt.Errorf("packaging for %s: %w", row.ItemID, err)
			}
			update.PackagingLogisticsCost = &res.CostPerUnit
		}
		if row.Procured != nil {
			res, err := calculators.NewProcuredPartCalculator().Calculate(*row.Procured)
			if err != nil {
				return nil, fmt.Errorf("procured part %s: %w", row.ItemID, err)
			}
			update.ProcuredPartsCost = &res.LandedUnitCost
		}

		cost := entities.NewBomItemCost(row.ItemID, now)
		update.Apply(cost)
		cost.SGAPercentage = row.SGAPercentage
		cost.ProfitPercentage = row.ProfitPercentage
		costs = append(costs, cost)
	}
	return costs, nil
}

func (s *Scenario) buildOperations(known map[entities.ItemID]bool) ([]*entities.ProcessCostRecord, error) {
	validator := calculators.NewProcessCalculator()
	perItem := make(map[entities.ItemID]int)

	operations := make([]*entities.ProcessCostRecord, 0, len(s.Operations))
	for i := range s.Operations {
		op := s.Operations[i]
		if !known[op.ItemID] {
			return nil, fmt.Errorf("operation %q for unknown item %s", op.OperationName, op.ItemID)
		}
		perItem[op.ItemID]++
		if op.ID == "" {
			op.ID = fmt.Sprintf("%s-OP%d", op.ItemID, perItem[op.ItemID]*10)
		}
		if errs := validator.Validate(op); errs.HasErrors() {
			return nil, fmt.Errorf("operation %s: %w", op.ID, errs)
		}
		operations = append(operations, &op)
	}
	return operations, nil
}

func (s *Scenario) buildRates() (map[string]decimal.Decimal, error) {
	mhr := calculators.NewMHRCalculator()
	rates := make(map[string]decimal.Decimal, len(s.Machines))

	for _, m := range s.Machines {
		if m.Ref == "" {
			return nil, fmt.Errorf("machine without ref")
		}
		if _, dup := rates[m.Ref]; dup {
			return nil, fmt.Errorf("machine %s listed twice", m.Ref)
		}
		switch {
		case m.Rate != nil && m.MHR != nil:
			return nil, fmt.Errorf("machine %s: give either rate or mhr, not both", m.Ref)
		case m.Rate != nil:
			if m.Rate.IsNegative() {
				return nil, fmt.Errorf("machine %s: rate cannot be negative, got %s", m.Ref, m.Rate)
			}
			rates[m.Ref] = *m.Rate
		case m.MHR != nil:
			res, err := mhr.Calculate(*m.MHR)
			if err != nil {
				return nil, fmt.Errorf("machine %s: %w", m.Ref, err)
			}
			rates[m.Ref] = res.TotalMachineHourRate
		default:
			return nil, fmt.Errorf("machine %s: rate or mhr is required", m.Ref)
		}
	}
	return rates, nil
}
