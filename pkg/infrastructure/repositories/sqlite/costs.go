package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/vsinha/bomcost/pkg/domain/entities"
)

const costColumns = `item_id, raw_material_cost, process_cost, packaging_logistics_cost, procured_parts_cost,
	direct_children_cost, own_cost, total_cost, unit_cost, extended_cost,
	sga_percentage, profit_percentage, selling_price, is_stale, last_calculated_at, created_at, updated_at`

const processColumns = `id, item_id, operation_name, machine_ref, direct_rate, indirect_rate, fringe_rate,
	machine_rate, setup_manning, setup_minutes, batch_size, heads, cycle_time_seconds, parts_per_cycle,
	scrap_percentage, annual_volume`

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func decimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func scanCost(row scanner) (*entities.BomItemCost, error) {
	var (
		c                    entities.BomItemCost
		sga, profit          decimal.NullDecimal
		lastCalculated       sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(
		&c.ItemID, &c.RawMaterialCost, &c.ProcessCost, &c.PackagingLogisticsCost, &c.ProcuredPartsCost,
		&c.DirectChildrenCost, &c.OwnCost, &c.TotalCost, &c.UnitCost, &c.ExtendedCost,
		&sga, &profit, &c.SellingPrice, &c.IsStale, &lastCalculated, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.SGAPercentage = decimalPtr(sga)
	c.ProfitPercentage = decimalPtr(profit)
	if lastCalculated.Valid {
		t, err := parseTime(lastCalculated.String)
		if err != nil {
			return nil, err
		}
		c.LastCalculatedAt = &t
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCostRecord returns the item's ledger row
func (r *Repository) GetCostRecord(ctx context.Context, itemID entities.ItemID) (*entities.BomItemCost, bool, error) {
	row := r.conn.QueryRowContext(ctx, `SELECT `+costColumns+` FROM bom_item_costs WHERE item_id = ?`, string(itemID))
	cost, err := scanCost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("loading cost record for %s: %w", itemID, err)
	}
	return cost, true, nil
}

// UpsertCostRecord stores the ledger row for an item. The item must exist.
func (r *Repository) UpsertCostRecord(ctx context.Context, itemID entities.ItemID, cost *entities.BomItemCost) error {
	if cost == nil {
		return fmt.Errorf("cost record for %s cannot be nil", itemID)
	}

	var lastCalculated sql.NullString
	if cost.LastCalculatedAt != nil {
		lastCalculated = sql.NullString{String: formatTime(*cost.LastCalculatedAt), Valid: true}
	}

	_, err := r.conn.ExecContext(ctx, `
		INSERT INTO bom_item_costs (`+costColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(item_id) DO UPDATE SET
			raw_material_cost = excluded.raw_material_cost,
			process_cost = excluded.process_cost,
			packaging_logistics_cost = excluded.packaging_logistics_cost,
			procured_parts_cost = excluded.procured_parts_cost,
			direct_children_cost = excluded.direct_children_cost,
			own_cost = excluded.own_cost,
			total_cost = excluded.total_cost,
			unit_cost = excluded.unit_cost,
			extended_cost = excluded.extended_cost,
			sga_percentage = excluded.sga_percentage,
			profit_percentage = excluded.profit_percentage,
			selling_price = excluded.selling_price,
			is_stale = excluded.is_stale,
			last_calculated_at = excluded.last_calculated_at,
			updated_at = excluded.updated_at`,
		string(itemID), cost.RawMaterialCost, cost.ProcessCost, cost.PackagingLogisticsCost, cost.ProcuredPartsCost,
		cost.DirectChildrenCost, cost.OwnCost, cost.TotalCost, cost.UnitCost, cost.ExtendedCost,
		nullDecimal(cost.SGAPercentage), nullDecimal(cost.ProfitPercentage), cost.SellingPrice, cost.IsStale,
		lastCalculated, formatTime(cost.CreatedAt), formatTime(cost.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("saving cost record for %s: %w", itemID, err)
	}
	return nil
}

// DeleteCostRecord removes the item's ledger row; a missing row is not an error
func (r *Repository) DeleteCostRecord(ctx context.Context, itemID entities.ItemID) error {
	if _, err := r.conn.ExecContext(ctx, `DELETE FROM bom_item_costs WHERE item_id = ?`, string(itemID)); err != nil {
		return fmt.Errorf("deleting cost record for %s: %w", itemID, err)
	}
	return nil
}

// GetProcessInputsForItem returns the item's operations in insertion order
func (r *Repository) GetProcessInputsForItem(ctx context.Context, itemID entities.ItemID) ([]*entities.ProcessCostRecord, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT `+processColumns+` FROM process_inputs WHERE item_id = ? ORDER BY rowid`, string(itemID))
	if err != nil {
		return nil, fmt.Errorf("loading process inputs for %s: %w", itemID, err)
	}
	defer rows.Close()

	inputs := make([]*entities.ProcessCostRecord, 0)
	for rows.Next() {
		var p entities.ProcessCostRecord
		if err := rows.Scan(
			&p.ID, &p.ItemID, &p.OperationName, &p.MachineRef, &p.DirectRate, &p.IndirectRate, &p.FringeRate,
			&p.MachineRate, &p.SetupManning, &p.SetupMinutes, &p.BatchSize, &p.Heads, &p.CycleTimeSeconds, &p.PartsPerCycle,
			&p.ScrapPercentage, &p.AnnualVolume,
		); err != nil {
			return nil, fmt.Errorf("scanning process input of %s: %w", itemID, err)
		}
		inputs = append(inputs, &p)
	}
	return inputs, rows.Err()
}

// SaveProcessInput inserts an operation or replaces the one with the same id
func (r *Repository) SaveProcessInput(ctx context.Context, p *entities.ProcessCostRecord) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("process input id cannot be empty")
	}
	if p.ItemID == "" {
		return fmt.Errorf("process input %s has no item id", p.ID)
	}

	_, err := r.conn.ExecContext(ctx, `
		INSERT INTO process_inputs (`+processColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			item_id = excluded.item_id,
			operation_name = excluded.operation_name,
			machine_ref = excluded.machine_ref,
			direct_rate = excluded.direct_rate,
			indirect_rate = excluded.indirect_rate,
			fringe_rate = excluded.fringe_rate,
			machine_rate = excluded.machine_rate,
			setup_manning = excluded.setup_manning,
			setup_minutes = excluded.setup_minutes,
			batch_size = excluded.batch_size,
			heads = excluded.heads,
			cycle_time_seconds = excluded.cycle_time_seconds,
			parts_per_cycle = excluded.parts_per_cycle,
			scrap_percentage = excluded.scrap_percentage,
			annual_volume = excluded.annual_volume`,
		p.ID, string(p.ItemID), p.OperationName, p.MachineRef, p.DirectRate, p.IndirectRate, p.FringeRate,
		p.MachineRate, p.SetupManning, p.SetupMinutes, p.BatchSize, p.Heads, p.CycleTimeSeconds, p.PartsPerCycle,
		p.ScrapPercentage, p.AnnualVolume,
	)
	if err != nil {
		return fmt.Errorf("saving process input %s: %w", p.ID, err)
	}
	return nil
}

// GetMHRRate returns the stored machine hour rate
func (r *Repository) GetMHRRate(ctx context.Context, machineRef string) (decimal.Decimal, bool, error) {
	var rate decimal.Decimal
	err := r.conn.QueryRowContext(ctx, `SELECT rate FROM machine_rates WHERE machine_ref = ?`, machineRef).Scan(&rate)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("loading machine rate %s: %w", machineRef, err)
	}
	return rate, true, nil
}

// SaveMHRRate stores a machine hour rate under a reference
func (r *Repository) SaveMHRRate(ctx context.Context, machineRef string, rate decimal.Decimal) error {
	if machineRef == "" {
		return fmt.Errorf("machine reference cannot be empty")
	}
	_, err := r.conn.ExecContext(ctx, `
		INSERT INTO machine_rates (machine_ref, rate) VALUES (?, ?)
		ON CONFLICT(machine_ref) DO UPDATE SET rate = excluded.rate`, machineRef, rate)
	if err != nil {
		return fmt.Errorf("saving machine rate %s: %w", machineRef, err)
	}
	return nil
}
