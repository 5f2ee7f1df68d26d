package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vsinha/bomcost/pkg/domain/entities"
	"github.com/vsinha/bomcost/pkg/domain/repositories"
)

const itemColumns = `id, bom_id, parent_item_id, item_type, sort_order, name, part_number,
	description, unit, material, material_grade, quantity, annual_volume,
	file_2d_path, file_3d_path, created_at, updated_at`

const upsertItem = `
	INSERT INTO bom_items (` + itemColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		bom_id = excluded.bom_id,
		parent_item_id = excluded.parent_item_id,
		item_type = excluded.item_type,
		sort_order = excluded.sort_order,
		name = excluded.name,
		part_number = excluded.part_number,
		description = excluded.description,
		unit = excluded.unit,
		material = excluded.material,
		material_grade = excluded.material_grade,
		quantity = excluded.quantity,
		annual_volume = excluded.annual_volume,
		file_2d_path = excluded.file_2d_path,
		file_3d_path = excluded.file_3d_path,
		created_at = excluded.created_at,
		updated_at = excluded.updated_at`

// scanItem scans a row with itemColumns in order
func scanItem(row scanner) (*entities.BomItem, error) {
	var (
		item                 entities.BomItem
		parent               sql.NullString
		itemType             string
		createdAt, updatedAt string
	)
	err := row.Scan(
		&item.ID, &item.BOMID, &parent, &itemType, &item.SortOrder, &item.Name, &item.PartNumber,
		&item.Description, &item.Unit, &item.Material, &item.MaterialGrade, &item.Quantity, &item.AnnualVolume,
		&item.File2DPath, &item.File3DPath, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if parent.Valid {
		item.ParentItemID = entities.ParentRef(entities.ItemID(parent.String))
	}
	if item.ItemType, err = entities.ParseItemType(itemType); err != nil {
		return nil, fmt.Errorf("item %s: %w", item.ID, err)
	}
	if item.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if item.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &item, nil
}

func itemArgs(item *entities.BomItem) []any {
	var parent sql.NullString
	if item.HasParent() {
		parent = sql.NullString{String: string(item.ParentID()), Valid: true}
	}
	return []any{
		string(item.ID), string(item.BOMID), parent, item.ItemType.String(), item.SortOrder, item.Name, item.PartNumber,
		item.Description, item.Unit, item.Material, item.MaterialGrade, item.Quantity, item.AnnualVolume,
		item.File2DPath, item.File3DPath, formatTime(item.CreatedAt), formatTime(item.UpdatedAt),
	}
}

// LoadItems upserts a batch of items in one transaction
func (r *Repository) LoadItems(ctx context.Context, items []*entities.BomItem) error {
	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, upsertItem)
	if err != nil {
		return fmt.Errorf("preparing item upsert: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		if item == nil || item.ID == "" {
			return fmt.Errorf("item id cannot be empty")
		}
		if _, err := stmt.ExecContext(ctx, itemArgs(item)...); err != nil {
			return fmt.Errorf("saving item %s: %w", item.ID, err)
		}
	}
	return tx.Commit()
}

// SaveItem inserts an item or replaces the stored item with the same id
func (r *Repository) SaveItem(ctx context.Context, item *entities.BomItem) error {
	if item == nil || item.ID == "" {
		return fmt.Errorf("item id cannot be empty")
	}
	if _, err := r.conn.ExecContext(ctx, upsertItem, itemArgs(item)...); err != nil {
		return fmt.Errorf("saving item %s: %w", item.ID, err)
	}
	return nil
}

// GetItem returns a single item
func (r *Repository) GetItem(ctx context.Context, itemID entities.ItemID) (*entities.BomItem, error) {
	row := r.conn.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM bom_items WHERE id = ?`, string(itemID))
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %s: %w", itemID, repositories.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("loading item %s: %w", itemID, err)
	}
	return item, nil
}

// GetItemsForBOM returns the items of a BOM ordered by sort order, then by
// insertion order
func (r *Repository) GetItemsForBOM(ctx context.Context, bomID entities.BOMID) ([]*entities.BomItem, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM bom_items WHERE bom_id = ? ORDER BY sort_order, rowid`, string(bomID))
	if err != nil {
		return nil, fmt.Errorf("loading items for bom %s: %w", bomID, err)
	}
	defer rows.Close()

	items := make([]*entities.BomItem, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item of bom %s: %w", bomID, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// DeleteItem removes an item. Its ledger row and process inputs go with it;
// children keep their parent reference and become orphans.
func (r *Repository) DeleteItem(ctx context.Context, itemID entities.ItemID) error {
	res, err := r.conn.ExecContext(ctx, `DELETE FROM bom_items WHERE id = ?`, string(itemID))
	if err != nil {
		return fmt.Errorf("deleting item %s: %w", itemID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting item %s: %w", itemID, err)
	}
	if n == 0 {
		return fmt.Errorf("item %s: %w", itemID, repositories.ErrNotFound)
	}
	return nil
}

// ListBOMs returns every BOM id in first-seen order
func (r *Repository) ListBOMs(ctx context.Context) ([]entities.BOMID, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT bom_id FROM bom_items GROUP BY bom_id ORDER BY MIN(rowid)`)
	if err != nil {
		return nil, fmt.Errorf("listing boms: %w", err)
	}
	defer rows.Close()

	boms := make([]entities.BOMID, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		boms = append(boms, entities.BOMID(id))
	}
	return boms, rows.Err()
}
