package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/vsinha/bomcost/pkg/domain/repositories"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS bom_items (
	id             TEXT PRIMARY KEY,
	bom_id         TEXT NOT NULL,
	parent_item_id TEXT,
	item_type      TEXT NOT NULL,
	sort_order     INTEGER NOT NULL DEFAULT 0,
	name           TEXT NOT NULL,
	part_number    TEXT NOT NULL DEFAULT '',
	description    TEXT NOT NULL DEFAULT '',
	unit           TEXT NOT NULL DEFAULT '',
	material       TEXT NOT NULL DEFAULT '',
	material_grade TEXT NOT NULL DEFAULT '',
	quantity       TEXT NOT NULL,
	annual_volume  INTEGER NOT NULL DEFAULT 0,
	file_2d_path   TEXT NOT NULL DEFAULT '',
	file_3d_path   TEXT NOT NULL DEFAULT '',
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bom_items_bom ON bom_items(bom_id, sort_order);

CREATE TABLE IF NOT EXISTS bom_item_costs (
	item_id                  TEXT PRIMARY KEY REFERENCES bom_items(id) ON DELETE CASCADE,
	raw_material_cost        TEXT NOT NULL,
	process_cost             TEXT NOT NULL,
	packaging_logistics_cost TEXT NOT NULL,
	procured_parts_cost      TEXT NOT NULL,
	direct_children_cost     TEXT NOT NULL,
	own_cost                 TEXT NOT NULL,
	total_cost               TEXT NOT NULL,
	unit_cost                TEXT NOT NULL,
	extended_cost            TEXT NOT NULL,
	sga_percentage           TEXT,
	profit_percentage        TEXT,
	selling_price            TEXT NOT NULL,
	is_stale                 INTEGER NOT NULL,
	last_calculated_at       TEXT,
	created_at               TEXT NOT NULL,
	updated_at               TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS process_inputs (
	id                 TEXT PRIMARY KEY,
	item_id            TEXT NOT NULL REFERENCES bom_items(id) ON DELETE CASCADE,
	operation_name     TEXT NOT NULL DEFAULT '',
	machine_ref        TEXT NOT NULL DEFAULT '',
	direct_rate        TEXT NOT NULL,
	indirect_rate      TEXT NOT NULL,
	fringe_rate        TEXT NOT NULL,
	machine_rate       TEXT NOT NULL,
	setup_manning      TEXT NOT NULL,
	setup_minutes      TEXT NOT NULL,
	batch_size         TEXT NOT NULL,
	heads              TEXT NOT NULL,
	cycle_time_seconds TEXT NOT NULL,
	parts_per_cycle    TEXT NOT NULL,
	scrap_percentage   TEXT NOT NULL,
	annual_volume      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_process_inputs_item ON process_inputs(item_id);

CREATE TABLE IF NOT EXISTS machine_rates (
	machine_ref TEXT PRIMARY KEY,
	rate        TEXT NOT NULL
);
`

// Repository stores BOMs and their cost ledger in a SQLite file. Decimals
// are kept as TEXT so no precision is lost on the way through the driver.
type Repository struct {
	conn *sql.DB
	Path string
}

// Verify interface compliance
var _ repositories.Repository = (*Repository)(nil)

// Open opens (or creates) a database with WAL mode and foreign keys enabled
// and applies the schema
func Open(path string) (*Repository, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// pragmas are per connection
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Repository{conn: conn, Path: path}, nil
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.conn.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

type scanner interface {
	Scan(dest ...any) error
}
