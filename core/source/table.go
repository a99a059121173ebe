package source

import (
	"context"
	"strings"

	"sheet-reconciler/core/database"
	"sheet-reconciler/core/reconcile"
	"sheet-reconciler/core/utils"

	"github.com/rotisserie/eris"
	"gorm.io/gorm"
)

// Table reads a database table as one unit labelled with the table name.
type Table struct {
	db    *gorm.DB
	table string
	// require lists columns that must exist (name and dimension columns).
	require []string
}

// NewTable creates a Table source. Columns in require are verified before reading.
func NewTable(db *gorm.DB, table string, require ...string) *Table {
	return &Table{db: db, table: table, require: require}
}

// Name identifies the table.
func (t *Table) Name() string {
	return "table:" + t.table
}

// Units verifies the table schema and returns the single unit.
func (t *Table) Units(ctx context.Context) ([]reconcile.Unit, error) {
	if t.db == nil {
		return nil, eris.Errorf("table %s: database is not configured", t.table)
	}
	columns, err := database.GetTableColumns(t.db.WithContext(ctx), t.table)
	if err != nil {
		return nil, eris.Wrapf(err, "table %s", t.table)
	}
	if len(columns) == 0 {
		return nil, eris.Errorf("table %s: not found", t.table)
	}
	if missing := database.MissingColumns(columns, t.require...); len(missing) > 0 {
		return nil, eris.Errorf("table %s: missing columns %s", t.table, strings.Join(missing, ", "))
	}

	return []reconcile.Unit{{Label: t.table, Read: t.read}}, nil
}

func (t *Table) read(ctx context.Context) ([]*reconcile.WideRow, error) {
	rows, err := t.db.WithContext(ctx).Table(t.table).Select("*").Rows()
	if err != nil {
		return nil, eris.Wrapf(err, "table %s: query", t.table)
	}
	defer rows.Close() //nolint:errcheck

	names, err := rows.Columns()
	if err != nil {
		return nil, eris.Wrapf(err, "table %s: columns", t.table)
	}
	header := normalizeHeader(names)

	var out []*reconcile.WideRow
	values := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, eris.Wrapf(err, "table %s: scan", t.table)
		}
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = utils.ToString(v)
		}
		out = append(out, reconcile.RowFromPairs(header, cells))
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrapf(err, "table %s: rows", t.table)
	}
	return out, nil
}
