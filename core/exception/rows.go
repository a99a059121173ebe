package exception

import (
	"context"
	"fmt"
	"strings"

	"sheet-reconciler/core/reconcile"
	"sheet-reconciler/core/utils"

	"go.uber.org/zap"
)

// Columns names the exception table fields. Matching is case-insensitive.
type Columns struct {
	Key      string   `yaml:"key" json:"key"`
	Hide     string   `yaml:"hide" json:"hide"`
	Comments []string `yaml:"comments" json:"comments"`
}

// DefaultColumns returns the conventional column names.
func DefaultColumns() Columns {
	return Columns{Key: "Key", Hide: "Hide", Comments: []string{"Comments"}}
}

// WithDefaults fills empty names from DefaultColumns.
func (c Columns) WithDefaults() Columns {
	d := DefaultColumns()
	if strings.TrimSpace(c.Key) == "" {
		c.Key = d.Key
	}
	if strings.TrimSpace(c.Hide) == "" {
		c.Hide = d.Hide
	}
	if len(c.Comments) == 0 {
		c.Comments = d.Comments
	}
	return c
}

// FromRows converts exception rows to entries. Rows without a Key are skipped.
// A row is hidden when its hide cell reads "yes".
func FromRows(rows []*reconcile.WideRow, cols Columns) []reconcile.ExceptionEntry {
	cols = cols.WithDefaults()

	var entries []reconcile.ExceptionEntry
	for _, row := range rows {
		key, _ := row.GetFold(cols.Key)
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		hide, _ := row.GetFold(cols.Hide)
		entry := reconcile.ExceptionEntry{Key: key, Hide: utils.IsYes(hide)}
		for _, c := range cols.Comments {
			v, _ := row.GetFold(c)
			entry.Comments = append(entry.Comments, strings.TrimSpace(v))
		}
		entries = append(entries, entry)
	}
	return entries
}

// Load reads every unit of src into an exception table. Load never fails: an
// unreadable source or unit, or a unit without the key column, is reported as an
// issue and contributes nothing, so the run proceeds with whatever was loaded.
func Load(ctx context.Context, src reconcile.TabularSource, cols Columns, logger *zap.Logger) (*reconcile.ExceptionTable, []reconcile.Issue) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, issues := Entries(ctx, src, cols, logger)
	table := reconcile.NewExceptionTable(entries)
	logger.Debug("Exception table loaded", zap.String("source", src.Name()), zap.Int("entries", table.Len()))
	return table, issues
}

// Entries reads the exception rows of every unit of src, in source order and with
// duplicates kept. Failures are reported as in Load.
func Entries(ctx context.Context, src reconcile.TabularSource, cols Columns, logger *zap.Logger) ([]reconcile.ExceptionEntry, []reconcile.Issue) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cols = cols.WithDefaults()

	var issues []reconcile.Issue
	raise := func(unit, field string, err error) {
		issue := reconcile.Issue{
			Kind:    reconcile.IssueExceptionTableMalformed,
			Source:  src.Name(),
			Unit:    unit,
			Field:   field,
			Message: err.Error(),
		}
		issue.Log(logger)
		issues = append(issues, issue)
	}

	units, err := src.Units(ctx)
	if err != nil {
		raise("", "", err)
		return nil, issues
	}

	var entries []reconcile.ExceptionEntry
	for _, u := range units {
		rows, err := u.Read(ctx)
		if err != nil {
			raise(u.Label, "", err)
			continue
		}
		if len(rows) == 0 {
			continue
		}
		if _, ok := rows[0].GetFold(cols.Key); !ok {
			raise(u.Label, cols.Key, fmt.Errorf("key column %q not found", cols.Key))
			continue
		}
		entries = append(entries, FromRows(rows, cols)...)
	}
	return entries, issues
}
