package report

import (
	"strconv"

	"sheet-reconciler/core/reconcile"
)

// CommentColumns returns the number of comment columns needed for records (at least one).
func CommentColumns(records []reconcile.DiscrepancyRecord) int {
	n := 1
	for _, r := range records {
		n = max(n, len(r.Comments))
	}
	return n
}

// Header returns the report columns: Dimension, Name, Attribute, Value, MissingIn,
// the comment columns, Key and Note.
func Header(comments int) []string {
	h := []string{"Dimension", "Name", "Attribute", "Value", "MissingIn"}
	for i := range comments {
		if i == 0 {
			h = append(h, "Comments")
			continue
		}
		h = append(h, "Comments "+strconv.Itoa(i+1))
	}
	return append(h, "Key", "Note")
}

// Row renders a record in Header order.
func Row(r reconcile.DiscrepancyRecord, comments int) []string {
	row := make([]string, 0, comments+7)
	row = append(row, r.Dimension, r.Name, r.Attribute, r.Value, string(r.MissingIn))
	for i := range comments {
		c := ""
		if i < len(r.Comments) {
			c = r.Comments[i]
		}
		row = append(row, c)
	}
	return append(row, r.Key, r.Note)
}
