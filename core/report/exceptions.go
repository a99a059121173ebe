package report

import (
	"io"
	"strings"

	"sheet-reconciler/core/reconcile"

	"github.com/olekukonko/tablewriter"
	"github.com/rotisserie/eris"
)

// WriteExceptions renders exception entries as a console table.
func WriteExceptions(w io.Writer, entries []reconcile.ExceptionEntry) error {
	table := tablewriter.NewTable(w)
	table.Header("Key", "Hide", "Comments")
	for _, e := range entries {
		hide := "no"
		if e.Hide {
			hide = "yes"
		}
		if err := table.Append(e.Key, hide, strings.Join(e.Comments, "; ")); err != nil {
			return eris.Wrap(err, "report: write exceptions")
		}
	}
	if err := table.Render(); err != nil {
		return eris.Wrap(err, "report: write exceptions")
	}
	return nil
}
