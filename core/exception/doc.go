// Package exception loads the exception table that suppresses or annotates known
// discrepancies. Entries come from rows of any tabular source (usually a sheet kept
// next to the reference workbook) or from the reconcile_exceptions database table.
package exception
