// Package report renders reconciliation results: a console table, csv, json, yaml
// or an xlsx workbook, and uploads rendered reports to object storage.
package report
