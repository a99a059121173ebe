// Package utils provides value conversion helpers shared by the ingestion
// boundary: database rows, decoded cells and exception flags.
//
// ToString is the single place where scanned values become cell text, so null
// equivalents are turned into "" here and nowhere else.
package utils
