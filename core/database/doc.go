// Package database handles database connections and schema inspection.
//
// It wraps GORM to configure MySQL or SQLite connections from the application
// configuration. The database is used as a reconciliation source (any table can
// be read as a wide table) and as the home of the exception store.
//
// # Schema Inspection
//
// GetTableColumns lists a table's columns. Table sources use it to verify that a
// table exists and carries the configured name and dimension columns before any
// row is read.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Warn("Database unavailable", zap.Error(err))
//	}
//
//	columns, err := database.GetTableColumns(db, "regions")
package database
