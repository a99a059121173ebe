// Package config provides configuration management for the reconciler.
//
// Values come from environment variables, optionally loaded from a .env file in the
// config directory. Defaults are declared on the struct fields with `default` tags.
//
// # Configuration Structure
//
// The Config struct is divided into subsections:
//   - Server: HTTP server settings (port, API key, body limit)
//   - Database: mysql or sqlite connection used by table sources and the exception store
//   - Storage: S3/MinIO credentials and the default bucket
//   - Log: Logging level and format
//   - Reconcile: jobs directory, default report format, page size
//
// Nested keys map to environment variables by replacing dots with underscores,
// e.g. reconcile.jobs_dir is RECONCILE_JOBS_DIR.
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Reconcile.JobsDir)
package config
