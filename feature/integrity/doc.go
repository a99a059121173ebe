// Package integrity provides pre-flight checks for the reconciliation service.
//
// Unlike the 'reconciliation' package which compares sources, this package
// validates that what the jobs depend on is in place, without reading any source.
//
// # Checks Provided
//
//   - Storage: Checks that the report bucket and every bucket a job reads from or uploads to exist.
//   - Jobs: Parses every job file and checks its locations (files, directories, objects, prefixes,
//     tables and their required columns).
//   - Schema: Validates that the tables owned by the service (the exception table) match their models.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/storage : Runs storage check (supports ?fix=true).
//   - GET /integrity/jobs : Runs jobs check.
//   - GET /integrity/schema : Runs schema check.
package integrity
