// Package reconciliation exposes reconciliation jobs over HTTP.
//
// Jobs are read from the configured jobs directory on every request, so editing a
// job file needs no restart. Concurrent runs of the same job are coalesced: callers
// arriving while a run is in flight share its result. Every completed run is fresh;
// the last result per job is kept only so its records can be paged and downloaded.
//
// # HTTP Endpoints
//
//   - GET /reconcile/jobs : Lists job files (invalid files are listed with their error).
//   - POST /reconcile/jobs/:name/run : Runs a job and returns its summary and issues.
//   - GET /reconcile/jobs/:name/records : Pages through the last result (?page=, ?size=).
//   - GET /reconcile/jobs/:name/report : Downloads the last result (?format=csv|json|yaml|xlsx|table).
package reconciliation
