// Package exceptions manages the exception table stored in the database.
//
// Jobs that read exceptions from the database (exceptions.database in the job file,
// or reconcile.exceptions_from_database in the configuration) see changes made here
// on their next run.
//
// # HTTP Endpoints
//
//   - GET /exceptions : Lists stored entries ordered by key.
//   - PUT /exceptions : Inserts or updates entries by key (JSON array).
//   - DELETE /exceptions?key= : Removes entries (key may repeat).
package exceptions
