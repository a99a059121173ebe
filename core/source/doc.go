// Package source adapts concrete file formats and stores to reconcile.TabularSource.
//
// Every adapter splits its input into units (a sheet, an archive entry, a table)
// and stringifies cells at this boundary, so the engine only ever sees strings.
// Headers are trimmed; blank headers become "Column N" and repeated headers get a
// " (2)" style suffix so no field is silently overwritten.
//
// Locations are either local paths or "s3://bucket/key" objects read through the
// Fetcher. A location ending in "/" (or a local directory) addresses a collection
// of files, each becoming its own unit.
package source
