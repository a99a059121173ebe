// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation protecting every route except the Swagger UI.
//   - rayid: a unique request id (RayID) for every request, stored in the context
//     locals and echoed in the X-Ray-ID response header for tracing.
//
// RayID must be registered first so every later log line carries it.
package middleware
