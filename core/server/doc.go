// Package server holds the HTTP server configuration.
//
// The start command builds the Fiber application from this Config: the listen
// address, the API key enforced by the auth middleware, and the body size limit
// for exception uploads.
package server
