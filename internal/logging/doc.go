// Package logging wraps log/slog with the handlers and attribute helpers
// used across submerge. Console output renders one line per record
// (timestamp LEVEL component: message key=value); the json format emits
// machine-readable records for log shipping.
package logging
