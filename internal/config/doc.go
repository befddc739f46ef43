// Package config loads, normalizes, and validates the submerge TOML
// configuration. CLI flags are layered on top by the command layer; the
// processing core only ever sees a validated Config.
package config
