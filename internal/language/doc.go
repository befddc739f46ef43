// Package language provides unified language code normalization and mapping.
//
// Subtitle sidecar files carry short ISO 639-1 codes while muxed track tags
// use ISO 639-2, and containers in the wild mix both with full word forms
// ("russian"). All conversions and equivalence checks are consolidated here.
package language
