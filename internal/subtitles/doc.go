// Package subtitles locates sidecar subtitle files for video containers and
// converts ASS sidecars to SRT.
package subtitles
