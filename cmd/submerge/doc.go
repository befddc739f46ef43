// Command submerge batch-merges sidecar SRT subtitle files into Matroska
// containers with mkvmerge.
package main
