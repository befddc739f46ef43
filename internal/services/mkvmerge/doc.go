// Package mkvmerge wraps the mkvmerge executable in its two roles: the
// Prober inspects containers via the machine-readable identification mode,
// and the Merger writes a new container with an additional subtitle track.
// Both run the tool as a bounded subprocess and never mutate files except
// through the Merger's temp-file-and-rename discipline.
package mkvmerge
