// Package trace provides the shared append-only sinks that collect
// transmission records and per-trial status lines from concurrently running
// trials. Each record is one self-contained line; sinks serialize appends so
// lines from different workers never interleave within a line.
package trace

import "fmt"

// Path returns the trace file path for a base path and criterion name,
// e.g. "run" + "maxsize" -> "run-maxsize.trace".
func Path(base, criterion string) string {
	return fmt.Sprintf("%s-%s.trace", base, criterion)
}

// CompressedPath is Path with the snappy suffix appended.
func CompressedPath(base, criterion string) string {
	return Path(base, criterion) + ".sz"
}
