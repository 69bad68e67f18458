// Package runner applies one pbsort operation to every message of a framed
// stream.
//
// Ownership boundary:
// - reading and writing framed messages
// - dispatch to protosort, digest and report
// - per-message metrics and logging
//
// Messages are processed sequentially in stream order. The first parse
// failure aborts the run; output already written for earlier messages is
// left to the caller to discard.
package runner
