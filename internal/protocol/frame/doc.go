// Package frame splits byte streams into protobuf messages and joins them
// back.
//
// Ownership boundary:
// - raw (one message per stream) and varint length-delimited framing
// - per-message size limits
package frame
