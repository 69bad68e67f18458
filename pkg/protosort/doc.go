// Package protosort canonicalizes serialized protobuf messages by
// reordering top-level fields into ascending field-number order.
//
// Ownership boundary:
// - wire-format scanning (varint, key, payload extent)
// - order check
// - stable sort and byte-range reassembly
//
// Messages are never decoded against a schema. Length-delimited payloads,
// including embedded messages, are opaque byte ranges and keep their
// internal order. Canonicalizing embedded messages would need a schema or
// a caller-supplied set of message-typed field ids; neither is taken here.
//
// The package never logs and holds no state between calls.
package protosort
