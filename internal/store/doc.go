// Package store provides a SQLite-backed cache of normalized metadata.
//
// Decoding a production runtime's metadata takes long enough that callers
// want to do it once per runtime upgrade. Entries are keyed by
// "<implName>-<specVersion>" (see Key) and carry the content hash of the
// normalized output, so two keys that decode to the same metadata share a
// fingerprint.
//
// # Critical Patterns
//
// Logical ordering
//   - Every write takes the next seq INTEGER; List orders by seq, never by
//     wall time
//   - Queries use ORDER BY seq ASC, key ASC COLLATE BINARY
//
// Schema staleness
//   - Entries record ir.SchemaVersion; Get treats an entry written under a
//     different schema version as a miss
//
// Front cache
//   - A bounded LRU (hashicorp/golang-lru) sits in front of SQLite and is
//     kept coherent by Put, Delete and Clear
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//
// Stored metadata is the canonical JSON produced by ir.MarshalCanonical.
package store
