// Package frame decodes FRAME runtime metadata (the "meta" prefixed,
// version 14 SCALE encoding) into a strongly typed tree and exposes the
// portable type registry that every later stage resolves through.
//
// This package knows nothing about the normalized output schema; it only
// mirrors the binary layout. The compiler package turns the tree into ir
// types.
//
// Key constraints:
//   - Only metadata version 14 is accepted; any other version byte fails
//     with UNSUPPORTED_VERSION before the body is read
//   - Structural decode failures carry the byte offset where they occurred
//   - A Registry is immutable after NewRegistry returns and never holds a
//     dangling type reference
package frame
