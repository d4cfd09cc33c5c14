// Package ir provides the normalized metadata schema emitted by dots.
//
// This package contains the output types plus their canonical
// serialization. It imports nothing internal; the frame package mirrors
// the binary input and the compiler package maps one onto the other.
//
// Key design constraints:
//   - Field names follow the JSON conventions consumers already rely on:
//     "type" is the discriminant on ScaleType, the TypeId on constants,
//     storage items and signed extensions, and the version on Signing
//   - Absent optional payload serializes as null, never as a zero value
//   - Raw SCALE bytes (constant values, storage defaults) serialize as
//     0x-prefixed hex
//   - No floats anywhere; every number is a type id, index or length
package ir
