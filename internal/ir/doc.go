// Package ir provides the literal value layer of the query intermediate
// representation and its canonical serialization.
//
// This package contains leaf types only. The expression tree (package elm),
// the type system (package types) and the library (package library) import
// ir; ir imports nothing internal.
//
// Key design constraints:
//   - No binary floating point anywhere. Decimal literals are carried as
//     validated decimal text so that encodings are exact and stable.
//   - Object keys are always emitted in RFC 8785 order (UTF-16 code units).
//   - Strings are NFC normalized at the serialization boundary, so a
//     terminology display typed with combining marks fingerprints the same as
//     its precomposed form.
package ir
