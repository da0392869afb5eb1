// Package elm provides the typed expression intermediate representation
// produced by the query builders.
//
// The IR is a tree of Expression nodes. Every node carries its resolved
// types.DataType, so consumers never need the model description to know
// whether an operand is a list, a tuple or a scalar.
//
//	[modeling dispatcher] → [builder] → [elm.Expression] → [serializer]
//	                                                     → [Validate]
//	                                                     → [Encode / Fingerprint]
//
// SEALED INTERFACES:
//
// Expression and Clause are sealed with marker methods. Only types in this
// package implement them, so a type switch over an Expression is exhaustive:
//
//	switch n := expr.(type) {
//	case *Retrieve:
//	    // ...
//	case *Query:
//	    // ...
//	}
//
// QUERY SHAPE:
//
// A Query ranges over one or more AliasedSources. Its clauses are kept in
// dedicated fields, so the rendering order (sources, let, relationship,
// where, return, aggregate, sort) is fixed no matter in which order they
// were supplied to the builder.
//
// RESULT TYPES:
//
//   - An AliasedSource over a list-typed expression has the element type.
//   - A Query is List<projection> unless it is singular (one source whose
//     expression is not a list), in which case it is the bare projection.
//   - A comparison never has a list-typed left operand; list comparisons
//     are rewritten to Exists(Query(...)).
//
// Validate checks these rules on a finished tree.
package elm
