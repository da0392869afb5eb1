// Package builder constructs typed expression trees.
//
// A Builder owns one library and a stack of query contexts. Its operations
// compose bottom-up:
//
//   - BuildRetrieve resolves a resource type and shapes an optional
//     terminology filter (comparator inference, list wrapping, Concept to
//     Code narrowing).
//   - Query and BuildQuery assemble a query from an unordered clause bag,
//     synthesize tuple projections for multi-source joins and compute the
//     result type.
//   - ResolveOperator maps an operator symbol onto a comparison node,
//     rewriting comparisons on lists into Exists over a filtering query.
//   - ResolveUnion joins two lists of the same element type.
//
// Recoverable retrieve conditions are recorded on the library as
// diagnostics unless Options.StrictRetrieveTyping is set. Everything else
// fails with a typed error carrying a stable code.
//
// A Builder is single-threaded.
package builder
