// Package library holds the output unit of a build: terminology
// definitions (code systems, codes, value sets), named expression
// definitions and the diagnostics recorded while producing them.
//
// Terminology registration is idempotent. The first request for a name
// creates the definition; every later request for the same name returns
// the same reference, so refs in expression trees always resolve.
//
// Mark and Rollback let a caller discard everything a failed build step
// registered.
package library
