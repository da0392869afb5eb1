// Package types is the type resolver behind the query IR.
//
// It defines the DataType sum type (NamedType, ListType, TupleType), the
// built-in System namespace, and Model: a static description of one or more
// data-model namespaces loaded from CUE. Resolution is a pure lookup;
// nothing in this package mutates a Model after it is compiled.
package types
