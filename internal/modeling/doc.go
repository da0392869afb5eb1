// Package modeling maps (template, path) coordinates of a clinical source
// model onto expressions over the target data model.
//
// Each coordinate has a Recipe in a declarative Table: the resource to
// retrieve, optional fixed terminology filters, the property to project and
// an optional second retrieval strategy through a referenced resource. A
// Dispatcher looks up the recipe, builds its left-hand expression with a
// builder.Builder and resolves it against the caller's operator and right
// operand.
//
// ValidateTable checks a table against a model without building anything.
package modeling
