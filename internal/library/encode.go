package library

import (
	"github.com/roach88/cqlgen/internal/elm"
	"github.com/roach88/cqlgen/internal/ir"
)

// Encode converts the library into an ir.Object suitable for canonical
// JSON serialization. Definitions appear in registration order.
func (l *Library) Encode() ir.Object {
	codeSystems := make(ir.Array, 0, l.codeSystems.size())
	for _, d := range l.CodeSystems() {
		codeSystems = append(codeSystems, ir.Object{"name": ir.String(d.Name), "url": ir.String(d.URL)})
	}

	codes := make(ir.Array, 0, l.codes.size())
	for _, d := range l.Codes() {
		obj := ir.Object{
			"name":       ir.String(d.Name),
			"id":         ir.String(d.ID),
			"codeSystem": ir.String(d.CodeSystem),
		}
		if d.Display != "" {
			obj["display"] = ir.String(d.Display)
		}
		codes = append(codes, obj)
	}

	valueSets := make(ir.Array, 0, l.valueSets.size())
	for _, d := range l.ValueSets() {
		valueSets = append(valueSets, ir.Object{"name": ir.String(d.Name), "url": ir.String(d.URL)})
	}

	statements := make(ir.Array, 0, l.statements.size())
	for _, d := range l.Definitions() {
		statements = append(statements, ir.Object{"name": ir.String(d.Name), "expression": elm.Encode(d.Expression)})
	}

	return ir.Object{
		"identifier":  ir.Object{"id": ir.String(l.Name), "version": ir.String(l.Version)},
		"codeSystems": codeSystems,
		"codes":       codes,
		"valueSets":   valueSets,
		"statements":  statements,
	}
}

// MarshalCanonical returns the canonical JSON encoding of the library.
func (l *Library) MarshalCanonical() ([]byte, error) {
	return ir.MarshalCanonical(l.Encode())
}

// Fingerprint returns the content hash of the canonical encoding.
func (l *Library) Fingerprint() (string, error) {
	return ir.Fingerprint(ir.DomainLibrary, l.Encode())
}

// Validate runs elm.Validate over every expression definition, resolving
// terminology refs against the library itself. Warnings are prefixed with
// the definition name.
func (l *Library) Validate() elm.ValidationResult {
	result := elm.ValidationResult{Valid: true, Warnings: []string{}}
	for _, d := range l.Definitions() {
		r := elm.Validate(d.Expression, l)
		for _, w := range r.Warnings {
			result.Warnings = append(result.Warnings, d.Name+": "+w)
		}
	}
	result.Valid = len(result.Warnings) == 0
	return result
}
