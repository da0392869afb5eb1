package library

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/cqlgen/internal/elm"
)

// idNamespace scopes library identifiers generated with uuid.NewSHA1.
var idNamespace = uuid.NameSpaceURL

// CodeSystemDef is a named code system.
type CodeSystemDef struct {
	Name string
	URL  string

	ref *elm.CodeSystemRef
}

// Ref returns the shared reference to this definition.
func (d *CodeSystemDef) Ref() *elm.CodeSystemRef { return d.ref }

// CodeDef is a named code drawn from CodeSystem.
type CodeDef struct {
	Name       string
	ID         string
	Display    string
	CodeSystem string

	ref *elm.CodeRef
}

// Ref returns the shared reference to this definition.
func (d *CodeDef) Ref() *elm.CodeRef { return d.ref }

// ValueSetDef is a named value set.
type ValueSetDef struct {
	Name string
	URL  string

	ref *elm.ValueSetRef
}

// Ref returns the shared reference to this definition.
func (d *ValueSetDef) Ref() *elm.ValueSetRef { return d.ref }

// ExpressionDef is a named top-level expression of the library.
type ExpressionDef struct {
	Name       string
	Expression elm.Expression
}

// Library is one output unit: the terminology definitions and expression
// definitions produced for a single measure or rule set.
//
// A Library is not safe for concurrent use. It is built by one producer;
// callers sharing an instance across goroutines must synchronize.
type Library struct {
	Name    string
	Version string

	codeSystems *registry[*CodeSystemDef]
	codes       *registry[*CodeDef]
	valueSets   *registry[*ValueSetDef]
	statements  *registry[*ExpressionDef]
	diagnostics []Diagnostic
}

// New returns an empty library.
func New(name, version string) *Library {
	return &Library{
		Name:        name,
		Version:     version,
		codeSystems: newRegistry[*CodeSystemDef](),
		codes:       newRegistry[*CodeDef](),
		valueSets:   newRegistry[*ValueSetDef](),
		statements:  newRegistry[*ExpressionDef](),
	}
}

// ID is a deterministic identifier derived from name and version.
func (l *Library) ID() uuid.UUID {
	return uuid.NewSHA1(idNamespace, []byte("urn:cqlgen:library:"+l.Name+":"+l.Version))
}

// ResolveCodeSystem returns the reference for the code system registered
// under name, registering it with url on first use. Later calls with the
// same name return the same reference; a differing url is ignored and
// recorded as a diagnostic.
func (l *Library) ResolveCodeSystem(url, name string) *elm.CodeSystemRef {
	d, created := getOrInsert(l.codeSystems, name, func() *CodeSystemDef {
		return &CodeSystemDef{Name: name, URL: url, ref: &elm.CodeSystemRef{Name: name}}
	})
	if !created && d.URL != url {
		l.conflict("code system", name, "url", d.URL, url)
	}
	return d.ref
}

// ResolveCode returns the reference for the code registered under name,
// registering it on first use. system must refer to a code system of this
// library.
func (l *Library) ResolveCode(id, name, display string, system *elm.CodeSystemRef) (*elm.CodeRef, error) {
	if system == nil {
		return nil, &UnresolvedReferenceError{Kind: "code system", Name: "", From: name}
	}
	if _, ok := l.codeSystems.get(system.Name); !ok {
		return nil, &UnresolvedReferenceError{Kind: "code system", Name: system.Name, From: name}
	}

	d, created := getOrInsert(l.codes, name, func() *CodeDef {
		return &CodeDef{Name: name, ID: id, Display: display, CodeSystem: system.Name, ref: &elm.CodeRef{Name: name}}
	})
	if !created {
		if d.ID != id {
			l.conflict("code", name, "id", d.ID, id)
		}
		if d.CodeSystem != system.Name {
			l.conflict("code", name, "code system", d.CodeSystem, system.Name)
		}
	}
	return d.ref, nil
}

// ResolveValueSet returns the reference for the value set registered under
// name, registering it with url on first use.
func (l *Library) ResolveValueSet(url, name string) *elm.ValueSetRef {
	d, created := getOrInsert(l.valueSets, name, func() *ValueSetDef {
		return &ValueSetDef{Name: name, URL: url, ref: &elm.ValueSetRef{Name: name}}
	})
	if !created && d.URL != url {
		l.conflict("value set", name, "url", d.URL, url)
	}
	return d.ref
}

func (l *Library) conflict(kind, name, field, kept, ignored string) {
	l.Record(Diagnostic{
		Code:     WarnConflictingDefinition,
		Severity: SeverityWarning,
		Message:  fmt.Sprintf("%s %q already registered with %s %q; ignoring %q", kind, name, field, kept, ignored),
	})
}

// Define adds a named expression definition.
func (l *Library) Define(name string, expr elm.Expression) (*ExpressionDef, error) {
	if _, exists := l.statements.get(name); exists {
		return nil, &DuplicateDefinitionError{Name: name}
	}
	d, _ := getOrInsert(l.statements, name, func() *ExpressionDef {
		return &ExpressionDef{Name: name, Expression: expr}
	})
	return d, nil
}

// Definition looks up an expression definition by name.
func (l *Library) Definition(name string) (*ExpressionDef, bool) {
	return l.statements.get(name)
}

// Definitions returns expression definitions in definition order.
func (l *Library) Definitions() []*ExpressionDef { return l.statements.values() }

// CodeSystems returns code systems in registration order.
func (l *Library) CodeSystems() []*CodeSystemDef { return l.codeSystems.values() }

// Codes returns codes in registration order.
func (l *Library) Codes() []*CodeDef { return l.codes.values() }

// ValueSets returns value sets in registration order.
func (l *Library) ValueSets() []*ValueSetDef { return l.valueSets.values() }

// CodeSystem looks up a code system definition by name.
func (l *Library) CodeSystem(name string) (*CodeSystemDef, bool) { return l.codeSystems.get(name) }

// Code looks up a code definition by name.
func (l *Library) Code(name string) (*CodeDef, bool) { return l.codes.get(name) }

// ValueSet looks up a value set definition by name.
func (l *Library) ValueSet(name string) (*ValueSetDef, bool) { return l.valueSets.get(name) }

// HasCodeSystem implements elm.Definitions.
func (l *Library) HasCodeSystem(name string) bool {
	_, ok := l.codeSystems.get(name)
	return ok
}

// HasCode implements elm.Definitions.
func (l *Library) HasCode(name string) bool {
	_, ok := l.codes.get(name)
	return ok
}

// HasValueSet implements elm.Definitions.
func (l *Library) HasValueSet(name string) bool {
	_, ok := l.valueSets.get(name)
	return ok
}

// TerminologyCount is the number of terminology definitions (code systems,
// codes and value sets) registered in the library.
func (l *Library) TerminologyCount() int {
	return l.codeSystems.size() + l.codes.size() + l.valueSets.size()
}

// Checkpoint captures the size of every definition set of a library.
type Checkpoint struct {
	codeSystems int
	codes       int
	valueSets   int
	statements  int
	diagnostics int
}

// Mark returns a checkpoint of the current state.
func (l *Library) Mark() Checkpoint {
	return Checkpoint{
		codeSystems: l.codeSystems.size(),
		codes:       l.codes.size(),
		valueSets:   l.valueSets.size(),
		statements:  l.statements.size(),
		diagnostics: len(l.diagnostics),
	}
}

// Rollback discards everything registered or recorded after cp was taken.
// Checkpoints must be rolled back in LIFO order.
func (l *Library) Rollback(cp Checkpoint) {
	l.codeSystems.truncate(cp.codeSystems)
	l.codes.truncate(cp.codes)
	l.valueSets.truncate(cp.valueSets)
	l.statements.truncate(cp.statements)
	l.diagnostics = l.diagnostics[:cp.diagnostics]
}

var _ elm.Definitions = (*Library)(nil)
