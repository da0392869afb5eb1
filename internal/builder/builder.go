package builder

import (
	"fmt"
	"log/slog"

	"github.com/roach88/cqlgen/internal/elm"
	"github.com/roach88/cqlgen/internal/library"
	"github.com/roach88/cqlgen/internal/types"
)

// Options configures a Builder.
type Options struct {
	// StrictRetrieveTyping turns every recoverable retrieve condition
	// (missing primary code path, Concept to Code narrowing, terminology
	// resolution failure) into a *RetrieveTypingError.
	StrictRetrieveTyping bool

	// Logger receives diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
}

// Builder constructs typed expression trees for one library.
//
// Builder is not safe for concurrent use: it owns the library's
// terminology registry and a stack of query contexts.
type Builder struct {
	model  *types.Model
	lib    *library.Library
	opts   Options
	logger *slog.Logger

	// top is the innermost query context; contexts link outward.
	top *QueryContext
}

// New returns a Builder resolving types against model and registering
// terminology in lib.
func New(model *types.Model, lib *library.Library, opts Options) *Builder {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{model: model, lib: lib, opts: opts, logger: logger}
}

// Model returns the model the builder resolves types against.
func (b *Builder) Model() *types.Model { return b.model }

// Library returns the library the builder registers definitions in.
func (b *Builder) Library() *library.Library { return b.lib }

// Logger returns the builder's logger.
func (b *Builder) Logger() *slog.Logger { return b.logger }

// recoverable records a recoverable condition on the library, or returns
// it as a *RetrieveTypingError in strict mode.
func (b *Builder) recoverable(code, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if b.opts.StrictRetrieveTyping {
		return &RetrieveTypingError{Diagnostic: code, Message: msg}
	}
	b.lib.Record(library.Diagnostic{Code: code, Severity: library.SeverityWarning, Message: msg})
	b.logger.Warn("retrieve diagnostic", "code", code, "message", msg)
	return nil
}

// Property builds a property access on source, resolving its type from the
// model. Alias and let references produce a scoped access.
func (b *Builder) Property(source elm.Expression, path string) (*elm.Property, error) {
	t, err := b.model.ResolvePath(source.ResultType(), path)
	if err != nil {
		return nil, err
	}
	switch s := source.(type) {
	case *elm.AliasRef:
		return &elm.Property{Scope: s.Name, Path: path, Type: t}, nil
	case *elm.QueryLetRef:
		return &elm.Property{Scope: s.Name, Path: path, Type: t}, nil
	}
	return &elm.Property{Source: source, Path: path, Type: t}, nil
}

// SingletonFrom extracts the single element of a list.
func (b *Builder) SingletonFrom(source elm.Expression) (*elm.UnaryOp, error) {
	elem, ok := types.ElementType(source.ResultType())
	if !ok {
		return nil, &IncompatibleOperandError{Operator: string(elm.OpSingletonFrom), Type: source.ResultType(), Reason: "is not a list"}
	}
	return &elm.UnaryOp{Op: elm.OpSingletonFrom, Operand: source, Type: elem}, nil
}

// ToConcept converts a code (or a structure holding codes) to a Concept.
func (b *Builder) ToConcept(source elm.Expression) (*elm.UnaryOp, error) {
	if types.IsList(source.ResultType()) {
		return nil, &IncompatibleOperandError{Operator: string(elm.OpToConcept), Type: source.ResultType(), Reason: "is a list"}
	}
	return &elm.UnaryOp{Op: elm.OpToConcept, Operand: source, Type: types.Concept}, nil
}

// ToList wraps a scalar in a one-element list.
func (b *Builder) ToList(source elm.Expression) *elm.UnaryOp {
	return &elm.UnaryOp{Op: elm.OpToList, Operand: source, Type: types.ListOf(source.ResultType())}
}
