package builder

import (
	"fmt"
	"unicode/utf8"

	"github.com/roach88/cqlgen/internal/elm"
	"github.com/roach88/cqlgen/internal/types"
)

// QueryContext is the scope of the query currently being built: its
// source aliases, its let identifiers and whether it is singular.
//
// Contexts form a stack owned by the Builder. Identifier lookups search the
// innermost context first, so correlated sub-queries can refer to the
// aliases of enclosing queries.
type QueryContext struct {
	outer    *QueryContext
	sources  []*elm.AliasedSource
	lets     []*elm.LetClause
	names    map[string]elm.Expression
	singular bool
}

// IsSingular reports whether the query yields at most one row.
func (qc *QueryContext) IsSingular() bool { return qc.singular }

// Sources returns the aliased sources of the query.
func (qc *QueryContext) Sources() []*elm.AliasedSource { return qc.sources }

func (qc *QueryContext) declare(name string, ref elm.Expression) error {
	if name == "" {
		return &InvalidQueryError{Message: "empty identifier"}
	}
	if _, exists := qc.names[name]; exists {
		return &DuplicateAliasError{Name: name}
	}
	qc.names[name] = ref
	return nil
}

func (qc *QueryContext) lookup(name string) (elm.Expression, bool) {
	for c := qc; c != nil; c = c.outer {
		if ref, ok := c.names[name]; ok {
			return ref, true
		}
	}
	return nil, false
}

func (qc *QueryContext) identifiers() []string {
	var out []string
	for c := qc; c != nil; c = c.outer {
		for _, s := range c.sources {
			out = append(out, s.Alias)
		}
		for _, l := range c.lets {
			out = append(out, l.Identifier)
		}
	}
	return out
}

// Let declares identifier in the query and returns the clause to include
// in the query's clause bag.
func (qc *QueryContext) Let(identifier string, expr elm.Expression) (*elm.LetClause, error) {
	let := &elm.LetClause{Identifier: identifier, Expression: expr}
	if err := qc.declare(identifier, let.Ref()); err != nil {
		return nil, err
	}
	qc.lets = append(qc.lets, let)
	return let, nil
}

// Relationship builds a with/without clause. src is in scope only while
// suchThat runs.
func (qc *QueryContext) Relationship(typ elm.RelationshipType, src *elm.AliasedSource, suchThat func(*elm.AliasRef) (elm.Expression, error)) (*elm.RelationshipClause, error) {
	ref := src.Ref()
	if err := qc.declare(src.Alias, ref); err != nil {
		return nil, err
	}
	defer delete(qc.names, src.Alias)

	cond, err := suchThat(ref)
	if err != nil {
		return nil, err
	}
	return &elm.RelationshipClause{Type: typ, Source: src, SuchThat: cond}, nil
}

// Aggregate builds an aggregate clause. The accumulator identifier is in
// scope only while step runs; its type is the type of starting (System.Any
// when starting is nil).
func (qc *QueryContext) Aggregate(identifier string, distinct bool, starting elm.Expression, step func(acc *elm.QueryLetRef) (elm.Expression, error)) (*elm.AggregateClause, error) {
	accType := types.DataType(types.Any)
	if starting != nil {
		accType = starting.ResultType()
	}
	acc := &elm.QueryLetRef{Name: identifier, Type: accType}
	if err := qc.declare(identifier, acc); err != nil {
		return nil, err
	}
	defer delete(qc.names, identifier)

	expr, err := step(acc)
	if err != nil {
		return nil, err
	}
	return &elm.AggregateClause{
		Identifier: identifier,
		Distinct:   distinct,
		Starting:   starting,
		Expression: expr,
		Type:       expr.ResultType(),
	}, nil
}

// pushQueryContext opens a new innermost context over sources.
func (b *Builder) pushQueryContext(sources []*elm.AliasedSource) (*QueryContext, error) {
	if len(sources) == 0 {
		return nil, &InvalidQueryError{Message: "a query needs at least one source"}
	}
	qc := &QueryContext{
		outer:    b.top,
		sources:  sources,
		names:    map[string]elm.Expression{},
		singular: len(sources) == 1 && !types.IsList(sources[0].Expression.ResultType()),
	}
	for _, s := range sources {
		if err := qc.declare(s.Alias, s.Ref()); err != nil {
			return nil, err
		}
	}
	b.top = qc
	return qc, nil
}

// popQueryContext closes qc, which must be the innermost context.
func (b *Builder) popQueryContext(qc *QueryContext) error {
	if b.top != qc {
		return &ContextStackError{Message: "pop of a context that is not innermost"}
	}
	b.top = qc.outer
	return nil
}

// Depth returns the number of open query contexts.
func (b *Builder) Depth() int {
	n := 0
	for c := b.top; c != nil; c = c.outer {
		n++
	}
	return n
}

// AliasRef returns a reference to an in-scope source alias.
func (b *Builder) AliasRef(name string) (*elm.AliasRef, error) {
	ref, ok := b.top.lookup(name)
	if r, isAlias := ref.(*elm.AliasRef); ok && isAlias {
		return r, nil
	}
	return nil, &UnknownIdentifierError{Name: name, InScope: b.top.identifiers()}
}

// LetRef returns a reference to an in-scope let identifier.
func (b *Builder) LetRef(name string) (*elm.QueryLetRef, error) {
	ref, ok := b.top.lookup(name)
	if r, isLet := ref.(*elm.QueryLetRef); ok && isLet {
		return r, nil
	}
	return nil, &UnknownIdentifierError{Name: name, InScope: b.top.identifiers()}
}

// InScope reports whether name is declared by any open query context.
func (b *Builder) InScope(name string) bool {
	_, ok := b.top.lookup(name)
	return ok
}

// FreshAlias returns an alias for ranging over values of t: the first
// letter of the type name, numbered when that name is already in scope.
func (b *Builder) FreshAlias(t types.DataType) string {
	return b.FreshAliases(t)[0]
}

// FreshAliases returns one fresh alias per type, distinct from each other
// and from every identifier in scope.
func (b *Builder) FreshAliases(ts ...types.DataType) []string {
	taken := map[string]bool{}
	out := make([]string, len(ts))
	for i, t := range ts {
		base := aliasBase(t)
		alias := base
		for n := 1; taken[alias] || b.InScope(alias); n++ {
			alias = fmt.Sprintf("%s%d", base, n)
		}
		taken[alias] = true
		out[i] = alias
	}
	return out
}

func aliasBase(t types.DataType) string {
	switch tt := t.(type) {
	case types.NamedType:
		if _, size := utf8.DecodeRuneInString(tt.Name); size > 0 {
			return tt.Name[:size]
		}
	case types.TupleType:
		return "T"
	case types.ListType:
		return "L"
	}
	return "X"
}
