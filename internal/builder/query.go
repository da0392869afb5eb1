package builder

import (
	"slices"

	"github.com/roach88/cqlgen/internal/elm"
	"github.com/roach88/cqlgen/internal/types"
)

// ClauseFunc builds the clause bag of a query while its context is open.
type ClauseFunc func(qc *QueryContext) ([]elm.Clause, error)

// Query builds a query over sources. A new QueryContext is pushed before
// build runs and popped when Query returns, even when build fails, so the
// aliases and let identifiers of this query are never visible to
// expressions built afterwards.
//
// The clause bag is unordered; at most one where, return, aggregate and
// sort clause may appear.
func (b *Builder) Query(sources []*elm.AliasedSource, build ClauseFunc) (q *elm.Query, err error) {
	qc, err := b.pushQueryContext(sources)
	if err != nil {
		return nil, err
	}
	defer func() {
		if popErr := b.popQueryContext(qc); popErr != nil && err == nil {
			q, err = nil, popErr
		}
	}()

	var clauses []elm.Clause
	if build != nil {
		clauses, err = build(qc)
		if err != nil {
			return nil, err
		}
	}
	return b.assemble(qc, clauses)
}

// BuildQuery builds a query from clauses constructed up front. Clauses
// may refer to the sources through AliasedSource.Ref.
func (b *Builder) BuildQuery(sources []*elm.AliasedSource, clauses ...elm.Clause) (*elm.Query, error) {
	return b.Query(sources, func(*QueryContext) ([]elm.Clause, error) {
		return clauses, nil
	})
}

func (b *Builder) assemble(qc *QueryContext, clauses []elm.Clause) (*elm.Query, error) {
	q := &elm.Query{Sources: qc.sources}

	for _, c := range clauses {
		if nilClause(c) {
			return nil, &InvalidQueryError{Message: "nil clause"}
		}
		switch cl := c.(type) {
		case *elm.LetClause:
			if !slices.Contains(qc.lets, cl) {
				if err := qc.declare(cl.Identifier, cl.Ref()); err != nil {
					return nil, err
				}
				qc.lets = append(qc.lets, cl)
			}
			q.Let = append(q.Let, cl)
		case *elm.RelationshipClause:
			q.Relationships = append(q.Relationships, cl)
		case *elm.Where:
			if q.Where != nil {
				return nil, &DuplicateClauseError{Clause: "where"}
			}
			q.Where = cl.Condition
		case *elm.ReturnClause:
			if q.Return != nil {
				return nil, &DuplicateClauseError{Clause: "return"}
			}
			q.Return = cl
		case *elm.AggregateClause:
			if q.Aggregate != nil {
				return nil, &DuplicateClauseError{Clause: "aggregate"}
			}
			q.Aggregate = cl
		case *elm.SortClause:
			if q.Sort != nil {
				return nil, &DuplicateClauseError{Clause: "sort"}
			}
			q.Sort = cl
		}
	}

	if q.Aggregate != nil && q.Return != nil {
		return nil, &InvalidQueryError{Message: "a query cannot have both return and aggregate clauses"}
	}

	if q.Aggregate == nil && q.Return == nil && len(qc.sources) > 1 {
		q.Return = tupleReturn(qc.sources)
	}

	row := qc.sources[0].Type
	if q.Return != nil {
		row = q.Return.ResultType()
	}

	if q.Sort != nil {
		if err := checkSort(qc, q, row); err != nil {
			return nil, err
		}
	}

	switch {
	case q.Aggregate != nil:
		q.Type = q.Aggregate.Type
	case qc.singular:
		q.Type = row
	default:
		q.Type = types.ListOf(row)
	}
	return q, nil
}

// tupleReturn projects every source into a distinct tuple whose elements
// follow source declaration order.
func tupleReturn(sources []*elm.AliasedSource) *elm.ReturnClause {
	elems := make([]elm.TupleElement, len(sources))
	fields := make([]types.TupleElement, len(sources))
	for i, s := range sources {
		elems[i] = elm.TupleElement{Name: s.Alias, Value: s.Ref()}
		fields[i] = types.Field(s.Alias, s.Type)
	}
	return &elm.ReturnClause{
		Distinct:   true,
		Expression: &elm.Tuple{Elements: elems, Type: types.TupleOf(fields...)},
	}
}

func checkSort(qc *QueryContext, q *elm.Query, row types.DataType) error {
	if q.Aggregate != nil {
		return &SortOnAggregateError{}
	}
	if qc.singular {
		return &SortOnSingularError{Alias: qc.sources[0].Alias}
	}
	for _, item := range q.Sort.By {
		keyType := row
		if item.Expression != nil {
			keyType = item.Expression.ResultType()
		}
		if !types.IsOrdered(keyType) {
			return &NotComparableError{Type: keyType}
		}
	}
	return nil
}


// nilClause reports whether c is nil or a typed nil pointer.
func nilClause(c elm.Clause) bool {
	switch cl := c.(type) {
	case nil:
		return true
	case *elm.LetClause:
		return cl == nil
	case *elm.RelationshipClause:
		return cl == nil
	case *elm.Where:
		return cl == nil
	case *elm.ReturnClause:
		return cl == nil
	case *elm.AggregateClause:
		return cl == nil
	case *elm.SortClause:
		return cl == nil
	}
	return false
}
