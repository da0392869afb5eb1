package builder

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/cqlgen/internal/elm"
	"github.com/roach88/cqlgen/internal/types"
)

var (
	fhirPatient   = types.Named("FHIR", "Patient")
	fhirEncounter = types.Named("FHIR", "Encounter")
)

func sources(srcs ...*elm.AliasedSource) []*elm.AliasedSource { return srcs }

func TestQuerySingleListSource(t *testing.T) {
	f := newFixture(t, false)
	src := elm.Source("C", &elm.Retrieve{DataType: fhirCondition})

	q, err := f.b.BuildQuery(sources(src))
	require.NoError(t, err)
	assert.Equal(t, types.ListOf(fhirCondition), q.ResultType())
	assert.Nil(t, q.Return)
	assert.Equal(t, 0, f.b.Depth())
}

func TestQuerySingularSource(t *testing.T) {
	f := newFixture(t, false)
	patient, err := f.b.SingletonFrom(&elm.Retrieve{DataType: fhirPatient})
	require.NoError(t, err)

	var singular bool
	q, err := f.b.Query(sources(elm.Source("P", patient)), func(qc *QueryContext) ([]elm.Clause, error) {
		singular = qc.IsSingular()
		return nil, nil
	})
	require.NoError(t, err)
	assert.True(t, singular)
	assert.Equal(t, fhirPatient, q.ResultType())
}

func TestQueryTupleSynthesis(t *testing.T) {
	f := newFixture(t, false)
	srcs := sources(
		elm.Source("C", &elm.Retrieve{DataType: fhirCondition}),
		elm.Source("O", &elm.Retrieve{DataType: fhirObservation}),
		elm.Source("E", &elm.Retrieve{DataType: fhirEncounter}),
	)

	q, err := f.b.BuildQuery(srcs)
	require.NoError(t, err)

	require.NotNil(t, q.Return)
	assert.True(t, q.Return.Distinct)
	want := types.TupleOf(
		types.Field("C", fhirCondition),
		types.Field("O", fhirObservation),
		types.Field("E", fhirEncounter),
	)
	assert.Equal(t, types.ListOf(want), q.ResultType())
	assert.Equal(t,
		"Query(C: [FHIR.Condition], O: [FHIR.Observation], E: [FHIR.Encounter] return distinct Tuple{C: C, O: O, E: E})",
		elm.Format(q))
}

func TestQueryExplicitReturnSuppressesTuple(t *testing.T) {
	f := newFixture(t, false)
	c := elm.Source("C", &elm.Retrieve{DataType: fhirCondition})
	o := elm.Source("O", &elm.Retrieve{DataType: fhirObservation})

	code, err := f.b.Property(o.Ref(), "code")
	require.NoError(t, err)

	q, err := f.b.BuildQuery(sources(c, o), &elm.ReturnClause{Expression: code})
	require.NoError(t, err)
	assert.Equal(t, types.ListOf(fhirCodeableConcept), q.ResultType())
	assert.False(t, q.Return.Distinct)
}

func TestQueryClauseOrderIsFixed(t *testing.T) {
	f := newFixture(t, false)
	src := elm.Source("C", &elm.Retrieve{DataType: fhirCondition})
	onset, err := f.b.Property(src.Ref(), "onsetDateTime")
	require.NoError(t, err)
	id, err := f.b.Property(src.Ref(), "id")
	require.NoError(t, err)

	q, err := f.b.BuildQuery(sources(src),
		&elm.SortClause{By: []elm.SortByItem{{Direction: elm.Descending, Expression: onset}}},
		&elm.ReturnClause{Expression: id},
		&elm.Where{Condition: elm.Boolean(true)},
	)
	require.NoError(t, err)
	assert.Equal(t, "Query(C: [FHIR.Condition] where true return C.id sort by C.onsetDateTime desc)", elm.Format(q))
	assert.Equal(t, types.ListOf(types.String), q.ResultType())
}

func TestQueryLetAndRelationship(t *testing.T) {
	f := newFixture(t, false)
	c := elm.Source("C", &elm.Retrieve{DataType: fhirCondition})

	q, err := f.b.Query(sources(c), func(qc *QueryContext) ([]elm.Clause, error) {
		let, err := qc.Let("threshold", elm.Integer(5))
		if err != nil {
			return nil, err
		}
		ref, err := f.b.LetRef("threshold")
		if err != nil {
			return nil, err
		}
		assert.Equal(t, types.Integer, ref.ResultType())

		o := elm.Source("O", &elm.Retrieve{DataType: fhirObservation})
		rel, err := qc.Relationship(elm.With, o, func(alias *elm.AliasRef) (elm.Expression, error) {
			assert.True(t, f.b.InScope("O"))
			return f.b.ResolveOperator(OpEqual, alias, c.Ref())
		})
		if err != nil {
			return nil, err
		}
		assert.False(t, f.b.InScope("O"))
		assert.True(t, f.b.InScope("C"))

		return []elm.Clause{let, rel}, nil
	})
	require.NoError(t, err)
	assert.Equal(t,
		"Query(C: [FHIR.Condition] let threshold: 5 with O: [FHIR.Observation] such that Equal(O, C))",
		elm.Format(q))
	assert.False(t, f.b.InScope("C"))
}

func TestQueryAggregate(t *testing.T) {
	f := newFixture(t, false)
	c := elm.Source("C", &elm.Retrieve{DataType: fhirCondition})

	q, err := f.b.Query(sources(c), func(qc *QueryContext) ([]elm.Clause, error) {
		agg, err := qc.Aggregate("found", false, elm.Boolean(false), func(acc *elm.QueryLetRef) (elm.Expression, error) {
			assert.Equal(t, types.Boolean, acc.ResultType())
			return &elm.BinaryOp{Op: elm.OpOr, Left: acc, Right: elm.Boolean(true), Type: types.Boolean}, nil
		})
		if err != nil {
			return nil, err
		}
		assert.False(t, f.b.InScope("found"))
		return []elm.Clause{agg}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, types.Boolean, q.ResultType())
}

func TestQuerySortErrors(t *testing.T) {
	f := newFixture(t, false)
	retrieve := &elm.Retrieve{DataType: fhirCondition}
	src := elm.Source("C", retrieve)
	code, err := f.b.Property(src.Ref(), "code")
	require.NoError(t, err)
	agg := &elm.AggregateClause{Identifier: "n", Expression: elm.Integer(1), Type: types.Integer}
	asc := &elm.SortClause{By: []elm.SortByItem{{Direction: elm.Ascending}}}

	t.Run("with aggregate", func(t *testing.T) {
		_, err := f.b.BuildQuery(sources(src), agg, asc)
		var sortErr *SortOnAggregateError
		assert.True(t, errors.As(err, &sortErr))
	})

	t.Run("on singular query", func(t *testing.T) {
		single, err := f.b.SingletonFrom(retrieve)
		require.NoError(t, err)
		_, err = f.b.BuildQuery(sources(elm.Source("S", single)), asc)
		var sortErr *SortOnSingularError
		require.True(t, errors.As(err, &sortErr))
		assert.Equal(t, "S", sortErr.Alias)
	})

	t.Run("on unordered key", func(t *testing.T) {
		_, err := f.b.BuildQuery(sources(src), &elm.SortClause{By: []elm.SortByItem{{Direction: elm.Ascending, Expression: code}}})
		var cmpErr *NotComparableError
		require.True(t, errors.As(err, &cmpErr))
		assert.Equal(t, fhirCodeableConcept, cmpErr.Type)
	})

	t.Run("on unordered row", func(t *testing.T) {
		_, err := f.b.BuildQuery(sources(src), asc)
		var cmpErr *NotComparableError
		require.True(t, errors.As(err, &cmpErr))
		assert.Equal(t, fhirCondition, cmpErr.Type)
	})

	t.Run("on ordered row", func(t *testing.T) {
		id, err := f.b.Property(src.Ref(), "id")
		require.NoError(t, err)
		q, err := f.b.BuildQuery(sources(src), &elm.ReturnClause{Expression: id}, asc)
		require.NoError(t, err)
		assert.Equal(t, types.ListOf(types.String), q.ResultType())
	})

	assert.Equal(t, 0, f.b.Depth())
}

func TestQueryStructuralErrors(t *testing.T) {
	f := newFixture(t, false)
	c := elm.Source("C", &elm.Retrieve{DataType: fhirCondition})
	where := &elm.Where{Condition: elm.Boolean(true)}

	tests := []struct {
		name    string
		sources []*elm.AliasedSource
		clauses []elm.Clause
		code    string
	}{
		{"no sources", nil, nil, ErrCodeInvalidQuery},
		{"duplicate where", sources(c), []elm.Clause{where, where}, ErrCodeDuplicateClause},
		{"nil clause", sources(c), []elm.Clause{nil}, ErrCodeInvalidQuery},
		{"typed nil where", sources(c), []elm.Clause{(*elm.Where)(nil)}, ErrCodeInvalidQuery},
		{"typed nil let", sources(c), []elm.Clause{(*elm.LetClause)(nil)}, ErrCodeInvalidQuery},
		{"typed nil sort", sources(c), []elm.Clause{where, (*elm.SortClause)(nil)}, ErrCodeInvalidQuery},
		{
			"duplicate alias",
			sources(c, elm.Source("C", &elm.Retrieve{DataType: fhirObservation})),
			nil,
			ErrCodeDuplicateAlias,
		},
		{
			"return with aggregate",
			sources(c),
			[]elm.Clause{
				&elm.ReturnClause{Expression: elm.Integer(1)},
				&elm.AggregateClause{Identifier: "n", Expression: elm.Integer(1), Type: types.Integer},
			},
			ErrCodeInvalidQuery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.b.BuildQuery(tt.sources, tt.clauses...)
			require.Error(t, err)
			var coded interface{ Code() string }
			require.True(t, errors.As(err, &coded))
			assert.Equal(t, tt.code, coded.Code())
			assert.Equal(t, 0, f.b.Depth())
		})
	}
}

func TestQueryContextPoppedOnBuildError(t *testing.T) {
	f := newFixture(t, false)
	c := elm.Source("C", &elm.Retrieve{DataType: fhirCondition})
	boom := errors.New("boom")

	_, err := f.b.Query(sources(c), func(qc *QueryContext) ([]elm.Clause, error) {
		assert.Equal(t, 1, f.b.Depth())
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, f.b.Depth())
	assert.False(t, f.b.InScope("C"))
}

func TestQueryCorrelatedLookup(t *testing.T) {
	f := newFixture(t, false)
	c := elm.Source("C", &elm.Retrieve{DataType: fhirCondition})
	o := elm.Source("O", &elm.Retrieve{DataType: fhirObservation})

	_, err := f.b.Query(sources(c), func(*QueryContext) ([]elm.Clause, error) {
		inner, err := f.b.Query(sources(o), func(*QueryContext) ([]elm.Clause, error) {
			assert.Equal(t, 2, f.b.Depth())
			outer, err := f.b.AliasRef("C")
			if err != nil {
				return nil, err
			}
			assert.Equal(t, fhirCondition, outer.Type)
			return nil, nil
		})
		if err != nil {
			return nil, err
		}
		return []elm.Clause{&elm.Where{Condition: &elm.Exists{Operand: inner}}}, nil
	})
	require.NoError(t, err)
}

func TestUnknownIdentifier(t *testing.T) {
	f := newFixture(t, false)

	_, err := f.b.AliasRef("C")
	var unknown *UnknownIdentifierError
	require.True(t, errors.As(err, &unknown))
	assert.Empty(t, unknown.InScope)
	assert.Contains(t, err.Error(), "no query in progress")

	c := elm.Source("C", &elm.Retrieve{DataType: fhirCondition})
	_, err = f.b.Query(sources(c), func(qc *QueryContext) ([]elm.Clause, error) {
		let, err := qc.Let("x", elm.Integer(1))
		if err != nil {
			return nil, err
		}
		_, err = f.b.AliasRef("x")
		require.True(t, errors.As(err, &unknown))
		assert.Equal(t, []string{"C", "x"}, unknown.InScope)

		_, err = f.b.LetRef("C")
		require.True(t, errors.As(err, &unknown))
		return []elm.Clause{let}, nil
	})
	require.NoError(t, err)
}

func TestPopOutOfOrder(t *testing.T) {
	f := newFixture(t, false)
	outer, err := f.b.pushQueryContext(sources(elm.Source("C", &elm.Retrieve{DataType: fhirCondition})))
	require.NoError(t, err)
	inner, err := f.b.pushQueryContext(sources(elm.Source("O", &elm.Retrieve{DataType: fhirObservation})))
	require.NoError(t, err)

	var stackErr *ContextStackError
	require.True(t, errors.As(f.b.popQueryContext(outer), &stackErr))

	require.NoError(t, f.b.popQueryContext(inner))
	require.NoError(t, f.b.popQueryContext(outer))
	assert.Equal(t, 0, f.b.Depth())
}

func TestFreshAlias(t *testing.T) {
	f := newFixture(t, false)

	assert.Equal(t, "C", f.b.FreshAlias(fhirCondition))
	assert.Equal(t, "T", f.b.FreshAlias(types.TupleOf()))
	assert.Equal(t, "L", f.b.FreshAlias(types.ListOf(types.Code)))
	assert.Equal(t, "É", f.b.FreshAlias(types.Named("X", "Ébauche")))
	assert.Equal(t, []string{"M", "M1"}, f.b.FreshAliases(types.Named("FHIR", "Medication"), types.Named("FHIR", "Medication")))

	c := elm.Source("C", &elm.Retrieve{DataType: fhirCondition})
	_, err := f.b.Query(sources(c), func(*QueryContext) ([]elm.Clause, error) {
		assert.Equal(t, "C1", f.b.FreshAlias(fhirCodeableConcept))
		assert.Equal(t, []string{"C1", "C2"}, f.b.FreshAliases(fhirCondition, fhirCodeableConcept))
		return nil, nil
	})
	require.NoError(t, err)
}
