package builder

import (
	"github.com/roach88/cqlgen/internal/elm"
	"github.com/roach88/cqlgen/internal/types"
)

// Operator symbols accepted by ResolveOperator.
const (
	OpEqual          = "=="
	OpNotEqual       = "!="
	OpLess           = "<"
	OpLessOrEqual    = "<="
	OpGreater        = ">"
	OpGreaterOrEqual = ">="
	OpIn             = "in"
	OpEquivalent     = "~"
	OpNotEquivalent  = "!~"
)

// operatorKinds maps each operator symbol to its comparison node and
// whether the comparison is negated.
var operatorKinds = map[string]struct {
	kind    elm.BinaryKind
	negated bool
}{
	OpEqual:          {elm.OpEqual, false},
	OpNotEqual:       {elm.OpEqual, true},
	OpLess:           {elm.OpLess, false},
	OpLessOrEqual:    {elm.OpLessOrEqual, false},
	OpGreater:        {elm.OpGreater, false},
	OpGreaterOrEqual: {elm.OpGreaterOrEqual, false},
	OpIn:             {elm.OpIn, false},
	OpEquivalent:     {elm.OpEquivalent, false},
	OpNotEquivalent:  {elm.OpEquivalent, true},
}

// IsOperator reports whether op has a resolution rule.
func IsOperator(op string) bool {
	_, ok := operatorKinds[op]
	return ok
}

// ResolveOperator builds the boolean expression `left op right`.
//
// A list-valued left operand is compared element-wise: the result is
// Exists(Query(X: left where X op right)), where X is a fresh alias. The
// scalar rules are:
//   - == and != against a code or value set reference test membership;
//   - "in" against a code reference tests equivalence;
//   - negated operators wrap the positive comparison in Not.
func (b *Builder) ResolveOperator(op string, left, right elm.Expression) (elm.Expression, error) {
	spec, ok := operatorKinds[op]
	if !ok {
		return nil, &UnknownOperatorError{Operator: op}
	}

	if elem, isList := types.ElementType(left.ResultType()); isList {
		return b.existential(op, left, elem, right)
	}

	kind := spec.kind
	switch kind {
	case elm.OpEqual:
		if isTerminologyRef(right) {
			kind = elm.OpIn
		}
	case elm.OpIn:
		if _, isCode := right.(*elm.CodeRef); isCode {
			kind = elm.OpEquivalent
		}
	case elm.OpLess, elm.OpLessOrEqual, elm.OpGreater, elm.OpGreaterOrEqual:
		if types.IsList(right.ResultType()) {
			return nil, &IncompatibleOperandError{Operator: op, Type: right.ResultType(), Reason: "is a list"}
		}
	}

	var cmp elm.Expression = &elm.BinaryOp{Op: kind, Left: left, Right: right, Type: types.Boolean}
	if spec.negated {
		cmp = &elm.Not{Operand: cmp}
	}
	return cmp, nil
}

// existential rewrites a comparison on a list into an Exists over a query
// filtering the list's elements.
func (b *Builder) existential(op string, left elm.Expression, elem types.DataType, right elm.Expression) (elm.Expression, error) {
	src := elm.Source(b.FreshAlias(elem), left)
	q, err := b.Query([]*elm.AliasedSource{src}, func(*QueryContext) ([]elm.Clause, error) {
		cond, err := b.ResolveOperator(op, src.Ref(), right)
		if err != nil {
			return nil, err
		}
		return []elm.Clause{&elm.Where{Condition: cond}}, nil
	})
	if err != nil {
		return nil, err
	}
	return &elm.Exists{Operand: q}, nil
}

func isTerminologyRef(e elm.Expression) bool {
	switch e.(type) {
	case *elm.CodeRef, *elm.ValueSetRef:
		return true
	}
	return false
}

// ResolveUnion builds the union of two lists. Element types must match;
// System.Any unifies with any element type.
func (b *Builder) ResolveUnion(left, right elm.Expression) (*elm.BinaryOp, error) {
	mismatch := &UnionTypeMismatchError{Left: left.ResultType(), Right: right.ResultType()}

	le, ok := types.ElementType(left.ResultType())
	if !ok {
		return nil, mismatch
	}
	re, ok := types.ElementType(right.ResultType())
	if !ok {
		return nil, mismatch
	}

	var elem types.DataType
	switch {
	case types.Equal(le, re), types.Equal(re, types.Any):
		elem = le
	case types.Equal(le, types.Any):
		elem = re
	default:
		return nil, mismatch
	}
	return &elm.BinaryOp{Op: elm.OpUnion, Left: left, Right: right, Type: types.ListOf(elem)}, nil
}
