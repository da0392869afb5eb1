package elm

import (
	"fmt"

	"github.com/roach88/cqlgen/internal/types"
)

// Definitions reports which terminology definitions exist in the library
// that owns an expression tree.
type Definitions interface {
	HasCodeSystem(name string) bool
	HasCode(name string) bool
	HasValueSet(name string) bool
}

// ValidationResult contains the structural analysis of an expression tree.
type ValidationResult struct {
	// Valid is true when no rule was violated.
	Valid bool

	// Warnings lists every violated rule. Empty when Valid is true.
	Warnings []string
}

// Validate checks a finished tree against the IR structure rules:
//  1. Terminology refs resolve in defs (skipped when defs is nil)
//  2. No comparison has a list-typed left operand
//  3. A Query is List<projection> unless singular
//  4. An AliasedSource over a list has the element type
//  5. AliasRef and QueryLetRef names are in scope
//
// Validate is a pure function with no side effects.
func Validate(e Expression, defs Definitions) ValidationResult {
	v := &validator{
		defs:     defs,
		warnings: []string{},
	}
	v.validate(e)

	return ValidationResult{
		Valid:    len(v.warnings) == 0,
		Warnings: v.warnings,
	}
}

// validator accumulates warnings during traversal.
type validator struct {
	defs     Definitions
	scopes   []map[string]bool
	warnings []string
}

func (v *validator) addWarning(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) push() { v.scopes = append(v.scopes, map[string]bool{}) }
func (v *validator) pop() { v.scopes = v.scopes[:len(v.scopes)-1] }

func (v *validator) declare(name string) {
	v.scopes[len(v.scopes)-1][name] = true
}

func (v *validator) inScope(name string) bool {
	for i := len(v.scopes) - 1; i >= 0; i-- {
		if v.scopes[i][name] {
			return true
		}
	}
	return false
}

func (v *validator) validate(e Expression) {
	if e == nil {
		return
	}

	switch n := e.(type) {
	case *Literal:
		if n.Value == nil {
			v.addWarning("literal of type %s has no value", typeString(n.Type))
		}
	case *Property:
		if n.Source != nil {
			v.validate(n.Source)
		} else if !v.inScope(n.Scope) {
			v.addWarning("property %q refers to %q which is not in scope", n.Path, n.Scope)
		}
	case *Retrieve:
		v.validate(n.Codes)
	case *Query:
		v.validateQuery(n)
	case *BinaryOp:
		if n.Op.IsComparison() && n.Left != nil && types.IsList(n.Left.ResultType()) {
			v.addWarning("%s has list-typed left operand %s; list comparisons must be wrapped in Exists",
				n.Op, n.Left.ResultType())
		}
		v.validate(n.Left)
		v.validate(n.Right)
	case *UnaryOp:
		v.validate(n.Operand)
	case *Exists:
		v.validate(n.Operand)
	case *Not:
		v.validate(n.Operand)
	case *AliasRef:
		if !v.inScope(n.Name) {
			v.addWarning("alias %q is not in scope", n.Name)
		}
	case *QueryLetRef:
		if !v.inScope(n.Name) {
			v.addWarning("let identifier %q is not in scope", n.Name)
		}
	case *List:
		for _, el := range n.Elements {
			v.validate(el)
		}
	case *Tuple:
		for _, el := range n.Elements {
			v.validate(el.Value)
		}
	case *CodeRef:
		if v.defs != nil && !v.defs.HasCode(n.Name) {
			v.addWarning("code %q is not defined in the library", n.Name)
		}
	case *CodeSystemRef:
		if v.defs != nil && !v.defs.HasCodeSystem(n.Name) {
			v.addWarning("code system %q is not defined in the library", n.Name)
		}
	case *ValueSetRef:
		if v.defs != nil && !v.defs.HasValueSet(n.Name) {
			v.addWarning("value set %q is not defined in the library", n.Name)
		}
	case *LetClause:
		v.validate(n.Expression)
	case *ReturnClause:
		v.validate(n.Expression)
	default:
		v.addWarning("unknown expression type %T", e)
	}
}

func (v *validator) validateQuery(q *Query) {
	if len(q.Sources) == 0 {
		v.addWarning("query has no sources")
		return
	}

	v.push()
	defer v.pop()

	for _, s := range q.Sources {
		v.validateSource(s)
	}
	for _, l := range q.Let {
		v.validate(l.Expression)
		v.declare(l.Identifier)
	}
	for _, r := range q.Relationships {
		v.push()
		v.validateSource(r.Source)
		v.validate(r.SuchThat)
		v.pop()
	}
	v.validate(q.Where)
	if q.Return != nil {
		v.validate(q.Return.Expression)
	}
	if a := q.Aggregate; a != nil {
		v.validate(a.Starting)
		v.push()
		v.declare(a.Identifier)
		v.validate(a.Expression)
		v.pop()
	}
	if q.Sort != nil {
		for _, item := range q.Sort.By {
			v.validate(item.Expression)
		}
	}

	if want := expectedQueryType(q); !types.Equal(want, q.Type) {
		v.addWarning("query result type is %s, expected %s", typeString(q.Type), typeString(want))
	}
}

func (v *validator) validateSource(s *AliasedSource) {
	v.validate(s.Expression)
	if s.Expression != nil {
		t := s.Expression.ResultType()
		if elem, ok := types.ElementType(t); ok {
			t = elem
		}
		if !types.Equal(t, s.Type) {
			v.addWarning("source %q has type %s, expected %s", s.Alias, typeString(s.Type), typeString(t))
		}
	}
	v.declare(s.Alias)
}

// IsSingular reports whether q yields at most one row: it has exactly one
// source and that source's expression is not a list.
func IsSingular(q *Query) bool {
	return len(q.Sources) == 1 && q.Sources[0].Expression != nil &&
		!types.IsList(q.Sources[0].Expression.ResultType())
}

func expectedQueryType(q *Query) types.DataType {
	if q.Aggregate != nil {
		return q.Aggregate.Type
	}
	var row types.DataType
	if q.Return != nil {
		row = q.Return.ResultType()
	} else {
		row = q.Sources[0].Type
	}
	if IsSingular(q) {
		return row
	}
	return types.ListOf(row)
}

func typeString(t types.DataType) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
