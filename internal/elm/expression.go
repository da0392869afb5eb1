package elm

import (
	"github.com/roach88/cqlgen/internal/ir"
	"github.com/roach88/cqlgen/internal/types"
)

// Expression is a node of the IR.
//
// This is a sealed interface - only types in this package implement it.
type Expression interface {
	expressionNode()

	// Kind identifies the node variant.
	Kind() Kind

	// ResultType is the resolved type of the value the node produces.
	ResultType() types.DataType
}

// Kind enumerates the Expression variants.
type Kind int

const (
	KindLiteral Kind = iota + 1
	KindProperty
	KindRetrieve
	KindQuery
	KindBinary
	KindUnary
	KindExists
	KindNot
	KindAliasRef
	KindLetRef
	KindList
	KindTuple
	KindCodeRef
	KindCodeSystemRef
	KindValueSetRef
	KindLet
	KindReturn
)

var kindNames = map[Kind]string{
	KindLiteral:       "Literal",
	KindProperty:      "Property",
	KindRetrieve:      "Retrieve",
	KindQuery:         "Query",
	KindBinary:        "BinaryOp",
	KindUnary:         "UnaryOp",
	KindExists:        "Exists",
	KindNot:           "Not",
	KindAliasRef:      "AliasRef",
	KindLetRef:        "QueryLetRef",
	KindList:          "List",
	KindTuple:         "Tuple",
	KindCodeRef:       "CodeRef",
	KindCodeSystemRef: "CodeSystemRef",
	KindValueSetRef:   "ValueSetRef",
	KindLet:           "LetClause",
	KindReturn:        "ReturnClause",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// BinaryKind names the operation of a BinaryOp.
type BinaryKind string

const (
	OpEqual          BinaryKind = "Equal"
	OpEquivalent     BinaryKind = "Equivalent"
	OpLess           BinaryKind = "Less"
	OpLessOrEqual    BinaryKind = "LessOrEqual"
	OpGreater        BinaryKind = "Greater"
	OpGreaterOrEqual BinaryKind = "GreaterOrEqual"
	OpIn             BinaryKind = "In"
	OpUnion          BinaryKind = "Union"
	OpAnd            BinaryKind = "And"
	OpOr             BinaryKind = "Or"
	OpEndsWith       BinaryKind = "EndsWith"
)

// IsComparison reports whether op compares its left operand against its
// right operand (as opposed to combining them).
func (op BinaryKind) IsComparison() bool {
	switch op {
	case OpEqual, OpEquivalent, OpLess, OpLessOrEqual, OpGreater, OpGreaterOrEqual, OpIn:
		return true
	}
	return false
}

// UnaryKind names the operation of a UnaryOp.
type UnaryKind string

const (
	OpToList        UnaryKind = "ToList"
	OpToConcept     UnaryKind = "ToConcept"
	OpSingletonFrom UnaryKind = "SingletonFrom"
)

// Literal is a constant value.
type Literal struct {
	Value ir.Value
	Type  types.DataType
}

func (*Literal) expressionNode() {}
func (*Literal) Kind() Kind { return KindLiteral }
func (n *Literal) ResultType() types.DataType { return n.Type }

// String returns a System.String literal.
func String(s string) *Literal {
	return &Literal{Value: ir.String(s), Type: types.String}
}

// Integer returns a System.Integer literal.
func Integer(i int64) *Literal {
	return &Literal{Value: ir.Integer(i), Type: types.Integer}
}

// Boolean returns a System.Boolean literal.
func Boolean(b bool) *Literal {
	return &Literal{Value: ir.Boolean(b), Type: types.Boolean}
}

// Decimal returns a System.Decimal literal.
func Decimal(d ir.Decimal) *Literal {
	return &Literal{Value: d, Type: types.Decimal}
}

// Null returns an untyped null literal (System.Any).
func Null() *Literal {
	return &Literal{Value: ir.Null{}, Type: types.Any}
}

// Property accesses Path on Source, or on the in-scope identifier Scope
// when Source is nil.
type Property struct {
	Source Expression
	Scope  string
	Path   string
	Type   types.DataType
}

func (*Property) expressionNode() {}
func (*Property) Kind() Kind { return KindProperty }
func (n *Property) ResultType() types.DataType { return n.Type }

// Retrieve is a bulk data access: all instances of DataType, optionally
// filtered by comparing CodeProperty against Codes.
//
// Codes holds only the codes operand (a list of codes, a value set or a
// code system reference), never the comparison itself.
type Retrieve struct {
	DataType       types.NamedType
	Codes          Expression
	CodeProperty   string
	CodeComparator string
}

func (*Retrieve) expressionNode() {}
func (*Retrieve) Kind() Kind { return KindRetrieve }
func (n *Retrieve) ResultType() types.DataType { return types.ListOf(n.DataType) }

// Query iterates Sources with optional clauses. Type is computed by the
// query builder.
type Query struct {
	Sources       []*AliasedSource
	Let           []*LetClause
	Relationships []*RelationshipClause
	Where         Expression
	Return        *ReturnClause
	Aggregate     *AggregateClause
	Sort          *SortClause
	Type          types.DataType
}

func (*Query) expressionNode() {}
func (*Query) Kind() Kind { return KindQuery }
func (n *Query) ResultType() types.DataType { return n.Type }

// BinaryOp applies Op to Left and Right.
type BinaryOp struct {
	Op    BinaryKind
	Left  Expression
	Right Expression
	Type  types.DataType
}

func (*BinaryOp) expressionNode() {}
func (*BinaryOp) Kind() Kind { return KindBinary }
func (n *BinaryOp) ResultType() types.DataType { return n.Type }

// UnaryOp applies Op to Operand.
type UnaryOp struct {
	Op      UnaryKind
	Operand Expression
	Type    types.DataType
}

func (*UnaryOp) expressionNode() {}
func (*UnaryOp) Kind() Kind { return KindUnary }
func (n *UnaryOp) ResultType() types.DataType { return n.Type }

// Exists is true when Operand is a non-empty list.
type Exists struct {
	Operand Expression
}

func (*Exists) expressionNode() {}
func (*Exists) Kind() Kind { return KindExists }
func (*Exists) ResultType() types.DataType { return types.Boolean }

// Not negates a boolean Operand.
type Not struct {
	Operand Expression
}

func (*Not) expressionNode() {}
func (*Not) Kind() Kind { return KindNot }
func (*Not) ResultType() types.DataType { return types.Boolean }

// AliasRef refers to a query source alias in scope.
type AliasRef struct {
	Name string
	Type types.DataType
}

func (*AliasRef) expressionNode() {}
func (*AliasRef) Kind() Kind { return KindAliasRef }
func (n *AliasRef) ResultType() types.DataType { return n.Type }

// QueryLetRef refers to a let identifier in scope.
type QueryLetRef struct {
	Name string
	Type types.DataType
}

func (*QueryLetRef) expressionNode() {}
func (*QueryLetRef) Kind() Kind { return KindLetRef }
func (n *QueryLetRef) ResultType() types.DataType { return n.Type }

// List is a list selector.
type List struct {
	Elements []Expression
	Type     types.DataType
}

func (*List) expressionNode() {}
func (*List) Kind() Kind { return KindList }
func (n *List) ResultType() types.DataType { return n.Type }

// Tuple is a tuple selector. Element order is significant.
type Tuple struct {
	Elements []TupleElement
	Type     types.DataType
}

// TupleElement is one named value of a Tuple selector.
type TupleElement struct {
	Name  string
	Value Expression
}

func (*Tuple) expressionNode() {}
func (*Tuple) Kind() Kind { return KindTuple }
func (n *Tuple) ResultType() types.DataType { return n.Type }

// CodeRef refers to a code definition of the owning library.
type CodeRef struct {
	Name string
}

func (*CodeRef) expressionNode() {}
func (*CodeRef) Kind() Kind { return KindCodeRef }
func (*CodeRef) ResultType() types.DataType { return types.Code }

// CodeSystemRef refers to a code system definition of the owning library.
type CodeSystemRef struct {
	Name string
}

func (*CodeSystemRef) expressionNode() {}
func (*CodeSystemRef) Kind() Kind { return KindCodeSystemRef }
func (*CodeSystemRef) ResultType() types.DataType { return types.CodeSystem }

// ValueSetRef refers to a value set definition of the owning library.
type ValueSetRef struct {
	Name string
}

func (*ValueSetRef) expressionNode() {}
func (*ValueSetRef) Kind() Kind { return KindValueSetRef }
func (*ValueSetRef) ResultType() types.DataType { return types.ValueSet }
