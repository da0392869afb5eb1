package elm

import "github.com/roach88/cqlgen/internal/types"

// Clause is one element of the unordered clause bag handed to the query
// builder.
//
// This is a sealed interface - only types in this package implement it.
type Clause interface {
	clauseNode()
}

// AliasedSource is one source of a Query. Type is the element type when
// Expression is list-typed, otherwise the expression's own type.
type AliasedSource struct {
	Alias      string
	Expression Expression
	Type       types.DataType
}

// Source builds an AliasedSource, deriving its result type from expr.
func Source(alias string, expr Expression) *AliasedSource {
	t := expr.ResultType()
	if elem, ok := types.ElementType(t); ok {
		t = elem
	}
	return &AliasedSource{Alias: alias, Expression: expr, Type: t}
}

// Ref returns an AliasRef to the source.
func (s *AliasedSource) Ref() *AliasRef {
	return &AliasRef{Name: s.Alias, Type: s.Type}
}

// LetClause binds Identifier to Expression for the rest of the query.
// It is both a Clause and an Expression.
type LetClause struct {
	Identifier string
	Expression Expression
}

func (*LetClause) clauseNode() {}
func (*LetClause) expressionNode() {}
func (*LetClause) Kind() Kind { return KindLet }
func (n *LetClause) ResultType() types.DataType { return n.Expression.ResultType() }

// Ref returns a QueryLetRef to the binding.
func (n *LetClause) Ref() *QueryLetRef {
	return &QueryLetRef{Name: n.Identifier, Type: n.Expression.ResultType()}
}

// RelationshipType distinguishes with and without clauses.
type RelationshipType string

const (
	With    RelationshipType = "With"
	Without RelationshipType = "Without"
)

// RelationshipClause keeps (With) or drops (Without) rows for which some
// element of Source satisfies SuchThat.
type RelationshipClause struct {
	Type     RelationshipType
	Source   *AliasedSource
	SuchThat Expression
}

func (*RelationshipClause) clauseNode() {}

// Where filters query rows by Condition.
type Where struct {
	Condition Expression
}

func (*Where) clauseNode() {}

// ReturnClause projects each row to Expression. Its ResultType is the
// per-row projection type; the enclosing Query decides list-ness.
type ReturnClause struct {
	Distinct   bool
	Expression Expression
}

func (*ReturnClause) clauseNode() {}
func (*ReturnClause) expressionNode() {}
func (*ReturnClause) Kind() Kind { return KindReturn }
func (n *ReturnClause) ResultType() types.DataType { return n.Expression.ResultType() }

// AggregateClause folds the rows into Identifier, starting from Starting,
// by evaluating Expression for each row. Type is the folded value type.
type AggregateClause struct {
	Identifier string
	Distinct   bool
	Starting   Expression
	Expression Expression
	Type       types.DataType
}

func (*AggregateClause) clauseNode() {}

// SortDirection orders a sort key.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// SortByItem is one sort key. A nil Expression sorts by the row value.
type SortByItem struct {
	Direction  SortDirection
	Expression Expression
}

// SortClause orders the query result by its items, in order.
type SortClause struct {
	By []SortByItem
}

func (*SortClause) clauseNode() {}
