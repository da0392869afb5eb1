package builder

import (
	"fmt"
	"strings"

	"github.com/roach88/cqlgen/internal/types"
)

// Builder error codes (E310-E339).
const (
	ErrCodeUnretrievableType   = "E311"
	ErrCodeRetrieveTyping      = "E312"
	ErrCodeUnknownOperator     = "E313"
	ErrCodeUnionTypeMismatch   = "E314"
	ErrCodeSortOnAggregate     = "E315"
	ErrCodeSortOnSingular      = "E316"
	ErrCodeNotComparable       = "E317"
	ErrCodeDuplicateClause     = "E318"
	ErrCodeDuplicateAlias      = "E319"
	ErrCodeUnknownIdentifier   = "E320"
	ErrCodeContextStack        = "E321"
	ErrCodeInvalidQuery        = "E322"
	ErrCodeIncompatibleOperand = "E323"
)

// UnretrievableTypeError occurs when a retrieve names a type that is not
// flagged retrievable in the model.
type UnretrievableTypeError struct {
	Type types.DataType
}

func (e *UnretrievableTypeError) Error() string {
	return fmt.Sprintf("type %s is not retrievable", e.Type)
}

// Code returns the stable error code.
func (e *UnretrievableTypeError) Code() string { return ErrCodeUnretrievableType }

// RetrieveTypingError is a recoverable retrieve condition promoted to a
// fatal error by Options.StrictRetrieveTyping. Diagnostic holds the code
// the condition is recorded under in permissive mode.
type RetrieveTypingError struct {
	Diagnostic string
	Message    string
}

func (e *RetrieveTypingError) Error() string {
	return fmt.Sprintf("strict retrieve typing (%s): %s", e.Diagnostic, e.Message)
}

// Code returns the stable error code.
func (e *RetrieveTypingError) Code() string { return ErrCodeRetrieveTyping }

// UnknownOperatorError occurs for an operator or comparator symbol with no
// resolution rule.
type UnknownOperatorError struct {
	Operator string
}

func (e *UnknownOperatorError) Error() string {
	return fmt.Sprintf("unknown operator %q", e.Operator)
}

// Code returns the stable error code.
func (e *UnknownOperatorError) Code() string { return ErrCodeUnknownOperator }

// UnionTypeMismatchError occurs when union operands are not lists of the
// same element type.
type UnionTypeMismatchError struct {
	Left  types.DataType
	Right types.DataType
}

func (e *UnionTypeMismatchError) Error() string {
	return fmt.Sprintf("cannot union %s with %s", e.Left, e.Right)
}

// Code returns the stable error code.
func (e *UnionTypeMismatchError) Code() string { return ErrCodeUnionTypeMismatch }

// SortOnAggregateError occurs when a query has both sort and aggregate
// clauses.
type SortOnAggregateError struct{}

func (e *SortOnAggregateError) Error() string {
	return "sort clause cannot be combined with an aggregate clause"
}

// Code returns the stable error code.
func (e *SortOnAggregateError) Code() string { return ErrCodeSortOnAggregate }

// SortOnSingularError occurs when a singular query has a sort clause.
type SortOnSingularError struct {
	Alias string
}

func (e *SortOnSingularError) Error() string {
	return fmt.Sprintf("sort clause on singular query over %q", e.Alias)
}

// Code returns the stable error code.
func (e *SortOnSingularError) Code() string { return ErrCodeSortOnSingular }

// NotComparableError occurs when a sort key type has no ordering.
type NotComparableError struct {
	Type types.DataType
}

func (e *NotComparableError) Error() string {
	return fmt.Sprintf("sort key of type %s is not comparable", e.Type)
}

// Code returns the stable error code.
func (e *NotComparableError) Code() string { return ErrCodeNotComparable }

// DuplicateClauseError occurs when more than one where, return, aggregate
// or sort clause is supplied to one query.
type DuplicateClauseError struct {
	Clause string
}

func (e *DuplicateClauseError) Error() string {
	return fmt.Sprintf("query has more than one %s clause", e.Clause)
}

// Code returns the stable error code.
func (e *DuplicateClauseError) Code() string { return ErrCodeDuplicateClause }

// DuplicateAliasError occurs when an alias or let identifier is declared
// twice in one query.
type DuplicateAliasError struct {
	Name string
}

func (e *DuplicateAliasError) Error() string {
	return fmt.Sprintf("identifier %q is already declared in this query", e.Name)
}

// Code returns the stable error code.
func (e *DuplicateAliasError) Code() string { return ErrCodeDuplicateAlias }

// UnknownIdentifierError occurs when an alias or let reference names an
// identifier that is not in scope.
type UnknownIdentifierError struct {
	Name    string
	InScope []string
}

func (e *UnknownIdentifierError) Error() string {
	if len(e.InScope) == 0 {
		return fmt.Sprintf("identifier %q is not in scope (no query in progress)", e.Name)
	}
	return fmt.Sprintf("identifier %q is not in scope (in scope: %s)", e.Name, strings.Join(e.InScope, ", "))
}

// Code returns the stable error code.
func (e *UnknownIdentifierError) Code() string { return ErrCodeUnknownIdentifier }

// ContextStackError occurs when query contexts are popped out of order.
type ContextStackError struct {
	Message string
}

func (e *ContextStackError) Error() string {
	return "query context stack: " + e.Message
}

// Code returns the stable error code.
func (e *ContextStackError) Code() string { return ErrCodeContextStack }

// InvalidQueryError occurs for structurally impossible queries.
type InvalidQueryError struct {
	Message string
}

func (e *InvalidQueryError) Error() string {
	return "invalid query: " + e.Message
}

// Code returns the stable error code.
func (e *InvalidQueryError) Code() string { return ErrCodeInvalidQuery }

// IncompatibleOperandError occurs when an operand type cannot take part in
// an operation.
type IncompatibleOperandError struct {
	Operator string
	Type     types.DataType
	Reason   string
}

func (e *IncompatibleOperandError) Error() string {
	return fmt.Sprintf("operator %q: operand of type %s %s", e.Operator, e.Type, e.Reason)
}

// Code returns the stable error code.
func (e *IncompatibleOperandError) Code() string { return ErrCodeIncompatibleOperand }
