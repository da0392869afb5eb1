package builder

import (
	"fmt"

	"github.com/roach88/cqlgen/internal/elm"
	"github.com/roach88/cqlgen/internal/library"
	"github.com/roach88/cqlgen/internal/types"
)

// Retrieve comparators.
const (
	ComparatorIn         = "in"
	ComparatorEquivalent = "~"
	ComparatorEqual      = "="
)

// BuildRetrieve builds a retrieve of typeName, optionally filtered by
// comparing codePath against codes.
//
// With a nil codes operand the retrieve is unfiltered. Otherwise:
//   - codePath defaults to the type's primary code path;
//   - comparator defaults to "in" for vocabularies and lists, "~" otherwise;
//   - scalar codes are wrapped in a list, and List<Concept> is narrowed to
//     List<Code>.
//
// A missing code path, an implicit narrowing and a codes operand that cannot
// be shaped for the comparator are recoverable: they are recorded as library
// diagnostics and the retrieve is still returned (uncoded, or with the raw
// codes operand). With Options.StrictRetrieveTyping they are returned as a
// *RetrieveTypingError instead.
func (b *Builder) BuildRetrieve(typeName string, codes elm.Expression, comparator, codePath string) (*elm.Retrieve, error) {
	t, err := b.model.ResolveName(typeName)
	if err != nil {
		return nil, err
	}
	class, ok := b.model.Class(t)
	if !ok || !class.Retrievable {
		return nil, &UnretrievableTypeError{Type: t}
	}

	r := &elm.Retrieve{DataType: t}
	if codes == nil {
		return r, nil
	}

	if comparator == "" {
		comparator = inferComparator(codes.ResultType())
	}
	switch comparator {
	case ComparatorIn, ComparatorEquivalent, ComparatorEqual:
	default:
		return nil, &UnknownOperatorError{Operator: comparator}
	}

	if codePath == "" {
		codePath = class.PrimaryCodePath
	}
	if codePath == "" {
		if err := b.recoverable(library.WarnPrimaryCodePathMissing,
			"retrieve of %s has a terminology filter but no code path; retrieving uncoded", t); err != nil {
			return nil, err
		}
		return r, nil
	}

	r.CodeProperty = codePath
	r.CodeComparator = comparator

	operand, err := b.codesOperand(t, codePath, comparator, codes)
	if err != nil {
		if rerr := b.recoverable(library.WarnTerminologyResolution,
			"retrieve of %s: %v; using terminology operand as given", t, err); rerr != nil {
			return nil, rerr
		}
		r.Codes = codes
		return r, nil
	}

	operand, err = b.narrowConcepts(operand)
	if err != nil {
		return nil, err
	}
	r.Codes = operand
	return r, nil
}

// inferComparator picks "in" for vocabularies and lists, "~" otherwise.
func inferComparator(t types.DataType) string {
	if types.IsVocabulary(t) || types.IsList(t) {
		return ComparatorIn
	}
	return ComparatorEquivalent
}

// codesOperand derives the codes operand of the comparison
// `<codePath> <comparator> <codes>`, i.e. the right-hand side the retrieve
// filters on, in the shape the retrieve needs.
func (b *Builder) codesOperand(t types.NamedType, codePath, comparator string, codes elm.Expression) (elm.Expression, error) {
	if _, err := b.model.ResolvePath(t, codePath); err != nil {
		return nil, err
	}

	ct := codes.ResultType()
	if !types.IsTerminology(ct) {
		return nil, fmt.Errorf("operand of type %s is not a terminology", ct)
	}

	switch comparator {
	case ComparatorIn:
		if types.IsVocabulary(ct) || types.IsList(ct) {
			return codes, nil
		}
		return b.ToList(codes), nil
	default:
		if types.IsVocabulary(ct) {
			return nil, fmt.Errorf("comparator %q cannot take a %s operand", comparator, ct)
		}
		if types.IsList(ct) {
			return codes, nil
		}
		return b.ToList(codes), nil
	}
}

// narrowConcepts rewrites a List<Concept> operand to List<Code>, either by
// unwrapping ToList(ToConcept(code)) or by projecting .codes.
func (b *Builder) narrowConcepts(operand elm.Expression) (elm.Expression, error) {
	if !types.Equal(operand.ResultType(), types.ListOf(types.Concept)) {
		return operand, nil
	}

	narrowed, how := b.unwrapToConcept(operand)
	if narrowed == nil {
		p, err := b.Property(operand, "codes")
		if err != nil {
			return nil, err
		}
		narrowed, how = p, "projected .codes"
	}

	if err := b.recoverable(library.WarnConceptNarrowing,
		"codes operand %s narrowed from List<System.Concept> to List<System.Code> (%s)", elm.Format(operand), how); err != nil {
		return nil, err
	}
	return narrowed, nil
}

func (b *Builder) unwrapToConcept(operand elm.Expression) (elm.Expression, string) {
	list, ok := operand.(*elm.UnaryOp)
	if !ok || list.Op != elm.OpToList {
		return nil, ""
	}
	conv, ok := list.Operand.(*elm.UnaryOp)
	if !ok || conv.Op != elm.OpToConcept || !types.Equal(conv.Operand.ResultType(), types.Code) {
		return nil, ""
	}
	return b.ToList(conv.Operand), "unwrapped ToConcept"
}
