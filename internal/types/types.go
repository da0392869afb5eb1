package types

import (
	"strings"
)

// DataType is the resolved type carried by every expression node.
//
// This is a sealed interface - only NamedType, ListType and TupleType
// implement it, so a type switch over a DataType is exhaustive.
type DataType interface {
	dataType()
	String() string
}

// NamedType is a class or primitive identified by namespace and name,
// e.g. System.String or FHIR.Condition.
type NamedType struct {
	Namespace string
	Name      string
}

func (NamedType) dataType() {}

func (t NamedType) String() string {
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

// ListType is an ordered collection of Element.
type ListType struct {
	Element DataType
}

func (ListType) dataType() {}

func (t ListType) String() string {
	return "List<" + typeString(t.Element) + ">"
}

// TupleType is a structural record with ordered, named elements.
// Element order is significant: it is the declaration order of the sources
// or fields the tuple was synthesized from.
type TupleType struct {
	Elements []TupleElement
}

func (TupleType) dataType() {}

func (t TupleType) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.Name + " " + typeString(e.Type)
	}
	return "Tuple{" + strings.Join(parts, ", ") + "}"
}

// Element returns the type of the named tuple element.
func (t TupleType) Element(name string) (DataType, bool) {
	for _, e := range t.Elements {
		if e.Name == name {
			return e.Type, true
		}
	}
	return nil, false
}

// TupleElement is one named field of a TupleType.
type TupleElement struct {
	Name string
	Type DataType
}

// Named builds a NamedType.
func Named(namespace, name string) NamedType {
	return NamedType{Namespace: namespace, Name: name}
}

// ListOf builds a ListType over element.
func ListOf(element DataType) ListType {
	return ListType{Element: element}
}

// TupleOf builds a TupleType with elements in the given order.
func TupleOf(elements ...TupleElement) TupleType {
	return TupleType{Elements: elements}
}

// Field is shorthand for a TupleElement.
func Field(name string, t DataType) TupleElement {
	return TupleElement{Name: name, Type: t}
}

func typeString(t DataType) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// ElementType reports the element type of t when t is a list.
func ElementType(t DataType) (DataType, bool) {
	if l, ok := t.(ListType); ok {
		return l.Element, true
	}
	return nil, false
}

// IsList reports whether t is a ListType.
func IsList(t DataType) bool {
	_, ok := t.(ListType)
	return ok
}

// Equal reports structural type equality. Tuple elements compare in order.
func Equal(a, b DataType) bool {
	switch at := a.(type) {
	case nil:
		return b == nil
	case NamedType:
		bt, ok := b.(NamedType)
		return ok && at == bt
	case ListType:
		bt, ok := b.(ListType)
		return ok && Equal(at.Element, bt.Element)
	case TupleType:
		bt, ok := b.(TupleType)
		if !ok || len(at.Elements) != len(bt.Elements) {
			return false
		}
		for i := range at.Elements {
			if at.Elements[i].Name != bt.Elements[i].Name || !Equal(at.Elements[i].Type, bt.Elements[i].Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
