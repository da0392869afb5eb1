package types

import (
	"fmt"
	"strings"
)

// ClassInfo describes one named type of a model namespace.
type ClassInfo struct {
	Namespace string
	Name      string

	// Retrievable marks types that can be the source of a Retrieve.
	Retrievable bool

	// PrimaryCodePath is the property a terminology-filtered retrieve
	// filters on when no explicit code path is given. Empty means none.
	PrimaryCodePath string

	// Elements are the properties of the type in declaration order.
	Elements []ElementInfo
}

// ElementInfo is one property of a class.
type ElementInfo struct {
	Name string
	Type DataType
}

// Type returns the NamedType identifying this class.
func (c *ClassInfo) Type() NamedType {
	return Named(c.Namespace, c.Name)
}

// Element looks up a property by name.
func (c *ClassInfo) Element(name string) (ElementInfo, bool) {
	for _, e := range c.Elements {
		if e.Name == name {
			return e, true
		}
	}
	return ElementInfo{}, false
}

// Namespace groups the classes of one model (e.g. FHIR).
type Namespace struct {
	Name    string
	URL     string
	classes map[string]*ClassInfo
	order   []string
}

// Classes returns the classes of the namespace in definition order.
func (ns *Namespace) Classes() []*ClassInfo {
	out := make([]*ClassInfo, len(ns.order))
	for i, name := range ns.order {
		out[i] = ns.classes[name]
	}
	return out
}

// Model is the static model description backing type and path resolution.
//
// A Model is built once (from CUE or in code) and then only read; lookups
// have no side effects and are safe for concurrent use after construction.
type Model struct {
	namespaces map[string]*Namespace
	order      []string
}

// NewModel returns a model containing only the System namespace.
func NewModel() *Model {
	m := &Model{namespaces: map[string]*Namespace{}}
	m.AddNamespace(SystemNamespace, "urn:hl7-org:elm-types:r1")
	for _, c := range systemClasses() {
		// System classes are unique by construction.
		_ = m.Define(c)
	}
	return m
}

// AddNamespace registers a namespace, returning the existing one when the
// name is already known.
func (m *Model) AddNamespace(name, url string) *Namespace {
	if ns, ok := m.namespaces[name]; ok {
		return ns
	}
	ns := &Namespace{Name: name, URL: url, classes: map[string]*ClassInfo{}}
	m.namespaces[name] = ns
	m.order = append(m.order, name)
	return ns
}

// Define adds a class to its namespace, creating the namespace if needed.
// Redefinition of a class is an error.
func (m *Model) Define(c *ClassInfo) error {
	ns := m.AddNamespace(c.Namespace, "")
	if _, exists := ns.classes[c.Name]; exists {
		return fmt.Errorf("class %s.%s already defined", c.Namespace, c.Name)
	}
	ns.classes[c.Name] = c
	ns.order = append(ns.order, c.Name)
	return nil
}

// Namespace returns a namespace by name.
func (m *Model) Namespace(name string) (*Namespace, bool) {
	ns, ok := m.namespaces[name]
	return ns, ok
}

// Namespaces returns namespace names in registration order (System first).
func (m *Model) Namespaces() []string {
	return append([]string(nil), m.order...)
}

// DefaultNamespace is the first non-System namespace, used to qualify
// unqualified type names. Empty when only System exists.
func (m *Model) DefaultNamespace() string {
	for _, name := range m.order {
		if name != SystemNamespace {
			return name
		}
	}
	return ""
}

// ResolveType returns the NamedType for typeName within namespace.
func (m *Model) ResolveType(namespace, typeName string) (DataType, error) {
	ns, ok := m.namespaces[namespace]
	if !ok {
		return nil, &UnresolvedTypeError{Namespace: namespace, TypeName: typeName}
	}
	c, ok := ns.classes[typeName]
	if !ok {
		return nil, &UnresolvedTypeError{Namespace: namespace, TypeName: typeName}
	}
	return c.Type(), nil
}

// ResolveName resolves a possibly qualified type name ("FHIR.Condition" or
// "Condition"). Unqualified names are looked up in the default namespace,
// then in System.
func (m *Model) ResolveName(name string) (NamedType, error) {
	if ns, local, ok := strings.Cut(name, "."); ok {
		t, err := m.ResolveType(ns, local)
		if err != nil {
			return NamedType{}, err
		}
		return t.(NamedType), nil
	}
	for _, ns := range []string{m.DefaultNamespace(), SystemNamespace} {
		if ns == "" {
			continue
		}
		if t, err := m.ResolveType(ns, name); err == nil {
			return t.(NamedType), nil
		}
	}
	return NamedType{}, &UnresolvedTypeError{TypeName: name}
}

// Class returns the ClassInfo behind a NamedType.
func (m *Model) Class(t DataType) (*ClassInfo, bool) {
	n, ok := t.(NamedType)
	if !ok {
		return nil, false
	}
	ns, ok := m.namespaces[n.Namespace]
	if !ok {
		return nil, false
	}
	c, ok := ns.classes[n.Name]
	return c, ok
}

// SplitPath splits a dotted or slash separated property path into segments.
func SplitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '.' || r == '/' })
}

// ResolvePath returns the type reached by following path from t.
//
// Navigating through a list yields a list of the element property; a list
// property reached through a list is flattened, so List<List<T>> never
// appears as a result.
func (m *Model) ResolvePath(t DataType, path string) (DataType, error) {
	current := t
	for _, seg := range SplitPath(path) {
		next, ok := m.resolveSegment(current, seg)
		if !ok {
			return nil, &UnresolvedPathError{Type: t, Path: path, Segment: seg}
		}
		current = next
	}
	return current, nil
}

func (m *Model) resolveSegment(t DataType, seg string) (DataType, bool) {
	switch tt := t.(type) {
	case ListType:
		inner, ok := m.resolveSegment(tt.Element, seg)
		if !ok {
			return nil, false
		}
		if IsList(inner) {
			return inner, true
		}
		return ListOf(inner), true
	case TupleType:
		return tt.Element(seg)
	case NamedType:
		c, ok := m.Class(tt)
		if !ok {
			return nil, false
		}
		e, ok := c.Element(seg)
		if !ok {
			return nil, false
		}
		return e.Type, true
	default:
		return nil, false
	}
}

// ParseTypeSpecifier parses "NS.Name", "Name", "List<T>" and
// "Tuple{a T, b U}". Unqualified names are qualified with defaultNS without
// checking that they exist; use Model.CheckType for that.
func ParseTypeSpecifier(spec, defaultNS string) (DataType, error) {
	p := &specParser{src: spec, defaultNS: defaultNS}
	t, err := p.parse()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("type specifier %q: unexpected %q at offset %d", spec, p.src[p.pos:], p.pos)
	}
	return t, nil
}

// CheckType verifies that every NamedType inside t is defined in the model.
func (m *Model) CheckType(t DataType) error {
	switch tt := t.(type) {
	case NamedType:
		_, err := m.ResolveType(tt.Namespace, tt.Name)
		return err
	case ListType:
		return m.CheckType(tt.Element)
	case TupleType:
		for _, e := range tt.Elements {
			if err := m.CheckType(e.Type); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unsupported type %T", t)
	}
}

type specParser struct {
	src       string
	pos       int
	defaultNS string
}

func (p *specParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *specParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c == '_' || c == '.' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *specParser) expect(c byte) error {
	p.skipSpace()
	if p.pos >= len(p.src) || p.src[p.pos] != c {
		return fmt.Errorf("type specifier %q: expected %q at offset %d", p.src, c, p.pos)
	}
	p.pos++
	return nil
}

func (p *specParser) parse() (DataType, error) {
	name := p.ident()
	if name == "" {
		return nil, fmt.Errorf("type specifier %q: expected type name at offset %d", p.src, p.pos)
	}
	switch name {
	case "List":
		if err := p.expect('<'); err != nil {
			return nil, err
		}
		elem, err := p.parse()
		if err != nil {
			return nil, err
		}
		if err := p.expect('>'); err != nil {
			return nil, err
		}
		return ListOf(elem), nil
	case "Tuple":
		if err := p.expect('{'); err != nil {
			return nil, err
		}
		var elems []TupleElement
		for {
			field := p.ident()
			if field == "" {
				return nil, fmt.Errorf("type specifier %q: expected element name at offset %d", p.src, p.pos)
			}
			t, err := p.parse()
			if err != nil {
				return nil, err
			}
			elems = append(elems, Field(field, t))
			p.skipSpace()
			if p.pos < len(p.src) && p.src[p.pos] == ',' {
				p.pos++
				continue
			}
			break
		}
		if err := p.expect('}'); err != nil {
			return nil, err
		}
		return TupleOf(elems...), nil
	}
	if ns, local, ok := strings.Cut(name, "."); ok {
		return Named(ns, local), nil
	}
	return Named(p.defaultNS, name), nil
}
