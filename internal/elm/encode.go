package elm

import (
	"fmt"

	"github.com/roach88/cqlgen/internal/ir"
)

// Encode converts an expression tree into an ir.Object suitable for
// canonical JSON serialization. Every node object carries "kind" and,
// when known, "resultType". Absent optional fields are omitted rather
// than encoded as null.
func Encode(e Expression) ir.Value {
	if e == nil {
		return ir.Null{}
	}

	obj := ir.Object{"kind": ir.String(e.Kind().String())}
	if t := e.ResultType(); t != nil {
		obj["resultType"] = ir.String(t.String())
	}

	switch n := e.(type) {
	case *Literal:
		obj["value"] = n.Value
	case *Property:
		obj["path"] = ir.String(n.Path)
		if n.Source != nil {
			obj["source"] = Encode(n.Source)
		} else {
			obj["scope"] = ir.String(n.Scope)
		}
	case *Retrieve:
		obj["dataType"] = ir.String(n.DataType.String())
		if n.Codes != nil {
			obj["codes"] = Encode(n.Codes)
			obj["codeProperty"] = ir.String(n.CodeProperty)
			obj["codeComparator"] = ir.String(n.CodeComparator)
		}
	case *Query:
		encodeQuery(obj, n)
	case *BinaryOp:
		obj["operator"] = ir.String(string(n.Op))
		obj["operands"] = ir.Array{Encode(n.Left), Encode(n.Right)}
	case *UnaryOp:
		obj["operator"] = ir.String(string(n.Op))
		obj["operand"] = Encode(n.Operand)
	case *Exists:
		obj["operand"] = Encode(n.Operand)
	case *Not:
		obj["operand"] = Encode(n.Operand)
	case *AliasRef:
		obj["name"] = ir.String(n.Name)
	case *QueryLetRef:
		obj["name"] = ir.String(n.Name)
	case *List:
		elems := make(ir.Array, len(n.Elements))
		for i, el := range n.Elements {
			elems[i] = Encode(el)
		}
		obj["elements"] = elems
	case *Tuple:
		elems := make(ir.Array, len(n.Elements))
		for i, el := range n.Elements {
			elems[i] = ir.Object{"name": ir.String(el.Name), "value": Encode(el.Value)}
		}
		obj["elements"] = elems
	case *CodeRef:
		obj["name"] = ir.String(n.Name)
	case *CodeSystemRef:
		obj["name"] = ir.String(n.Name)
	case *ValueSetRef:
		obj["name"] = ir.String(n.Name)
	case *LetClause:
		obj["identifier"] = ir.String(n.Identifier)
		obj["expression"] = Encode(n.Expression)
	case *ReturnClause:
		obj["distinct"] = ir.Boolean(n.Distinct)
		obj["expression"] = Encode(n.Expression)
	default:
		panic(fmt.Sprintf("elm: unhandled expression %T", e))
	}
	return obj
}

func encodeQuery(obj ir.Object, q *Query) {
	obj["sources"] = encodeSources(q.Sources)

	if len(q.Let) > 0 {
		lets := make(ir.Array, len(q.Let))
		for i, l := range q.Let {
			lets[i] = Encode(l)
		}
		obj["let"] = lets
	}
	if len(q.Relationships) > 0 {
		rels := make(ir.Array, len(q.Relationships))
		for i, r := range q.Relationships {
			rels[i] = ir.Object{
				"type":     ir.String(string(r.Type)),
				"source":   encodeSource(r.Source),
				"suchThat": Encode(r.SuchThat),
			}
		}
		obj["relationship"] = rels
	}
	if q.Where != nil {
		obj["where"] = Encode(q.Where)
	}
	if q.Return != nil {
		obj["return"] = Encode(q.Return)
	}
	if a := q.Aggregate; a != nil {
		agg := ir.Object{
			"identifier": ir.String(a.Identifier),
			"distinct":   ir.Boolean(a.Distinct),
			"expression": Encode(a.Expression),
		}
		if a.Starting != nil {
			agg["starting"] = Encode(a.Starting)
		}
		if a.Type != nil {
			agg["resultType"] = ir.String(a.Type.String())
		}
		obj["aggregate"] = agg
	}
	if q.Sort != nil {
		items := make(ir.Array, len(q.Sort.By))
		for i, item := range q.Sort.By {
			o := ir.Object{"direction": ir.String(string(item.Direction))}
			if item.Expression != nil {
				o["expression"] = Encode(item.Expression)
			}
			items[i] = o
		}
		obj["sort"] = ir.Object{"by": items}
	}
}

func encodeSources(sources []*AliasedSource) ir.Array {
	out := make(ir.Array, len(sources))
	for i, s := range sources {
		out[i] = encodeSource(s)
	}
	return out
}

func encodeSource(s *AliasedSource) ir.Object {
	obj := ir.Object{
		"alias":      ir.String(s.Alias),
		"expression": Encode(s.Expression),
	}
	if s.Type != nil {
		obj["resultType"] = ir.String(s.Type.String())
	}
	return obj
}

// Fingerprint returns the content hash of the canonical encoding of e.
// Structurally identical trees have identical fingerprints.
func Fingerprint(e Expression) (string, error) {
	return ir.Fingerprint(ir.DomainExpression, Encode(e))
}
