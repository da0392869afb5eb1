package elm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/cqlgen/internal/ir"
)

// Format renders e as compact single-line text for logs, CLI output and
// test assertions. It is a debugging notation, not a source grammar.
//
//	Exists(Query(O: [FHIR.Observation] where GreaterOrEqual(O.value, 5)))
func Format(e Expression) string {
	var b strings.Builder
	writeExpr(&b, e)
	return b.String()
}

func writeExpr(b *strings.Builder, e Expression) {
	switch n := e.(type) {
	case nil:
		b.WriteString("null")
	case *Literal:
		writeValue(b, n.Value)
	case *Property:
		if n.Source != nil {
			writeOperand(b, n.Source)
		} else {
			b.WriteString(n.Scope)
		}
		b.WriteByte('.')
		b.WriteString(n.Path)
	case *Retrieve:
		b.WriteByte('[')
		b.WriteString(n.DataType.String())
		if n.Codes != nil {
			fmt.Fprintf(b, ": %s %s ", n.CodeProperty, n.CodeComparator)
			writeExpr(b, n.Codes)
		}
		b.WriteByte(']')
	case *Query:
		writeQuery(b, n)
	case *BinaryOp:
		writeCall(b, string(n.Op), n.Left, n.Right)
	case *UnaryOp:
		writeCall(b, string(n.Op), n.Operand)
	case *Exists:
		writeCall(b, "Exists", n.Operand)
	case *Not:
		writeCall(b, "Not", n.Operand)
	case *AliasRef:
		b.WriteString(n.Name)
	case *QueryLetRef:
		b.WriteString(n.Name)
	case *List:
		b.WriteByte('{')
		for i, el := range n.Elements {
			if i > 0 {
				b.WriteString(", ")
			}
			writeExpr(b, el)
		}
		b.WriteByte('}')
	case *Tuple:
		b.WriteString("Tuple{")
		for i, el := range n.Elements {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(el.Name)
			b.WriteString(": ")
			writeExpr(b, el.Value)
		}
		b.WriteByte('}')
	case *CodeRef:
		fmt.Fprintf(b, "Code %q", n.Name)
	case *CodeSystemRef:
		fmt.Fprintf(b, "CodeSystem %q", n.Name)
	case *ValueSetRef:
		fmt.Fprintf(b, "ValueSet %q", n.Name)
	case *LetClause:
		b.WriteString(n.Identifier)
		b.WriteString(": ")
		writeExpr(b, n.Expression)
	case *ReturnClause:
		if n.Distinct {
			b.WriteString("distinct ")
		}
		writeExpr(b, n.Expression)
	default:
		fmt.Fprintf(b, "<%T>", e)
	}
}

// writeOperand parenthesizes queries used as property sources so the
// trailing path is not read as part of the last clause.
func writeOperand(b *strings.Builder, e Expression) {
	if _, ok := e.(*Query); ok {
		b.WriteByte('(')
		writeExpr(b, e)
		b.WriteByte(')')
		return
	}
	writeExpr(b, e)
}

func writeCall(b *strings.Builder, name string, args ...Expression) {
	b.WriteString(name)
	b.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			b.WriteString(", ")
		}
		writeExpr(b, a)
	}
	b.WriteByte(')')
}

func writeQuery(b *strings.Builder, q *Query) {
	b.WriteString("Query(")
	for i, s := range q.Sources {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(s.Alias)
		b.WriteString(": ")
		writeExpr(b, s.Expression)
	}
	if len(q.Let) > 0 {
		b.WriteString(" let ")
		for i, l := range q.Let {
			if i > 0 {
				b.WriteString(", ")
			}
			writeExpr(b, l)
		}
	}
	for _, r := range q.Relationships {
		fmt.Fprintf(b, " %s %s: ", strings.ToLower(string(r.Type)), r.Source.Alias)
		writeExpr(b, r.Source.Expression)
		b.WriteString(" such that ")
		writeExpr(b, r.SuchThat)
	}
	if q.Where != nil {
		b.WriteString(" where ")
		writeExpr(b, q.Where)
	}
	if q.Return != nil {
		b.WriteString(" return ")
		writeExpr(b, q.Return)
	}
	if a := q.Aggregate; a != nil {
		b.WriteString(" aggregate ")
		if a.Distinct {
			b.WriteString("distinct ")
		}
		b.WriteString(a.Identifier)
		if a.Starting != nil {
			b.WriteString(" starting ")
			writeExpr(b, a.Starting)
		}
		b.WriteString(": ")
		writeExpr(b, a.Expression)
	}
	if q.Sort != nil {
		b.WriteString(" sort by ")
		for i, item := range q.Sort.By {
			if i > 0 {
				b.WriteString(", ")
			}
			if item.Expression != nil {
				writeExpr(b, item.Expression)
				b.WriteByte(' ')
			}
			b.WriteString(string(item.Direction))
		}
	}
	b.WriteByte(')')
}

func writeValue(b *strings.Builder, v ir.Value) {
	switch val := v.(type) {
	case ir.String:
		b.WriteByte('\'')
		b.WriteString(strings.ReplaceAll(string(val), "'", `\'`))
		b.WriteByte('\'')
	case ir.Integer:
		b.WriteString(strconv.FormatInt(int64(val), 10))
	case ir.Boolean:
		b.WriteString(strconv.FormatBool(bool(val)))
	case ir.Decimal:
		b.WriteString(string(val))
	case ir.Null, nil:
		b.WriteString("null")
	default:
		data, err := ir.MarshalCanonical(v)
		if err != nil {
			fmt.Fprintf(b, "<%v>", err)
			return
		}
		b.Write(data)
	}
}
