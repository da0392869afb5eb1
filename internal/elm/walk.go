package elm

// Walk traverses the tree rooted at e in depth-first pre-order, calling fn
// for every node. When fn returns false the children of that node are
// skipped. Query sources, clauses and sort keys are visited in rendering
// order.
func Walk(e Expression, fn func(Expression) bool) {
	if e == nil || !fn(e) {
		return
	}

	switch n := e.(type) {
	case *Property:
		Walk(n.Source, fn)
	case *Retrieve:
		Walk(n.Codes, fn)
	case *Query:
		for _, s := range n.Sources {
			Walk(s.Expression, fn)
		}
		for _, l := range n.Let {
			Walk(l, fn)
		}
		for _, r := range n.Relationships {
			Walk(r.Source.Expression, fn)
			Walk(r.SuchThat, fn)
		}
		Walk(n.Where, fn)
		if n.Return != nil {
			Walk(n.Return, fn)
		}
		if n.Aggregate != nil {
			Walk(n.Aggregate.Starting, fn)
			Walk(n.Aggregate.Expression, fn)
		}
		if n.Sort != nil {
			for _, item := range n.Sort.By {
				Walk(item.Expression, fn)
			}
		}
	case *BinaryOp:
		Walk(n.Left, fn)
		Walk(n.Right, fn)
	case *UnaryOp:
		Walk(n.Operand, fn)
	case *Exists:
		Walk(n.Operand, fn)
	case *Not:
		Walk(n.Operand, fn)
	case *List:
		for _, el := range n.Elements {
			Walk(el, fn)
		}
	case *Tuple:
		for _, el := range n.Elements {
			Walk(el.Value, fn)
		}
	case *LetClause:
		Walk(n.Expression, fn)
	case *ReturnClause:
		Walk(n.Expression, fn)
	case *Literal, *AliasRef, *QueryLetRef, *CodeRef, *CodeSystemRef, *ValueSetRef:
		// leaves
	}
}

// Count returns the number of nodes of kind k in the tree rooted at e.
func Count(e Expression, k Kind) int {
	n := 0
	Walk(e, func(x Expression) bool {
		if x.Kind() == k {
			n++
		}
		return true
	})
	return n
}
