package modeling

import (
	"fmt"
	"log/slog"

	"github.com/roach88/cqlgen/internal/builder"
	"github.com/roach88/cqlgen/internal/elm"
	"github.com/roach88/cqlgen/internal/types"
)

// Dispatcher resolves template paths to expressions through a recipe table.
type Dispatcher struct {
	b      *builder.Builder
	table  Table
	logger *slog.Logger
}

// NewDispatcher returns a Dispatcher over DefaultTable.
func NewDispatcher(b *builder.Builder) *Dispatcher {
	return NewDispatcherWithTable(b, DefaultTable())
}

// NewDispatcherWithTable returns a Dispatcher over table.
func NewDispatcherWithTable(b *builder.Builder, table Table) *Dispatcher {
	return &Dispatcher{b: b, table: table, logger: b.Logger()}
}

// Table returns the recipe table.
func (d *Dispatcher) Table() Table { return d.table }

// ResolveModeling builds `<key> op right`: the recipe for key produces the
// left operand, which is then resolved against right with op.
//
// Template and path misses fail with *UnknownTemplateError and
// *UnknownPathError before anything is registered. Any later failure rolls
// the library back to its state before the call.
func (d *Dispatcher) ResolveModeling(key TemplatePath, right elm.Expression, op string) (expr elm.Expression, err error) {
	recipe, err := d.table.Lookup(key)
	if err != nil {
		return nil, err
	}
	if !builder.IsOperator(op) {
		return nil, &builder.UnknownOperatorError{Operator: op}
	}

	lib := d.b.Library()
	cp := lib.Mark()
	defer func() {
		if err != nil {
			lib.Rollback(cp)
		}
	}()

	left, err := d.Left(recipe)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	expr, err = d.b.ResolveOperator(op, left, right)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}

	d.logger.Debug("resolved modeling path",
		"template", key.Template,
		"path", key.Path,
		"operator", op,
		"kind", expr.Kind().String(),
	)
	return expr, nil
}

// Left builds the left-hand expression a recipe describes.
func (d *Dispatcher) Left(r Recipe) (elm.Expression, error) {
	left, err := d.source(r)
	if err != nil {
		return nil, err
	}
	if r.Path != "" {
		p, err := d.b.Property(left, r.Path)
		if err != nil {
			return nil, err
		}
		left = p
	}
	if r.Join == nil {
		return left, nil
	}

	joined, err := d.join(r)
	if err != nil {
		return nil, err
	}
	u, err := d.b.ResolveUnion(left, joined)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// source retrieves the recipe's resource with its fixed filters applied.
func (d *Dispatcher) source(r Recipe) (elm.Expression, error) {
	var codes elm.Expression
	var codePath string
	if r.Codes != nil {
		ref, err := d.code(r.Codes)
		if err != nil {
			return nil, err
		}
		codes, codePath = ref, r.Codes.Path
	}

	retrieve, err := d.b.BuildRetrieve(r.Resource, codes, "", codePath)
	if err != nil {
		return nil, err
	}

	var src elm.Expression = retrieve
	if r.Where != nil {
		if src, err = d.filter(retrieve, r.Where); err != nil {
			return nil, err
		}
	}
	if r.Singleton {
		single, err := d.b.SingletonFrom(src)
		if err != nil {
			return nil, err
		}
		src = single
	}
	return src, nil
}

func (d *Dispatcher) code(f *TermFilter) (*elm.CodeRef, error) {
	lib := d.b.Library()
	system := lib.ResolveCodeSystem(f.SystemURL, f.SystemName)
	return lib.ResolveCode(f.Code, f.Name, f.Display, system)
}

// filter keeps the rows of source whose f.Path is equivalent to f's code.
func (d *Dispatcher) filter(source elm.Expression, f *TermFilter) (elm.Expression, error) {
	code, err := d.code(f)
	if err != nil {
		return nil, err
	}
	elem, _ := types.ElementType(source.ResultType())
	src := elm.Source(d.b.FreshAlias(elem), source)

	q, err := d.b.Query([]*elm.AliasedSource{src}, func(*builder.QueryContext) ([]elm.Clause, error) {
		prop, err := d.b.Property(src.Ref(), f.Path)
		if err != nil {
			return nil, err
		}
		cond, err := d.b.ResolveOperator(builder.OpEquivalent, prop, code)
		if err != nil {
			return nil, err
		}
		return []elm.Clause{&elm.Where{Condition: cond}}, nil
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}

// join builds the dereferencing strategy of r:
//
//	Query(A: [Resource], B: [Join.Resource]
//	  where EndsWith(A.<Join.Reference>, B.<Join.Key>) return B.<Join.Path>)
func (d *Dispatcher) join(r Recipe) (elm.Expression, error) {
	from, err := d.b.BuildRetrieve(r.Resource, nil, "", "")
	if err != nil {
		return nil, err
	}
	to, err := d.b.BuildRetrieve(r.Join.Resource, nil, "", "")
	if err != nil {
		return nil, err
	}
	aliases := d.b.FreshAliases(from.DataType, to.DataType)
	fromSrc := elm.Source(aliases[0], from)
	toSrc := elm.Source(aliases[1], to)

	q, err := d.b.Query([]*elm.AliasedSource{fromSrc, toSrc}, func(*builder.QueryContext) ([]elm.Clause, error) {
		ref, err := d.b.Property(fromSrc.Ref(), r.Join.Reference)
		if err != nil {
			return nil, err
		}
		key, err := d.b.Property(toSrc.Ref(), r.Join.Key)
		if err != nil {
			return nil, err
		}
		proj, err := d.b.Property(toSrc.Ref(), r.Join.Path)
		if err != nil {
			return nil, err
		}
		return []elm.Clause{
			&elm.Where{Condition: &elm.BinaryOp{Op: elm.OpEndsWith, Left: ref, Right: key, Type: types.Boolean}},
			&elm.ReturnClause{Expression: proj},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return q, nil
}
