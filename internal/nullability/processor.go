package nullability

import (
	"fmt"

	"github.com/roach88/temporalq/internal/ir"
	"github.com/roach88/temporalq/internal/relational"
)

// TableVisitor rebuilds table references during processing.
type TableVisitor interface {
	VisitTable(t relational.TableExpr) relational.TableExpr
}

// DefaultTableVisitor rebuilds every table as a plain *relational.Table.
// Anything a table node carries beyond the embedded Table is lost.
type DefaultTableVisitor struct{}

// VisitTable implements TableVisitor.
func (DefaultTableVisitor) VisitTable(t relational.TableExpr) relational.TableExpr {
	ref := t.TableRef()
	return &relational.Table{
		Name:   ref.Name,
		Schema: ref.Schema,
		Alias:  ref.Alias,
		Entity: ref.Entity,
	}
}

// Processor rewrites null comparisons for a set of parameter values.
type Processor struct {
	UseRelationalNulls bool
	Tables             TableVisitor // nil uses DefaultTableVisitor
}

// Factory creates processors. It is the extension slot for replacing the
// table visitor.
type Factory interface {
	Create(useRelationalNulls bool) *Processor
}

// DefaultFactory creates processors with DefaultTableVisitor.
type DefaultFactory struct{}

// Create implements Factory.
func (DefaultFactory) Create(useRelationalNulls bool) *Processor {
	return &Processor{UseRelationalNulls: useRelationalNulls, Tables: DefaultTableVisitor{}}
}

// Process returns a rewritten copy of sel. canCache is false when the
// result depends on which parameters were null.
func (p *Processor) Process(sel *relational.Select, params map[string]ir.IRValue) (*relational.Select, bool, error) {
	run := &pass{
		tables:             p.Tables,
		params:             params,
		useRelationalNulls: p.UseRelationalNulls,
		canCache:           true,
	}
	if run.tables == nil {
		run.tables = DefaultTableVisitor{}
	}

	out, err := run.selectNode(sel)
	if err != nil {
		return nil, false, err
	}
	return out, run.canCache, nil
}

type pass struct {
	tables             TableVisitor
	params             map[string]ir.IRValue
	useRelationalNulls bool
	canCache           bool
}

func (p *pass) selectNode(sel *relational.Select) (*relational.Select, error) {
	if sel == nil {
		return nil, nil
	}

	from, err := p.source(sel.From)
	if err != nil {
		return nil, err
	}
	where, err := p.scalar(sel.Where)
	if err != nil {
		return nil, err
	}
	if isTrue(where) {
		where = nil
	}
	limit, err := p.scalar(sel.Limit)
	if err != nil {
		return nil, err
	}

	projection := make([]*relational.Column, len(sel.Projection))
	for i, c := range sel.Projection {
		cp := *c
		projection[i] = &cp
	}
	var orderBy []relational.Ordering
	for _, o := range sel.OrderBy {
		col := *o.Column
		orderBy = append(orderBy, relational.Ordering{Column: &col, Descending: o.Descending})
	}

	return &relational.Select{
		From:       from,
		Where:      where,
		Projection: projection,
		OrderBy:    orderBy,
		Limit:      limit,
	}, nil
}

func (p *pass) source(s relational.Source) (relational.Source, error) {
	switch n := s.(type) {
	case nil:
		return nil, nil
	case *relational.Join:
		left, err := p.source(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := p.source(n.Right)
		if err != nil {
			return nil, err
		}
		on, err := p.scalar(n.On)
		if err != nil {
			return nil, err
		}
		return &relational.Join{Kind: n.Kind, Left: left, Right: right, On: on}, nil
	case *relational.Subquery:
		sel, err := p.selectNode(n.Select)
		if err != nil {
			return nil, err
		}
		return &relational.Subquery{Select: sel, Alias: n.Alias}, nil
	case *relational.SetOperation:
		left, err := p.selectNode(n.Left)
		if err != nil {
			return nil, err
		}
		right, err := p.selectNode(n.Right)
		if err != nil {
			return nil, err
		}
		return &relational.SetOperation{Kind: n.Kind, Left: left, Right: right, Alias: n.Alias}, nil
	case relational.TableExpr:
		return p.tables.VisitTable(n), nil
	default:
		return nil, fmt.Errorf("nullability: unsupported source %T", s)
	}
}

func (p *pass) scalar(s relational.Scalar) (relational.Scalar, error) {
	switch n := s.(type) {
	case nil:
		return nil, nil
	case *relational.Column:
		cp := *n
		return &cp, nil
	case *relational.Param:
		return &relational.Param{Name: n.Name}, nil
	case *relational.Literal:
		return &relational.Literal{Value: n.Value}, nil
	case *relational.IsNull:
		operand, err := p.scalar(n.Operand)
		if err != nil {
			return nil, err
		}
		return &relational.IsNull{Operand: operand, Negated: n.Negated}, nil
	case *relational.Exists:
		sel, err := p.selectNode(n.Select)
		if err != nil {
			return nil, err
		}
		return &relational.Exists{Select: sel}, nil
	case *relational.Binary:
		return p.binary(n)
	default:
		return nil, fmt.Errorf("nullability: unsupported scalar %T", s)
	}
}

func (p *pass) binary(n *relational.Binary) (relational.Scalar, error) {
	left, err := p.scalar(n.Left)
	if err != nil {
		return nil, err
	}
	right, err := p.scalar(n.Right)
	if err != nil {
		return nil, err
	}

	switch n.Op {
	case relational.OpEq, relational.OpNe:
		negated := n.Op == relational.OpNe
		if p.isNullValue(right) {
			return &relational.IsNull{Operand: left, Negated: negated}, nil
		}
		if p.isNullValue(left) {
			return &relational.IsNull{Operand: right, Negated: negated}, nil
		}
	case relational.OpAnd:
		if isTrue(left) {
			return right, nil
		}
		if isTrue(right) {
			return left, nil
		}
	}
	return &relational.Binary{Op: n.Op, Left: left, Right: right}, nil
}

// isNullValue reports whether s is a null literal, or a parameter whose
// value for this execution is null. The latter marks the result as not
// cacheable.
func (p *pass) isNullValue(s relational.Scalar) bool {
	switch n := s.(type) {
	case *relational.Literal:
		return ir.IsNull(n.Value)
	case *relational.Param:
		if p.useRelationalNulls {
			return false
		}
		v, ok := p.params[n.Name]
		if ok && ir.IsNull(v) {
			p.canCache = false
			return true
		}
	}
	return false
}

func isTrue(s relational.Scalar) bool {
	lit, ok := s.(*relational.Literal)
	if !ok {
		return false
	}
	b, ok := lit.Value.(ir.IRBool)
	return ok && bool(b)
}
