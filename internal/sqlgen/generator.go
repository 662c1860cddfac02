package sqlgen

import (
	"errors"
	"fmt"

	"github.com/roach88/temporalq/internal/relational"
)

// ErrUnsupportedNode is returned for relational nodes the generator cannot
// render.
var ErrUnsupportedNode = errors.New("unsupported node")

// TableWriter renders table references.
type TableWriter interface {
	WriteTable(w *Writer, t relational.TableExpr) error
}

// DefaultTableWriter renders `table AS alias`.
type DefaultTableWriter struct{}

// WriteTable implements TableWriter.
func (DefaultTableWriter) WriteTable(w *Writer, t relational.TableExpr) error {
	w.Table(t.TableRef())
	return nil
}

// Generator renders selects as parameterized SQL.
type Generator struct {
	Dialect Dialect
	Tables  TableWriter
}

// Factory creates generators. It is the extension slot for replacing the
// table writer.
type Factory interface {
	Create(d Dialect) *Generator
}

// DefaultFactory creates generators with DefaultTableWriter.
type DefaultFactory struct{}

// Create implements Factory.
func (DefaultFactory) Create(d Dialect) *Generator {
	return &Generator{Dialect: d, Tables: DefaultTableWriter{}}
}

// Generate renders sel.
func (g *Generator) Generate(sel *relational.Select) (*Command, error) {
	if sel == nil {
		return nil, fmt.Errorf("cannot generate nil select")
	}
	d := g.Dialect
	if d == nil {
		d = SQLite
	}
	tables := g.Tables
	if tables == nil {
		tables = DefaultTableWriter{}
	}

	r := &renderer{w: newWriter(d), tables: tables}
	if err := r.selectNode(sel); err != nil {
		return nil, err
	}
	return r.w.command(), nil
}

type renderer struct {
	w      *Writer
	tables TableWriter
}

func (r *renderer) selectNode(sel *relational.Select) error {
	w := r.w
	w.WriteString("SELECT ")
	if sel.Limit != nil && w.Dialect().Limit() == LimitTop {
		w.WriteString("TOP (")
		if err := r.scalar(sel.Limit); err != nil {
			return err
		}
		w.WriteString(") ")
	}

	if len(sel.Projection) == 0 {
		w.WriteString("*")
	}
	for i, c := range sel.Projection {
		if i > 0 {
			w.WriteString(", ")
		}
		r.column(c)
		if c.As != "" {
			w.WriteString(" AS " + w.Quote(c.As))
		}
	}

	if sel.From != nil {
		w.WriteString(" FROM ")
		if err := r.source(sel.From); err != nil {
			return err
		}
	}

	if sel.Where != nil {
		w.WriteString(" WHERE ")
		if err := r.scalar(sel.Where); err != nil {
			return fmt.Errorf("where: %w", err)
		}
	}

	for i, o := range sel.OrderBy {
		if i == 0 {
			w.WriteString(" ORDER BY ")
		} else {
			w.WriteString(", ")
		}
		r.column(o.Column)
		if o.Descending {
			w.WriteString(" DESC")
		} else {
			w.WriteString(" ASC")
		}
	}

	if sel.Limit != nil && w.Dialect().Limit() == LimitClause {
		w.WriteString(" LIMIT ")
		if err := r.scalar(sel.Limit); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) source(s relational.Source) error {
	w := r.w
	switch n := s.(type) {
	case *relational.Join:
		if err := r.source(n.Left); err != nil {
			return err
		}
		w.WriteString(" " + n.Kind.String() + " ")
		if err := r.source(n.Right); err != nil {
			return err
		}
		w.WriteString(" ON ")
		return r.scalar(n.On)
	case *relational.Subquery:
		w.WriteString("(")
		if err := r.selectNode(n.Select); err != nil {
			return err
		}
		w.WriteString(") AS " + w.Quote(n.Alias))
		return nil
	case *relational.SetOperation:
		w.WriteString("(")
		if err := r.selectNode(n.Left); err != nil {
			return err
		}
		w.WriteString(" " + n.Kind.String() + " ")
		if err := r.selectNode(n.Right); err != nil {
			return err
		}
		w.WriteString(") AS " + w.Quote(n.Alias))
		return nil
	case relational.TableExpr:
		return r.tables.WriteTable(w, n)
	default:
		return fmt.Errorf("%w: source %T", ErrUnsupportedNode, s)
	}
}

func (r *renderer) column(c *relational.Column) {
	if c.Table != "" {
		r.w.WriteString(r.w.Quote(c.Table) + ".")
	}
	r.w.WriteString(r.w.Quote(c.Name))
}

func (r *renderer) scalar(s relational.Scalar) error {
	w := r.w
	switch n := s.(type) {
	case *relational.Column:
		r.column(n)
	case *relational.Param:
		w.Param(n.Name)
	case *relational.Literal:
		w.Const(n.Value)
	case *relational.IsNull:
		if err := r.scalar(n.Operand); err != nil {
			return err
		}
		if n.Negated {
			w.WriteString(" IS NOT NULL")
		} else {
			w.WriteString(" IS NULL")
		}
	case *relational.Exists:
		if n.Select == nil {
			return fmt.Errorf("%w: EXISTS without select", ErrUnsupportedNode)
		}
		w.WriteString("EXISTS (")
		if err := r.selectNode(n.Select); err != nil {
			return err
		}
		w.WriteString(")")
	case *relational.Binary:
		if err := r.operand(n.Op, n.Left); err != nil {
			return err
		}
		w.WriteString(" " + n.Op.String() + " ")
		return r.operand(n.Op, n.Right)
	default:
		return fmt.Errorf("%w: scalar %T", ErrUnsupportedNode, s)
	}
	return nil
}

// operand renders a binary operand, parenthesizing nested connectives that
// differ from the parent operator.
func (r *renderer) operand(parent relational.BinaryOp, s relational.Scalar) error {
	b, ok := s.(*relational.Binary)
	if !ok || b.Op.IsComparison() || b.Op == parent {
		return r.scalar(s)
	}
	r.w.WriteString("(")
	if err := r.scalar(s); err != nil {
		return err
	}
	r.w.WriteString(")")
	return nil
}
