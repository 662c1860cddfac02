package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/temporalq/internal/expr"
	"github.com/roach88/temporalq/internal/ir"
)

// QuerySpec is the YAML form of a query pipeline: a root entity followed
// by operator steps applied in order.
type QuerySpec struct {
	From  string     `yaml:"from"`
	Steps []StepSpec `yaml:"steps,omitempty"`
}

// StepSpec is one operator. Exactly one field must be set.
type StepSpec struct {
	Where       *PredicateSpec `yaml:"where,omitempty"`
	Select      []string       `yaml:"select,omitempty"`
	OrderBy     string         `yaml:"order_by,omitempty"`
	OrderByDesc string         `yaml:"order_by_desc,omitempty"`
	Take        *OperandSpec   `yaml:"take,omitempty"`
	Join        *JoinSpec      `yaml:"join,omitempty"`
	Union       *QuerySpec     `yaml:"union,omitempty"`
	Concat      *QuerySpec     `yaml:"concat,omitempty"`
	Intersect   *QuerySpec     `yaml:"intersect,omitempty"`
	Except      *QuerySpec     `yaml:"except,omitempty"`
	Include     string         `yaml:"include,omitempty"`
	AsOf        *OperandSpec   `yaml:"as_of,omitempty"`
}

// JoinSpec inner-joins another query on Outer == Inner.
type JoinSpec struct {
	Query QuerySpec `yaml:"query"`
	Outer string    `yaml:"outer"`
	Inner string    `yaml:"inner"`
}

// OperandSpec is a field reference, a parameter or a literal. A spec with
// neither field nor param is the literal Value (NULL when absent).
type OperandSpec struct {
	Field string `yaml:"field,omitempty"`
	Param string `yaml:"param,omitempty"`
	Value any    `yaml:"value,omitempty"`
}

// PredicateSpec is a comparison, a connective or an Any subquery.
// Exactly one field must be set.
type PredicateSpec struct {
	Eq  []OperandSpec   `yaml:"eq,omitempty"`
	Ne  []OperandSpec   `yaml:"ne,omitempty"`
	Lt  []OperandSpec   `yaml:"lt,omitempty"`
	Le  []OperandSpec   `yaml:"le,omitempty"`
	Gt  []OperandSpec   `yaml:"gt,omitempty"`
	Ge  []OperandSpec   `yaml:"ge,omitempty"`
	And []PredicateSpec `yaml:"and,omitempty"`
	Or  []PredicateSpec `yaml:"or,omitempty"`
	Any *AnySpec        `yaml:"any,omitempty"`
}

// AnySpec tests a correlated subquery for a matching row.
type AnySpec struct {
	Query QuerySpec      `yaml:"query"`
	Where *PredicateSpec `yaml:"where,omitempty"`
}

// Build converts the query description into an expression tree.
func (q QuerySpec) Build() (expr.Query, error) {
	if q.From == "" {
		return expr.Query{}, fmt.Errorf("from is required")
	}
	out := expr.From(q.From)
	for i, step := range q.Steps {
		next, err := step.apply(out)
		if err != nil {
			return expr.Query{}, fmt.Errorf("steps[%d]: %w", i, err)
		}
		out = next
	}
	return out, nil
}

func (s StepSpec) apply(q expr.Query) (expr.Query, error) {
	if n := s.count(); n != 1 {
		return q, fmt.Errorf("exactly one operator per step, got %d", n)
	}

	switch {
	case s.Where != nil:
		p, err := s.Where.Build()
		if err != nil {
			return q, fmt.Errorf("where: %w", err)
		}
		return q.Where(p), nil
	case len(s.Select) > 0:
		fields := make([]*expr.Field, len(s.Select))
		for i, name := range s.Select {
			fields[i] = parseField(name)
		}
		return q.Select(fields...), nil
	case s.OrderBy != "":
		return q.OrderBy(parseField(s.OrderBy)), nil
	case s.OrderByDesc != "":
		return q.OrderByDescending(parseField(s.OrderByDesc)), nil
	case s.Take != nil:
		n, err := s.Take.Build()
		if err != nil {
			return q, fmt.Errorf("take: %w", err)
		}
		return q.Take(n), nil
	case s.Join != nil:
		inner, err := s.Join.Query.Build()
		if err != nil {
			return q, fmt.Errorf("join: %w", err)
		}
		if s.Join.Outer == "" || s.Join.Inner == "" {
			return q, fmt.Errorf("join: outer and inner keys are required")
		}
		return q.Join(inner, parseField(s.Join.Outer), parseField(s.Join.Inner)), nil
	case s.Include != "":
		return q.Include(s.Include), nil
	case s.AsOf != nil:
		v, err := s.AsOf.Build()
		if err != nil {
			return q, fmt.Errorf("as_of: %w", err)
		}
		return q.AsOf(v), nil
	}

	for _, op := range []struct {
		other *QuerySpec
		apply func(expr.Query, expr.Query) expr.Query
		name  string
	}{
		{s.Union, expr.Query.Union, "union"},
		{s.Concat, expr.Query.Concat, "concat"},
		{s.Intersect, expr.Query.Intersect, "intersect"},
		{s.Except, expr.Query.Except, "except"},
	} {
		if op.other == nil {
			continue
		}
		other, err := op.other.Build()
		if err != nil {
			return q, fmt.Errorf("%s: %w", op.name, err)
		}
		return op.apply(q, other), nil
	}
	return q, fmt.Errorf("empty step")
}

func (s StepSpec) count() int {
	n := 0
	for _, set := range []bool{
		s.Where != nil, len(s.Select) > 0, s.OrderBy != "", s.OrderByDesc != "",
		s.Take != nil, s.Join != nil, s.Union != nil, s.Concat != nil,
		s.Intersect != nil, s.Except != nil, s.Include != "", s.AsOf != nil,
	} {
		if set {
			n++
		}
	}
	return n
}

// Build converts the operand into an expression.
func (o OperandSpec) Build() (expr.Expr, error) {
	switch {
	case o.Field != "" && o.Param != "":
		return nil, fmt.Errorf("operand has both field and param")
	case o.Field != "":
		return parseField(o.Field), nil
	case o.Param != "":
		return expr.P(o.Param), nil
	}
	v, err := ir.FromAny(o.Value)
	if err != nil {
		return nil, fmt.Errorf("value: %w", err)
	}
	return expr.C(v), nil
}

// Build converts the predicate into an expression.
func (p PredicateSpec) Build() (expr.Expr, error) {
	type comparison struct {
		operands []OperandSpec
		build    func(l, r expr.Expr) *expr.Binary
		name     string
	}
	var set []string
	var out expr.Expr
	var err error

	for _, c := range []comparison{
		{p.Eq, expr.Eq, "eq"},
		{p.Ne, expr.Ne, "ne"},
		{p.Lt, expr.Lt, "lt"},
		{p.Le, expr.Le, "le"},
		{p.Gt, expr.Gt, "gt"},
		{p.Ge, expr.Ge, "ge"},
	} {
		if c.operands == nil {
			continue
		}
		set = append(set, c.name)
		out, err = buildComparison(c.name, c.operands, c.build)
	}
	if p.And != nil {
		set = append(set, "and")
		out, err = buildConnective("and", p.And, func(l, r expr.Expr) expr.Expr { return expr.And(l, r) })
	}
	if p.Or != nil {
		set = append(set, "or")
		out, err = buildConnective("or", p.Or, func(l, r expr.Expr) expr.Expr { return expr.Or(l, r) })
	}
	if p.Any != nil {
		set = append(set, "any")
		out, err = p.Any.build()
	}

	if len(set) != 1 {
		return nil, fmt.Errorf("exactly one operator per predicate, got [%s]", strings.Join(set, ", "))
	}
	return out, err
}

func buildComparison(name string, operands []OperandSpec, build func(l, r expr.Expr) *expr.Binary) (expr.Expr, error) {
	if len(operands) != 2 {
		return nil, fmt.Errorf("%s: expected 2 operands, got %d", name, len(operands))
	}
	l, err := operands[0].Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	r, err := operands[1].Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return build(l, r), nil
}

func buildConnective(name string, preds []PredicateSpec, join func(l, r expr.Expr) expr.Expr) (expr.Expr, error) {
	if len(preds) < 2 {
		return nil, fmt.Errorf("%s: expected at least 2 predicates, got %d", name, len(preds))
	}
	var out expr.Expr
	for i, p := range preds {
		e, err := p.Build()
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", name, i, err)
		}
		if out == nil {
			out = e
		} else {
			out = join(out, e)
		}
	}
	return out, nil
}

func (a AnySpec) build() (expr.Expr, error) {
	q, err := a.Query.Build()
	if err != nil {
		return nil, fmt.Errorf("any: %w", err)
	}
	if a.Where == nil {
		return expr.Any(q, nil), nil
	}
	p, err := a.Where.Build()
	if err != nil {
		return nil, fmt.Errorf("any: where: %w", err)
	}
	return expr.Any(q, p), nil
}

// parseField reads "Name" or "Entity.Name".
func parseField(s string) *expr.Field {
	if entity, name, ok := strings.Cut(s, "."); ok {
		return expr.EF(entity, name)
	}
	return expr.F(s)
}
