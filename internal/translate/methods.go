package translate

import (
	"github.com/roach88/temporalq/internal/expr"
	"github.com/roach88/temporalq/internal/ir"
	"github.com/roach88/temporalq/internal/relational"
)

// query translates e with v and requires a shaped query.
func (t *Translator) query(v Visitor, e expr.Expr, call *expr.Call) (*relational.ShapedQuery, error) {
	n, err := Visit(v, e)
	if err != nil {
		return nil, err
	}
	sq, ok := n.(*relational.ShapedQuery)
	if !ok {
		return nil, errorf(CodeBadArgument, call.MethodName(), "expected a query source, got %T", n)
	}
	return sq, nil
}

// wrap turns sq into a derived table so that later stages apply to its
// result rows. Ordering without a limit does not survive a derived table.
func (t *Translator) wrap(sq *relational.ShapedQuery) *relational.ShapedQuery {
	alias := t.aliases.Next("s")
	inner := sq.Select
	if inner.Limit == nil {
		inner.OrderBy = nil
	}

	projection := make([]*relational.Column, len(inner.Projection))
	names := make([]string, len(inner.Projection))
	for i, c := range inner.Projection {
		names[i] = c.OutputName()
		projection[i] = &relational.Column{Table: alias, Name: names[i]}
	}

	return &relational.ShapedQuery{
		Select: &relational.Select{
			From:       &relational.Subquery{Select: inner, Alias: alias},
			Projection: projection,
		},
		Shape: relational.Shape{
			Entity:   sq.Shape.Entity,
			Includes: sq.Shape.Includes,
			Sources:  []relational.Binding{{Entity: sq.Shape.Entity, Alias: alias, Columns: names}},
		},
	}
}

func (t *Translator) translateWhere(self Visitor, call *expr.Call) (relational.Node, error) {
	sq, err := t.query(self, call.Args[0], call)
	if err != nil {
		return nil, err
	}
	if sq.Select.Limit != nil {
		sq = t.wrap(sq)
	}

	cond, err := t.predicate(self, call.Args[1], newScope(sq.Shape.Sources, nil))
	if err != nil {
		return nil, err
	}
	sq.Select.Where = relational.And(sq.Select.Where, cond)
	return sq, nil
}

func (t *Translator) translateSelect(self Visitor, call *expr.Call) (relational.Node, error) {
	sq, err := t.query(self, call.Args[0], call)
	if err != nil {
		return nil, err
	}

	sc := newScope(sq.Shape.Sources, nil)
	projection := make([]*relational.Column, 0, len(call.Args)-1)
	for _, arg := range call.Args[1:] {
		f, ok := arg.(*expr.Field)
		if !ok {
			return nil, errorf(CodeBadArgument, call.MethodName(), "projection must be a field, got %T", arg)
		}
		col, err := sc.resolve(t.deps.Model, f)
		if err != nil {
			return nil, err
		}
		if f.Entity != "" && f.Entity != sq.Shape.Entity {
			col.As = f.Entity + "." + f.Name
		}
		projection = append(projection, col)
	}

	sq.Select.Projection = projection
	sq.Shape.Includes = nil
	return sq, nil
}

func (t *Translator) translateOrderBy(self Visitor, call *expr.Call) (relational.Node, error) {
	sq, err := t.query(self, call.Args[0], call)
	if err != nil {
		return nil, err
	}
	if sq.Select.Limit != nil {
		sq = t.wrap(sq)
	}

	f, ok := call.Args[1].(*expr.Field)
	if !ok {
		return nil, errorf(CodeBadArgument, call.MethodName(), "ordering key must be a field, got %T", call.Args[1])
	}
	col, err := newScope(sq.Shape.Sources, nil).resolve(t.deps.Model, f)
	if err != nil {
		return nil, err
	}

	sq.Select.OrderBy = []relational.Ordering{{
		Column:     col,
		Descending: call.Method == expr.MethodOrderByDescending,
	}}
	return sq, nil
}

func (t *Translator) translateTake(self Visitor, call *expr.Call) (relational.Node, error) {
	sq, err := t.query(self, call.Args[0], call)
	if err != nil {
		return nil, err
	}

	var limit relational.Scalar
	switch n := call.Args[1].(type) {
	case *expr.Param:
		limit = &relational.Param{Name: n.Name}
	case *expr.Const:
		count, ok := n.Value.(ir.IRInt)
		if !ok || count < 0 {
			return nil, errorf(CodeBadArgument, call.MethodName(), "count must be a non-negative integer, got %s", ir.String(n.Value))
		}
		limit = &relational.Literal{Value: count}
	default:
		return nil, errorf(CodeBadArgument, call.MethodName(), "count must be a constant or parameter, got %T", call.Args[1])
	}

	if sq.Select.Limit != nil {
		sq = t.wrap(sq)
	}
	sq.Select.Limit = limit
	return sq, nil
}

// joinSource returns sq as an item of a FROM clause together with the
// bindings that expose its columns. A bare table read is used directly;
// anything else becomes a derived table.
func (t *Translator) joinSource(sq *relational.ShapedQuery) (relational.Source, []relational.Binding, []*relational.Column) {
	sel := sq.Select
	if _, bare := sel.From.(relational.TableExpr); bare && sel.Where == nil && sel.IsSimple() {
		return sel.From, sq.Shape.Sources, sel.Projection
	}

	wrapped := t.wrap(sq)
	return wrapped.Select.From, wrapped.Shape.Sources, wrapped.Select.Projection
}

// translateJoin inner-joins two sources. The inner source is translated by
// a child visitor spawned before the outer source is visited, so state the
// outer source acquires does not reach the inner one.
func (t *Translator) translateJoin(self Visitor, call *expr.Call) (relational.Node, error) {
	child := self.Subquery()

	outer, err := t.query(self, call.Args[0], call)
	if err != nil {
		return nil, err
	}
	if outer.Select.Limit != nil {
		outer = t.wrap(outer)
	}

	inner, err := t.query(child, call.Args[1], call)
	if err != nil {
		return nil, err
	}
	innerEntity := inner.Shape.Entity
	innerSource, innerBindings, innerColumns := t.joinSource(inner)

	outerKey, ok := call.Args[2].(*expr.Field)
	if !ok {
		return nil, errorf(CodeBadArgument, call.MethodName(), "outer key must be a field, got %T", call.Args[2])
	}
	innerKey, ok := call.Args[3].(*expr.Field)
	if !ok {
		return nil, errorf(CodeBadArgument, call.MethodName(), "inner key must be a field, got %T", call.Args[3])
	}
	left, err := newScope(outer.Shape.Sources, nil).resolve(t.deps.Model, outerKey)
	if err != nil {
		return nil, err
	}
	right, err := newScope(innerBindings, nil).resolve(t.deps.Model, innerKey)
	if err != nil {
		return nil, err
	}

	sel := outer.Select
	sel.From = &relational.Join{
		Kind:  relational.InnerJoin,
		Left:  sel.From,
		Right: innerSource,
		On:    &relational.Binary{Op: relational.OpEq, Left: left, Right: right},
	}
	for _, c := range innerColumns {
		sel.Projection = append(sel.Projection, &relational.Column{
			Table: c.Table,
			Name:  c.Name,
			As:    innerEntity + "." + c.OutputName(),
		})
	}
	for _, b := range innerBindings {
		if b.Prefix == "" {
			b.Prefix = innerEntity
		}
		outer.Shape.Sources = append(outer.Shape.Sources, b)
	}
	return outer, nil
}

var setKinds = map[expr.Method]relational.SetKind{
	expr.MethodUnion:     relational.Union,
	expr.MethodConcat:    relational.UnionAll,
	expr.MethodIntersect: relational.Intersect,
	expr.MethodExcept:    relational.Except,
}

// translateSetOperation combines two sources row-wise. The right operand is
// translated by a child visitor spawned before the left operand is visited.
func (t *Translator) translateSetOperation(self Visitor, call *expr.Call) (relational.Node, error) {
	child := self.Subquery()

	left, err := t.query(self, call.Args[0], call)
	if err != nil {
		return nil, err
	}
	right, err := t.query(child, call.Args[1], call)
	if err != nil {
		return nil, err
	}

	if len(left.Select.Projection) != len(right.Select.Projection) {
		return nil, errorf(CodeBadArgument, call.MethodName(),
			"operands project %d and %d columns", len(left.Select.Projection), len(right.Select.Projection))
	}
	if !left.Select.IsSimple() {
		left = t.wrap(left)
	}
	if !right.Select.IsSimple() {
		right = t.wrap(right)
	}

	alias := t.aliases.Next("s")
	projection := make([]*relational.Column, len(left.Select.Projection))
	names := make([]string, len(left.Select.Projection))
	for i, c := range left.Select.Projection {
		names[i] = c.OutputName()
		projection[i] = &relational.Column{Table: alias, Name: names[i]}
	}

	return &relational.ShapedQuery{
		Select: &relational.Select{
			From: &relational.SetOperation{
				Kind:  setKinds[call.Method],
				Left:  left.Select,
				Right: right.Select,
				Alias: alias,
			},
			Projection: projection,
		},
		Shape: relational.Shape{
			Entity:   left.Shape.Entity,
			Includes: left.Shape.Includes,
			Sources:  []relational.Binding{{Entity: left.Shape.Entity, Alias: alias, Columns: names}},
		},
	}, nil
}

// translateInclude left-joins a navigation target. The target root is
// visited through self so overrides apply to it like to any other root.
func (t *Translator) translateInclude(self Visitor, call *expr.Call) (relational.Node, error) {
	sq, err := t.query(self, call.Args[0], call)
	if err != nil {
		return nil, err
	}
	if sq.Select.Limit != nil {
		sq = t.wrap(sq)
	}

	c, ok := call.Args[1].(*expr.Const)
	if !ok {
		return nil, errorf(CodeBadArgument, call.MethodName(), "navigation must be a constant name, got %T", call.Args[1])
	}
	name, ok := c.Value.(ir.IRString)
	if !ok {
		return nil, errorf(CodeBadArgument, call.MethodName(), "navigation must be a string, got %s", ir.String(c.Value))
	}

	entity, ok := t.deps.Model.Entity(sq.Shape.Entity)
	if !ok {
		return nil, errorf(CodeUnknownEntity, call.MethodName(), "unknown entity %q", sq.Shape.Entity)
	}
	nav, err := entity.Navigation(string(name))
	if err != nil {
		return nil, errorf(CodeBadArgument, call.MethodName(), "%v", err)
	}
	target, ok := t.deps.Model.Entity(nav.Target)
	if !ok {
		return nil, errorf(CodeUnknownEntity, call.MethodName(), "unknown navigation target %q", nav.Target)
	}

	included, err := t.query(self, &expr.Source{Entity: target.Name}, call)
	if err != nil {
		return nil, err
	}
	includedSource, includedBindings, includedColumns := t.joinSource(included)
	binding := includedBindings[0]

	// Reference: declaring FK -> target key. Collection: target FK -> declaring key.
	var left, right *relational.Column
	primary := newScope(sq.Shape.Sources, nil)
	if nav.Collection {
		left, err = primary.resolve(t.deps.Model, &expr.Field{Name: entity.Key})
		if err == nil {
			right, err = column(t.deps.Model, binding, nav.ForeignKey)
		}
	} else {
		left, err = primary.resolve(t.deps.Model, &expr.Field{Name: nav.ForeignKey})
		if err == nil {
			right, err = column(t.deps.Model, binding, target.Key)
		}
	}
	if err != nil {
		return nil, err
	}

	sel := sq.Select
	sel.From = &relational.Join{
		Kind:  relational.LeftJoin,
		Left:  sel.From,
		Right: includedSource,
		On:    &relational.Binary{Op: relational.OpEq, Left: left, Right: right},
	}
	for _, col := range includedColumns {
		sel.Projection = append(sel.Projection, &relational.Column{
			Table: col.Table,
			Name:  col.Name,
			As:    nav.Name + "." + col.OutputName(),
		})
	}
	binding.Prefix = nav.Name
	sq.Shape.Sources = append(sq.Shape.Sources, binding)
	sq.Shape.Includes = append(sq.Shape.Includes, nav.Name)
	return sq, nil
}
