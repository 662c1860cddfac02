package expr

import "github.com/roach88/temporalq/internal/ir"

// Query wraps an Expr with fluent builder methods. Every method returns a
// new Query; the receiver is never modified.
type Query struct {
	Expr Expr
}

// From starts a query over an entity.
func From(entity string) Query {
	return Query{Expr: &Source{Entity: entity}}
}

// Wrap turns an arbitrary expression into a Query.
func Wrap(e Expr) Query {
	return Query{Expr: e}
}

// P builds a late-bound parameter reference.
func P(name string) *Param {
	return &Param{Name: name}
}

// C builds a literal.
func C(v ir.IRValue) *Const {
	return &Const{Value: v}
}

// F builds a field reference on the primary entity.
func F(name string) *Field {
	return &Field{Name: name}
}

// EF builds a field reference qualified by entity.
func EF(entity, name string) *Field {
	return &Field{Entity: entity, Name: name}
}

// Eq builds left == right.
func Eq(left, right Expr) *Binary { return &Binary{Op: OpEq, Left: left, Right: right} }

// Ne builds left != right.
func Ne(left, right Expr) *Binary { return &Binary{Op: OpNe, Left: left, Right: right} }

// Lt builds left < right.
func Lt(left, right Expr) *Binary { return &Binary{Op: OpLt, Left: left, Right: right} }

// Le builds left <= right.
func Le(left, right Expr) *Binary { return &Binary{Op: OpLe, Left: left, Right: right} }

// Gt builds left > right.
func Gt(left, right Expr) *Binary { return &Binary{Op: OpGt, Left: left, Right: right} }

// Ge builds left >= right.
func Ge(left, right Expr) *Binary { return &Binary{Op: OpGe, Left: left, Right: right} }

// And builds left && right.
func And(left, right Expr) *Binary { return &Binary{Op: OpAnd, Left: left, Right: right} }

// Or builds left || right.
func Or(left, right Expr) *Binary { return &Binary{Op: OpOr, Left: left, Right: right} }

// NewCall builds a method call node.
func NewCall(m Method, args ...Expr) *Call {
	return &Call{Method: m, Args: args}
}

func (q Query) call(m Method, args ...Expr) Query {
	all := make([]Expr, 0, len(args)+1)
	all = append(all, q.Expr)
	all = append(all, args...)
	return Query{Expr: NewCall(m, all...)}
}

// Where filters rows by predicate.
func (q Query) Where(predicate Expr) Query { return q.call(MethodWhere, predicate) }

// Select projects the given fields.
func (q Query) Select(fields ...*Field) Query {
	args := make([]Expr, len(fields))
	for i, f := range fields {
		args[i] = f
	}
	return q.call(MethodSelect, args...)
}

// OrderBy sorts ascending by field.
func (q Query) OrderBy(field *Field) Query { return q.call(MethodOrderBy, field) }

// OrderByDescending sorts descending by field.
func (q Query) OrderByDescending(field *Field) Query {
	return q.call(MethodOrderByDescending, field)
}

// Take limits the number of rows. n is a Const or Param.
func (q Query) Take(n Expr) Query { return q.call(MethodTake, n) }

// Join inner-joins q with inner on outerKey == innerKey.
func (q Query) Join(inner Query, outerKey, innerKey *Field) Query {
	return q.call(MethodJoin, inner.Expr, outerKey, innerKey)
}

// Union combines distinct rows of q and other.
func (q Query) Union(other Query) Query { return q.call(MethodUnion, other.Expr) }

// Concat combines all rows of q and other.
func (q Query) Concat(other Query) Query { return q.call(MethodConcat, other.Expr) }

// Intersect keeps rows present in both q and other.
func (q Query) Intersect(other Query) Query { return q.call(MethodIntersect, other.Expr) }

// Except keeps rows of q absent from other.
func (q Query) Except(other Query) Query { return q.call(MethodExcept, other.Expr) }

// Include eagerly loads the named navigation.
func (q Query) Include(navigation string) Query {
	return q.call(MethodInclude, C(ir.IRString(navigation)))
}

// AsOf annotates q with a point-in-time value. value should be a Param so
// the compiled query stays reusable across executions.
func (q Query) AsOf(value Expr) Query { return q.call(MethodAsOf, value) }

// Any builds a predicate that is true when q has at least one row matching
// predicate. predicate may be nil.
func Any(q Query, predicate Expr) *Call {
	if predicate == nil {
		return NewCall(MethodAny, q.Expr)
	}
	return NewCall(MethodAny, q.Expr, predicate)
}
