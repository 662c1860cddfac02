package translate

import (
	"slices"

	"github.com/roach88/temporalq/internal/expr"
	"github.com/roach88/temporalq/internal/model"
	"github.com/roach88/temporalq/internal/relational"
)

// scope is the set of bindings visible to field references. Predicates of
// Any see their own source first, then the enclosing query.
type scope struct {
	bindings []relational.Binding
	parent   *scope
}

func newScope(bindings []relational.Binding, parent *scope) *scope {
	return &scope{bindings: bindings, parent: parent}
}

// resolve maps a field reference to a column. An empty entity name means
// the primary binding of the innermost scope.
func (s *scope) resolve(m *model.Model, f *expr.Field) (*relational.Column, error) {
	if f.Entity == "" {
		if len(s.bindings) == 0 {
			return nil, errorf(CodeUnknownField, "", "field %q has no source in scope", f.Name)
		}
		return column(m, s.bindings[0], f.Name)
	}

	for sc := s; sc != nil; sc = sc.parent {
		for _, b := range sc.bindings {
			if b.Entity == f.Entity || (b.Prefix != "" && b.Prefix == f.Entity) {
				return column(m, b, f.Name)
			}
		}
	}
	return nil, errorf(CodeUnknownField, "", "entity %q is not in scope", f.Entity)
}

func column(m *model.Model, b relational.Binding, name string) (*relational.Column, error) {
	if b.Columns != nil {
		if !slices.Contains(b.Columns, name) {
			return nil, errorf(CodeUnknownField, "", "%s has no column %q", b.Entity, name)
		}
		return &relational.Column{Table: b.Alias, Name: name}, nil
	}

	entity, ok := m.Entity(b.Entity)
	if !ok {
		return nil, errorf(CodeUnknownEntity, "", "unknown entity %q", b.Entity)
	}
	if !entity.HasColumn(name) {
		return nil, errorf(CodeUnknownField, "", "%s has no column %q", b.Entity, name)
	}
	return &relational.Column{Table: b.Alias, Name: name}, nil
}

var binaryOps = map[expr.BinaryOp]relational.BinaryOp{
	expr.OpEq:  relational.OpEq,
	expr.OpNe:  relational.OpNe,
	expr.OpLt:  relational.OpLt,
	expr.OpLe:  relational.OpLe,
	expr.OpGt:  relational.OpGt,
	expr.OpGe:  relational.OpGe,
	expr.OpAnd: relational.OpAnd,
	expr.OpOr:  relational.OpOr,
}

// predicate translates a scalar expression. Any calls spawn child visitors
// from self.
func (t *Translator) predicate(self Visitor, e expr.Expr, sc *scope) (relational.Scalar, error) {
	switch n := e.(type) {
	case *expr.Field:
		return sc.resolve(t.deps.Model, n)
	case *expr.Param:
		return &relational.Param{Name: n.Name}, nil
	case *expr.Const:
		return &relational.Literal{Value: n.Value}, nil
	case *expr.Binary:
		op, ok := binaryOps[n.Op]
		if !ok {
			return nil, errorf(CodeBadArgument, "", "unknown operator %v", n.Op)
		}
		left, err := t.predicate(self, n.Left, sc)
		if err != nil {
			return nil, err
		}
		right, err := t.predicate(self, n.Right, sc)
		if err != nil {
			return nil, err
		}
		return &relational.Binary{Op: op, Left: left, Right: right}, nil
	case *expr.Call:
		if n.Method != expr.MethodAny {
			return nil, errorf(CodeUnsupportedMethod, n.MethodName(), "cannot be used inside a predicate")
		}
		if err := checkArity(n); err != nil {
			return nil, err
		}
		return t.translateAny(self, n, sc)
	case nil:
		return nil, errorf(CodeBadArgument, "", "nil predicate")
	default:
		return nil, errorf(CodeUnexpectedNode, "", "%T is not valid inside a predicate", e)
	}
}

// translateAny builds an EXISTS subquery. The source is translated by a
// child visitor; the optional predicate sees the child's bindings first and
// the enclosing scope after them.
func (t *Translator) translateAny(self Visitor, call *expr.Call, outer *scope) (relational.Scalar, error) {
	child := self.Subquery()

	sub, err := t.query(child, call.Args[0], call)
	if err != nil {
		return nil, err
	}
	if sub.Select.Limit != nil {
		sub = t.wrap(sub)
	}

	if pred := call.Arg(1); pred != nil {
		cond, err := t.predicate(child, pred, newScope(sub.Shape.Sources, outer))
		if err != nil {
			return nil, err
		}
		sub.Select.Where = relational.And(sub.Select.Where, cond)
	}

	sub.Select.OrderBy = nil
	return &relational.Exists{Select: sub.Select}, nil
}
