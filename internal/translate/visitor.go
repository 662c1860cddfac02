package translate

import (
	"github.com/roach88/temporalq/internal/expr"
	"github.com/roach88/temporalq/internal/relational"
)

// Visitor is the override surface of the translator.
type Visitor interface {
	// VisitSource translates a query root.
	VisitSource(src *expr.Source) (relational.Node, error)

	// VisitCall translates a method call.
	VisitCall(call *expr.Call) (relational.Node, error)

	// Subquery returns the visitor used for an independent sub-traversal.
	Subquery() Visitor
}

// Factory creates the top-level visitor of one compilation.
type Factory interface {
	Create(deps Dependencies) Visitor
}

// DefaultFactory creates plain Translators.
type DefaultFactory struct{}

// Create implements Factory.
func (DefaultFactory) Create(deps Dependencies) Visitor {
	return New(deps)
}

// Visit dispatches e to v. Parameters and constants translate to scalars;
// query roots and calls go through v.
func Visit(v Visitor, e expr.Expr) (relational.Node, error) {
	switch n := e.(type) {
	case nil:
		return nil, errorf(CodeUnexpectedNode, "", "nil expression")
	case *expr.Source:
		return v.VisitSource(n)
	case *expr.Call:
		return v.VisitCall(n)
	case *expr.Param:
		return &relational.Param{Name: n.Name}, nil
	case *expr.Const:
		return &relational.Literal{Value: n.Value}, nil
	default:
		return nil, errorf(CodeUnexpectedNode, "", "%T is only valid inside a predicate or projection", e)
	}
}

// Translate translates a complete query with v.
func Translate(v Visitor, q expr.Expr) (*relational.ShapedQuery, error) {
	n, err := Visit(v, q)
	if err != nil {
		return nil, err
	}
	shaped, ok := n.(*relational.ShapedQuery)
	if !ok {
		return nil, errorf(CodeBadArgument, "", "expression is not a query (got %T)", n)
	}
	return shaped, nil
}
