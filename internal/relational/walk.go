package relational

// Walk traverses n depth-first in pre-order. fn returning false skips the
// node's children. nil nodes are not visited.
func Walk(n Node, fn func(Node) bool) {
	if isNil(n) || !fn(n) {
		return
	}

	switch node := n.(type) {
	case *ShapedQuery:
		Walk(node.Select, fn)
	case *Select:
		walkSource(node.From, fn)
		walkScalar(node.Where, fn)
		for _, c := range node.Projection {
			Walk(c, fn)
		}
		for _, o := range node.OrderBy {
			Walk(o.Column, fn)
		}
		walkScalar(node.Limit, fn)
	case *Join:
		walkSource(node.Left, fn)
		walkSource(node.Right, fn)
		walkScalar(node.On, fn)
	case *Subquery:
		Walk(node.Select, fn)
	case *SetOperation:
		Walk(node.Left, fn)
		Walk(node.Right, fn)
	case *Binary:
		walkScalar(node.Left, fn)
		walkScalar(node.Right, fn)
	case *IsNull:
		walkScalar(node.Operand, fn)
	case *Exists:
		Walk(node.Select, fn)
	}
}

func walkSource(s Source, fn func(Node) bool) {
	if s != nil {
		Walk(s, fn)
	}
}

func walkScalar(s Scalar, fn func(Node) bool) {
	if s != nil {
		Walk(s, fn)
	}
}

// isNil guards against typed nil pointers stored in interfaces.
func isNil(n Node) bool {
	switch node := n.(type) {
	case nil:
		return true
	case *Select:
		return node == nil
	case *ShapedQuery:
		return node == nil
	case *Column:
		return node == nil
	default:
		return false
	}
}

// Tables returns every table reference reachable from n, in traversal
// order, including tables inside joins, derived tables, set operations and
// EXISTS subqueries.
func Tables(n Node) []TableExpr {
	var tables []TableExpr
	Walk(n, func(node Node) bool {
		if t, ok := node.(TableExpr); ok {
			tables = append(tables, t)
		}
		return true
	})
	return tables
}

// Params returns the names of all parameters referenced from n, in first
// occurrence order, without duplicates.
func Params(n Node) []string {
	seen := make(map[string]bool)
	var names []string
	Walk(n, func(node Node) bool {
		if p, ok := node.(*Param); ok && !seen[p.Name] {
			seen[p.Name] = true
			names = append(names, p.Name)
		}
		return true
	})
	return names
}
