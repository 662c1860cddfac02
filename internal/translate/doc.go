// Package translate converts query expression trees into relational trees.
//
// Translation is recursive descent over [expr.Expr]. The traversal is
// driven through the [Visitor] interface so that a wrapping visitor can
// intercept query roots and method calls, then hand the rest back to the
// base [Translator]:
//
//	func (v *myVisitor) VisitCall(call *expr.Call) (relational.Node, error) {
//		if call.Method == expr.MethodAsOf {
//			...
//		}
//		return v.base.TranslateCall(v, call)
//	}
//
// TranslateCall takes the active visitor as self and recurses through it,
// so overrides stay in effect for every nested source. Subqueries, join
// inner sources and set-operation right operands are translated by a child
// visitor obtained from self.Subquery() before the call's outer operand is
// visited.
package translate
