// Package expr defines the query expression tree that callers compose and
// the translator consumes.
//
// A query is a chain of method calls over query roots, in the style of
// LINQ method syntax:
//
//	q := expr.From("Employee").
//	    Where(expr.Gt(expr.F("Salary"), expr.P("minSalary"))).
//	    AsOf(expr.P("asOf"))
//
// The tree is immutable once built. Builders always allocate new nodes.
//
// SEALED INTERFACES:
//
// Expr is sealed with an unexported marker method so translators can switch
// exhaustively over node kinds. Method calls carry a closed Method enum
// rather than a free-form name; calls the translator does not recognize use
// MethodUnknown with the original Name retained for error messages.
package expr
