// Package relational defines the relational tree produced by translating a
// query expression: selects over table references, joins, derived tables
// and scalar expressions.
//
//	[expr.Expr] → translate → [ShapedQuery] → nullability → sqlgen → SQL
//
// Node, Source and Scalar are sealed with unexported marker methods.
// TableExpr is the one extension point: a type that embeds Table inherits
// the marker methods and can stand in for a table reference anywhere in the
// tree. That is how annotated table nodes from other packages ride along
// through stages that only know about plain tables.
package relational
