// Package temporal adds point-in-time ("as of") queries to the translator.
//
// A query source annotated with AsOf(@p) reads every system-versioned table
// produced from that source as it was at the instant bound to @p:
//
//	q := expr.From("Employee").Include("Department").AsOf(expr.P("asOf"))
//
// Three components cooperate:
//
//   - [Visitor] overrides the base translator. It captures the AsOf
//     parameter, translates the annotated source, and stamps the captured
//     parameter onto every [Table] produced at a query root while it holds
//     one. Child visitors for subqueries copy the parent's capture at spawn
//     and never write back.
//   - [Table] is a table reference that carries the captured parameter.
//     The first stamp wins.
//   - [Guard] keeps the nullability pass from rebuilding tagged tables as
//     plain ones, which would lose the stamp.
//
// [Register] installs all of them into a pipeline's service slots.
//
// The captured value must be a late-bound parameter so one compiled query
// can run for many instants. What happens with any other value is decided
// by [UnresolvedPolicy].
package temporal
