// Package nullability rewrites a relational tree for the parameter values
// of one execution.
//
// Comparisons against NULL become IS NULL tests, comparisons against a
// parameter whose value is null become IS NULL tests unless relational
// null semantics are requested, and trivially true conjuncts are removed.
// The processor rebuilds the tree instead of mutating it, so one
// translated query can be processed for many executions. Table references
// are rebuilt through a [TableVisitor].
package nullability
