// Package pipeline wires the translation stages behind replaceable service
// slots and drives them for one query.
//
// Compile runs once per query: it asks the translator factory for a fresh
// top-level visitor and translates the expression into a shaped query.
// Prepare runs once per execution: it processes the shaped query for the
// execution's parameter values and generates the SQL command. A compiled
// query is reused across executions with different values.
package pipeline
