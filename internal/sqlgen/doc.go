// Package sqlgen renders relational trees as parameterized SQL.
//
// Values are never interpolated: late-bound parameters and constants
// become placeholders, and [Command.Args] binds them for one execution.
// Table references are rendered through a [TableWriter] so that table
// nodes carrying extra annotations can emit their own clause.
package sqlgen
