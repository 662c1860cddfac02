// Package harness runs YAML scenarios through the temporal pipeline.
//
// A scenario names a model, a query written in a small YAML query DSL,
// parameter values, seed data and assertions. Run compiles the query with
// a fresh visitor, checks which tables carry a point-in-time marker,
// renders the SQL and, for the SQLite dialect, executes it against an
// in-memory store seeded from the scenario.
//
// # Scenario Format
//
//	name: employees_as_of
//	description: "Employees with their department at one instant"
//	model: ../models/hr
//	query:
//	  from: Employee
//	  steps:
//	    - where: {gt: [{field: Salary}, {param: min}]}
//	    - include: Department
//	    - as_of: {param: at}
//	params:
//	  at: "2024-02-01T00:00:00.000000Z"
//	  min: 50
//	setup:
//	  - entity: Employee
//	    at: "2024-01-01T00:00:00.000000Z"
//	    row: {Id: 1, Name: Alice, Salary: 100, DepartmentId: 10}
//	assertions:
//	  - type: tags
//	    tables: {t0: at, t1: at}
//	  - type: rows
//	    rows:
//	      - {Name: Alice, Department.Name: Engineering}
//
// # Assertion Types
//
//   - tags: every table alias maps to its marker parameter ("" = untagged)
//   - rows: result rows, matched by position on the listed columns only
//   - row_count: number of result rows
//   - sql_contains: substring of the generated SQL
//
// A scenario with expect_error passes when compilation fails with an error
// containing that text.
//
// # Deterministic Testing
//
// Compilation IDs come from testutil.FixedIDGenerator and each scenario
// gets its own in-memory database, so RunAll may run scenarios in parallel
// and golden snapshots stay stable.
package harness
