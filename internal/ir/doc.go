// Package ir provides the runtime value types that flow through temporalq.
//
// Parameter values bound at execution time (including the point-in-time
// values of AsOf markers) and the rows read back from the store are all
// expressed as IRValue. The set is closed:
//   - IRNull, IRString, IRInt, IRBool for scalars
//   - IRObject for a result row
//
// There is no float type. Timestamps travel as RFC 3339 strings in UTC so
// that they compare correctly as text in SQLite.
//
// ir imports nothing internal.
package ir
