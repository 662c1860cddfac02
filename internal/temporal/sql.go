package temporal

import (
	"github.com/roach88/temporalq/internal/relational"
	"github.com/roach88/temporalq/internal/sqlgen"
)

// TableWriter renders stamped temporal tables as point-in-time reads.
//
// SQL Server gets a FOR SYSTEM_TIME AS OF clause. Other dialects get a
// derived table over the current and history tables filtered by the period
// columns, which the store's schema keeps for every versioned entity.
type TableWriter struct {
	Next sqlgen.TableWriter // nil uses sqlgen.DefaultTableWriter
}

// WriteTable implements sqlgen.TableWriter.
func (tw TableWriter) WriteTable(w *sqlgen.Writer, t relational.TableExpr) error {
	tagged, ok := t.(*Table)
	if !ok || tagged.Marker() == nil {
		next := tw.Next
		if next == nil {
			next = sqlgen.DefaultTableWriter{}
		}
		return next.WriteTable(w, t)
	}

	if w.Dialect().Name() == sqlgen.SQLServer.Name() {
		w.WriteString(w.TableName(tagged.Schema, tagged.Name))
		w.WriteString(" FOR SYSTEM_TIME AS OF ")
		w.Param(tagged.Marker().Name)
		w.WriteString(" AS " + w.Quote(tagged.Alias))
		return nil
	}

	w.WriteString("(")
	writeVersionRead(w, tagged, tagged.Name)
	w.WriteString(" UNION ALL ")
	writeVersionRead(w, tagged, tagged.Period.History)
	w.WriteString(") AS " + w.Quote(tagged.Alias))
	return nil
}

// writeVersionRead selects the rows of table valid at the marker instant.
// Periods are half-open: start <= t < end.
func writeVersionRead(w *sqlgen.Writer, t *Table, table string) {
	w.WriteString("SELECT * FROM " + w.TableName(t.Schema, table))
	w.WriteString(" WHERE " + w.Quote(t.Period.Start) + " <= ")
	w.Param(t.Marker().Name)
	w.WriteString(" AND " + w.Quote(t.Period.End) + " > ")
	w.Param(t.Marker().Name)
}
