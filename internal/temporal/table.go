package temporal

import (
	"github.com/roach88/temporalq/internal/model"
	"github.com/roach88/temporalq/internal/relational"
)

// Table is a reference to a system-versioned table that may carry a
// point-in-time marker.
type Table struct {
	relational.Table
	Period model.Period // history table and period columns
	marker *relational.Param
}

// TrySetMarker stamps p onto t. It returns false, leaving t unchanged, when
// p is nil or t already carries a marker.
func (t *Table) TrySetMarker(p *relational.Param) bool {
	if p == nil || t.marker != nil {
		return false
	}
	t.marker = p
	return true
}

// Marker returns the stamped marker, or nil.
func (t *Table) Marker() *relational.Param {
	return t.marker
}

func (t *Table) String() string {
	s := t.Table.String()
	if t.marker != nil {
		s += " AS OF @" + t.marker.Name
	}
	return s
}

// IsTagged reports whether n is a temporal table node. Such nodes must pass
// through simplification unchanged whether or not a marker is set yet.
func IsTagged(n relational.Node) bool {
	_, ok := n.(*Table)
	return ok
}

// MarkerOf returns the marker stamped on n, or nil when n is not a temporal
// table or carries none.
func MarkerOf(n relational.Node) *relational.Param {
	if t, ok := n.(*Table); ok {
		return t.marker
	}
	return nil
}

// StampTables stamps p onto every untagged temporal table reachable from n
// and returns how many were stamped.
func StampTables(n relational.Node, p *relational.Param) int {
	if p == nil {
		return 0
	}
	stamped := 0
	relational.Walk(n, func(node relational.Node) bool {
		if t, ok := node.(*Table); ok && t.TrySetMarker(p) {
			stamped++
		}
		return true
	})
	return stamped
}

// TableFactory creates temporal table nodes for system-versioned entities
// and plain tables for everything else.
type TableFactory struct{}

// NewTable implements translate.TableFactory.
func (TableFactory) NewTable(entity *model.Entity, alias string) relational.TableExpr {
	table := relational.Table{
		Name:   entity.Table,
		Schema: entity.Schema,
		Alias:  alias,
		Entity: entity.Name,
	}
	if !entity.IsTemporal() {
		return &table
	}
	return &Table{Table: table, Period: *entity.Temporal}
}
