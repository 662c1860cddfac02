package model

import (
	"fmt"
	"sort"
)

// Default period column names for temporal entities that only declare
// `temporal: true`.
const (
	DefaultPeriodStart   = "ValidFrom"
	DefaultPeriodEnd     = "ValidTo"
	DefaultHistorySuffix = "History"
)

// Model is a compiled set of entities, keyed by entity name.
type Model struct {
	entities map[string]*Entity
}

// New builds a Model from entities. Later duplicates replace earlier ones.
func New(entities ...*Entity) *Model {
	m := &Model{entities: make(map[string]*Entity, len(entities))}
	for _, e := range entities {
		m.entities[e.Name] = e
	}
	return m
}

// Entity returns the named entity.
func (m *Model) Entity(name string) (*Entity, bool) {
	if m == nil {
		return nil, false
	}
	e, ok := m.entities[name]
	return e, ok
}

// Entities returns all entities sorted by name.
func (m *Model) Entities() []*Entity {
	out := make([]*Entity, 0, len(m.entities))
	for _, e := range m.entities {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Entity maps a logical entity to its physical table.
type Entity struct {
	Name        string
	Table       string
	Schema      string // optional; empty means the default schema
	Key         string
	Columns     []Column // declaration order
	Temporal    *Period  // nil when the table keeps no history
	Navigations map[string]*Navigation
}

// Column is a typed column.
type Column struct {
	Name string
	Type string // "string" | "int" | "bool"
}

// Period describes the system-versioning layout of a temporal entity.
type Period struct {
	History string // history table name
	Start   string // period start column
	End     string // period end column
}

// Navigation relates an entity to another entity.
//
// For a reference navigation (Collection == false) ForeignKey is a column of
// the declaring entity that matches the target's key. For a collection
// navigation ForeignKey is a column of the target that matches the
// declaring entity's key.
type Navigation struct {
	Name       string
	Target     string
	ForeignKey string
	Collection bool
}

// Column returns the named column.
func (e *Entity) Column(name string) (Column, bool) {
	for _, c := range e.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// HasColumn reports whether name is a declared column or a period column.
func (e *Entity) HasColumn(name string) bool {
	if _, ok := e.Column(name); ok {
		return true
	}
	if e.Temporal != nil {
		return name == e.Temporal.Start || name == e.Temporal.End
	}
	return false
}

// ColumnNames returns declared column names in declaration order.
func (e *Entity) ColumnNames() []string {
	names := make([]string, len(e.Columns))
	for i, c := range e.Columns {
		names[i] = c.Name
	}
	return names
}

// Navigation returns the named navigation.
func (e *Entity) Navigation(name string) (*Navigation, error) {
	nav, ok := e.Navigations[name]
	if !ok {
		return nil, fmt.Errorf("entity %s has no navigation %q", e.Name, name)
	}
	return nav, nil
}

// IsTemporal reports whether the entity keeps history.
func (e *Entity) IsTemporal() bool {
	return e.Temporal != nil
}
