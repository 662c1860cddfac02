package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/roach88/temporalq/internal/model"
)

// MaxTime ends the period of a row that is still current.
const MaxTime = "9999-12-31T23:59:59.999999Z"

// Table kinds recorded in temporalq_tables.
const (
	KindCurrent = "current"
	KindHistory = "history"
	KindPlain   = "plain"
)

// TableInfo describes one table created by Migrate.
type TableInfo struct {
	Name   string // schema-qualified when the entity has a schema
	Entity string
	Kind   string
}

// Migrate creates the tables of every entity in m. Temporal entities get a
// current table keyed on the entity key and a history table with the same
// columns. Safe to call repeatedly.
func (s *Store) Migrate(ctx context.Context, m *model.Model) error {
	for _, e := range m.Entities() {
		if err := s.attach(ctx, e.Schema); err != nil {
			return err
		}

		kind := KindPlain
		if e.IsTemporal() {
			kind = KindCurrent
		}
		if err := s.createTable(ctx, e, e.Table, kind); err != nil {
			return err
		}
		if e.IsTemporal() {
			if err := s.createTable(ctx, e, e.Temporal.History, KindHistory); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Store) createTable(ctx context.Context, e *model.Entity, name, kind string) error {
	defs := make([]string, 0, len(e.Columns)+3)
	for _, col := range physicalColumns(e) {
		defs = append(defs, quote(col.Name)+" "+sqliteType(col.Type))
	}
	if kind != KindHistory {
		defs = append(defs, "PRIMARY KEY ("+quote(e.Key)+")")
	}

	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", qualified(e.Schema, name), strings.Join(defs, ", "))
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", name, err)
	}

	if kind == KindHistory {
		index := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s, %s)",
			qualified(e.Schema, "idx_"+name+"_period"), quote(name),
			quote(e.Temporal.Start), quote(e.Temporal.End))
		if _, err := s.db.ExecContext(ctx, index); err != nil {
			return fmt.Errorf("create index on %s: %w", name, err)
		}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO temporalq_tables (name, entity, kind)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO NOTHING
	`, tableName(e.Schema, name), e.Name, kind)
	if err != nil {
		return fmt.Errorf("record table %s: %w", name, err)
	}
	return nil
}

// Tables lists the tables created by Migrate, ordered by name.
func (s *Store) Tables(ctx context.Context) ([]TableInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, entity, kind FROM temporalq_tables
		ORDER BY name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	out := []TableInfo{}
	for rows.Next() {
		var info TableInfo
		if err := rows.Scan(&info.Name, &info.Entity, &info.Kind); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tables: %w", err)
	}
	return out, nil
}

// physicalColumns returns the declared columns followed by any period
// column the entity does not declare itself.
func physicalColumns(e *model.Entity) []model.Column {
	cols := append([]model.Column(nil), e.Columns...)
	if e.Temporal == nil {
		return cols
	}
	for _, name := range []string{e.Temporal.Start, e.Temporal.End} {
		if _, ok := e.Column(name); !ok {
			cols = append(cols, model.Column{Name: name, Type: "string"})
		}
	}
	return cols
}

func sqliteType(t string) string {
	switch t {
	case "int":
		return "INTEGER"
	case "bool":
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

func tableName(schema, name string) string {
	if schema == "" {
		return name
	}
	return schema + "." + name
}
