package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/temporalq/internal/ir"
	"github.com/roach88/temporalq/internal/model"
	"github.com/roach88/temporalq/internal/sqlgen"
)

// Insert writes row into table. table may be schema-qualified
// ("ref.Countries"). Columns are written in canonical key order.
func (s *Store) Insert(ctx context.Context, table string, row ir.IRObject) error {
	if len(row) == 0 {
		return fmt.Errorf("insert into %s: empty row", table)
	}

	schema, name := splitTable(table)
	keys := row.SortedKeys()
	cols := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		arg, err := ir.ToDriver(row[k])
		if err != nil {
			return fmt.Errorf("insert into %s: column %s: %w", table, k, err)
		}
		cols[i] = quote(k)
		args[i] = arg
	}

	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		qualified(schema, name),
		strings.Join(cols, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))
	if _, err := s.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", table, err)
	}
	return nil
}

// Upsert writes a new version of an entity row valid from at.
//
// For a temporal entity the current version with the same key, if any, is
// closed at at and moved to the history table. Plain entities are simply
// replaced.
func (s *Store) Upsert(ctx context.Context, e *model.Entity, row ir.IRObject, at ir.IRString) (err error) {
	key, ok := row[e.Key]
	if !ok || ir.IsNull(key) {
		return fmt.Errorf("upsert %s: row has no %s", e.Name, e.Key)
	}
	keyArg, err := ir.ToDriver(key)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", e.Name, err)
	}

	if !e.IsTemporal() {
		if _, err := s.db.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE %s = ?", qualified(e.Schema, e.Table), quote(e.Key)), keyArg); err != nil {
			return fmt.Errorf("upsert %s: %w", e.Name, err)
		}
		return s.Insert(ctx, tableName(e.Schema, e.Table), row)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("upsert %s: begin: %w", e.Name, err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	period := e.Temporal
	current := qualified(e.Schema, e.Table)
	history := qualified(e.Schema, period.History)

	var names []string
	for _, col := range physicalColumns(e) {
		if col.Name != period.End {
			names = append(names, quote(col.Name))
		}
	}
	list := strings.Join(names, ", ")

	closeStmt := fmt.Sprintf("INSERT INTO %s (%s, %s) SELECT %s, ? FROM %s WHERE %s = ?",
		history, list, quote(period.End), list, current, quote(e.Key))
	if _, err = tx.ExecContext(ctx, closeStmt, string(at), keyArg); err != nil {
		return fmt.Errorf("upsert %s: close version: %w", e.Name, err)
	}
	if _, err = tx.ExecContext(ctx,
		fmt.Sprintf("DELETE FROM %s WHERE %s = ?", current, quote(e.Key)), keyArg); err != nil {
		return fmt.Errorf("upsert %s: remove version: %w", e.Name, err)
	}

	version := make(ir.IRObject, len(row)+2)
	for k, v := range row {
		version[k] = v
	}
	version[period.Start] = at
	version[period.End] = ir.IRString(MaxTime)

	keys := version.SortedKeys()
	cols := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		if args[i], err = ir.ToDriver(version[k]); err != nil {
			return fmt.Errorf("upsert %s: column %s: %w", e.Name, k, err)
		}
		cols[i] = quote(k)
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", current, strings.Join(cols, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))
	if _, err = tx.ExecContext(ctx, insert, args...); err != nil {
		return fmt.Errorf("upsert %s: insert version: %w", e.Name, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("upsert %s: commit: %w", e.Name, err)
	}
	return nil
}

// Query binds values to cmd and returns the result rows keyed by output
// column name. Returns an empty slice (not nil) when nothing matches.
func (s *Store) Query(ctx context.Context, cmd *sqlgen.Command, values map[string]ir.IRValue) ([]ir.IRObject, error) {
	if cmd.Named {
		return nil, errors.New("query: named parameters are not supported by sqlite")
	}
	args, err := cmd.Args(values)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, cmd.SQL, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

func scanRows(rows *sql.Rows) ([]ir.IRObject, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("query columns: %w", err)
	}

	out := []ir.IRObject{}
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		obj := make(ir.IRObject, len(cols))
		for i, name := range cols {
			v, err := ir.FromAny(raw[i])
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", name, err)
			}
			obj[name] = v
		}
		out = append(out, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

func splitTable(table string) (schema, name string) {
	if i := strings.IndexByte(table, '.'); i >= 0 {
		return table[:i], table[i+1:]
	}
	return "", table
}
