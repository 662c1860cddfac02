package sqlgen

import (
	"fmt"
	"strings"

	"github.com/roach88/temporalq/internal/ir"
	"github.com/roach88/temporalq/internal/relational"
)

// Writer accumulates SQL text and placeholder bindings.
type Writer struct {
	dialect  Dialect
	buf      strings.Builder
	bindings []Binding
	bound    map[string]bool
	consts   int
}

func newWriter(d Dialect) *Writer {
	return &Writer{dialect: d, bound: make(map[string]bool)}
}

// Dialect returns the target dialect.
func (w *Writer) Dialect() Dialect {
	return w.dialect
}

// WriteString appends raw SQL text.
func (w *Writer) WriteString(s string) {
	w.buf.WriteString(s)
}

// Quote returns ident quoted for the dialect.
func (w *Writer) Quote(ident string) string {
	return w.dialect.QuoteIdentifier(ident)
}

// TableName returns the quoted, schema-qualified name of a physical table.
func (w *Writer) TableName(schema, name string) string {
	if schema == "" {
		return w.Quote(name)
	}
	return w.Quote(schema) + "." + w.Quote(name)
}

// Param writes a placeholder for a late-bound parameter.
func (w *Writer) Param(name string) {
	w.WriteString(w.dialect.Placeholder(name))
	if w.dialect.NamedParameters() && w.bound[name] {
		return
	}
	w.bound[name] = true
	w.bindings = append(w.bindings, Binding{Name: name, Param: true})
}

// Const writes a placeholder bound to a constant value.
func (w *Writer) Const(v ir.IRValue) {
	name := fmt.Sprintf("__c%d", w.consts)
	w.consts++
	w.WriteString(w.dialect.Placeholder(name))
	w.bindings = append(w.bindings, Binding{Name: name, Value: v})
}

// Table writes a table reference with its alias.
func (w *Writer) Table(t *relational.Table) {
	w.WriteString(w.TableName(t.Schema, t.Name))
	if t.Alias != "" {
		w.WriteString(" AS " + w.Quote(t.Alias))
	}
}

func (w *Writer) command() *Command {
	return &Command{
		SQL:      w.buf.String(),
		Bindings: w.bindings,
		Named:    w.dialect.NamedParameters(),
	}
}
