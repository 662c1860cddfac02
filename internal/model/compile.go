package model

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"golang.org/x/text/unicode/norm"
)

// CompileError represents a model compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Compile converts a CUE value holding an `entity` struct into a Model.
// Uses the CUE SDK's Go API directly (not a CLI subprocess).
func Compile(v cue.Value) (*Model, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	entitiesVal := v.LookupPath(cue.ParsePath("entity"))
	if !entitiesVal.Exists() {
		return nil, &CompileError{Field: "entity", Message: "no entities defined", Pos: v.Pos()}
	}

	iter, err := entitiesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	m := New()
	for iter.Next() {
		entity, err := compileEntity(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		m.entities[entity.Name] = entity
	}
	return m, nil
}

func compileEntity(name string, v cue.Value) (*Entity, error) {
	e := &Entity{
		Name:        norm.NFC.String(name),
		Navigations: make(map[string]*Navigation),
	}

	var err error
	if e.Table, err = lookupString(v, "table", true); err != nil {
		return nil, err
	}
	if e.Schema, err = lookupString(v, "schema", false); err != nil {
		return nil, err
	}
	if e.Key, err = lookupString(v, "key", true); err != nil {
		return nil, err
	}

	if e.Columns, err = compileColumns(v); err != nil {
		return nil, err
	}

	if e.Temporal, err = compilePeriod(v, e.Table); err != nil {
		return nil, err
	}

	navVal := v.LookupPath(cue.ParsePath("navigation"))
	if navVal.Exists() {
		navIter, err := navVal.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		for navIter.Next() {
			nav, err := compileNavigation(navIter.Label(), navIter.Value())
			if err != nil {
				return nil, err
			}
			e.Navigations[nav.Name] = nav
		}
	}

	return e, nil
}

func compileColumns(v cue.Value) ([]Column, error) {
	colsVal := v.LookupPath(cue.ParsePath("columns"))
	if !colsVal.Exists() {
		return nil, &CompileError{Field: "columns", Message: "columns are required", Pos: v.Pos()}
	}
	iter, err := colsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var cols []Column
	for iter.Next() {
		typeName, err := extractTypeName(iter.Value())
		if err != nil {
			return nil, err
		}
		cols = append(cols, Column{Name: norm.NFC.String(iter.Label()), Type: typeName})
	}
	return cols, nil
}

// compilePeriod accepts `temporal: true`, or a struct with optional
// history/start/end overrides.
func compilePeriod(v cue.Value, table string) (*Period, error) {
	tv := v.LookupPath(cue.ParsePath("temporal"))
	if !tv.Exists() {
		return nil, nil
	}

	p := &Period{
		History: table + DefaultHistorySuffix,
		Start:   DefaultPeriodStart,
		End:     DefaultPeriodEnd,
	}

	if b, err := tv.Bool(); err == nil {
		if !b {
			return nil, nil
		}
		return p, nil
	}

	if tv.IncompleteKind() != cue.StructKind {
		return nil, &CompileError{
			Field:   "temporal",
			Message: "must be a bool or a struct with history/start/end",
			Pos:     tv.Pos(),
		}
	}

	for field, dst := range map[string]*string{"history": &p.History, "start": &p.Start, "end": &p.End} {
		s, err := lookupString(tv, field, false)
		if err != nil {
			return nil, err
		}
		if s != "" {
			*dst = s
		}
	}
	return p, nil
}

func compileNavigation(name string, v cue.Value) (*Navigation, error) {
	nav := &Navigation{Name: norm.NFC.String(name)}

	var err error
	if nav.Target, err = lookupString(v, "target", true); err != nil {
		return nil, err
	}
	if nav.ForeignKey, err = lookupString(v, "foreignKey", true); err != nil {
		return nil, err
	}

	if cv := v.LookupPath(cue.ParsePath("collection")); cv.Exists() {
		b, err := cv.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		nav.Collection = b
	}
	return nav, nil
}

// lookupString reads a concrete string field. Missing optional fields
// return "".
func lookupString(v cue.Value, field string, required bool) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		if required {
			return "", &CompileError{
				Field:   field,
				Message: field + " is required",
				Pos:     v.Pos(),
			}
		}
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return norm.NFC.String(s), nil
}

// extractTypeName converts a CUE kind to a column type name.
// Floats are forbidden.
func extractTypeName(v cue.Value) (string, error) {
	switch v.IncompleteKind() {
	case cue.StringKind:
		return "string", nil
	case cue.IntKind:
		return "int", nil
	case cue.BoolKind:
		return "bool", nil
	case cue.FloatKind, cue.NumberKind:
		return "", &CompileError{
			Field:   "type",
			Message: "float types are forbidden - use int instead",
			Pos:     v.Pos(),
		}
	default:
		return "", &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("unsupported column kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
