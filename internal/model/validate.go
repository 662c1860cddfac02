package model

import (
	"fmt"
	"sort"
	"strings"
)

// Validation error codes (E200-E299)
const (
	ErrMissingKey        = "E201" // key column not declared
	ErrUnknownTarget     = "E202" // navigation target entity not found
	ErrUnknownForeignKey = "E203" // navigation foreign key column not declared
	ErrPeriodCollision   = "E204" // period column shadows a declared column type
	ErrDuplicateTable    = "E205" // two entities map to the same table
	ErrHistoryIsTable    = "E206" // history table equals the current table
)

// ValidationError represents a model validation error.
type ValidationError struct {
	Entity  string `json:"entity"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Entity, e.Message)
}

// ValidationErrors aggregates validation failures into one error.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks cross-entity consistency. Returns all errors found (does
// not fail fast), ordered by entity name.
func (m *Model) Validate() []ValidationError {
	var errs []ValidationError
	tables := make(map[string]string)

	for _, e := range m.Entities() {
		if _, ok := e.Column(e.Key); !ok {
			errs = append(errs, ValidationError{
				Entity: e.Name, Code: ErrMissingKey,
				Message: fmt.Sprintf("key %q is not a declared column", e.Key),
			})
		}

		qualified := e.Schema + "." + e.Table
		if other, ok := tables[qualified]; ok {
			errs = append(errs, ValidationError{
				Entity: e.Name, Code: ErrDuplicateTable,
				Message: fmt.Sprintf("table %q already mapped by %s", e.Table, other),
			})
		}
		tables[qualified] = e.Name

		if p := e.Temporal; p != nil {
			if p.History == e.Table {
				errs = append(errs, ValidationError{
					Entity: e.Name, Code: ErrHistoryIsTable,
					Message: "history table must differ from the current table",
				})
			}
			for _, col := range []string{p.Start, p.End} {
				if c, ok := e.Column(col); ok && c.Type != "string" {
					errs = append(errs, ValidationError{
						Entity: e.Name, Code: ErrPeriodCollision,
						Message: fmt.Sprintf("period column %q must be a string timestamp, declared %s", col, c.Type),
					})
				}
			}
		}

		for _, name := range sortedNavigationNames(e) {
			nav := e.Navigations[name]
			target, ok := m.Entity(nav.Target)
			if !ok {
				errs = append(errs, ValidationError{
					Entity: e.Name, Code: ErrUnknownTarget,
					Message: fmt.Sprintf("navigation %q targets unknown entity %q", nav.Name, nav.Target),
				})
				continue
			}
			owner := e
			if nav.Collection {
				owner = target
			}
			if _, ok := owner.Column(nav.ForeignKey); !ok {
				errs = append(errs, ValidationError{
					Entity: e.Name, Code: ErrUnknownForeignKey,
					Message: fmt.Sprintf("navigation %q: foreign key %q not declared on %s", nav.Name, nav.ForeignKey, owner.Name),
				})
			}
		}
	}

	return errs
}

func sortedNavigationNames(e *Entity) []string {
	names := make([]string, 0, len(e.Navigations))
	for name := range e.Navigations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
