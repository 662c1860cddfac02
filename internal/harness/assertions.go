package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/temporalq/internal/ir"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
	SQL      string // Generated SQL for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	if e.SQL != "" {
		fmt.Fprintf(&buf, "\nSQL:\n  %s\n", e.SQL)
	}
	return buf.String()
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTags:
			err = assertTags(result, assertion)
		case AssertRows:
			err = assertRows(result, assertion)
		case AssertRowCount:
			err = assertRowCount(result, assertion)
		case AssertSQLContains:
			err = assertSQLContains(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

// assertTags requires the tagged tables to be exactly those listed.
func assertTags(result *Result, a Assertion) error {
	if formatTags(result.Tags) == formatTags(a.Tables) {
		return nil
	}
	return &AssertionError{
		Type:     AssertTags,
		Expected: formatTags(a.Tables),
		Actual:   formatTags(result.Tags),
		SQL:      result.SQL,
	}
}

// assertRows matches rows by position. Only columns listed in the expected
// row are compared.
func assertRows(result *Result, a Assertion) error {
	fail := func(expected, actual string) error {
		return &AssertionError{Type: AssertRows, Expected: expected, Actual: actual, SQL: result.SQL}
	}

	if len(result.Rows) != len(a.Rows) {
		return fail(fmt.Sprintf("%d rows", len(a.Rows)), fmt.Sprintf("%d rows: %s", len(result.Rows), formatRows(result.Rows)))
	}

	for i, want := range a.Rows {
		got := result.Rows[i]
		for _, col := range sortedKeys(want) {
			wantVal, err := ir.FromAny(want[col])
			if err != nil {
				return fmt.Errorf("rows[%d].%s: %w", i, col, err)
			}
			gotVal, ok := got[col]
			if !ok {
				return fail(fmt.Sprintf("rows[%d] has column %s", i, col), fmt.Sprintf("columns %v", got.SortedKeys()))
			}
			if !ir.Equal(wantVal, gotVal) {
				return fail(fmt.Sprintf("rows[%d].%s = %s", i, col, ir.String(wantVal)),
					fmt.Sprintf("rows[%d].%s = %s", i, col, ir.String(gotVal)))
			}
		}
	}
	return nil
}

func assertRowCount(result *Result, a Assertion) error {
	if len(result.Rows) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertRowCount,
		Expected: fmt.Sprintf("%d rows", a.Count),
		Actual:   fmt.Sprintf("%d rows", len(result.Rows)),
		SQL:      result.SQL,
	}
}

func assertSQLContains(result *Result, a Assertion) error {
	if strings.Contains(result.SQL, a.Text) {
		return nil
	}
	return &AssertionError{
		Type:     AssertSQLContains,
		Expected: fmt.Sprintf("SQL containing %q", a.Text),
		Actual:   result.SQL,
	}
}

// formatTags renders alias -> marker pairs sorted by alias.
func formatTags(tags map[string]string) string {
	parts := make([]string, 0, len(tags))
	for _, alias := range sortedAliases(tags) {
		if name := tags[alias]; name != "" {
			parts = append(parts, alias+"@"+name)
		} else {
			parts = append(parts, alias)
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func formatRows(rows []ir.IRObject) string {
	parts := make([]string, len(rows))
	for i, row := range rows {
		data, err := ir.MarshalCanonical(row)
		if err != nil {
			parts[i] = fmt.Sprintf("<%v>", err)
			continue
		}
		parts[i] = string(data)
	}
	return strings.Join(parts, ", ")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
