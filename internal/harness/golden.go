package harness

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/temporalq/internal/ir"
)

// Snapshot renders the deterministic parts of a result: generated SQL,
// parameter order, tags and, when the query ran, the rows as canonical
// JSON.
func Snapshot(r *Result) ([]byte, error) {
	var b strings.Builder

	b.WriteString("-- sql\n")
	b.WriteString(r.SQL)
	b.WriteString("\n-- parameters\n")
	if len(r.Parameters) == 0 {
		b.WriteString("(none)")
	} else {
		b.WriteString(strings.Join(r.Parameters, ", "))
	}
	b.WriteString("\n-- tags\n")
	for _, line := range TagLines(r.Tags) {
		b.WriteString(line + "\n")
	}

	if r.Rows != nil {
		b.WriteString("-- rows\n")
		for _, row := range r.Rows {
			data, err := ir.MarshalCanonical(row)
			if err != nil {
				return nil, fmt.Errorf("snapshot row: %w", err)
			}
			b.Write(data)
			b.WriteByte('\n')
		}
	}
	return []byte(b.String()), nil
}

// TagLines renders one line per table, ordered by alias: "t0 AS OF @at"
// for a tagged table, the bare alias otherwise.
func TagLines(tags map[string]string) []string {
	lines := make([]string, 0, len(tags))
	for _, alias := range sortedAliases(tags) {
		if name := tags[alias]; name != "" {
			lines = append(lines, fmt.Sprintf("%s AS OF @%s", alias, name))
		} else {
			lines = append(lines, alias)
		}
	}
	return lines
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario, cfg Config) (*Result, error) {
	t.Helper()

	result, err := Run(context.Background(), scenario, cfg)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
