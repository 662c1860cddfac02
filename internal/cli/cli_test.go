package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/temporalq/internal/testutil"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeWorkspace lays out models/hr and a scenarios directory holding the
// given files.
func writeWorkspace(t *testing.T, scenarios map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "models", "hr", "model.cue"), "package hr\n"+testutil.HRSource)
	for name, src := range scenarios {
		writeFile(t, filepath.Join(dir, "scenarios", name), src)
	}
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const includeScenario = `name: include
model: ../models/hr
query:
  from: Employee
  steps:
    - include: Department
    - as_of: {param: at}
params:
  at: "2024-04-01T00:00:00.000000Z"
setup:
  - entity: Department
    at: "2024-01-01T00:00:00.000000Z"
    row: {Id: 10, Name: Engineering}
  - entity: Employee
    at: "2024-01-01T00:00:00.000000Z"
    row: {Id: 1, Name: Alice, Salary: 100, DepartmentId: 10}
assertions:
  - type: tags
    tables: {t0: at, t1: at}
  - type: rows
    rows:
      - {Name: Alice, Department.Name: Engineering}
`

const literalScenario = `name: literal
model: ../models/hr
query:
  from: Employee
  steps:
    - as_of: {value: "2024-01-01T00:00:00.000000Z"}
`
