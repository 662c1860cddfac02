package harness

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/temporalq/internal/expr"
	"github.com/roach88/temporalq/internal/ir"
	"github.com/roach88/temporalq/internal/sqlgen"
	"github.com/roach88/temporalq/internal/temporal"
	"github.com/roach88/temporalq/internal/testutil"
)

func TestScenarios(t *testing.T) {
	scenarios, err := LoadDir("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	results, err := RunAll(context.Background(), scenarios, Config{})
	require.NoError(t, err)
	require.Len(t, results, len(scenarios))

	for i, r := range results {
		t.Run(scenarios[i].Name, func(t *testing.T) {
			assert.Equal(t, scenarios[i].Name, r.Scenario)
			assert.True(t, r.Pass, "errors: %v", r.Errors)
		})
	}
}

func TestGolden(t *testing.T) {
	for _, name := range []string{"include_as_of", "sibling_instants"} {
		t.Run(name, func(t *testing.T) {
			sc, err := LoadScenario(filepath.Join("testdata/scenarios", name+".yaml"))
			require.NoError(t, err)

			r, err := RunWithGolden(t, sc, Config{})
			require.NoError(t, err)
			assert.True(t, r.Pass, "errors: %v", r.Errors)
			assert.Equal(t, name, r.CompilationID)
		})
	}
}

func TestRun_ConfigPolicyAppliesWithoutOverride(t *testing.T) {
	sc := inlineScenario(t, `
name: literal
model_source: |
`+indent(testutil.HRSource)+`
query:
  from: Employee
  steps:
    - as_of: {value: "2024-01-01T00:00:00.000000Z"}
`)

	r, err := Run(context.Background(), sc, Config{Policy: temporal.PolicyFail})
	require.NoError(t, err)
	assert.False(t, r.Pass)
	require.Len(t, r.Errors, 1)
	assert.Contains(t, r.Errors[0], "not a late-bound parameter")

	r, err = Run(context.Background(), sc, Config{Policy: temporal.PolicyDrop})
	require.NoError(t, err)
	assert.True(t, r.Pass)
	assert.Equal(t, map[string]string{"t0": ""}, r.Tags)
}

func TestRun_LiteralAsOfIsReportedAsWarning(t *testing.T) {
	sc, err := LoadScenario("testdata/scenarios/literal_marker_drop.yaml")
	require.NoError(t, err)

	r, err := Run(context.Background(), sc, Config{})
	require.NoError(t, err)
	assert.True(t, r.Pass, "errors: %v", r.Errors)
	require.Len(t, r.Warnings, 1)
	assert.Contains(t, r.Warnings[0], "AsOf with a literal value")
}

func TestRun_FailedAssertionsAreReported(t *testing.T) {
	sc := inlineScenario(t, `
name: wrong_tags
model_source: |
`+indent(testutil.HRSource)+`
query:
  from: Employee
  steps:
    - as_of: {param: at}
assertions:
  - type: tags
    tables: {t0: other}
  - type: sql_contains
    text: "FOR SYSTEM_TIME"
`)

	r, err := Run(context.Background(), sc, Config{})
	require.NoError(t, err)
	assert.False(t, r.Pass)
	require.Len(t, r.Errors, 2)
	assert.Contains(t, r.Errors[0], "Expected: [t0@other]")
	assert.Contains(t, r.Errors[0], "Actual: [t0@at]")
	assert.Contains(t, r.Errors[1], "sql_contains")
}

func TestRun_RowAssertionsNeedSQLite(t *testing.T) {
	sc := inlineScenario(t, `
name: rows_on_sqlserver
model_source: |
`+indent(testutil.HRSource)+`
query: {from: Employee}
assertions:
  - type: row_count
    count: 0
`)

	r, err := Run(context.Background(), sc, Config{Dialect: sqlgen.SQLServer})
	require.NoError(t, err)
	assert.False(t, r.Pass)
	assert.Contains(t, r.Errors[0], "need the sqlite dialect")
}

func TestRun_ExpectErrorButCompiled(t *testing.T) {
	sc := inlineScenario(t, `
name: compiles
model_source: |
`+indent(testutil.HRSource)+`
query: {from: Employee}
expect_error: boom
`)

	r, err := Run(context.Background(), sc, Config{})
	require.NoError(t, err)
	assert.False(t, r.Pass)
	assert.Contains(t, r.Errors[0], "compilation succeeded")
}

func TestRun_InfrastructureErrors(t *testing.T) {
	t.Run("missing model", func(t *testing.T) {
		sc := &Scenario{Name: "x", Model: filepath.Join(t.TempDir(), "nope"), Query: QuerySpec{From: "Employee"}}
		_, err := Run(context.Background(), sc, Config{})
		assert.ErrorContains(t, err, "load model")
	})

	t.Run("bad step", func(t *testing.T) {
		sc := &Scenario{Name: "x", ModelSource: testutil.HRSource, Query: QuerySpec{
			From:  "Employee",
			Steps: []StepSpec{{}},
		}}
		_, err := Run(context.Background(), sc, Config{})
		assert.ErrorContains(t, err, "steps[0]: exactly one operator per step, got 0")
	})

	t.Run("bad dialect", func(t *testing.T) {
		sc := &Scenario{Name: "x", ModelSource: testutil.HRSource, Dialect: "oracle", Query: QuerySpec{From: "Employee"}}
		_, err := Run(context.Background(), sc, Config{})
		assert.ErrorContains(t, err, "unknown dialect")
	})
}

func TestRunAll_StopsOnInfrastructureError(t *testing.T) {
	good := &Scenario{Name: "good", ModelSource: testutil.HRSource, Query: QuerySpec{From: "Employee"}}
	bad := &Scenario{Name: "bad", ModelSource: testutil.HRSource, Query: QuerySpec{}}

	_, err := RunAll(context.Background(), []*Scenario{good, bad}, Config{Parallelism: 1})
	assert.ErrorContains(t, err, "scenario bad")
}

func TestQuerySpec_Build(t *testing.T) {
	spec := QuerySpec{
		From: "Employee",
		Steps: []StepSpec{
			{Where: &PredicateSpec{And: []PredicateSpec{
				{Gt: []OperandSpec{{Field: "Salary"}, {Param: "min"}}},
				{Ne: []OperandSpec{{Field: "Name"}, {}}},
			}}},
			{OrderByDesc: "Salary"},
			{Take: &OperandSpec{Value: 5}},
			{Union: &QuerySpec{From: "Employee"}},
			{Select: []string{"Id", "Department.Name"}},
			{AsOf: &OperandSpec{Param: "at"}},
		},
	}

	got, err := spec.Build()
	require.NoError(t, err)

	want := expr.From("Employee").
		Where(expr.And(
			expr.Gt(expr.F("Salary"), expr.P("min")),
			expr.Ne(expr.F("Name"), expr.C(ir.IRNull{})),
		)).
		OrderByDescending(expr.F("Salary")).
		Take(expr.C(ir.IRInt(5))).
		Union(expr.From("Employee")).
		Select(expr.F("Id"), expr.EF("Department", "Name")).
		AsOf(expr.P("at"))
	assert.Equal(t, want, got)
}

func TestQuerySpec_BuildErrors(t *testing.T) {
	tests := []struct {
		name string
		spec QuerySpec
		want string
	}{
		{"no from", QuerySpec{}, "from is required"},
		{"two operators", QuerySpec{From: "E", Steps: []StepSpec{{OrderBy: "a", Include: "b"}}}, "got 2"},
		{"arity", QuerySpec{From: "E", Steps: []StepSpec{{Where: &PredicateSpec{Eq: []OperandSpec{{Field: "a"}}}}}}, "eq: expected 2 operands"},
		{"empty predicate", QuerySpec{From: "E", Steps: []StepSpec{{Where: &PredicateSpec{}}}}, "exactly one operator per predicate"},
		{"field and param", QuerySpec{From: "E", Steps: []StepSpec{{AsOf: &OperandSpec{Field: "a", Param: "b"}}}}, "both field and param"},
		{"float", QuerySpec{From: "E", Steps: []StepSpec{{Take: &OperandSpec{Value: 1.5}}}}, "floats are not supported"},
		{"join keys", QuerySpec{From: "E", Steps: []StepSpec{{Join: &JoinSpec{Query: QuerySpec{From: "D"}}}}}, "outer and inner keys"},
		{"short and", QuerySpec{From: "E", Steps: []StepSpec{{Where: &PredicateSpec{And: []PredicateSpec{{}}}}}}, "and: expected at least 2"},
		{"nested union", QuerySpec{From: "E", Steps: []StepSpec{{Union: &QuerySpec{}}}}, "union: from is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.spec.Build()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestEvaluateAssertions_Rows(t *testing.T) {
	result := NewResult("rows")
	result.Rows = []ir.IRObject{
		{"Id": ir.IRInt(1), "Name": ir.IRString("Alice")},
	}

	assert.Empty(t, EvaluateAssertions(result, []Assertion{
		{Type: AssertRows, Rows: []map[string]any{{"Name": "Alice"}}},
		{Type: AssertRowCount, Count: 1},
	}))

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertRows, Rows: []map[string]any{{"Name": "Bob"}}},
		{Type: AssertRows, Rows: []map[string]any{{"Salary": 1}}},
		{Type: AssertRows, Rows: []map[string]any{}},
		{Type: AssertRowCount, Count: 2},
		{Type: "bogus"},
	})
	require.Len(t, errs, 5)
	assert.Contains(t, errs[0], `rows[0].Name = "Bob"`)
	assert.Contains(t, errs[1], "has column Salary")
	assert.Contains(t, errs[2], "0 rows")
	assert.Contains(t, errs[3], "2 rows")
	assert.Contains(t, errs[4], "unknown assertion type")
}

func TestSnapshot(t *testing.T) {
	r := NewResult("snap")
	r.SQL = "SELECT 1"
	r.Tags = map[string]string{"t1": "", "t0": "at"}

	data, err := Snapshot(r)
	require.NoError(t, err)
	assert.Equal(t, "-- sql\nSELECT 1\n-- parameters\n(none)\n-- tags\nt0 AS OF @at\nt1\n", string(data))
}

func inlineScenario(t *testing.T, src string) *Scenario {
	t.Helper()
	sc, err := ParseScenario([]byte(src))
	require.NoError(t, err)
	return sc
}

// indent prefixes every line of s for a YAML block scalar.
func indent(s string) string {
	out := make([]byte, 0, len(s)+len(s)/8)
	out = append(out, "  "...)
	for i := 0; i < len(s); i++ {
		out = append(out, s[i])
		if s[i] == '\n' && i+1 < len(s) {
			out = append(out, "  "...)
		}
	}
	return string(out)
}
