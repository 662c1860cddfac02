package temporal

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/temporalq/internal/expr"
	"github.com/roach88/temporalq/internal/ir"
	"github.com/roach88/temporalq/internal/nullability"
	"github.com/roach88/temporalq/internal/pipeline"
	"github.com/roach88/temporalq/internal/relational"
	"github.com/roach88/temporalq/internal/sqlgen"
	"github.com/roach88/temporalq/internal/testutil"
	"github.com/roach88/temporalq/internal/translate"
)

func newCompiler(t *testing.T, d sqlgen.Dialect, opts ...Option) *pipeline.Compiler {
	t.Helper()
	services := pipeline.DefaultServices()
	services.Logger = testutil.DiscardLogger()
	services.IDs = testutil.NewFixedIDGenerator("")
	return pipeline.NewCompiler(testutil.HRModel(t), Register(services, opts...), pipeline.WithDialect(d))
}

func TestRegister_ReplacesAllSlots(t *testing.T) {
	s := Register(pipeline.DefaultServices())

	assert.IsType(t, TranslatorFactory{}, s.Translators)
	assert.IsType(t, TableFactory{}, s.Tables)
	assert.IsType(t, ProcessorFactory{}, s.Processors)
	assert.IsType(t, GeneratorFactory{}, s.Generators)

	var _ translate.Factory = s.Translators
	var _ nullability.Factory = s.Processors
	var _ sqlgen.Factory = s.Generators
}

func TestPipeline_Golden(t *testing.T) {
	tests := []struct {
		name    string
		dialect sqlgen.Dialect
		q       expr.Query
	}{
		{"scenario_a_sqlserver", sqlgen.SQLServer, expr.From("Employee").AsOf(p1)},
		{"scenario_b_sqlserver", sqlgen.SQLServer, joinDepartment(
			expr.From("Employee").AsOf(p1),
			expr.From("Department").AsOf(p2),
		)},
		{"include_sqlite", sqlgen.SQLite, expr.From("Employee").Include("Department").AsOf(p1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := newCompiler(t, tt.dialect).Compile(tt.q.Expr)
			require.NoError(t, err)

			values := map[string]ir.IRValue{
				"p1": ir.IRString("2024-01-01T00:00:00.000000Z"),
				"p2": ir.IRString("2024-06-01T00:00:00.000000Z"),
			}
			cmd, err := query.Command(values)
			require.NoError(t, err)

			g := goldie.New(t,
				goldie.WithFixtureDir("testdata/golden"),
				goldie.WithNameSuffix(".golden"),
			)
			g.Assert(t, tt.name, []byte(cmd.SQL+"\n"))
		})
	}
}

func TestPipeline_CompiledQueryReusedAcrossInstants(t *testing.T) {
	query, err := newCompiler(t, sqlgen.SQLServer).Compile(expr.From("Employee").AsOf(expr.P("asOf")).Expr)
	require.NoError(t, err)

	first, err := query.Prepare(map[string]ir.IRValue{"asOf": ir.IRString("2024-01-01T00:00:00.000000Z")})
	require.NoError(t, err)
	second, err := query.Prepare(map[string]ir.IRValue{"asOf": ir.IRString("2025-01-01T00:00:00.000000Z")})
	require.NoError(t, err)

	assert.Equal(t, first.Command.SQL, second.Command.SQL)
	assert.NotEqual(t, first.Args, second.Args)
	assert.True(t, first.CanCache)
}

func TestPipeline_FreshVisitorPerCompilation(t *testing.T) {
	c := newCompiler(t, sqlgen.SQLite)

	tagged, err := c.Compile(expr.From("Employee").AsOf(p1).Expr)
	require.NoError(t, err)
	plain, err := c.Compile(expr.From("Employee").Expr)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"Employees t0": "@p1"}, markers(tagged.Shaped))
	assert.Equal(t, map[string]string{"Employees t0": "untagged"}, markers(plain.Shaped))
}

func TestPipeline_ProcessingKeepsTags(t *testing.T) {
	query, err := newCompiler(t, sqlgen.SQLite).Compile(
		expr.From("Employee").Where(expr.Eq(expr.F("Name"), expr.P("name"))).AsOf(p1).Expr)
	require.NoError(t, err)

	exec, err := query.Prepare(map[string]ir.IRValue{
		"p1":   ir.IRString("2024-01-01T00:00:00.000000Z"),
		"name": ir.IRNull{},
	})
	require.NoError(t, err)

	assert.False(t, exec.CanCache)
	tables := relational.Tables(exec.Select)
	require.Len(t, tables, 1)
	assert.Equal(t, "p1", MarkerOf(tables[0]).Name)
	assert.Contains(t, exec.Command.SQL, `"EmployeesHistory"`)
	assert.Contains(t, exec.Command.SQL, `"t0"."Name" IS NULL`)
}

func TestPipeline_FixedMarkerOption(t *testing.T) {
	c := newCompiler(t, sqlgen.SQLServer, WithMarker(&relational.Param{Name: "now"}))
	query, err := c.Compile(expr.From("Employee").Expr)
	require.NoError(t, err)

	cmd, err := query.Command(map[string]ir.IRValue{"now": ir.IRString("2024-01-01T00:00:00.000000Z")})
	require.NoError(t, err)
	assert.Contains(t, cmd.SQL, "FOR SYSTEM_TIME AS OF @now")
}

func TestPipeline_FailPolicySurfacesError(t *testing.T) {
	c := newCompiler(t, sqlgen.SQLite, WithPolicy(PolicyFail))
	_, err := c.Compile(expr.From("Employee").AsOf(expr.C(ir.IRString("2024-01-01"))).Expr)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnresolvableMarker)
}

func TestPipeline_BaseServicesRejectAsOf(t *testing.T) {
	services := pipeline.DefaultServices()
	services.Logger = testutil.DiscardLogger()
	c := pipeline.NewCompiler(testutil.HRModel(t), services)

	_, err := c.Compile(expr.From("Employee").AsOf(p1).Expr)
	var terr *translate.Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, translate.CodeTemporalRequired, terr.Code)
}
