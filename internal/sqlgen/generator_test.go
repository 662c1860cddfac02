package sqlgen

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/temporalq/internal/expr"
	"github.com/roach88/temporalq/internal/ir"
	"github.com/roach88/temporalq/internal/relational"
	"github.com/roach88/temporalq/internal/testutil"
	"github.com/roach88/temporalq/internal/translate"
)

func generate(t *testing.T, d Dialect, q expr.Query) *Command {
	t.Helper()
	tr := translate.New(translate.Dependencies{Model: testutil.HRModel(t), Logger: testutil.DiscardLogger()})
	sq, err := translate.Translate(tr, q.Expr)
	require.NoError(t, err)

	cmd, err := DefaultFactory{}.Create(d).Generate(sq.Select)
	require.NoError(t, err)
	return cmd
}

func assertGolden(t *testing.T, name string, cmd *Command) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(cmd.SQL+"\n"))
}

func TestGenerate_Golden(t *testing.T) {
	filtered := expr.From("Employee").
		Where(expr.Gt(expr.F("Salary"), expr.P("min"))).
		OrderBy(expr.F("Name")).
		Take(expr.C(ir.IRInt(10)))

	tests := []struct {
		name    string
		dialect Dialect
		q       expr.Query
	}{
		{"sqlite_filtered", SQLite, filtered},
		{"sqlserver_filtered", SQLServer, filtered},
		{"sqlite_include", SQLite, expr.From("Employee").Include("Department")},
		{"sqlite_concat", SQLite, expr.From("Employee").
			Where(expr.Eq(expr.F("Name"), expr.P("a"))).
			Concat(expr.From("Employee").Where(expr.Eq(expr.F("Name"), expr.P("b"))))},
		{"sqlite_any", SQLite, expr.From("Department").
			Where(expr.Any(expr.From("Employee"), expr.Eq(expr.F("DepartmentId"), expr.EF("Department", "Id"))))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertGolden(t, tt.name, generate(t, tt.dialect, tt.q))
		})
	}
}

func TestGenerate_NeverInterpolates(t *testing.T) {
	cmd := generate(t, SQLite, expr.From("Employee").
		Where(expr.Eq(expr.F("Name"), expr.C(ir.IRString("O'Brien")))))

	assert.NotContains(t, cmd.SQL, "O'Brien")
	assert.Contains(t, cmd.SQL, `"t0"."Name" = ?`)

	args, err := cmd.Args(nil)
	require.NoError(t, err)
	assert.Equal(t, []any{"O'Brien"}, args)
}

func TestCommand_ArgsPositional(t *testing.T) {
	cmd := generate(t, SQLite, expr.From("Employee").
		Where(expr.Or(expr.Eq(expr.F("Name"), expr.P("name")), expr.Eq(expr.F("Name"), expr.P("name")))).
		Take(expr.P("n")))

	assert.Equal(t, []string{"name", "name", "n"}, cmd.ParameterNames())
	args, err := cmd.Args(map[string]ir.IRValue{"name": ir.IRString("Ann"), "n": ir.IRInt(2)})
	require.NoError(t, err)
	assert.Equal(t, []any{"Ann", "Ann", int64(2)}, args)
}

func TestCommand_ArgsNamedDeduplicates(t *testing.T) {
	cmd := generate(t, SQLServer, expr.From("Employee").
		Where(expr.Or(expr.Eq(expr.F("Name"), expr.P("name")), expr.Ne(expr.F("Name"), expr.P("name")))))

	assert.True(t, cmd.Named)
	assert.Contains(t, cmd.SQL, "[t0].[Name] = @name OR [t0].[Name] <> @name")
	args, err := cmd.Args(map[string]ir.IRValue{"name": ir.IRString("Ann")})
	require.NoError(t, err)
	assert.Equal(t, []any{sql.Named("name", "Ann")}, args)
}

func TestCommand_ArgsMissingParameter(t *testing.T) {
	cmd := generate(t, SQLite, expr.From("Employee").Where(expr.Eq(expr.F("Name"), expr.P("name"))))

	_, err := cmd.Args(map[string]ir.IRValue{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingParameter))
	assert.Contains(t, err.Error(), "name")
}

func TestCommand_ArgsNullValue(t *testing.T) {
	cmd := &Command{Bindings: []Binding{{Name: "p", Param: true}}}
	args, err := cmd.Args(map[string]ir.IRValue{"p": ir.IRNull{}})
	require.NoError(t, err)
	assert.Equal(t, []any{nil}, args)
}

func TestGenerate_Connectives(t *testing.T) {
	a := &relational.Binary{Op: relational.OpEq, Left: &relational.Column{Name: "A"}, Right: &relational.Param{Name: "a"}}
	b := &relational.Binary{Op: relational.OpEq, Left: &relational.Column{Name: "B"}, Right: &relational.Param{Name: "b"}}
	c := &relational.IsNull{Operand: &relational.Column{Name: "C"}, Negated: true}

	sel := &relational.Select{
		From: &relational.Table{Name: "T"},
		Where: &relational.Binary{Op: relational.OpAnd,
			Left:  &relational.Binary{Op: relational.OpOr, Left: a, Right: b},
			Right: &relational.Binary{Op: relational.OpAnd, Left: c, Right: a},
		},
	}

	cmd, err := (&Generator{}).Generate(sel)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "T" WHERE ("A" = ? OR "B" = ?) AND "C" IS NOT NULL AND "A" = ?`, cmd.SQL)
}

func TestGenerate_QuotesIdentifiers(t *testing.T) {
	sel := &relational.Select{
		From:       &relational.Table{Name: `we"ird`, Schema: "s]1", Alias: "t0"},
		Projection: []*relational.Column{{Table: "t0", Name: "x"}},
	}

	cmd, err := DefaultFactory{}.Create(SQLite).Generate(sel)
	require.NoError(t, err)
	assert.Equal(t, `SELECT "t0"."x" FROM "s]1"."we""ird" AS "t0"`, cmd.SQL)

	cmd, err = DefaultFactory{}.Create(SQLServer).Generate(sel)
	require.NoError(t, err)
	assert.Equal(t, `SELECT [t0].[x] FROM [s]]1].[we"ird] AS [t0]`, cmd.SQL)
}

type customTable struct {
	relational.Table
}

type markingWriter struct{}

func (markingWriter) WriteTable(w *Writer, t relational.TableExpr) error {
	if _, ok := t.(*customTable); ok {
		w.WriteString("/* custom */ ")
	}
	return DefaultTableWriter{}.WriteTable(w, t)
}

func TestGenerate_TableWriterSlot(t *testing.T) {
	sel := &relational.Select{From: &relational.Join{
		Kind:  relational.InnerJoin,
		Left:  &customTable{Table: relational.Table{Name: "A", Alias: "t0"}},
		Right: &relational.Table{Name: "B", Alias: "t1"},
		On:    &relational.Binary{Op: relational.OpEq, Left: &relational.Column{Table: "t0", Name: "Id"}, Right: &relational.Column{Table: "t1", Name: "Id"}},
	}}

	cmd, err := (&Generator{Dialect: SQLite, Tables: markingWriter{}}).Generate(sel)
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM /* custom */ "A" AS "t0" INNER JOIN "B" AS "t1" ON "t0"."Id" = "t1"."Id"`, cmd.SQL)
}

type bogusSource struct{ relational.Subquery }

func TestGenerate_Errors(t *testing.T) {
	_, err := (&Generator{}).Generate(nil)
	assert.Error(t, err)

	_, err = (&Generator{}).Generate(&relational.Select{From: &bogusSource{}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedNode))
}

func TestParseDialect(t *testing.T) {
	tests := []struct {
		in   string
		want Dialect
	}{
		{"", SQLite},
		{"sqlite", SQLite},
		{"SQLite3", SQLite},
		{"sqlserver", SQLServer},
		{"MSSQL", SQLServer},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseDialect(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d)
		})
	}

	_, err := ParseDialect("oracle")
	assert.Error(t, err)
}
