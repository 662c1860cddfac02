package nullability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/temporalq/internal/ir"
	"github.com/roach88/temporalq/internal/relational"
)

type taggedTable struct {
	relational.Table
	tag string
}

// keepTagged mimics an override that preserves annotated tables.
type keepTagged struct{}

func (keepTagged) VisitTable(t relational.TableExpr) relational.TableExpr {
	if _, ok := t.(*taggedTable); ok {
		return t
	}
	return DefaultTableVisitor{}.VisitTable(t)
}

func col(name string) *relational.Column { return &relational.Column{Table: "t0", Name: name} }

func selectWhere(where relational.Scalar) *relational.Select {
	return &relational.Select{
		From:       &relational.Table{Name: "Employees", Alias: "t0", Entity: "Employee"},
		Where:      where,
		Projection: []*relational.Column{col("Id")},
	}
}

func TestProcess_NullLiteralComparisons(t *testing.T) {
	tests := []struct {
		name  string
		where relational.Scalar
		want  string
	}{
		{"eq null", &relational.Binary{Op: relational.OpEq, Left: col("Name"), Right: &relational.Literal{Value: ir.IRNull{}}}, "t0.Name IS NULL"},
		{"ne null", &relational.Binary{Op: relational.OpNe, Left: col("Name"), Right: &relational.Literal{Value: ir.IRNull{}}}, "t0.Name IS NOT NULL"},
		{"null on left", &relational.Binary{Op: relational.OpEq, Left: &relational.Literal{Value: ir.IRNull{}}, Right: col("Name")}, "t0.Name IS NULL"},
		{"true and", &relational.Binary{Op: relational.OpAnd, Left: &relational.Literal{Value: ir.IRBool(true)}, Right: &relational.Binary{Op: relational.OpGt, Left: col("Salary"), Right: &relational.Param{Name: "min"}}}, "(t0.Salary > @min)"},
		{"and true", &relational.Binary{Op: relational.OpAnd, Left: &relational.Binary{Op: relational.OpGt, Left: col("Salary"), Right: &relational.Param{Name: "min"}}, Right: &relational.Literal{Value: ir.IRBool(true)}}, "(t0.Salary > @min)"},
		{"lone true", &relational.Literal{Value: ir.IRBool(true)}, "TRUE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, canCache, err := DefaultFactory{}.Create(false).Process(selectWhere(tt.where), nil)
			require.NoError(t, err)
			assert.True(t, canCache)
			assert.Equal(t, tt.want, relational.FormatScalar(out.Where))
		})
	}
}

func TestProcess_NullParameter(t *testing.T) {
	where := &relational.Binary{Op: relational.OpEq, Left: col("Name"), Right: &relational.Param{Name: "name"}}

	out, canCache, err := DefaultFactory{}.Create(false).Process(selectWhere(where), map[string]ir.IRValue{"name": ir.IRNull{}})
	require.NoError(t, err)
	assert.False(t, canCache)
	assert.Equal(t, "t0.Name IS NULL", relational.FormatScalar(out.Where))

	out, canCache, err = DefaultFactory{}.Create(false).Process(selectWhere(where), map[string]ir.IRValue{"name": ir.IRString("Ann")})
	require.NoError(t, err)
	assert.True(t, canCache)
	assert.Equal(t, "(t0.Name = @name)", relational.FormatScalar(out.Where))
}

func TestProcess_RelationalNullsKeepsParameterComparison(t *testing.T) {
	where := &relational.Binary{Op: relational.OpEq, Left: col("Name"), Right: &relational.Param{Name: "name"}}

	out, canCache, err := DefaultFactory{}.Create(true).Process(selectWhere(where), map[string]ir.IRValue{"name": ir.IRNull{}})
	require.NoError(t, err)
	assert.True(t, canCache)
	assert.Equal(t, "(t0.Name = @name)", relational.FormatScalar(out.Where))
}

func TestProcess_DoesNotMutateInput(t *testing.T) {
	where := &relational.Binary{Op: relational.OpEq, Left: col("Name"), Right: &relational.Literal{Value: ir.IRNull{}}}
	in := selectWhere(where)

	out, _, err := DefaultFactory{}.Create(false).Process(in, nil)
	require.NoError(t, err)
	assert.Same(t, where, in.Where)
	assert.NotSame(t, in, out)
	assert.NotSame(t, in.Projection[0], out.Projection[0])
}

func TestDefaultTableVisitor_DropsAnnotations(t *testing.T) {
	tagged := &taggedTable{Table: relational.Table{Name: "Employees", Alias: "t0", Entity: "Employee"}, tag: "x"}

	out := DefaultTableVisitor{}.VisitTable(tagged)
	plain, ok := out.(*relational.Table)
	require.True(t, ok)
	assert.Equal(t, &relational.Table{Name: "Employees", Alias: "t0", Entity: "Employee"}, plain)
}

func TestProcess_RecursesThroughEverySource(t *testing.T) {
	tagged := &taggedTable{Table: relational.Table{Name: "Departments", Alias: "t1"}, tag: "x"}
	exists := &relational.Exists{Select: &relational.Select{
		From:  &relational.Table{Name: "Projects", Alias: "t2"},
		Where: &relational.Binary{Op: relational.OpEq, Left: &relational.Column{Table: "t2", Name: "Lead"}, Right: &relational.Literal{Value: ir.IRNull{}}},
	}}
	sel := &relational.Select{
		From: &relational.Join{
			Kind:  relational.LeftJoin,
			Left:  &relational.Table{Name: "Employees", Alias: "t0"},
			Right: &relational.Subquery{Alias: "s0", Select: &relational.Select{From: tagged}},
			On:    &relational.Binary{Op: relational.OpEq, Left: col("DepartmentId"), Right: &relational.Column{Table: "s0", Name: "Id"}},
		},
		Where: exists,
	}

	out, _, err := (&Processor{Tables: keepTagged{}}).Process(sel, nil)
	require.NoError(t, err)

	tables := relational.Tables(out)
	require.Len(t, tables, 3)
	assert.Same(t, tagged, tables[1])
	assert.Equal(t, "t2.Lead IS NULL", relational.FormatScalar(out.Where.(*relational.Exists).Select.Where))
}

func TestProcess_SetOperation(t *testing.T) {
	sel := &relational.Select{From: &relational.SetOperation{
		Kind:  relational.Union,
		Left:  &relational.Select{From: &relational.Table{Name: "A", Alias: "t0"}},
		Right: &relational.Select{From: &relational.Table{Name: "B", Alias: "t1"}},
		Alias: "s0",
	}}

	out, _, err := (&Processor{}).Process(sel, nil)
	require.NoError(t, err)
	op := out.From.(*relational.SetOperation)
	assert.Equal(t, relational.Union, op.Kind)
	assert.Equal(t, "s0", op.Alias)
	assert.Len(t, relational.Tables(out), 2)
}
