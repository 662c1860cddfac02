package testutil

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/temporalq/internal/model"
)

// HRSource is a small human-resources model: two system-versioned entities
// linked by navigations and one plain reference entity.
const HRSource = `
entity: Employee: {
	table: "Employees"
	key:   "Id"
	columns: {
		Id:           int
		Name:         string
		Salary:       int
		DepartmentId: int
	}
	temporal: {history: "EmployeesHistory", start: "ValidFrom", end: "ValidTo"}
	navigation: Department: {target: "Department", foreignKey: "DepartmentId"}
}

entity: Department: {
	table: "Departments"
	key:   "Id"
	columns: {
		Id:   int
		Name: string
	}
	temporal: true
	navigation: Employees: {target: "Employee", foreignKey: "DepartmentId", collection: true}
}

entity: Country: {
	table:  "Countries"
	schema: "ref"
	key:    "Code"
	columns: {
		Code: string
		Name: string
	}
}
`

// HRModel compiles HRSource, failing the test on error.
func HRModel(t testing.TB) *model.Model {
	t.Helper()
	m, err := model.CompileString(HRSource)
	require.NoError(t, err)
	return m
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
