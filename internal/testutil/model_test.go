package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHRModel(t *testing.T) {
	m := HRModel(t)

	emp, ok := m.Entity("Employee")
	require.True(t, ok)
	assert.True(t, emp.IsTemporal())
	assert.Equal(t, "EmployeesHistory", emp.Temporal.History)

	dept, ok := m.Entity("Department")
	require.True(t, ok)
	assert.Equal(t, "DepartmentsHistory", dept.Temporal.History)

	country, ok := m.Entity("Country")
	require.True(t, ok)
	assert.False(t, country.IsTemporal())
}

func TestDiscardLogger(t *testing.T) {
	assert.NotPanics(t, func() { DiscardLogger().Warn("dropped", "k", "v") })
}
