package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/temporalq/internal/ir"
	"github.com/roach88/temporalq/internal/sqlgen"
	"github.com/roach88/temporalq/internal/testutil"
)

// createTestStore creates a migrated store backed by a temp file.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background(), testutil.HRModel(t)))
	return s
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	defer s.Close()

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestOpen_Pragmas(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer s.Close()

	assert.NoError(t, s.verifyPragma("journal_mode", "wal"))
	assert.NoError(t, s.verifyPragma("synchronous", "1"))
	assert.NoError(t, s.verifyPragma("busy_timeout", "5000"))
	assert.NoError(t, s.verifyPragma("foreign_keys", "1"))
	assert.NoError(t, s.verifyPragma("user_version", "1"))
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	for i := 0; i < 3; i++ {
		s, err := Open(path)
		require.NoError(t, err, "iteration %d", i)
		require.NoError(t, s.Close())
	}
}

func TestClose_NilDB(t *testing.T) {
	assert.NoError(t, (&Store{}).Close())
}

func TestMigrate_CreatesTables(t *testing.T) {
	s := createTestStore(t)

	tables, err := s.Tables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []TableInfo{
		{Name: "Departments", Entity: "Department", Kind: KindCurrent},
		{Name: "DepartmentsHistory", Entity: "Department", Kind: KindHistory},
		{Name: "Employees", Entity: "Employee", Kind: KindCurrent},
		{Name: "EmployeesHistory", Entity: "Employee", Kind: KindHistory},
		{Name: "ref.Countries", Entity: "Country", Kind: KindPlain},
	}, tables)

	// Repeating the migration is a no-op.
	require.NoError(t, s.Migrate(context.Background(), testutil.HRModel(t)))
	again, err := s.Tables(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tables, again)
}

func TestMigrate_InMemory(t *testing.T) {
	s, err := Open(":memory:")
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Migrate(ctx, testutil.HRModel(t)))
	require.NoError(t, s.Insert(ctx, "ref.Countries", ir.IRObject{"Code": ir.IRString("NZ"), "Name": ir.IRString("New Zealand")}))

	rows, err := s.Query(ctx, &sqlgen.Command{SQL: `SELECT "Name" FROM "ref"."Countries"`}, nil)
	require.NoError(t, err)
	assert.Equal(t, []ir.IRObject{{"Name": ir.IRString("New Zealand")}}, rows)
}

func TestInsert_Errors(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := s.Insert(ctx, "Employees", ir.IRObject{})
	assert.ErrorContains(t, err, "empty row")

	err = s.Insert(ctx, "Employees", ir.IRObject{"Id": ir.IRObject{}})
	assert.ErrorContains(t, err, "column Id")

	err = s.Insert(ctx, "Missing", ir.IRObject{"Id": ir.IRInt(1)})
	assert.ErrorContains(t, err, "insert into Missing")
}

func TestUpsert_MovesPreviousVersionToHistory(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	emp, _ := testutil.HRModel(t).Entity("Employee")

	row := ir.IRObject{"Id": ir.IRInt(1), "Name": ir.IRString("Alice"), "Salary": ir.IRInt(100), "DepartmentId": ir.IRInt(10)}
	require.NoError(t, s.Upsert(ctx, emp, row, "2024-01-01T00:00:00.000000Z"))

	row["Salary"] = ir.IRInt(200)
	require.NoError(t, s.Upsert(ctx, emp, row, "2024-06-01T00:00:00.000000Z"))

	current, err := s.Query(ctx, &sqlgen.Command{SQL: `SELECT "Salary", "ValidFrom", "ValidTo" FROM "Employees"`}, nil)
	require.NoError(t, err)
	assert.Equal(t, []ir.IRObject{{
		"Salary":    ir.IRInt(200),
		"ValidFrom": ir.IRString("2024-06-01T00:00:00.000000Z"),
		"ValidTo":   ir.IRString(MaxTime),
	}}, current)

	history, err := s.Query(ctx, &sqlgen.Command{SQL: `SELECT "Salary", "ValidFrom", "ValidTo" FROM "EmployeesHistory"`}, nil)
	require.NoError(t, err)
	assert.Equal(t, []ir.IRObject{{
		"Salary":    ir.IRInt(100),
		"ValidFrom": ir.IRString("2024-01-01T00:00:00.000000Z"),
		"ValidTo":   ir.IRString("2024-06-01T00:00:00.000000Z"),
	}}, history)
}

func TestUpsert_ClosesEachVersionAtNextStart(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	emp, _ := testutil.HRModel(t).Entity("Employee")
	clock := testutil.NewDeterministicClock()

	var starts []ir.IRString
	for salary := int64(100); salary <= 400; salary += 100 {
		at := clock.NextValue()
		starts = append(starts, at)
		row := ir.IRObject{"Id": ir.IRInt(1), "Name": ir.IRString("Alice"), "Salary": ir.IRInt(salary), "DepartmentId": ir.IRInt(10)}
		require.NoError(t, s.Upsert(ctx, emp, row, at))
	}

	history, err := s.Query(ctx, &sqlgen.Command{SQL: `SELECT "ValidFrom", "ValidTo" FROM "EmployeesHistory" ORDER BY "ValidFrom"`}, nil)
	require.NoError(t, err)
	require.Len(t, history, 3)
	for i, h := range history {
		assert.Equal(t, starts[i], h["ValidFrom"])
		assert.Equal(t, starts[i+1], h["ValidTo"])
	}
}

func TestUpsert_PlainEntityReplaces(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	country, _ := testutil.HRModel(t).Entity("Country")

	require.NoError(t, s.Upsert(ctx, country, ir.IRObject{"Code": ir.IRString("NZ"), "Name": ir.IRString("NZ")}, ""))
	require.NoError(t, s.Upsert(ctx, country, ir.IRObject{"Code": ir.IRString("NZ"), "Name": ir.IRString("Aotearoa")}, ""))

	rows, err := s.Query(ctx, &sqlgen.Command{SQL: `SELECT "Name" FROM "ref"."Countries"`}, nil)
	require.NoError(t, err)
	assert.Equal(t, []ir.IRObject{{"Name": ir.IRString("Aotearoa")}}, rows)
}

func TestUpsert_MissingKey(t *testing.T) {
	s := createTestStore(t)
	emp, _ := testutil.HRModel(t).Entity("Employee")

	err := s.Upsert(context.Background(), emp, ir.IRObject{"Name": ir.IRString("x")}, "2024-01-01T00:00:00.000000Z")
	assert.ErrorContains(t, err, "row has no Id")
}

func TestQuery_EmptyResultIsNotNil(t *testing.T) {
	s := createTestStore(t)

	rows, err := s.Query(context.Background(), &sqlgen.Command{SQL: `SELECT * FROM "Employees"`}, nil)
	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestQuery_Errors(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := s.Query(ctx, &sqlgen.Command{SQL: "SELECT 1", Named: true}, nil)
	assert.ErrorContains(t, err, "named parameters")

	_, err = s.Query(ctx, &sqlgen.Command{
		SQL:      "SELECT ?",
		Bindings: []sqlgen.Binding{{Name: "p", Param: true}},
	}, nil)
	assert.ErrorIs(t, err, sqlgen.ErrMissingParameter)

	_, err = s.Query(ctx, &sqlgen.Command{SQL: "SELECT * FROM nowhere"}, nil)
	assert.ErrorContains(t, err, "query:")
}
