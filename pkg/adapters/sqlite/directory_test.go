package sqlite_test

import (
	"context"
	"testing"

	"github.com/campushq/concierge/pkg/adapters/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeededDirectory(t *testing.T) *sqlite.Directory {
	t.Helper()
	dir, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = dir.Close() })
	require.NoError(t, dir.Seed(context.Background()))
	return dir
}

func emails(rows []map[string]any) []string {
	var out []string
	for _, row := range rows {
		if s, ok := row["EmailAddress"].(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func TestQuery_ProbationStanding(t *testing.T) {
	dir := newSeededDirectory(t)

	result, err := dir.Query(context.Background(),
		"Find email addresses of all students whose AcademicStanding contains 'Probation' or is exactly 'Probation'")
	require.NoError(t, err)
	require.False(t, result.Failed())

	assert.ElementsMatch(t,
		[]string{"m.webb@university.edu", "d.alvarez@university.edu"},
		emails(result.Rows))
}

func TestQuery_DistinctStanding(t *testing.T) {
	dir := newSeededDirectory(t)

	result, err := dir.Query(context.Background(),
		"Find all distinct values in the AcademicStanding column of the PsStudentAcademicRecord table")
	require.NoError(t, err)
	require.False(t, result.Failed())
	assert.Len(t, result.Rows, 3)
	// Exploration results carry no addresses.
	assert.Empty(t, emails(result.Rows))
}

func TestQuery_FinancialAid(t *testing.T) {
	dir := newSeededDirectory(t)

	result, err := dir.Query(context.Background(),
		"Find email addresses of all students who have received financial aid")
	require.NoError(t, err)
	require.False(t, result.Failed())
	assert.ElementsMatch(t,
		[]string{"m.webb@university.edu", "p.shah@university.edu"},
		emails(result.Rows))
}

func TestQuery_DepartmentSubstringMatch(t *testing.T) {
	dir := newSeededDirectory(t)

	result, err := dir.Query(context.Background(),
		"Find email addresses of all students in the Nursing department")
	require.NoError(t, err)
	require.False(t, result.Failed())
	assert.ElementsMatch(t,
		[]string{"p.shah@university.edu", "l.kowalski@university.edu"},
		emails(result.Rows))
}

func TestQuery_RawSQLPassthrough(t *testing.T) {
	dir := newSeededDirectory(t)

	raw := `SELECT "Person"."EmailAddress"
FROM "Person"
JOIN "PsStudentAcademicRecord" ON "Person"."PersonId" = "PsStudentAcademicRecord"."PersonId"
WHERE "PsStudentAcademicRecord"."GPA" < 2.5;`
	result, err := dir.Query(context.Background(), "Execute this exact SQL query: "+raw)
	require.NoError(t, err)
	require.False(t, result.Failed())
	assert.ElementsMatch(t,
		[]string{"m.webb@university.edu", "d.alvarez@university.edu"},
		emails(result.Rows))
}

func TestQuery_AggregateStatistics(t *testing.T) {
	dir := newSeededDirectory(t)

	result, err := dir.Query(context.Background(), "Show the average GPA across all students")
	require.NoError(t, err)
	require.False(t, result.Failed())
	require.Len(t, result.Rows, 1)
	assert.EqualValues(t, 6, result.Rows[0]["Students"])
}

func TestQuery_UntranslatableTaskFailsInBand(t *testing.T) {
	dir := newSeededDirectory(t)

	result, err := dir.Query(context.Background(), "What is the meaning of life?")
	require.NoError(t, err)
	assert.True(t, result.Failed())
	assert.Contains(t, result.Err, "unable to translate")
}

func TestQuery_SQLErrorFailsInBand(t *testing.T) {
	dir := newSeededDirectory(t)

	result, err := dir.Query(context.Background(),
		"Execute this exact SQL query: SELECT * FROM no_such_table")
	require.NoError(t, err)
	assert.True(t, result.Failed())
	assert.NotEmpty(t, result.Err)
}
