// Package sqlite backs the data-query port with an embedded campus
// directory database. Tasks arrive as natural-language phrasings from the
// coordinators; a fixed translation table maps the known phrasings to SQL,
// and tasks prefixed with "Execute this exact SQL query: " run verbatim.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/campushq/concierge/pkg/ports"
	_ "modernc.org/sqlite"
)

const rawQueryPrefix = "Execute this exact SQL query: "

const schema = `
CREATE TABLE IF NOT EXISTS "Person" (
	"PersonId"     INTEGER PRIMARY KEY,
	"FirstName"    TEXT NOT NULL,
	"LastName"     TEXT NOT NULL,
	"EmailAddress" TEXT NOT NULL,
	"Department"   TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS "PsStudentAcademicRecord" (
	"RecordId"         INTEGER PRIMARY KEY,
	"PersonId"         INTEGER NOT NULL REFERENCES "Person"("PersonId"),
	"GPA"              REAL NOT NULL,
	"AcademicStanding" TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS "FinancialAid" (
	"AidId"    INTEGER PRIMARY KEY,
	"PersonId" INTEGER NOT NULL REFERENCES "Person"("PersonId"),
	"Status"   TEXT NOT NULL,
	"Amount"   REAL NOT NULL DEFAULT 0
);
`

// Directory implements ports.DataQueryPort over a SQLite campus directory.
type Directory struct {
	db *sql.DB
}

// Open creates or opens the directory database at path and ensures the
// schema exists. Use ":memory:" for an ephemeral database.
func Open(path string) (*Directory, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open directory database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply directory schema: %w", err)
	}
	return &Directory{db: db}, nil
}

// Close releases the database handle.
func (d *Directory) Close() error {
	return d.db.Close()
}

// DB exposes the handle for seeding and migrations.
func (d *Directory) DB() *sql.DB {
	return d.db
}

// Query resolves a task to SQL and executes it. Translation misses and SQL
// failures are reported in-band on the result, never as a transport error,
// so callers can degrade instead of aborting the turn.
func (d *Directory) Query(ctx context.Context, task string) (ports.QueryResult, error) {
	query, args, ok := translate(task)
	if !ok {
		return ports.QueryResult{
			Query: task,
			Err:   "unable to translate task to SQL: " + task,
		}, nil
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return ports.QueryResult{Query: query, Err: err.Error()}, nil
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return ports.QueryResult{Query: query, Err: err.Error()}, nil
	}

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return ports.QueryResult{Query: query, Err: err.Error()}, nil
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = normalizeValue(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return ports.QueryResult{Query: query, Err: err.Error()}, nil
	}

	return ports.QueryResult{Rows: out, Columns: columns, Query: query}, nil
}

// normalizeValue converts driver byte slices to strings so rows compare
// and serialize predictably.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

const studentEmails = `SELECT "Person"."EmailAddress" FROM "Person" JOIN "PsStudentAcademicRecord" ON "Person"."PersonId" = "PsStudentAcademicRecord"."PersonId"`

// translate maps a task phrasing to a SQL statement. The patterns cover the
// phrasings the coordinators and the recipient resolver emit.
func translate(task string) (query string, args []any, ok bool) {
	if raw, found := strings.CutPrefix(task, rawQueryPrefix); found {
		return raw, nil, true
	}

	t := strings.ToLower(task)
	switch {
	case strings.Contains(t, "distinct values in the academicstanding"):
		return `SELECT DISTINCT "AcademicStanding" FROM "PsStudentAcademicRecord"`, nil, true

	case strings.Contains(t, "academicstanding contains 'probation'"):
		return studentEmails + ` WHERE "PsStudentAcademicRecord"."AcademicStanding" LIKE '%Probation%'`, nil, true

	case strings.Contains(t, "gpa below 2.5"):
		return studentEmails + ` WHERE "PsStudentAcademicRecord"."GPA" < 2.5`, nil, true

	case strings.Contains(t, "gpa above 3.5"):
		return studentEmails + ` WHERE "PsStudentAcademicRecord"."GPA" > 3.5`, nil, true

	case strings.Contains(t, "distinct financial aid status"):
		return `SELECT DISTINCT "Status" FROM "FinancialAid"`, nil, true

	case strings.Contains(t, "received financial aid"):
		return `SELECT DISTINCT "Person"."EmailAddress" FROM "Person" JOIN "FinancialAid" ON "Person"."PersonId" = "FinancialAid"."PersonId" WHERE "FinancialAid"."Status" = 'Awarded'`, nil, true

	case strings.Contains(t, "available departments or programs"):
		return `SELECT DISTINCT "Department" FROM "Person" WHERE "Department" <> ''`, nil, true

	case strings.Contains(t, "students in the "):
		// The remainder of the task names the department, e.g.
		// "...students in the Biology department".
		_, after, _ := strings.Cut(task, "students in the ")
		dept := strings.TrimSuffix(strings.TrimSpace(after), " department")
		return studentEmails + ` WHERE instr(lower(?), lower("Person"."Department")) > 0 AND "Person"."Department" <> ''`,
			[]any{dept}, true

	case strings.Contains(t, "all current students"):
		return studentEmails, nil, true

	case strings.Contains(t, "average gpa") || strings.Contains(t, "gpa statistics"):
		return `SELECT COUNT(*) AS "Students", ROUND(AVG("GPA"), 2) AS "AverageGPA", MIN("GPA") AS "MinGPA", MAX("GPA") AS "MaxGPA" FROM "PsStudentAcademicRecord"`, nil, true

	case strings.Contains(t, "enrollment by department") || strings.Contains(t, "students per department"):
		return `SELECT "Department", COUNT(*) AS "Students" FROM "Person" JOIN "PsStudentAcademicRecord" ON "Person"."PersonId" = "PsStudentAcademicRecord"."PersonId" GROUP BY "Department" ORDER BY "Students" DESC`, nil, true

	case strings.Contains(t, "how many students") || strings.Contains(t, "count of students") || strings.Contains(t, "number of students"):
		return `SELECT COUNT(*) AS "Students" FROM "PsStudentAcademicRecord"`, nil, true
	}

	return "", nil, false
}

// Seed loads a small representative dataset. Existing rows are replaced.
func (d *Directory) Seed(ctx context.Context) error {
	stmts := []string{
		`DELETE FROM "FinancialAid"`,
		`DELETE FROM "PsStudentAcademicRecord"`,
		`DELETE FROM "Person"`,

		`INSERT INTO "Person" ("PersonId", "FirstName", "LastName", "EmailAddress", "Department") VALUES
			(1, 'Ana', 'Nguyen', 'a.nguyen@university.edu', 'Biology'),
			(2, 'Marcus', 'Webb', 'm.webb@university.edu', 'Biology'),
			(3, 'Priya', 'Shah', 'p.shah@university.edu', 'Nursing'),
			(4, 'Diego', 'Alvarez', 'd.alvarez@university.edu', 'Business'),
			(5, 'Lena', 'Kowalski', 'l.kowalski@university.edu', 'Nursing'),
			(6, 'Sam', 'Okafor', 's.okafor@university.edu', 'Business')`,

		`INSERT INTO "PsStudentAcademicRecord" ("RecordId", "PersonId", "GPA", "AcademicStanding") VALUES
			(1, 1, 3.8, 'Good Standing'),
			(2, 2, 2.1, 'Academic Probation'),
			(3, 3, 3.2, 'Good Standing'),
			(4, 4, 1.9, 'Academic Probation'),
			(5, 5, 2.7, 'Good Standing'),
			(6, 6, 3.6, 'Dean''s List')`,

		`INSERT INTO "FinancialAid" ("AidId", "PersonId", "Status", "Amount") VALUES
			(1, 2, 'Awarded', 4200),
			(2, 3, 'Awarded', 3100),
			(3, 4, 'Pending', 0)`,
	}

	for _, stmt := range stmts {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("seed directory: %w", err)
		}
	}
	return nil
}

var _ ports.DataQueryPort = (*Directory)(nil)
