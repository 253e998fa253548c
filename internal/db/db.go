// Package db owns the connection pool and the schema-evolution routine
// described in spec §4.3: rather than a migration-file runner, startup
// compares a declared "expected columns per table" map against the
// introspected schema and issues additive ALTER TABLE statements for
// whatever is missing. It never drops or renames a column.
package db

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"
)

// Connect opens the connection pool and verifies it with a ping.
func Connect(databaseURL string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}

	log.Println("database connected")
	return conn, nil
}

// column is one declared column of the expected schema.
type column struct {
	name string
	sqlType string
}

// baseline is the minimal CREATE TABLE issued the first time a table is
// seen; every other column is added on top of it by EnsureSchema, so a
// fresh database and an old database converge on the same shape.
var baseline = map[string]string{
	"tracking_records": `CREATE TABLE IF NOT EXISTS tracking_records (
		id UUID PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	"search_results": `CREATE TABLE IF NOT EXISTS search_results (
		id UUID PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	"submissions": `CREATE TABLE IF NOT EXISTS submissions (
		id UUID PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	"library_entries": `CREATE TABLE IF NOT EXISTS library_entries (
		id UUID PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	"credentials": `CREATE TABLE IF NOT EXISTS credentials (
		id UUID PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// expectedColumns is the declared schema: every column each table must
// have, beyond the id/created_at pair every baseline already carries.
var expectedColumns = map[string][]column{
	"tracking_records": {
		{"olid", "TEXT NOT NULL DEFAULT ''"},
		{"title", "TEXT NOT NULL DEFAULT ''"},
		{"publisher", "TEXT"},
		{"issn", "TEXT"},
		{"first_publish_year", "INTEGER"},
		{"total_editions_known", "INTEGER NOT NULL DEFAULT 0"},
		{"language", "TEXT NOT NULL DEFAULT 'English'"},
		{"category", "TEXT NOT NULL DEFAULT 'Magazines'"},
		{"track_all_editions", "BOOLEAN NOT NULL DEFAULT FALSE"},
		{"track_new_only", "BOOLEAN NOT NULL DEFAULT FALSE"},
		{"selected_editions", "JSONB NOT NULL DEFAULT '{}'"},
		{"selected_years", "JSONB NOT NULL DEFAULT '[]'"},
		{"delete_from_client_on_completion", "BOOLEAN NOT NULL DEFAULT FALSE"},
		{"periodical_metadata", "JSONB NOT NULL DEFAULT '{}'"},
		{"updated_at", "TIMESTAMPTZ NOT NULL DEFAULT NOW()"},
	},
	"search_results": {
		{"tracking_id", "UUID NOT NULL"},
		{"provider", "TEXT NOT NULL DEFAULT ''"},
		{"query", "TEXT NOT NULL DEFAULT ''"},
		{"title", "TEXT NOT NULL DEFAULT ''"},
		{"url", "TEXT NOT NULL DEFAULT ''"},
		{"publication_date", "TIMESTAMPTZ"},
		{"raw_metadata", "JSONB NOT NULL DEFAULT '{}'"},
		{"fuzzy_match_group_id", "TEXT NOT NULL DEFAULT ''"},
	},
	"submissions": {
		{"tracking_id", "UUID NOT NULL"},
		{"search_result_id", "UUID"},
		{"status", "TEXT NOT NULL DEFAULT 'pending'"},
		{"job_id", "TEXT"},
		{"source_url", "TEXT NOT NULL DEFAULT ''"},
		{"result_title", "TEXT NOT NULL DEFAULT ''"},
		{"fuzzy_match_group", "TEXT NOT NULL DEFAULT ''"},
		{"client_name", "TEXT NOT NULL DEFAULT ''"},
		{"attempt_count", "INTEGER NOT NULL DEFAULT 0"},
		{"last_error", "TEXT"},
		{"file_path", "TEXT"},
		{"updated_at", "TIMESTAMPTZ NOT NULL DEFAULT NOW()"},
	},
	"library_entries": {
		{"title", "TEXT NOT NULL DEFAULT ''"},
		{"language", "TEXT NOT NULL DEFAULT 'English'"},
		{"publisher", "TEXT"},
		{"issn", "TEXT"},
		{"issue_date", "TIMESTAMPTZ NOT NULL DEFAULT NOW()"},
		{"file_path", "TEXT NOT NULL DEFAULT ''"},
		{"cover_path", "TEXT"},
		{"extra_metadata", "JSONB NOT NULL DEFAULT '{}'"},
		{"updated_at", "TIMESTAMPTZ NOT NULL DEFAULT NOW()"},
	},
	"credentials": {
		{"username", "TEXT NOT NULL DEFAULT ''"},
		{"password_hash", "TEXT NOT NULL DEFAULT ''"},
		{"updated_at", "TIMESTAMPTZ NOT NULL DEFAULT NOW()"},
	},
}

// EnsureSchema runs the additive schema-evolution routine described in
// spec §4.3: create any missing table with its baseline shape, then diff
// the introspected columns of every declared table against
// expectedColumns and ALTER in whatever is missing. It never drops or
// renames a column, so it is safe to run on every startup.
func EnsureSchema(conn *sql.DB) error {
	for table, createSQL := range baseline {
		if _, err := conn.Exec(createSQL); err != nil {
			return fmt.Errorf("create table %s: %w", table, err)
		}
	}

	for table, columns := range expectedColumns {
		existing, err := introspectColumns(conn, table)
		if err != nil {
			return fmt.Errorf("introspect %s: %w", table, err)
		}
		for _, col := range columns {
			if existing[col.name] {
				continue
			}
			stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN IF NOT EXISTS %s %s", table, col.name, col.sqlType)
			if _, err := conn.Exec(stmt); err != nil {
				return fmt.Errorf("add column %s.%s: %w", table, col.name, err)
			}
			log.Printf("db: added column %s.%s", table, col.name)
		}
	}

	return nil
}

// introspectColumns returns the set of column names currently present on
// table, read from the Postgres information_schema.
func introspectColumns(conn *sql.DB, table string) (map[string]bool, error) {
	rows, err := conn.Query(
		`SELECT column_name FROM information_schema.columns WHERE table_name = $1`,
		table,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	existing := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		existing[name] = true
	}
	return existing, rows.Err()
}
