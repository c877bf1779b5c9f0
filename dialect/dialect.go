// Package dialect abstracts the SQL differences between the supported
// backends: placeholder style, identifier quoting, paging envelopes and
// how generated keys are read back.
package dialect

import (
	"fmt"
	"strings"
)

// Platform names a supported backend.
type Platform string

// Supported platforms.
const (
	MySQL    Platform = "mysql"
	Postgres Platform = "postgres"
	SQLite   Platform = "sqlite"
	Oracle   Platform = "oracle"
	MSSQL    Platform = "mssql"
)

// Dialect renders backend-specific SQL fragments. Implementations are
// stateless and safe for concurrent use.
type Dialect interface {
	// Platform returns the backend this dialect serves.
	Platform() Platform
	// Placeholder returns the bind marker for the n-th parameter,
	// 1-based.
	Placeholder(n int) string
	// Quote wraps an identifier in the backend quoting style. Dotted
	// identifiers are quoted per part.
	Quote(ident string) string
	// Page wraps or suffixes query with the backend paging form.
	// limit <= 0 means unlimited, offset <= 0 means from the start.
	Page(query string, limit, offset int64) string
	// InsertSuffix returns the clause appended to an INSERT so the
	// generated key comes back as a result row, or "" when the key is
	// read from the driver result instead.
	InsertSuffix(idColumn string) string
	// InsertOutput returns the clause placed between the column list
	// and VALUES so the generated key comes back as a result row, or ""
	// when the backend has no such form.
	InsertOutput(idColumn string) string
	// Upsert returns the conflict clause appended to an INSERT to turn
	// it into an insert-or-update on the key column, or "" when the
	// backend has no such suffix form.
	Upsert(idColumn string, updateColumns []string) string
	// ResultLastID reports whether the driver result carries the
	// generated key.
	ResultLastID() bool
	// CurrentTimestamp returns the backend literal for the current
	// time.
	CurrentTimestamp() string
	// DriverName returns the default database/sql driver name.
	DriverName() string
}

// Lookup returns the dialect for the platform.
func Lookup(p Platform) (Dialect, error) {
	switch p {
	case MySQL:
		return mysqlDialect{}, nil
	case Postgres:
		return postgresDialect{}, nil
	case SQLite:
		return sqliteDialect{}, nil
	case Oracle:
		return oracleDialect{}, nil
	case MSSQL:
		return mssqlDialect{}, nil
	}
	return nil, fmt.Errorf("mappa: unsupported platform %q", string(p))
}

// quoteParts quotes each dot-separated identifier part with the given
// open and close runes.
func quoteParts(ident, open, close string) string {
	parts := strings.Split(ident, ".")
	for i, p := range parts {
		if p == "*" {
			continue
		}
		parts[i] = open + p + close
	}
	return strings.Join(parts, ".")
}

// conflictUpdate renders the shared ON CONFLICT clause of the dialects
// supporting it.
func conflictUpdate(d Dialect, idColumn string, updateColumns []string) string {
	if len(updateColumns) == 0 {
		return ""
	}
	out := " ON CONFLICT (" + d.Quote(idColumn) + ") DO UPDATE SET "
	for i, c := range updateColumns {
		if i > 0 {
			out += ", "
		}
		out += d.Quote(c) + " = EXCLUDED." + d.Quote(c)
	}
	return out
}

// hasOrderBy reports whether the statement carries a top-level ORDER BY.
// A containment check suffices for the statements the builder produces.
func hasOrderBy(query string) bool {
	return strings.Contains(strings.ToUpper(query), "ORDER BY")
}
