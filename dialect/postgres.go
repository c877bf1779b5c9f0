package dialect

import "fmt"

type postgresDialect struct{}

var _ Dialect = postgresDialect{}

func (postgresDialect) Platform() Platform { return Postgres }

func (postgresDialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

func (postgresDialect) Quote(ident string) string { return quoteParts(ident, `"`, `"`) }

func (postgresDialect) Page(query string, limit, offset int64) string {
	if limit > 0 {
		query = fmt.Sprintf("%s LIMIT %d", query, limit)
	}
	if offset > 0 {
		query = fmt.Sprintf("%s OFFSET %d", query, offset)
	}
	return query
}

// PostgreSQL drivers do not surface LastInsertId; the generated key is
// read back through RETURNING.
func (d postgresDialect) InsertSuffix(idColumn string) string {
	return " RETURNING " + d.Quote(idColumn)
}

func (postgresDialect) InsertOutput(string) string { return "" }

func (d postgresDialect) Upsert(idColumn string, updateColumns []string) string {
	return conflictUpdate(d, idColumn, updateColumns)
}

func (postgresDialect) ResultLastID() bool { return false }

func (postgresDialect) CurrentTimestamp() string { return "NOW()" }

func (postgresDialect) DriverName() string { return "postgres" }
