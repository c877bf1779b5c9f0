package dialect

import "fmt"

type sqliteDialect struct{}

var _ Dialect = sqliteDialect{}

func (sqliteDialect) Platform() Platform { return SQLite }

func (sqliteDialect) Placeholder(int) string { return "?" }

func (sqliteDialect) Quote(ident string) string { return quoteParts(ident, `"`, `"`) }

// SQLite accepts LIMIT -1 to mean all rows, needed when only an offset
// is requested.
func (sqliteDialect) Page(query string, limit, offset int64) string {
	switch {
	case limit > 0 && offset > 0:
		return fmt.Sprintf("%s LIMIT %d OFFSET %d", query, limit, offset)
	case limit > 0:
		return fmt.Sprintf("%s LIMIT %d", query, limit)
	case offset > 0:
		return fmt.Sprintf("%s LIMIT -1 OFFSET %d", query, offset)
	}
	return query
}

func (sqliteDialect) InsertSuffix(string) string { return "" }

func (sqliteDialect) InsertOutput(string) string { return "" }

func (d sqliteDialect) Upsert(idColumn string, updateColumns []string) string {
	return conflictUpdate(d, idColumn, updateColumns)
}

func (sqliteDialect) ResultLastID() bool { return true }

func (sqliteDialect) CurrentTimestamp() string { return "CURRENT_TIMESTAMP" }

func (sqliteDialect) DriverName() string { return "sqlite" }
