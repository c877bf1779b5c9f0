package dialect

import "fmt"

type mssqlDialect struct{}

var _ Dialect = mssqlDialect{}

func (mssqlDialect) Platform() Platform { return MSSQL }

func (mssqlDialect) Placeholder(n int) string { return fmt.Sprintf("@p%d", n) }

func (mssqlDialect) Quote(ident string) string { return quoteParts(ident, "[", "]") }

// OFFSET ... FETCH requires an ORDER BY; a positional ORDER BY 1 is
// injected when the query has none.
func (mssqlDialect) Page(query string, limit, offset int64) string {
	if limit <= 0 && offset <= 0 {
		return query
	}
	if !hasOrderBy(query) {
		query += " ORDER BY 1"
	}
	if offset < 0 {
		offset = 0
	}
	query = fmt.Sprintf("%s OFFSET %d ROWS", query, offset)
	if limit > 0 {
		query = fmt.Sprintf("%s FETCH NEXT %d ROWS ONLY", query, limit)
	}
	return query
}

func (mssqlDialect) InsertSuffix(string) string { return "" }

// SQL Server drivers do not surface LastInsertId; the generated key is
// read back through OUTPUT INSERTED.
func (d mssqlDialect) InsertOutput(idColumn string) string {
	return " OUTPUT INSERTED." + d.Quote(idColumn)
}

// SQL Server upserts need a MERGE statement, not an INSERT suffix.
func (mssqlDialect) Upsert(string, []string) string { return "" }

func (mssqlDialect) ResultLastID() bool { return false }

func (mssqlDialect) CurrentTimestamp() string { return "SYSUTCDATETIME()" }

func (mssqlDialect) DriverName() string { return "sqlserver" }
