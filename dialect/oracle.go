package dialect

import "fmt"

type oracleDialect struct{}

var _ Dialect = oracleDialect{}

func (oracleDialect) Platform() Platform { return Oracle }

func (oracleDialect) Placeholder(n int) string { return fmt.Sprintf(":%d", n) }

func (oracleDialect) Quote(ident string) string { return quoteParts(ident, `"`, `"`) }

// Pre-12c paging: a ROWNUM envelope. The inner query keeps its ORDER BY
// so row numbering follows the requested order.
func (oracleDialect) Page(query string, limit, offset int64) string {
	if limit <= 0 && offset <= 0 {
		return query
	}
	if offset <= 0 {
		return fmt.Sprintf("SELECT * FROM (%s) WHERE ROWNUM <= %d", query, limit)
	}
	upper := offset + limit
	if limit <= 0 {
		return fmt.Sprintf(
			"SELECT * FROM (SELECT q.*, ROWNUM rn FROM (%s) q) WHERE rn > %d",
			query, offset)
	}
	return fmt.Sprintf(
		"SELECT * FROM (SELECT q.*, ROWNUM rn FROM (%s) q WHERE ROWNUM <= %d) WHERE rn > %d",
		query, upper, offset)
}

// Oracle reads generated keys through RETURNING ... INTO out-binds,
// which database/sql cannot express as a result row; callers use an
// assigned identifier strategy instead.
func (oracleDialect) InsertSuffix(string) string { return "" }

func (oracleDialect) InsertOutput(string) string { return "" }

// Oracle upserts need a MERGE statement, not an INSERT suffix.
func (oracleDialect) Upsert(string, []string) string { return "" }

func (oracleDialect) ResultLastID() bool { return false }

func (oracleDialect) CurrentTimestamp() string { return "SYSTIMESTAMP" }

func (oracleDialect) DriverName() string { return "oracle" }
