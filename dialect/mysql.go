package dialect

import "fmt"

type mysqlDialect struct{}

var _ Dialect = mysqlDialect{}

func (mysqlDialect) Platform() Platform { return MySQL }

func (mysqlDialect) Placeholder(int) string { return "?" }

func (mysqlDialect) Quote(ident string) string { return quoteParts(ident, "`", "`") }

// MySQL has no OFFSET without LIMIT; the documented all-rows sentinel
// stands in when only an offset is requested.
func (mysqlDialect) Page(query string, limit, offset int64) string {
	switch {
	case limit > 0 && offset > 0:
		return fmt.Sprintf("%s LIMIT %d OFFSET %d", query, limit, offset)
	case limit > 0:
		return fmt.Sprintf("%s LIMIT %d", query, limit)
	case offset > 0:
		return fmt.Sprintf("%s LIMIT 18446744073709551615 OFFSET %d", query, offset)
	}
	return query
}

func (mysqlDialect) InsertSuffix(string) string { return "" }

func (mysqlDialect) InsertOutput(string) string { return "" }

func (d mysqlDialect) Upsert(_ string, updateColumns []string) string {
	if len(updateColumns) == 0 {
		return ""
	}
	out := " ON DUPLICATE KEY UPDATE "
	for i, c := range updateColumns {
		if i > 0 {
			out += ", "
		}
		q := d.Quote(c)
		out += q + " = VALUES(" + q + ")"
	}
	return out
}

func (mysqlDialect) ResultLastID() bool { return true }

func (mysqlDialect) CurrentTimestamp() string { return "CURRENT_TIMESTAMP" }

func (mysqlDialect) DriverName() string { return "mysql" }
