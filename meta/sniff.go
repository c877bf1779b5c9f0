package meta

import (
	"regexp"
	"strings"
)

// Patterns covering the statement forms a table name can be lifted from.
// Ordered: data statements first, then DDL.
var sniffPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)^\s*insert\s+(?:ignore\s+)?into\s+([\w".` + "`" + `\[\]]+)`),
	regexp.MustCompile(`(?is)^\s*update\s+(?:low_priority\s+)?(?:ignore\s+)?([\w".` + "`" + `\[\]]+)`),
	regexp.MustCompile(`(?is)^\s*delete\s+from\s+([\w".` + "`" + `\[\]]+)`),
	regexp.MustCompile(`(?is)^\s*replace\s+into\s+([\w".` + "`" + `\[\]]+)`),
	regexp.MustCompile(`(?is)\bfrom\s+([\w".` + "`" + `\[\]]+)`),
	regexp.MustCompile(`(?is)^\s*(?:create|alter|drop)\s+table\s+(?:if\s+(?:not\s+)?exists\s+)?([\w".` + "`" + `\[\]]+)`),
	regexp.MustCompile(`(?is)^\s*truncate\s+(?:table\s+)?([\w".` + "`" + `\[\]]+)`),
}

// SniffTable extracts the primary table name from a SQL statement.
// Quoting characters are stripped. Returns false when no table can be
// identified, e.g. for SELECTs without a FROM clause.
func SniffTable(sql string) (TableName, bool) {
	for _, p := range sniffPatterns {
		m := p.FindStringSubmatch(sql)
		if m == nil {
			continue
		}
		raw := strings.Trim(m[1], "`\"[]")
		if raw == "" {
			continue
		}
		return ParseTable(raw), true
	}
	return TableName{}, false
}
