// Package security screens final SQL statements for injection patterns
// before they reach the driver: stacked statements, comment truncation,
// OR-tautologies and UNION probes with mismatched column counts.
package security

import (
	"regexp"
	"strings"
)

// Policy selects what happens when a statement is flagged.
type Policy uint8

const (
	// PolicyOff skips detection entirely.
	PolicyOff Policy = iota
	// PolicyWarn logs the findings and lets the statement proceed.
	PolicyWarn
	// PolicyDeny aborts the statement.
	PolicyDeny
)

// String returns the policy name.
func (p Policy) String() string {
	switch p {
	case PolicyOff:
		return "off"
	case PolicyWarn:
		return "warn"
	case PolicyDeny:
		return "deny"
	}
	return "unknown"
}

// ParsePolicy maps a configuration string onto a Policy.
func ParsePolicy(s string) (Policy, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "warn":
		return PolicyWarn, true
	case "off", "none":
		return PolicyOff, true
	case "deny", "strict":
		return PolicyDeny, true
	}
	return PolicyWarn, false
}

// Result is the outcome of inspecting one statement.
type Result struct {
	Dangerous bool
	Reasons   []string
}

func (r *Result) flag(reason string) {
	r.Dangerous = true
	r.Reasons = append(r.Reasons, reason)
}

// Detector inspects statement text. Stateless and safe for concurrent
// use.
type Detector struct{}

// NewDetector returns a detector with the built-in heuristics.
func NewDetector() *Detector { return &Detector{} }

var tautologyPattern = regexp.MustCompile(`(?i)\bor\s+([0-9]+|'[^']*'|true)\s*=\s*([0-9]+|'[^']*'|true)`)

// Inspect screens sql and reports every matched heuristic. Parameters
// bound through placeholders cannot trigger it; only statement text is
// examined.
func (d *Detector) Inspect(sql string) Result {
	var res Result
	stripped := stripLiterals(sql)

	if i := strings.IndexByte(stripped, ';'); i >= 0 {
		if strings.TrimSpace(stripped[i+1:]) != "" {
			res.flag("stacked statement after ';'")
		}
	}
	if strings.Contains(stripped, "--") {
		res.flag("line comment '--' truncates the statement")
	}
	if n := strings.Count(stripped, "/*"); n > strings.Count(stripped, "*/") {
		res.flag("unterminated block comment '/*'")
	}
	for _, m := range tautologyPattern.FindAllStringSubmatch(sql, -1) {
		if strings.EqualFold(m[1], m[2]) {
			res.flag("tautology '" + m[0] + "'")
		}
	}
	if reason, ok := unionMismatch(stripped); ok {
		res.flag(reason)
	}
	return res
}

var unionPattern = regexp.MustCompile(`(?i)\bunion(?:\s+all)?\s+select\b`)

// unionMismatch flags UNION SELECT arms whose column count differs from
// the base select, the signature of column-count probing.
func unionMismatch(sql string) (string, bool) {
	locs := unionPattern.FindAllStringIndex(sql, -1)
	if len(locs) == 0 {
		return "", false
	}
	base := selectArity(sql[:locs[0][0]])
	if base < 0 {
		return "", false
	}
	for i, loc := range locs {
		end := len(sql)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		arm := selectArity(sql[loc[0]:end])
		if arm >= 0 && arm != base {
			return "UNION column count mismatch", true
		}
	}
	return "", false
}

var selectPattern = regexp.MustCompile(`(?i)\bselect\b`)

// selectArity counts the columns of the first select list in fragment,
// or -1 when none is found. Commas inside parentheses do not count.
func selectArity(fragment string) int {
	loc := selectPattern.FindStringIndex(fragment)
	if loc == nil {
		return -1
	}
	rest := fragment[loc[1]:]
	depth, count := 0, 1
	lower := strings.ToLower(rest)
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				count++
			}
		case 'f', 'F':
			if depth == 0 && strings.HasPrefix(lower[i:], "from") {
				return count
			}
		}
	}
	return count
}

// stripLiterals blanks the contents of single-quoted strings so literal
// text cannot trip the structural heuristics. Doubled quotes escape.
func stripLiterals(sql string) string {
	var sb strings.Builder
	sb.Grow(len(sql))
	in := false
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		if c == '\'' {
			if in && i+1 < len(sql) && sql[i+1] == '\'' {
				i++
				continue
			}
			in = !in
			sb.WriteByte(c)
			continue
		}
		if !in {
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
