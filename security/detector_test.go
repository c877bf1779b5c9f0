package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDangerousStatements(t *testing.T) {
	d := NewDetector()
	for _, tc := range []struct {
		name string
		sql  string
	}{
		{"stacked drop", "SELECT * FROM users WHERE id = 1; DROP TABLE users"},
		{"comment truncation", "SELECT * FROM users WHERE name = 'x' --' AND active = 1"},
		{"unterminated block comment", "SELECT * FROM users WHERE id = 1 /* probe"},
		{"numeric tautology", "SELECT * FROM users WHERE id = 5 OR 1=1"},
		{"string tautology", "SELECT * FROM users WHERE name = 'x' OR '1'='1'"},
		{"union probe", "SELECT id, name FROM users UNION SELECT username, password, salt FROM accounts"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			res := d.Inspect(tc.sql)
			assert.True(t, res.Dangerous, tc.sql)
			assert.NotEmpty(t, res.Reasons)
		})
	}
}

func TestSafeStatements(t *testing.T) {
	d := NewDetector()
	for _, tc := range []struct {
		name string
		sql  string
	}{
		{"plain select", "SELECT id, name FROM users WHERE id = ?"},
		{"trailing semicolon", "SELECT * FROM users WHERE id = ?;"},
		{"where 1=1 without or", "SELECT * FROM users WHERE 1=1 AND id = ?"},
		{"semicolon in literal", "SELECT * FROM logs WHERE line = 'a;b'"},
		{"dashes in literal", "SELECT * FROM notes WHERE body = 'a -- b'"},
		{"balanced comment", "/* page query */ SELECT id FROM users"},
		{"matching union arity", "SELECT id, name FROM a UNION SELECT id, name FROM b"},
		{"or on distinct values", "SELECT * FROM t WHERE a = 1 OR 1=2"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			res := d.Inspect(tc.sql)
			assert.False(t, res.Dangerous, "%s: %v", tc.sql, res.Reasons)
		})
	}
}

func TestInspectReportsAllFindings(t *testing.T) {
	d := NewDetector()
	res := d.Inspect("SELECT * FROM t WHERE a = 'x' OR 1=1; DROP TABLE t --")
	require.True(t, res.Dangerous)
	assert.GreaterOrEqual(t, len(res.Reasons), 3)
}

func TestParsePolicy(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Policy
		ok   bool
	}{
		{"", PolicyWarn, true},
		{"warn", PolicyWarn, true},
		{"off", PolicyOff, true},
		{"none", PolicyOff, true},
		{"deny", PolicyDeny, true},
		{"STRICT", PolicyDeny, true},
		{"bogus", PolicyWarn, false},
	} {
		got, ok := ParsePolicy(tc.in)
		assert.Equal(t, tc.want, got, tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
	}
}
