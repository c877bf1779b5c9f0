package wrapper

import (
	"strings"

	"github.com/syssam/mappa/dialect"
	"github.com/syssam/mappa/value"
)

// Stmt accumulates statement text and bound parameters with continuous
// placeholder numbering, so SET and WHERE fragments can share one
// parameter vector on dialects with positional markers.
type Stmt struct {
	d    dialect.Dialect
	sb   strings.Builder
	args []value.Value
	n    int
}

// NewStmt returns an empty statement builder for the dialect.
func NewStmt(d dialect.Dialect) *Stmt {
	return &Stmt{d: d}
}

// Dialect returns the dialect the statement renders for.
func (s *Stmt) Dialect() dialect.Dialect { return s.d }

// Write appends verbatim statement text.
func (s *Stmt) Write(text string) { s.sb.WriteString(text) }

// Ident appends a quoted identifier.
func (s *Stmt) Ident(name string) { s.sb.WriteString(s.d.Quote(name)) }

// Bind appends the next placeholder and records the parameter. RawSql
// values are spliced into the text and never bound.
func (s *Stmt) Bind(v value.Value) {
	if raw, ok := v.AsRawSQL(); ok {
		s.sb.WriteString(raw)
		return
	}
	s.n++
	s.sb.WriteString(s.d.Placeholder(s.n))
	s.args = append(s.args, v)
}

// BindFragment appends a SQL fragment, substituting each '?' with the
// next dialect placeholder and binding the matching argument. Question
// marks inside single-quoted literals are left alone.
func (s *Stmt) BindFragment(frag string, args ...value.Value) {
	next := 0
	inString := false
	for _, r := range frag {
		switch {
		case r == '\'':
			inString = !inString
			s.sb.WriteRune(r)
		case r == '?' && !inString && next < len(args):
			s.Bind(args[next])
			next++
		default:
			s.sb.WriteRune(r)
		}
	}
}

// String returns the statement text accumulated so far.
func (s *Stmt) String() string { return s.sb.String() }

// Args returns the bound parameters in order.
func (s *Stmt) Args() []value.Value { return s.args }

// DriverArgs returns the bound parameters as driver arguments.
func (s *Stmt) DriverArgs() []any {
	out := make([]any, len(s.args))
	for i, a := range s.args {
		out[i] = a.Arg()
	}
	return out
}
