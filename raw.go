package mappa

import (
	"context"
	"strings"
	"unicode"

	"github.com/syssam/mappa/dialect"
	"github.com/syssam/mappa/intercept"
	"github.com/syssam/mappa/meta"
	"github.com/syssam/mappa/value"
)

// QueryRaw runs a caller-written query and returns the rows. The SQL
// is passed through as written; arguments still bind as parameters.
// A single value.Params argument binds as declared: positional values
// as-is, named values through :name markers in the SQL.
func QueryRaw(ctx context.Context, ex Executor, sql string, args ...any) (*value.Rows, error) {
	sql, vals, err := bindRawParams(ex.dialect(), sql, args)
	if err != nil {
		return nil, err
	}
	table, _ := meta.SniffTable(sql)
	ec := intercept.NewExecContext(intercept.OpSelect, table, sql, vals)
	rows, _, err := ex.execute(ctx, ec)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// QueryFirst runs a caller-written query and returns the first row, or
// nil when the result is empty.
func QueryFirst(ctx context.Context, ex Executor, sql string, args ...any) (*value.Row, error) {
	rows, err := QueryRaw(ctx, ex, sql, args...)
	if err != nil {
		return nil, err
	}
	r, ok := rows.First()
	if !ok {
		return nil, nil
	}
	return r, nil
}

// ExecRaw runs a caller-written statement and returns the affected row
// count. Parameters bind as in QueryRaw.
func ExecRaw(ctx context.Context, ex Executor, sql string, args ...any) (int64, error) {
	sql, vals, err := bindRawParams(ex.dialect(), sql, args)
	if err != nil {
		return 0, err
	}
	table, _ := meta.SniffTable(sql)
	ec := intercept.NewExecContext(intercept.OpExec, table, sql, vals)
	_, res, err := ex.execute(ctx, ec)
	if err != nil {
		return 0, err
	}
	return res.Affected, nil
}

// bindRawParams resolves raw-call arguments. A single value.Params
// argument binds as declared; anything else binds positionally.
func bindRawParams(d dialect.Dialect, sql string, args []any) (string, []value.Value, error) {
	if len(args) == 1 {
		if p, ok := args[0].(value.Params); ok {
			if len(p.Named) > 0 {
				return bindNamed(d, sql, p.Named)
			}
			return sql, p.Values, nil
		}
	}
	vals := make([]value.Value, len(args))
	for i, a := range args {
		vals[i] = value.Of(a)
	}
	return sql, vals, nil
}

// bindNamed replaces each :name marker with the next dialect
// placeholder and binds the matching parameter. Markers inside
// single-quoted literals are left alone; a name may bind more than
// once.
func bindNamed(d dialect.Dialect, sql string, named []value.NamedValue) (string, []value.Value, error) {
	byName := make(map[string]value.Value, len(named))
	for _, nv := range named {
		byName[nv.Name] = nv.Value
	}
	var sb strings.Builder
	var args []value.Value
	inString := false
	rs := []rune(sql)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case r == '\'':
			inString = !inString
			sb.WriteRune(r)
		case r == ':' && !inString:
			// A doubled colon is a cast, not a marker.
			if i+1 < len(rs) && rs[i+1] == ':' {
				sb.WriteString("::")
				i++
				continue
			}
			j := i + 1
			for j < len(rs) && (unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j]) || rs[j] == '_') {
				j++
			}
			if j == i+1 {
				sb.WriteRune(r)
				continue
			}
			name := string(rs[i+1 : j])
			v, ok := byName[name]
			if !ok {
				return "", nil, &InvalidArgumentError{Name: name, Reason: "no parameter bound for this name"}
			}
			args = append(args, v)
			sb.WriteString(d.Placeholder(len(args)))
			i = j - 1
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String(), args, nil
}
