// Package wrapper implements the chainable condition builder. Conditions
// accumulate in declaration order, joined by AND unless Or promotes the
// next connector. Rendering substitutes dialect placeholders and pushes
// concrete values into the parameter vector; only RawSql fragments are
// spliced into the statement text.
package wrapper

import (
	"github.com/syssam/mappa/value"
)

type connector uint8

const (
	and connector = iota
	or
)

type node struct {
	conn   connector
	render func(s *Stmt)
}

type orderItem struct {
	column string
	desc   bool
}

type setItem struct {
	column string
	v      value.Value
}

// Wrapper builds the variable parts of a statement: the select list,
// SET assignments, WHERE tree, grouping, ordering and paging bounds.
// The zero value is not usable; call New.
type Wrapper struct {
	selects    []string
	distinct   bool
	nodes      []node
	orNext     bool
	groupBy    []string
	having     []node
	orderBy    []orderItem
	sets       []setItem
	limit      int64
	offset     int64
	firstSQL   string
	lastSQL    string
	comment    string
	allowEmpty bool
}

// New returns an empty wrapper.
func New() *Wrapper {
	return &Wrapper{limit: -1, offset: -1}
}

// Select restricts the generated select list to the given columns.
func (w *Wrapper) Select(columns ...string) *Wrapper {
	w.selects = append(w.selects, columns...)
	return w
}

// Distinct marks the select list DISTINCT.
func (w *Wrapper) Distinct() *Wrapper {
	w.distinct = true
	return w
}

// push appends a condition node, consuming a pending Or.
func (w *Wrapper) push(render func(s *Stmt)) *Wrapper {
	conn := and
	if w.orNext {
		conn = or
		w.orNext = false
	}
	w.nodes = append(w.nodes, node{conn: conn, render: render})
	return w
}

// cmp renders "column OP value". A nil value turns Eq into IS NULL and
// Ne into IS NOT NULL.
func (w *Wrapper) cmp(column, op string, v any) *Wrapper {
	val := value.Of(v)
	if val.IsNull() {
		switch op {
		case "=":
			return w.IsNull(column)
		case "<>":
			return w.IsNotNull(column)
		}
	}
	return w.push(func(s *Stmt) {
		s.Ident(column)
		s.Write(" " + op + " ")
		s.Bind(val)
	})
}

// Eq adds "column = value".
func (w *Wrapper) Eq(column string, v any) *Wrapper { return w.cmp(column, "=", v) }

// Ne adds "column <> value".
func (w *Wrapper) Ne(column string, v any) *Wrapper { return w.cmp(column, "<>", v) }

// Gt adds "column > value".
func (w *Wrapper) Gt(column string, v any) *Wrapper { return w.cmp(column, ">", v) }

// Ge adds "column >= value".
func (w *Wrapper) Ge(column string, v any) *Wrapper { return w.cmp(column, ">=", v) }

// Lt adds "column < value".
func (w *Wrapper) Lt(column string, v any) *Wrapper { return w.cmp(column, "<", v) }

// Le adds "column <= value".
func (w *Wrapper) Le(column string, v any) *Wrapper { return w.cmp(column, "<=", v) }

// Like adds "column LIKE %value%".
func (w *Wrapper) Like(column string, v string) *Wrapper {
	return w.cmp(column, "LIKE", "%"+v+"%")
}

// NotLike adds "column NOT LIKE %value%".
func (w *Wrapper) NotLike(column string, v string) *Wrapper {
	return w.cmp(column, "NOT LIKE", "%"+v+"%")
}

// LikeLeft adds "column LIKE %value".
func (w *Wrapper) LikeLeft(column string, v string) *Wrapper {
	return w.cmp(column, "LIKE", "%"+v)
}

// LikeRight adds "column LIKE value%".
func (w *Wrapper) LikeRight(column string, v string) *Wrapper {
	return w.cmp(column, "LIKE", v+"%")
}

// IsNull adds "column IS NULL".
func (w *Wrapper) IsNull(column string) *Wrapper {
	return w.push(func(s *Stmt) {
		s.Ident(column)
		s.Write(" IS NULL")
	})
}

// IsNotNull adds "column IS NOT NULL".
func (w *Wrapper) IsNotNull(column string) *Wrapper {
	return w.push(func(s *Stmt) {
		s.Ident(column)
		s.Write(" IS NOT NULL")
	})
}

// In adds "column IN (v1, v2, ...)". An empty list renders a
// never-matching condition rather than invalid SQL.
func (w *Wrapper) In(column string, vs ...any) *Wrapper {
	return w.inList(column, false, vs)
}

// NotIn adds "column NOT IN (v1, v2, ...)". An empty list renders an
// always-matching condition.
func (w *Wrapper) NotIn(column string, vs ...any) *Wrapper {
	return w.inList(column, true, vs)
}

func (w *Wrapper) inList(column string, negate bool, vs []any) *Wrapper {
	vals := make([]value.Value, len(vs))
	for i, v := range vs {
		vals[i] = value.Of(v)
	}
	return w.push(func(s *Stmt) {
		if len(vals) == 0 {
			if negate {
				s.Write("1 = 1")
			} else {
				s.Write("1 = 2")
			}
			return
		}
		s.Ident(column)
		if negate {
			s.Write(" NOT IN (")
		} else {
			s.Write(" IN (")
		}
		for i, v := range vals {
			if i > 0 {
				s.Write(", ")
			}
			s.Bind(v)
		}
		s.Write(")")
	})
}

// InSQL adds "column IN (subquery)" with the subquery spliced verbatim.
func (w *Wrapper) InSQL(column, subquery string) *Wrapper {
	return w.push(func(s *Stmt) {
		s.Ident(column)
		s.Write(" IN (" + subquery + ")")
	})
}

// Between adds "column BETWEEN lo AND hi".
func (w *Wrapper) Between(column string, lo, hi any) *Wrapper {
	lv, hv := value.Of(lo), value.Of(hi)
	return w.push(func(s *Stmt) {
		s.Ident(column)
		s.Write(" BETWEEN ")
		s.Bind(lv)
		s.Write(" AND ")
		s.Bind(hv)
	})
}

// NotBetween adds "column NOT BETWEEN lo AND hi".
func (w *Wrapper) NotBetween(column string, lo, hi any) *Wrapper {
	lv, hv := value.Of(lo), value.Of(hi)
	return w.push(func(s *Stmt) {
		s.Ident(column)
		s.Write(" NOT BETWEEN ")
		s.Bind(lv)
		s.Write(" AND ")
		s.Bind(hv)
	})
}

// Or joins the next condition with OR instead of AND. A trailing Or
// with no following condition has no effect.
func (w *Wrapper) Or() *Wrapper {
	w.orNext = true
	return w
}

// Nested adds a parenthesized condition subtree built by fn. An empty
// subtree adds nothing.
func (w *Wrapper) Nested(fn func(*Wrapper)) *Wrapper {
	sub := New()
	fn(sub)
	if len(sub.nodes) == 0 {
		w.orNext = false
		return w
	}
	return w.push(func(s *Stmt) {
		s.Write("(")
		sub.renderNodes(s, sub.nodes)
		s.Write(")")
	})
}

// Exists adds "EXISTS (subquery)" with the subquery spliced verbatim.
func (w *Wrapper) Exists(subquery string) *Wrapper {
	return w.push(func(s *Stmt) {
		s.Write("EXISTS (" + subquery + ")")
	})
}

// NotExists adds "NOT EXISTS (subquery)".
func (w *Wrapper) NotExists(subquery string) *Wrapper {
	return w.push(func(s *Stmt) {
		s.Write("NOT EXISTS (" + subquery + ")")
	})
}

// Apply adds a raw condition fragment. Each '?' is replaced with a
// dialect placeholder bound to the matching argument; the rest of the
// fragment is spliced verbatim.
func (w *Wrapper) Apply(fragment string, args ...any) *Wrapper {
	vals := make([]value.Value, len(args))
	for i, a := range args {
		vals[i] = value.Of(a)
	}
	return w.push(func(s *Stmt) {
		s.BindFragment(fragment, vals...)
	})
}

// GroupBy appends grouping columns.
func (w *Wrapper) GroupBy(columns ...string) *Wrapper {
	w.groupBy = append(w.groupBy, columns...)
	return w
}

// Having appends a HAVING fragment with '?' placeholder substitution.
func (w *Wrapper) Having(fragment string, args ...any) *Wrapper {
	vals := make([]value.Value, len(args))
	for i, a := range args {
		vals[i] = value.Of(a)
	}
	w.having = append(w.having, node{conn: and, render: func(s *Stmt) {
		s.BindFragment(fragment, vals...)
	}})
	return w
}

// OrderByAsc appends ascending order columns.
func (w *Wrapper) OrderByAsc(columns ...string) *Wrapper {
	for _, c := range columns {
		w.orderBy = append(w.orderBy, orderItem{column: c})
	}
	return w
}

// OrderByDesc appends descending order columns.
func (w *Wrapper) OrderByDesc(columns ...string) *Wrapper {
	for _, c := range columns {
		w.orderBy = append(w.orderBy, orderItem{column: c, desc: true})
	}
	return w
}

// Set records a SET assignment for updates, kept in declaration order.
func (w *Wrapper) Set(column string, v any) *Wrapper {
	w.sets = append(w.sets, setItem{column: column, v: value.Of(v)})
	return w
}

// SetSQL records a SET assignment whose right side is a verbatim SQL
// expression, e.g. "version + 1".
func (w *Wrapper) SetSQL(column, expr string) *Wrapper {
	w.sets = append(w.sets, setItem{column: column, v: value.Raw(expr)})
	return w
}

// Limit caps the number of returned rows.
func (w *Wrapper) Limit(n int64) *Wrapper {
	w.limit = n
	return w
}

// Offset skips the first n rows.
func (w *Wrapper) Offset(n int64) *Wrapper {
	w.offset = n
	return w
}

// First splices a fragment immediately after the SELECT keyword,
// e.g. a MySQL hint.
func (w *Wrapper) First(fragment string) *Wrapper {
	w.firstSQL = fragment
	return w
}

// Last splices a fragment at the very end of the statement.
func (w *Wrapper) Last(fragment string) *Wrapper {
	w.lastSQL = fragment
	return w
}

// Comment prefixes the statement with a block comment.
func (w *Wrapper) Comment(text string) *Wrapper {
	w.comment = text
	return w
}

// AllowEmpty permits updates and deletes with no WHERE conditions.
func (w *Wrapper) AllowEmpty() *Wrapper {
	w.allowEmpty = true
	return w
}

// HasWhere reports whether any condition was added.
func (w *Wrapper) HasWhere() bool { return len(w.nodes) > 0 }

// AllowsEmpty reports whether an empty WHERE was explicitly permitted.
func (w *Wrapper) AllowsEmpty() bool { return w.allowEmpty }

// HasSets reports whether any SET assignment was recorded.
func (w *Wrapper) HasSets() bool { return len(w.sets) > 0 }

// Selects returns the restricted select list, if any.
func (w *Wrapper) Selects() []string { return w.selects }

// IsDistinct reports whether DISTINCT was requested.
func (w *Wrapper) IsDistinct() bool { return w.distinct }

// LimitValue returns the row cap, -1 when unset.
func (w *Wrapper) LimitValue() int64 { return w.limit }

// OffsetValue returns the row offset, -1 when unset.
func (w *Wrapper) OffsetValue() int64 { return w.offset }

// FirstSQL returns the fragment spliced after SELECT.
func (w *Wrapper) FirstSQL() string { return w.firstSQL }

// LastSQL returns the fragment spliced at the statement end.
func (w *Wrapper) LastSQL() string { return w.lastSQL }

// CommentText returns the comment prefix.
func (w *Wrapper) CommentText() string { return w.comment }

func (w *Wrapper) renderNodes(s *Stmt, nodes []node) {
	for i, n := range nodes {
		if i > 0 {
			if n.conn == or {
				s.Write(" OR ")
			} else {
				s.Write(" AND ")
			}
		}
		n.render(s)
	}
}

// AppendWhere writes " WHERE ..." when conditions exist.
func (w *Wrapper) AppendWhere(s *Stmt) {
	if len(w.nodes) == 0 {
		return
	}
	s.Write(" WHERE ")
	w.renderNodes(s, w.nodes)
}

// AppendSet writes "SET a = ?, b = expr" in declaration order.
func (w *Wrapper) AppendSet(s *Stmt) {
	s.Write("SET ")
	for i, it := range w.sets {
		if i > 0 {
			s.Write(", ")
		}
		s.Ident(it.column)
		s.Write(" = ")
		s.Bind(it.v)
	}
}

// AppendGroup writes the GROUP BY and HAVING clauses. Count queries use
// it on its own so grouping survives while ordering and paging do not.
func (w *Wrapper) AppendGroup(s *Stmt) {
	if len(w.groupBy) > 0 {
		s.Write(" GROUP BY ")
		for i, c := range w.groupBy {
			if i > 0 {
				s.Write(", ")
			}
			s.Ident(c)
		}
	}
	if len(w.having) > 0 {
		s.Write(" HAVING ")
		w.renderNodes(s, w.having)
	}
}

// AppendTail writes GROUP BY, HAVING and ORDER BY clauses.
func (w *Wrapper) AppendTail(s *Stmt) {
	w.AppendGroup(s)
	if len(w.orderBy) > 0 {
		s.Write(" ORDER BY ")
		for i, o := range w.orderBy {
			if i > 0 {
				s.Write(", ")
			}
			s.Ident(o.column)
			if o.desc {
				s.Write(" DESC")
			}
		}
	}
}
