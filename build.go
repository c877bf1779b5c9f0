package mappa

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/syssam/mappa/dialect"
	"github.com/syssam/mappa/keygen"
	"github.com/syssam/mappa/meta"
	"github.com/syssam/mappa/value"
	"github.com/syssam/mappa/wrapper"
)

// entityObject renders the entity as its ordered column object.
func entityObject(r meta.Record) (*value.Object, error) {
	obj, ok := r.IntoValue().AsObject()
	if !ok {
		return nil, &InvalidArgumentError{Name: "entity", Reason: "IntoValue must return an object"}
	}
	return obj, nil
}

// applyFills evaluates the fill rules matching the operation and writes
// the results into the column object.
func applyFills(fields []meta.FieldName, obj *value.Object, insert bool) {
	for _, f := range fields {
		if f.Fill == nil || f.Fill.Value == nil || !f.Fill.AppliesTo(insert) {
			continue
		}
		obj.Set(f.Name, f.Fill.Value())
	}
}

// emptyID reports whether the identifier still needs a generated value.
func emptyID(v value.Value) bool {
	switch v.Kind() {
	case value.KindNull:
		return true
	case value.KindTinyint, value.KindSmallint, value.KindInt, value.KindBigint:
		n, _ := v.AsInt64()
		return n == 0
	case value.KindText:
		s, _ := v.AsString()
		return s == ""
	case value.KindUUID:
		u, _ := v.AsUUID()
		return u == uuid.Nil
	}
	return false
}

// generateID fills an empty identifier according to its strategy and
// writes it back onto the entity. Reports whether the id column should
// be part of the insert.
func generateID(ent meta.RecordScanner, idField meta.FieldName, obj *value.Object) (includeColumn bool, err error) {
	current, _ := obj.Get(idField.Name)
	switch *idField.ID {
	case meta.IDAuto:
		// The database assigns the key; an explicit value still wins.
		return !emptyID(current), nil
	case meta.IDInput:
		return true, nil
	case meta.IDAssignID:
		if emptyID(current) {
			id := value.Bigint(keygen.NextID())
			obj.Set(idField.Name, id)
			if err := writeBack(ent, idField.Name, id); err != nil {
				return false, err
			}
		}
		return true, nil
	case meta.IDAssignUUID:
		if emptyID(current) {
			id := value.UUID(keygen.NextUUID())
			obj.Set(idField.Name, id)
			if err := writeBack(ent, idField.Name, id); err != nil {
				return false, err
			}
		}
		return true, nil
	}
	return true, nil
}

// writeBack pushes one generated column value onto the entity.
func writeBack(ent meta.RecordScanner, column string, v value.Value) error {
	return ent.ScanRow(value.NewRow([]string{column}, []value.Value{v}))
}

// insertColumns selects the columns participating in an INSERT: every
// existing field present in the object, minus the id column when the
// database assigns it.
func insertColumns(fields []meta.FieldName, obj *value.Object, skipColumn string) []string {
	cols := make([]string, 0, len(fields))
	for _, f := range fields {
		if !f.Exist || f.Name == skipColumn {
			continue
		}
		if _, ok := obj.Get(f.Name); !ok {
			continue
		}
		cols = append(cols, f.Name)
	}
	return cols
}

// buildInsert renders a multi-row INSERT over the shared column list.
// output lands between the column list and VALUES, suffix after the
// last row.
func buildInsert(d dialect.Dialect, table meta.TableName, cols []string, rows []*value.Object, output, suffix string) *wrapper.Stmt {
	s := wrapper.NewStmt(d)
	s.Write("INSERT INTO ")
	s.Ident(table.Qualified())
	s.Write(" (")
	for i, c := range cols {
		if i > 0 {
			s.Write(", ")
		}
		s.Ident(c)
	}
	s.Write(")")
	s.Write(output)
	s.Write(" VALUES ")
	for ri, obj := range rows {
		if ri > 0 {
			s.Write(", ")
		}
		s.Write("(")
		for ci, c := range cols {
			if ci > 0 {
				s.Write(", ")
			}
			v, _ := obj.Get(c)
			s.Bind(v)
		}
		s.Write(")")
	}
	s.Write(suffix)
	return s
}

// buildSelect renders the SELECT for a wrapper over the entity columns,
// including the dialect paging envelope and splice fragments.
func buildSelect(d dialect.Dialect, table meta.TableName, fields []meta.FieldName, w *wrapper.Wrapper) (string, []value.Value) {
	s := wrapper.NewStmt(d)
	s.Write("SELECT ")
	if f := w.FirstSQL(); f != "" {
		s.Write(f + " ")
	}
	if w.IsDistinct() {
		s.Write("DISTINCT ")
	}
	cols := w.Selects()
	if len(cols) == 0 {
		cols = meta.SelectColumns(fields)
	}
	if len(cols) == 0 {
		s.Write("*")
	}
	for i, c := range cols {
		if i > 0 {
			s.Write(", ")
		}
		s.Ident(c)
	}
	s.Write(" FROM ")
	s.Ident(table.Qualified())
	if table.Alias != "" {
		s.Write(" " + table.Alias)
	}
	w.AppendWhere(s)
	w.AppendTail(s)
	sql := d.Page(s.String(), w.LimitValue(), w.OffsetValue())
	if last := w.LastSQL(); last != "" {
		sql += " " + last
	}
	if c := w.CommentText(); c != "" {
		sql = "/* " + c + " */ " + sql
	}
	return sql, s.Args()
}

// buildCount renders the COUNT query for a wrapper: same FROM, WHERE,
// GROUP BY and HAVING, stripping ordering and paging.
func buildCount(d dialect.Dialect, table meta.TableName, w *wrapper.Wrapper) (string, []value.Value) {
	s := wrapper.NewStmt(d)
	s.Write("SELECT COUNT(*) FROM ")
	s.Ident(table.Qualified())
	if table.Alias != "" {
		s.Write(" " + table.Alias)
	}
	w.AppendWhere(s)
	w.AppendGroup(s)
	return s.String(), s.Args()
}

// identifier returns the entity's id field descriptor.
func identifier[E any, P meta.RecordPtr[E]]() (meta.TableName, []meta.FieldName, meta.FieldName, error) {
	var e E
	p := P(&e)
	fields := p.Fields()
	idField, ok := meta.IdentifierField(fields)
	if !ok {
		return meta.TableName{}, nil, meta.FieldName{}, ErrMissingID
	}
	return p.Table(), fields, idField, nil
}

// scanEntities materializes entities from rows. In strict mode any
// conversion failure aborts; otherwise the offending row is skipped and
// logged.
func scanEntities[E any, P meta.RecordPtr[E]](ex Executor, rs *value.Rows) ([]*E, error) {
	out := make([]*E, 0, rs.Len())
	set := ex.settings()
	for _, r := range rs.All() {
		var e E
		if err := P(&e).ScanRow(r); err != nil {
			if !set.strict && (value.IsTypeMismatch(err) || value.IsParseError(err)) {
				set.logger.Warn("skipping row with unconvertible value", "error", err)
				continue
			}
			return nil, fmt.Errorf("mappa: scanning row: %w", err)
		}
		out = append(out, &e)
	}
	return out, nil
}
