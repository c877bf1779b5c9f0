package mappa

import (
	"context"

	"github.com/syssam/mappa/intercept"
	"github.com/syssam/mappa/meta"
	"github.com/syssam/mappa/value"
	"github.com/syssam/mappa/wrapper"
)

// Save inserts one entity. Insert fills run first, then the identifier
// strategy: generated snowflake and uuid keys are written back before
// the insert, database-assigned keys after it.
func Save[E any, P meta.RecordPtr[E]](ctx context.Context, ex Executor, ent P) error {
	d := ex.dialect()
	table, fields := ent.Table(), ent.Fields()
	obj, err := entityObject(ent)
	if err != nil {
		return err
	}
	applyFills(fields, obj, true)
	idField, hasID := meta.IdentifierField(fields)
	skip := ""
	output := ""
	suffix := ""
	autoID := false
	if hasID {
		include, err := generateID(ent, idField, obj)
		if err != nil {
			return err
		}
		if !include {
			skip = idField.Name
			autoID = true
			output = d.InsertOutput(idField.Name)
			suffix = d.InsertSuffix(idField.Name)
			if output == "" && suffix == "" && !d.ResultLastID() {
				return &InvalidArgumentError{
					Name:   "entity",
					Reason: "generated keys are not readable on " + string(d.Platform()) + "; use an assigned identifier strategy",
				}
			}
		}
	}
	cols := insertColumns(fields, obj, skip)
	if len(cols) == 0 {
		return &InvalidArgumentError{Name: "entity", Reason: "no columns to insert"}
	}
	s := buildInsert(d, table, cols, []*value.Object{obj}, output, suffix)
	ec := intercept.NewExecContext(intercept.OpInsert, table, s.String(), s.Args())
	ec.WantsRows = output != "" || suffix != ""
	rows, res, err := ex.execute(ctx, ec)
	if err != nil {
		return err
	}
	if autoID {
		switch {
		case res.HasLastID:
			return writeBack(ent, idField.Name, value.Bigint(res.LastID))
		case rows != nil && rows.Len() > 0:
			r, _ := rows.At(0)
			id, err := r.ValueAt(0)
			if err == nil {
				return writeBack(ent, idField.Name, id)
			}
		}
	}
	return nil
}

// SaveBatch inserts entities in chunks of the configured batch size,
// sharing one multi-row INSERT per chunk. Returns the number of
// inserted rows. Database-assigned keys are not read back in batch
// mode.
func SaveBatch[E any, P meta.RecordPtr[E]](ctx context.Context, ex Executor, ents []P) (int64, error) {
	if len(ents) == 0 {
		return 0, nil
	}
	d := ex.dialect()
	table, fields := ents[0].Table(), ents[0].Fields()
	idField, hasID := meta.IdentifierField(fields)

	objs := make([]*value.Object, len(ents))
	skip := ""
	for i, ent := range ents {
		obj, err := entityObject(ent)
		if err != nil {
			return 0, err
		}
		applyFills(fields, obj, true)
		if hasID {
			include, err := generateID(ent, idField, obj)
			if err != nil {
				return 0, err
			}
			// Every row shares one column list, so the batch must agree
			// on whether the database assigns the key.
			if i == 0 {
				if !include {
					skip = idField.Name
				}
			} else if include == (skip != "") {
				return 0, &InvalidArgumentError{
					Name:   "entities",
					Reason: "batch mixes database-assigned and explicit identifiers; save them separately",
				}
			}
		}
		objs[i] = obj
	}
	cols := insertColumns(fields, objs[0], skip)
	if len(cols) == 0 {
		return 0, &InvalidArgumentError{Name: "entities", Reason: "no columns to insert"}
	}
	batch := ex.settings().batch
	var total int64
	for start := 0; start < len(objs); start += batch {
		end := start + batch
		if end > len(objs) {
			end = len(objs)
		}
		s := buildInsert(d, table, cols, objs[start:end], "", "")
		ec := intercept.NewExecContext(intercept.OpInsert, table, s.String(), s.Args())
		_, res, err := ex.execute(ctx, ec)
		if err != nil {
			return total, err
		}
		total += res.Affected
	}
	return total, nil
}

// Upsert inserts the entity or updates the existing row carrying the
// same identifier, using the backend's native conflict clause. An
// empty identifier falls back to a plain insert; backends without a
// suffix form fall back to SaveOrUpdate.
func Upsert[E any, P meta.RecordPtr[E]](ctx context.Context, ex Executor, ent P) error {
	d := ex.dialect()
	table, fields := ent.Table(), ent.Fields()
	idField, ok := meta.IdentifierField(fields)
	if !ok {
		return ErrMissingID
	}
	obj, err := entityObject(ent)
	if err != nil {
		return err
	}
	applyFills(fields, obj, true)
	if _, err := generateID(ent, idField, obj); err != nil {
		return err
	}
	idVal, _ := obj.Get(idField.Name)
	if emptyID(idVal) {
		// An auto-increment key has nothing to conflict on yet.
		return Save[E, P](ctx, ex, ent)
	}
	cols := insertColumns(fields, obj, "")
	update := make([]string, 0, len(cols))
	for _, c := range cols {
		if c != idField.Name {
			update = append(update, c)
		}
	}
	suffix := d.Upsert(idField.Name, update)
	if suffix == "" {
		return SaveOrUpdate[E, P](ctx, ex, ent)
	}
	s := buildInsert(d, table, cols, []*value.Object{obj}, "", suffix)
	ec := intercept.NewExecContext(intercept.OpInsert, table, s.String(), s.Args())
	_, _, err = ex.execute(ctx, ec)
	return err
}

// SaveOrUpdate inserts when the identifier is still empty and updates
// by id otherwise.
func SaveOrUpdate[E any, P meta.RecordPtr[E]](ctx context.Context, ex Executor, ent P) error {
	fields := ent.Fields()
	idField, ok := meta.IdentifierField(fields)
	if !ok {
		return ErrMissingID
	}
	obj, err := entityObject(ent)
	if err != nil {
		return err
	}
	current, _ := obj.Get(idField.Name)
	if emptyID(current) {
		return Save[E, P](ctx, ex, ent)
	}
	_, err = UpdateByID[E, P](ctx, ex, ent)
	return err
}

// UpdateByID updates every non-identifier column of the entity, keyed
// by its identifier. Update fills run first. Returns affected rows.
func UpdateByID[E any, P meta.RecordPtr[E]](ctx context.Context, ex Executor, ent P) (int64, error) {
	fields := ent.Fields()
	obj, err := entityObject(ent)
	if err != nil {
		return 0, err
	}
	applyFills(fields, obj, false)
	idField, ok := meta.IdentifierField(fields)
	if !ok {
		return 0, ErrMissingID
	}
	idVal, _ := obj.Get(idField.Name)
	if emptyID(idVal) {
		return 0, &InvalidArgumentError{Name: "entity", Reason: "identifier is empty"}
	}
	w := wrapper.New()
	for _, f := range fields {
		if !f.Exist || f.IsID() {
			continue
		}
		if v, ok := obj.Get(f.Name); ok {
			w.Set(f.Name, v)
		}
	}
	if !w.HasSets() {
		return 0, &InvalidArgumentError{Name: "entity", Reason: "no columns to update"}
	}
	w.Eq(idField.Name, idVal)
	return Update[E, P](ctx, ex, w)
}

// UpdateBatchByID applies UpdateByID to each entity, summing affected
// rows.
func UpdateBatchByID[E any, P meta.RecordPtr[E]](ctx context.Context, ex Executor, ents []P) (int64, error) {
	var total int64
	for _, ent := range ents {
		n, err := UpdateByID[E, P](ctx, ex, ent)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// Update runs an UPDATE built from the wrapper's SET assignments and
// conditions. An empty WHERE is refused unless explicitly allowed.
func Update[E any, P meta.RecordPtr[E]](ctx context.Context, ex Executor, w *wrapper.Wrapper) (int64, error) {
	if !w.HasSets() {
		return 0, &InvalidArgumentError{Name: "wrapper", Reason: "update needs SET assignments"}
	}
	if !w.HasWhere() && !w.AllowsEmpty() {
		return 0, ErrEmptyWhere
	}
	var e E
	table := P(&e).Table()
	s := wrapper.NewStmt(ex.dialect())
	s.Write("UPDATE ")
	s.Ident(table.Qualified())
	s.Write(" ")
	w.AppendSet(s)
	w.AppendWhere(s)
	ec := intercept.NewExecContext(intercept.OpUpdate, table, s.String(), s.Args())
	ec.Wrapper = w
	_, res, err := ex.execute(ctx, ec)
	if err != nil {
		return 0, err
	}
	return res.Affected, nil
}

// Remove deletes rows matching the wrapper. An empty WHERE is refused
// unless explicitly allowed.
func Remove[E any, P meta.RecordPtr[E]](ctx context.Context, ex Executor, w *wrapper.Wrapper) (int64, error) {
	if !w.HasWhere() && !w.AllowsEmpty() {
		return 0, ErrEmptyWhere
	}
	d := ex.dialect()
	var e E
	table := P(&e).Table()
	s := wrapper.NewStmt(d)
	s.Write("DELETE FROM ")
	s.Ident(table.Qualified())
	w.AppendWhere(s)
	ec := intercept.NewExecContext(intercept.OpDelete, table, s.String(), s.Args())
	ec.Wrapper = w
	_, res, err := ex.execute(ctx, ec)
	if err != nil {
		return 0, err
	}
	return res.Affected, nil
}

// RemoveByID deletes the row with the given identifier.
func RemoveByID[E any, P meta.RecordPtr[E]](ctx context.Context, ex Executor, id any) (int64, error) {
	_, _, idField, err := identifier[E, P]()
	if err != nil {
		return 0, err
	}
	return Remove[E, P](ctx, ex, wrapper.New().Eq(idField.Name, id))
}

// RemoveByIDs deletes the rows with the given identifiers. An empty
// list deletes nothing.
func RemoveByIDs[E any, P meta.RecordPtr[E]](ctx context.Context, ex Executor, ids []any) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	_, _, idField, err := identifier[E, P]()
	if err != nil {
		return 0, err
	}
	return Remove[E, P](ctx, ex, wrapper.New().In(idField.Name, ids...))
}

// SelectByID loads the entity with the given identifier, or nil when
// absent.
func SelectByID[E any, P meta.RecordPtr[E]](ctx context.Context, ex Executor, id any) (*E, error) {
	_, _, idField, err := identifier[E, P]()
	if err != nil {
		return nil, err
	}
	return SelectOne[E, P](ctx, ex, wrapper.New().Eq(idField.Name, id))
}

// SelectOne loads the first entity matching the wrapper, or nil when
// none does.
func SelectOne[E any, P meta.RecordPtr[E]](ctx context.Context, ex Executor, w *wrapper.Wrapper) (*E, error) {
	if w.LimitValue() < 0 {
		w.Limit(1)
	}
	list, err := List[E, P](ctx, ex, w)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// List loads every entity matching the wrapper.
func List[E any, P meta.RecordPtr[E]](ctx context.Context, ex Executor, w *wrapper.Wrapper) ([]*E, error) {
	var e E
	p := P(&e)
	table, fields := p.Table(), p.Fields()
	sql, args := buildSelect(ex.dialect(), table, fields, w)
	ec := intercept.NewExecContext(intercept.OpSelect, table, sql, args)
	ec.Wrapper = w
	rows, _, err := ex.execute(ctx, ec)
	if err != nil {
		return nil, err
	}
	return scanEntities[E, P](ex, rows)
}

// Count returns the number of rows matching the wrapper.
func Count[E any, P meta.RecordPtr[E]](ctx context.Context, ex Executor, w *wrapper.Wrapper) (int64, error) {
	var e E
	table := P(&e).Table()
	sql, args := buildCount(ex.dialect(), table, w)
	ec := intercept.NewExecContext(intercept.OpCount, table, sql, args)
	ec.Wrapper = w
	rows, _, err := ex.execute(ctx, ec)
	if err != nil {
		return 0, err
	}
	r, ok := rows.First()
	if !ok {
		return 0, nil
	}
	n, err := value.GetAt[int64](r, 0)
	if err != nil {
		return 0, err
	}
	return n, nil
}
