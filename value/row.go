package value

// Row is one result-set row: a shared column header plus one value per
// column. Lookups by name resolve through the header.
type Row struct {
	columns []string
	index   map[string]int
	data    []Value
}

// NewRow returns a row over the given header and values. The header and
// values must have equal length; extra values are truncated.
func NewRow(columns []string, data []Value) *Row {
	if len(data) > len(columns) {
		data = data[:len(columns)]
	}
	for len(data) < len(columns) {
		data = append(data, Null())
	}
	idx := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, ok := idx[c]; !ok {
			idx[c] = i
		}
	}
	return &Row{columns: columns, index: idx, data: data}
}

// Columns returns the column header. The slice is shared; callers must
// not mutate it.
func (r *Row) Columns() []string { return r.columns }

// Len returns the number of columns.
func (r *Row) Len() int { return len(r.columns) }

// Value returns the value stored under the named column.
func (r *Row) Value(name string) (Value, error) {
	i, ok := r.index[name]
	if !ok {
		return Null(), &NoSuchValueError{Name: name}
	}
	return r.data[i], nil
}

// ValueAt returns the value at position i.
func (r *Row) ValueAt(i int) (Value, error) {
	if i < 0 || i >= len(r.data) {
		return Null(), &IndexOutOfBoundsError{Index: i, Len: len(r.data)}
	}
	return r.data[i], nil
}

// Take removes the value stored under the named column, leaving Null in
// its slot. Useful when materializing owned fields out of a row.
func (r *Row) Take(name string) (Value, error) {
	i, ok := r.index[name]
	if !ok {
		return Null(), &NoSuchValueError{Name: name}
	}
	v := r.data[i]
	r.data[i] = Null()
	return v, nil
}

// TakeAt removes the value at position i, leaving Null in its slot.
func (r *Row) TakeAt(i int) (Value, error) {
	if i < 0 || i >= len(r.data) {
		return Null(), &IndexOutOfBoundsError{Index: i, Len: len(r.data)}
	}
	v := r.data[i]
	r.data[i] = Null()
	return v, nil
}

// Object returns the row as an ordered object keyed by column name.
// Duplicate column names keep the first occurrence.
func (r *Row) Object() *Object {
	o := NewObject()
	for i, c := range r.columns {
		if _, ok := o.Get(c); !ok {
			o.Set(c, r.data[i])
		}
	}
	return o
}

// Get converts the named column to T.
func Get[T any](r *Row, name string) (T, error) {
	v, err := r.Value(name)
	if err != nil {
		var zero T
		return zero, err
	}
	return FromOpt[T](v)
}

// GetAt converts the column at position i to T.
func GetAt[T any](r *Row, i int) (T, error) {
	v, err := r.ValueAt(i)
	if err != nil {
		var zero T
		return zero, err
	}
	return FromOpt[T](v)
}

// Rows is an in-memory result set.
type Rows struct {
	columns []string
	rows    []*Row
}

// NewRows returns an empty result set with the given header.
func NewRows(columns []string) *Rows {
	return &Rows{columns: columns}
}

// Columns returns the shared column header.
func (rs *Rows) Columns() []string { return rs.columns }

// Len returns the number of rows.
func (rs *Rows) Len() int { return len(rs.rows) }

// Append adds a row built from data under the shared header.
func (rs *Rows) Append(data []Value) {
	rs.rows = append(rs.rows, NewRow(rs.columns, data))
}

// At returns the row at position i.
func (rs *Rows) At(i int) (*Row, error) {
	if i < 0 || i >= len(rs.rows) {
		return nil, &IndexOutOfBoundsError{Index: i, Len: len(rs.rows)}
	}
	return rs.rows[i], nil
}

// First returns the first row, if any.
func (rs *Rows) First() (*Row, bool) {
	if len(rs.rows) == 0 {
		return nil, false
	}
	return rs.rows[0], true
}

// All returns the underlying rows. The slice is shared; callers must not
// mutate it.
func (rs *Rows) All() []*Row { return rs.rows }

// NamedValue is a parameter bound by name.
type NamedValue struct {
	Name  string
	Value Value
}

// Params carries statement parameters, either positional or named.
// The zero Params binds nothing.
type Params struct {
	Values []Value
	Named  []NamedValue
}

// Positional returns positional parameters.
func Positional(vs ...Value) Params { return Params{Values: vs} }

// ByName returns named parameters.
func ByName(pairs ...NamedValue) Params { return Params{Named: pairs} }

// IsEmpty reports whether no parameters are bound.
func (p Params) IsEmpty() bool { return len(p.Values) == 0 && len(p.Named) == 0 }

// Len returns the number of bound parameters.
func (p Params) Len() int {
	if len(p.Named) > 0 {
		return len(p.Named)
	}
	return len(p.Values)
}
