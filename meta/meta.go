// Package meta describes how entities map onto tables: table names,
// field descriptors, identifier strategies and automatic fill rules.
package meta

import (
	"strings"

	"github.com/syssam/mappa/value"
)

// IdentifierType selects how the identifier column obtains its value.
type IdentifierType uint8

const (
	// IDAuto relies on the database auto-increment mechanism.
	IDAuto IdentifierType = iota
	// IDInput uses the value already present on the entity.
	IDInput
	// IDAssignID fills an empty identifier with a generated snowflake id.
	IDAssignID
	// IDAssignUUID fills an empty identifier with a generated UUID.
	IDAssignUUID
)

// String returns the strategy name.
func (t IdentifierType) String() string {
	switch t {
	case IDAuto:
		return "auto"
	case IDInput:
		return "input"
	case IDAssignID:
		return "assign_id"
	case IDAssignUUID:
		return "assign_uuid"
	}
	return "unknown"
}

// FillMode selects which operations apply a fill rule.
type FillMode uint8

const (
	FillInsert FillMode = iota
	FillUpdate
	FillAlways
)

// Fill supplies a column value automatically on insert, update or both.
// Value is evaluated at statement build time.
type Fill struct {
	Mode  FillMode
	Value func() value.Value
}

// AppliesTo reports whether the rule fires for an insert (true) or
// update (false) statement.
func (f Fill) AppliesTo(insert bool) bool {
	switch f.Mode {
	case FillAlways:
		return true
	case FillInsert:
		return insert
	case FillUpdate:
		return !insert
	}
	return false
}

// FieldName describes one mapped entity field.
type FieldName struct {
	Name   string          // column name
	Table  string          // owning table, when qualified
	Alias  string          // select alias, when set
	Exist  bool            // maps to a real column
	Select bool            // included in generated select lists
	Fill   *Fill           // automatic fill rule, optional
	ID     *IdentifierType // non-nil marks the identifier column
}

// Field returns a plain selectable column descriptor.
func Field(name string) FieldName {
	return FieldName{Name: name, Exist: true, Select: true}
}

// IDField returns an identifier column descriptor.
func IDField(name string, t IdentifierType) FieldName {
	f := Field(name)
	f.ID = &t
	return f
}

// IsID reports whether the field is the identifier column.
func (f FieldName) IsID() bool { return f.ID != nil }

// Column returns the name used in result sets: the alias when set,
// otherwise the column name.
func (f FieldName) Column() string {
	if f.Alias != "" {
		return f.Alias
	}
	return f.Name
}

// TableName identifies a table, optionally schema-qualified and aliased.
type TableName struct {
	Name               string
	Schema             string
	Alias              string
	IgnoreInterceptors []string // interceptor names skipped for this table
}

// ParseTable parses "table", "schema.table", "table AS alias" and
// "schema.table alias" literals.
func ParseTable(s string) TableName {
	var t TableName
	s = strings.TrimSpace(s)
	if i := indexFold(s, " as "); i >= 0 {
		t.Alias = strings.TrimSpace(s[i+4:])
		s = strings.TrimSpace(s[:i])
	} else if i := strings.LastIndexByte(s, ' '); i >= 0 {
		t.Alias = strings.TrimSpace(s[i+1:])
		s = strings.TrimSpace(s[:i])
	}
	if i := strings.IndexByte(s, '.'); i >= 0 {
		t.Schema = s[:i]
		s = s[i+1:]
	}
	t.Name = s
	return t
}

// Ignores reports whether the named interceptor is skipped for this table.
func (t TableName) Ignores(name string) bool {
	for _, n := range t.IgnoreInterceptors {
		if n == name {
			return true
		}
	}
	return false
}

// Qualified returns "schema.name" or "name".
func (t TableName) Qualified() string {
	if t.Schema != "" {
		return t.Schema + "." + t.Name
	}
	return t.Name
}

// String returns the qualified name with its alias, if any.
func (t TableName) String() string {
	q := t.Qualified()
	if t.Alias != "" {
		return q + " AS " + t.Alias
	}
	return q
}

func indexFold(s, sub string) int {
	return strings.Index(strings.ToLower(s), sub)
}

// Record is implemented by mapped entity types. Implementations are
// normally pointer receivers so ScanRow can populate the entity.
type Record interface {
	// Table returns the mapped table.
	Table() TableName
	// Fields returns the mapped field descriptors in column order.
	Fields() []FieldName
	// IntoValue renders the entity as an ordered object keyed by
	// column name.
	IntoValue() value.Value
}

// RecordScanner is implemented by entities that can populate themselves
// from a result-set row.
type RecordScanner interface {
	ScanRow(*value.Row) error
}

// RecordPtr constrains a pointer-to-entity type that implements both
// Record and RecordScanner.
type RecordPtr[E any] interface {
	*E
	Record
	RecordScanner
}

// IdentifierField returns the identifier descriptor among fields.
func IdentifierField(fields []FieldName) (FieldName, bool) {
	for _, f := range fields {
		if f.IsID() {
			return f, true
		}
	}
	return FieldName{}, false
}

// SelectColumns returns the column list for generated selects: existing
// fields marked selectable, aliased where declared.
func SelectColumns(fields []FieldName) []string {
	cols := make([]string, 0, len(fields))
	for _, f := range fields {
		if !f.Exist || !f.Select {
			continue
		}
		cols = append(cols, f.Name)
	}
	return cols
}
