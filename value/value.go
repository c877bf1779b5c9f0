// Package value implements the dynamic value domain shared by drivers,
// the query builder and entity materialization. A Value is a tagged union
// spanning every SQL scalar, temporal, decimal, blob, JSON, UUID, array,
// list and object kind a supported backend can produce.
package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind identifies the variant stored in a Value.
type Kind uint8

// Supported value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindTinyint
	KindSmallint
	KindInt
	KindBigint
	KindFloat
	KindDouble
	KindDecimal
	KindChar
	KindText
	KindJSON
	KindBlob
	KindUUID
	KindDate
	KindTime
	KindDateTime
	KindTimestamp
	KindInterval
	KindArray
	KindList
	KindObject
	KindRawSQL
)

var kindNames = [...]string{
	KindNull:      "Null",
	KindBool:      "Bool",
	KindTinyint:   "Tinyint",
	KindSmallint:  "Smallint",
	KindInt:       "Int",
	KindBigint:    "Bigint",
	KindFloat:     "Float",
	KindDouble:    "Double",
	KindDecimal:   "BigDecimal",
	KindChar:      "Char",
	KindText:      "Text",
	KindJSON:      "Json",
	KindBlob:      "Blob",
	KindUUID:      "Uuid",
	KindDate:      "Date",
	KindTime:      "Time",
	KindDateTime:  "DateTime",
	KindTimestamp: "Timestamp",
	KindInterval:  "Interval",
	KindArray:     "Array",
	KindList:      "List",
	KindObject:    "Object",
	KindRawSQL:    "RawSql",
}

// String returns the variant name of the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Numeric reports whether the kind is an integer, float or decimal variant.
func (k Kind) Numeric() bool {
	switch k {
	case KindTinyint, KindSmallint, KindInt, KindBigint, KindFloat, KindDouble, KindDecimal:
		return true
	}
	return false
}

// Interval is a backend-neutral SQL interval, split the way PostgreSQL
// stores it: months and days carry calendar units that have no fixed
// microsecond length.
type Interval struct {
	Months       int32
	Days         int32
	Microseconds int64
}

// Array is a homogeneous vector of a primitive variant. All Values share
// the Elem kind.
type Array struct {
	Elem   Kind
	Values []Value
}

// Value is the tagged union bridging database results and entity fields.
// The zero Value is Null. Values are cheap to copy; payloads are shared.
type Value struct {
	kind Kind
	v    any
}

// Null returns the absent value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(v bool) Value { return Value{kind: KindBool, v: v} }

// Tinyint returns an 8-bit integer value.
func Tinyint(v int8) Value { return Value{kind: KindTinyint, v: v} }

// Smallint returns a 16-bit integer value.
func Smallint(v int16) Value { return Value{kind: KindSmallint, v: v} }

// Int returns a 32-bit integer value.
func Int(v int32) Value { return Value{kind: KindInt, v: v} }

// Bigint returns a 64-bit integer value.
func Bigint(v int64) Value { return Value{kind: KindBigint, v: v} }

// Float returns a 32-bit float value.
func Float(v float32) Value { return Value{kind: KindFloat, v: v} }

// Double returns a 64-bit float value.
func Double(v float64) Value { return Value{kind: KindDouble, v: v} }

// Decimal returns an arbitrary-precision decimal value.
func Decimal(v decimal.Decimal) Value { return Value{kind: KindDecimal, v: v} }

// Char returns a single code point value.
func Char(v rune) Value { return Value{kind: KindChar, v: v} }

// Text returns a UTF-8 string value.
func Text(v string) Value { return Value{kind: KindText, v: v} }

// JSON returns a parsed JSON tree value. The payload follows the
// encoding/json mapping: nil, bool, float64, string, []any and
// map[string]any.
func JSON(v any) Value { return Value{kind: KindJSON, v: v} }

// Blob returns an opaque byte value.
func Blob(v []byte) Value { return Value{kind: KindBlob, v: v} }

// UUID returns a 128-bit UUID value.
func UUID(v uuid.UUID) Value { return Value{kind: KindUUID, v: v} }

// Date returns a naive calendar date. Clock components are truncated.
func Date(v time.Time) Value {
	y, m, d := v.Date()
	return Value{kind: KindDate, v: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// TimeOfDay returns a naive wall-clock time. Date components are dropped.
func TimeOfDay(v time.Time) Value {
	return Value{kind: KindTime, v: time.Date(1, 1, 1, v.Hour(), v.Minute(), v.Second(), v.Nanosecond(), time.UTC)}
}

// DateTime returns a naive calendar timestamp with no zone attached.
func DateTime(v time.Time) Value {
	return Value{kind: KindDateTime, v: time.Date(v.Year(), v.Month(), v.Day(), v.Hour(), v.Minute(), v.Second(), v.Nanosecond(), time.UTC)}
}

// Timestamp returns a UTC instant.
func Timestamp(v time.Time) Value { return Value{kind: KindTimestamp, v: v.UTC()} }

// IntervalOf returns an interval value.
func IntervalOf(iv Interval) Value { return Value{kind: KindInterval, v: iv} }

// ArrayOf returns a homogeneous array value. Elements whose kind differs
// from elem are rejected.
func ArrayOf(elem Kind, values ...Value) (Value, error) {
	for i, v := range values {
		if v.kind != elem {
			return Null(), &TypeMismatchError{Expected: elem.String(), Found: v.kind, Index: i}
		}
	}
	return Value{kind: KindArray, v: Array{Elem: elem, Values: values}}, nil
}

// ListOf returns a heterogeneous sequence value.
func ListOf(values ...Value) Value { return Value{kind: KindList, v: values} }

// ObjectOf returns an object value wrapping the given ordered map.
// A nil object is treated as empty.
func ObjectOf(o *Object) Value {
	if o == nil {
		o = NewObject()
	}
	return Value{kind: KindObject, v: o}
}

// Raw returns a verbatim SQL expression. Raw values are spliced into the
// final statement text and never appear in the parameter vector.
func Raw(sql string) Value { return Value{kind: KindRawSQL, v: sql} }

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is absent.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) {
	b, ok := v.v.(bool)
	return b, ok && v.kind == KindBool
}

// AsInt64 widens any integer variant to int64.
func (v Value) AsInt64() (int64, bool) {
	switch v.kind {
	case KindTinyint:
		return int64(v.v.(int8)), true
	case KindSmallint:
		return int64(v.v.(int16)), true
	case KindInt:
		return int64(v.v.(int32)), true
	case KindBigint:
		return v.v.(int64), true
	}
	return 0, false
}

// AsFloat64 widens any float variant to float64.
func (v Value) AsFloat64() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return float64(v.v.(float32)), true
	case KindDouble:
		return v.v.(float64), true
	}
	return 0, false
}

// AsDecimal returns the decimal payload.
func (v Value) AsDecimal() (decimal.Decimal, bool) {
	d, ok := v.v.(decimal.Decimal)
	return d, ok && v.kind == KindDecimal
}

// AsString returns the textual payload of Text and Char values.
func (v Value) AsString() (string, bool) {
	switch v.kind {
	case KindText:
		return v.v.(string), true
	case KindChar:
		return string(v.v.(rune)), true
	}
	return "", false
}

// AsBytes returns the blob payload.
func (v Value) AsBytes() ([]byte, bool) {
	b, ok := v.v.([]byte)
	return b, ok && v.kind == KindBlob
}

// AsUUID returns the UUID payload.
func (v Value) AsUUID() (uuid.UUID, bool) {
	u, ok := v.v.(uuid.UUID)
	return u, ok && v.kind == KindUUID
}

// AsTime returns the temporal payload of Date, Time, DateTime and
// Timestamp values.
func (v Value) AsTime() (time.Time, bool) {
	switch v.kind {
	case KindDate, KindTime, KindDateTime, KindTimestamp:
		return v.v.(time.Time), true
	}
	return time.Time{}, false
}

// AsInterval returns the interval payload.
func (v Value) AsInterval() (Interval, bool) {
	iv, ok := v.v.(Interval)
	return iv, ok && v.kind == KindInterval
}

// AsJSON returns the parsed JSON payload.
func (v Value) AsJSON() (any, bool) {
	if v.kind != KindJSON {
		return nil, false
	}
	return v.v, true
}

// AsArray returns the homogeneous array payload.
func (v Value) AsArray() (Array, bool) {
	a, ok := v.v.(Array)
	return a, ok && v.kind == KindArray
}

// AsList returns the heterogeneous list payload.
func (v Value) AsList() ([]Value, bool) {
	l, ok := v.v.([]Value)
	return l, ok && v.kind == KindList
}

// AsObject returns the ordered object payload.
func (v Value) AsObject() (*Object, bool) {
	o, ok := v.v.(*Object)
	return o, ok && v.kind == KindObject
}

// AsRawSQL returns the verbatim SQL payload.
func (v Value) AsRawSQL() (string, bool) {
	s, ok := v.v.(string)
	return s, ok && v.kind == KindRawSQL
}

// Truthy converts the value to a boolean under the defined truthiness
// rule: Null, false, zero integers and empty Text are false; Text parses
// the usual boolean spellings case-insensitively.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.v.(bool)
	case KindTinyint, KindSmallint, KindInt, KindBigint:
		n, _ := v.AsInt64()
		return n != 0
	case KindFloat, KindDouble:
		f, _ := v.AsFloat64()
		return f != 0
	case KindText:
		s := strings.ToLower(strings.TrimSpace(v.v.(string)))
		switch s {
		case "", "false", "0", "no", "off":
			return false
		case "true", "1", "yes", "on":
			return true
		}
		return true
	}
	return true
}

// String renders the canonical display form: timestamps as RFC-3339,
// dates as 2006-01-02, arrays and JSON as their JSON encoding.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "Null"
	case KindBool:
		return fmt.Sprintf("%t", v.v.(bool))
	case KindTinyint, KindSmallint, KindInt, KindBigint:
		n, _ := v.AsInt64()
		return fmt.Sprintf("%d", n)
	case KindFloat, KindDouble:
		f, _ := v.AsFloat64()
		return fmt.Sprintf("%v", f)
	case KindDecimal:
		return v.v.(decimal.Decimal).String()
	case KindChar:
		return string(v.v.(rune))
	case KindText:
		return v.v.(string)
	case KindJSON:
		b, err := json.Marshal(v.v)
		if err != nil {
			return ""
		}
		return string(b)
	case KindBlob:
		return string(v.v.([]byte))
	case KindUUID:
		return v.v.(uuid.UUID).String()
	case KindDate:
		return v.v.(time.Time).Format("2006-01-02")
	case KindTime:
		return v.v.(time.Time).Format("15:04:05")
	case KindDateTime:
		return v.v.(time.Time).Format("2006-01-02 15:04:05")
	case KindTimestamp:
		return v.v.(time.Time).Format(time.RFC3339)
	case KindInterval:
		iv := v.v.(Interval)
		return fmt.Sprintf("%d mons %d days %d us", iv.Months, iv.Days, iv.Microseconds)
	case KindArray:
		a := v.v.(Array)
		parts := make([]string, len(a.Values))
		for i, e := range a.Values {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ",") + "]"
	case KindList:
		l := v.v.([]Value)
		parts := make([]string, len(l))
		for i, e := range l {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ",") + "]"
	case KindObject:
		o := v.v.(*Object)
		var sb strings.Builder
		sb.WriteByte('{')
		for i, k := range o.Keys() {
			if i > 0 {
				sb.WriteByte(',')
			}
			e, _ := o.Get(k)
			fmt.Fprintf(&sb, "%q:%s", k, e.String())
		}
		sb.WriteByte('}')
		return sb.String()
	case KindRawSQL:
		return v.v.(string)
	}
	return ""
}

// Equal reports deep equality, including element order for objects and
// instant equality for temporal payloads.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindDecimal:
		return v.v.(decimal.Decimal).Equal(o.v.(decimal.Decimal))
	case KindDate, KindTime, KindDateTime, KindTimestamp:
		return v.v.(time.Time).Equal(o.v.(time.Time))
	case KindBlob:
		return bytes.Equal(v.v.([]byte), o.v.([]byte))
	case KindJSON:
		a, _ := json.Marshal(v.v)
		b, _ := json.Marshal(o.v)
		return bytes.Equal(a, b)
	case KindArray:
		av, bv := v.v.(Array), o.v.(Array)
		if av.Elem != bv.Elem || len(av.Values) != len(bv.Values) {
			return false
		}
		for i := range av.Values {
			if !av.Values[i].Equal(bv.Values[i]) {
				return false
			}
		}
		return true
	case KindList:
		av, bv := v.v.([]Value), o.v.([]Value)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !av[i].Equal(bv[i]) {
				return false
			}
		}
		return true
	case KindObject:
		return v.v.(*Object).Equal(o.v.(*Object))
	}
	return v.v == o.v
}

// Object is an insertion-ordered map of string to Value with unique keys.
type Object struct {
	keys   []string
	values map[string]Value
}

// NewObject returns an empty ordered object.
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

// Len returns the number of entries.
func (o *Object) Len() int { return len(o.keys) }

// Set inserts or replaces the entry for key, preserving the original
// insertion position on replace.
func (o *Object) Set(key string, v Value) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Get returns the entry for key.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Index returns the entry at position i in insertion order.
func (o *Object) Index(i int) (string, Value, bool) {
	if i < 0 || i >= len(o.keys) {
		return "", Null(), false
	}
	k := o.keys[i]
	return k, o.values[k], true
}

// Delete removes the entry for key and returns it.
func (o *Object) Delete(key string) (Value, bool) {
	v, ok := o.values[key]
	if !ok {
		return Null(), false
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
	return v, true
}

// Keys returns the keys in insertion order. The slice is shared; callers
// must not mutate it.
func (o *Object) Keys() []string { return o.keys }

// Equal reports equality including key order.
func (o *Object) Equal(other *Object) bool {
	if o.Len() != other.Len() {
		return false
	}
	for i, k := range o.keys {
		if other.keys[i] != k {
			return false
		}
		if !o.values[k].Equal(other.values[k]) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the object.
func (o *Object) Clone() *Object {
	c := NewObject()
	for _, k := range o.keys {
		c.Set(k, o.values[k])
	}
	return c
}
