package value

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Valuer is implemented by types that can convert themselves to a Value.
type Valuer interface {
	IntoValue() Value
}

// temporalFormats are tried in order when parsing Text into a temporal
// target. Go accepts a trailing fractional second even when the layout
// omits one.
var temporalFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"15:04:05",
}

// Of converts a native Go value to a Value. Nil pointers and nil map to
// Null. Types with no direct mapping are encoded through their JSON form.
func Of(v any) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case Valuer:
		return x.IntoValue()
	case bool:
		return Bool(x)
	case int8:
		return Tinyint(x)
	case int16:
		return Smallint(x)
	case int32:
		return Int(x)
	case int64:
		return Bigint(x)
	case int:
		return Bigint(int64(x))
	case uint8:
		return Smallint(int16(x))
	case uint16:
		return Int(int32(x))
	case uint32:
		return Bigint(int64(x))
	case uint64:
		return Bigint(int64(x))
	case uint:
		return Bigint(int64(x))
	case float32:
		return Float(x)
	case float64:
		return Double(x)
	case decimal.Decimal:
		return Decimal(x)
	case string:
		return Text(x)
	case []byte:
		return Blob(x)
	case uuid.UUID:
		return UUID(x)
	case time.Time:
		return Timestamp(x)
	case time.Duration:
		return IntervalOf(Interval{Microseconds: x.Microseconds()})
	case Interval:
		return IntervalOf(x)
	case *Object:
		return ObjectOf(x)
	case []Value:
		return ListOf(x...)
	case []any:
		vs := make([]Value, len(x))
		for i, e := range x {
			vs[i] = Of(e)
		}
		return ListOf(vs...)
	case []string:
		vs := make([]Value, len(x))
		for i, e := range x {
			vs[i] = Text(e)
		}
		a, _ := ArrayOf(KindText, vs...)
		return a
	case []int64:
		vs := make([]Value, len(x))
		for i, e := range x {
			vs[i] = Bigint(e)
		}
		a, _ := ArrayOf(KindBigint, vs...)
		return a
	case []int:
		vs := make([]Value, len(x))
		for i, e := range x {
			vs[i] = Bigint(int64(e))
		}
		a, _ := ArrayOf(KindBigint, vs...)
		return a
	case []float64:
		vs := make([]Value, len(x))
		for i, e := range x {
			vs[i] = Double(e)
		}
		a, _ := ArrayOf(KindDouble, vs...)
		return a
	case map[string]Value:
		o := NewObject()
		for k, e := range x {
			o.Set(k, e)
		}
		return ObjectOf(o)
	case *bool:
		if x == nil {
			return Null()
		}
		return Bool(*x)
	case *int:
		if x == nil {
			return Null()
		}
		return Bigint(int64(*x))
	case *int64:
		if x == nil {
			return Null()
		}
		return Bigint(*x)
	case *float64:
		if x == nil {
			return Null()
		}
		return Double(*x)
	case *string:
		if x == nil {
			return Null()
		}
		return Text(*x)
	case *time.Time:
		if x == nil {
			return Null()
		}
		return Timestamp(*x)
	case *uuid.UUID:
		if x == nil {
			return Null()
		}
		return UUID(*x)
	case *decimal.Decimal:
		if x == nil {
			return Null()
		}
		return Decimal(*x)
	}
	if b, err := json.Marshal(v); err == nil {
		var tree any
		if json.Unmarshal(b, &tree) == nil {
			return JSON(tree)
		}
	}
	return Text(fmt.Sprint(v))
}

// From converts the value to T, panicking on failure. Use FromOpt when
// the conversion may legitimately fail.
func From[T any](v Value) T {
	t, err := FromOpt[T](v)
	if err != nil {
		panic(err)
	}
	return t
}

// FromOpt converts the value to T. Pointer targets map Null to nil;
// every other target rejects Null with a TypeMismatchError.
func FromOpt[T any](v Value) (T, error) {
	var t T
	if err := v.Scan(&t); err != nil {
		var zero T
		return zero, err
	}
	return t, nil
}

// Scan converts the value into dst, which must be a pointer to a
// supported target type. Double-pointer targets are optional: Null
// stores nil, any other value allocates.
func (v Value) Scan(dst any) error {
	switch d := dst.(type) {
	case *Value:
		*d = v
		return nil
	case *any:
		if v.kind == KindNull {
			*d = nil
		} else {
			*d = v.v
		}
		return nil
	case *bool:
		return v.scanBool(d)
	case *string:
		return v.scanString(d)
	case *int8:
		n, err := v.scanInt("int8")
		if err != nil {
			return err
		}
		*d = int8(n)
		return nil
	case *int16:
		n, err := v.scanInt("int16")
		if err != nil {
			return err
		}
		*d = int16(n)
		return nil
	case *int32:
		n, err := v.scanInt("int32")
		if err != nil {
			return err
		}
		*d = int32(n)
		return nil
	case *int64:
		n, err := v.scanInt("int64")
		if err != nil {
			return err
		}
		*d = n
		return nil
	case *int:
		n, err := v.scanInt("int")
		if err != nil {
			return err
		}
		*d = int(n)
		return nil
	case *uint8:
		n, err := v.scanUint("uint8")
		if err != nil {
			return err
		}
		*d = uint8(n)
		return nil
	case *uint16:
		n, err := v.scanUint("uint16")
		if err != nil {
			return err
		}
		*d = uint16(n)
		return nil
	case *uint32:
		n, err := v.scanUint("uint32")
		if err != nil {
			return err
		}
		*d = uint32(n)
		return nil
	case *uint64:
		n, err := v.scanUint("uint64")
		if err != nil {
			return err
		}
		*d = n
		return nil
	case *uint:
		n, err := v.scanUint("uint")
		if err != nil {
			return err
		}
		*d = uint(n)
		return nil
	case *float32:
		f, err := v.scanFloat("float32", KindFloat)
		if err != nil {
			return err
		}
		*d = float32(f)
		return nil
	case *float64:
		f, err := v.scanFloat("float64", KindDouble)
		if err != nil {
			return err
		}
		*d = f
		return nil
	case *decimal.Decimal:
		return v.scanDecimal(d)
	case *[]byte:
		return v.scanBytes(d)
	case *uuid.UUID:
		return v.scanUUID(d)
	case *time.Time:
		return v.scanTime(d)
	case *time.Duration:
		iv, ok := v.AsInterval()
		if !ok {
			return NewTypeMismatchError("time.Duration", v.kind)
		}
		if iv.Months != 0 {
			return NewTypeMismatchError("time.Duration (interval has months)", v.kind)
		}
		*d = time.Duration(iv.Microseconds)*time.Microsecond + time.Duration(iv.Days)*24*time.Hour
		return nil
	case *Interval:
		iv, ok := v.AsInterval()
		if !ok {
			return NewTypeMismatchError("Interval", v.kind)
		}
		*d = iv
		return nil
	case *map[string]Value:
		o, ok := v.AsObject()
		if !ok {
			return NewTypeMismatchError("map[string]Value", v.kind)
		}
		m := make(map[string]Value, o.Len())
		for _, k := range o.Keys() {
			e, _ := o.Get(k)
			m[k] = e
		}
		*d = m
		return nil
	case *[]Value:
		switch v.kind {
		case KindList:
			*d = append([]Value(nil), v.v.([]Value)...)
			return nil
		case KindArray:
			*d = append([]Value(nil), v.v.(Array).Values...)
			return nil
		}
		return NewTypeMismatchError("[]Value", v.kind)
	case *[]string:
		return scanSlice(v, d)
	case *[]int64:
		return scanSlice(v, d)
	case *[]int:
		return scanSlice(v, d)
	case *[]float64:
		return scanSlice(v, d)
	case **bool:
		return scanOptional(v, d)
	case **string:
		return scanOptional(v, d)
	case **int8:
		return scanOptional(v, d)
	case **int16:
		return scanOptional(v, d)
	case **int32:
		return scanOptional(v, d)
	case **int64:
		return scanOptional(v, d)
	case **int:
		return scanOptional(v, d)
	case **uint64:
		return scanOptional(v, d)
	case **float32:
		return scanOptional(v, d)
	case **float64:
		return scanOptional(v, d)
	case **decimal.Decimal:
		return scanOptional(v, d)
	case **time.Time:
		return scanOptional(v, d)
	case **uuid.UUID:
		return scanOptional(v, d)
	case **[]byte:
		return scanOptional(v, d)
	}
	return NewTypeMismatchError(fmt.Sprintf("%T", dst), v.kind)
}

// scanOptional maps Null to nil and allocates for any other value.
func scanOptional[T any](v Value, d **T) error {
	if v.kind == KindNull {
		*d = nil
		return nil
	}
	t := new(T)
	if err := v.Scan(t); err != nil {
		return err
	}
	*d = t
	return nil
}

// scanSlice converts List and Array payloads element by element.
func scanSlice[T any](v Value, d *[]T) error {
	var elems []Value
	switch v.kind {
	case KindList:
		elems = v.v.([]Value)
	case KindArray:
		elems = v.v.(Array).Values
	default:
		var t T
		return NewTypeMismatchError(fmt.Sprintf("[]%T", t), v.kind)
	}
	out := make([]T, len(elems))
	for i, e := range elems {
		if err := e.Scan(&out[i]); err != nil {
			return err
		}
	}
	*d = out
	return nil
}

func (v Value) scanBool(d *bool) error {
	switch v.kind {
	case KindBool:
		*d = v.v.(bool)
	case KindTinyint, KindSmallint, KindInt, KindBigint, KindFloat, KindDouble, KindText:
		*d = v.Truthy()
	default:
		return NewTypeMismatchError("bool", v.kind)
	}
	return nil
}

func (v Value) scanString(d *string) error {
	if v.kind == KindNull {
		return NewTypeMismatchError("string", v.kind)
	}
	*d = v.String()
	return nil
}

// scanInt accepts every integer kind regardless of target width; the
// caller's cast truncates like the backend would. Text parses.
func (v Value) scanInt(target string) (int64, error) {
	switch v.kind {
	case KindTinyint, KindSmallint, KindInt, KindBigint:
		n, _ := v.AsInt64()
		return n, nil
	case KindText:
		n, err := strconv.ParseInt(v.v.(string), 10, 64)
		if err != nil {
			return 0, NewParseError(v.v.(string), target, err)
		}
		return n, nil
	}
	return 0, NewTypeMismatchError(target, v.kind)
}

func (v Value) scanUint(target string) (uint64, error) {
	n, err := v.scanInt(target)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, NewTypeMismatchError(target+" (negative)", v.kind)
	}
	return uint64(n), nil
}

// scanFloat accepts float kinds no wider than width, any integer kind,
// decimals and Text parses.
func (v Value) scanFloat(target string, width Kind) (float64, error) {
	switch v.kind {
	case KindFloat, KindDouble:
		if v.kind > width {
			return 0, NewTypeMismatchError(target, v.kind)
		}
		f, _ := v.AsFloat64()
		return f, nil
	case KindTinyint, KindSmallint, KindInt, KindBigint:
		n, _ := v.AsInt64()
		return float64(n), nil
	case KindDecimal:
		return v.v.(decimal.Decimal).InexactFloat64(), nil
	case KindText:
		f, err := strconv.ParseFloat(v.v.(string), 64)
		if err != nil {
			return 0, NewParseError(v.v.(string), target, err)
		}
		return f, nil
	}
	return 0, NewTypeMismatchError(target, v.kind)
}

func (v Value) scanDecimal(d *decimal.Decimal) error {
	switch v.kind {
	case KindDecimal:
		*d = v.v.(decimal.Decimal)
		return nil
	case KindTinyint, KindSmallint, KindInt, KindBigint:
		n, _ := v.AsInt64()
		*d = decimal.NewFromInt(n)
		return nil
	case KindFloat, KindDouble:
		f, _ := v.AsFloat64()
		*d = decimal.NewFromFloat(f)
		return nil
	case KindText:
		dec, err := decimal.NewFromString(v.v.(string))
		if err != nil {
			return NewParseError(v.v.(string), "decimal.Decimal", err)
		}
		*d = dec
		return nil
	}
	return NewTypeMismatchError("decimal.Decimal", v.kind)
}

func (v Value) scanBytes(d *[]byte) error {
	switch v.kind {
	case KindBlob:
		*d = v.v.([]byte)
		return nil
	case KindText:
		*d = []byte(v.v.(string))
		return nil
	}
	return NewTypeMismatchError("[]byte", v.kind)
}

func (v Value) scanUUID(d *uuid.UUID) error {
	switch v.kind {
	case KindUUID:
		*d = v.v.(uuid.UUID)
		return nil
	case KindText:
		u, err := uuid.Parse(v.v.(string))
		if err != nil {
			return NewParseError(v.v.(string), "uuid.UUID", err)
		}
		*d = u
		return nil
	case KindBlob:
		u, err := uuid.FromBytes(v.v.([]byte))
		if err != nil {
			return NewTypeMismatchError("uuid.UUID", v.kind)
		}
		*d = u
		return nil
	}
	return NewTypeMismatchError("uuid.UUID", v.kind)
}

func (v Value) scanTime(d *time.Time) error {
	if t, ok := v.AsTime(); ok {
		*d = t
		return nil
	}
	if v.kind != KindText {
		return NewTypeMismatchError("time.Time", v.kind)
	}
	s := v.v.(string)
	for _, layout := range temporalFormats {
		if t, err := time.Parse(layout, s); err == nil {
			*d = t
			return nil
		}
	}
	return NewParseError(s, "time.Time", nil)
}

// Arg returns the payload to bind as a driver argument. RawSql values
// are never bound; the builder splices them into the statement text.
func (v Value) Arg() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.v.(bool)
	case KindTinyint, KindSmallint, KindInt, KindBigint:
		n, _ := v.AsInt64()
		return n
	case KindFloat, KindDouble:
		f, _ := v.AsFloat64()
		return f
	case KindDecimal:
		return v.v.(decimal.Decimal).String()
	case KindBlob:
		return v.v.([]byte)
	case KindDate, KindTime, KindDateTime, KindTimestamp:
		return v.v.(time.Time)
	}
	return v.String()
}
