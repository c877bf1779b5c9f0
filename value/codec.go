package value

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vmihailenco/msgpack/v5"
)

// wireValue is the msgpack shape of a Value. One payload field is set
// per kind; the rest stay at their zero value and encode compactly.
type wireValue struct {
	Kind   uint8       `msgpack:"k"`
	B      bool        `msgpack:"b,omitempty"`
	I      int64       `msgpack:"i,omitempty"`
	F      float64     `msgpack:"f,omitempty"`
	S      string      `msgpack:"s,omitempty"`
	Bytes  []byte      `msgpack:"y,omitempty"`
	T      time.Time   `msgpack:"t,omitempty"`
	Months int32       `msgpack:"m,omitempty"`
	Days   int32       `msgpack:"d,omitempty"`
	Elem   uint8       `msgpack:"e,omitempty"`
	Keys   []string    `msgpack:"ks,omitempty"`
	Vals   []wireValue `msgpack:"vs,omitempty"`
}

type wireRows struct {
	Columns []string      `msgpack:"c"`
	Rows    [][]wireValue `msgpack:"r"`
}

// EncodeRows serializes a result set for the query cache.
func EncodeRows(rs *Rows) ([]byte, error) {
	w := wireRows{Columns: rs.Columns(), Rows: make([][]wireValue, 0, rs.Len())}
	for _, r := range rs.All() {
		wr := make([]wireValue, r.Len())
		for i := range wr {
			v, _ := r.ValueAt(i)
			wr[i] = toWire(v)
		}
		w.Rows = append(w.Rows, wr)
	}
	return msgpack.Marshal(w)
}

// DecodeRows deserializes a result set produced by EncodeRows.
func DecodeRows(b []byte) (*Rows, error) {
	var w wireRows
	if err := msgpack.Unmarshal(b, &w); err != nil {
		return nil, err
	}
	rs := NewRows(w.Columns)
	for _, wr := range w.Rows {
		data := make([]Value, len(wr))
		for i, wv := range wr {
			v, err := fromWire(wv)
			if err != nil {
				return nil, err
			}
			data[i] = v
		}
		rs.Append(data)
	}
	return rs, nil
}

func toWire(v Value) wireValue {
	w := wireValue{Kind: uint8(v.kind)}
	switch v.kind {
	case KindNull:
	case KindBool:
		w.B = v.v.(bool)
	case KindTinyint, KindSmallint, KindInt, KindBigint:
		w.I, _ = v.AsInt64()
	case KindFloat, KindDouble:
		w.F, _ = v.AsFloat64()
	case KindDecimal:
		w.S = v.v.(decimal.Decimal).String()
	case KindChar:
		w.I = int64(v.v.(rune))
	case KindText, KindRawSQL:
		w.S = v.v.(string)
	case KindJSON:
		b, _ := json.Marshal(v.v)
		w.Bytes = b
	case KindBlob:
		w.Bytes = v.v.([]byte)
	case KindUUID:
		u := v.v.(uuid.UUID)
		w.Bytes = u[:]
	case KindDate, KindTime, KindDateTime, KindTimestamp:
		w.T = v.v.(time.Time)
	case KindInterval:
		iv := v.v.(Interval)
		w.Months, w.Days, w.I = iv.Months, iv.Days, iv.Microseconds
	case KindArray:
		a := v.v.(Array)
		w.Elem = uint8(a.Elem)
		w.Vals = make([]wireValue, len(a.Values))
		for i, e := range a.Values {
			w.Vals[i] = toWire(e)
		}
	case KindList:
		l := v.v.([]Value)
		w.Vals = make([]wireValue, len(l))
		for i, e := range l {
			w.Vals[i] = toWire(e)
		}
	case KindObject:
		o := v.v.(*Object)
		w.Keys = append([]string(nil), o.Keys()...)
		w.Vals = make([]wireValue, len(w.Keys))
		for i, k := range w.Keys {
			e, _ := o.Get(k)
			w.Vals[i] = toWire(e)
		}
	}
	return w
}

func fromWire(w wireValue) (Value, error) {
	switch Kind(w.Kind) {
	case KindNull:
		return Null(), nil
	case KindBool:
		return Bool(w.B), nil
	case KindTinyint:
		return Tinyint(int8(w.I)), nil
	case KindSmallint:
		return Smallint(int16(w.I)), nil
	case KindInt:
		return Int(int32(w.I)), nil
	case KindBigint:
		return Bigint(w.I), nil
	case KindFloat:
		return Float(float32(w.F)), nil
	case KindDouble:
		return Double(w.F), nil
	case KindDecimal:
		d, err := decimal.NewFromString(w.S)
		if err != nil {
			return Null(), err
		}
		return Decimal(d), nil
	case KindChar:
		return Char(rune(w.I)), nil
	case KindText:
		return Text(w.S), nil
	case KindRawSQL:
		return Raw(w.S), nil
	case KindJSON:
		var tree any
		if err := json.Unmarshal(w.Bytes, &tree); err != nil {
			return Null(), err
		}
		return JSON(tree), nil
	case KindBlob:
		return Blob(w.Bytes), nil
	case KindUUID:
		u, err := uuid.FromBytes(w.Bytes)
		if err != nil {
			return Null(), err
		}
		return UUID(u), nil
	case KindDate:
		return Date(w.T), nil
	case KindTime:
		return TimeOfDay(w.T), nil
	case KindDateTime:
		return DateTime(w.T), nil
	case KindTimestamp:
		return Timestamp(w.T), nil
	case KindInterval:
		return IntervalOf(Interval{Months: w.Months, Days: w.Days, Microseconds: w.I}), nil
	case KindArray:
		vs := make([]Value, len(w.Vals))
		for i, e := range w.Vals {
			v, err := fromWire(e)
			if err != nil {
				return Null(), err
			}
			vs[i] = v
		}
		return ArrayOf(Kind(w.Elem), vs...)
	case KindList:
		vs := make([]Value, len(w.Vals))
		for i, e := range w.Vals {
			v, err := fromWire(e)
			if err != nil {
				return Null(), err
			}
			vs[i] = v
		}
		return ListOf(vs...), nil
	case KindObject:
		o := NewObject()
		for i, k := range w.Keys {
			v, err := fromWire(w.Vals[i])
			if err != nil {
				return Null(), err
			}
			o.Set(k, v)
		}
		return ObjectOf(o), nil
	}
	return Null(), fmt.Errorf("mappa: unknown wire kind %d", w.Kind)
}
