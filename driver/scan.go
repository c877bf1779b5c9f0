package driver

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/syssam/mappa/value"
)

// fromColumn maps one scanned driver value onto the value domain, using
// the reported database type to pick the kind. Unknown combinations
// degrade to Text or Blob rather than failing the whole row.
func fromColumn(v any, ct *sql.ColumnType) value.Value {
	if v == nil {
		return value.Null()
	}
	tn := strings.ToUpper(ct.DatabaseTypeName())
	switch x := v.(type) {
	case bool:
		return value.Bool(x)
	case int64:
		return fromInteger(x, tn)
	case float64:
		if strings.Contains(tn, "FLOAT4") || tn == "FLOAT" || tn == "REAL" {
			return value.Float(float32(x))
		}
		return value.Double(x)
	case float32:
		return value.Float(x)
	case time.Time:
		return fromTemporal(x, tn)
	case string:
		return fromText(x, tn)
	case []byte:
		// The driver may reuse the buffer after the next Scan.
		b := append([]byte(nil), x...)
		if isBinary(tn) || !utf8.Valid(b) {
			return value.Blob(b)
		}
		return fromText(string(b), tn)
	}
	return value.Of(v)
}

func fromInteger(n int64, tn string) value.Value {
	switch {
	case tn == "BOOL" || tn == "BOOLEAN":
		return value.Bool(n != 0)
	case strings.Contains(tn, "TINYINT") || tn == "INT1":
		return value.Tinyint(int8(n))
	case strings.Contains(tn, "SMALLINT") || tn == "INT2":
		return value.Smallint(int16(n))
	case strings.Contains(tn, "MEDIUMINT") || tn == "INT4" || tn == "INT" || tn == "INTEGER":
		return value.Int(int32(n))
	}
	return value.Bigint(n)
}

func fromTemporal(t time.Time, tn string) value.Value {
	switch {
	case tn == "DATE":
		return value.Date(t)
	case tn == "TIME" || strings.HasPrefix(tn, "TIME("):
		return value.TimeOfDay(t)
	case strings.Contains(tn, "DATETIME"):
		return value.DateTime(t)
	}
	return value.Timestamp(t)
}

func fromText(s, tn string) value.Value {
	switch {
	case strings.Contains(tn, "DECIMAL") || strings.Contains(tn, "NUMERIC") || strings.Contains(tn, "NUMBER"):
		if d, err := decimal.NewFromString(s); err == nil {
			return value.Decimal(d)
		}
	case strings.Contains(tn, "JSON"):
		var tree any
		if json.Unmarshal([]byte(s), &tree) == nil {
			return value.JSON(tree)
		}
	case strings.Contains(tn, "UUID"):
		if u, err := uuid.Parse(s); err == nil {
			return value.UUID(u)
		}
	case strings.Contains(tn, "DATE") || strings.Contains(tn, "TIME"):
		var t time.Time
		if value.Text(s).Scan(&t) == nil {
			return fromTemporal(t, tn)
		}
	}
	return value.Text(s)
}

func isBinary(tn string) bool {
	return strings.Contains(tn, "BLOB") ||
		strings.Contains(tn, "BINARY") ||
		strings.Contains(tn, "BYTEA") ||
		strings.Contains(tn, "RAW")
}
