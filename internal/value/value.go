package value

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindDateTime
	KindString
	KindInt
	KindUint
	KindFloat
	KindBytes
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindDateTime:
		return "datetime"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindBytes:
		return "bytes"
	case KindOther:
		return "other"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Value is one cell of a result row. Only the field matching Kind is set.
type Value struct {
	Kind Kind

	b       bool
	i       int64
	u       uint64
	f       float64
	float32 bool
	s       string
	raw     []byte
	t       time.Time
}

func Null() Value                { return Value{Kind: KindNull} }
func Bool(b bool) Value          { return Value{Kind: KindBool, b: b} }
func DateTime(t time.Time) Value { return Value{Kind: KindDateTime, t: t} }
func String(s string) Value      { return Value{Kind: KindString, s: s} }
func Int(i int64) Value          { return Value{Kind: KindInt, i: i} }
func Uint(u uint64) Value        { return Value{Kind: KindUint, u: u} }
func Float(f float64) Value      { return Value{Kind: KindFloat, f: f} }
func Float32(f float32) Value    { return Value{Kind: KindFloat, f: float64(f), float32: true} }
func Bytes(b []byte) Value       { return Value{Kind: KindBytes, raw: b} }
func Other(s string) Value       { return Value{Kind: KindOther, s: s} }

func (v Value) IsNull() bool { return v.Kind == KindNull }

// Hint carries what the column's declared type says about its values.
type Hint int

const (
	HintNone Hint = iota
	HintBool
	HintTemporal
)

var (
	boolTypes = map[string]bool{
		"BOOL":    true,
		"BOOLEAN": true,
		"BIT":     true,
	}
	temporalTypes = map[string]bool{
		"DATE":           true,
		"DATETIME":       true,
		"DATETIME2":      true,
		"SMALLDATETIME":  true,
		"DATETIMEOFFSET": true,
		"TIMESTAMP":      true,
		"TIMESTAMPTZ":    true,
		"TIME":           true,
		"TIMETZ":         true,
	}
)

// HintFor maps a driver's declared column type name to a Hint. Length and
// precision suffixes such as "(1)" or "(6)" are ignored.
func HintFor(declared string) Hint {
	name := strings.ToUpper(strings.TrimSpace(declared))
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = strings.TrimSpace(name[:i])
	}
	name = strings.TrimSuffix(name, " WITH TIME ZONE")
	name = strings.TrimSuffix(name, " WITHOUT TIME ZONE")
	switch {
	case boolTypes[name]:
		return HintBool
	case temporalTypes[name]:
		return HintTemporal
	default:
		return HintNone
	}
}

// ErrNotTemporal is returned when a column declared as a date or time holds
// something that cannot be read as calendar fields.
var ErrNotTemporal = errors.New("value is not convertible to a date/time")

var temporalLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"15:04:05.999999999",
	"15:04",
}

func parseTemporal(s string) (time.Time, error) {
	text := strings.TrimSpace(s)
	for _, layout := range temporalLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrNotTemporal, s)
}

// FromDriver classifies a value produced by database/sql scanning into *any.
func FromDriver(v any, hint Hint) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(x), nil
	case int64:
		return fromInt(x, hint), nil
	case int:
		return fromInt(int64(x), hint), nil
	case int32:
		return fromInt(int64(x), hint), nil
	case int16:
		return fromInt(int64(x), hint), nil
	case int8:
		return fromInt(int64(x), hint), nil
	case uint64:
		if hint == HintBool {
			return Bool(x != 0), nil
		}
		return Uint(x), nil
	case uint:
		return FromDriver(uint64(x), hint)
	case uint32:
		return FromDriver(uint64(x), hint)
	case uint16:
		return FromDriver(uint64(x), hint)
	case uint8:
		return FromDriver(uint64(x), hint)
	case float64:
		return Float(x), nil
	case float32:
		return Float32(x), nil
	case time.Time:
		return DateTime(x), nil
	case string:
		return fromText(x, hint)
	case []byte:
		switch hint {
		case HintTemporal:
			return fromText(string(x), hint)
		case HintBool:
			// MySQL BIT(1) arrives as a single raw byte.
			if len(x) == 1 && x[0] <= 1 {
				return Bool(x[0] == 1), nil
			}
			return fromText(string(x), hint)
		}
		return Bytes(x), nil
	case driver.Valuer:
		inner, err := x.Value()
		if err != nil {
			return Value{}, fmt.Errorf("driver value: %w", err)
		}
		if _, again := inner.(driver.Valuer); again {
			return Other(fmt.Sprint(inner)), nil
		}
		return FromDriver(inner, hint)
	case fmt.Stringer:
		return Other(x.String()), nil
	default:
		return Other(fmt.Sprint(x)), nil
	}
}

func fromInt(i int64, hint Hint) Value {
	if hint == HintBool {
		return Bool(i != 0)
	}
	return Int(i)
}

func fromText(s string, hint Hint) (Value, error) {
	switch hint {
	case HintTemporal:
		t, err := parseTemporal(s)
		if err != nil {
			return Value{}, err
		}
		return DateTime(t), nil
	case HintBool:
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "1", "t", "true":
			return Bool(true), nil
		case "0", "f", "false":
			return Bool(false), nil
		}
	}
	return String(s), nil
}
