package value

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"unicode/utf8"
)

// Format renders v as plain text ready for quoting. Numbers never depend on
// the host locale: the decimal separator is always '.'.
func Format(v Value, mask Mask) (string, error) {
	switch v.Kind {
	case KindNull:
		return "", nil
	case KindString, KindOther:
		return v.s, nil
	}
	b, err := AppendFormat(nil, v, mask)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func AppendFormat(dst []byte, v Value, mask Mask) ([]byte, error) {
	switch v.Kind {
	case KindNull:
		return dst, nil
	case KindBool:
		if v.b {
			return append(dst, '1'), nil
		}
		return append(dst, '0'), nil
	case KindDateTime:
		if len(mask.parts) == 0 {
			return dst, fmt.Errorf("no date format configured")
		}
		return mask.Append(dst, v.t), nil
	case KindString, KindOther:
		return append(dst, v.s...), nil
	case KindInt:
		return strconv.AppendInt(dst, v.i, 10), nil
	case KindUint:
		return strconv.AppendUint(dst, v.u, 10), nil
	case KindFloat:
		bits := 64
		if v.float32 {
			bits = 32
		}
		return appendFloat(dst, v.f, bits), nil
	case KindBytes:
		if utf8.Valid(v.raw) {
			return append(dst, v.raw...), nil
		}
		dst = append(dst, "0x"...)
		return hex.AppendEncode(dst, v.raw), nil
	default:
		return dst, fmt.Errorf("unsupported value kind %s", v.Kind)
	}
}

// appendFloat writes the shortest decimal that reads back as f, switching to
// exponent form only for very large or very small magnitudes.
func appendFloat(dst []byte, f float64, bits int) []byte {
	switch {
	case math.IsNaN(f):
		return append(dst, "NaN"...)
	case math.IsInf(f, 1):
		return append(dst, "Infinity"...)
	case math.IsInf(f, -1):
		return append(dst, "-Infinity"...)
	}
	abs := math.Abs(f)
	if abs != 0 && (abs < 1e-6 || abs >= 1e21) {
		return strconv.AppendFloat(dst, f, 'E', -1, bits)
	}
	return strconv.AppendFloat(dst, f, 'f', -1, bits)
}
