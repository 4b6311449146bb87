package value

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// DefaultMask is the date format used when none is configured.
const DefaultMask = "yyyy-MM-dd HH:mm:ss"

type field int

const (
	fieldLiteral field = iota
	fieldYear
	fieldMonth
	fieldDay
	fieldHour24
	fieldHour12
	fieldMinute
	fieldSecond
	fieldFraction
	fieldFractionTrim
	fieldAMPM
	fieldOffset
)

type part struct {
	field field
	width int
	lit   string
}

// Mask is a compiled custom date format such as "yyyy-MM-dd HH:mm:ss".
// Rendering reads the value's own clock fields and never converts zones.
// Month and day names are always English.
type Mask struct {
	src   string
	parts []part
}

func (m Mask) String() string { return m.src }

// MustParseMask is ParseMask for masks known at compile time.
func MustParseMask(s string) Mask {
	m, err := ParseMask(s)
	if err != nil {
		panic(err)
	}
	return m
}

func ParseMask(s string) (Mask, error) {
	if s == "" {
		return Mask{}, errors.New("empty date format")
	}
	m := Mask{src: s}
	var lit []byte
	flush := func() {
		if len(lit) > 0 {
			m.parts = append(m.parts, part{field: fieldLiteral, lit: string(lit)})
			lit = nil
		}
	}
	add := func(f field, width int) {
		flush()
		m.parts = append(m.parts, part{field: f, width: width})
	}
	for i := 0; i < len(s); {
		c := s[i]
		n := 1
		for i+n < len(s) && s[i+n] == c {
			n++
		}
		switch c {
		case 'y':
			add(fieldYear, n)
		case 'M':
			add(fieldMonth, n)
		case 'd':
			add(fieldDay, n)
		case 'H':
			add(fieldHour24, min(n, 2))
		case 'h':
			add(fieldHour12, min(n, 2))
		case 'm':
			add(fieldMinute, min(n, 2))
		case 's':
			add(fieldSecond, min(n, 2))
		case 'f':
			if n > 9 {
				return Mask{}, fmt.Errorf("date format %q: too many fraction digits", s)
			}
			add(fieldFraction, n)
		case 'F':
			if n > 9 {
				return Mask{}, fmt.Errorf("date format %q: too many fraction digits", s)
			}
			add(fieldFractionTrim, n)
		case 't':
			add(fieldAMPM, min(n, 2))
		case 'z':
			add(fieldOffset, min(n, 3))
		case '\'', '"':
			end := i + 1
			for end < len(s) && s[end] != c {
				end++
			}
			if end == len(s) {
				return Mask{}, fmt.Errorf("date format %q: unterminated quoted literal", s)
			}
			lit = append(lit, s[i+1:end]...)
			i = end + 1
			continue
		case '\\':
			if i+1 == len(s) {
				return Mask{}, fmt.Errorf("date format %q: trailing escape", s)
			}
			lit = append(lit, s[i+1])
			i += 2
			continue
		case '%':
			i++
			continue
		default:
			lit = append(lit, s[i:i+n]...)
		}
		i += n
	}
	flush()
	return m, nil
}

// Append renders t onto dst.
func (m Mask) Append(dst []byte, t time.Time) []byte {
	for _, p := range m.parts {
		switch p.field {
		case fieldLiteral:
			dst = append(dst, p.lit...)
		case fieldYear:
			year := t.Year()
			switch {
			case p.width == 1:
				dst = strconv.AppendInt(dst, int64(year%100), 10)
			case p.width == 2:
				dst = appendPadded(dst, year%100, 2)
			default:
				dst = appendPadded(dst, year, p.width)
			}
		case fieldMonth:
			switch p.width {
			case 1, 2:
				dst = appendPadded(dst, int(t.Month()), p.width)
			case 3:
				dst = append(dst, t.Month().String()[:3]...)
			default:
				dst = append(dst, t.Month().String()...)
			}
		case fieldDay:
			switch p.width {
			case 1, 2:
				dst = appendPadded(dst, t.Day(), p.width)
			case 3:
				dst = append(dst, t.Weekday().String()[:3]...)
			default:
				dst = append(dst, t.Weekday().String()...)
			}
		case fieldHour24:
			dst = appendPadded(dst, t.Hour(), p.width)
		case fieldHour12:
			h := t.Hour() % 12
			if h == 0 {
				h = 12
			}
			dst = appendPadded(dst, h, p.width)
		case fieldMinute:
			dst = appendPadded(dst, t.Minute(), p.width)
		case fieldSecond:
			dst = appendPadded(dst, t.Second(), p.width)
		case fieldFraction:
			dst = appendFraction(dst, t.Nanosecond(), p.width, false)
		case fieldFractionTrim:
			dst = appendFraction(dst, t.Nanosecond(), p.width, true)
		case fieldAMPM:
			marker := "AM"
			if t.Hour() >= 12 {
				marker = "PM"
			}
			dst = append(dst, marker[:p.width]...)
		case fieldOffset:
			dst = appendOffset(dst, t, p.width)
		}
	}
	return dst
}

func (m Mask) Format(t time.Time) string {
	return string(m.Append(make([]byte, 0, len(m.src)+8), t))
}

func appendPadded(dst []byte, v, width int) []byte {
	if v < 0 {
		dst = append(dst, '-')
		v = -v
	}
	var buf [20]byte
	digits := strconv.AppendInt(buf[:0], int64(v), 10)
	for i := len(digits); i < width; i++ {
		dst = append(dst, '0')
	}
	return append(dst, digits...)
}

func appendFraction(dst []byte, nanos, width int, trim bool) []byte {
	var buf [9]byte
	for i := 8; i >= 0; i-- {
		buf[i] = byte('0' + nanos%10)
		nanos /= 10
	}
	digits := buf[:width]
	if trim {
		for len(digits) > 0 && digits[len(digits)-1] == '0' {
			digits = digits[:len(digits)-1]
		}
		if len(digits) == 0 && len(dst) > 0 && dst[len(dst)-1] == '.' {
			return dst[:len(dst)-1]
		}
	}
	return append(dst, digits...)
}

func appendOffset(dst []byte, t time.Time, width int) []byte {
	_, offset := t.Zone()
	sign := byte('+')
	if offset < 0 {
		sign = '-'
		offset = -offset
	}
	dst = append(dst, sign)
	hours := offset / 3600
	if width == 1 {
		return strconv.AppendInt(dst, int64(hours), 10)
	}
	dst = appendPadded(dst, hours, 2)
	if width == 3 {
		dst = append(dst, ':')
		dst = appendPadded(dst, offset%3600/60, 2)
	}
	return dst
}
