package delimited

import (
	"strings"
)

// Encoder applies the quoting rules of RFC 4180 section 2.6 with configurable
// delimiter, quote, escape and row terminator. A field is quoted only when it
// contains the delimiter, the quote, CR or LF; everything else is written as is.
type Encoder struct {
	Delim   string
	Quote   string
	Escape  string
	Newline string
}

func DefaultEncoder() Encoder {
	return Encoder{
		Delim:   ",",
		Quote:   `"`,
		Escape:  `"`,
		Newline: "\r\n",
	}
}

func (e Encoder) NeedsQuote(field string) bool {
	if field == "" {
		return false
	}
	if strings.ContainsAny(field, "\r\n") {
		return true
	}
	if e.Delim != "" && strings.Contains(field, e.Delim) {
		return true
	}
	return e.Quote != "" && strings.Contains(field, e.Quote)
}

func (e Encoder) EncodeField(field string) string {
	if !e.NeedsQuote(field) {
		return field
	}
	return string(e.AppendField(make([]byte, 0, len(field)+4), field))
}

// AppendField appends the encoded form of field to dst.
func (e Encoder) AppendField(dst []byte, field string) []byte {
	if !e.NeedsQuote(field) {
		return append(dst, field...)
	}
	dst = append(dst, e.Quote...)
	for {
		i := strings.Index(field, e.Quote)
		if i < 0 {
			break
		}
		dst = append(dst, field[:i]...)
		dst = append(dst, e.Escape...)
		dst = append(dst, e.Quote...)
		field = field[i+len(e.Quote):]
	}
	dst = append(dst, field...)
	return append(dst, e.Quote...)
}

// EncodeRow joins already encoded fields. No terminator is added.
func (e Encoder) EncodeRow(encoded []string) string {
	return strings.Join(encoded, e.Delim)
}

// AppendRecord encodes and joins fields onto dst without a terminator.
func (e Encoder) AppendRecord(dst []byte, fields []string) []byte {
	for i, f := range fields {
		if i > 0 {
			dst = append(dst, e.Delim...)
		}
		dst = e.AppendField(dst, f)
	}
	return dst
}
