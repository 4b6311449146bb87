package delimited

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
)

// LookupEncoding resolves an encoding name such as "utf-8", "windows-1252",
// "iso-8859-1" or "utf-16le". It returns nil for UTF-8, which needs no
// transformation.
func LookupEncoding(name string) (encoding.Encoding, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "", "utf-8", "utf8":
		return nil, nil
	case "unicode", "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	case "bigendianunicode", "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), nil
	}
	enc, err := ianaindex.IANA.Encoding(key)
	if err != nil || enc == nil {
		enc, err = htmlindex.Get(key)
		if err != nil {
			return nil, fmt.Errorf("unknown encoding %q", name)
		}
	}
	if enc == unicode.UTF8 {
		return nil, nil
	}
	return enc, nil
}
