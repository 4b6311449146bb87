package delimited

import (
	"bytes"
	"errors"
	"testing"
)

func TestWriterLines(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, DefaultEncoder(), nil)
	if err := w.WriteHeader([]string{"id", "name, full", "active"}); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteRow([]string{"1", "O'Brien, J.", "1"}); err != nil {
		t.Fatal(err)
	}
	if err := w.WriteRow([]string{"2", "", "0"}); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 0 {
		t.Fatal("rows should stay buffered until flush")
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	want := "id,\"name, full\",active\r\n1,\"O'Brien, J.\",1\r\n2,,0\r\n"
	if buf.String() != want {
		t.Fatalf("got %q, want %q", buf.String(), want)
	}
	if w.Rows() != 2 {
		t.Fatalf("rows: %d", w.Rows())
	}
	if w.Written() != int64(len(want)) {
		t.Fatalf("written: %d", w.Written())
	}
}

func TestWriterCustomTerminator(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf, Encoder{Delim: ";", Quote: `"`, Escape: `"`, Newline: "\n"}, nil)
	if err := w.WriteRow([]string{"a;b", "c"}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "\"a;b\";c\n" {
		t.Fatalf("got %q", buf.String())
	}
}

func TestWriterCharset(t *testing.T) {
	charset, err := LookupEncoding("windows-1252")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	w := NewWriter(&buf, DefaultEncoder(), charset)
	if err := w.WriteRow([]string{"café"}); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	want := []byte{'c', 'a', 'f', 0xe9, '\r', '\n'}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("got % x, want % x", buf.Bytes(), want)
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func TestWriterSurfacesSinkErrors(t *testing.T) {
	w := NewWriter(failingWriter{}, DefaultEncoder(), nil)
	if err := w.WriteRow([]string{"x"}); err != nil {
		t.Fatalf("buffered write should not fail yet: %v", err)
	}
	if err := w.Flush(); err == nil {
		t.Fatal("expected flush error")
	}
}

func TestLookupEncoding(t *testing.T) {
	for _, name := range []string{"", "UTF-8", "utf8"} {
		enc, err := LookupEncoding(name)
		if err != nil || enc != nil {
			t.Fatalf("%q: expected no transform, got %v %v", name, enc, err)
		}
	}
	for _, name := range []string{"windows-1252", "ISO-8859-1", "utf-16le", "shift_jis"} {
		enc, err := LookupEncoding(name)
		if err != nil || enc == nil {
			t.Fatalf("%q: %v", name, err)
		}
	}
	if _, err := LookupEncoding("no-such-charset"); err == nil {
		t.Fatal("expected error for unknown encoding")
	}
}
