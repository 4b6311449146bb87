package delimited

import (
	"bufio"
	"fmt"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

const bufferSize = 64 * 1024

// Writer streams encoded lines to an underlying sink. Every WriteHeader and
// WriteRow call hands one complete, terminated line to the buffer, so a Flush
// never leaves a partial record behind.
type Writer struct {
	enc     Encoder
	sink    *countingWriter
	charset io.WriteCloser
	bw      *bufio.Writer
	line    []byte
	rows    int64
}

// NewWriter wraps w. When charset is nil the output is UTF-8 without a BOM.
// Characters the charset cannot represent are replaced, not rejected.
func NewWriter(w io.Writer, enc Encoder, charset encoding.Encoding) *Writer {
	out := &Writer{enc: enc, sink: &countingWriter{w: w}}
	var dst io.Writer = out.sink
	if charset != nil {
		out.charset = transform.NewWriter(out.sink, encoding.ReplaceUnsupported(charset.NewEncoder()))
		dst = out.charset
	}
	out.bw = bufio.NewWriterSize(dst, bufferSize)
	return out
}

func (w *Writer) Encoder() Encoder { return w.enc }

// WriteHeader writes column names under the same quoting rules as data.
func (w *Writer) WriteHeader(names []string) error {
	if err := w.writeLine(names); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

func (w *Writer) WriteRow(fields []string) error {
	if err := w.writeLine(fields); err != nil {
		return fmt.Errorf("write row %d: %w", w.rows+1, err)
	}
	w.rows++
	return nil
}

func (w *Writer) writeLine(fields []string) error {
	w.line = w.enc.AppendRecord(w.line[:0], fields)
	w.line = append(w.line, w.enc.Newline...)
	_, err := w.bw.Write(w.line)
	return err
}

func (w *Writer) Flush() error {
	if err := w.bw.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

// Close flushes buffered lines and any pending charset state. It does not
// close the underlying sink.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}
	if w.charset != nil {
		if err := w.charset.Close(); err != nil {
			return fmt.Errorf("flush encoder: %w", err)
		}
	}
	return nil
}

// Rows reports how many data rows have been written, excluding the header.
func (w *Writer) Rows() int64 { return w.rows }

// Written reports bytes that have reached the sink.
func (w *Writer) Written() int64 { return w.sink.n }

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
