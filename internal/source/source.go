package source

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dyne/sql2csv/internal/value"
)

type Column struct {
	Name         string
	DeclaredType string
	Nullable     *bool
}

// Cursor is a forward-only, read-once iterator over a result set.
type Cursor interface {
	Columns() []Column
	// Next advances to the next row and reports whether there is one.
	Next() bool
	// Scan fills dst, which must have len(Columns()) entries, with the
	// current row. Values are only valid until the next call to Next.
	Scan(dst []value.Value) error
	Err() error
	// Cancel asks the data source to stop producing rows. It is safe to
	// call at any time, including after the result set is exhausted.
	Cancel()
	Close() error
}

type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Rows is a Cursor over database/sql.
type Rows struct {
	rows   *sql.Rows
	cancel context.CancelFunc
	cols   []Column
	hints  []value.Hint
	raw    []any
	ptrs   []any
}

// Open runs query and reads its column metadata. A timeout of zero leaves
// the query unbounded. The query runs under its own context so Cancel can
// interrupt it at the server without touching ctx.
func Open(ctx context.Context, q Querier, query string, timeout time.Duration) (*Rows, error) {
	var qctx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		qctx, cancel = context.WithTimeout(ctx, timeout)
	} else {
		qctx, cancel = context.WithCancel(ctx)
	}
	rows, err := q.QueryContext(qctx, query)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("execute query: %w", err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		rows.Close()
		cancel()
		return nil, fmt.Errorf("column metadata: %w", err)
	}
	r := &Rows{
		rows:   rows,
		cancel: cancel,
		cols:   make([]Column, len(types)),
		hints:  make([]value.Hint, len(types)),
		raw:    make([]any, len(types)),
		ptrs:   make([]any, len(types)),
	}
	for i, ct := range types {
		col := Column{
			Name:         strings.TrimSpace(ct.Name()),
			DeclaredType: strings.ToUpper(ct.DatabaseTypeName()),
		}
		if nullable, ok := ct.Nullable(); ok {
			col.Nullable = &nullable
		}
		r.cols[i] = col
		r.hints[i] = value.HintFor(col.DeclaredType)
		r.ptrs[i] = &r.raw[i]
	}
	return r, nil
}

func (r *Rows) Columns() []Column { return r.cols }

func (r *Rows) Next() bool { return r.rows.Next() }

func (r *Rows) Scan(dst []value.Value) error {
	if len(dst) != len(r.cols) {
		return fmt.Errorf("scan: have %d destinations for %d columns", len(dst), len(r.cols))
	}
	if err := r.rows.Scan(r.ptrs...); err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	for i, raw := range r.raw {
		v, err := value.FromDriver(raw, r.hints[i])
		if err != nil {
			return fmt.Errorf("column %q: %w", r.cols[i].Name, err)
		}
		dst[i] = v
		r.raw[i] = nil
	}
	return nil
}

func (r *Rows) Err() error { return r.rows.Err() }

func (r *Rows) Cancel() { r.cancel() }

func (r *Rows) Close() error {
	err := r.rows.Close()
	r.cancel()
	return err
}
