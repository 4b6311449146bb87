package export

import (
	"context"
	"fmt"
	"time"

	"github.com/dyne/sql2csv/internal/delimited"
	"github.com/dyne/sql2csv/internal/source"
	"github.com/dyne/sql2csv/internal/value"
)

type Stats struct {
	Rows    int64
	Bytes   int64
	Columns int
	Elapsed time.Duration
}

type StreamOptions struct {
	Mask          value.Mask
	ProgressEvery int64
	Progress      Progress
}

// Stream writes the header and then every row of cur to w, in cursor order.
// Only the current row is held in memory. Buffered output is flushed every
// ProgressEvery rows and before returning, on success or failure, so the
// sink always ends on a complete line. Stats are valid even when an error
// is returned.
func Stream(ctx context.Context, cur source.Cursor, w *delimited.Writer, opts StreamOptions) (stats Stats, err error) {
	started := time.Now()
	progress := opts.Progress
	if progress == nil {
		progress = nopProgress{}
	}
	defer func() {
		if ferr := w.Flush(); ferr != nil && err == nil {
			err = newError(KindWrite, ferr)
		}
		stats.Bytes = w.Written()
		stats.Elapsed = time.Since(started)
	}()

	cols := cur.Columns()
	stats.Columns = len(cols)
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	if err := w.WriteHeader(names); err != nil {
		return stats, newError(KindWrite, err)
	}

	vals := make([]value.Value, len(cols))
	fields := make([]string, len(cols))
	for {
		if cerr := ctx.Err(); cerr != nil {
			return stats, newError(KindInterrupted, cerr)
		}
		if !cur.Next() {
			break
		}
		row := stats.Rows + 1
		if err := cur.Scan(vals); err != nil {
			return stats, newError(KindRow, fmt.Errorf("row %d: %w", row, err))
		}
		for i, v := range vals {
			text, err := value.Format(v, opts.Mask)
			if err != nil {
				return stats, newError(KindRow, fmt.Errorf("row %d column %q: %w", row, names[i], err))
			}
			fields[i] = text
		}
		if err := w.WriteRow(fields); err != nil {
			return stats, newError(KindWrite, err)
		}
		stats.Rows = row
		if opts.ProgressEvery > 0 && row%opts.ProgressEvery == 0 {
			if err := w.Flush(); err != nil {
				return stats, newError(KindWrite, err)
			}
			progress.Rows(row)
		}
	}
	if err := cur.Err(); err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return stats, newError(KindInterrupted, cerr)
		}
		return stats, newError(KindQuery, fmt.Errorf("read rows: %w", err))
	}
	return stats, nil
}
