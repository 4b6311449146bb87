package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/dyne/sql2csv/internal/config"
	"github.com/dyne/sql2csv/internal/database"
	"github.com/dyne/sql2csv/internal/delimited"
	"github.com/dyne/sql2csv/internal/log"
	"github.com/dyne/sql2csv/internal/source"
	"github.com/dyne/sql2csv/internal/value"
)

type Options struct {
	Config   *config.Config
	Logger   *log.Logger
	Progress Progress
	// Connect overrides how the database handle is obtained. Tests use it
	// to inject a prepared handle.
	Connect func(ctx context.Context, p database.Params) (*sql.DB, error)
}

// Params extracts connection parameters from cfg.
func Params(cfg *config.Config) database.Params {
	return database.Params{
		Driver:           cfg.Driver,
		Datasource:       cfg.Datasource,
		Database:         cfg.Database,
		User:             cfg.User,
		Password:         cfg.Password,
		ConnectionString: cfg.ConnectionString,
		ConnectTimeout:   cfg.ConnectTimeout,
	}
}

func EncoderFor(cfg *config.Config) delimited.Encoder {
	return delimited.Encoder{
		Delim:   cfg.Delimiter,
		Quote:   cfg.Quote,
		Escape:  cfg.Escape,
		Newline: cfg.Newline,
	}
}

// Run executes the configured query and writes its result set to the output
// file. Resources are acquired in the order sink, connection, cursor and
// released in reverse on every exit path; the cursor is cancelled before it
// is closed so the server stops producing rows the export will never read.
func Run(ctx context.Context, opts Options) (stats Stats, err error) {
	cfg := opts.Config
	if cfg == nil {
		return stats, newError(KindConfiguration, fmt.Errorf("no configuration"))
	}
	if err := config.Resolve(cfg); err != nil {
		return stats, newError(KindConfiguration, err)
	}
	params := Params(cfg)
	if _, _, err := database.DSN(params); err != nil {
		return stats, newError(KindConfiguration, err)
	}
	mask, err := value.ParseMask(cfg.DateFormat)
	if err != nil {
		return stats, newError(KindConfiguration, err)
	}
	charset, err := delimited.LookupEncoding(cfg.Encoding)
	if err != nil {
		return stats, newError(KindConfiguration, err)
	}
	connect := opts.Connect
	if connect == nil {
		connect = database.Open
	}

	f, err := os.OpenFile(cfg.Output, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return stats, newError(KindConfiguration, fmt.Errorf("open output: %w", err))
	}
	w := delimited.NewWriter(f, EncoderFor(cfg), charset)
	defer func() {
		werr := w.Close()
		cerr := f.Close()
		if err == nil && werr != nil {
			err = newError(KindWrite, werr)
		}
		if err == nil && cerr != nil {
			err = newError(KindWrite, fmt.Errorf("close output: %w", cerr))
		}
		stats.Bytes = w.Written()
	}()
	debugf(opts.Logger, "writing %s (encoding %s)", cfg.Output, cfg.Encoding)

	db, err := connect(ctx, params)
	if err != nil {
		if ctx.Err() != nil {
			return stats, newError(KindInterrupted, ctx.Err())
		}
		return stats, newError(KindConnection, err)
	}
	defer db.Close()
	debugf(opts.Logger, "connected with driver %s", cfg.Driver)

	cur, err := source.Open(ctx, db, cfg.Query, cfg.Timeout)
	if err != nil {
		if ctx.Err() != nil {
			return stats, newError(KindInterrupted, ctx.Err())
		}
		return stats, newError(KindQuery, err)
	}
	defer func() {
		cur.Cancel()
		if cerr := cur.Close(); cerr != nil {
			debugf(opts.Logger, "close cursor: %v", cerr)
		}
	}()
	debugf(opts.Logger, "query returned %d columns", len(cur.Columns()))

	stats, err = Stream(ctx, cur, w, StreamOptions{
		Mask:          mask,
		ProgressEvery: cfg.ProgressEvery,
		Progress:      opts.Progress,
	})
	if opts.Logger != nil {
		opts.Logger.Infof("%s rows written to %s in %s", humanize.Comma(stats.Rows), cfg.Output, stats.Elapsed)
	}
	return stats, err
}

func debugf(l *log.Logger, format string, args ...any) {
	if l != nil {
		l.Debugf(format, args...)
	}
}
