package inspect

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/dyne/sql2csv/internal/config"
	"github.com/dyne/sql2csv/internal/database"
	"github.com/dyne/sql2csv/internal/export"
	"github.com/dyne/sql2csv/internal/log"
	"github.com/dyne/sql2csv/internal/source"
	"github.com/dyne/sql2csv/internal/value"
)

// Run executes the configured query only far enough to learn its columns,
// cancels it, and prints one line per column to out.
func Run(ctx context.Context, cfg *config.Config, out io.Writer, logger *log.Logger) error {
	config.ApplyDefaults(cfg)
	if err := config.ReadQuery(cfg); err != nil {
		return err
	}
	if cfg.Query == "" {
		return &config.Error{Field: "query", Message: "a query is required"}
	}
	db, err := database.Open(ctx, export.Params(cfg))
	if err != nil {
		return err
	}
	defer db.Close()
	return Describe(ctx, db, cfg.Query, cfg.Timeout, out, logger)
}

func Describe(ctx context.Context, db *sql.DB, query string, timeout time.Duration, out io.Writer, logger *log.Logger) error {
	cur, err := source.Open(ctx, db, query, timeout)
	if err != nil {
		return err
	}
	cols := cur.Columns()
	cur.Cancel()
	if err := cur.Close(); err != nil && logger != nil {
		logger.Debugf("close cursor: %v", err)
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"#", "Column", "Declared Type", "Nullable", "Formatted As"})
	table.SetAutoFormatHeaders(false)
	for i, c := range cols {
		table.Append([]string{strconv.Itoa(i + 1), c.Name, c.DeclaredType, nullable(c.Nullable), formattedAs(c.DeclaredType)})
	}
	table.Render()
	if logger != nil {
		logger.Infof("describe complete: %d columns", len(cols))
	}
	return nil
}

func nullable(n *bool) string {
	if n == nil {
		return "unknown"
	}
	return fmt.Sprint(*n)
}

func formattedAs(declared string) string {
	switch value.HintFor(declared) {
	case value.HintBool:
		return "boolean (1/0)"
	case value.HintTemporal:
		return "date mask"
	default:
		return "natural"
	}
}
