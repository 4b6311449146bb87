package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dyne/sql2csv/internal/config"
	"github.com/dyne/sql2csv/internal/export"
	"github.com/dyne/sql2csv/internal/inspect"
	"github.com/dyne/sql2csv/internal/log"
	"github.com/dyne/sql2csv/internal/metrics"
)

type globalOptions struct {
	Verbose    bool
	ConfigPath string
}

type connectionFlags struct {
	Driver           string
	Datasource       string
	Database         string
	User             string
	Password         string
	ConnectionString string
	Query            string
	QueryFile        string
	Timeout          time.Duration
	ConnectTimeout   time.Duration
}

type outputFlags struct {
	Output        string
	Delimiter     string
	Newline       string
	Quote         string
	Escape        string
	DateFormat    string
	Encoding      string
	ProgressEvery int64
	MetricsFile   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if export.KindOf(err) == export.KindInterrupted {
			os.Exit(130)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootOpts := &globalOptions{}
	root := &cobra.Command{
		Use:           "sql2csv",
		Short:         "Stream the result of a SQL query to a delimited text file",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&rootOpts.Verbose, "verbose", false, "enable debug logging")
	root.PersistentFlags().StringVar(&rootOpts.ConfigPath, "config", "", "YAML file with export settings")

	root.AddCommand(exportCmd(rootOpts))
	root.AddCommand(describeCmd(rootOpts))
	return root
}

func newLogger(cmd *cobra.Command, rootOpts *globalOptions) *log.Logger {
	level := log.LevelInfo
	if rootOpts.Verbose {
		level = log.LevelDebug
	}
	return log.New(level, cmd.ErrOrStderr()).WithRun(uuid.NewString()[:8])
}

func exportCmd(rootOpts *globalOptions) *cobra.Command {
	conn := &connectionFlags{}
	out := &outputFlags{}
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Run a query and write every row to a CSV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			conn.apply(cmd, cfg)
			out.apply(cmd, cfg)
			logger := newLogger(cmd, rootOpts)

			started := time.Now()
			stats, runErr := export.Run(cmd.Context(), export.Options{
				Config:   cfg,
				Logger:   logger,
				Progress: export.NewLogProgress(logger),
			})
			if cfg.MetricsFile != "" {
				rec := metrics.NewRecorder()
				if runErr != nil {
					rec.Failure(export.KindOf(runErr).String(), stats.Rows, stats.Bytes, time.Since(started))
				} else {
					rec.Success(stats.Rows, stats.Bytes, stats.Elapsed, time.Now())
				}
				if err := rec.WriteFile(cfg.MetricsFile); err != nil {
					logger.Errorf("%v", err)
				}
			}
			if runErr != nil {
				if export.KindOf(runErr) == export.KindInterrupted {
					logger.Errorf("interrupted after %s rows; %s holds every row written so far", humanize.Comma(stats.Rows), cfg.Output)
				}
				return runErr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s rows in %s\n", humanize.Comma(stats.Rows), stats.Elapsed.Round(time.Millisecond))
			return nil
		},
	}
	conn.register(cmd)
	out.register(cmd)
	return cmd
}

func describeCmd(rootOpts *globalOptions) *cobra.Command {
	conn := &connectionFlags{}
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Show the columns a query returns and how each will be formatted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootOpts.ConfigPath)
			if err != nil {
				return err
			}
			conn.apply(cmd, cfg)
			return inspect.Run(cmd.Context(), cfg, cmd.OutOrStdout(), newLogger(cmd, rootOpts))
		},
	}
	conn.register(cmd)
	return cmd
}

func (f *connectionFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.Driver, "driver", config.DefaultDriver, "database driver (sqlite|sqlite3|mysql|postgres)")
	fl.StringVarP(&f.Datasource, "datasource", "S", "", "database server address (host:port)")
	fl.StringVarP(&f.Database, "database", "d", "", "database name, or file path for sqlite")
	fl.StringVarP(&f.User, "user", "U", "", "user name")
	fl.StringVarP(&f.Password, "password", "P", "", "password")
	fl.StringVar(&f.ConnectionString, "connection-string", "", "full driver connection string; overrides datasource and database")
	fl.StringVarP(&f.Query, "query", "q", "", "SQL query to export")
	fl.StringVar(&f.QueryFile, "query-file", "", "read the SQL query from a file")
	fl.DurationVarP(&f.Timeout, "timeout", "t", 0, "query timeout (0 = unbounded)")
	fl.DurationVar(&f.ConnectTimeout, "connect-timeout", config.DefaultConnectTimeout, "connection timeout")
}

func (f *connectionFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fl := cmd.Flags()
	if fl.Changed("driver") || cfg.Driver == "" {
		cfg.Driver = f.Driver
	}
	if fl.Changed("datasource") {
		cfg.Datasource = f.Datasource
	}
	if fl.Changed("database") {
		cfg.Database = f.Database
	}
	if fl.Changed("user") {
		cfg.User = f.User
	}
	if fl.Changed("password") {
		cfg.Password = f.Password
	}
	if fl.Changed("connection-string") {
		cfg.ConnectionString = f.ConnectionString
	}
	if fl.Changed("query") {
		cfg.Query = f.Query
	}
	if fl.Changed("query-file") {
		cfg.QueryFile = f.QueryFile
		if !fl.Changed("query") {
			cfg.Query = ""
		}
	}
	if fl.Changed("timeout") {
		cfg.Timeout = f.Timeout
	}
	if fl.Changed("connect-timeout") {
		cfg.ConnectTimeout = f.ConnectTimeout
	}
}

func (f *outputFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.Output, "output", "o", "", "output file (overwritten)")
	fl.StringVar(&f.Delimiter, "delimiter", config.DefaultDelimiter, `column delimiter; \t is accepted`)
	fl.StringVar(&f.Newline, "newline", `\r\n`, `row terminator; \r and \n are accepted`)
	fl.StringVar(&f.Quote, "quote", config.DefaultQuote, "quote character")
	fl.StringVar(&f.Escape, "escape", config.DefaultEscape, "character placed before a quote inside a quoted field")
	fl.StringVar(&f.DateFormat, "date-format", config.DefaultDateFormat, "date format mask")
	fl.StringVar(&f.Encoding, "encoding", config.DefaultEncoding, "output text encoding")
	fl.Int64Var(&f.ProgressEvery, "progress-every", config.DefaultProgressEvery, "log progress every N rows")
	fl.StringVar(&f.MetricsFile, "metrics-file", "", "write Prometheus metrics to this file after the run")
}

func (f *outputFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	fl := cmd.Flags()
	if fl.Changed("output") {
		cfg.Output = f.Output
	}
	if fl.Changed("delimiter") {
		cfg.Delimiter = config.Unescape(f.Delimiter)
	}
	if fl.Changed("newline") {
		cfg.Newline = config.Unescape(f.Newline)
	}
	if fl.Changed("quote") {
		cfg.Quote = f.Quote
	}
	if fl.Changed("escape") {
		cfg.Escape = f.Escape
	}
	if fl.Changed("date-format") {
		cfg.DateFormat = f.DateFormat
	}
	if fl.Changed("encoding") {
		cfg.Encoding = f.Encoding
	}
	if fl.Changed("progress-every") {
		cfg.ProgressEvery = f.ProgressEvery
	}
	if fl.Changed("metrics-file") {
		cfg.MetricsFile = f.MetricsFile
	}
}
