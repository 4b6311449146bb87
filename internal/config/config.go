package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDriver         = "sqlite"
	DefaultDelimiter      = ","
	DefaultNewline        = "\r\n"
	DefaultQuote          = `"`
	DefaultEscape         = `"`
	DefaultDateFormat     = "yyyy-MM-dd HH:mm:ss"
	DefaultEncoding       = "utf-8"
	DefaultConnectTimeout = 15 * time.Second
	DefaultProgressEvery  = 10000
)

// Config is everything one export run needs. It is built once at startup
// and treated as read-only afterwards.
type Config struct {
	Driver           string `yaml:"driver"`
	Datasource       string `yaml:"datasource"`
	Database         string `yaml:"database"`
	User             string `yaml:"user"`
	Password         string `yaml:"password"`
	ConnectionString string `yaml:"connection_string"`

	Query     string `yaml:"query"`
	QueryFile string `yaml:"query_file"`
	Output    string `yaml:"output"`

	Delimiter  string `yaml:"delimiter"`
	Newline    string `yaml:"newline"`
	Quote      string `yaml:"quote"`
	Escape     string `yaml:"escape"`
	DateFormat string `yaml:"date_format"`
	Encoding   string `yaml:"encoding"`

	Timeout        time.Duration `yaml:"timeout"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	ProgressEvery  int64         `yaml:"progress_every"`
	MetricsFile    string        `yaml:"metrics_file"`
}

// Error reports a configuration problem found before any export work starts.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("config error in %s: %s", e.Field, e.Message)
}

func Load(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

func ApplyDefaults(cfg *Config) {
	if cfg.Driver == "" {
		cfg.Driver = DefaultDriver
	}
	if cfg.Delimiter == "" {
		cfg.Delimiter = DefaultDelimiter
	}
	if cfg.Newline == "" {
		cfg.Newline = DefaultNewline
	}
	if cfg.Quote == "" {
		cfg.Quote = DefaultQuote
	}
	if cfg.Escape == "" {
		cfg.Escape = DefaultEscape
	}
	if cfg.DateFormat == "" {
		cfg.DateFormat = DefaultDateFormat
	}
	if cfg.Encoding == "" {
		cfg.Encoding = DefaultEncoding
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = DefaultConnectTimeout
	}
	if cfg.ProgressEvery == 0 {
		cfg.ProgressEvery = DefaultProgressEvery
	}
}

// Resolve fills defaults, reads the query file, makes the output path
// absolute and validates the result.
func Resolve(cfg *Config) error {
	ApplyDefaults(cfg)
	if err := ReadQuery(cfg); err != nil {
		return err
	}
	if cfg.Output != "" {
		abs, err := filepath.Abs(cfg.Output)
		if err != nil {
			return &Error{Field: "output", Message: err.Error()}
		}
		cfg.Output = abs
	}
	return Validate(cfg)
}

// ReadQuery loads QueryFile into Query when no inline query is given.
func ReadQuery(cfg *Config) error {
	if cfg.Query != "" || cfg.QueryFile == "" {
		return nil
	}
	data, err := os.ReadFile(cfg.QueryFile)
	if err != nil {
		return &Error{Field: "query_file", Message: err.Error()}
	}
	cfg.Query = string(data)
	return nil
}

func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.Query) == "" {
		return &Error{Field: "query", Message: "a query is required"}
	}
	if cfg.Output == "" {
		return &Error{Field: "output", Message: "an output path is required"}
	}
	if cfg.Database == "" && cfg.ConnectionString == "" {
		return &Error{Field: "database", Message: "either a database name or a full connection string is required"}
	}
	if cfg.Delimiter == "" {
		return &Error{Field: "delimiter", Message: "must not be empty"}
	}
	if cfg.Newline == "" {
		return &Error{Field: "newline", Message: "must not be empty"}
	}
	if utf8.RuneCountInString(cfg.Quote) != 1 {
		return &Error{Field: "quote", Message: fmt.Sprintf("must be a single character, got %q", cfg.Quote)}
	}
	if utf8.RuneCountInString(cfg.Escape) != 1 {
		return &Error{Field: "escape", Message: fmt.Sprintf("must be a single character, got %q", cfg.Escape)}
	}
	if strings.Contains(cfg.Delimiter, cfg.Quote) {
		return &Error{Field: "delimiter", Message: "must not contain the quote character"}
	}
	if cfg.Timeout < 0 {
		return &Error{Field: "timeout", Message: "must not be negative"}
	}
	if cfg.ConnectTimeout < 0 {
		return &Error{Field: "connect_timeout", Message: "must not be negative"}
	}
	if cfg.ProgressEvery < 0 {
		return &Error{Field: "progress_every", Message: "must not be negative"}
	}
	return nil
}

// Unescape turns the backslash sequences \t, \r, \n and \\ typed on a
// shell into the characters they name.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	r := strings.NewReplacer(`\\`, `\`, `\t`, "\t", `\r`, "\r", `\n`, "\n")
	return r.Replace(s)
}
