package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Params describes where to connect. ConnectionString, when set, is passed
// to the driver untouched and the other fields are ignored.
type Params struct {
	Driver           string
	Datasource       string
	Database         string
	User             string
	Password         string
	ConnectionString string
	ConnectTimeout   time.Duration
}

type dsnBuilder func(p Params) string

var drivers = map[string]struct {
	name  string
	build dsnBuilder
}{
	"sqlite":   {name: "sqlite", build: sqliteDSN},
	"sqlite3":  {name: "sqlite3", build: sqliteDSN},
	"mysql":    {name: "mysql", build: mysqlDSN},
	"postgres": {name: "postgres", build: postgresDSN},
}

func Drivers() []string {
	names := make([]string, 0, len(drivers))
	for k := range drivers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// DSN returns the database/sql driver name and data source name for p.
func DSN(p Params) (string, string, error) {
	d, ok := drivers[strings.ToLower(p.Driver)]
	if !ok {
		return "", "", fmt.Errorf("unsupported driver %q (supported: %s)", p.Driver, strings.Join(Drivers(), ", "))
	}
	if p.ConnectionString != "" {
		return d.name, p.ConnectionString, nil
	}
	if p.Database == "" {
		return "", "", fmt.Errorf("either a database name or a connection string is required")
	}
	return d.name, d.build(p), nil
}

// Open connects and verifies the connection within p.ConnectTimeout. The
// pool is limited to one connection since an export only ever runs one query.
func Open(ctx context.Context, p Params) (*sql.DB, error) {
	driverName, dsn, err := DSN(p)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	db.SetMaxOpenConns(1)
	pingCtx := ctx
	if p.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, p.ConnectTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %s: %w", driverName, err)
	}
	return db, nil
}

func sqliteDSN(p Params) string {
	return fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", p.Database)
}

func mysqlDSN(p Params) string {
	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = p.Datasource
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:3306"
	}
	cfg.DBName = p.Database
	cfg.User = p.User
	cfg.Passwd = p.Password
	cfg.ParseTime = true
	cfg.Timeout = p.ConnectTimeout
	return cfg.FormatDSN()
}

func postgresDSN(p Params) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   p.Datasource,
		Path:   "/" + p.Database,
	}
	if u.Host == "" {
		u.Host = "localhost:5432"
	}
	switch {
	case p.User != "" && p.Password != "":
		u.User = url.UserPassword(p.User, p.Password)
	case p.User != "":
		u.User = url.User(p.User)
	}
	q := url.Values{}
	if secs := int(p.ConnectTimeout / time.Second); secs > 0 {
		q.Set("connect_timeout", strconv.Itoa(secs))
	}
	q.Set("application_name", "sql2csv")
	u.RawQuery = q.Encode()
	return u.String()
}
