package database

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
)

func TestDSNConnectionStringWins(t *testing.T) {
	name, dsn, err := DSN(Params{Driver: "postgres", Database: "ignored", ConnectionString: "host=db dbname=app"})
	if err != nil {
		t.Fatal(err)
	}
	if name != "postgres" || dsn != "host=db dbname=app" {
		t.Fatalf("got %s %s", name, dsn)
	}
}

func TestDSNUnknownDriver(t *testing.T) {
	_, _, err := DSN(Params{Driver: "oracle", Database: "x"})
	if err == nil || !strings.Contains(err.Error(), "unsupported driver") {
		t.Fatalf("expected unsupported driver error, got %v", err)
	}
}

func TestDSNRequiresDatabase(t *testing.T) {
	if _, _, err := DSN(Params{Driver: "sqlite"}); err == nil {
		t.Fatal("expected error without database or connection string")
	}
}

func TestMySQLDSN(t *testing.T) {
	_, dsn, err := DSN(Params{Driver: "mysql", Datasource: "db:3307", Database: "sales", User: "etl", Password: "s3cret", ConnectTimeout: 5 * time.Second})
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		t.Fatalf("parse dsn %q: %v", dsn, err)
	}
	if cfg.Addr != "db:3307" || cfg.DBName != "sales" || cfg.User != "etl" || cfg.Passwd != "s3cret" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !cfg.ParseTime {
		t.Fatal("parseTime must be enabled so dates arrive as time.Time")
	}
	if cfg.Timeout != 5*time.Second {
		t.Fatalf("timeout: %v", cfg.Timeout)
	}
}

func TestPostgresDSN(t *testing.T) {
	_, dsn, err := DSN(Params{Driver: "postgres", Datasource: "pg:5433", Database: "warehouse", User: "etl", Password: "p@ss", ConnectTimeout: 10 * time.Second})
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"postgres://etl:p%40ss@pg:5433/warehouse", "connect_timeout=10", "application_name=sql2csv"} {
		if !strings.Contains(dsn, want) {
			t.Fatalf("dsn %q missing %q", dsn, want)
		}
	}
}

func TestOpenSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.sqlite")
	seed, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_busy_timeout=5000", path))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := seed.Exec(`CREATE TABLE t (id INTEGER)`); err != nil {
		t.Fatal(err)
	}
	seed.Close()

	db, err := Open(context.Background(), Params{Driver: "sqlite", Database: path, ConnectTimeout: time.Second})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow(`SELECT COUNT(1) FROM t`).Scan(&n); err != nil {
		t.Fatal(err)
	}
}

func TestOpenMissingSQLiteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.sqlite")
	if _, err := Open(context.Background(), Params{Driver: "sqlite", Database: path}); err == nil {
		t.Fatal("expected connect error for a missing read-only database")
	}
}
