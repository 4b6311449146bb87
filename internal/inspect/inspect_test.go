package inspect

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dyne/sql2csv/internal/config"
	"github.com/dyne/sql2csv/internal/log"
	_ "modernc.org/sqlite"
)

func createDescribeDB(path string) error {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_busy_timeout=5000", path))
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.Exec(`CREATE TABLE events (id INTEGER PRIMARY KEY, title TEXT NOT NULL, done BOOLEAN, happened_at DATETIME)`)
	return err
}

func TestRunDescribesColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.sqlite")
	if err := createDescribeDB(path); err != nil {
		t.Fatalf("create db: %v", err)
	}
	cfg := &config.Config{Driver: "sqlite", Database: path, Query: `SELECT id, title, done, happened_at FROM events`}
	var out bytes.Buffer
	if err := Run(context.Background(), cfg, &out, log.New(log.LevelInfo, io.Discard)); err != nil {
		t.Fatalf("run: %v", err)
	}
	text := out.String()
	for _, want := range []string{"Column", "Declared Type", "happened_at", "DATETIME", "date mask", "BOOLEAN", "boolean (1/0)", "title", "TEXT", "natural"} {
		if !strings.Contains(text, want) {
			t.Fatalf("output missing %q:\n%s", want, text)
		}
	}
}

func TestRunRequiresQuery(t *testing.T) {
	cfg := &config.Config{Driver: "sqlite", Database: "unused.sqlite"}
	err := Run(context.Background(), cfg, io.Discard, nil)
	if err == nil || !strings.Contains(err.Error(), "query") {
		t.Fatalf("expected query error, got %v", err)
	}
}
