package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSuccess(t *testing.T) {
	r := NewRecorder()
	at := time.Unix(1700000000, 0)
	r.Success(1200, 4096, 1500*time.Millisecond, at)
	if got := testutil.ToFloat64(r.rows); got != 1200 {
		t.Fatalf("rows: %v", got)
	}
	if got := testutil.ToFloat64(r.bytes); got != 4096 {
		t.Fatalf("bytes: %v", got)
	}
	if got := testutil.ToFloat64(r.duration); got != 1.5 {
		t.Fatalf("duration: %v", got)
	}
	if got := testutil.ToFloat64(r.lastSuccess); got != 1700000000 {
		t.Fatalf("last success: %v", got)
	}
	if got := testutil.CollectAndCount(r.failures); got != 0 {
		t.Fatalf("no failures expected, got %d series", got)
	}
}

func TestFailure(t *testing.T) {
	r := NewRecorder()
	r.Failure("query", 0, 0, time.Second)
	if got := testutil.ToFloat64(r.failures.WithLabelValues("query")); got != 1 {
		t.Fatalf("failures: %v", got)
	}
	if got := testutil.ToFloat64(r.lastSuccess); got != 0 {
		t.Fatalf("last success should be unset: %v", got)
	}
}

func TestWriteFile(t *testing.T) {
	r := NewRecorder()
	r.Success(3, 30, time.Second, time.Now())
	path := filepath.Join(t.TempDir(), "sql2csv.prom")
	if err := r.WriteFile(path); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "sql2csv_rows_exported_total 3") {
		t.Fatalf("unexpected metrics file:\n%s", data)
	}
}
