package export

import (
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dyne/sql2csv/internal/log"
)

// Progress is told how many rows have been written so far. The driver calls
// it every Options.ProgressEvery rows, never once per row.
type Progress interface {
	Rows(n int64)
}

type ProgressFunc func(n int64)

func (f ProgressFunc) Rows(n int64) { f(n) }

type nopProgress struct{}

func (nopProgress) Rows(int64) {}

type logProgress struct {
	logger  *log.Logger
	started time.Time
}

// NewLogProgress reports progress as info lines on logger.
func NewLogProgress(logger *log.Logger) Progress {
	return &logProgress{logger: logger, started: time.Now()}
}

func (p *logProgress) Rows(n int64) {
	elapsed := time.Since(p.started)
	rate := float64(n) / elapsed.Seconds()
	p.logger.Infof("%s rows exported (%s elapsed, %s rows/s)",
		humanize.Comma(n), elapsed.Round(time.Millisecond), humanize.CommafWithDigits(rate, 0))
}
