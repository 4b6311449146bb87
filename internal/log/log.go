package log

import (
	"io"
	"log"
	"os"
)

type Level int

const (
	LevelInfo Level = iota
	LevelDebug
)

type Logger struct {
	level Level
	out   io.Writer
	info  *log.Logger
	debug *log.Logger
	err   *log.Logger
}

func New(level Level, out io.Writer) *Logger {
	return newLogger(level, out, "")
}

func newLogger(level Level, out io.Writer, tag string) *Logger {
	if out == nil {
		out = os.Stdout
	}
	return &Logger{
		level: level,
		out:   out,
		info:  log.New(out, "INFO: "+tag, log.LstdFlags),
		debug: log.New(out, "DEBUG: "+tag, log.LstdFlags),
		err:   log.New(out, "ERROR: "+tag, log.LstdFlags),
	}
}

// WithRun returns a logger that tags every line with a run identifier.
func (l *Logger) WithRun(id string) *Logger {
	return newLogger(l.level, l.out, "["+id+"] ")
}

func (l *Logger) Infof(format string, args ...any) {
	l.info.Printf(format, args...)
}

func (l *Logger) Debugf(format string, args ...any) {
	if l.level >= LevelDebug {
		l.debug.Printf(format, args...)
	}
}

func (l *Logger) Errorf(format string, args ...any) {
	l.err.Printf(format, args...)
}

func (l *Logger) Level() Level {
	return l.level
}
