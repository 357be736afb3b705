package sculpto

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync/atomic"
)

// Logger is the logging surface shared by the renderer, its backends and the sample applications.
type Logger interface {
	DebugEnabled() bool
	SetDebug(enabled bool)
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// DefaultLogger writes debug and info lines to one stream and warnings and errors to another.
type DefaultLogger struct {
	debug  atomic.Bool
	prefix string
	out    *log.Logger
	err    *log.Logger
}

// NewDefaultLogger logs to stdout and stderr with microsecond timestamps.
func NewDefaultLogger(prefix string, debug bool) *DefaultLogger {
	return NewLogger(os.Stdout, os.Stderr, prefix, debug)
}

// NewLogger logs debug and info lines to out and the rest to errOut. Passing the same writer
// twice keeps all levels in one stream.
func NewLogger(out, errOut io.Writer, prefix string, debug bool) *DefaultLogger {
	flags := log.LstdFlags | log.Lmicroseconds
	l := &DefaultLogger{
		prefix: prefix,
		out:    log.New(out, "", flags),
		err:    log.New(errOut, "", flags),
	}
	l.debug.Store(debug)
	return l
}

func (l *DefaultLogger) DebugEnabled() bool    { return l.debug.Load() }
func (l *DefaultLogger) SetDebug(enabled bool) { l.debug.Store(enabled) }

// SetFlags changes the standard log flags of both streams.
func (l *DefaultLogger) SetFlags(flags int) {
	l.out.SetFlags(flags)
	l.err.SetFlags(flags)
}

func (l *DefaultLogger) logf(level Level, format string, args ...any) {
	if level == LevelDebug && !l.DebugEnabled() {
		return
	}
	dst := l.out
	if level >= LevelWarn {
		dst = l.err
	}
	msg := fmt.Sprintf(format, args...)
	if l.prefix != "" {
		dst.Printf("[%s] %v: %s", l.prefix, level, msg)
		return
	}
	dst.Printf("%v: %s", level, msg)
}

func (l *DefaultLogger) Debugf(format string, args ...any) { l.logf(LevelDebug, format, args...) }
func (l *DefaultLogger) Infof(format string, args ...any)  { l.logf(LevelInfo, format, args...) }
func (l *DefaultLogger) Warnf(format string, args ...any)  { l.logf(LevelWarn, format, args...) }
func (l *DefaultLogger) Errorf(format string, args ...any) { l.logf(LevelError, format, args...) }

type nopLogger struct{}

func NewNopLogger() Logger                             { return &nopLogger{} }
func (n *nopLogger) DebugEnabled() bool                { return false }
func (n *nopLogger) SetDebug(enabled bool)             {}
func (n *nopLogger) Debugf(format string, args ...any) {}
func (n *nopLogger) Infof(format string, args ...any)  {}
func (n *nopLogger) Warnf(format string, args ...any)  {}
func (n *nopLogger) Errorf(format string, args ...any) {}

// LoggerOrNop returns l, or a no-op logger when l is nil. Never returns nil.
func LoggerOrNop(l Logger) Logger {
	if l == nil {
		return NewNopLogger()
	}
	return l
}
