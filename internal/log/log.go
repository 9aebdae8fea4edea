// Package log is a small reconstruction of the go-kratos style logger the
// teacher module depends on (github.com/saferwall/pe/log), which the
// dependency has no exported package for outside that module. It keeps the
// same Logger/Helper/Filter surface so callers write and filter log lines
// the same way the teacher's File does.
package log

import (
	"fmt"
	"io"
	"sync"
)

// Level is a log severity.
type Level int8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
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
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Logger is the minimal sink every log backend implements.
type Logger interface {
	Log(level Level, keyvals ...any) error
}

// stdLogger writes keyvals as a flat line to an io.Writer.
type stdLogger struct {
	mu sync.Mutex
	w  io.Writer
}

// NewStdLogger returns a Logger that writes to w.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{w: w}
}

func (l *stdLogger) Log(level Level, keyvals ...any) error {
	if len(keyvals)%2 != 0 {
		keyvals = append(keyvals, "MISSING_VALUE")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, "level=%s", level)
	for i := 0; i < len(keyvals); i += 2 {
		fmt.Fprintf(l.w, " %v=%v", keyvals[i], keyvals[i+1])
	}
	fmt.Fprintln(l.w)
	return nil
}

// filter wraps a Logger and drops entries below a minimum level.
type filter struct {
	logger Logger
	level  Level
}

// FilterOption configures a filter built by NewFilter.
type FilterOption func(*filter)

// FilterLevel sets the minimum level a filtered logger passes through.
func FilterLevel(level Level) FilterOption {
	return func(f *filter) { f.level = level }
}

// NewFilter wraps logger with the given options.
func NewFilter(logger Logger, opts ...FilterOption) Logger {
	f := &filter{logger: logger, level: LevelDebug}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *filter) Log(level Level, keyvals ...any) error {
	if level < f.level {
		return nil
	}
	return f.logger.Log(level, keyvals...)
}

// Helper adds leveled convenience methods on top of a Logger.
type Helper struct {
	logger Logger
}

// NewHelper wraps logger with leveled helper methods.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

func (h *Helper) log(level Level, format string, args []any) {
	if h == nil || h.logger == nil {
		return
	}
	h.logger.Log(level, "msg", fmt.Sprintf(format, args...))
}

func (h *Helper) Debugf(format string, args ...any) { h.log(LevelDebug, format, args) }
func (h *Helper) Infof(format string, args ...any)  { h.log(LevelInfo, format, args) }
func (h *Helper) Warnf(format string, args ...any)  { h.log(LevelWarn, format, args) }
func (h *Helper) Errorf(format string, args ...any) { h.log(LevelError, format, args) }
