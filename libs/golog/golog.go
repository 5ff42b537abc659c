// Package golog is a small levelled logger. Every entry carries a message,
// an optional source location and key/value context, and is rendered by a
// Formatter before being handed to a Handler.
package golog

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// Level represents a log level (CRIT, ERR, ...)
type Level int32

// Log levels
const (
	CRIT  Level = iota // For panics (code bugs)
	ERR                // General errors (e.g. errors from the store)
	WARN               // Correctable but inconsistent state
	INFO               // Request summaries
	DEBUG              // Normally turned off
)

var levelNames = map[Level]string{
	CRIT:  "CRIT",
	ERR:   "ERR",
	WARN:  "WARN",
	INFO:  "INFO",
	DEBUG: "DEBUG",
}

func (l Level) String() string {
	if s := levelNames[l]; s != "" {
		return s
	}
	return strconv.Itoa(int(l))
}

// Logger is implemented by the default logger and every logger derived from it through Context.
type Logger interface {
	Context(ctx ...interface{}) Logger

	SetLevel(l Level) Level
	Level() Level
	// L returns true if the current level is greater than or equal to 'l'
	L(l Level) bool

	SetHandler(h Handler)
	Handler() Handler

	LogDepthf(calldepth int, l Level, format string, args ...interface{})
	Fatalf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// Entry is a single log line before formatting.
type Entry struct {
	Time time.Time
	Lvl  Level
	Msg  string
	Ctx  []interface{}
	Src  string
}

type logger struct {
	mu  sync.Mutex
	ctx []interface{}
	hnd Handler
	lvl int32
	// parent is consulted for the level and handler of derived loggers so that
	// changing the default after a Context call still takes effect.
	parent *logger
}

var defaultL = &logger{
	hnd: WriterHandler(os.Stderr, LogfmtFormatter()),
	lvl: int32(INFO),
}

// Default returns the process wide logger.
func Default() Logger {
	return defaultL
}

func (l *logger) root() *logger {
	for l.parent != nil {
		l = l.parent
	}
	return l
}

func (l *logger) SetLevel(lvl Level) Level {
	return Level(atomic.SwapInt32(&l.root().lvl, int32(lvl)))
}

func (l *logger) Level() Level {
	return Level(atomic.LoadInt32(&l.root().lvl))
}

func (l *logger) L(lvl Level) bool {
	return l.Level() >= lvl
}

func (l *logger) SetHandler(h Handler) {
	r := l.root()
	r.mu.Lock()
	r.hnd = h
	r.mu.Unlock()
}

func (l *logger) Handler() Handler {
	r := l.root()
	r.mu.Lock()
	h := r.hnd
	r.mu.Unlock()
	return h
}

func (l *logger) Context(ctx ...interface{}) Logger {
	if len(ctx)%2 != 0 {
		ctx = append(ctx, nil)
	}
	merged := make([]interface{}, 0, len(l.ctx)+len(ctx))
	merged = append(merged, l.ctx...)
	merged = append(merged, ctx...)
	return &logger{ctx: merged, parent: l.root()}
}

func (l *logger) LogDepthf(calldepth int, lvl Level, format string, args ...interface{}) {
	if !l.L(lvl) {
		return
	}
	e := &Entry{
		Time: time.Now(),
		Lvl:  lvl,
		Msg:  fmt.Sprintf(format, args...),
		Ctx:  l.ctx,
	}
	if calldepth >= 0 {
		e.Src = source(calldepth + 2)
	}
	if err := l.Handler().Log(e); err != nil {
		fmt.Fprintf(os.Stderr, "golog: failed to write log entry: %s\n", err)
	}
}

func (l *logger) Fatalf(format string, args ...interface{}) {
	l.LogDepthf(1, CRIT, format, args...)
	os.Exit(255)
}

func (l *logger) Errorf(format string, args ...interface{}) {
	l.LogDepthf(1, ERR, format, args...)
}

func (l *logger) Warningf(format string, args ...interface{}) {
	l.LogDepthf(1, WARN, format, args...)
}

func (l *logger) Infof(format string, args ...interface{}) {
	l.LogDepthf(-1, INFO, format, args...)
}

func (l *logger) Debugf(format string, args ...interface{}) {
	l.LogDepthf(-1, DEBUG, format, args...)
}

func source(depth int) string {
	_, file, line, ok := runtime.Caller(depth)
	if !ok {
		return ""
	}
	short := file
	n := 0
	for i := len(file) - 1; i > 0; i-- {
		if file[i] == '/' {
			short = file[i+1:]
			n++
			if n == 2 {
				break
			}
		}
	}
	return short + ":" + strconv.Itoa(line)
}

// LogDepthf logs through the default logger. calldepth is relative to the
// caller of LogDepthf, negative to omit the source location.
func LogDepthf(calldepth int, lvl Level, format string, args ...interface{}) {
	if calldepth >= 0 {
		calldepth++
	}
	defaultL.LogDepthf(calldepth, lvl, format, args...)
}

func Context(ctx ...interface{}) Logger {
	return defaultL.Context(ctx...)
}

func Fatalf(format string, args ...interface{}) {
	defaultL.LogDepthf(1, CRIT, format, args...)
	os.Exit(255)
}

func Errorf(format string, args ...interface{}) {
	defaultL.LogDepthf(1, ERR, format, args...)
}

func Warningf(format string, args ...interface{}) {
	defaultL.LogDepthf(1, WARN, format, args...)
}

func Infof(format string, args ...interface{}) {
	defaultL.LogDepthf(-1, INFO, format, args...)
}

func Debugf(format string, args ...interface{}) {
	defaultL.LogDepthf(-1, DEBUG, format, args...)
}
