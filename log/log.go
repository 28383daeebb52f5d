// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package log is a small structured logger built on the standard
// library's log/slog, in the spirit of go-ethereum's log package: a
// handful of named levels (Trace below Debug, Crit above Error), a
// colorized terminal handler for interactive use, and a rotating file
// handler for long-running nodes.
package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Levels. slog only defines Debug/Info/Warn/Error; Trace and Crit
// extend that range the way go-ethereum's log package does, a notch
// below and above respectively.
const (
	LevelTrace slog.Level = -8
	LevelDebug            = slog.LevelDebug
	LevelInfo             = slog.LevelInfo
	LevelWarn             = slog.LevelWarn
	LevelError            = slog.LevelError
	LevelCrit  slog.Level = 12

	// Old go-ethereum-style aliases, kept because call sites ported
	// from that codebase spell them this way.
	LvlTrace = LevelTrace
	LvlDebug = LevelDebug
	LvlInfo  = LevelInfo
	LvlWarn  = LevelWarn
	LvlError = LevelError
	LvlCrit  = LevelCrit
)

var levelNames = map[slog.Level]string{
	LevelTrace: "TRACE",
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
	LevelCrit:  "CRIT",
}

// LevelString returns the name of l, or its slog default rendering for
// an unrecognized level.
func LevelString(l slog.Level) string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return l.String()
}

// LevelAlignedString is LevelString padded to a fixed width, for
// column-aligned terminal output.
func LevelAlignedString(l slog.Level) string {
	return fmt.Sprintf("%-5s", LevelString(l))
}

// LvlFromString parses a level name case-insensitively.
func LvlFromString(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace, nil
	case "debug", "dbug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn":
		return LevelWarn, nil
	case "error", "eror":
		return LevelError, nil
	case "crit":
		return LevelCrit, nil
	default:
		return 0, fmt.Errorf("log: unknown level %q", s)
	}
}

// FromLegacyLevel converts go-ethereum's old 0-5 verbosity integers
// (Crit=0 ... Trace=5) into the equivalent slog.Level.
func FromLegacyLevel(lvl int) slog.Level {
	switch lvl {
	case 0:
		return LevelCrit
	case 1:
		return LevelError
	case 2:
		return LevelWarn
	case 3:
		return LevelInfo
	case 4:
		return LevelDebug
	default:
		return LevelTrace
	}
}

// Logger is a structured logger: every call takes a message plus an
// alternating key/value context, matching the calling convention of
// go-ethereum's log.Logger.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Crit(msg string, ctx ...any)
	Enabled(ctx context.Context, level slog.Level) bool
	With(ctx ...any) Logger
	Handler() slog.Handler
}

type logger struct {
	inner *slog.Logger
}

// New returns a Logger whose every record carries ctx as a fixed
// key/value prefix, writing through the current default handler.
func New(ctx ...any) Logger {
	rootMu.Lock()
	h := defaultHandler
	rootMu.Unlock()
	return &logger{inner: slog.New(h).With(ctx...)}
}

// NewLogger wraps an arbitrary slog.Handler in the Logger interface,
// without going through the process-wide default.
func NewLogger(h slog.Handler) Logger {
	return &logger{inner: slog.New(h)}
}

func (l *logger) log(level slog.Level, msg string, ctx []any) {
	if !l.inner.Enabled(context.Background(), level) {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(4, pcs[:])
	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.Add(ctx...)
	_ = l.inner.Handler().Handle(context.Background(), r)
}

func (l *logger) Trace(msg string, ctx ...any) { l.log(LevelTrace, msg, ctx) }
func (l *logger) Debug(msg string, ctx ...any) { l.log(LevelDebug, msg, ctx) }
func (l *logger) Info(msg string, ctx ...any)  { l.log(LevelInfo, msg, ctx) }
func (l *logger) Warn(msg string, ctx ...any)  { l.log(LevelWarn, msg, ctx) }
func (l *logger) Error(msg string, ctx ...any) { l.log(LevelError, msg, ctx) }
func (l *logger) Crit(msg string, ctx ...any)  { l.log(LevelCrit, msg, ctx) }

func (l *logger) Enabled(ctx context.Context, level slog.Level) bool {
	return l.inner.Enabled(ctx, level)
}

func (l *logger) With(ctx ...any) Logger {
	return &logger{inner: l.inner.With(ctx...)}
}

func (l *logger) Handler() slog.Handler { return l.inner.Handler() }

var (
	rootMu         sync.Mutex
	defaultHandler slog.Handler
	root           Logger
)

func init() {
	rootMu.Lock()
	defaultHandler = NewTerminalHandler(os.Stderr, isatty.IsTerminal(os.Stderr.Fd()))
	root = NewLogger(defaultHandler)
	rootMu.Unlock()
}

// Root returns the process-wide default logger.
func Root() Logger {
	rootMu.Lock()
	defer rootMu.Unlock()
	return root
}

// SetDefault replaces the process-wide default logger.
func SetDefault(l Logger) {
	rootMu.Lock()
	defer rootMu.Unlock()
	root = l
	defaultHandler = l.Handler()
}

func Trace(msg string, ctx ...any) { Root().Trace(msg, ctx...) }
func Debug(msg string, ctx ...any) { Root().Debug(msg, ctx...) }
func Info(msg string, ctx ...any)  { Root().Info(msg, ctx...) }
func Warn(msg string, ctx ...any)  { Root().Warn(msg, ctx...) }
func Error(msg string, ctx ...any) { Root().Error(msg, ctx...) }
func Crit(msg string, ctx ...any)  { Root().Crit(msg, ctx...) }

func Enabled(ctx context.Context, level slog.Level) bool {
	return Root().Enabled(ctx, level)
}

// DiscardHandler returns a handler that drops every record.
func DiscardHandler() slog.Handler {
	return slog.NewTextHandler(io.Discard, nil)
}

// LvlFilterHandler wraps h so only records at or above maxLevel pass
// through.
func LvlFilterHandler(maxLevel slog.Level, h slog.Handler) slog.Handler {
	return &levelFilterHandler{min: maxLevel, next: h}
}

type levelFilterHandler struct {
	min  slog.Level
	next slog.Handler
}

func (h *levelFilterHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.min && h.next.Enabled(ctx, level)
}
func (h *levelFilterHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.next.Handle(ctx, r)
}
func (h *levelFilterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelFilterHandler{min: h.min, next: h.next.WithAttrs(attrs)}
}
func (h *levelFilterHandler) WithGroup(name string) slog.Handler {
	return &levelFilterHandler{min: h.min, next: h.next.WithGroup(name)}
}

// StreamHandler writes fmtr-formatted records to w (JSONFormat or
// TerminalFormat).
func StreamHandler(w io.Writer, fmtr Formatter) slog.Handler {
	if fmtr.json {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: LevelTrace})
	}
	return newTerminalHandler(w, fmtr.color)
}

// FileHandler opens (creating if needed) a log file at path and
// returns a handler writing records to it in fmtr's format (see
// StreamHandler), rotated by lumberjack once it exceeds 100MB, keeping
// 5 compressed backups for 28 days.
func FileHandler(path string, fmtr Formatter) (slog.Handler, error) {
	if _, err := os.Stat(path); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	w := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     28,
		Compress:   true,
	}
	return StreamHandler(w, fmtr), nil
}

// NewTerminalHandler returns a handler that writes human-readable,
// level-colored lines to w. Color is force-disabled when useColor is
// false (e.g. output is redirected to a file, not a terminal). When w
// is an *os.File, it is wrapped with colorable so ANSI escapes render
// correctly on Windows consoles too.
func NewTerminalHandler(w io.Writer, useColor bool) slog.Handler {
	if useColor {
		if f, ok := w.(*os.File); ok {
			w = colorable.NewColorable(f)
		}
	}
	return newTerminalHandler(w, useColor)
}

// Formatter selects a StreamHandler/FileHandler's output shape.
type Formatter struct {
	json  bool
	color bool
}

// TerminalFormat is human-readable, optionally colorized output.
func TerminalFormat(useColor bool) Formatter { return Formatter{color: useColor} }

// JSONFormat is newline-delimited JSON output.
func JSONFormat() Formatter { return Formatter{json: true} }
