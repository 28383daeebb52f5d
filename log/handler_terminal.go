// (c) 2024, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
)

// ANSI color codes for each level, in the style of go-ethereum's
// terminal log handler.
const (
	colorReset  = "\x1b[0m"
	colorRed    = "\x1b[31m"
	colorYellow = "\x1b[33m"
	colorCyan   = "\x1b[36m"
	colorGray   = "\x1b[90m"
)

func levelColor(l slog.Level) string {
	switch {
	case l >= LevelCrit:
		return colorRed
	case l >= LevelError:
		return colorRed
	case l >= LevelWarn:
		return colorYellow
	case l >= LevelInfo:
		return colorCyan
	default:
		return colorGray
	}
}

// terminalHandler renders one line per record: "LEVEL[time] msg
// key=value ...", colorizing the level tag when color is enabled.
type terminalHandler struct {
	mu    sync.Mutex
	w     io.Writer
	color bool
	attrs []slog.Attr
}

func newTerminalHandler(w io.Writer, useColor bool) slog.Handler {
	return &terminalHandler{w: w, color: useColor}
}

func (h *terminalHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *terminalHandler) Handle(ctx context.Context, r slog.Record) error {
	var buf bytes.Buffer

	level := LevelAlignedString(r.Level)
	if h.color {
		fmt.Fprintf(&buf, "%s%s%s", levelColor(r.Level), level, colorReset)
	} else {
		buf.WriteString(level)
	}
	fmt.Fprintf(&buf, "[%s] %s", r.Time.Format("01-02|15:04:05.000"), r.Message)

	attrs := make([]slog.Attr, 0, len(h.attrs)+r.NumAttrs())
	attrs = append(attrs, h.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})
	sort.SliceStable(attrs, func(i, j int) bool { return attrs[i].Key < attrs[j].Key })
	for _, a := range attrs {
		fmt.Fprintf(&buf, " %s=%v", a.Key, a.Value.Any())
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *terminalHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &terminalHandler{w: h.w, color: h.color, attrs: append(append([]slog.Attr{}, h.attrs...), attrs...)}
}

func (h *terminalHandler) WithGroup(name string) slog.Handler {
	// Groups are rare in this module's call sites; flatten rather than
	// nest so output stays one line per record.
	return h
}
