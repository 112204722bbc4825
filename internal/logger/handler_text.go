package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	ansiReset = "\033[0m"
	ansiKey   = "\033[36m"
)

// textTimeLayout is the timestamp prefix of every text line.
const textTimeLayout = "2006-01-02 15:04:05"

type levelStyle struct {
	name  string
	color string
}

// styleFor maps a level to its label and ANSI color.
func styleFor(l slog.Level) levelStyle {
	switch {
	case l < slog.LevelInfo:
		return levelStyle{"DEBUG", "\033[90m"}
	case l < slog.LevelWarn:
		return levelStyle{"INFO", "\033[32m"}
	case l < slog.LevelError:
		return levelStyle{"WARN", "\033[33m"}
	default:
		return levelStyle{"ERROR", "\033[31m"}
	}
}

// ColorTextHandler writes one human readable line per record:
//
//	[2006-01-02 15:04:05] [INFO] message key=value ...
//
// Groups are flattened into dotted keys.
type ColorTextHandler struct {
	level  slog.Leveler
	w      io.Writer
	mu     *sync.Mutex
	color  bool
	prefix string // open groups, "a.b."
	pre    []byte // attrs bound via WithAttrs, already encoded
}

// NewColorTextHandler returns a handler writing to w. Only opts.Level is used.
func NewColorTextHandler(w io.Writer, opts *slog.HandlerOptions, useColor bool) *ColorTextHandler {
	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	return &ColorTextHandler{level: level, w: w, mu: &sync.Mutex{}, color: useColor}
}

func (h *ColorTextHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *ColorTextHandler) Handle(_ context.Context, r slog.Record) error {
	st := styleFor(r.Level)
	lvl := st.name
	if h.color {
		lvl = st.color + st.name + ansiReset
	}

	line := make([]byte, 0, 128+len(h.pre))
	line = fmt.Appendf(line, "[%s] [%s] %s", r.Time.Format(textTimeLayout), lvl, r.Message)
	line = append(line, h.pre...)
	r.Attrs(func(a slog.Attr) bool {
		line = h.encode(line, h.prefix, a)
		return true
	})
	line = append(line, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(line)
	return err
}

func (h *ColorTextHandler) encode(dst []byte, prefix string, a slog.Attr) []byte {
	if a.Equal(slog.Attr{}) {
		return dst
	}
	a.Value = a.Value.Resolve()

	if a.Value.Kind() == slog.KindGroup {
		inner := prefix + a.Key + "."
		if a.Key == "" {
			inner = prefix
		}
		for _, ga := range a.Value.Group() {
			dst = h.encode(dst, inner, ga)
		}
		return dst
	}

	key := prefix + a.Key
	if h.color {
		key = ansiKey + key + ansiReset
	}
	dst = append(dst, ' ')
	dst = append(dst, key...)
	dst = append(dst, '=')
	return append(dst, textValue(a.Value)...)
}

// textValue renders v so that a line stays splittable on spaces.
func textValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " \t\"=") {
			return strconv.Quote(s)
		}
		return s
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', 3, 64)
	case slog.KindTime:
		return v.Time().Format(time.RFC3339)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return strconv.Quote(err.Error())
		}
		return fmt.Sprint(v.Any())
	default:
		// Int64, Uint64, Bool and Duration print natively.
		return v.String()
	}
}

func (h *ColorTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.pre = append([]byte(nil), h.pre...)
	for _, a := range attrs {
		c.pre = h.encode(c.pre, h.prefix, a)
	}
	return &c
}

func (h *ColorTextHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix = h.prefix + name + "."
	return &c
}
