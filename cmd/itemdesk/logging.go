// ABOUTME: Logger construction for the itemdesk REPL
// ABOUTME: JSON or colorized text, always on stderr so stdout stays readable

package main

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/fatih/color"

	"github.com/2389/itemdesk/internal/config"
)

// parseLevel accepts slog level names ("debug", "WARN", "info+2").
// Anything unparsable falls back to warn so the prompt stays quiet.
func parseLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelWarn
	}
	return level
}

func setupLogger(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	level := parseLevel(cfg.Level)

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(newTextHandler(w, level))
}

type levelStyle struct {
	min   slog.Level
	label string
	paint func(format string, a ...any) string
}

// levelStyles is ordered from most to least severe.
var levelStyles = []levelStyle{
	{slog.LevelError, "ERR", color.New(color.FgRed, color.Bold).SprintfFunc()},
	{slog.LevelWarn, "WRN", color.YellowString},
	{slog.LevelInfo, "INF", color.CyanString},
	{slog.LevelDebug, "DBG", color.MagentaString},
}

func levelLabel(l slog.Level) string {
	for _, s := range levelStyles {
		if l >= s.min {
			label := s.label
			if d := l - s.min; d > 0 {
				label += "+" + strconv.Itoa(int(d))
			}
			return s.paint("%s", label)
		}
	}
	return "TRC"
}

// textHandler writes one colorized line per record. Attrs added with
// WithAttrs are rendered once and reused; derived handlers share the lock.
type textHandler struct {
	mu     *sync.Mutex
	w      io.Writer
	level  slog.Leveler
	pre    string
	prefix string
}

func newTextHandler(w io.Writer, level slog.Leveler) *textHandler {
	return &textHandler{mu: &sync.Mutex{}, w: w, level: level}
}

func (h *textHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *textHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	if !r.Time.IsZero() {
		b.WriteString(color.HiBlackString("%s ", r.Time.Format("15:04:05")))
	}
	b.WriteString(levelLabel(r.Level))
	b.WriteByte(' ')
	b.WriteString(r.Message)
	b.WriteString(h.pre)
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, h.prefix, a)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *textHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	var b strings.Builder
	b.WriteString(h.pre)
	for _, a := range attrs {
		appendAttr(&b, h.prefix, a)
	}
	c := *h
	c.pre = b.String()
	return &c
}

func (h *textHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix = h.prefix + name + "."
	return &c
}

// appendAttr writes " key=value", flattening groups into dotted keys.
func appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		inner := prefix
		if a.Key != "" {
			inner += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			appendAttr(b, inner, ga)
		}
		return
	}
	b.WriteString(color.HiBlackString(" %s%s=", prefix, a.Key))
	b.WriteString(quoteIfNeeded(a.Value.String()))
}

func quoteIfNeeded(s string) string {
	if s == "" {
		return `""`
	}
	for _, r := range s {
		if unicode.IsSpace(r) || r == '"' || r == '=' || !unicode.IsPrint(r) {
			return strconv.Quote(s)
		}
	}
	return s
}
