// Package logging provides the slog handler used across the renderer:
// bracketed level tags on the console and an optional timestamped log file.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/muesli/termenv"
)

const timestampLayout = "2006-01-02 15:04:05"

// LevelFromFlags maps the -vv, -v and -q flags onto a level. The flags are
// checked in that order; with none set it returns fallback.
func LevelFromFlags(vv, v, q bool, fallback slog.Level) slog.Level {
	switch {
	case vv:
		return slog.LevelDebug
	case v:
		return slog.LevelInfo
	case q:
		return slog.LevelError
	default:
		return fallback
	}
}

func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

type Options struct {
	Level slog.Leveler
	// File is appended to when set. A leading ~ is expanded.
	File string
	// NoColor disables escape sequences even on a terminal.
	NoColor bool
}

type sink struct {
	mu      sync.Mutex
	console *termenv.Output
	file    *os.File
	now     func() time.Time
}

// Handler is a slog.Handler writing "[LEVEL] message key=value" lines.
type Handler struct {
	sink   *sink
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string
}

func New(console io.Writer, opts Options) (*Handler, error) {
	var outOpts []termenv.OutputOption
	if opts.NoColor {
		outOpts = append(outOpts, termenv.WithProfile(termenv.Ascii))
	}
	s := &sink{
		console: termenv.NewOutput(console, outOpts...),
		now:     time.Now,
	}
	if opts.File != "" {
		path, err := homedir.Expand(opts.File)
		if err != nil {
			return nil, fmt.Errorf("failed to expand log file path: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		s.file = f
	}
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}
	return &Handler{sink: s, level: level}, nil
}

// NewLogger is New wrapped in a slog.Logger.
func NewLogger(console io.Writer, opts Options) (*slog.Logger, *Handler, error) {
	h, err := New(console, opts)
	if err != nil {
		return nil, nil, err
	}
	return slog.New(h), h, nil
}

func (h *Handler) Close() error {
	h.sink.mu.Lock()
	defer h.sink.mu.Unlock()
	if h.sink.file == nil {
		return nil
	}
	err := h.sink.file.Close()
	h.sink.file = nil
	return err
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Message)
	for _, a := range h.attrs {
		writeAttr(&b, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		writeAttr(&b, h.prefix, a)
		return true
	})
	line := b.String()
	tag := levelTag(r.Level)

	s := h.sink
	s.mu.Lock()
	defer s.mu.Unlock()
	styled := s.console.String(tag).Foreground(levelColor(r.Level))
	if r.Level >= slog.LevelError {
		styled = styled.Bold()
	}
	if _, err := fmt.Fprintf(s.console, "%s %s\n", styled, line); err != nil {
		return err
	}
	if s.file != nil {
		if _, err := fmt.Fprintf(s.file, "[%s] %s %s\n", s.now().Format(timestampLayout), tag, line); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	h2 := *h
	h2.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	h2.attrs = append(h2.attrs, h.attrs...)
	for _, a := range attrs {
		a.Key = h.prefix + a.Key
		h2.attrs = append(h2.attrs, a)
	}
	return &h2
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	h2 := *h
	h2.prefix = h.prefix + name + "."
	return &h2
}

func levelTag(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "[ERROR]"
	case l >= slog.LevelWarn:
		return "[WARNING]"
	case l >= slog.LevelInfo:
		return "[INFO]"
	default:
		return "[DEBUG]"
	}
}

func levelColor(l slog.Level) termenv.Color {
	switch {
	case l >= slog.LevelError:
		return termenv.ANSIRed
	case l >= slog.LevelWarn:
		return termenv.ANSIYellow
	case l >= slog.LevelInfo:
		return termenv.ANSIGreen
	default:
		return termenv.ANSIBrightBlack
	}
}

func writeAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range group {
			writeAttr(b, prefix, ga)
		}
		return
	}
	b.WriteByte(' ')
	b.WriteString(prefix)
	b.WriteString(a.Key)
	b.WriteByte('=')
	v := a.Value.String()
	if strings.ContainsAny(v, " \t\"=") {
		v = fmt.Sprintf("%q", v)
	}
	b.WriteString(v)
}
