// Package logging installs the process-wide slog handler: records at ERROR
// and above go to stderr, the rest to stdout, and everything is optionally
// mirrored into a log file.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options selects where and how records are written.
type Options struct {
	Path   string // mirror file, appended to; empty disables it
	Level  string // debug, info, warn or error
	Format string // text or json
}

// ParseLevel accepts slog level names, case-insensitively. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", s, err)
	}
	return level, nil
}

// CheckFormat reports whether format names a supported output format.
func CheckFormat(format string) error {
	switch strings.ToLower(format) {
	case "", FormatText, FormatJSON:
		return nil
	}
	return fmt.Errorf("log format %q: want %s or %s", format, FormatText, FormatJSON)
}

// splitHandler sends records at ERROR and above to errs and the rest to out.
type splitHandler struct {
	min  slog.Level
	out  slog.Handler
	errs slog.Handler
}

// NewHandler returns a handler writing records below ERROR to out and the
// others to errs, dropping anything under level.
func NewHandler(out, errs io.Writer, level slog.Level, format string) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	build := func(w io.Writer) slog.Handler {
		if strings.EqualFold(format, FormatJSON) {
			return slog.NewJSONHandler(w, opts)
		}
		return slog.NewTextHandler(w, opts)
	}
	return &splitHandler{min: level, out: build(out), errs: build(errs)}
}

func (h *splitHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.min
}

func (h *splitHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError {
		return h.errs.Handle(ctx, r)
	}
	return h.out.Handle(ctx, r)
}

func (h *splitHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &splitHandler{min: h.min, out: h.out.WithAttrs(attrs), errs: h.errs.WithAttrs(attrs)}
}

func (h *splitHandler) WithGroup(name string) slog.Handler {
	return &splitHandler{min: h.min, out: h.out.WithGroup(name), errs: h.errs.WithGroup(name)}
}

// Setup installs the default logger. The returned function closes the mirror
// file and is never nil.
func Setup(opts Options) (func(), error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	if err := CheckFormat(opts.Format); err != nil {
		return nil, err
	}

	out, errs := io.Writer(os.Stdout), io.Writer(os.Stderr)
	closeFn := func() {}

	if opts.Path != "" {
		f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		closeFn = func() { f.Close() }
		out = io.MultiWriter(os.Stdout, f)
		errs = io.MultiWriter(os.Stderr, f)
	}

	slog.SetDefault(slog.New(NewHandler(out, errs, level, opts.Format)))
	return closeFn, nil
}
