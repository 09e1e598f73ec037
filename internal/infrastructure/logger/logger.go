package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const colorReset = "\033[0m"

// levelColors highlights the level key of slog's text format. WARN is where
// captured interactions land, so it stands out on a terminal.
var levelColors = strings.NewReplacer(
	"level=DEBUG", "\033[36m"+"level=DEBUG"+colorReset,
	"level=INFO", "\033[32m"+"level=INFO"+colorReset,
	"level=WARN", "\033[33m"+"level=WARN"+colorReset,
	"level=ERROR", "\033[31m"+"level=ERROR"+colorReset,
)

// newColoredHandler returns a text handler that colors the level when w is a
// terminal.
func newColoredHandler(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	if !isTerminal(w) {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewTextHandler(colorWriter{w}, opts)
}

type colorWriter struct {
	w io.Writer
}

func (cw colorWriter) Write(p []byte) (int, error) {
	if _, err := levelColors.WriteString(cw.w, string(p)); err != nil {
		return 0, err
	}
	return len(p), nil
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

// New builds a structured slog logger honoring the configured level and environment.
// For development environments (local, dev, development), it uses colored text output.
// For production environments (prod, production, staging), it uses JSON output.
// Every extra writer receives a JSON copy of each record.
func New(appName, level, environment string, extra ...io.Writer) *slog.Logger {
	env := strings.ToLower(strings.TrimSpace(environment))
	opts := &slog.HandlerOptions{
		Level:     parseLevel(level),
		AddSource: true,
	}

	var handler slog.Handler

	if env == "local" || env == "dev" || env == "development" {
		handler = newColoredHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	if len(extra) > 0 {
		handlers := []slog.Handler{handler}
		for _, w := range extra {
			handlers = append(handlers, slog.NewJSONHandler(w, opts))
		}
		handler = fanoutHandler(handlers)
	}

	return slog.New(handler).With("app", appName)
}

// OpenFile opens path for appending log lines, creating it if needed.
func OpenFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file %s: %w", path, err)
	}
	return f, nil
}

// fanoutHandler dispatches each record to every handler that accepts its level.
type fanoutHandler []slog.Handler

func (h fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, child := range h {
		if child.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (h fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, child := range h {
		if !child.Enabled(ctx, record.Level) {
			continue
		}
		if err := child.Handle(ctx, record.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanoutHandler, len(h))
	for i, child := range h {
		out[i] = child.WithAttrs(attrs)
	}
	return out
}

func (h fanoutHandler) WithGroup(name string) slog.Handler {
	out := make(fanoutHandler, len(h))
	for i, child := range h {
		out[i] = child.WithGroup(name)
	}
	return out
}

func parseLevel(level string) slog.Leveler {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
