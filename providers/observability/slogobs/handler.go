package slogobs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/term"
)

// Handler renders records in the compact single-line format.
type Handler struct {
	level  slog.Level
	output io.Writer
	colors bool
	mu     *sync.Mutex
	attrs  []slog.Attr
	groups []string
}

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	Level  slog.Level
	Output io.Writer
	// Colors forces ANSI colours. When false, colours are still enabled if
	// Output is a terminal.
	Colors bool
}

// NewHandler creates a compact Handler.
func NewHandler(opts *HandlerOptions) *Handler {
	if opts == nil {
		opts = &HandlerOptions{}
	}
	output := opts.Output
	if output == nil {
		output = os.Stderr
	}

	colors := opts.Colors
	if !colors {
		if file, isFile := output.(*os.File); isFile {
			colors = term.IsTerminal(int(file.Fd()))
		}
	}

	return &Handler{
		level:  opts.Level,
		output: output,
		colors: colors,
		mu:     &sync.Mutex{},
	}
}

// newJSONHandler wraps slog's JSON handler so level names match the compact format.
func newJSONHandler(output io.Writer, level slog.Level) slog.Handler {
	return slog.NewJSONHandler(output, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.LevelKey {
				if recordLevel, isLevel := attr.Value.Any().(slog.Level); isLevel {
					return slog.String(slog.LevelKey, levelString(recordLevel))
				}
			}
			return attr
		},
	})
}

// Enabled reports whether level is at or above the handler's minimum.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

// Handle writes "2006-01-02 15:04:05 LEVEL message {attrs}".
func (h *Handler) Handle(_ context.Context, record slog.Record) error {
	buf := make([]byte, 0, 256)
	buf = append(buf, record.Time.Format("2006-01-02 15:04:05")...)
	buf = append(buf, ' ')

	level := fmt.Sprintf("%5s", levelString(record.Level))
	if h.colors {
		buf = append(buf, colorForLevel(record.Level)...)
		buf = append(buf, level...)
		buf = append(buf, colorReset...)
	} else {
		buf = append(buf, level...)
	}
	buf = append(buf, ' ')
	buf = append(buf, record.Message...)

	if attrs := h.collectAttrs(record); len(attrs) > 0 {
		encoded, err := json.Marshal(attrs)
		if err != nil {
			buf = append(buf, " [unencodable attributes]"...)
		} else {
			buf = append(buf, ' ')
			buf = append(buf, encoded...)
		}
	}
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.output.Write(buf)
	return err
}

// WithAttrs returns a Handler that adds attrs to every record.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &clone
}

// WithGroup returns a Handler that prefixes attribute keys with name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string{}, h.groups...), name)
	return &clone
}

func (h *Handler) collectAttrs(record slog.Record) map[string]any {
	attrs := make(map[string]any, len(h.attrs)+record.NumAttrs())
	for _, attr := range h.attrs {
		h.addAttr(attrs, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		h.addAttr(attrs, attr)
		return true
	})
	return attrs
}

func (h *Handler) addAttr(attrs map[string]any, attr slog.Attr) {
	key := attr.Key
	for index := len(h.groups) - 1; index >= 0; index-- {
		key = h.groups[index] + "." + key
	}
	attrs[key] = attr.Value.Any()
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGreen  = "\033[32m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
)

func colorForLevel(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return colorGray
	case level < slog.LevelInfo:
		return colorBlue
	case level < slog.LevelWarn:
		return colorGreen
	case level < slog.LevelError:
		return colorYellow
	default:
		return colorRed
	}
}
