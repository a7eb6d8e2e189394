package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// RawHandler writes the message followed by space separated key=value pairs, one record per line.
// It is meant for command line tools whose output is read by people.
type RawHandler struct {
	mu     *sync.Mutex
	writer io.Writer
	level  slog.Leveler
	prefix string
	attrs  []slog.Attr
}

// NewRawHandler creates a new RawHandler.
func NewRawHandler(w io.Writer, opts *slog.HandlerOptions) *RawHandler {
	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	return &RawHandler{mu: &sync.Mutex{}, writer: w, level: level}
}

// Enabled reports whether the handler handles records at the given level.
func (h *RawHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes the record.
func (h *RawHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(r.Message)
	for _, attr := range h.attrs {
		appendAttr(&b, "", attr)
	}
	r.Attrs(func(attr slog.Attr) bool {
		appendAttr(&b, h.prefix, attr)
		return true
	})
	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, b.String())
	return err
}

func appendAttr(b *strings.Builder, prefix string, attr slog.Attr) {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return
	}
	if attr.Value.Kind() == slog.KindGroup {
		if attr.Key != "" {
			prefix += attr.Key + "."
		}
		for _, child := range attr.Value.Group() {
			appendAttr(b, prefix, child)
		}
		return
	}
	value := fmt.Sprint(attr.Value.Any())
	if strings.ContainsAny(value, " \t\n\"=") {
		value = strconv.Quote(value)
	}
	b.WriteString(" " + prefix + attr.Key + "=" + value)
}

// WithAttrs returns a new handler with additional attributes.
func (h *RawHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = slices.Clone(h.attrs)
	for _, attr := range attrs {
		if h.prefix != "" {
			attr.Key = h.prefix + attr.Key
		}
		clone.attrs = append(clone.attrs, attr)
	}
	return &clone
}

// WithGroup returns a new handler prefixing subsequent keys with the group name.
func (h *RawHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}
