package logging

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// WithAttrs returns a context carrying the given key-value pairs, appended to any already present.
// Loggers built by NewLogger add them to records logged with that context.
func WithAttrs(ctx context.Context, kvPairs ...any) context.Context {
	existing := AttrsFromContext(ctx)
	merged := make([]any, 0, len(existing)+len(kvPairs))
	merged = append(merged, existing...)
	merged = append(merged, kvPairs...)
	return context.WithValue(ctx, contextKey{}, merged)
}

// AttrsFromContext returns the key-value pairs stored with WithAttrs.
func AttrsFromContext(ctx context.Context) []any {
	kvPairs, _ := ctx.Value(contextKey{}).([]any)
	return kvPairs
}

// ExtractFromContextFn defines a function that extracts key-value pairs from context.
// It should return pairs of keys and values as []any, e.g., []any{"key1", "value1", "key2", "value2"}
type ExtractFromContextFn func(context.Context) []any

// ContextHandler wraps an slog.Handler and extracts values from context before logging.
type ContextHandler struct {
	handler slog.Handler
	extract ExtractFromContextFn
}

// NewContextHandler creates a new handler that extracts context values before delegating to the wrapped handler.
func NewContextHandler(handler slog.Handler, extract ExtractFromContextFn) *ContextHandler {
	return &ContextHandler{
		handler: handler,
		extract: extract,
	}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.extract != nil && ctx != nil {
		kvPairs := h.extract(ctx)
		for i := 0; i < len(kvPairs)-1; i += 2 {
			key, ok := kvPairs[i].(string)
			if !ok {
				continue
			}
			r.AddAttrs(slog.Any(key, kvPairs[i+1]))
		}
	}
	return h.handler.Handle(ctx, r)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return NewContextHandler(h.handler.WithAttrs(attrs), h.extract)
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return NewContextHandler(h.handler.WithGroup(name), h.extract)
}
