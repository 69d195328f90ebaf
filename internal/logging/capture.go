package logging

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// tailHandler copies records into the package tail. The tail is looked
// up at write time, so handlers created before Initialize drop records
// until it exists.
type tailHandler struct {
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string
}

func newTailHandler(level slog.Leveler) *tailHandler {
	return &tailHandler{level: level}
}

// Enabled implements slog.Handler.
func (h *tailHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *tailHandler) Handle(_ context.Context, r slog.Record) error {
	tail := Captured()
	if tail == nil {
		return nil
	}

	entry := LogEntry{
		Timestamp: r.Time,
		Level:     strings.ToLower(r.Level.String()),
		Module:    "app",
		Message:   r.Message,
	}

	var collect func(prefix string, a slog.Attr)
	collect = func(prefix string, a slog.Attr) {
		if a.Key == "module" && prefix == "" {
			entry.Module = a.Value.String()
			return
		}
		if a.Value.Kind() == slog.KindGroup {
			for _, ga := range a.Value.Group() {
				collect(prefix+a.Key+".", ga)
			}
			return
		}
		if entry.Attributes == nil {
			entry.Attributes = make(map[string]any)
		}
		entry.Attributes[prefix+a.Key] = attrValue(a.Value)
	}
	for _, a := range h.attrs {
		collect(h.prefix, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		collect(h.prefix, a)
		return true
	})

	tail.Append(entry)
	return nil
}

// attrValue renders a value the way the debug API serves it: times and
// durations as strings, errors as their message, everything else as is.
func attrValue(v slog.Value) any {
	v = v.Resolve()
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return v.Any()
	default:
		return v.Any()
	}
}

// WithAttrs implements slog.Handler.
func (h *tailHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &tailHandler{level: h.level, attrs: merged, prefix: h.prefix}
}

// WithGroup implements slog.Handler.
func (h *tailHandler) WithGroup(name string) slog.Handler {
	return &tailHandler{level: h.level, attrs: h.attrs, prefix: h.prefix + name + "."}
}
