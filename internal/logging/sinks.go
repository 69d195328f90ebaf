package logging

import (
	"context"
	"log/slog"
	"os"
)

// sinkSet fans each record out to the node's sinks: the console when
// stdout goes somewhere, the systemd journal when the unit provides
// one, and the in-memory tail behind the debug API.
type sinkSet struct {
	sinks []slog.Handler
}

// newSinkSet assembles the sink handlers for one module logger. All
// sinks share the module's level var, so runtime level changes apply
// everywhere at once.
func newSinkSet(format string, level slog.Leveler) *sinkSet {
	opts := &slog.HandlerOptions{Level: level}

	var sinks []slog.Handler
	if isStdoutAvailable() {
		if format == "json" {
			sinks = append(sinks, slog.NewJSONHandler(os.Stdout, opts))
		} else {
			sinks = append(sinks, slog.NewTextHandler(os.Stdout, opts))
		}
	}
	if IsJournalAvailable() {
		sinks = append(sinks, NewJournalHandler(level))
	}
	sinks = append(sinks, newTailHandler(level))
	return &sinkSet{sinks: sinks}
}

// Enabled implements slog.Handler.
func (s *sinkSet) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range s.sinks {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

// Handle implements slog.Handler.
func (s *sinkSet) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range s.sinks {
		if h.Enabled(ctx, r.Level) {
			_ = h.Handle(ctx, r.Clone())
		}
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (s *sinkSet) WithAttrs(attrs []slog.Attr) slog.Handler {
	sinks := make([]slog.Handler, len(s.sinks))
	for i, h := range s.sinks {
		sinks[i] = h.WithAttrs(attrs)
	}
	return &sinkSet{sinks: sinks}
}

// WithGroup implements slog.Handler.
func (s *sinkSet) WithGroup(name string) slog.Handler {
	sinks := make([]slog.Handler, len(s.sinks))
	for i, h := range s.sinks {
		sinks[i] = h.WithGroup(name)
	}
	return &sinkSet{sinks: sinks}
}

// isStdoutAvailable checks if stdout is connected to a terminal, pipe,
// socket, or file.
func isStdoutAvailable() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	mode := fi.Mode()
	return (mode&os.ModeCharDevice) != 0 || (mode&os.ModeNamedPipe) != 0 || (mode&os.ModeSocket) != 0 || mode.IsRegular()
}
