package api

import (
	"log/slog"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/strandcast/lednode/internal/logging"
)

// HTTPLoggingMiddleware logs debug API requests. Server errors log at
// error level, client errors at warn, everything else at debug so the
// steady-state poll traffic stays out of the journal.
func HTTPLoggingMiddleware(ctx huma.Context, next func(huma.Context)) {
	start := time.Now()
	next(ctx)

	status := ctx.Status()
	level := slog.LevelDebug
	switch {
	case status >= 500:
		level = slog.LevelError
	case status >= 400:
		level = slog.LevelWarn
	}

	logging.GetLogger("api").Log(ctx.Context(), level, "HTTP request",
		"method", ctx.Method(),
		"path", ctx.URL().Path,
		"remote_addr", ctx.RemoteAddr(),
		"status", status,
		"duration", time.Since(start))
}
