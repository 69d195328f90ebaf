// Package logging provides structured logging with per-module log level
// configuration.
//
// # Overview
//
// The logging system uses Go's slog package with automatic output routing:
//   - Logs to systemd journal when available (Linux systems with journald)
//   - Logs to stdout when a terminal, pipe, or file is connected
//   - Logs to both when both are available
//
// A bounded in-memory tail additionally keeps recent entries for the
// debug API.
//
// # Usage
//
// Initialize the logging system once at startup:
//
//	logging.Initialize(logging.Config{
//		Level:  "info",      // Global log level: debug, info, warn, error
//		Format: "text",      // Output format: text or json
//		Modules: map[string]string{
//			"receiver": "debug",  // Per-module overrides
//			"status":   "warn",
//		},
//	})
//
// Get a logger for your module:
//
//	logger := logging.GetLogger("receiver")
//	logger.Info("Session adopted", "session_id", id)
//
// # Viewing Logs
//
// When running as a systemd service or on a system with journald:
//
//	journalctl -t lednode              # All lednode logs
//	journalctl -t lednode -f           # Follow live
//	journalctl -t lednode MODULE=receiver
//
// # Configuration
//
// Log levels can be set globally or per-module. Module-specific levels
// override the global level for that module only.
//
// Example TOML configuration:
//
//	[logging]
//	level = "info"
//	format = "text"
//	receiver = "debug"
//	api = "warn"
package logging
