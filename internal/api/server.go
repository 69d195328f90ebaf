// Package api serves the optional local debug API. It is off by default
// and only listens on the address it is started with; the sender-facing
// surface of the device stays the heartbeat datagram alone.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/strandcast/lednode/internal/config"
	"github.com/strandcast/lednode/internal/events"
	"github.com/strandcast/lednode/internal/logging"
	"github.com/strandcast/lednode/internal/metrics"
	"github.com/strandcast/lednode/internal/version"
)

// Options configures the debug API server.
type Options struct {
	Layout *config.Layout
	Bus    *events.Bus
}

// Server is the Huma v2 debug API over the stdlib mux.
type Server struct {
	api        huma.API
	mux        *http.ServeMux
	httpServer *http.Server
	opts       *Options
	logger     *slog.Logger
}

// NewServer creates the debug API server.
func NewServer(opts *Options) *Server {
	mux := http.NewServeMux()

	cfg := huma.DefaultConfig("LEDNode Debug API", version.String())
	cfg.Info.Description = "Local observability surface for an LED wall node"
	cfg.Servers = []*huma.Server{}

	s := &Server{
		api:    humago.New(mux, cfg),
		mux:    mux,
		opts:   opts,
		logger: logging.GetLogger("api"),
	}
	s.api.UseMiddleware(HTTPLoggingMiddleware)

	mux.Handle("GET /metrics", promhttp.Handler())
	s.registerRoutes()
	if opts.Bus != nil {
		s.registerSSERoutes()
	}
	return s
}

// Start serves the API on addr. Blocks until the server stops.
func (s *Server) Start(addr string) error {
	s.logger.Info("Starting debug API server", "addr", addr)
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.mux,
	}
	return s.httpServer.ListenAndServe()
}

// Stop shuts the server down without waiting for open connections.
func (s *Server) Stop() error {
	if s.httpServer != nil {
		return s.httpServer.Close()
	}
	return nil
}

func (s *Server) registerRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "health-check",
		Method:      http.MethodGet,
		Path:        "/api/health",
		Summary:     "Health",
		Description: "Check node health status",
		Tags:        []string{"health"},
	}, func(ctx context.Context, input *struct{}) (*HealthResponse, error) {
		return &HealthResponse{
			Body: HealthData{
				Status:  "ok",
				Message: "node is running",
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-version",
		Method:      http.MethodGet,
		Path:        "/api/version",
		Summary:     "Version",
		Description: "Get build version information",
		Tags:        []string{"system"},
	}, func(ctx context.Context, input *struct{}) (*VersionResponse, error) {
		return &VersionResponse{Body: version.Get()}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-status",
		Method:      http.MethodGet,
		Path:        "/api/status",
		Summary:     "Status",
		Description: "Totals accumulated from heartbeats plus the configured geometry",
		Tags:        []string{"system"},
	}, func(ctx context.Context, input *struct{}) (*StatusResponse, error) {
		return &StatusResponse{
			Body: StatusData{
				Side:     s.opts.Layout.Side,
				Runs:     s.opts.Layout.Runs,
				Snapshot: metrics.GetSnapshot(),
			},
		}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "get-logs",
		Method:      http.MethodGet,
		Path:        "/api/logs",
		Summary:     "Logs",
		Description: "Recent log entries from the in-memory tail",
		Tags:        []string{"logs"},
	}, func(ctx context.Context, input *struct{}) (*LogsResponse, error) {
		var entries []logging.LogEntry
		if tail := logging.Captured(); tail != nil {
			entries = tail.Snapshot()
		}
		return &LogsResponse{Body: LogsData{Entries: entries, Count: len(entries)}}, nil
	})
}
