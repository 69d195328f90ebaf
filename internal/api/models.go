package api

import (
	"github.com/strandcast/lednode/internal/logging"
	"github.com/strandcast/lednode/internal/metrics"
	"github.com/strandcast/lednode/internal/version"
)

// HealthData is the health check payload.
type HealthData struct {
	Status  string `json:"status" example:"ok" doc:"Health status"`
	Message string `json:"message" example:"node is running" doc:"Status message"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Body HealthData
}

// VersionResponse is the version endpoint response.
type VersionResponse struct {
	Body version.Info
}

// StatusData combines configured geometry with accumulated totals.
type StatusData struct {
	Side     string           `json:"side" doc:"Wall side identifier"`
	Runs     []int            `json:"runs" doc:"LED count per wired run"`
	Snapshot metrics.Snapshot `json:"snapshot" doc:"Totals accumulated from heartbeats"`
}

// StatusResponse is the status endpoint response.
type StatusResponse struct {
	Body StatusData
}

// LogsData is the log buffer payload.
type LogsData struct {
	Entries []logging.LogEntry `json:"entries" doc:"Entries in chronological order"`
	Count   int                `json:"count" doc:"Number of entries returned"`
}

// LogsResponse is the logs endpoint response.
type LogsResponse struct {
	Body LogsData
}
