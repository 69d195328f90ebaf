// Package metrics exposes Prometheus metrics for the node. Values are fed
// from the event bus so the hot loop never touches a registry directly.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/strandcast/lednode/internal/events"
)

var (
	rxFrames = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lednode",
		Subsystem: "receiver",
		Name:      "rx_frames_total",
		Help:      "Datagrams ingested, including dropped ones",
	})

	completeFrames = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lednode",
		Subsystem: "receiver",
		Name:      "complete_frames_total",
		Help:      "Frames fully assembled from all runs",
	})

	appliedFrames = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lednode",
		Subsystem: "receiver",
		Name:      "applied_frames_total",
		Help:      "Frames handed to the LED driver",
	})

	droppedFrames = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lednode",
		Subsystem: "receiver",
		Name:      "dropped_frames_total",
		Help:      "Datagrams dropped for length or staleness",
	})

	sessionChanges = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lednode",
		Subsystem: "receiver",
		Name:      "session_changes_total",
		Help:      "Sender session restarts observed",
	})

	framesDisplayed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lednode",
		Subsystem: "driver",
		Name:      "frames_displayed_total",
		Help:      "Frames pushed to the LED strips",
	})

	heartbeats = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "lednode",
		Subsystem: "status",
		Name:      "heartbeats_total",
		Help:      "Heartbeat datagrams sent",
	})

	linkUp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lednode",
		Subsystem: "net",
		Name:      "link_up",
		Help:      "Ethernet link state (1 up, 0 down)",
	})

	uptimeMs = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lednode",
		Subsystem: "node",
		Name:      "uptime_ms",
		Help:      "Monotonic milliseconds since boot, sampled at heartbeat",
	})

	wakeupComplete = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "lednode",
		Subsystem: "node",
		Name:      "wakeup_complete",
		Help:      "Whether the startup sweep has finished (1 yes, 0 no)",
	})

	// Local cache for the debug API status endpoint.
	snapshot   Snapshot
	snapshotMu sync.RWMutex
)

// Snapshot holds the totals accumulated from heartbeat events.
type Snapshot struct {
	UptimeMs       uint32 `json:"uptime_ms" doc:"Node uptime at the last heartbeat"`
	LinkUp         bool   `json:"link_up" doc:"Ethernet link state"`
	RxFrames       uint64 `json:"rx_frames" doc:"Datagrams ingested since boot"`
	CompleteFrames uint64 `json:"complete_frames" doc:"Frames assembled since boot"`
	AppliedFrames  uint64 `json:"applied_frames" doc:"Frames applied since boot"`
	DroppedFrames  uint64 `json:"dropped_frames" doc:"Datagrams dropped since boot"`
	Heartbeats     uint64 `json:"heartbeats" doc:"Heartbeats sent since boot"`
	SessionChanges uint64 `json:"session_changes" doc:"Session restarts since boot"`
	LastFrameID    uint32 `json:"last_frame_id" doc:"Frame id of the last displayed frame"`
	WakeupComplete bool   `json:"wakeup_complete" doc:"Startup sweep finished"`
}

// Wire subscribes the metric updaters to the node event bus and returns
// an unsubscribe function.
func Wire(bus *events.Bus) func() {
	unsubs := []func(){
		events.Subscribe(bus, func(e events.HeartbeatSentEvent) {
			rxFrames.Add(float64(e.RxFrames))
			completeFrames.Add(float64(e.CompleteFrames))
			appliedFrames.Add(float64(e.AppliedFrames))
			droppedFrames.Add(float64(e.DroppedFrames))
			heartbeats.Inc()
			uptimeMs.Set(float64(e.UptimeMs))
			if e.LinkUp {
				linkUp.Set(1)
			} else {
				linkUp.Set(0)
			}
			updateSnapshot(func(s *Snapshot) {
				s.UptimeMs = e.UptimeMs
				s.LinkUp = e.LinkUp
				s.RxFrames += uint64(e.RxFrames)
				s.CompleteFrames += uint64(e.CompleteFrames)
				s.AppliedFrames += uint64(e.AppliedFrames)
				s.DroppedFrames += uint64(e.DroppedFrames)
				s.Heartbeats++
			})
		}),
		events.Subscribe(bus, func(e events.FrameAppliedEvent) {
			framesDisplayed.Inc()
			updateSnapshot(func(s *Snapshot) { s.LastFrameID = e.FrameID })
		}),
		events.Subscribe(bus, func(_ events.SessionChangedEvent) {
			sessionChanges.Inc()
			updateSnapshot(func(s *Snapshot) { s.SessionChanges++ })
		}),
		events.Subscribe(bus, func(e events.LinkStateChangedEvent) {
			if e.Up {
				linkUp.Set(1)
			} else {
				linkUp.Set(0)
			}
			updateSnapshot(func(s *Snapshot) { s.LinkUp = e.Up })
		}),
		events.Subscribe(bus, func(_ events.WakeupCompletedEvent) {
			wakeupComplete.Set(1)
			updateSnapshot(func(s *Snapshot) { s.WakeupComplete = true })
		}),
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}

// GetSnapshot returns a copy of the accumulated totals.
func GetSnapshot() Snapshot {
	snapshotMu.RLock()
	defer snapshotMu.RUnlock()
	return snapshot
}

func updateSnapshot(update func(*Snapshot)) {
	snapshotMu.Lock()
	defer snapshotMu.Unlock()
	update(&snapshot)
}
