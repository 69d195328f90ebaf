// Package status emits the 1 Hz heartbeat datagram back to the frame
// sender. The payload is a single-line JSON document with a fixed key
// order; the sender's dashboard parses it positionally, so the document
// is built by hand rather than through encoding/json.
package status

import (
	"log/slog"
	"strconv"

	"github.com/strandcast/lednode/internal/config"
	"github.com/strandcast/lednode/internal/events"
	"github.com/strandcast/lednode/internal/hal"
	"github.com/strandcast/lednode/internal/receiver"
)

// IntervalMs is the nominal heartbeat period.
const IntervalMs uint32 = 1000

// Reporter drains receiver stats into heartbeat datagrams. Heartbeats are
// late-emitted: after a stall the timer advances to now rather than
// replaying the backlog.
type Reporter struct {
	layout *config.Layout
	clock  hal.Clock
	net    hal.Network
	recv   *receiver.Receiver
	bus    *events.Bus
	logger *slog.Logger

	startupMs       uint32
	lastHeartbeatMs uint32
	lastLink        bool
	linkKnown       bool
	buf             []byte
}

// New creates a reporter. The bus may be nil, in which case no events are
// published.
func New(layout *config.Layout, clock hal.Clock, net hal.Network, recv *receiver.Receiver, bus *events.Bus, logger *slog.Logger) *Reporter {
	return &Reporter{
		layout: layout,
		clock:  clock,
		net:    net,
		recv:   recv,
		bus:    bus,
		logger: logger,
		buf:    make([]byte, 0, 512),
	}
}

// Init records the uptime reference. Heartbeat uptimes count from this
// instant, not from clock zero, so a node whose clock was already
// running before boot completes still reports its own age.
func (r *Reporter) Init() {
	r.startupMs = r.clock.NowMs()
	r.lastHeartbeatMs = r.startupMs
}

// Poll emits a heartbeat when at least IntervalMs of monotonic time has
// passed since the previous one.
func (r *Reporter) Poll() {
	now := r.clock.NowMs()
	if now-r.lastHeartbeatMs < IntervalMs {
		return
	}
	uptime := now - r.startupMs

	link := r.net.LinkUp()
	if r.linkKnown && link != r.lastLink {
		if r.logger != nil {
			r.logger.Info("Link state changed", "up", link, "uptime_ms", uptime)
		}
		if r.bus != nil {
			events.Publish(r.bus, events.LinkStateChangedEvent{Up: link, UptimeMs: uptime})
		}
	}
	r.lastLink = link
	r.linkKnown = true

	stats := r.recv.DrainStats()
	errMsg, hasErr := r.recv.TakeError()

	r.buf = appendHeartbeat(r.buf[:0], r.layout, r.net.LocalIP(), uptime, link, stats, errMsg, hasErr)
	r.net.SendStatus(r.buf)
	r.lastHeartbeatMs = now

	if r.bus != nil {
		events.Publish(r.bus, events.HeartbeatSentEvent{
			UptimeMs:       uptime,
			LinkUp:         link,
			RxFrames:       stats.RxFrames,
			CompleteFrames: stats.CompleteFrames,
			AppliedFrames:  stats.AppliedFrames,
			DroppedFrames:  stats.DropsLen + stats.DropsStale,
		})
	}
}

// LastPayload returns the most recent heartbeat document, or nil before
// the first emission. The slice is reused on the next emission.
func (r *Reporter) LastPayload() []byte {
	if len(r.buf) == 0 {
		return nil
	}
	return r.buf
}

func appendHeartbeat(dst []byte, layout *config.Layout, ip string, uptime uint32, link bool, stats receiver.Stats, errMsg string, hasErr bool) []byte {
	dst = append(dst, `{"id":"`...)
	dst = append(dst, layout.Side...)
	dst = append(dst, `","ip":"`...)
	dst = append(dst, ip...)
	dst = append(dst, `","uptime_ms":`...)
	dst = strconv.AppendUint(dst, uint64(uptime), 10)
	dst = append(dst, `,"link":`...)
	dst = strconv.AppendBool(dst, link)
	dst = append(dst, `,"runs":`...)
	dst = strconv.AppendInt(dst, int64(layout.RunCount()), 10)
	dst = append(dst, `,"leds":[`...)
	for i, count := range layout.Runs {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = strconv.AppendInt(dst, int64(count), 10)
	}
	dst = append(dst, `],"rx_frames":`...)
	dst = strconv.AppendUint(dst, uint64(stats.RxFrames), 10)
	dst = append(dst, `,"complete":`...)
	dst = strconv.AppendUint(dst, uint64(stats.CompleteFrames), 10)
	dst = append(dst, `,"applied":`...)
	dst = strconv.AppendUint(dst, uint64(stats.AppliedFrames), 10)
	dst = append(dst, `,"dropped_frames":`...)
	dst = strconv.AppendUint(dst, uint64(stats.DropsLen+stats.DropsStale), 10)
	dst = append(dst, `,"errors":[`...)
	if hasErr {
		dst = append(dst, '"')
		dst = appendEscaped(dst, errMsg)
		dst = append(dst, '"')
	}
	return append(dst, "]}"...)
}

// appendEscaped backslash-escapes quotes and backslashes. The latched
// error text is plain ASCII, so no further escaping is needed.
func appendEscaped(dst []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\\' {
			dst = append(dst, '\\')
		}
		dst = append(dst, c)
	}
	return dst
}
