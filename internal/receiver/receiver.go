// Package receiver assembles complete LED frames from per-run UDP
// datagrams. A frame is complete once every wired run has contributed its
// packet for the same frame id; partial frames live in a small fixed pool
// of assembly slots until they finish or get evicted by newer traffic.
package receiver

import (
	"fmt"
	"log/slog"

	"github.com/strandcast/lednode/internal/config"
	"github.com/strandcast/lednode/internal/hal"
	"github.com/strandcast/lednode/internal/protocol"
)

// SlotCount is the number of concurrent frame assemblies kept in flight.
// Two is enough to absorb packets of frame N+1 arriving while frame N is
// still missing a run, without letting a stalled frame pin the pool.
const SlotCount = 2

// Stats are the interval counters drained into each heartbeat.
type Stats struct {
	RxFrames       uint32
	CompleteFrames uint32
	AppliedFrames  uint32
	DropsLen       uint32
	DropsStale     uint32
}

// slot is one in-flight frame assembly. The pixel buffer is allocated once
// and reused; mask tracks which runs have landed.
type slot struct {
	inUse   bool
	frameID uint32
	mask    uint8
	data    []byte
}

// Receiver ingests datagrams and hands out completed frames. It is not
// safe for concurrent use; the node loop polls, ingests and takes frames
// from a single goroutine.
type Receiver struct {
	layout *config.Layout
	clock  hal.Clock
	logger *slog.Logger

	// OnSessionChange, when set, is invoked after a session change has
	// been latched. The node uses it to publish the bus event.
	OnSessionChange func(oldID, newID uint16, uptimeMs uint32)

	slots [SlotCount]slot

	sessionID   uint16
	haveSession bool
	lastApplied uint32

	readyValid bool
	readySlot  int
	readyID    uint32

	stats   Stats
	lastErr string
}

// New creates a receiver for the given layout. The clock timestamps the
// latched error message on session changes.
func New(layout *config.Layout, clock hal.Clock, logger *slog.Logger) *Receiver {
	r := &Receiver{
		layout: layout,
		clock:  clock,
		logger: logger,
	}
	for i := range r.slots {
		r.slots[i].data = make([]byte, layout.FrameSize())
	}
	return r
}

// Reset clears all assembly state, counters and the error latch. Session
// tracking starts over: the next packet's session id is adopted silently.
func (r *Receiver) Reset() {
	for i := range r.slots {
		r.slots[i].inUse = false
		r.slots[i].mask = 0
	}
	r.haveSession = false
	r.lastApplied = 0
	r.readyValid = false
	r.stats = Stats{}
	r.lastErr = ""
}

// HandlePacket ingests one datagram received on run's port. Every call
// counts as a received packet; malformed or stale datagrams are dropped
// with the matching counter bumped.
func (r *Receiver) HandlePacket(run int, data []byte) {
	r.stats.RxFrames++

	if run < 0 || run >= r.layout.RunCount() || len(data) != r.layout.PacketSize(run) {
		r.stats.DropsLen++
		return
	}
	pkt, err := protocol.Decode(data)
	if err != nil {
		r.stats.DropsLen++
		return
	}

	if !r.haveSession {
		r.sessionID = pkt.SessionID
		r.haveSession = true
	} else if pkt.SessionID != r.sessionID {
		r.sessionChange(pkt.SessionID)
	}

	// A frame id at or behind the last frame published for display is
	// stale. The gate is disarmed right after boot and after a session
	// change so the stream can restart from any id, including zero.
	if r.lastApplied != 0 && !protocol.Newer(pkt.FrameID, r.lastApplied) {
		r.stats.DropsStale++
		return
	}

	s := r.selectSlot(pkt.FrameID)
	s.inUse = true
	s.frameID = pkt.FrameID
	copy(s.data[r.layout.RunOffset(run):], pkt.RGB)
	s.mask |= 1 << uint(run)

	if s.mask == r.layout.ExpectedMask() {
		r.completeFrame(s)
	}
}

// sessionChange latches a diagnostic, drops all partial work and rearms
// the staleness gate so the new session's frame numbering starts fresh.
func (r *Receiver) sessionChange(newID uint16) {
	now := r.clock.NowMs()
	r.lastErr = fmt.Sprintf("%d: session change %d -> %d", now, r.sessionID, newID)
	if r.logger != nil {
		r.logger.Warn("Session changed",
			"old_session_id", r.sessionID,
			"new_session_id", newID,
			"uptime_ms", now)
	}
	for i := range r.slots {
		r.slots[i].inUse = false
		r.slots[i].mask = 0
	}
	r.readyValid = false
	r.lastApplied = 0
	oldID := r.sessionID
	r.sessionID = newID
	if r.OnSessionChange != nil {
		r.OnSessionChange(oldID, newID, now)
	}
}

// selectSlot picks the assembly slot for a frame id: an existing assembly
// of the same frame first, then a free slot, then the slot holding the
// oldest frame. A slot backing a published frame that has not been taken
// yet is never picked.
func (r *Receiver) selectSlot(frameID uint32) *slot {
	for i := range r.slots {
		if r.slots[i].inUse && r.slots[i].frameID == frameID {
			return &r.slots[i]
		}
	}
	pending := -1
	if r.readyValid {
		pending = r.readySlot
	}
	for i := range r.slots {
		if !r.slots[i].inUse && i != pending {
			r.slots[i].mask = 0
			return &r.slots[i]
		}
	}
	oldest := -1
	for i := range r.slots {
		if i == pending {
			continue
		}
		if oldest < 0 || protocol.Newer(r.slots[oldest].frameID, r.slots[i].frameID) {
			oldest = i
		}
	}
	r.slots[oldest].mask = 0
	return &r.slots[oldest]
}

// completeFrame publishes a finished assembly and frees its slot. The
// pixel buffer stays valid until the slot is reused, which selectSlot
// does not do while the frame is still waiting for the node to take it.
func (r *Receiver) completeFrame(s *slot) {
	r.stats.CompleteFrames++
	for i := range r.slots {
		if &r.slots[i] == s {
			if !r.readyValid || protocol.Newer(s.frameID, r.readyID) {
				r.readySlot = i
				r.readyID = s.frameID
				r.readyValid = true
			}
			break
		}
	}
	r.lastApplied = s.frameID
	s.inUse = false
	s.mask = 0
}

// TakeReadyFrame returns the newest completed frame since the last call,
// or ok=false when none finished. The returned buffer is owned by the
// receiver and only valid until the next HandlePacket call.
func (r *Receiver) TakeReadyFrame() (frameID uint32, rgb []byte, ok bool) {
	if !r.readyValid {
		return 0, nil, false
	}
	r.readyValid = false
	r.stats.AppliedFrames++
	return r.readyID, r.slots[r.readySlot].data, true
}

// DrainStats returns the counters accumulated since the previous drain
// and resets them. Called once per heartbeat interval.
func (r *Receiver) DrainStats() Stats {
	s := r.stats
	r.stats = Stats{}
	return s
}

// TakeError returns the latched diagnostic, if any, and clears the latch.
func (r *Receiver) TakeError() (string, bool) {
	if r.lastErr == "" {
		return "", false
	}
	msg := r.lastErr
	r.lastErr = ""
	return msg, true
}
