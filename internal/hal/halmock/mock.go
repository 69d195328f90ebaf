// Package halmock provides a fully simulated HAL: manual time, packet
// injection, LED state capture and heartbeat capture. It backs the unit
// tests and the simulate subcommand.
package halmock

import (
	"sync"

	"github.com/strandcast/lednode/internal/hal"
)

// Pixel is one captured RGB value.
type Pixel struct {
	R, G, B uint8
}

const numStrips = 8

// Mock holds all simulated hardware state. The hal capabilities are
// exposed as facets over this shared state via HAL().
type Mock struct {
	mu sync.Mutex

	nowMs uint32

	linkUp  bool
	localIP string
	queue   []injectedPacket
	sent    [][]byte

	maxLEDs   int
	staged    [][]Pixel
	displayed [][]Pixel
	showCount int
	busy      bool

	pinOn bool
}

type injectedPacket struct {
	run  int
	data []byte
}

// New creates a mock HAL with time at zero, link up and no packets queued.
func New() *Mock {
	return &Mock{linkUp: true, localIP: "10.10.0.2"}
}

// HAL assembles the mock into the capability set the node consumes.
func (m *Mock) HAL() hal.HAL {
	return hal.HAL{Clock: m, Net: netFacet{m}, LEDs: ledFacet{m}, Pin: pinFacet{m}}
}

// Reset zeroes all simulated state: time, packets, LED buffers, captured
// heartbeats and the status pin.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nowMs = 0
	m.linkUp = true
	m.queue = nil
	m.sent = nil
	m.staged = nil
	m.displayed = nil
	m.maxLEDs = 0
	m.showCount = 0
	m.busy = false
	m.pinOn = false
}

// ---- Clock ----

// NowMs returns the simulated time.
func (m *Mock) NowMs() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nowMs
}

// DelayMs advances simulated time by ms.
func (m *Mock) DelayMs(ms uint32) { m.AdvanceTime(ms) }

// DelayUs advances simulated time by us, rounding down to whole milliseconds.
func (m *Mock) DelayUs(us uint32) { m.AdvanceTime(us / 1000) }

// SetTime pins the simulated clock to ms.
func (m *Mock) SetTime(ms uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nowMs = ms
}

// AdvanceTime moves the simulated clock forward by ms.
func (m *Mock) AdvanceTime(ms uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nowMs += ms
}

// ---- Network ----

type netFacet struct{ m *Mock }

func (f netFacet) Init() error { return nil }

func (f netFacet) LinkUp() bool {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	return f.m.linkUp
}

func (f netFacet) LocalIP() string {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	return f.m.localIP
}

func (f netFacet) Poll(cb hal.PacketFunc) {
	f.m.mu.Lock()
	pending := f.m.queue
	f.m.queue = nil
	f.m.mu.Unlock()

	for _, p := range pending {
		cb(p.run, p.data)
	}
}

func (f netFacet) SendStatus(payload []byte) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	buf := make([]byte, len(payload))
	copy(buf, payload)
	f.m.sent = append(f.m.sent, buf)
}

// SetLinkUp changes the simulated link state.
func (m *Mock) SetLinkUp(up bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.linkUp = up
}

// InjectPacket queues a datagram for the next Poll. The data is copied.
func (m *Mock) InjectPacket(run int, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	m.queue = append(m.queue, injectedPacket{run: run, data: buf})
}

// SentHeartbeats returns every captured heartbeat in send order.
func (m *Mock) SentHeartbeats() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.sent))
	copy(out, m.sent)
	return out
}

// ---- LEDOutput ----

type ledFacet struct{ m *Mock }

func (f ledFacet) Init(maxLEDsPerStrip int) error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	f.m.maxLEDs = maxLEDsPerStrip
	f.m.staged = make([][]Pixel, numStrips)
	f.m.displayed = make([][]Pixel, numStrips)
	for i := range f.m.staged {
		f.m.staged[i] = make([]Pixel, maxLEDsPerStrip)
		f.m.displayed[i] = make([]Pixel, maxLEDsPerStrip)
	}
	return nil
}

func (f ledFacet) SetPixel(strip, index int, r, g, b uint8) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	if strip < 0 || strip >= numStrips || index < 0 || index >= f.m.maxLEDs {
		return
	}
	f.m.staged[strip][index] = Pixel{R: r, G: g, B: b}
}

func (f ledFacet) Show() {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	for i := range f.m.staged {
		copy(f.m.displayed[i], f.m.staged[i])
	}
	f.m.showCount++
}

func (f ledFacet) Busy() bool {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	return f.m.busy
}

// SetBusy simulates DMA in flight.
func (m *Mock) SetBusy(busy bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.busy = busy
}

// LED returns the displayed pixel at strip/index.
func (m *Mock) LED(strip, index int) Pixel {
	m.mu.Lock()
	defer m.mu.Unlock()
	if strip < 0 || strip >= len(m.displayed) || index < 0 || index >= m.maxLEDs {
		return Pixel{}
	}
	return m.displayed[strip][index]
}

// ShowCount returns how many DMA kicks have happened.
func (m *Mock) ShowCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.showCount
}

// ---- StatusPin ----

type pinFacet struct{ m *Mock }

func (f pinFacet) Init() error {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	f.m.pinOn = false
	return nil
}

func (f pinFacet) Set(on bool) {
	f.m.mu.Lock()
	defer f.m.mu.Unlock()
	f.m.pinOn = on
}

// StatusPinState returns the current pin level.
func (m *Mock) StatusPinState() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pinOn
}
