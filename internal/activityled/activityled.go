// Package activityled drives the onboard status pin: a slow blink while
// waiting for the first frame, then a short pulse every 60th displayed
// frame until the stream is clearly established.
package activityled

import (
	"github.com/strandcast/lednode/internal/hal"
)

const (
	// BlinkMs is the pre-stream slow blink half-period.
	BlinkMs uint32 = 500
	// PulseEvery is the displayed-frame interval between pulses.
	PulseEvery uint32 = 60
	// PulseLimit is the displayed-frame count after which the pin stays
	// dark. Steady-state flicker next to the wall is just visual noise.
	PulseLimit uint32 = 600
	// PulseUs is the pulse width.
	PulseUs = 1000
)

// ActivityLED is the status pin state machine.
type ActivityLED struct {
	clock hal.Clock
	pin   hal.StatusPin

	seenFrame    bool
	pinOn        bool
	lastToggleMs uint32
	frames       uint32
}

// New creates the state machine in its pre-stream phase.
func New(clock hal.Clock, pin hal.StatusPin) *ActivityLED {
	return &ActivityLED{clock: clock, pin: pin}
}

// Poll advances the slow blink. Once the first frame has been displayed
// it does nothing; pulses ride on FrameDisplayed instead.
func (a *ActivityLED) Poll() {
	if a.seenFrame {
		return
	}
	now := a.clock.NowMs()
	if now-a.lastToggleMs >= BlinkMs {
		a.pinOn = !a.pinOn
		a.pin.Set(a.pinOn)
		a.lastToggleMs = now
	}
}

// FrameDisplayed is the notification edge for a frame reaching the LEDs.
// The first call ends the slow blink; afterwards every PulseEvery-th
// frame up to PulseLimit emits a bounded 1 ms pulse.
func (a *ActivityLED) FrameDisplayed() {
	if !a.seenFrame {
		a.seenFrame = true
		a.pinOn = false
		a.pin.Set(false)
	}
	a.frames++
	if a.frames <= PulseLimit && a.frames%PulseEvery == 0 {
		a.pin.Set(true)
		a.clock.DelayUs(PulseUs)
		a.pin.Set(false)
	}
}
