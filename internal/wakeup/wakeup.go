// Package wakeup implements the startup self-test: each wired run lights
// warm white in sequence so an installer can see at a glance that every
// strip is powered and addressed. It finishes before the node accepts any
// network traffic.
package wakeup

import (
	"log/slog"

	"github.com/strandcast/lednode/internal/config"
	"github.com/strandcast/lednode/internal/hal"
)

// Warm white sweep colour.
const (
	WarmR uint8 = 128
	WarmG uint8 = 100
	WarmB uint8 = 64
)

// Sweep timing.
const (
	LightMs uint32 = 200
	GapMs   uint32 = 50
)

type state int

const (
	stateIdle state = iota
	stateLightingRun
	stateGapAfterRun
	stateComplete
)

// Effect walks the wired runs once. All transitions are gated on the DMA
// engine being idle so a repaint never races an in-flight transfer.
type Effect struct {
	layout *config.Layout
	clock  hal.Clock
	leds   hal.LEDOutput
	logger *slog.Logger

	state     state
	run       int
	startedMs uint32
}

// New creates the effect in its entry state.
func New(layout *config.Layout, clock hal.Clock, leds hal.LEDOutput, logger *slog.Logger) *Effect {
	return &Effect{
		layout: layout,
		clock:  clock,
		leds:   leds,
		logger: logger,
	}
}

// Poll advances the state machine. Call it once per loop iteration until
// IsComplete reports true.
func (e *Effect) Poll() {
	if e.state == stateComplete || e.leds.Busy() {
		return
	}
	now := e.clock.NowMs()

	switch e.state {
	case stateIdle:
		e.paintAllBlack()
		e.paintRun(0, WarmR, WarmG, WarmB)
		e.leds.Show()
		e.run = 0
		e.startedMs = now
		e.state = stateLightingRun
		if e.logger != nil {
			e.logger.Debug("Wakeup sweep started", "runs", e.layout.RunCount())
		}

	case stateLightingRun:
		if now-e.startedMs < LightMs {
			return
		}
		e.paintRun(e.run, 0, 0, 0)
		e.leds.Show()
		e.run++
		if e.run >= e.layout.RunCount() {
			e.state = stateComplete
			if e.logger != nil {
				e.logger.Debug("Wakeup sweep complete", "uptime_ms", now)
			}
			return
		}
		e.startedMs = now
		e.state = stateGapAfterRun

	case stateGapAfterRun:
		if now-e.startedMs < GapMs {
			return
		}
		e.paintRun(e.run, WarmR, WarmG, WarmB)
		e.leds.Show()
		e.startedMs = now
		e.state = stateLightingRun
	}
}

// IsComplete reports whether the sweep has walked every run.
func (e *Effect) IsComplete() bool {
	return e.state == stateComplete
}

func (e *Effect) paintRun(run int, r, g, b uint8) {
	for i := 0; i < e.layout.LEDCount(run); i++ {
		e.leds.SetPixel(run, i, r, g, b)
	}
}

func (e *Effect) paintAllBlack() {
	for strip := 0; strip < config.MaxRuns; strip++ {
		for i := 0; i < e.layout.MaxLEDs; i++ {
			e.leds.SetPixel(strip, i, 0, 0, 0)
		}
	}
}
