// Package haldev implements the hal capability set for the real device:
// monotonic clock, UDP sockets, the ws281x DMA engine and a sysfs status
// LED.
package haldev

import (
	"fmt"
	"log/slog"

	"github.com/strandcast/lednode/internal/config"
	"github.com/strandcast/lednode/internal/hal"
)

// Options tunes the device HAL.
type Options struct {
	// StatusLEDName is the sysfs LED class name for the activity LED.
	StatusLEDName string
	// StripPins optionally overrides the ws281x GPIO pins.
	StripPins []int
	// Brightness is the global LED brightness [0,255]; 0 means default.
	Brightness int
}

// New assembles the device HAL for the given layout. Nothing is
// initialized yet; the node calls Init on each capability during boot.
func New(layout *config.Layout, opts Options, logger *slog.Logger) (hal.HAL, error) {
	if opts.StatusLEDName == "" {
		opts.StatusLEDName = "ACT"
	}

	var ledOpts []WS281xOption
	if len(opts.StripPins) > 0 {
		ledOpts = append(ledOpts, WithStripPins(opts.StripPins))
	}
	if opts.Brightness > 0 {
		ledOpts = append(ledOpts, WithBrightness(opts.Brightness))
	}
	leds, err := NewLEDOutput(layout.RunCount(), ledOpts...)
	if err != nil {
		return hal.HAL{}, fmt.Errorf("led output: %w", err)
	}

	return hal.HAL{
		Clock: NewClock(),
		Net:   NewNetwork(layout, logger),
		LEDs:  leds,
		Pin:   NewStatusPin(opts.StatusLEDName),
	}, nil
}
