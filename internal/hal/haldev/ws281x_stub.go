//go:build !linux || !cgo

package haldev

import (
	"fmt"

	"github.com/strandcast/lednode/internal/hal"
)

// WS281xOption adjusts the DMA engine configuration.
type WS281xOption func(any)

// WithStripPins overrides the GPIO pin per strip output.
func WithStripPins(pins []int) WS281xOption {
	return func(any) {}
}

// WithBrightness sets the global brightness [0,255].
func WithBrightness(brightness int) WS281xOption {
	return func(any) {}
}

// NewLEDOutput fails on builds without the ws281x DMA engine. Use the
// simulate subcommand on development machines.
func NewLEDOutput(stripCount int, opts ...WS281xOption) (hal.LEDOutput, error) {
	return nil, fmt.Errorf("built without ws281x support (requires linux and cgo)")
}
