//go:build linux && cgo

package haldev

import (
	"fmt"
	"sync/atomic"

	ws2811 "github.com/rpi-ws281x/rpi-ws281x-go"

	"github.com/strandcast/lednode/internal/hal"
)

// ws281xOutput drives WS2811/WS2812 runs through the rpi-ws281x DMA
// engine. The engine exposes two PWM channels; layouts needing more runs
// than that are rejected by NewLEDOutput rather than silently dropping
// strips.
type ws281xOutput struct {
	pins       []int
	brightness int

	dev     *ws2811.WS2811
	strips  int
	maxLEDs int
	busy    atomic.Bool
}

// WS281xOption adjusts the DMA engine configuration.
type WS281xOption func(*ws281xOutput)

// WithStripPins overrides the GPIO pin per strip output.
func WithStripPins(pins []int) WS281xOption {
	return func(o *ws281xOutput) { o.pins = pins }
}

// WithBrightness sets the global brightness [0,255].
func WithBrightness(brightness int) WS281xOption {
	return func(o *ws281xOutput) { o.brightness = brightness }
}

// NewLEDOutput creates the DMA LED peripheral for stripCount strips.
func NewLEDOutput(stripCount int, opts ...WS281xOption) (hal.LEDOutput, error) {
	out := &ws281xOutput{
		pins:       []int{18, 13},
		brightness: 255,
		strips:     stripCount,
	}
	for _, opt := range opts {
		opt(out)
	}
	if stripCount > len(out.pins) {
		return nil, fmt.Errorf("layout needs %d strips but the ws281x engine drives at most %d channels", stripCount, len(out.pins))
	}
	return out, nil
}

func (o *ws281xOutput) Init(maxLEDsPerStrip int) error {
	opt := ws2811.DefaultOptions
	for i := 0; i < o.strips; i++ {
		opt.Channels[i].GpioPin = o.pins[i]
		opt.Channels[i].LedCount = maxLEDsPerStrip
		opt.Channels[i].Brightness = o.brightness
	}

	dev, err := ws2811.MakeWS2811(&opt)
	if err != nil {
		return fmt.Errorf("create ws281x engine: %w", err)
	}
	if err := dev.Init(); err != nil {
		return fmt.Errorf("init ws281x engine: %w", err)
	}

	o.dev = dev
	o.maxLEDs = maxLEDsPerStrip
	return nil
}

func (o *ws281xOutput) SetPixel(strip, index int, r, g, b uint8) {
	if strip < 0 || strip >= o.strips || index < 0 || index >= o.maxLEDs {
		return
	}
	o.dev.Leds(strip)[index] = uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

func (o *ws281xOutput) Show() {
	if !o.busy.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer o.busy.Store(false)
		if err := o.dev.Render(); err != nil {
			return
		}
		_ = o.dev.Wait()
	}()
}

func (o *ws281xOutput) Busy() bool {
	return o.busy.Load()
}

// Close releases the DMA engine.
func (o *ws281xOutput) Close() {
	if o.dev != nil {
		o.dev.Fini()
	}
}
