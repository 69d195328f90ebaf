// Package driver translates assembled RGB frames into per-strip pixel
// writes against the LED peripheral. It also owns the post-boot blackout
// that hides power-on garbage while the Ethernet link settles.
package driver

import (
	"fmt"
	"log/slog"

	"github.com/strandcast/lednode/internal/config"
	"github.com/strandcast/lednode/internal/hal"
)

// BlackoutMs is how long after boot the driver refuses frames.
const BlackoutMs = 1000

// Driver writes frames to the LED peripheral. Between frames every pixel
// is rewritten, so a lost frame can never leave stale pixels behind the
// next delivered one.
type Driver struct {
	layout *config.Layout
	clock  hal.Clock
	leds   hal.LEDOutput
	logger *slog.Logger

	bootMs uint32
}

// New creates a driver over the given LED peripheral.
func New(layout *config.Layout, clock hal.Clock, leds hal.LEDOutput, logger *slog.Logger) *Driver {
	return &Driver{
		layout: layout,
		clock:  clock,
		leds:   leds,
		logger: logger,
	}
}

// Init brings up the LED peripheral, pushes an all-black frame and starts
// the blackout timer.
func (d *Driver) Init() error {
	if err := d.leds.Init(d.layout.MaxLEDs); err != nil {
		return fmt.Errorf("init led output: %w", err)
	}
	d.ShowBlack()
	d.bootMs = d.clock.NowMs()
	return nil
}

// ShowFrame writes one assembled frame. Pixels beyond each run's length
// and strips beyond the wired runs are forced black. The caller must
// check Busy first; a kick during an active DMA transfer would corrupt
// the in-flight buffer.
func (d *Driver) ShowFrame(rgb []byte) {
	for run := 0; run < d.layout.RunCount(); run++ {
		offset := d.layout.RunOffset(run)
		count := d.layout.LEDCount(run)
		for i := 0; i < count; i++ {
			p := offset + i*3
			d.leds.SetPixel(run, i, rgb[p], rgb[p+1], rgb[p+2])
		}
		for i := count; i < d.layout.MaxLEDs; i++ {
			d.leds.SetPixel(run, i, 0, 0, 0)
		}
	}
	d.blackenUnusedStrips()
	d.leds.Show()
}

// ShowBlack writes black to every strip and index and kicks a transfer.
func (d *Driver) ShowBlack() {
	for run := 0; run < d.layout.RunCount(); run++ {
		for i := 0; i < d.layout.MaxLEDs; i++ {
			d.leds.SetPixel(run, i, 0, 0, 0)
		}
	}
	d.blackenUnusedStrips()
	d.leds.Show()
}

func (d *Driver) blackenUnusedStrips() {
	for strip := d.layout.RunCount(); strip < config.MaxRuns; strip++ {
		for i := 0; i < d.layout.MaxLEDs; i++ {
			d.leds.SetPixel(strip, i, 0, 0, 0)
		}
	}
}

// Busy reports whether a DMA transfer is still in flight.
func (d *Driver) Busy() bool {
	return d.leds.Busy()
}

// ReadyForFrames reports whether the post-boot blackout has elapsed.
func (d *Driver) ReadyForFrames() bool {
	return d.clock.NowMs()-d.bootMs >= BlackoutMs
}
