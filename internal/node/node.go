// Package node wires the receiver, driver, wakeup effect, heartbeat
// reporter and activity LED into the single cooperative loop that runs
// the device. One goroutine owns all mutable state; the HAL surfaces
// hardware events purely through polling.
package node

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/strandcast/lednode/internal/activityled"
	"github.com/strandcast/lednode/internal/config"
	"github.com/strandcast/lednode/internal/driver"
	"github.com/strandcast/lednode/internal/events"
	"github.com/strandcast/lednode/internal/hal"
	"github.com/strandcast/lednode/internal/receiver"
	"github.com/strandcast/lednode/internal/status"
	"github.com/strandcast/lednode/internal/wakeup"
)

// Node is the assembled device. Create with New, bring up with Init,
// then either Run the loop or drive it manually with Step.
type Node struct {
	layout *config.Layout
	h      hal.HAL
	bus    *events.Bus
	logger *slog.Logger

	recv *receiver.Receiver
	drv  *driver.Driver
	wake *wakeup.Effect
	act  *activityled.ActivityLED
	rep  *status.Reporter

	// OnReady, when set, runs once after the wakeup sweep completes.
	// The daemon uses it to signal service readiness.
	OnReady func()

	wakeDone bool
}

// New builds a node from a layout and a HAL capability set.
func New(layout *config.Layout, h hal.HAL, bus *events.Bus, logger *slog.Logger) *Node {
	n := &Node{
		layout: layout,
		h:      h,
		bus:    bus,
		logger: logger,
	}
	n.recv = receiver.New(layout, h.Clock, logger)
	n.recv.OnSessionChange = func(oldID, newID uint16, uptimeMs uint32) {
		if n.bus != nil {
			events.Publish(n.bus, events.SessionChangedEvent{
				OldSessionID: oldID,
				NewSessionID: newID,
				UptimeMs:     uptimeMs,
			})
		}
	}
	n.drv = driver.New(layout, h.Clock, h.LEDs, logger)
	n.wake = wakeup.New(layout, h.Clock, h.LEDs, logger)
	n.act = activityled.New(h.Clock, h.Pin)
	n.rep = status.New(layout, h.Clock, h.Net, n.recv, bus, logger)
	return n
}

// Init brings up the HAL capabilities in boot order: network sockets,
// LED peripheral (starts black), status pin. Any failure aborts boot.
func (n *Node) Init() error {
	if err := n.h.Net.Init(); err != nil {
		return fmt.Errorf("init network: %w", err)
	}
	if err := n.drv.Init(); err != nil {
		return fmt.Errorf("init driver: %w", err)
	}
	if err := n.h.Pin.Init(); err != nil {
		return fmt.Errorf("init status pin: %w", err)
	}
	n.rep.Init()
	n.logger.Info("Node initialized",
		"side", n.layout.Side,
		"runs", n.layout.RunCount(),
		"leds", n.layout.Runs,
		"ip", n.h.Net.LocalIP(),
		"port_base", n.layout.Network.PortBase)
	return nil
}

// Step runs one loop iteration. Until the wakeup sweep finishes nothing
// else runs; afterwards the order is network, display, heartbeat,
// activity LED.
func (n *Node) Step() {
	if !n.wakeDone {
		n.wake.Poll()
		if n.wake.IsComplete() {
			n.wakeDone = true
			now := n.h.Clock.NowMs()
			n.logger.Info("Wakeup sweep finished, accepting frames", "uptime_ms", now)
			if n.bus != nil {
				events.Publish(n.bus, events.WakeupCompletedEvent{UptimeMs: now})
			}
			if n.OnReady != nil {
				n.OnReady()
			}
		}
		return
	}

	n.h.Net.Poll(n.recv.HandlePacket)

	if n.drv.ReadyForFrames() && !n.drv.Busy() {
		if frameID, rgb, ok := n.recv.TakeReadyFrame(); ok {
			n.drv.ShowFrame(rgb)
			n.act.FrameDisplayed()
			if n.bus != nil {
				events.Publish(n.bus, events.FrameAppliedEvent{
					FrameID:  frameID,
					UptimeMs: n.h.Clock.NowMs(),
				})
			}
		}
	}

	n.rep.Poll()
	n.act.Poll()
}

// Run drives the loop until the context is cancelled, then blacks out
// the strips and turns the status pin off.
func (n *Node) Run(ctx context.Context) error {
	n.logger.Info("Node loop running")
	for {
		select {
		case <-ctx.Done():
			n.shutdown()
			return nil
		default:
		}
		n.Step()
		// One millisecond of idle keeps timer granularity well inside
		// every deadline in the system without pegging a core.
		n.h.Clock.DelayMs(1)
	}
}

// Reporter exposes the heartbeat reporter.
func (n *Node) Reporter() *status.Reporter {
	return n.rep
}

func (n *Node) shutdown() {
	n.drv.ShowBlack()
	n.h.Pin.Set(false)
	n.logger.Info("Node stopped, strips blacked out")
}
