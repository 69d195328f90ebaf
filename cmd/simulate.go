package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strandcast/lednode/internal/config"
	"github.com/strandcast/lednode/internal/events"
	"github.com/strandcast/lednode/internal/hal/halmock"
	"github.com/strandcast/lednode/internal/logging"
	"github.com/strandcast/lednode/internal/node"
	"github.com/strandcast/lednode/internal/protocol"
)

// CreateSimulateCmd builds the simulate command: the full node running
// against the mock HAL with a synthetic sender, for development machines
// without the LED peripheral.
func CreateSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the node against a simulated HAL and sender",
		Long:  `Boots the node on the mock hardware abstraction, feeds it a synthetic frame stream and logs every applied frame, then the number of heartbeats sent. Simulated time advances one millisecond per loop iteration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			layoutPath, _ := cmd.Flags().GetString("layout")
			configPath, _ := cmd.Flags().GetString("config")
			frames, _ := cmd.Flags().GetUint32("frames")
			intervalMs, _ := cmd.Flags().GetUint32("interval")
			session, _ := cmd.Flags().GetUint16("session")

			logging.Initialize(config.LoadLoggingConfig(configPath))

			layout, err := config.LoadLayout(layoutPath)
			if err != nil {
				return err
			}
			return runSimulation(layout, frames, intervalMs, session)
		},
	}
	cmd.Flags().StringP("layout", "l", "layout.yaml", "Path to the layout file")
	cmd.Flags().StringP("config", "c", "config.toml", "Path to the configuration file")
	cmd.Flags().Uint32("frames", 120, "Number of frames to send")
	cmd.Flags().Uint32("interval", 33, "Milliseconds between frames")
	cmd.Flags().Uint16("session", 1, "Sender session id")
	return cmd
}

func runSimulation(layout *config.Layout, frames, intervalMs uint32, session uint16) error {
	if intervalMs == 0 {
		intervalMs = 1
	}
	logger := logging.GetLogger("simulate")

	mock := halmock.New()
	bus := events.New()
	n := node.New(layout, mock.HAL(), bus, logging.GetLogger("node"))
	if err := n.Init(); err != nil {
		return fmt.Errorf("init node: %w", err)
	}

	var applied uint32
	unsub := events.Subscribe(bus, func(e events.FrameAppliedEvent) {
		applied++
		logger.Info("Frame applied", "frame_id", e.FrameID, "uptime_ms", e.UptimeMs)
	})
	defer unsub()

	wakeupDone := false
	unsubWake := events.Subscribe(bus, func(e events.WakeupCompletedEvent) {
		wakeupDone = true
		logger.Info("Wakeup finished", "uptime_ms", e.UptimeMs)
	})
	defer unsubWake()

	var sent uint32
	nextSendMs := uint32(0)
	// Enough simulated time for the sweep, the frame stream and two
	// trailing heartbeats.
	deadline := 2*driverWarmupMs + frames*intervalMs + 2500

	for mock.NowMs() < deadline {
		if wakeupDone && sent < frames && mock.NowMs() >= nextSendMs {
			sent++
			injectFrame(mock, layout, session, sent)
			nextSendMs = mock.NowMs() + intervalMs
		}
		n.Step()
		mock.AdvanceTime(1)
	}

	logger.Info("Simulation finished",
		"frames_sent", sent,
		"frames_applied", applied,
		"heartbeats", len(mock.SentHeartbeats()))
	if applied == 0 {
		return fmt.Errorf("no frames were applied")
	}
	return nil
}

// driverWarmupMs mirrors the post-boot blackout plus the nominal wakeup
// sweep for an eight-run wall.
const driverWarmupMs = 8*200 + 7*50 + 1000

// injectFrame queues one datagram per run, with a colour ramp derived
// from the frame id so successive frames are visibly distinct.
func injectFrame(mock *halmock.Mock, layout *config.Layout, session uint16, frameID uint32) {
	for run := 0; run < layout.RunCount(); run++ {
		rgb := make([]byte, layout.LEDCount(run)*3)
		for i := range rgb {
			rgb[i] = byte(frameID + uint32(run) + uint32(i))
		}
		mock.InjectPacket(run, protocol.Encode(session, frameID, rgb))
	}
}
