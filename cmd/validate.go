package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/strandcast/lednode/internal/config"
)

// CreateValidateConfigCmd builds the validate-config command. It loads the
// layout file, runs the same validation the daemon runs at boot, and
// prints the derived geometry.
func CreateValidateConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate-config",
		Short: "Validate the layout file and print derived geometry",
		Long:  `Loads and validates the device layout, then prints the per-run ports, packet sizes and frame geometry the daemon would derive from it.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			layoutPath, _ := cmd.Flags().GetString("layout")
			layout, err := config.LoadLayout(layoutPath)
			if err != nil {
				return err
			}

			total := 0
			for _, count := range layout.Runs {
				total += count
			}

			fmt.Printf("layout %s: OK\n", layoutPath)
			fmt.Printf("  side:          %s\n", layout.Side)
			fmt.Printf("  runs:          %d (%d LEDs total)\n", layout.RunCount(), total)
			fmt.Printf("  frame size:    %d bytes\n", layout.FrameSize())
			fmt.Printf("  expected mask: %#02x\n", layout.ExpectedMask())
			for run := range layout.Runs {
				fmt.Printf("  run %d: %3d LEDs, udp://%s:%d, packet %d bytes\n",
					run, layout.LEDCount(run), layout.Network.IP, layout.RunPort(run), layout.PacketSize(run))
			}
			fmt.Printf("  heartbeat to:  udp://%s:%d\n", layout.Network.Sender, layout.Network.StatusPort)
			return nil
		},
	}
	cmd.Flags().StringP("layout", "l", "layout.yaml", "Path to the layout file")
	return cmd
}
