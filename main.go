package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/danielgtaylor/huma/v2/humacli"

	"github.com/strandcast/lednode/cmd"
	"github.com/strandcast/lednode/internal/api"
	"github.com/strandcast/lednode/internal/config"
	"github.com/strandcast/lednode/internal/events"
	"github.com/strandcast/lednode/internal/hal/haldev"
	"github.com/strandcast/lednode/internal/logging"
	"github.com/strandcast/lednode/internal/metrics"
	"github.com/strandcast/lednode/internal/node"
	"github.com/strandcast/lednode/internal/version"
)

// Options for the CLI - flat structure with toml mapping.
type Options struct {
	Config string `help:"Path to configuration file" short:"c" default:"config.toml"`
	Layout string `help:"Path to the device layout file" short:"l" default:"layout.yaml" toml:"node.layout" env:"NODE_LAYOUT"`

	// Debug settings
	DebugAddr string `help:"Debug API listen address (empty disables it)" default:"" toml:"debug.addr" env:"DEBUG_ADDR"`

	// Hardware settings
	StatusLED  string `help:"sysfs LED class name for the activity LED" default:"ACT" toml:"hardware.status_led" env:"HARDWARE_STATUS_LED"`
	Brightness int    `help:"Global LED brightness [0,255]" default:"255" toml:"hardware.brightness" env:"HARDWARE_BRIGHTNESS"`

	// Logging settings
	LoggingLevel    string `help:"Global logging level (debug, info, warn, error)" default:"info" toml:"logging.level" env:"LOGGING_LEVEL"`
	LoggingFormat   string `help:"Logging format (text, json)" default:"text" toml:"logging.format" env:"LOGGING_FORMAT"`
	LoggingReceiver string `help:"Receiver logging level" default:"info" toml:"logging.receiver" env:"LOGGING_RECEIVER"`
	LoggingHAL      string `help:"Hardware abstraction logging level" default:"info" toml:"logging.hal" env:"LOGGING_HAL"`
	LoggingNode     string `help:"Node loop logging level" default:"info" toml:"logging.node" env:"LOGGING_NODE"`
	LoggingAPI      string `help:"Debug API logging level" default:"info" toml:"logging.api" env:"LOGGING_API"`
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		if loadErr := config.LoadConfig(opts, nil); loadErr != nil {
			slog.Warn("Failed to load config", "error", loadErr)
		}

		logging.Initialize(logging.Config{
			Level:  opts.LoggingLevel,
			Format: opts.LoggingFormat,
			Modules: map[string]string{
				"receiver": opts.LoggingReceiver,
				"hal":      opts.LoggingHAL,
				"node":     opts.LoggingNode,
				"api":      opts.LoggingAPI,
			},
		})

		logger := logging.GetLogger("main")
		logger.Info("lednode starting", "version", version.String())

		layout, err := config.LoadLayout(opts.Layout)
		if err != nil {
			logger.Error("Failed to load layout", "error", err)
			os.Exit(1)
		}

		bus := events.New()
		unwire := metrics.Wire(bus)

		h, err := haldev.New(layout, haldev.Options{
			StatusLEDName: opts.StatusLED,
			Brightness:    opts.Brightness,
		}, logging.GetLogger("hal"))
		if err != nil {
			logger.Error("Failed to assemble hardware abstraction", "error", err)
			os.Exit(1)
		}

		n := node.New(layout, h, bus, logging.GetLogger("node"))
		n.OnReady = func() {
			if sent, notifyErr := daemon.SdNotify(false, daemon.SdNotifyReady); notifyErr != nil {
				logger.Debug("sd_notify failed", "error", notifyErr)
			} else if sent {
				logger.Debug("Signalled readiness to systemd")
			}
		}

		// The layout is immutable for the process lifetime; the watcher
		// only tells the operator a restart is needed.
		watcher := config.NewWatcher(opts.Layout, func(path string) {
			logger.Warn("Layout file changed on disk, restart required to apply", "path", path)
		}, logging.GetLogger("config"))

		var debugServer *api.Server
		if opts.DebugAddr != "" {
			debugServer = api.NewServer(&api.Options{Layout: layout, Bus: bus})
		}

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})

		hooks.OnStart(func() {
			if initErr := n.Init(); initErr != nil {
				logger.Error("Node init failed", "error", initErr)
				os.Exit(1)
			}

			if watchErr := watcher.Start(); watchErr != nil {
				logger.Warn("Layout watcher unavailable", "error", watchErr)
			}

			if debugServer != nil {
				go func() {
					if startErr := debugServer.Start(opts.DebugAddr); startErr != nil && !errors.Is(startErr, http.ErrServerClosed) {
						logger.Error("Debug API server failed", "error", startErr)
					}
				}()
			}

			if interval, wdErr := daemon.SdWatchdogEnabled(false); wdErr == nil && interval > 0 {
				logger.Debug("systemd watchdog armed", "interval", interval)
				go func() {
					ticker := time.NewTicker(interval / 2)
					defer ticker.Stop()
					for {
						select {
						case <-ctx.Done():
							return
						case <-ticker.C:
							_, _ = daemon.SdNotify(false, daemon.SdNotifyWatchdog)
						}
					}
				}()
			}

			_ = n.Run(ctx)
			close(done)
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down")
			cancel()
			<-done

			if debugServer != nil {
				if stopErr := debugServer.Stop(); stopErr != nil {
					logger.Error("Error stopping debug API server", "error", stopErr)
				}
			}
			if stopErr := watcher.Stop(); stopErr != nil {
				logger.Error("Error stopping layout watcher", "error", stopErr)
			}
			unwire()
		})
	})

	cli.Root().Use = "lednode"
	cli.Root().Version = version.String()
	cli.Root().AddCommand(cmd.CreateValidateConfigCmd())
	cli.Root().AddCommand(cmd.CreateSimulateCmd())

	cli.Run()
}
