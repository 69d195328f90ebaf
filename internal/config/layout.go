package config

import (
	"fmt"
	"net"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/strandcast/lednode/internal/protocol"
)

// MaxRuns is the number of strip outputs the LED peripheral exposes.
// Layouts may use fewer, never more.
const MaxRuns = 8

// Layout is the immutable device description: which side of the wall this
// node drives, how many runs are wired and how long each one is, plus the
// addressing the sender uses to reach us. It is loaded once at boot;
// runtime reconfiguration is deliberately unsupported.
type Layout struct {
	Side    string        `yaml:"side"`
	Runs    []int         `yaml:"runs"`
	MaxLEDs int           `yaml:"max_leds"`
	Network LayoutNetwork `yaml:"network"`
}

// LayoutNetwork holds the static addressing for the private LAN segment.
type LayoutNetwork struct {
	IP         string `yaml:"ip"`
	Netmask    string `yaml:"netmask"`
	Gateway    string `yaml:"gateway"`
	Sender     string `yaml:"sender"`
	PortBase   int    `yaml:"port_base"`
	StatusPort int    `yaml:"status_port"`
}

// LoadLayout reads and validates a layout file.
func LoadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout file: %w", err)
	}
	var layout Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("parse layout file: %w", err)
	}
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("validate layout file %s: %w", path, err)
	}
	return &layout, nil
}

// Validate checks layout correctness. It does not mutate the layout.
func (l *Layout) Validate() error {
	if l.Side == "" {
		return fmt.Errorf("side must be set")
	}
	for _, r := range l.Side {
		if r < 0x21 || r > 0x7e {
			return fmt.Errorf("side %q must be printable ASCII without spaces", l.Side)
		}
	}
	if len(l.Runs) < 1 || len(l.Runs) > MaxRuns {
		return fmt.Errorf("run count %d out of range [1,%d]", len(l.Runs), MaxRuns)
	}
	if l.MaxLEDs <= 0 {
		return fmt.Errorf("max_leds must be positive, got %d", l.MaxLEDs)
	}
	for i, count := range l.Runs {
		if count <= 0 {
			return fmt.Errorf("run %d: led count must be positive, got %d", i, count)
		}
		if count > l.MaxLEDs {
			return fmt.Errorf("run %d: led count %d exceeds max_leds %d", i, count, l.MaxLEDs)
		}
	}
	for _, addr := range []struct {
		name  string
		value string
	}{
		{"network.ip", l.Network.IP},
		{"network.netmask", l.Network.Netmask},
		{"network.gateway", l.Network.Gateway},
		{"network.sender", l.Network.Sender},
	} {
		if net.ParseIP(addr.value) == nil {
			return fmt.Errorf("%s: invalid address %q", addr.name, addr.value)
		}
	}
	if l.Network.PortBase < 1 || l.Network.PortBase+len(l.Runs) > 65536 {
		return fmt.Errorf("port_base %d leaves no room for %d run ports", l.Network.PortBase, len(l.Runs))
	}
	if l.Network.StatusPort < 1 || l.Network.StatusPort > 65535 {
		return fmt.Errorf("status_port %d out of range", l.Network.StatusPort)
	}
	return nil
}

// RunCount returns the number of wired runs.
func (l *Layout) RunCount() int { return len(l.Runs) }

// LEDCount returns the LED count of run i.
func (l *Layout) LEDCount(run int) int { return l.Runs[run] }

// ExpectedMask returns the bitset a frame slot must reach to be complete:
// bit i set for every wired run i.
func (l *Layout) ExpectedMask() uint8 {
	return uint8(1<<len(l.Runs)) - 1
}

// FrameSize returns the assembled frame payload size in bytes:
// three bytes per LED summed over all runs.
func (l *Layout) FrameSize() int {
	total := 0
	for _, count := range l.Runs {
		total += count * 3
	}
	return total
}

// RunOffset returns the byte offset of run's pixel data inside an
// assembled frame buffer.
func (l *Layout) RunOffset(run int) int {
	offset := 0
	for i := 0; i < run; i++ {
		offset += l.Runs[i] * 3
	}
	return offset
}

// PacketSize returns the exact datagram length expected on run's port.
func (l *Layout) PacketSize(run int) int {
	return protocol.HeaderSize + l.Runs[run]*3
}

// RunPort returns the UDP port run's datagrams arrive on.
func (l *Layout) RunPort(run int) int {
	return l.Network.PortBase + run
}
