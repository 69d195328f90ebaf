package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validLayout() *Layout {
	return &Layout{
		Side:    "east",
		Runs:    []int{4, 3},
		MaxLEDs: 4,
		Network: LayoutNetwork{
			IP:         "10.10.0.2",
			Netmask:    "255.255.255.0",
			Gateway:    "10.10.0.1",
			Sender:     "10.10.0.1",
			PortBase:   5000,
			StatusPort: 5100,
		},
	}
}

func TestValidateAcceptsGoodLayout(t *testing.T) {
	if err := validLayout().Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Layout)
		wantErr string
	}{
		{"empty side", func(l *Layout) { l.Side = "" }, "side"},
		{"side with space", func(l *Layout) { l.Side = "east wall" }, "printable"},
		{"no runs", func(l *Layout) { l.Runs = nil }, "run count"},
		{"too many runs", func(l *Layout) { l.Runs = make([]int, MaxRuns+1) }, "run count"},
		{"zero max_leds", func(l *Layout) { l.MaxLEDs = 0 }, "max_leds"},
		{"zero-length run", func(l *Layout) { l.Runs = []int{4, 0} }, "led count"},
		{"run exceeds max_leds", func(l *Layout) { l.Runs = []int{5, 3} }, "exceeds max_leds"},
		{"bad ip", func(l *Layout) { l.Network.IP = "not-an-ip" }, "network.ip"},
		{"bad sender", func(l *Layout) { l.Network.Sender = "" }, "network.sender"},
		{"zero port_base", func(l *Layout) { l.Network.PortBase = 0 }, "port_base"},
		{"port_base overflow", func(l *Layout) { l.Network.PortBase = 65535 }, "port_base"},
		{"zero status_port", func(l *Layout) { l.Network.StatusPort = 0 }, "status_port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := validLayout()
			tt.mutate(l)
			err := l.Validate()
			if err == nil {
				t.Fatal("Validate accepted a bad layout")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestDerivedGeometry(t *testing.T) {
	l := validLayout()

	if got := l.RunCount(); got != 2 {
		t.Errorf("RunCount = %d, want 2", got)
	}
	if got := l.FrameSize(); got != 21 {
		t.Errorf("FrameSize = %d, want 21", got)
	}
	if got := l.ExpectedMask(); got != 0b11 {
		t.Errorf("ExpectedMask = %#b, want 0b11", got)
	}
	if got := l.RunOffset(0); got != 0 {
		t.Errorf("RunOffset(0) = %d, want 0", got)
	}
	if got := l.RunOffset(1); got != 12 {
		t.Errorf("RunOffset(1) = %d, want 12", got)
	}
	if got := l.PacketSize(0); got != 18 {
		t.Errorf("PacketSize(0) = %d, want 18", got)
	}
	if got := l.PacketSize(1); got != 15 {
		t.Errorf("PacketSize(1) = %d, want 15", got)
	}
	if got := l.RunPort(0); got != 5000 {
		t.Errorf("RunPort(0) = %d, want 5000", got)
	}
	if got := l.RunPort(1); got != 5001 {
		t.Errorf("RunPort(1) = %d, want 5001", got)
	}
}

func TestExpectedMaskFullWall(t *testing.T) {
	l := validLayout()
	l.Runs = []int{4, 4, 4, 4, 4, 4, 4, 4}
	if got := l.ExpectedMask(); got != 0xFF {
		t.Errorf("ExpectedMask for 8 runs = %#x, want 0xff", got)
	}
}

func TestLoadLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.yaml")
	content := `side: east
runs: [4, 3]
max_leds: 4
network:
  ip: 10.10.0.2
  netmask: 255.255.255.0
  gateway: 10.10.0.1
  sender: 10.10.0.1
  port_base: 5000
  status_port: 5100
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	l, err := LoadLayout(path)
	if err != nil {
		t.Fatalf("LoadLayout: %v", err)
	}
	if l.Side != "east" || l.RunCount() != 2 || l.MaxLEDs != 4 {
		t.Errorf("unexpected layout: %+v", l)
	}
	if l.Network.PortBase != 5000 {
		t.Errorf("port_base = %d, want 5000", l.Network.PortBase)
	}
}

func TestLoadLayoutErrors(t *testing.T) {
	if _, err := LoadLayout(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadLayout accepted a missing file")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("side: [this is not\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadLayout(bad); err == nil {
		t.Error("LoadLayout accepted malformed YAML")
	}

	invalid := filepath.Join(t.TempDir(), "invalid.yaml")
	if err := os.WriteFile(invalid, []byte("side: east\nruns: []\nmax_leds: 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadLayout(invalid); err == nil {
		t.Error("LoadLayout accepted an invalid layout")
	}
}
