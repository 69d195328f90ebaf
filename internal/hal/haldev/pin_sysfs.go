package haldev

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/strandcast/lednode/internal/hal"
)

const sysfsLEDPath = "/sys/class/leds"

// sysfsPin drives the onboard activity LED through the Linux sysfs LED
// class. The trigger is forced to "none" at init so brightness writes have
// full manual control.
type sysfsPin struct {
	name string
}

// NewStatusPin creates a status pin backed by /sys/class/leds/<name>.
func NewStatusPin(name string) hal.StatusPin {
	return &sysfsPin{name: name}
}

func (p *sysfsPin) Init() error {
	ledPath := filepath.Join(sysfsLEDPath, p.name)
	if _, err := os.Stat(ledPath); err != nil {
		return fmt.Errorf("status LED %q not found at %s: %w", p.name, ledPath, err)
	}
	if err := os.WriteFile(filepath.Join(ledPath, "trigger"), []byte("none"), 0644); err != nil {
		return fmt.Errorf("failed to take manual control of status LED: %w", err)
	}
	p.Set(false)
	return nil
}

func (p *sysfsPin) Set(on bool) {
	value := "0"
	if on {
		value = "1"
	}
	// Best effort: a failed write leaves the LED stale, never the node.
	_ = os.WriteFile(filepath.Join(sysfsLEDPath, p.name, "brightness"), []byte(value), 0644)
}
