package activityled

import (
	"testing"

	"github.com/strandcast/lednode/internal/hal/halmock"
)

func newTestLED(t *testing.T) (*ActivityLED, *halmock.Mock) {
	t.Helper()
	mock := halmock.New()
	h := mock.HAL()
	if err := h.Pin.Init(); err != nil {
		t.Fatalf("pin init: %v", err)
	}
	return New(h.Clock, h.Pin), mock
}

func TestSlowBlinkBeforeFirstFrame(t *testing.T) {
	a, mock := newTestLED(t)

	a.Poll()
	if mock.StatusPinState() {
		t.Error("pin on before the first half-period elapsed")
	}

	mock.SetTime(BlinkMs)
	a.Poll()
	if !mock.StatusPinState() {
		t.Error("pin did not turn on at the half-period")
	}

	mock.SetTime(2 * BlinkMs)
	a.Poll()
	if mock.StatusPinState() {
		t.Error("pin did not turn off at the full period")
	}
}

func TestFirstFrameEndsBlink(t *testing.T) {
	a, mock := newTestLED(t)

	mock.SetTime(BlinkMs)
	a.Poll()
	if !mock.StatusPinState() {
		t.Fatal("pin not on mid-blink")
	}

	a.FrameDisplayed()
	if mock.StatusPinState() {
		t.Error("pin still on after the first displayed frame")
	}

	// The blink never resumes.
	mock.SetTime(10 * BlinkMs)
	a.Poll()
	if mock.StatusPinState() {
		t.Error("blink resumed after the stream started")
	}
}

func TestPulseEverySixtiethFrame(t *testing.T) {
	a, mock := newTestLED(t)

	before := mock.NowMs()
	for i := uint32(1); i <= PulseEvery-1; i++ {
		a.FrameDisplayed()
	}
	if mock.NowMs() != before {
		t.Fatal("pulse emitted before the 60th frame")
	}

	a.FrameDisplayed()
	// Each pulse holds the pin high for PulseUs of simulated time.
	if mock.NowMs() != before+PulseUs/1000 {
		t.Errorf("no pulse on the 60th frame (time %d, want %d)", mock.NowMs(), before+PulseUs/1000)
	}
	if mock.StatusPinState() {
		t.Error("pin left on after the pulse")
	}
}

func TestPulsesStopAtLimit(t *testing.T) {
	a, mock := newTestLED(t)

	for i := uint32(1); i <= PulseLimit; i++ {
		a.FrameDisplayed()
	}
	wantPulses := PulseLimit / PulseEvery
	if mock.NowMs() != wantPulses*(PulseUs/1000) {
		t.Fatalf("pulses before the limit = %d ms, want %d ms", mock.NowMs(), wantPulses)
	}

	at := mock.NowMs()
	for i := uint32(0); i < 10*PulseEvery; i++ {
		a.FrameDisplayed()
	}
	if mock.NowMs() != at {
		t.Error("pulses continued past the limit")
	}
}
