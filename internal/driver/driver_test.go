package driver

import (
	"testing"

	"github.com/strandcast/lednode/internal/config"
	"github.com/strandcast/lednode/internal/hal/halmock"
)

func testLayout() *config.Layout {
	return &config.Layout{Side: "east", Runs: []int{4, 3}, MaxLEDs: 4}
}

func newTestDriver(t *testing.T) (*Driver, *halmock.Mock) {
	t.Helper()
	mock := halmock.New()
	h := mock.HAL()
	d := New(testLayout(), h.Clock, h.LEDs, nil)
	if err := d.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return d, mock
}

func TestInitPushesBlackFrame(t *testing.T) {
	_, mock := newTestDriver(t)

	if mock.ShowCount() != 1 {
		t.Fatalf("ShowCount = %d, want 1", mock.ShowCount())
	}
	for strip := 0; strip < 8; strip++ {
		for i := 0; i < 4; i++ {
			if px := mock.LED(strip, i); px != (halmock.Pixel{}) {
				t.Errorf("strip %d index %d = %+v, want black", strip, i, px)
			}
		}
	}
}

func TestBlackoutTiming(t *testing.T) {
	d, mock := newTestDriver(t)

	if d.ReadyForFrames() {
		t.Error("ready immediately after init")
	}
	mock.AdvanceTime(BlackoutMs - 1)
	if d.ReadyForFrames() {
		t.Error("ready 1 ms before the blackout elapses")
	}
	mock.AdvanceTime(1)
	if !d.ReadyForFrames() {
		t.Error("not ready once the blackout has elapsed")
	}
}

func TestBlackoutMeasuredFromInit(t *testing.T) {
	mock := halmock.New()
	h := mock.HAL()
	d := New(testLayout(), h.Clock, h.LEDs, nil)

	mock.SetTime(5000)
	if err := d.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	mock.AdvanceTime(BlackoutMs - 1)
	if d.ReadyForFrames() {
		t.Error("blackout measured from zero instead of init time")
	}
	mock.AdvanceTime(1)
	if !d.ReadyForFrames() {
		t.Error("not ready BlackoutMs after a late init")
	}
}

func TestShowFramePixelMapping(t *testing.T) {
	d, mock := newTestDriver(t)

	// 4 LEDs on run 0, 3 on run 1, each pixel byte unique.
	rgb := make([]byte, 21)
	for i := range rgb {
		rgb[i] = byte(i + 1)
	}
	d.ShowFrame(rgb)

	for i := 0; i < 4; i++ {
		want := halmock.Pixel{R: rgb[i*3], G: rgb[i*3+1], B: rgb[i*3+2]}
		if got := mock.LED(0, i); got != want {
			t.Errorf("run 0 index %d = %+v, want %+v", i, got, want)
		}
	}
	for i := 0; i < 3; i++ {
		p := 12 + i*3
		want := halmock.Pixel{R: rgb[p], G: rgb[p+1], B: rgb[p+2]}
		if got := mock.LED(1, i); got != want {
			t.Errorf("run 1 index %d = %+v, want %+v", i, got, want)
		}
	}
}

func TestShowFramePadsShortRunAndUnusedStrips(t *testing.T) {
	d, mock := newTestDriver(t)

	rgb := make([]byte, 21)
	for i := range rgb {
		rgb[i] = 0xFF
	}
	d.ShowFrame(rgb)

	// Run 1 has 3 of 4 possible LEDs; the tail pixel must be black.
	if px := mock.LED(1, 3); px != (halmock.Pixel{}) {
		t.Errorf("run 1 tail pixel = %+v, want black", px)
	}
	for strip := 2; strip < 8; strip++ {
		for i := 0; i < 4; i++ {
			if px := mock.LED(strip, i); px != (halmock.Pixel{}) {
				t.Errorf("unused strip %d index %d = %+v, want black", strip, i, px)
			}
		}
	}
}

func TestShowBlackOverwritesFrame(t *testing.T) {
	d, mock := newTestDriver(t)

	rgb := make([]byte, 21)
	for i := range rgb {
		rgb[i] = 0xAA
	}
	d.ShowFrame(rgb)
	d.ShowBlack()

	for strip := 0; strip < 8; strip++ {
		for i := 0; i < 4; i++ {
			if px := mock.LED(strip, i); px != (halmock.Pixel{}) {
				t.Errorf("strip %d index %d = %+v, want black", strip, i, px)
			}
		}
	}
	if mock.ShowCount() != 3 {
		t.Errorf("ShowCount = %d, want 3", mock.ShowCount())
	}
}

func TestBusyMirrorsPeripheral(t *testing.T) {
	d, mock := newTestDriver(t)

	if d.Busy() {
		t.Error("busy while peripheral idle")
	}
	mock.SetBusy(true)
	if !d.Busy() {
		t.Error("not busy while a transfer is in flight")
	}
}
