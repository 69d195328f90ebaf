package wakeup

import (
	"testing"

	"github.com/strandcast/lednode/internal/config"
	"github.com/strandcast/lednode/internal/hal/halmock"
)

func testLayout() *config.Layout {
	return &config.Layout{Side: "east", Runs: []int{4, 3}, MaxLEDs: 4}
}

func newTestEffect(t *testing.T) (*Effect, *halmock.Mock) {
	t.Helper()
	mock := halmock.New()
	h := mock.HAL()
	if err := h.LEDs.Init(4); err != nil {
		t.Fatalf("leds init: %v", err)
	}
	return New(testLayout(), h.Clock, h.LEDs, nil), mock
}

func warm() halmock.Pixel {
	return halmock.Pixel{R: WarmR, G: WarmG, B: WarmB}
}

func runIsWarm(mock *halmock.Mock, run, count int) bool {
	for i := 0; i < count; i++ {
		if mock.LED(run, i) != warm() {
			return false
		}
	}
	return true
}

func runIsBlack(mock *halmock.Mock, run, count int) bool {
	for i := 0; i < count; i++ {
		if mock.LED(run, i) != (halmock.Pixel{}) {
			return false
		}
	}
	return true
}

func TestSweepWalksRunsInOrder(t *testing.T) {
	e, mock := newTestEffect(t)

	// First poll lights run 0.
	e.Poll()
	if !runIsWarm(mock, 0, 4) {
		t.Fatal("run 0 not lit after the first poll")
	}
	if !runIsBlack(mock, 1, 3) {
		t.Fatal("run 1 lit while run 0 is being shown")
	}
	if e.IsComplete() {
		t.Fatal("complete before the walk started")
	}

	// Nothing changes until 200 ms have elapsed.
	mock.AdvanceTime(LightMs - 1)
	e.Poll()
	if !runIsWarm(mock, 0, 4) {
		t.Fatal("run 0 extinguished before its 200 ms elapsed")
	}

	// 200 ms: run 0 goes dark, gap begins.
	mock.AdvanceTime(1)
	e.Poll()
	if !runIsBlack(mock, 0, 4) {
		t.Fatal("run 0 still lit after its 200 ms")
	}
	if !runIsBlack(mock, 1, 3) {
		t.Fatal("run 1 lit during the inter-run gap")
	}

	// 50 ms gap: run 1 lights.
	mock.AdvanceTime(GapMs)
	e.Poll()
	if !runIsWarm(mock, 1, 3) {
		t.Fatal("run 1 not lit after the gap")
	}

	// Final run extinguishes and the sweep completes.
	mock.AdvanceTime(LightMs)
	e.Poll()
	if !runIsBlack(mock, 1, 3) {
		t.Fatal("run 1 still lit after the sweep")
	}
	if !e.IsComplete() {
		t.Fatal("sweep not complete after the last run went dark")
	}
}

func TestSweepDurationTwoRuns(t *testing.T) {
	e, mock := newTestEffect(t)

	// Two runs: 200 + 50 + 200 = 450 ms end to end.
	for mock.NowMs() < 449 {
		e.Poll()
		mock.AdvanceTime(1)
	}
	e.Poll()
	if e.IsComplete() {
		t.Fatal("complete before 450 ms")
	}
	mock.AdvanceTime(1)
	e.Poll()
	if !e.IsComplete() {
		t.Fatal("not complete at 450 ms")
	}
}

func TestBusyBlocksTransitions(t *testing.T) {
	e, mock := newTestEffect(t)

	e.Poll()
	mock.AdvanceTime(LightMs)
	mock.SetBusy(true)

	e.Poll()
	if !runIsWarm(mock, 0, 4) {
		t.Fatal("transition happened while the peripheral was busy")
	}

	mock.SetBusy(false)
	e.Poll()
	if !runIsBlack(mock, 0, 4) {
		t.Fatal("transition did not resume once the peripheral went idle")
	}
}

func TestPollAfterCompleteIsInert(t *testing.T) {
	e, mock := newTestEffect(t)

	for i := 0; i < 500; i++ {
		e.Poll()
		mock.AdvanceTime(1)
	}
	if !e.IsComplete() {
		t.Fatal("sweep did not complete")
	}

	shows := mock.ShowCount()
	for i := 0; i < 100; i++ {
		e.Poll()
		mock.AdvanceTime(1)
	}
	if mock.ShowCount() != shows {
		t.Errorf("ShowCount changed after completion: %d -> %d", shows, mock.ShowCount())
	}
}

func TestFirstPollBlacksAllStrips(t *testing.T) {
	e, mock := newTestEffect(t)

	// Dirty every strip first.
	h := mock.HAL()
	for strip := 0; strip < 8; strip++ {
		for i := 0; i < 4; i++ {
			h.LEDs.SetPixel(strip, i, 9, 9, 9)
		}
	}
	e.Poll()

	for strip := 1; strip < 8; strip++ {
		for i := 0; i < 4; i++ {
			if px := mock.LED(strip, i); px != (halmock.Pixel{}) {
				t.Errorf("strip %d index %d = %+v, want black", strip, i, px)
			}
		}
	}
}
