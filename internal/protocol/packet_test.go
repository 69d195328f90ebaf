package protocol

import (
	"bytes"
	"testing"
)

func TestDecodeRejectsShortPacket(t *testing.T) {
	for _, size := range []int{0, 1, 5} {
		if _, err := Decode(make([]byte, size)); err == nil {
			t.Errorf("Decode accepted %d-byte packet", size)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rgb := []byte{0xFF, 0x00, 0x00, 0xFF, 0x00, 0x00}
	data := Encode(0x0102, 0xDEADBEEF, rgb)

	if len(data) != HeaderSize+len(rgb) {
		t.Fatalf("encoded length = %d, want %d", len(data), HeaderSize+len(rgb))
	}

	pkt, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if pkt.SessionID != 0x0102 {
		t.Errorf("SessionID = %#x, want 0x0102", pkt.SessionID)
	}
	if pkt.FrameID != 0xDEADBEEF {
		t.Errorf("FrameID = %#x, want 0xDEADBEEF", pkt.FrameID)
	}
	if !bytes.Equal(pkt.RGB, rgb) {
		t.Errorf("RGB = %v, want %v", pkt.RGB, rgb)
	}
}

func TestHeaderIsBigEndian(t *testing.T) {
	data := Encode(0x0102, 0x03040506, nil)
	want := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06}
	if !bytes.Equal(data, want) {
		t.Errorf("header = %v, want %v", data, want)
	}
}

func TestNewer(t *testing.T) {
	tests := []struct {
		a, b uint32
		want bool
	}{
		{2, 1, true},
		{1, 2, false},
		{1, 1, false},
		{0x00000001, 0xFFFFFFFF, true},
		{0xFFFFFFFF, 0x00000001, false},
		{0x80000001, 1, false},
		{1, 0, true},
	}
	for _, tt := range tests {
		if got := Newer(tt.a, tt.b); got != tt.want {
			t.Errorf("Newer(%#x, %#x) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
