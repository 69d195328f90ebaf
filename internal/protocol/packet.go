// Package protocol implements the wire format spoken between the frame
// sender and a lednode device: one UDP datagram per run per frame, a
// 6-byte big-endian header followed by raw RGB pixel data.
package protocol

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed size of the datagram header in bytes.
const HeaderSize = 6

// Header field offsets within a datagram.
const (
	sessionIDOffset = 0
	frameIDOffset   = 2
)

// Packet is one decoded ingress datagram. RGB aliases the input buffer;
// callers that retain a Packet past the buffer's lifetime must copy it.
type Packet struct {
	SessionID uint16
	FrameID   uint32
	RGB       []byte
}

// Decode parses a datagram into a Packet. The RGB slice points into data.
// Length validation beyond the header is the receiver's job since the
// expected pixel count depends on which run the datagram arrived for.
func Decode(data []byte) (Packet, error) {
	if len(data) < HeaderSize {
		return Packet{}, fmt.Errorf("packet too short: %d bytes, need at least %d", len(data), HeaderSize)
	}
	return Packet{
		SessionID: binary.BigEndian.Uint16(data[sessionIDOffset:]),
		FrameID:   binary.BigEndian.Uint32(data[frameIDOffset:]),
		RGB:       data[HeaderSize:],
	}, nil
}

// Encode builds a datagram from session id, frame id and RGB payload.
func Encode(sessionID uint16, frameID uint32, rgb []byte) []byte {
	return AppendEncode(make([]byte, 0, HeaderSize+len(rgb)), sessionID, frameID, rgb)
}

// AppendEncode appends an encoded datagram to dst and returns the result.
func AppendEncode(dst []byte, sessionID uint16, frameID uint32, rgb []byte) []byte {
	dst = binary.BigEndian.AppendUint16(dst, sessionID)
	dst = binary.BigEndian.AppendUint32(dst, frameID)
	return append(dst, rgb...)
}

// Newer reports whether frame id a is newer than b under modular 32-bit
// comparison: the signed difference (a - b) must be positive. This stays
// correct across wraparound as long as the in-flight window is well under
// 2^31 frames.
func Newer(a, b uint32) bool {
	return int32(a-b) > 0
}
