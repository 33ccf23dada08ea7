// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"

	"haptic/internal/haptic"
)

/*
Haptic Event Packet (BigEndian)

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Sequence Number   | uint32         | 4            | Monotonically increasing|
| Timestamp         | int64          | 8            | Event offset in ms      |
| Kind              | uint8          | 1            | 0 impact .. 3 rumble    |
| Intensity         | float32        | 4            | Scaled strength, [0,1]  |
| Duration          | uint32         | 4            | Actuator run time in ms |
+-----------------------------------------------------------------------------+

Visual Layout:

|<-- 4 Bytes -->|<------ 8 Bytes ------>|<-1->|<-- 4 Bytes -->|<-- 4 Bytes -->|
+---------------+-----------------------+-----+---------------+---------------+
|   Sequence    |       Timestamp       |Kind |   Intensity   |   Duration    |
|   (uint32)    |        (int64)        |(u8) |   (float32)   |   (uint32)    |
+---------------+-----------------------+-----+---------------+---------------+
*/

// PacketSize is the fixed length of an event packet.
const PacketSize = 4 + 8 + 1 + 4 + 4

// Packet is the decoded form of an event packet.
type Packet struct {
	Sequence    uint32
	TimestampMs int64
	Kind        uint8
	Intensity   float32
	DurationMs  uint32
}

// KindCode returns the wire code of k, following haptic.Kinds order.
func KindCode(k haptic.Kind) (uint8, error) {
	for i, known := range haptic.Kinds {
		if k == known {
			return uint8(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown haptic kind %q", haptic.ErrInvalidInput, k)
}

// EventSender packs haptic events into fixed-size packets and sends them
// over UDP. It implements transport.Transport.
type EventSender struct {
	sender packetWriter

	mu          sync.Mutex
	sequenceNum uint32
	buf         *bytes.Buffer
}

type packetWriter interface {
	Send([]byte) error
	Close() error
}

// NewEventSender dials targetAddress and returns a sender for it.
func NewEventSender(targetAddress string) (*EventSender, error) {
	s, err := NewUDPSender(targetAddress)
	if err != nil {
		return nil, err
	}
	return newEventSender(s), nil
}

func newEventSender(w packetWriter) *EventSender {
	return &EventSender{sender: w, buf: bytes.NewBuffer(make([]byte, 0, PacketSize))}
}

// Send packs and sends a haptic.Event. Other values are rejected.
func (s *EventSender) Send(data any) error {
	ev, ok := data.(haptic.Event)
	if !ok {
		return fmt.Errorf("%w: UDP transport cannot send %T", haptic.ErrInvalidInput, data)
	}
	kind, err := KindCode(ev.Kind)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sequenceNum++
	pkt := Packet{
		Sequence:    s.sequenceNum,
		TimestampMs: ev.TimestampMs,
		Kind:        kind,
		Intensity:   float32(ev.Intensity),
		DurationMs:  uint32(ev.DurationMs),
	}

	s.buf.Reset()
	if err := binary.Write(s.buf, binary.BigEndian, pkt); err != nil {
		return fmt.Errorf("failed to pack event: %w", err)
	}
	if err := s.sender.Send(s.buf.Bytes()); err != nil {
		return err
	}
	log.Debugf("Sent packet %d (%s at %dms)", pkt.Sequence, ev.Kind, ev.TimestampMs)
	return nil
}

// Close closes the underlying UDP connection.
func (s *EventSender) Close() error {
	return s.sender.Close()
}

// Decode parses an event packet.
func Decode(b []byte) (Packet, error) {
	var pkt Packet
	if len(b) != PacketSize {
		return pkt, fmt.Errorf("%w: packet is %d bytes, want %d", haptic.ErrInvalidInput, len(b), PacketSize)
	}
	if err := binary.Read(bytes.NewReader(b), binary.BigEndian, &pkt); err != nil {
		return pkt, err
	}
	return pkt, nil
}

// Event converts the packet back to a haptic event.
func (p Packet) Event() (haptic.Event, error) {
	if int(p.Kind) >= len(haptic.Kinds) {
		return haptic.Event{}, fmt.Errorf("%w: unknown kind code %d", haptic.ErrInvalidInput, p.Kind)
	}
	return haptic.Event{
		TimestampMs: p.TimestampMs,
		Intensity:   float64(p.Intensity),
		DurationMs:  int64(p.DurationMs),
		Kind:        haptic.Kinds[p.Kind],
	}, nil
}
