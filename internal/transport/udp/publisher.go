// SPDX-License-Identifier: MIT
package udp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	"spectra/internal/curve"
	applog "spectra/internal/log"
)

/*
UDP Packet Structure (BigEndian)

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Sequence Number   | uint32         | 4            | Monotonically increasing|
| Timestamp         | int64          | 8            | Nanoseconds since epoch |
| Point Count       | uint16         | 2            | Number of points (N)    |
| Points            | []float32 x,y  | N * 8        | Path vertices in pixels |
+-----------------------------------------------------------------------------+
*/

// PathPublisher implements transport.Transport by packing render paths into
// binary UDP packets. Sends are rate limited to the configured interval;
// frames arriving faster are dropped, keeping only the freshest view on the
// wire.
type PathPublisher struct {
	sender   *UDPSender
	interval time.Duration

	mu          sync.Mutex // Serializes Send; protects the packing state below
	lastSend    time.Time
	sequenceNum uint32
	packet      *bytes.Buffer // Reusable buffer for constructing the binary packet
}

// NewPathPublisher creates a publisher sending to sender at most once per
// interval. An interval <= 0 defaults to 33ms (~30Hz).
func NewPathPublisher(interval time.Duration, sender *UDPSender) (*PathPublisher, error) {
	if sender == nil {
		return nil, fmt.Errorf("PathPublisher: UDP sender cannot be nil")
	}
	if interval <= 0 {
		interval = 33 * time.Millisecond
		applog.Warnf("PathPublisher: Invalid interval provided, defaulting to %s", interval)
	}

	applog.Infof("PathPublisher: Initializing (Interval: %s)", interval)

	return &PathPublisher{
		sender:   sender,
		interval: interval,
		packet:   new(bytes.Buffer),
	}, nil
}

// Send packs a curve.Path into a packet and transmits it. Non-path payloads
// are ignored. Returns nil on a rate-limit drop since dropped frames are
// expected behavior, not failures.
func (p *PathPublisher) Send(data any) error {
	path, ok := data.(curve.Path)
	if !ok {
		return fmt.Errorf("PathPublisher: unsupported payload type %T", data)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	if now.Sub(p.lastSend) < p.interval {
		return nil // rate limited
	}
	p.lastSend = now

	p.sequenceNum++
	p.packet.Reset()

	err := binary.Write(p.packet, binary.BigEndian, p.sequenceNum)
	if err == nil {
		err = binary.Write(p.packet, binary.BigEndian, now.UnixNano())
	}
	if err == nil {
		err = binary.Write(p.packet, binary.BigEndian, uint16(len(path)))
	}
	for i := 0; err == nil && i < len(path); i++ {
		err = binary.Write(p.packet, binary.BigEndian, float32(path[i].X))
		if err == nil {
			err = binary.Write(p.packet, binary.BigEndian, float32(path[i].Y))
		}
	}
	if err != nil {
		return fmt.Errorf("PathPublisher: failed to pack packet: %w", err)
	}

	return p.sender.Send(p.packet.Bytes())
}

// Close shuts down the underlying sender.
func (p *PathPublisher) Close() error {
	return p.sender.Close()
}
