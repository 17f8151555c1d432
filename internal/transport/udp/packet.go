// SPDX-License-Identifier: MIT
package udp

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"raven/internal/transport"
	"raven/internal/viz"
)

/*
UDP Packet Structure (BigEndian)

+-----------------------------------------------------------------------------+
| Field             | Data Type      | Size (Bytes) | Description             |
|-------------------|----------------|--------------|-------------------------|
| Sequence Number   | uint32         | 4            | Monotonically increasing|
| Timestamp         | int64          | 8            | Nanoseconds since epoch |
| Mode              | uint8          | 1            | Visualization mode      |
| Peak              | float32        | 4            | Normalization divisor   |
| Amplitude Count   | uint16         | 2            | Number of floats (N)    |
| Amplitudes        | []float32      | N * 4        | Normalized amplitudes   |
+-----------------------------------------------------------------------------+
*/

// HeaderSize is the fixed size of a packet before its amplitudes.
const HeaderSize = 4 + 8 + 1 + 4 + 2

// MaxAmplitudes is the largest amplitude count one packet can carry.
const MaxAmplitudes = math.MaxUint16

var ErrShortPacket = errors.New("udp: short packet")

// AppendPacket appends the binary encoding of f to dst and returns the
// extended buffer. Amplitudes beyond MaxAmplitudes are dropped.
func AppendPacket(dst []byte, f transport.Frame) []byte {
	amps := f.Amplitudes
	if len(amps) > MaxAmplitudes {
		amps = amps[:MaxAmplitudes]
	}
	dst = binary.BigEndian.AppendUint32(dst, f.Sequence)
	dst = binary.BigEndian.AppendUint64(dst, uint64(f.Timestamp))
	dst = append(dst, byte(f.Mode))
	dst = binary.BigEndian.AppendUint32(dst, math.Float32bits(float32(f.Peak)))
	dst = binary.BigEndian.AppendUint16(dst, uint16(len(amps)))
	for _, a := range amps {
		dst = binary.BigEndian.AppendUint32(dst, math.Float32bits(a))
	}
	return dst
}

// ParsePacket decodes a packet produced by AppendPacket. The pass counter is
// not carried on the wire and is left zero.
func ParsePacket(b []byte) (transport.Frame, error) {
	if len(b) < HeaderSize {
		return transport.Frame{}, ErrShortPacket
	}
	f := transport.Frame{
		Sequence:  binary.BigEndian.Uint32(b[0:4]),
		Timestamp: int64(binary.BigEndian.Uint64(b[4:12])),
		Mode:      viz.Mode(b[12]),
		Peak:      float64(math.Float32frombits(binary.BigEndian.Uint32(b[13:17]))),
	}
	n := int(binary.BigEndian.Uint16(b[17:19]))
	payload := b[HeaderSize:]
	if len(payload) != n*4 {
		return transport.Frame{}, fmt.Errorf("%w: %d amplitudes declared, %d bytes of payload", ErrShortPacket, n, len(payload))
	}
	f.Amplitudes = make([]float32, n)
	for i := range f.Amplitudes {
		f.Amplitudes[i] = math.Float32frombits(binary.BigEndian.Uint32(payload[4*i:]))
	}
	return f, nil
}
