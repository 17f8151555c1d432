// SPDX-License-Identifier: MIT

// Package transport publishes spectrum frames to consumers outside the
// process: WebSocket clients, UDP listeners and the log.
package transport

import (
	"raven/internal/viz"
)

// Transport defines the interface for sending published data to an external
// consumer. Implementations must be safe for use by a single publisher
// goroutine and must not block it for long.
type Transport interface {
	Send(data any) error
	Close() error
}

// Frame is one published view of the spectrum.
type Frame struct {
	Sequence   uint32    `json:"seq"`        // Monotonically increasing per publisher.
	Timestamp  int64     `json:"ts"`         // Nanoseconds since epoch.
	Pass       uint64    `json:"pass"`       // Analysis pass the frame was taken from.
	Mode       viz.Mode  `json:"mode"`       // Active visualization mode.
	Peak       float64   `json:"peak"`       // Normalization divisor of the pass.
	Amplitudes []float32 `json:"amplitudes"` // Normalized amplitudes, truncated to the publisher's bin limit.
}
