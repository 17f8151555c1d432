// SPDX-License-Identifier: MIT
package transport

import (
	applog "raven/internal/log"
)

// LoggingTransport implements the Transport interface by logging a summary
// of each frame at debug level.
type LoggingTransport struct {
	log *applog.Logger
}

// NewLoggingTransport creates a new LoggingTransport instance.
func NewLoggingTransport() *LoggingTransport {
	lt := &LoggingTransport{log: applog.New("LogTransport")}
	lt.log.Infof("Using LoggingTransport")
	return lt
}

// Send logs the received data. Frames are summarized; anything else is
// logged with its type.
func (lt *LoggingTransport) Send(data any) error {
	switch v := data.(type) {
	case Frame:
		lt.log.Debugf("Frame %d (pass %d): mode=%s peak=%.4f bins=%d", v.Sequence, v.Pass, v.Mode, v.Peak, len(v.Amplitudes))
	case *Frame:
		if v != nil {
			return lt.Send(*v)
		}
	default:
		lt.log.Debugf("Received (%T): %+v", data, data)
	}
	return nil
}

// Close is a no-op for LoggingTransport.
func (lt *LoggingTransport) Close() error {
	lt.log.Debugf("Close called.")
	return nil
}

// Ensure LoggingTransport satisfies the interface at compile time.
var _ Transport = (*LoggingTransport)(nil)
