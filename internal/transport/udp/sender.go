// SPDX-License-Identifier: MIT

// Package udp sends spectrum frames as binary datagrams.
package udp

import (
	"fmt"
	"net"
	"sync"

	applog "raven/internal/log"
	"raven/internal/transport"
)

// Sender handles sending frames over UDP. It implements transport.Transport.
type Sender struct {
	log        *applog.Logger
	conn       *net.UDPConn
	targetAddr *net.UDPAddr
	mu         sync.Mutex // Protects conn and packet.
	closed     bool
	packet     []byte // Reused encoding buffer.
}

// NewSender creates a new Sender targeting the specified address.
// The address should be in the format "host:port", e.g., "127.0.0.1:9090".
func NewSender(targetAddress string) (*Sender, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", targetAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve UDP target address '%s': %w", targetAddress, err)
	}

	// No local port is needed for sending.
	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial UDP for target '%s': %w", targetAddress, err)
	}

	s := &Sender{
		log:        applog.New("UDPSender"),
		conn:       conn,
		targetAddr: udpAddr,
	}
	s.log.Infof("Connection established to %s", conn.RemoteAddr())
	return s, nil
}

// Send transmits data as one datagram. Frames are packed with AppendPacket;
// byte slices are sent as they are.
func (s *Sender) Send(data any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("UDP sender is closed")
	}

	var payload []byte
	switch v := data.(type) {
	case transport.Frame:
		s.packet = AppendPacket(s.packet[:0], v)
		payload = s.packet
	case *transport.Frame:
		s.packet = AppendPacket(s.packet[:0], *v)
		payload = s.packet
	case []byte:
		payload = v
	default:
		return fmt.Errorf("UDP sender: unsupported payload type %T", data)
	}

	if _, err := s.conn.Write(payload); err != nil {
		s.log.Debugf("Error sending packet: %v", err)
		return fmt.Errorf("failed to send UDP packet: %w", err)
	}
	return nil
}

// Close closes the underlying UDP connection.
func (s *Sender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.log.Infof("Closing connection to %s", s.targetAddr)
	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close UDP connection: %w", err)
	}
	return nil
}

// Ensure Sender satisfies the transport interface.
var _ transport.Transport = (*Sender)(nil)
