// Package udp owns the outbound datagram socket of the feed.
package udp

import (
	"errors"
	"fmt"
	"net"
)

// MaxPayload is the largest payload that fits in a single IPv4 UDP datagram.
const MaxPayload = 65507

// ErrPayloadTooLarge is returned when a payload would need more than one
// datagram.
var ErrPayloadTooLarge = errors.New("payload exceeds single datagram")

// Sender writes datagrams to one fixed destination. The socket is left
// unconnected so ICMP port-unreachable replies from an absent listener are
// not reported back as write errors.
type Sender struct {
	conn *net.UDPConn
	dest *net.UDPAddr
}

// Open resolves addr and opens the local socket used for every Send.
func Open(addr string) (*Sender, error) {
	dest, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}
	conn, err := net.ListenUDP("udp", nil)
	if err != nil {
		return nil, fmt.Errorf("open udp socket: %w", err)
	}
	return &Sender{conn: conn, dest: dest}, nil
}

// Send transmits payload as one datagram. There is no acknowledgement and no
// retry.
func (s *Sender) Send(payload []byte) (int, error) {
	if len(payload) > MaxPayload {
		return 0, fmt.Errorf("send %d bytes to %s: %w", len(payload), s.dest, ErrPayloadTooLarge)
	}
	n, err := s.conn.WriteToUDP(payload, s.dest)
	if err != nil {
		return n, fmt.Errorf("send to %s: %w", s.dest, err)
	}
	return n, nil
}

// Dest returns the resolved destination address.
func (s *Sender) Dest() string {
	return s.dest.String()
}

func (s *Sender) Close() error {
	return s.conn.Close()
}
